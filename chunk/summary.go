package chunk

// Summary aggregates chunk-level metrics.
//
// Summaries of single chunks are combined with Monoid to describe a sequence of
// chunks.
type Summary struct {
	Chunks       int   // number of chunks
	Mutable      int   // number of mutable chunks
	Immutable    int   // number of immutable chunks
	Bytes        int64 // logical length
	MutableBytes int64 // bytes held in memory
	SourceBytes  int64 // bytes referenced in a source
}

// Summary returns aggregate metrics for this chunk.
func (m *Mutable) Summary() Summary {
	return Summary{
		Chunks:       1,
		Mutable:      1,
		Bytes:        m.Len(),
		MutableBytes: m.Len(),
	}
}

// Summary returns aggregate metrics for this chunk.
func (c *Immutable) Summary() Summary {
	return Summary{
		Chunks:      1,
		Immutable:   1,
		Bytes:       c.length,
		SourceBytes: c.length,
	}
}

// Monoid aggregates chunk summaries.
type Monoid struct{}

// Zero returns the neutral summary value.
func (Monoid) Zero() Summary { return Summary{} }

// Add combines two summaries.
func (Monoid) Add(left, right Summary) Summary {
	return Summary{
		Chunks:       left.Chunks + right.Chunks,
		Mutable:      left.Mutable + right.Mutable,
		Immutable:    left.Immutable + right.Immutable,
		Bytes:        left.Bytes + right.Bytes,
		MutableBytes: left.MutableBytes + right.MutableBytes,
		SourceBytes:  left.SourceBytes + right.SourceBytes,
	}
}
