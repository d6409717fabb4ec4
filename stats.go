package bigbuf

import (
	"context"

	"github.com/npillmayer/bigbuf/chunk"
)

// Stats is a snapshot of the internal state of a buffer.
type Stats struct {
	chunk.Summary        // aggregated over the chunk list
	Length         int64 // logical length
	OriginalLength int64 // length of the source
	Version        uint64
	UndoDepth      int // groups available for undo
	RedoDepth      int // groups available for redo
}

// Stats returns a snapshot of the internal state of b.
func (b *Buffer) Stats() Stats {
	var st Stats
	b.shared(context.Background(), func() error {
		st = Stats{
			Summary:        b.list.Summary(),
			Length:         b.list.Len(),
			OriginalLength: b.origLen.Load(),
			Version:        b.version.Load(),
			UndoDepth:      b.tracker.UndoDepth(),
			RedoDepth:      b.tracker.RedoDepth(),
		}
		return nil
	})
	return st
}
