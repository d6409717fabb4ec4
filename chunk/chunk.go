package chunk

import (
	"fmt"
	"io"

	"github.com/npillmayer/bigbuf/source"
)

// Kind discriminates the chunk variants.
type Kind uint8

const (
	// KindMutable is an in-memory, owned byte region.
	KindMutable Kind = iota
	// KindImmutable is a reference into a region of the original source.
	KindImmutable
)

func (k Kind) String() string {
	switch k {
	case KindMutable:
		return "mutable"
	case KindImmutable:
		return "immutable"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Chunk is a contiguous span of logical buffer content.
//
// Chunks are not safe for concurrent use; they are guarded by the buffer
// owning them.
type Chunk interface {
	Kind() Kind
	// Len returns the number of bytes the chunk contributes to the buffer.
	Len() int64
	// ReadAt reads bytes at chunk-local offset off, following io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)
	// Clone returns a copy not sharing mutable state with the receiver.
	Clone() Chunk
	// Summary returns aggregate metrics for this chunk.
	Summary() Summary
}

// --- Mutable chunks --------------------------------------------------------

// Mutable is a chunk owning a growable byte region.
type Mutable struct {
	data []byte
}

var _ Chunk = (*Mutable)(nil)

// NewMutable creates a mutable chunk holding a copy of data.
func NewMutable(data []byte) *Mutable {
	return &Mutable{data: append([]byte(nil), data...)}
}

// Kind is part of interface Chunk.
func (m *Mutable) Kind() Kind { return KindMutable }

// Len is part of interface Chunk.
func (m *Mutable) Len() int64 {
	return int64(len(m.data))
}

// Bytes returns a copied byte slice of the chunk content.
func (m *Mutable) Bytes() []byte {
	return append([]byte(nil), m.data...)
}

// ReadAt is part of interface Chunk.
func (m *Mutable) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, ErrIndexOutOfBounds
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Clone is part of interface Chunk.
func (m *Mutable) Clone() Chunk {
	return NewMutable(m.data)
}

// Splice replaces the n bytes at off with repl and returns a copy of the
// replaced bytes. The chunk grows or shrinks as needed.
func (m *Mutable) Splice(off, n int64, repl []byte) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(m.data)) {
		return nil, fmt.Errorf("%w: splice [%d,%d) of %d bytes", ErrIndexOutOfBounds,
			off, off+n, len(m.data))
	}
	removed := append([]byte(nil), m.data[off:off+n]...)
	if int64(len(repl)) == n {
		copy(m.data[off:], repl)
		return removed, nil
	}
	tail := len(m.data) - int(off+n)
	size := int(off) + len(repl) + tail
	if size <= cap(m.data) {
		buf := m.data[:size]
		copy(buf[int(off)+len(repl):], m.data[off+n:])
		copy(buf[off:], repl)
		m.data = buf
		return removed, nil
	}
	buf := make([]byte, size, size+size/4)
	copy(buf, m.data[:off])
	copy(buf[off:], repl)
	copy(buf[int(off)+len(repl):], m.data[off+n:])
	m.data = buf
	return removed, nil
}

func (m *Mutable) String() string {
	return fmt.Sprintf("M[%d]", len(m.data))
}

// --- Immutable chunks ------------------------------------------------------

// Immutable is a chunk referencing a region of a source.
//
// Shrinking an immutable chunk only moves its bounds; the source is never
// touched.
type Immutable struct {
	src    source.Source
	offset int64
	length int64
}

var _ Chunk = (*Immutable)(nil)

// NewImmutable creates a chunk referencing [offset,offset+length) of src.
func NewImmutable(src source.Source, offset, length int64) (*Immutable, error) {
	if err := checkBounds(src, offset, length); err != nil {
		return nil, err
	}
	return &Immutable{src: src, offset: offset, length: length}, nil
}

func checkBounds(src source.Source, offset, length int64) error {
	if src == nil || offset < 0 || length < 0 || offset+length > src.Len() {
		var size int64
		if src != nil {
			size = src.Len()
		}
		return fmt.Errorf("%w: [%d,%d) of %d bytes", ErrSourceBounds, offset, offset+length, size)
	}
	return nil
}

// Kind is part of interface Chunk.
func (c *Immutable) Kind() Kind { return KindImmutable }

// Len is part of interface Chunk.
func (c *Immutable) Len() int64 {
	return c.length
}

// Offset returns the start of the referenced region in the source.
func (c *Immutable) Offset() int64 {
	return c.offset
}

// Source returns the source the chunk refers to.
func (c *Immutable) Source() source.Source {
	return c.src
}

// ReadAt is part of interface Chunk.
func (c *Immutable) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > c.length {
		return 0, ErrIndexOutOfBounds
	}
	rest := c.length - off
	short := false
	if int64(len(p)) > rest {
		p = p[:rest]
		short = true
	}
	n, err := c.src.ReadAt(p, c.offset+off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}

// Clone is part of interface Chunk.
func (c *Immutable) Clone() Chunk {
	cc := *c
	return &cc
}

// Resize moves the bounds of the chunk to [offset,offset+length) and returns
// the previous bounds.
func (c *Immutable) Resize(offset, length int64) (int64, int64, error) {
	if err := checkBounds(c.src, offset, length); err != nil {
		return c.offset, c.length, err
	}
	oldOffset, oldLength := c.offset, c.length
	c.offset, c.length = offset, length
	return oldOffset, oldLength, nil
}

func (c *Immutable) String() string {
	return fmt.Sprintf("I[%d@%d]", c.length, c.offset)
}
