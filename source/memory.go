package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Memory is a source holding its content in memory.
//
// A Memory takes ownership of the slice handed to NewMemory; clients must not
// modify it afterwards.
type Memory struct {
	data []byte
}

var _ Source = (*Memory)(nil)
var _ Committer = (*Memory)(nil)

// NewMemory creates a memory source over data.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// Len returns the number of bytes in the source.
func (m *Memory) Len() int64 {
	return int64(len(m.data))
}

// ReadAt is part of interface io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("memory source: negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Commit replaces the content with size bytes read from r.
func (m *Memory) Commit(ctx context.Context, r io.Reader, size int64) error {
	var buf bytes.Buffer
	buf.Grow(int(size))
	n, err := Copy(ctx, &buf, io.LimitReader(r, size))
	if err != nil {
		return err
	}
	if n < size {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortContent, n, size)
	}
	m.data = buf.Bytes()
	tracer().Debugf("memory source: committed %d bytes", size)
	return nil
}
