package bigbuf

import (
	"context"
	"fmt"
	"io"

	"github.com/npillmayer/bigbuf/chunk"
)

// ModifiedRange is a range [Start,End) of buffer offsets whose bytes stem from
// edits rather than from the source.
type ModifiedRange struct {
	Start, End int64
}

// Read copies bytes at offset into dest and returns the number of bytes read,
// which is less than len(dest) only at the end of the buffer, and 0 if offset
// is at or past the end. If mods is not nil, the ranges of edited bytes among
// the ones read are appended to *mods, adjacent ranges merged.
func (b *Buffer) Read(dest []byte, offset int64, mods *[]ModifiedRange) (int64, error) {
	return b.ReadContext(context.Background(), dest, offset, mods)
}

// ReadContext is Read with a context. Cancellation is checked between chunks.
func (b *Buffer) ReadContext(ctx context.Context, dest []byte, offset int64, mods *[]ModifiedRange) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, offset)
	}
	var n int64
	err := b.shared(ctx, func() (err error) {
		n, err = b.readAt(ctx, dest, offset, mods)
		return
	})
	return n, err
}

// readAt reads with the buffer held in either mode.
func (b *Buffer) readAt(ctx context.Context, dest []byte, offset int64, mods *[]ModifiedRange) (int64, error) {
	if offset >= b.list.Len() || len(dest) == 0 {
		return 0, nil
	}
	cur := b.list.CursorAt(offset)
	assert(cur.Valid(), fmt.Sprintf("no node at offset %d", offset))
	var n int64
	want := min(int64(len(dest)), b.list.Len()-offset)
	for n < want {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		ch := cur.Chunk()
		rel := offset + n - cur.Start()
		k := min(ch.Len()-rel, want-n)
		if k > 0 {
			got, err := ch.ReadAt(dest[n:n+k], rel)
			if int64(got) < k {
				if err == nil || err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				tracer().Errorf("read of %v at %d: %v", ch, rel, err)
				return n + int64(got), err
			}
			if mods != nil && ch.Kind() == chunk.KindMutable {
				addRange(mods, offset+n, offset+n+k)
			}
			n += k
		}
		if n < want && !cur.Next() {
			break
		}
	}
	return n, nil
}

func addRange(mods *[]ModifiedRange, start, end int64) {
	if k := len(*mods); k > 0 && (*mods)[k-1].End == start {
		(*mods)[k-1].End = end
		return
	}
	*mods = append(*mods, ModifiedRange{Start: start, End: end})
}

// Reader returns a reader for the bytes of the buffer, starting at offset 0.
// Every call to Read acquires the buffer on its own, so edits in between calls
// show up in subsequent reads.
func (b *Buffer) Reader() io.Reader {
	return &bufReader{buf: b}
}

type bufReader struct {
	buf    *Buffer
	cursor int64
}

func (br *bufReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := br.buf.Read(p, br.cursor, nil)
	br.cursor += n
	if err != nil {
		return int(n), err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// listReader linearizes the chunk list for clients already holding the buffer.
type listReader struct {
	ctx    context.Context
	buf    *Buffer
	cursor int64
}

func (lr *listReader) Read(p []byte) (int, error) {
	n, err := lr.buf.readAt(lr.ctx, p, lr.cursor, nil)
	lr.cursor += n
	if err != nil {
		return int(n), err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return int(n), nil
}
