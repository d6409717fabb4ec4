package bigbuf

import (
	"context"
	"fmt"
	"io"
)

// FindOptions control a search.
type FindOptions struct {
	// Backward searches towards the start of the buffer.
	Backward bool
	// Limit, if positive, restricts the search to matches starting within Limit
	// bytes of the offset, in search direction, and disables wrapping around.
	Limit int64
}

// Find returns the offset of the first occurrence of pattern at or after
// offset, or -1 if there is none. Without a limit, a search not successful
// until the end of the buffer continues from the start, up to offset.
//
// A backward search returns the last occurrence starting at or before offset,
// wrapping around to the end of the buffer.
//
// While a search runs, the buffer is busy and edits fail with ErrBusy.
func (b *Buffer) Find(pattern []byte, offset int64, opts FindOptions) (int64, error) {
	return b.FindContext(context.Background(), pattern, offset, opts)
}

// FindContext is Find with a context, which is checked between search steps.
func (b *Buffer) FindContext(ctx context.Context, pattern []byte, offset int64, opts FindOptions) (int64, error) {
	pos := int64(-1)
	err := b.scan(ctx, func() error {
		l := b.list.Len()
		if offset < 0 || offset > l {
			return fmt.Errorf("%w: find at %d not within [0,%d]", ErrOutOfRange, offset, l)
		}
		plen := int64(len(pattern))
		if plen == 0 || plen > l {
			return nil
		}
		f := b.finder(ctx, pattern)
		last := l - plen // last possible start of a match
		var err error
		switch {
		case opts.Limit > 0 && !opts.Backward:
			hi := last
			if opts.Limit <= last-offset { // offset+Limit must not overflow
				hi = offset + opts.Limit - 1
			}
			pos, err = f.forward(offset, hi)
		case opts.Limit > 0:
			lo := int64(0)
			if opts.Limit <= offset {
				lo = offset - opts.Limit + 1
			}
			pos, err = f.backward(lo, min(offset, last))
		case !opts.Backward:
			if pos, err = f.forward(offset, last); pos < 0 && err == nil {
				tracer().Debugf("find: wrapping around to start")
				pos, err = f.forward(0, min(offset-1, last))
			}
		default:
			if pos, err = f.backward(0, min(offset, last)); pos < 0 && err == nil {
				tracer().Debugf("find: wrapping around to end")
				pos, err = f.backward(offset+1, last)
			}
		}
		if err != nil {
			pos = -1
		}
		return err
	})
	return pos, err
}

// finder searches a buffer held by the caller, window by window. Consecutive
// windows overlap by the length of the pattern minus one byte, so matches
// crossing a window boundary are found.
type finder struct {
	ctx     context.Context
	b       *Buffer
	pattern []byte
	window  int64
	scratch []byte
	fetch   func(dst []byte, off int64) error
}

func (b *Buffer) finder(ctx context.Context, pattern []byte) *finder {
	f := &finder{
		ctx:     ctx,
		b:       b,
		pattern: pattern,
		window:  int64(b.opts.window()),
	}
	f.scratch = make([]byte, f.window+int64(len(pattern))-1)
	if b.version.Load() == 0 {
		f.fetch = f.fromSource
	} else {
		f.fetch = f.fromChunks
	}
	return f
}

// fromSource reads untouched content directly from the source.
func (f *finder) fromSource(dst []byte, off int64) error {
	n, err := f.b.src.ReadAt(dst, off)
	if n == len(dst) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// fromChunks reads through the chunk list.
func (f *finder) fromChunks(dst []byte, off int64) error {
	n, err := f.b.readAt(f.ctx, dst, off, nil)
	if err == nil && n < int64(len(dst)) {
		err = fmt.Errorf("%w: short read at %d", ErrStructure, off)
	}
	return err
}

// forward returns the first match starting in [lo,hi].
func (f *finder) forward(lo, hi int64) (int64, error) {
	plen := int64(len(f.pattern))
	matcher := f.b.opts.matcher()
	for pos := lo; pos <= hi; {
		if err := f.ctx.Err(); err != nil {
			return -1, err
		}
		end := min(pos+f.window-1, hi) // last start position of this step
		buf := f.scratch[:end-pos+plen]
		if err := f.fetch(buf, pos); err != nil {
			return -1, err
		}
		if i := matcher.Index(buf, f.pattern); i >= 0 {
			return pos + int64(i), nil
		}
		pos = end + 1
	}
	return -1, nil
}

// backward returns the last match starting in [lo,hi].
func (f *finder) backward(lo, hi int64) (int64, error) {
	plen := int64(len(f.pattern))
	matcher := f.b.opts.matcher()
	for pos := hi; pos >= lo; {
		if err := f.ctx.Err(); err != nil {
			return -1, err
		}
		start := max(pos-f.window+1, lo) // first start position of this step
		buf := f.scratch[:pos-start+plen]
		if err := f.fetch(buf, start); err != nil {
			return -1, err
		}
		if i := matcher.LastIndex(buf, f.pattern); i >= 0 {
			return start + int64(i), nil
		}
		pos = start - 1
	}
	return -1, nil
}
