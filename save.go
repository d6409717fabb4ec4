package bigbuf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/npillmayer/bigbuf/source"
)

// Save writes the content of the buffer back to its source. Afterwards the
// buffer presents the saved source as unmodified content and the edit history
// is gone. Save returns false if there was nothing to save.
//
// The source has to implement source.Committer. A file source refuses to be
// overwritten if it has been changed by someone else since it was opened.
// If a file cannot be re-opened after the new content has been committed,
// Save fails with source.ErrReopen and the buffer keeps presenting its
// previous content.
func (b *Buffer) Save() (bool, error) {
	return b.SaveContext(context.Background())
}

// SaveContext is Save with a context, which is checked between blocks of
// I/O. A canceled save leaves the source and the buffer unchanged.
func (b *Buffer) SaveContext(ctx context.Context) (bool, error) {
	var saved bool
	err := b.exclusive(ctx, func() (*notification, error) {
		if b.readOnly.Load() {
			return nil, ErrReadOnly
		}
		if b.version.Load() == 0 {
			return nil, nil
		}
		committer, ok := b.src.(source.Committer)
		if !ok {
			return nil, fmt.Errorf("%w: source %T cannot be saved to", ErrInvalidState, b.src)
		}
		if f, ok := b.src.(interface{ Changed() (bool, error) }); ok {
			changed, err := f.Changed()
			if err != nil {
				return nil, err
			}
			if changed {
				return nil, source.ErrChanged
			}
		}
		size := b.list.Len()
		r := &listReader{ctx: ctx, buf: b}
		if err := committer.Commit(ctx, r, size); err != nil {
			if errors.Is(err, source.ErrReopen) {
				// the buffer still presents the previous content; further saves
				// will fail with source.ErrChanged
				tracer().Errorf("save: source holds the new content but cannot be read: %v", err)
			} else {
				tracer().Errorf("save: %v", err)
			}
			return nil, err
		}
		b.list.Reset(initialChunk(b.src))
		assert(b.list.Len() == size, fmt.Sprintf("saved %d bytes, source has %d", size, b.list.Len()))
		b.tracker.Reset()
		b.version.Store(0)
		b.origLen.Store(size)
		saved = true
		tracer().Debugf("saved %d bytes", size)
		return &notification{oldLen: size, newLen: size, saved: true}, nil
	})
	return saved, err
}

// SaveTo writes the content of the buffer to w and returns the number of
// bytes written. The buffer itself is not changed.
//
// While SaveTo runs, the buffer is busy and edits fail with ErrBusy.
func (b *Buffer) SaveTo(ctx context.Context, w io.Writer) (int64, error) {
	var n int64
	err := b.scan(ctx, func() (err error) {
		n, err = source.Copy(ctx, w, &listReader{ctx: ctx, buf: b})
		return
	})
	return n, err
}

// SaveToFile writes the content of the buffer to a file at path, creating or
// truncating it. A failed or canceled call may leave a partially written file.
// SaveToFile refuses to write onto the file the buffer has been opened from;
// use Save for that.
func (b *Buffer) SaveToFile(path string) (bool, error) {
	return b.SaveToFileContext(context.Background(), path)
}

// SaveToFileContext is SaveToFile with a context.
func (b *Buffer) SaveToFileContext(ctx context.Context, path string) (ok bool, err error) {
	if f, isFile := b.src.(*source.File); isFile && f.SameFile(path) {
		return false, fmt.Errorf("%w: %s is the source of the buffer", ErrIllegalArguments, path)
	}
	out, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			ok, err = false, cerr
		}
	}()
	n, err := b.SaveTo(ctx, out)
	if err != nil {
		tracer().Errorf("save to %s: %v after %d bytes", path, err, n)
		return false, err
	}
	if err = out.Sync(); err != nil {
		return false, err
	}
	return true, nil
}

// Digest returns the xxhash64 of the content of the buffer.
//
// While Digest runs, the buffer is busy and edits fail with ErrBusy.
func (b *Buffer) Digest(ctx context.Context) (uint64, error) {
	var sum uint64
	err := b.scan(ctx, func() (err error) {
		if b.version.Load() == 0 && b.list.Len() == b.src.Len() {
			sum, err = source.Digest(ctx, b.src)
			return
		}
		h := xxhash.New()
		if _, err = source.Copy(ctx, h, &listReader{ctx: ctx, buf: b}); err != nil {
			return
		}
		sum = h.Sum64()
		return
	})
	return sum, err
}

// IsBusy reports whether an edit would currently fail with ErrBusy.
func (b *Buffer) IsBusy() bool {
	return b.gate.Busy()
}
