package bigbuf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/guiguan/caster"
	"github.com/npillmayer/bigbuf/change"
	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/chunklist"
	"github.com/npillmayer/bigbuf/gate"
	"github.com/npillmayer/bigbuf/source"
)

// Modification describes a logical edit reported to observers.
type Modification = change.Modification

// Origin tells what caused a modification.
type Origin = change.Origin

// Origins of modifications.
const (
	User = change.User
	Undo = change.Undo
	Redo = change.Redo
)

// Buffer is an editable view of a source.
//
// All methods are safe for concurrent use. The zero value is not usable,
// clients have to use New, FromBytes or Open.
type Buffer struct {
	gate     *gate.Gate
	src      source.Source
	list     *chunklist.List
	tracker  *change.Tracker
	opts     Options
	length   atomic.Int64
	origLen  atomic.Int64
	version  atomic.Uint64
	readOnly atomic.Bool
	closed   bool // guarded by gate
	obsMu    sync.Mutex
	obs      []Observer
	cast     *caster.Caster
}

// New creates a buffer presenting the content of src.
func New(src source.Source, opts Options) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source is nil", ErrIllegalArguments)
	}
	if opts.MaxUndo < 0 || opts.FindWindow < 0 {
		return nil, fmt.Errorf("%w: negative option value", ErrIllegalArguments)
	}
	b := &Buffer{
		gate: gate.New(),
		src:  src,
		opts: opts,
		cast: caster.New(nil),
	}
	b.list = chunklist.New(initialChunk(src))
	b.tracker = change.NewTracker(b.list, opts.Tracking, opts.MaxUndo)
	b.length.Store(src.Len())
	b.origLen.Store(src.Len())
	b.readOnly.Store(opts.ReadOnly)
	tracer().Debugf("new buffer of %d bytes", src.Len())
	return b, nil
}

// FromBytes creates a buffer over an in-memory copy of data.
func FromBytes(data []byte, opts Options) (*Buffer, error) {
	return New(source.NewMemory(append([]byte(nil), data...)), opts)
}

// Open creates a buffer over the file at path. The file is kept open until
// the buffer is closed.
func Open(path string, opts Options) (*Buffer, error) {
	f, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	b, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return b, nil
}

// initialChunk covers all of src, or is the placeholder of an empty buffer.
func initialChunk(src source.Source) chunk.Chunk {
	if src.Len() == 0 {
		return chunk.NewMutable(nil)
	}
	im, err := chunk.NewImmutable(src, 0, src.Len())
	assert(err == nil, fmt.Sprintf("initial chunk: %v", err))
	return im
}

// Close releases the source. Subscriptions are closed as well.
func (b *Buffer) Close() error {
	if err := b.lock(context.Background()); err != nil {
		return err
	}
	defer b.gate.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cast.Close()
	if c, ok := b.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Len returns the logical length of the buffer.
func (b *Buffer) Len() int64 {
	return b.length.Load()
}

// OriginalLen returns the length of the source as loaded or last saved.
func (b *Buffer) OriginalLen() int64 {
	return b.origLen.Load()
}

// Version returns the number of edits, undos and redos since the buffer was
// loaded or last saved.
func (b *Buffer) Version() uint64 {
	return b.version.Load()
}

// IsModified reports whether the buffer has been changed since it was loaded
// or last saved. Undoing all edits does not make a buffer unmodified.
func (b *Buffer) IsModified() bool {
	return b.version.Load() > 0
}

// IsReadOnly reports whether edits are refused.
func (b *Buffer) IsReadOnly() bool {
	return b.readOnly.Load()
}

// SetReadOnly switches edits off or on.
func (b *Buffer) SetReadOnly(ro bool) {
	b.readOnly.Store(ro)
}

// Source returns the source of truth of the buffer.
func (b *Buffer) Source() source.Source {
	return b.src
}

// CanUndo reports whether there is an edit to undo.
func (b *Buffer) CanUndo() bool {
	var can bool
	b.shared(context.Background(), func() error {
		can = b.tracker.CanUndo()
		return nil
	})
	return can
}

// CanRedo reports whether there is an undone edit to redo.
func (b *Buffer) CanRedo() bool {
	var can bool
	b.shared(context.Background(), func() error {
		can = b.tracker.CanRedo()
		return nil
	})
	return can
}

// --- Gate handling ---------------------------------------------------------

func (b *Buffer) lock(ctx context.Context) error {
	if err := b.gate.Lock(ctx); err != nil {
		if errors.Is(err, gate.ErrBusy) {
			return ErrBusy
		}
		return err
	}
	return nil
}

// exclusive runs fn with the buffer locked for writing. The notification fn
// returns is delivered after the lock has been released.
func (b *Buffer) exclusive(ctx context.Context, fn func() (*notification, error)) error {
	if err := b.lock(ctx); err != nil {
		return err
	}
	var n *notification
	err := func() error {
		defer b.gate.Unlock()
		if b.closed {
			return ErrClosed
		}
		var err error
		n, err = fn()
		return err
	}()
	if err != nil {
		return err
	}
	b.notify(n)
	return nil
}

// shared runs fn with the buffer locked for reading.
func (b *Buffer) shared(ctx context.Context, fn func() error) error {
	if err := b.gate.RLock(ctx); err != nil {
		return err
	}
	defer b.gate.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return fn()
}

// scan runs fn with the buffer locked for reading and marked busy, so that
// edits attempted meanwhile fail with ErrBusy.
func (b *Buffer) scan(ctx context.Context, fn func() error) error {
	release, err := b.gate.RLockBusy(ctx)
	if err != nil {
		return err
	}
	defer release()
	if b.closed {
		return ErrClosed
	}
	return fn()
}
