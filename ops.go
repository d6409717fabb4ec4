package bigbuf

import (
	"context"
	"fmt"

	"github.com/npillmayer/bigbuf/change"
)

// Every edit comes in two flavours: a plain one and one accepting a context.
// The context limits the time spent waiting for exclusive access; once the
// buffer is acquired, an edit runs to completion.

// Write overwrites the bytes at offset with data. Data reaching past the end of
// the buffer extends it. Offset may equal the length of the buffer.
func (b *Buffer) Write(offset int64, data []byte) error {
	return b.WriteContext(context.Background(), offset, data)
}

// WriteContext is Write with a context.
func (b *Buffer) WriteContext(ctx context.Context, offset int64, data []byte) error {
	return b.exclusive(ctx, func() (*notification, error) {
		if err := b.checkEdit(offset, 0); err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, nil
		}
		data = clone(data)
		return b.commit(func(t *change.Tracker) []Modification {
			c := t.NewCollection(change.WriteMod(offset, data))
			b.write(c, offset, data)
			t.Push(c)
			return []Modification{c.Mod}
		}), nil
	})
}

// Insert inserts data at offset, which may equal the length of the buffer.
func (b *Buffer) Insert(offset int64, data []byte) error {
	return b.InsertContext(context.Background(), offset, data)
}

// InsertContext is Insert with a context.
func (b *Buffer) InsertContext(ctx context.Context, offset int64, data []byte) error {
	return b.exclusive(ctx, func() (*notification, error) {
		if err := b.checkEdit(offset, 0); err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, nil
		}
		data = clone(data)
		return b.commit(func(t *change.Tracker) []Modification {
			c := t.NewCollection(change.InsertMod(offset, data))
			b.insert(c, offset, data)
			t.Push(c)
			return []Modification{c.Mod}
		}), nil
	})
}

// Delete removes length bytes at offset.
func (b *Buffer) Delete(offset, length int64) error {
	return b.DeleteContext(context.Background(), offset, length)
}

// DeleteContext is Delete with a context.
func (b *Buffer) DeleteContext(ctx context.Context, offset, length int64) error {
	return b.exclusive(ctx, func() (*notification, error) {
		if err := b.checkEdit(offset, length); err != nil {
			return nil, err
		}
		if length == 0 {
			return nil, nil
		}
		return b.commit(func(t *change.Tracker) []Modification {
			c := t.NewCollection(change.DeleteMod(offset, length))
			b.delete(c, offset, length)
			t.Push(c)
			return []Modification{c.Mod}
		}), nil
	})
}

// Replace removes length bytes at offset and inserts data in their place. Both
// steps are undone and redone together.
func (b *Buffer) Replace(offset, length int64, data []byte) error {
	return b.ReplaceContext(context.Background(), offset, length, data)
}

// ReplaceContext is Replace with a context.
func (b *Buffer) ReplaceContext(ctx context.Context, offset, length int64, data []byte) error {
	return b.exclusive(ctx, func() (*notification, error) {
		if err := b.checkEdit(offset, length); err != nil {
			return nil, err
		}
		if length == 0 && len(data) == 0 {
			return nil, nil
		}
		data = clone(data)
		return b.commit(func(t *change.Tracker) []Modification {
			t.BeginGroup()
			if length > 0 {
				c := t.NewCollection(change.DeleteMod(offset, length))
				b.delete(c, offset, length)
				t.Push(c)
			}
			if len(data) > 0 {
				c := t.NewCollection(change.InsertMod(offset, data))
				b.insert(c, offset, data)
				t.Push(c)
			}
			var mods []Modification
			for _, c := range t.EndGroup() {
				mods = append(mods, c.Mod)
			}
			return mods
		}), nil
	})
}

// Undo reverts the most recent edit. Without an edit to undo, Undo does
// nothing.
func (b *Buffer) Undo() error {
	return b.UndoContext(context.Background())
}

// UndoContext is Undo with a context.
func (b *Buffer) UndoContext(ctx context.Context) error {
	return b.history(ctx, change.Undo, (*change.Tracker).Undo)
}

// Redo re-applies the most recently undone edit. Without an edit to redo, Redo
// does nothing.
func (b *Buffer) Redo() error {
	return b.RedoContext(context.Background())
}

// RedoContext is Redo with a context.
func (b *Buffer) RedoContext(ctx context.Context) error {
	return b.history(ctx, change.Redo, (*change.Tracker).Redo)
}

func (b *Buffer) history(ctx context.Context, origin Origin,
	step func(*change.Tracker) ([]Modification, bool)) error {
	//
	return b.exclusive(ctx, func() (*notification, error) {
		if b.readOnly.Load() {
			return nil, ErrReadOnly
		}
		oldLen := b.list.Len()
		mods, ok := step(b.tracker)
		if !ok {
			return nil, nil
		}
		return b.committed(oldLen, origin, mods), nil
	})
}

// checkEdit validates an edit of length bytes at offset before anything is
// changed.
func (b *Buffer) checkEdit(offset, length int64) error {
	if b.readOnly.Load() {
		return ErrReadOnly
	}
	if length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrIllegalArguments, length)
	}
	if l := b.list.Len(); offset < 0 || offset > l || length > l-offset {
		return fmt.Errorf("%w: [%d,%d) not within [0,%d]", ErrOutOfRange, offset, offset+length, l)
	}
	return nil
}

// commit performs a user edit and records its outcome.
func (b *Buffer) commit(perform func(*change.Tracker) []Modification) *notification {
	oldLen := b.list.Len()
	mods := perform(b.tracker)
	return b.committed(oldLen, change.User, mods)
}

// committed bumps the version after the list has been changed and prepares
// the notification of observers.
func (b *Buffer) committed(oldLen int64, origin Origin, mods []Modification) *notification {
	newLen := b.list.Len()
	b.length.Store(newLen)
	b.version.Add(1)
	return &notification{oldLen: oldLen, newLen: newLen, mods: mods, origin: origin}
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
