package bigbuf

import (
	"context"
	"slices"
)

// Observer is notified of changes of a buffer. Notifications are delivered
// after the buffer has been released by the operation causing them, in the
// goroutine of that operation. Observers must not modify the data of
// modifications they receive.
type Observer interface {
	LengthChanged(b *Buffer, oldLen, newLen int64)
	Modified(b *Buffer, mods []Modification, origin Origin)
	Saved(b *Buffer)
}

// LengthChangedEvent is broadcast to subscribers when the length of a buffer
// changes.
type LengthChangedEvent struct {
	Old, New int64
}

// ModifiedEvent is broadcast to subscribers for every edit, undo and redo.
type ModifiedEvent struct {
	Mods   []Modification
	Origin Origin
}

// SavedEvent is broadcast to subscribers after a buffer has been saved to its
// source.
type SavedEvent struct{}

type notification struct {
	oldLen, newLen int64
	mods           []Modification
	origin         Origin
	saved          bool
}

// AddObserver registers o for notifications.
func (b *Buffer) AddObserver(o Observer) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	b.obs = append(b.obs, o)
}

// RemoveObserver unregisters o. It reports whether o had been registered.
func (b *Buffer) RemoveObserver(o Observer) bool {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	i := slices.Index(b.obs, o)
	if i < 0 {
		return false
	}
	b.obs = slices.Delete(b.obs, i, i+1)
	return true
}

// Subscribe returns a channel receiving LengthChangedEvent, ModifiedEvent and
// SavedEvent values. The subscription ends when ctx is done or the buffer is
// closed, closing the channel. Subscribers have to drain the channel; a full
// channel holds up the operations of the buffer.
func (b *Buffer) Subscribe(ctx context.Context, capacity uint) (<-chan interface{}, bool) {
	return b.cast.Sub(ctx, capacity)
}

func (b *Buffer) notify(n *notification) {
	if n == nil {
		return
	}
	b.obsMu.Lock()
	obs := slices.Clone(b.obs)
	b.obsMu.Unlock()
	if n.oldLen != n.newLen {
		for _, o := range obs {
			o.LengthChanged(b, n.oldLen, n.newLen)
		}
		b.cast.Pub(LengthChangedEvent{Old: n.oldLen, New: n.newLen})
	}
	if len(n.mods) > 0 {
		for _, o := range obs {
			o.Modified(b, n.mods, n.origin)
		}
		b.cast.Pub(ModifiedEvent{Mods: n.mods, Origin: n.origin})
	}
	if n.saved {
		for _, o := range obs {
			o.Saved(b)
		}
		b.cast.Pub(SavedEvent{})
	}
}
