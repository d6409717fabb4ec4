package change

import (
	"fmt"

	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/chunklist"
)

// Change is a reversible record of one physical mutation of a chunk list.
//
// A change is created in applied state. revert and apply have to be called
// strictly alternating and in stack order with respect to other changes of
// the same list.
type Change interface {
	apply(l *chunklist.List)
	revert(l *chunklist.List)
	// release hands nodes exclusively owned by the change back to the list, given
	// the state the change is in when it is discarded.
	release(l *chunklist.List, applied bool)
	String() string
}

// --- Node changes ----------------------------------------------------------

type insertChunk struct {
	h     chunklist.Handle
	after chunklist.Handle
	c     chunk.Chunk
}

func (ch *insertChunk) apply(l *chunklist.List) {
	if ch.h == chunklist.Nil {
		ch.h = l.InsertAfter(ch.after, ch.c)
		ch.c = nil
		return
	}
	l.Reattach(ch.h, ch.after)
}

func (ch *insertChunk) revert(l *chunklist.List) {
	l.Detach(ch.h)
}

func (ch *insertChunk) release(l *chunklist.List, applied bool) {
	if !applied && ch.h != chunklist.Nil {
		l.Release(ch.h)
	}
}

func (ch *insertChunk) String() string {
	return fmt.Sprintf("insert-chunk(%d after %d)", ch.h, ch.after)
}

type removeChunk struct {
	h     chunklist.Handle
	after chunklist.Handle
}

func (ch *removeChunk) apply(l *chunklist.List) {
	ch.after = l.Detach(ch.h)
}

func (ch *removeChunk) revert(l *chunklist.List) {
	l.Reattach(ch.h, ch.after)
}

func (ch *removeChunk) release(l *chunklist.List, applied bool) {
	if applied {
		l.Release(ch.h)
	}
}

func (ch *removeChunk) String() string {
	return fmt.Sprintf("remove-chunk(%d after %d)", ch.h, ch.after)
}

// --- Mutable chunk changes -------------------------------------------------

type writeMemory struct {
	h      chunklist.Handle
	offset int64
	old    []byte
	data   []byte
}

func (ch *writeMemory) apply(l *chunklist.List) {
	ch.old = l.Splice(ch.h, ch.offset, int64(len(ch.old)), ch.data)
}

func (ch *writeMemory) revert(l *chunklist.List) {
	l.Splice(ch.h, ch.offset, int64(len(ch.data)), ch.old)
}

func (ch *writeMemory) release(*chunklist.List, bool) {}

func (ch *writeMemory) String() string {
	return fmt.Sprintf("write-memory(%d @%d, %d over %d)", ch.h, ch.offset, len(ch.data), len(ch.old))
}

type insertMemory struct {
	h      chunklist.Handle
	offset int64
	data   []byte
}

func (ch *insertMemory) apply(l *chunklist.List) {
	l.Splice(ch.h, ch.offset, 0, ch.data)
}

func (ch *insertMemory) revert(l *chunklist.List) {
	l.Splice(ch.h, ch.offset, int64(len(ch.data)), nil)
}

func (ch *insertMemory) release(*chunklist.List, bool) {}

func (ch *insertMemory) String() string {
	return fmt.Sprintf("insert-memory(%d @%d, %d)", ch.h, ch.offset, len(ch.data))
}

type removeMemory struct {
	h       chunklist.Handle
	offset  int64
	length  int64
	removed []byte
}

func (ch *removeMemory) apply(l *chunklist.List) {
	ch.removed = l.Splice(ch.h, ch.offset, ch.length, nil)
}

func (ch *removeMemory) revert(l *chunklist.List) {
	l.Splice(ch.h, ch.offset, 0, ch.removed)
}

func (ch *removeMemory) release(*chunklist.List, bool) {}

func (ch *removeMemory) String() string {
	return fmt.Sprintf("remove-memory(%d @%d, %d)", ch.h, ch.offset, ch.length)
}

// --- Immutable chunk changes -----------------------------------------------

type shrinkImmutable struct {
	h                 chunklist.Handle
	oldOffset, oldLen int64
	newOffset, newLen int64
}

func (ch *shrinkImmutable) apply(l *chunklist.List) {
	ch.oldOffset, ch.oldLen = l.Resize(ch.h, ch.newOffset, ch.newLen)
}

func (ch *shrinkImmutable) revert(l *chunklist.List) {
	l.Resize(ch.h, ch.oldOffset, ch.oldLen)
}

func (ch *shrinkImmutable) release(*chunklist.List, bool) {}

func (ch *shrinkImmutable) String() string {
	return fmt.Sprintf("shrink-immutable(%d, %d@%d -> %d@%d)", ch.h,
		ch.oldLen, ch.oldOffset, ch.newLen, ch.newOffset)
}
