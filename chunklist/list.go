package chunklist

import (
	"fmt"
	"iter"

	"github.com/npillmayer/bigbuf/chunk"
)

// Handle addresses a node of a List. Handles stay valid until the node is
// released.
type Handle int32

// Nil is the handle of no node.
const Nil Handle = -1

type node struct {
	c        chunk.Chunk
	prev     Handle
	next     Handle
	attached bool
	released bool
}

// List is an ordered sequence of chunks.
//
// The empty instance is not valid, clients have to use New.
// A List is not safe for concurrent use.
type List struct {
	nodes     []node
	free      []Handle
	head      Handle
	tail      Handle
	count     int   // number of attached nodes
	length    int64 // sum of lengths of attached chunks
	hint      Handle
	hintStart int64
}

// New creates a list holding the given chunks in order.
func New(chunks ...chunk.Chunk) *List {
	l := &List{}
	l.Reset(chunks...)
	return l
}

// Reset drops all nodes, including detached ones, and re-initializes the list
// with chunks. All handles handed out before become invalid.
func (l *List) Reset(chunks ...chunk.Chunk) {
	l.nodes = make([]node, 0, max(16, len(chunks)))
	l.free = nil
	l.head, l.tail = Nil, Nil
	l.count, l.length = 0, 0
	l.hint = Nil
	at := Nil
	for _, c := range chunks {
		at = l.InsertAfter(at, c)
	}
	tracer().Debugf("chunklist: reset to %d chunks of %d bytes", l.count, l.length)
}

// Len returns the sum of the lengths of all chunks in the list.
func (l *List) Len() int64 {
	return l.length
}

// Count returns the number of chunks in the list.
func (l *List) Count() int {
	return l.count
}

// IsEmpty reports whether the list has no chunks.
func (l *List) IsEmpty() bool {
	return l.head == Nil
}

// Head returns the first node or Nil.
func (l *List) Head() Handle {
	return l.head
}

// Tail returns the last node or Nil.
func (l *List) Tail() Handle {
	return l.tail
}

// Next returns the successor of h or Nil.
func (l *List) Next(h Handle) Handle {
	return l.at(h).next
}

// Prev returns the predecessor of h or Nil.
func (l *List) Prev(h Handle) Handle {
	return l.at(h).prev
}

// Chunk returns the chunk stored at h.
func (l *List) Chunk(h Handle) chunk.Chunk {
	return l.at(h).c
}

// Attached reports whether h is currently part of the sequence.
func (l *List) Attached(h Handle) bool {
	if h < 0 || int(h) >= len(l.nodes) {
		return false
	}
	return l.nodes[h].attached && !l.nodes[h].released
}

func (l *List) at(h Handle) *node {
	assert(h >= 0 && int(h) < len(l.nodes), fmt.Sprintf("invalid handle %d", h))
	n := &l.nodes[h]
	assert(!n.released, fmt.Sprintf("access to released handle %d", h))
	return n
}

// InsertAfter inserts c as a new node after node at. If at is Nil, c is
// inserted at the front of the list. It returns the handle of the new node.
func (l *List) InsertAfter(at Handle, c chunk.Chunk) Handle {
	assert(c != nil, "cannot insert nil chunk")
	var h Handle
	if k := len(l.free); k > 0 {
		h = l.free[k-1]
		l.free = l.free[:k-1]
		l.nodes[h] = node{c: c, prev: Nil, next: Nil}
	} else {
		h = Handle(len(l.nodes))
		l.nodes = append(l.nodes, node{c: c, prev: Nil, next: Nil})
	}
	l.link(h, at)
	return h
}

// Detach unlinks node h from the sequence and returns its former predecessor.
// The node keeps its chunk and may be re-attached with Reattach.
func (l *List) Detach(h Handle) Handle {
	n := l.at(h)
	assert(n.attached, fmt.Sprintf("detach of detached node %d", h))
	prev, next := n.prev, n.next
	if prev == Nil {
		l.head = next
	} else {
		l.nodes[prev].next = next
	}
	if next == Nil {
		l.tail = prev
	} else {
		l.nodes[next].prev = prev
	}
	n.prev, n.next = Nil, Nil
	n.attached = false
	l.count--
	l.length -= n.c.Len()
	l.hint = Nil
	return prev
}

// Reattach links the detached node h after node at (at the front if at is Nil).
func (l *List) Reattach(h Handle, at Handle) {
	assert(!l.at(h).attached, fmt.Sprintf("re-attach of attached node %d", h))
	l.link(h, at)
}

func (l *List) link(h Handle, at Handle) {
	n := &l.nodes[h]
	if at == Nil {
		n.prev, n.next = Nil, l.head
		if l.head != Nil {
			l.nodes[l.head].prev = h
		}
		l.head = h
	} else {
		a := l.at(at)
		assert(a.attached, fmt.Sprintf("link after detached node %d", at))
		n.prev, n.next = at, a.next
		if a.next != Nil {
			l.nodes[a.next].prev = h
		}
		a.next = h
	}
	if n.next == Nil {
		l.tail = h
	}
	n.attached = true
	l.count++
	l.length += n.c.Len()
	l.hint = Nil
}

// Release hands a detached node back to the free-list. Its handle must not be
// used afterwards.
func (l *List) Release(h Handle) {
	n := l.at(h)
	assert(!n.attached, fmt.Sprintf("release of attached node %d", h))
	n.c = nil
	n.released = true
	l.free = append(l.free, h)
}

// Splice replaces n bytes at chunk-local offset off of the mutable chunk at h
// with repl and returns the replaced bytes.
func (l *List) Splice(h Handle, off, n int64, repl []byte) []byte {
	nd := l.at(h)
	m, ok := nd.c.(*chunk.Mutable)
	assert(ok, fmt.Sprintf("splice on %s chunk %d", nd.c.Kind(), h))
	before := m.Len()
	removed, err := m.Splice(off, n, repl)
	assert(err == nil, fmt.Sprintf("splice on node %d: %v", h, err))
	if nd.attached {
		l.length += m.Len() - before
	}
	l.hint = Nil
	return removed
}

// Resize moves the source bounds of the immutable chunk at h and returns its
// previous bounds.
func (l *List) Resize(h Handle, offset, length int64) (int64, int64) {
	nd := l.at(h)
	c, ok := nd.c.(*chunk.Immutable)
	assert(ok, fmt.Sprintf("resize on %s chunk %d", nd.c.Kind(), h))
	before := c.Len()
	oo, ol, err := c.Resize(offset, length)
	assert(err == nil, fmt.Sprintf("resize of node %d: %v", h, err))
	if nd.attached {
		l.length += length - before
	}
	l.hint = Nil
	return oo, ol
}

// All returns an iterator over all attached nodes in logical order.
func (l *List) All() iter.Seq2[Handle, chunk.Chunk] {
	return func(yield func(Handle, chunk.Chunk) bool) {
		for h := l.head; h != Nil; h = l.nodes[h].next {
			if !yield(h, l.nodes[h].c) {
				return
			}
		}
	}
}

// Chunks returns the chunks of the list in logical order.
func (l *List) Chunks() []chunk.Chunk {
	chunks := make([]chunk.Chunk, 0, l.count)
	for _, c := range l.All() {
		chunks = append(chunks, c)
	}
	return chunks
}

// Summary folds the summaries of all chunks.
func (l *List) Summary() chunk.Summary {
	var m chunk.Monoid
	s := m.Zero()
	for _, c := range l.All() {
		s = m.Add(s, c.Summary())
	}
	return s
}
