package chunklist

import (
	"fmt"

	"github.com/npillmayer/bigbuf/chunk"
)

// Seek returns the node containing offset together with the node's start
// offset, walking from node from, which starts at fromStart. If from is Nil,
// the walk starts at the head.
//
// A node contains offset if offset is in [start, start+length). An offset equal
// to the list's length yields the last node (the append position). Seek
// returns Nil only for an empty list or an offset outside [0, Len()].
//
// Seek does not modify the list and may be used by concurrent readers.
func (l *List) Seek(offset int64, from Handle, fromStart int64) (Handle, int64) {
	if l.head == Nil || offset < 0 || offset > l.length {
		return Nil, 0
	}
	h, pos := from, fromStart
	if h == Nil || !l.Attached(h) {
		h, pos = l.head, 0
	}
	for offset < pos { // walk backwards
		h = l.nodes[h].prev
		assert(h != Nil, "backward walk left the list")
		pos -= l.nodes[h].c.Len()
	}
	for {
		n := &l.nodes[h]
		if offset < pos+n.c.Len() || n.next == Nil {
			return h, pos
		}
		pos += n.c.Len()
		h = n.next
	}
}

// Locate returns the node containing offset and its start offset, like Seek,
// but starts walking at the most recently located node.
//
// Locate updates the remembered node and therefore is reserved for clients
// with exclusive access to the list.
func (l *List) Locate(offset int64) (Handle, int64) {
	h, start := l.Seek(offset, l.hint, l.hintStart)
	l.hint, l.hintStart = h, start
	return h, start
}

// --- Cursor ----------------------------------------------------------------

// Cursor moves over the nodes of a list, keeping track of start offsets.
// Cursors do not modify the list; multiple readers may each use their own.
type Cursor struct {
	l     *List
	h     Handle
	start int64
}

// CursorAt creates a cursor positioned at the node containing offset.
func (l *List) CursorAt(offset int64) *Cursor {
	c := &Cursor{l: l, h: Nil}
	c.Seek(offset)
	return c
}

// Seek positions the cursor at the node containing offset. It returns false
// if offset is outside the list.
func (c *Cursor) Seek(offset int64) bool {
	c.h, c.start = c.l.Seek(offset, c.h, c.start)
	return c.h != Nil
}

// Valid reports whether the cursor points to a node.
func (c *Cursor) Valid() bool {
	return c.h != Nil
}

// Next moves the cursor to the next node. It returns false at the end.
func (c *Cursor) Next() bool {
	if c.h == Nil {
		return false
	}
	next := c.l.nodes[c.h].next
	if next == Nil {
		return false
	}
	c.start += c.l.nodes[c.h].c.Len()
	c.h = next
	return true
}

// Handle returns the node the cursor points to.
func (c *Cursor) Handle() Handle {
	return c.h
}

// Start returns the start offset of the node the cursor points to.
func (c *Cursor) Start() int64 {
	return c.start
}

// Chunk returns the chunk of the node the cursor points to.
func (c *Cursor) Chunk() chunk.Chunk {
	return c.l.Chunk(c.h)
}

// --- Invariants ------------------------------------------------------------

// Check validates structural list invariants: consistent links, node count and
// length sum, and that only a single zero-length mutable chunk may represent an
// empty list.
func (l *List) Check() error {
	err := l.check()
	if err != nil {
		tracer().Errorf("%v (%d chunks, %d bytes)", err, l.count, l.length)
	}
	return err
}

func (l *List) check() error {
	var count, empty int
	var length int64
	prev := Nil
	for h := l.head; h != Nil; h = l.nodes[h].next {
		n := &l.nodes[h]
		if !n.attached || n.released {
			return fmt.Errorf("chunklist: node %d in sequence is not attached", h)
		}
		if n.prev != prev {
			return fmt.Errorf("chunklist: node %d has broken back link", h)
		}
		if n.c.Len() < 0 {
			return fmt.Errorf("chunklist: node %d has negative length", h)
		}
		if n.c.Len() == 0 {
			empty++
		}
		count++
		length += n.c.Len()
		prev = h
		if count > len(l.nodes) {
			return fmt.Errorf("chunklist: cycle detected")
		}
	}
	if prev != l.tail {
		return fmt.Errorf("chunklist: tail does not match last node")
	}
	if count != l.count || length != l.length {
		return fmt.Errorf("chunklist: count/length mismatch (%d/%d != %d/%d)",
			count, length, l.count, l.length)
	}
	if count == 0 {
		return fmt.Errorf("chunklist: list is empty")
	}
	if length > 0 && empty > 0 {
		return fmt.Errorf("chunklist: %d zero-length chunks in non-empty list", empty)
	}
	if length == 0 {
		if count != 1 || l.nodes[l.head].c.Kind() != chunk.KindMutable {
			return fmt.Errorf("chunklist: empty content must be a single mutable chunk")
		}
	}
	return nil
}
