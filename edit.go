package bigbuf

import (
	"fmt"

	"github.com/npillmayer/bigbuf/change"
	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/chunklist"
)

// The functions in this file perform the physical part of an edit on the chunk
// list, recording every step in a change collection. Callers hold the buffer
// exclusively and have validated offsets and lengths.

const nilNode = chunklist.Nil

func (b *Buffer) isMutable(h chunklist.Handle) bool {
	return h != nilNode && b.list.Chunk(h).Kind() == chunk.KindMutable
}

func (b *Buffer) immutable(h chunklist.Handle) *chunk.Immutable {
	im, ok := b.list.Chunk(h).(*chunk.Immutable)
	assert(ok, fmt.Sprintf("node %d is not immutable", h))
	return im
}

func sourceChunk(of *chunk.Immutable, offset, length int64) chunk.Chunk {
	im, err := chunk.NewImmutable(of.Source(), offset, length)
	assert(err == nil, fmt.Sprintf("split of %v: %v", of, err))
	return im
}

// write overwrites the bytes at offset with data, extending the list if data
// reaches past its end.
func (b *Buffer) write(c *change.Collection, offset int64, data []byte) {
	l := b.list
	n := int64(len(data))
	total := l.Len()
	h, start := l.Locate(offset)
	if h == nilNode {
		tracer().Debugf("write: empty list")
		c.InsertChunk(nilNode, chunk.NewMutable(data))
		return
	}
	clen := l.Chunk(h).Len()
	rel := offset - start
	after := total - (start + clen) // bytes following h
	if b.isMutable(h) {
		tracer().Debugf("write: into mutable node %d at %d", h, rel)
		b.writeIntoMutable(c, h, rel, data, after)
		return
	}
	im := b.immutable(h)
	so := im.Offset()
	prev, next := l.Prev(h), l.Next(h)
	if rel == 0 && b.isMutable(prev) {
		tracer().Debugf("write: onto tail of previous node %d", prev)
		c.StartsAtPrevious = true
		b.writeIntoMutable(c, prev, l.Chunk(prev).Len(), data, total-start)
		return
	}
	if rel+n >= clen && b.isMutable(next) {
		tracer().Debugf("write: into head of next node %d", next)
		head := clen - rel // part of data covering the rest of h
		if rel == 0 {
			c.RemoveChunk(h)
		} else {
			c.ShrinkImmutable(h, so, rel)
		}
		c.InsertMemory(next, 0, data[:head])
		if head < n {
			nextAfter := after - l.Chunk(next).Len() + head
			b.writeIntoMutable(c, next, head, data[head:], nextAfter)
		}
		return
	}
	if rel == 0 {
		tracer().Debugf("write: new node before %d", h)
		m := c.InsertChunk(prev, chunk.NewMutable(data))
		b.consumeAfter(c, m, min(n, total-start))
		return
	}
	tracer().Debugf("write: split node %d at %d", h, rel)
	end := rel + n
	if rel < clen {
		c.ShrinkImmutable(h, so, rel)
	}
	m := c.InsertChunk(h, chunk.NewMutable(data))
	if end < clen {
		c.InsertChunk(m, sourceChunk(im, so+end, clen-end))
		return
	}
	b.consumeAfter(c, m, min(end-clen, after))
}

// writeIntoMutable overwrites the mutable node h with data at chunk offset
// rel. Bytes of data reaching past the end of h overwrite the following nodes,
// of which there are after bytes in total.
func (b *Buffer) writeIntoMutable(c *change.Collection, h chunklist.Handle, rel int64, data []byte, after int64) {
	clen := b.list.Chunk(h).Len()
	c.WriteMemory(h, rel, data)
	if overflow := rel + int64(len(data)) - clen; overflow > 0 {
		b.consumeAfter(c, h, min(overflow, after))
	}
}

// consumeAfter removes n bytes following node anchor, or from the start of the
// list if anchor is Nil. Nodes covered completely are removed, a node covered
// partially loses its head.
func (b *Buffer) consumeAfter(c *change.Collection, anchor chunklist.Handle, n int64) {
	l := b.list
	for n > 0 {
		h := l.Head()
		if anchor != nilNode {
			h = l.Next(anchor)
		}
		assert(h != nilNode, fmt.Sprintf("%d bytes to consume past end of list", n))
		ch := l.Chunk(h)
		clen := ch.Len()
		if clen <= n {
			c.RemoveChunk(h)
			n -= clen
			continue
		}
		switch x := ch.(type) {
		case *chunk.Mutable:
			c.RemoveMemory(h, 0, n)
		case *chunk.Immutable:
			c.ShrinkImmutable(h, x.Offset()+n, clen-n)
		default:
			assert(false, fmt.Sprintf("unknown chunk type %T", ch))
		}
		n = 0
	}
}

// insert inserts data at offset.
func (b *Buffer) insert(c *change.Collection, offset int64, data []byte) {
	l := b.list
	h, start := l.Locate(offset)
	if h == nilNode {
		tracer().Debugf("insert: empty list")
		c.InsertChunk(nilNode, chunk.NewMutable(data))
		return
	}
	clen := l.Chunk(h).Len()
	rel := offset - start
	if b.isMutable(h) {
		tracer().Debugf("insert: into mutable node %d at %d", h, rel)
		c.InsertMemory(h, rel, data)
		return
	}
	prev := l.Prev(h)
	switch {
	case rel == 0 && b.isMutable(prev):
		tracer().Debugf("insert: onto tail of previous node %d", prev)
		c.StartsAtPrevious = true
		c.InsertMemory(prev, l.Chunk(prev).Len(), data)
	case rel == 0:
		tracer().Debugf("insert: new node before %d", h)
		c.InsertChunk(prev, chunk.NewMutable(data))
	case rel == clen:
		tracer().Debugf("insert: new node after %d", h)
		c.InsertChunk(h, chunk.NewMutable(data))
	default:
		tracer().Debugf("insert: split node %d at %d", h, rel)
		im := b.immutable(h)
		so := im.Offset()
		suffix := sourceChunk(im, so+rel, clen-rel)
		c.ShrinkImmutable(h, so, rel)
		m := c.InsertChunk(h, chunk.NewMutable(data))
		c.InsertChunk(m, suffix)
	}
}

// delete removes n bytes at offset.
func (b *Buffer) delete(c *change.Collection, offset, n int64) {
	l := b.list
	h, start := l.Locate(offset)
	assert(h != nilNode, fmt.Sprintf("no node at offset %d", offset))
	ch := l.Chunk(h)
	clen := ch.Len()
	rel := offset - start
	if im, ok := ch.(*chunk.Immutable); ok && rel > 0 && rel+n < clen {
		tracer().Debugf("delete: cut out of node %d at %d", h, rel)
		so := im.Offset()
		suffix := sourceChunk(im, so+rel+n, clen-rel-n)
		c.ShrinkImmutable(h, so, rel)
		c.InsertChunk(h, suffix)
		return
	}
	anchor := h
	take := min(n, clen-rel)
	switch x := ch.(type) {
	case *chunk.Mutable:
		if rel == 0 && take == clen {
			anchor = l.Prev(h)
			c.RemoveChunk(h)
		} else {
			c.RemoveMemory(h, rel, take)
		}
	case *chunk.Immutable:
		switch {
		case rel == 0 && take == clen:
			anchor = l.Prev(h)
			c.RemoveChunk(h)
		case rel == 0:
			c.ShrinkImmutable(h, x.Offset()+take, clen-take)
		default:
			c.ShrinkImmutable(h, x.Offset(), rel)
		}
	}
	tracer().Debugf("delete: %d bytes from node %d, %d following", take, h, n-take)
	b.consumeAfter(c, anchor, n-take)
	if l.IsEmpty() {
		c.InsertChunk(nilNode, chunk.NewMutable(nil))
	}
}
