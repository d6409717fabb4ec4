package change

import (
	"fmt"
	"strings"

	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/chunklist"
)

// Collection gathers the changes performed by one logical edit.
//
// Every method of Collection performs the physical mutation on the list right
// away and records it. A collection is handed to a Tracker with Push when the
// edit is complete.
type Collection struct {
	list    *chunklist.List
	Mod     Modification
	changes []Change
	// StartsAtPrevious is set if the edit started in the predecessor of the node
	// covering the edit offset.
	StartsAtPrevious bool
}

// NewCollection creates an empty collection for edit m on list l.
func NewCollection(l *chunklist.List, m Modification) *Collection {
	return &Collection{list: l, Mod: m}
}

// Len returns the number of changes recorded.
func (c *Collection) Len() int {
	return len(c.changes)
}

// IsEmpty reports whether no change has been recorded.
func (c *Collection) IsEmpty() bool {
	return len(c.changes) == 0
}

func (c *Collection) record(ch Change) {
	ch.apply(c.list)
	c.changes = append(c.changes, ch)
}

// InsertChunk links a new node holding ch after node at (at the front if at is
// Nil) and returns its handle.
func (c *Collection) InsertChunk(at chunklist.Handle, ch chunk.Chunk) chunklist.Handle {
	assert(ch != nil, "insert of nil chunk")
	ins := &insertChunk{h: chunklist.Nil, after: at, c: ch}
	c.record(ins)
	return ins.h
}

// RemoveChunk unlinks node h.
func (c *Collection) RemoveChunk(h chunklist.Handle) {
	assert(c.list.Attached(h), fmt.Sprintf("remove of detached node %d", h))
	c.record(&removeChunk{h: h})
}

// WriteMemory overwrites the mutable chunk at h with data, starting at
// chunk-local offset off. The chunk grows if data reaches past its end.
func (c *Collection) WriteMemory(h chunklist.Handle, off int64, data []byte) {
	clen := c.mutable(h).Len()
	assert(off >= 0 && off <= clen, fmt.Sprintf("write-memory offset %d outside [0,%d]", off, clen))
	n := min(int64(len(data)), clen-off)
	c.record(&writeMemory{h: h, offset: off, old: make([]byte, n), data: data})
}

// InsertMemory inserts data into the mutable chunk at h at chunk-local offset
// off.
func (c *Collection) InsertMemory(h chunklist.Handle, off int64, data []byte) {
	clen := c.mutable(h).Len()
	assert(off >= 0 && off <= clen, fmt.Sprintf("insert-memory offset %d outside [0,%d]", off, clen))
	c.record(&insertMemory{h: h, offset: off, data: data})
}

// RemoveMemory removes n bytes at chunk-local offset off from the mutable
// chunk at h.
func (c *Collection) RemoveMemory(h chunklist.Handle, off, n int64) {
	clen := c.mutable(h).Len()
	assert(off >= 0 && n >= 0 && off+n <= clen,
		fmt.Sprintf("remove-memory [%d,%d) outside [0,%d]", off, off+n, clen))
	c.record(&removeMemory{h: h, offset: off, length: n})
}

// ShrinkImmutable narrows the immutable chunk at h to length bytes starting at
// source offset offset. The new range has to lie within the current one.
func (c *Collection) ShrinkImmutable(h chunklist.Handle, offset, length int64) {
	im, ok := c.list.Chunk(h).(*chunk.Immutable)
	assert(ok, fmt.Sprintf("shrink of non-immutable node %d", h))
	assert(offset >= im.Offset() && length >= 0 && offset+length <= im.Offset()+im.Len(),
		fmt.Sprintf("shrink of %s to %d@%d grows the chunk", im, length, offset))
	c.record(&shrinkImmutable{h: h, newOffset: offset, newLen: length})
}

func (c *Collection) mutable(h chunklist.Handle) *chunk.Mutable {
	m, ok := c.list.Chunk(h).(*chunk.Mutable)
	assert(ok, fmt.Sprintf("memory change on non-mutable node %d", h))
	return m
}

func (c *Collection) undo() {
	for i := len(c.changes) - 1; i >= 0; i-- {
		c.changes[i].revert(c.list)
	}
}

func (c *Collection) redo() {
	for _, ch := range c.changes {
		ch.apply(c.list)
	}
}

func (c *Collection) release(applied bool) {
	for i := len(c.changes) - 1; i >= 0; i-- {
		c.changes[i].release(c.list, applied)
	}
	c.changes = nil
}

func (c *Collection) String() string {
	var sb strings.Builder
	sb.WriteString(c.Mod.String())
	sb.WriteString(" {")
	for i, ch := range c.changes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ch.String())
	}
	sb.WriteString("}")
	return sb.String()
}

// --- Groups ----------------------------------------------------------------

// Group is a unit of undo and redo. Its collections are undone in reverse
// order and redone in order.
type Group struct {
	collections []*Collection
}

// Collections returns the collections of g in the order they were performed.
func (g *Group) Collections() []*Collection {
	return g.collections
}

// Modifications returns the edits of g in the order they were performed.
func (g *Group) Modifications() []Modification {
	mods := make([]Modification, len(g.collections))
	for i, c := range g.collections {
		mods[i] = c.Mod
	}
	return mods
}

func (g *Group) undo() []Modification {
	mods := make([]Modification, 0, len(g.collections))
	for i := len(g.collections) - 1; i >= 0; i-- {
		g.collections[i].undo()
		mods = append(mods, g.collections[i].Mod.Inverse())
	}
	return mods
}

func (g *Group) redo() []Modification {
	for _, c := range g.collections {
		c.redo()
	}
	return g.Modifications()
}

func (g *Group) release(applied bool) {
	for i := len(g.collections) - 1; i >= 0; i-- {
		g.collections[i].release(applied)
	}
	g.collections = nil
}
