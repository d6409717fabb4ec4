package change

import (
	"fmt"

	"github.com/npillmayer/bigbuf/chunklist"
)

// Policy controls whether a Tracker retains history.
type Policy uint8

const (
	TrackAll  Policy = iota // keep groups for undo and redo
	TrackNone               // discard groups as soon as they are closed
)

func (p Policy) String() string {
	switch p {
	case TrackAll:
		return "all"
	case TrackNone:
		return "none"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// Tracker maintains the undo and redo stacks for a chunk list.
//
// A Tracker is not safe for concurrent use; callers serialize access the same
// way they serialize access to the list.
type Tracker struct {
	list      *chunklist.List
	policy    Policy
	maxGroups int // 0 means unlimited
	undo      []*Group
	redo      []*Group
	open      *Group
	depth     int
}

// NewTracker creates a tracker for list l. If maxGroups is positive, the undo
// stack never holds more than maxGroups groups; older ones are dropped.
func NewTracker(l *chunklist.List, policy Policy, maxGroups int) *Tracker {
	return &Tracker{list: l, policy: policy, maxGroups: max(0, maxGroups)}
}

// Policy returns the current tracking policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// SetPolicy switches the tracking policy. Switching to TrackNone drops all
// retained history.
func (t *Tracker) SetPolicy(p Policy) {
	t.policy = p
	if p == TrackNone {
		t.Clear()
	}
}

// NewCollection starts a collection for edit m on the tracked list.
func (t *Tracker) NewCollection(m Modification) *Collection {
	return NewCollection(t.list, m)
}

// BeginGroup opens a group. All collections pushed until the matching EndGroup
// are undone and redone together. Groups may nest; only the outermost one
// counts.
func (t *Tracker) BeginGroup() {
	if t.depth == 0 {
		t.open = &Group{}
	}
	t.depth++
}

// EndGroup closes the group opened by the matching BeginGroup and returns the
// collections it holds. Closing the outermost group commits it.
func (t *Tracker) EndGroup() []*Collection {
	assert(t.depth > 0, "end of group without begin")
	t.depth--
	g := t.open
	collections := g.collections
	if t.depth == 0 {
		t.open = nil
		t.commit(g)
	}
	return collections
}

// InGroup reports whether a group is open.
func (t *Tracker) InGroup() bool {
	return t.depth > 0
}

// Push hands a completed collection to the tracker. Without an open group the
// collection forms a group of its own. Empty collections are ignored.
func (t *Tracker) Push(c *Collection) {
	if c == nil || c.IsEmpty() {
		return
	}
	if t.open != nil {
		t.open.collections = append(t.open.collections, c)
		return
	}
	t.commit(&Group{collections: []*Collection{c}})
}

func (t *Tracker) commit(g *Group) {
	if len(g.collections) == 0 {
		return
	}
	if t.policy == TrackNone {
		g.release(true)
		return
	}
	t.undo = append(t.undo, g)
	for _, r := range t.redo {
		r.release(false)
	}
	t.redo = nil
	if t.maxGroups > 0 && len(t.undo) > t.maxGroups {
		n := len(t.undo) - t.maxGroups
		for _, old := range t.undo[:n] {
			old.release(true)
		}
		t.undo = append(t.undo[:0:0], t.undo[n:]...)
		tracer().Debugf("dropped %d groups from undo history", n)
	}
}

// Undo reverts the most recent group and returns the modifications describing
// the reversal, in the order they were applied. If there is nothing to undo,
// Undo returns false.
func (t *Tracker) Undo() ([]Modification, bool) {
	assert(t.depth == 0, "undo within open group")
	if len(t.undo) == 0 {
		return nil, false
	}
	g := t.undo[len(t.undo)-1]
	t.undo = t.undo[:len(t.undo)-1]
	mods := g.undo()
	t.redo = append(t.redo, g)
	tracer().Debugf("undo: %v", mods)
	return mods, true
}

// Redo re-applies the most recently undone group and returns its
// modifications. If there is nothing to redo, Redo returns false.
func (t *Tracker) Redo() ([]Modification, bool) {
	assert(t.depth == 0, "redo within open group")
	if len(t.redo) == 0 {
		return nil, false
	}
	g := t.redo[len(t.redo)-1]
	t.redo = t.redo[:len(t.redo)-1]
	mods := g.redo()
	t.undo = append(t.undo, g)
	tracer().Debugf("redo: %v", mods)
	return mods, true
}

// CanUndo reports whether Undo would revert a group.
func (t *Tracker) CanUndo() bool {
	return len(t.undo) > 0
}

// CanRedo reports whether Redo would re-apply a group.
func (t *Tracker) CanRedo() bool {
	return len(t.redo) > 0
}

// UndoDepth returns the number of groups on the undo stack.
func (t *Tracker) UndoDepth() int {
	return len(t.undo)
}

// RedoDepth returns the number of groups on the redo stack.
func (t *Tracker) RedoDepth() int {
	return len(t.redo)
}

// Clear drops both stacks and releases nodes owned by the dropped groups.
func (t *Tracker) Clear() {
	for _, g := range t.undo {
		g.release(true)
	}
	for _, g := range t.redo {
		g.release(false)
	}
	t.undo, t.redo = nil, nil
}

// Reset drops both stacks without touching the list. It is meant to follow a
// reset of the list, after which no handle of the history is valid anymore.
func (t *Tracker) Reset() {
	t.undo, t.redo = nil, nil
	t.open, t.depth = nil, 0
}
