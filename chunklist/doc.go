/*
Package chunklist provides the ordered sequence of chunks a buffer consists of.

The list is a doubly linked list kept in an arena: nodes live in a slice and
are addressed by stable handles. Removing a node only detaches it; its handle
stays valid and the node may be re-attached later, which is what undo and redo
rely on. A detached node is recycled through a free-list only after it has
been released explicitly.

Lookup by offset walks the list, accumulating offsets. There is no auxiliary
index, so lookups are O(chunk count). Locate remembers the most recently
located node and walks from there, in either direction.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package chunklist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bigbuf'
func tracer() tracing.Trace {
	return tracing.Select("bigbuf")
}

func assert(condition bool, msg string) {
	if !condition {
		panic("chunklist: " + msg)
	}
}
