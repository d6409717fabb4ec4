/*
Package change records reversible edits of a chunk list.

Every physical mutation of a chunk list is a Change. The changes performed by
one logical edit (a Modification: write, insert or delete) are collected in a
Collection. One or more collections which have to be undone and redone
together form a Group. A Tracker keeps undo and redo stacks of groups.

Changes refer to list nodes by handle. Removing a node only detaches it, so
reverting a removal re-attaches the very same node and all later changes
addressing it stay valid. Nodes no longer reachable from any retained group
are released to the list's free-list when groups are discarded.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package change

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bigbuf'
func tracer() tracing.Trace {
	return tracing.Select("bigbuf")
}

func assert(condition bool, msg string) {
	if !condition {
		panic("change: " + msg)
	}
}
