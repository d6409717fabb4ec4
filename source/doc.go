/*
Package source provides the sources of original bytes for a bigbuf buffer.

A source is the source of truth a buffer's immutable chunks refer to. It is
never modified while chunks reference it; the only way to change its content is
a Commit of a completely linearized new content, after which clients have to
re-base all references.

Two sources are provided: Memory, holding a byte slice, and File, reading an OS
file on demand. Sources which support committing implement Committer.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package source

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bigbuf'
func tracer() tracing.Trace {
	return tracing.Select("bigbuf")
}
