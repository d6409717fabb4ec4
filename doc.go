/*
Package bigbuf implements an editable buffer for very large binary content.

# Buffers

A Buffer presents the content of a source, usually a file of many gigabytes,
as a sequence of bytes which may be overwritten, extended and shortened at
arbitrary offsets. Edits never copy the source. Internally a buffer is a
piece table: an ordered list of chunks, each either referencing a range of
the untouched source (immutable) or owning a small region of edited bytes
(mutable). Write, Insert and Delete split, shrink and merge chunks; every
physical change is recorded so that edits may be undone and redone without
limit.

	buf, err := bigbuf.Open("disk.img", bigbuf.Options{})
	…
	err = buf.Write(0x1000, []byte{0xde, 0xad})
	n, err := buf.Read(p, 0x0ff0, nil)
	pos, err := buf.Find([]byte("GPT"), 0, bigbuf.FindOptions{})
	buf.Undo()

# Concurrency

A buffer admits one writer or many readers at a time. Every operation has a
variant accepting a context, which bounds the time spent waiting for access
and, for long running scans, the scan itself. Find, Digest and saving to an
external destination mark the buffer busy; edits attempted meanwhile fail
right away with ErrBusy instead of waiting for the scan to complete.

Observers are notified after an operation has released the buffer, so they
may read from the buffer they observe.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package bigbuf

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bigbuf'
func tracer() tracing.Trace {
	return tracing.Select("bigbuf")
}

// BufferError is an error type for the bigbuf module
type BufferError string

func (e BufferError) Error() string {
	return string(e)
}

// ErrInvalidState is flagged whenever a buffer refuses an operation in its
// current state.
const ErrInvalidState = BufferError("invalid buffer state")

// ErrOutOfRange is flagged whenever an offset or length lies outside the
// buffer.
const ErrOutOfRange = BufferError("offset out of range")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = BufferError("illegal arguments")

// ErrStructure is the text of panics raised when the chunk structure of a
// buffer violates an invariant. It indicates a defect, not a usage error.
const ErrStructure = BufferError("structural invariant violated")

// ErrReadOnly is returned by edits of a read-only buffer.
var ErrReadOnly = fmt.Errorf("%w: buffer is read-only", ErrInvalidState)

// ErrBusy is returned by edits attempted while a scan holds the buffer.
var ErrBusy = fmt.Errorf("%w: buffer is busy", ErrInvalidState)

// ErrClosed is returned by operations on a closed buffer.
var ErrClosed = fmt.Errorf("%w: buffer is closed", ErrInvalidState)

func assert(condition bool, msg string) {
	if !condition {
		panic(fmt.Sprintf("bigbuf: %s: %s", ErrStructure, msg))
	}
}
