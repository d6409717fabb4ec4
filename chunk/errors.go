package chunk

import "errors"

var (
	// ErrIndexOutOfBounds signals invalid byte offsets for reading or splicing.
	ErrIndexOutOfBounds = errors.New("chunk: index out of bounds")
	// ErrSourceBounds signals an immutable chunk reaching outside its source.
	ErrSourceBounds = errors.New("chunk: range exceeds source bounds")
)
