package source

import "errors"

var (
	// ErrNotRegular signals that a path does not name a regular file.
	ErrNotRegular = errors.New("source: file is not a regular file")
	// ErrChanged signals that a file has been modified by someone else.
	ErrChanged = errors.New("source: file has been changed externally")
	// ErrShortContent signals that a commit received fewer bytes than announced.
	ErrShortContent = errors.New("source: content shorter than announced size")
	// ErrReopen signals that new content has been committed to a file which
	// could not be opened again afterwards.
	ErrReopen = errors.New("source: committed file cannot be re-opened")
	// ErrClosed signals access to a closed source.
	ErrClosed = errors.New("source: source is closed")
)
