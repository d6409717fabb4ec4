package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// File is a source reading the content of an OS file on demand.
//
// The file is opened read-only. File records size and modification time at
// open (and after each commit) to detect modifications made by other processes.
type File struct {
	path    string
	file    *os.File
	size    int64
	modTime time.Time
	mode    os.FileMode
}

var _ Source = (*File)(nil)
var _ Committer = (*File)(nil)

// OpenFile opens a regular file as a source.
func OpenFile(path string) (*File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}
	f, err := os.Open(path) // just open for read access
	if err != nil {
		return nil, err
	}
	tracer().Debugf("file source: opened %s with %d bytes", path, fi.Size())
	return &File{
		path:    path,
		file:    f,
		size:    fi.Size(),
		modTime: fi.ModTime(),
		mode:    fi.Mode(),
	}, nil
}

// Path returns the path the file has been opened with.
func (f *File) Path() string {
	return f.path
}

// Len returns the size of the file at open or last commit.
func (f *File) Len() int64 {
	return f.size
}

// ReadAt is part of interface io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.file == nil {
		return 0, ErrClosed
	}
	if off+int64(len(p)) > f.size {
		// never read bytes appended by others
		if off >= f.size {
			return 0, io.EOF
		}
		n, err := f.file.ReadAt(p[:f.size-off], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return f.file.ReadAt(p, off)
}

// Changed reports whether the file on disk differs in size or modification time
// from what has been recorded at open or last commit.
func (f *File) Changed() (bool, error) {
	fi, err := os.Stat(f.path)
	if err != nil {
		return true, err
	}
	return fi.Size() != f.size || !fi.ModTime().Equal(f.modTime), nil
}

// SameFile reports whether path refers to the file backing this source.
func (f *File) SameFile(path string) bool {
	fi1, err := os.Stat(path)
	if err != nil {
		return false
	}
	fi2, err := os.Stat(f.path)
	if err != nil {
		return false
	}
	return os.SameFile(fi1, fi2)
}

// Commit writes size bytes from r into a temporary file next to the source file
// and renames it over the source file. The source is re-opened afterwards.
//
// r is drained completely before the source file is replaced, so r may read
// from f. On failure the source file is left untouched.
func (f *File) Commit(ctx context.Context, r io.Reader, size int64) (err error) {
	if f.file == nil {
		return ErrClosed
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	n, err := Copy(ctx, tmp, io.LimitReader(r, size))
	if err != nil {
		return err
	}
	if n < size {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortContent, n, size)
	}
	if err = tmp.Chmod(f.mode.Perm()); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return err
	}
	return f.reopen()
}

// openFile opens the file after a commit. Tests replace it.
var openFile = os.Open

// reopen switches to the file committed at f.path. If that fails, f keeps the
// previous descriptor, which still reads the content from before the commit.
func (f *File) reopen() error {
	file, err := openFile(f.path)
	if err != nil {
		tracer().Errorf("file source: cannot re-open %s, keeping previous content: %v", f.path, err)
		return fmt.Errorf("%w: %s: %v", ErrReopen, f.path, err)
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		tracer().Errorf("file source: cannot stat %s, keeping previous content: %v", f.path, err)
		return fmt.Errorf("%w: %s: %v", ErrReopen, f.path, err)
	}
	old := f.file
	f.file = file
	f.size = fi.Size()
	f.modTime = fi.ModTime()
	f.mode = fi.Mode()
	old.Close()
	tracer().Debugf("file source: committed %d bytes to %s", f.size, f.path)
	return nil
}

// Close closes the underlying OS file.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
