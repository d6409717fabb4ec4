package source

import (
	"context"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Source supplies the original bytes of a buffer.
//
// ReadAt follows the io.ReaderAt contract. Len is the number of bytes
// available and does not change except through Committer.Commit.
type Source interface {
	io.ReaderAt
	Len() int64
}

// Committer is implemented by sources which are able to take over a new,
// fully linearized content.
//
// Commit reads exactly size bytes from r. Implementations must leave the
// previous content intact if Commit fails. r may read from the source
// itself, so implementations must not overwrite the current content before r
// is drained.
type Committer interface {
	Commit(ctx context.Context, r io.Reader, size int64) error
}

// BlockSize is the size of I/O blocks used when streaming source content.
const BlockSize = 1 << 20

// Digest computes the xxhash64 of the complete content of src.
//
// ctx is checked between blocks.
func Digest(ctx context.Context, src Source) (uint64, error) {
	h := xxhash.New()
	sr := io.NewSectionReader(src, 0, src.Len())
	if _, err := Copy(ctx, h, sr); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Copy copies from r to w in blocks of BlockSize bytes, checking ctx between
// blocks. It returns the number of bytes written.
func Copy(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, BlockSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if m < n {
				return written, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
