package bigbuf

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/npillmayer/bigbuf/chunk"
)

var (
	dumpHeader    = color.New(color.Bold)
	dumpMutable   = color.New(color.FgYellow)
	dumpImmutable = color.New(color.FgCyan)
)

// Dump writes a listing of the chunks of b to w, one line per chunk. Colors
// are used unless color.NoColor is set.
func (b *Buffer) Dump(w io.Writer) error {
	return b.shared(context.Background(), func() error {
		s := b.list.Summary()
		if _, err := dumpHeader.Fprintf(w, "buffer: %d bytes in %d chunks (%d mutable), version %d\n",
			b.list.Len(), s.Chunks, s.Mutable, b.version.Load()); err != nil {
			return err
		}
		var pos int64
		i := 0
		for h, c := range b.list.All() {
			var err error
			switch x := c.(type) {
			case *chunk.Immutable:
				_, err = dumpImmutable.Fprintf(w, "%4d  [%12d,%12d)  node %-4d source @%d\n",
					i, pos, pos+c.Len(), h, x.Offset())
			default:
				_, err = dumpMutable.Fprintf(w, "%4d  [%12d,%12d)  node %-4d memory %s\n",
					i, pos, pos+c.Len(), h, preview(c))
			}
			if err != nil {
				return err
			}
			pos += c.Len()
			i++
		}
		return nil
	})
}

// preview renders the first bytes of a chunk in hex.
func preview(c chunk.Chunk) string {
	p := make([]byte, min(c.Len(), 8))
	n, _ := c.ReadAt(p, 0)
	s := fmt.Sprintf("% x", p[:n])
	if int64(n) < c.Len() {
		s += " …"
	}
	return s
}
