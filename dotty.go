package bigbuf

import (
	"context"
	"fmt"
	"io"

	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/chunklist"
)

// Buffer2Dot outputs the chunk list of a buffer in Graphviz DOT format
// (for debugging purposes).
func Buffer2Dot(b *Buffer, w io.Writer) error {
	return b.shared(context.Background(), func() error {
		io.WriteString(w, "strict digraph {\n")
		io.WriteString(w, "\trankdir=LR;\n")
		io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
		nodelist, edgelist := "", ""
		var pos int64
		prev := chunklist.Nil
		for h, c := range b.list.All() {
			nodelist += fmt.Sprintf("\t\"%d\" [label=\"%s\" %s];\n", h, chunkLabel(c, pos), nodeDotStyles(c))
			if prev != chunklist.Nil {
				edgelist += fmt.Sprintf("\t\"%d\" -> \"%d\";\n", prev, h)
			}
			pos += c.Len()
			prev = h
		}
		io.WriteString(w, nodelist)
		io.WriteString(w, edgelist)
		_, err := io.WriteString(w, "}\n")
		return err
	})
}

func chunkLabel(c chunk.Chunk, pos int64) string {
	if im, ok := c.(*chunk.Immutable); ok {
		return fmt.Sprintf("%d @%d\\nsrc %d", c.Len(), pos, im.Offset())
	}
	return fmt.Sprintf("%d @%d\\nmem", c.Len(), pos)
}

func nodeDotStyles(c chunk.Chunk) string {
	s := ",style=filled,shape=box"
	if c.Kind() == chunk.KindMutable {
		s += ",fillcolor=\"" + hexcolors[min(len(hexcolors)-1, int(c.Len()/64))] + "\""
	} else {
		s += ",color=black,fillcolor=\"#a3d7e4\""
	}
	return s
}

// mutable chunks get darker the more bytes they hold
var hexcolors = [...]string{"#FFEEDD", "#FFDDCC", "#FFCCAA", "#FFBB88", "#FFAA66",
	"#FF9944", "#FF8822", "#FF7700", "#ff6600"}
