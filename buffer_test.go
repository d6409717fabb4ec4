package bigbuf

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// testContent returns n bytes of deterministic content.
func testContent(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

func newTestBuffer(t *testing.T, content []byte, opts Options) *Buffer {
	t.Helper()
	b, err := FromBytes(content, opts)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// layout renders the chunk list as e.g. "I[100@0] M[15] I[431@115]".
func layout(b *Buffer) string {
	var parts []string
	for _, c := range b.list.All() {
		parts = append(parts, fmt.Sprintf("%v", c))
	}
	return strings.Join(parts, " ")
}

func contentOf(t *testing.T, b *Buffer) []byte {
	t.Helper()
	p := make([]byte, b.Len()+10)
	n, err := b.Read(p, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p[:n]
}

func verify(t *testing.T, b *Buffer, want []byte) {
	t.Helper()
	if err := b.list.Check(); err != nil {
		t.Fatalf("structure: %v (%s)", err, layout(b))
	}
	if b.Len() != int64(len(want)) || b.list.Len() != b.Len() {
		t.Fatalf("length: buffer %d, list %d, want %d", b.Len(), b.list.Len(), len(want))
	}
	if got := contentOf(t, b); !bytes.Equal(got, want) {
		t.Fatalf("content mismatch at layout %s", layout(b))
	}
}

func TestWriteSplitsAndMerges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(546), Options{})
	if err := b.Write(100, bytes.Repeat([]byte{'a'}, 10)); err != nil {
		t.Fatal(err)
	}
	if got := layout(b); got != "I[100@0] M[10] I[436@110]" {
		t.Errorf("unexpected layout after first write: %s", got)
	}
	if err := b.Write(105, bytes.Repeat([]byte{'b'}, 10)); err != nil {
		t.Fatal(err)
	}
	if got := layout(b); got != "I[100@0] M[15] I[431@115]" {
		t.Errorf("unexpected layout after second write: %s", got)
	}
	want := testContent(546)
	copy(want[100:], "aaaaabbbbbbbbbb")
	verify(t, b, want)
	if b.Version() != 2 || !b.IsModified() {
		t.Errorf("expected version 2, have %d", b.Version())
	}
}

func TestDeleteHead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(546), Options{})
	if err := b.Delete(0, 25); err != nil {
		t.Fatal(err)
	}
	if got := layout(b); got != "I[521@25]" {
		t.Errorf("unexpected layout: %s", got)
	}
	verify(t, b, testContent(546)[25:])
}

func TestDeleteAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(100), Options{})
	b.Write(10, []byte("hello"))
	b.Insert(50, []byte("world"))
	if err := b.Delete(0, b.Len()); err != nil {
		t.Fatal(err)
	}
	if got := layout(b); got != "M[0]" {
		t.Errorf("expected single empty mutable chunk, have %s", got)
	}
	verify(t, b, nil)
	// an empty buffer accepts writes and inserts at offset 0
	if err := b.Insert(0, []byte("xyz")); err != nil {
		t.Fatal(err)
	}
	if err := b.Write(3, []byte("!")); err != nil {
		t.Fatal(err)
	}
	verify(t, b, []byte("xyz!"))
	b.Undo()
	b.Undo()
	verify(t, b, nil)
	b.Undo()
	b.Undo()
	b.Undo()
	verify(t, b, testContent(100))
	if got := layout(b); got != "I[100@0]" {
		t.Errorf("expected original layout, have %s", got)
	}
}

func TestInsertBoundaries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, []byte("0123456789"), Options{})
	b.Insert(0, []byte("<"))
	b.Insert(b.Len(), []byte(">"))
	if got := layout(b); got != "M[1] I[10@0] M[1]" {
		t.Errorf("unexpected layout: %s", got)
	}
	b.Insert(5, []byte("--"))
	if got := layout(b); got != "M[1] I[4@0] M[2] I[6@4] M[1]" {
		t.Errorf("unexpected layout after split: %s", got)
	}
	b.Insert(1, []byte("a")) // at end of mutable predecessor
	b.Insert(7, []byte("b")) // inside mutable
	if got := layout(b); got != "M[2] I[4@0] M[3] I[6@4] M[1]" {
		t.Errorf("unexpected layout after merges: %s", got)
	}
	verify(t, b, []byte("<a0123-b-456789>"))
}

func TestDeleteCutsImmutable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, []byte("0123456789"), Options{})
	b.Delete(3, 4)
	if got := layout(b); got != "I[3@0] I[3@7]" {
		t.Errorf("unexpected layout: %s", got)
	}
	verify(t, b, []byte("012789"))
	b.Write(2, []byte("ab")) // across the chunk boundary
	if got := layout(b); got != "I[2@0] M[2] I[2@8]" {
		t.Errorf("unexpected layout after write: %s", got)
	}
	verify(t, b, []byte("01ab89"))
	b.Delete(1, 4)
	verify(t, b, []byte("09"))
	if got := layout(b); got != "I[1@0] I[1@9]" {
		t.Errorf("unexpected layout after delete: %s", got)
	}
}

func TestWriteExtendsAtEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, []byte("0123456789"), Options{})
	b.Write(8, []byte("abcd"))
	verify(t, b, []byte("01234567abcd"))
	if got := layout(b); got != "I[8@0] M[4]" {
		t.Errorf("unexpected layout: %s", got)
	}
	b.Write(12, []byte("ef"))
	b.Write(0, []byte("ABCDEFGHIJ"))
	verify(t, b, []byte("ABCDEFGHIJcdef"))
	if got := layout(b); got != "M[14]" {
		t.Errorf("unexpected layout: %s", got)
	}
}

func TestReplace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, []byte("hello world"), Options{})
	if err := b.Replace(6, 5, []byte("there!")); err != nil {
		t.Fatal(err)
	}
	verify(t, b, []byte("hello there!"))
	if b.Version() != 1 || b.Stats().UndoDepth != 1 {
		t.Errorf("replace must count as one edit, have version %d", b.Version())
	}
	b.Undo()
	verify(t, b, []byte("hello world"))
	if got := layout(b); got != "I[11@0]" {
		t.Errorf("unexpected layout after undo: %s", got)
	}
	b.Redo()
	verify(t, b, []byte("hello there!"))
}

func TestEditErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(20), Options{})
	for i, err := range []error{
		b.Write(-1, []byte("x")),
		b.Write(21, []byte("x")),
		b.Insert(21, []byte("x")),
		b.Delete(19, 2),
		b.Delete(20, 1),
		b.Replace(15, 10, nil),
	} {
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("%d: expected out-of-range error, have %v", i, err)
		}
	}
	if err := b.Delete(0, -1); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected illegal argument error, have %v", err)
	}
	if b.IsModified() {
		t.Errorf("failed edits must not modify the buffer")
	}
	// zero-length edits are no-ops
	b.Write(5, nil)
	b.Insert(20, nil)
	b.Delete(20, 0)
	if b.IsModified() || b.CanUndo() {
		t.Errorf("zero-length edits must not modify the buffer")
	}
	b.SetReadOnly(true)
	err := b.Write(0, []byte("x"))
	if !errors.Is(err, ErrReadOnly) || !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected read-only error, have %v", err)
	}
	verify(t, b, testContent(20))
}

func TestUndoRedoRestoresLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(300), Options{})
	type state struct {
		layout  string
		content []byte
	}
	snapshot := func() state { return state{layout(b), contentOf(t, b)} }
	states := []state{snapshot()}
	edits := []func() error{
		func() error { return b.Write(50, []byte("0123456789")) },
		func() error { return b.Insert(55, []byte("abc")) },
		func() error { return b.Delete(40, 30) },
		func() error { return b.Replace(0, 10, []byte("head")) },
		func() error { return b.Write(b.Len()-2, []byte("tail!")) },
		func() error { return b.Delete(100, 50) },
	}
	for _, edit := range edits {
		if err := edit(); err != nil {
			t.Fatal(err)
		}
		states = append(states, snapshot())
	}
	for i := len(states) - 2; i >= 0; i-- {
		if err := b.Undo(); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(states[i], snapshot(), cmp.AllowUnexported(state{})); diff != "" {
			t.Fatalf("undo to state %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if b.CanUndo() || !b.CanRedo() {
		t.Errorf("expected exhausted undo stack")
	}
	for i := 1; i < len(states); i++ {
		if err := b.Redo(); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(states[i], snapshot(), cmp.AllowUnexported(state{})); diff != "" {
			t.Fatalf("redo to state %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if b.Version() != uint64(3*len(edits)) {
		t.Errorf("expected undo and redo to bump the version, have %d", b.Version())
	}
}

// applyModel performs an edit on a plain byte slice.
func applyModel(model []byte, op int, off, n int64, data []byte) []byte {
	switch op {
	case 0: // write
		end := min(off+int64(len(data)), int64(len(model)))
		return append(append(append([]byte(nil), model[:off]...), data...), model[end:]...)
	case 1: // insert
		return append(append(append([]byte(nil), model[:off]...), data...), model[off:]...)
	case 2: // delete
		return append(append([]byte(nil), model[:off]...), model[off+n:]...)
	}
	// replace
	rest := append(append([]byte(nil), model[:off]...), model[off+n:]...)
	return applyModel(rest, 1, off, 0, data)
}

func TestRandomEditsAgainstModel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(4711))
	for _, tracking := range []bool{true, false} {
		opts := Options{}
		if !tracking {
			opts.Tracking = TrackNone
		}
		b := newTestBuffer(t, testContent(1000), opts)
		model := testContent(1000)
		var history [][]byte
		var layouts []string
		for i := 0; i < 400; i++ {
			history = append(history, model)
			layouts = append(layouts, layout(b))
			l := int64(len(model))
			op := rnd.Intn(4)
			if l == 0 && (op == 2 || op == 3) {
				op = 1
			}
			data := make([]byte, 1+rnd.Intn(40))
			rnd.Read(data)
			var off, n int64
			var err error
			switch op {
			case 0:
				off = rnd.Int63n(l + 1)
				err = b.Write(off, data)
			case 1:
				off = rnd.Int63n(l + 1)
				err = b.Insert(off, data)
			default:
				off = rnd.Int63n(l)
				n = 1 + rnd.Int63n(min(60, l-off))
				if op == 2 {
					err = b.Delete(off, n)
				} else {
					err = b.Replace(off, n, data)
				}
			}
			if err != nil {
				t.Fatalf("op %d (%d at %d): %v", i, op, off, err)
			}
			model = applyModel(model, op, off, n, data)
			verify(t, b, model)
		}
		if !tracking {
			if b.CanUndo() {
				t.Errorf("expected no history without tracking")
			}
			continue
		}
		for i := len(history) - 1; i >= 0; i-- {
			if err := b.Undo(); err != nil {
				t.Fatal(err)
			}
			verify(t, b, history[i])
			if got := layout(b); got != layouts[i] {
				t.Fatalf("undo %d: layout %s, want %s", i, got, layouts[i])
			}
		}
		for b.CanRedo() {
			b.Redo()
		}
		verify(t, b, model)
	}
}
