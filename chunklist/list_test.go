package chunklist

import (
	"testing"

	"github.com/npillmayer/bigbuf/chunk"
	"github.com/npillmayer/bigbuf/source"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func mutable(s string) chunk.Chunk {
	return chunk.NewMutable([]byte(s))
}

func contents(l *List) string {
	var s string
	for _, c := range l.All() {
		p := make([]byte, c.Len())
		c.ReadAt(p, 0)
		s += string(p) + "|"
	}
	return s
}

func TestInsertDetachReattach(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	l := New(mutable("ab"), mutable("cd"))
	if l.Count() != 2 || l.Len() != 4 {
		t.Fatalf("unexpected count/len: %d/%d", l.Count(), l.Len())
	}
	h := l.InsertAfter(l.Head(), mutable("XY"))
	if got := contents(l); got != "ab|XY|cd|" {
		t.Fatalf("unexpected content after insert: %q", got)
	}
	prev := l.Detach(h)
	if prev != l.Head() || contents(l) != "ab|cd|" || l.Len() != 4 {
		t.Fatalf("unexpected state after detach: %q", contents(l))
	}
	l.Reattach(h, prev)
	if got := contents(l); got != "ab|XY|cd|" || l.Len() != 6 {
		t.Fatalf("unexpected content after re-attach: %q", got)
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}
	front := l.InsertAfter(Nil, mutable("<"))
	if l.Head() != front || contents(l) != "<|ab|XY|cd|" {
		t.Fatalf("insert at front failed: %q", contents(l))
	}
	l.Detach(l.Tail())
	if got := contents(l); got != "<|ab|XY|" {
		t.Fatalf("unexpected content after detaching tail: %q", got)
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestReleaseRecyclesHandles(t *testing.T) {
	l := New(mutable("ab"), mutable("cd"))
	h := l.Tail()
	l.Detach(h)
	l.Release(h)
	if l.Attached(h) {
		t.Fatalf("released node must not be attached")
	}
	h2 := l.InsertAfter(l.Head(), mutable("ef"))
	if h2 != h {
		t.Fatalf("expected released handle %d to be recycled, got %d", h, h2)
	}
	if got := contents(l); got != "ab|ef|" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestLocate(t *testing.T) {
	l := New(mutable("abc"), mutable("de"), mutable("fghi"))
	for _, tc := range []struct {
		offset int64
		text   string
		start  int64
	}{
		{0, "abc", 0}, {2, "abc", 0}, {3, "de", 3}, {4, "de", 3},
		{5, "fghi", 5}, {8, "fghi", 5}, {9, "fghi", 5}, // 9 == length
		{1, "abc", 0}, // walks backwards from hint
	} {
		h, start := l.Locate(tc.offset)
		if h == Nil {
			t.Fatalf("offset %d: no node located", tc.offset)
		}
		p := make([]byte, l.Chunk(h).Len())
		l.Chunk(h).ReadAt(p, 0)
		if string(p) != tc.text || start != tc.start {
			t.Errorf("offset %d: expected %q@%d, got %q@%d", tc.offset, tc.text, tc.start, p, start)
		}
	}
	if h, _ := l.Locate(10); h != Nil {
		t.Errorf("expected Nil for offset beyond length")
	}
	if h, _ := l.Locate(-1); h != Nil {
		t.Errorf("expected Nil for negative offset")
	}
}

func TestLocateEmptyList(t *testing.T) {
	l := New()
	if h, _ := l.Locate(0); h != Nil {
		t.Fatalf("expected Nil for empty list")
	}
	if err := l.Check(); err == nil {
		t.Fatalf("expected empty list to fail the invariant check")
	}
	l = New(mutable(""))
	if h, start := l.Locate(0); h != l.Head() || start != 0 {
		t.Fatalf("expected placeholder to be located at 0")
	}
	if err := l.Check(); err != nil {
		t.Fatalf("placeholder list should be valid: %v", err)
	}
}

func TestSpliceAndResizeMaintainLength(t *testing.T) {
	src := source.NewMemory([]byte("0123456789"))
	imm, _ := chunk.NewImmutable(src, 0, 10)
	l := New(mutable("ab"), imm)
	l.Splice(l.Head(), 1, 0, []byte("XYZ"))
	if l.Len() != 15 {
		t.Fatalf("expected length 15 after splice, is %d", l.Len())
	}
	oo, ol := l.Resize(l.Tail(), 2, 5)
	if oo != 0 || ol != 10 || l.Len() != 10 {
		t.Fatalf("unexpected resize: %d %d len=%d", oo, ol, l.Len())
	}
	if got := contents(l); got != "aXYZb|23456|" {
		t.Fatalf("unexpected content: %q", got)
	}
	if err := l.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestCursor(t *testing.T) {
	l := New(mutable("abc"), mutable("de"), mutable("fghi"))
	c := l.CursorAt(4)
	if !c.Valid() || c.Start() != 3 {
		t.Fatalf("cursor not positioned at second chunk")
	}
	var starts []int64
	for ok := true; ok; ok = c.Next() {
		starts = append(starts, c.Start())
	}
	if len(starts) != 2 || starts[0] != 3 || starts[1] != 5 {
		t.Fatalf("unexpected cursor walk: %v", starts)
	}
	if !c.Seek(0) || c.Start() != 0 {
		t.Fatalf("cursor did not seek backwards")
	}
	if c.Seek(20) {
		t.Fatalf("seek beyond length should fail")
	}
}

func TestSummary(t *testing.T) {
	src := source.NewMemory([]byte("0123456789"))
	imm, _ := chunk.NewImmutable(src, 0, 10)
	l := New(mutable("ab"), imm)
	s := l.Summary()
	if s.Chunks != 2 || s.Mutable != 1 || s.Immutable != 1 || s.Bytes != 12 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	l := New(mutable("ab"), mutable("cd"), mutable("ef"))
	mid := l.Next(l.Head())
	l.nodes[mid].prev = l.Tail()
	if err := l.Check(); err == nil {
		t.Errorf("expected broken back link to be detected")
	}
	l.Reset(mutable("ab"), mutable("cd"))
	if err := l.Check(); err != nil {
		t.Fatalf("list is valid after reset: %v", err)
	}
	l.length++
	if err := l.Check(); err == nil {
		t.Errorf("expected length mismatch to be detected")
	}
}
