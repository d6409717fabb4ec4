package bigbuf

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestReadReportsModifiedRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(546), Options{})
	b.Write(100, make([]byte, 10))
	b.Write(105, make([]byte, 10))
	b.Insert(300, []byte("abc"))
	b.Insert(303, []byte("def")) // merges with the previous insert
	var mods []ModifiedRange
	p := make([]byte, 1000)
	n, err := b.Read(p, 50, &mods)
	if err != nil {
		t.Fatal(err)
	}
	if n != b.Len()-50 {
		t.Errorf("expected %d bytes, have %d", b.Len()-50, n)
	}
	want := []ModifiedRange{{100, 115}, {300, 306}}
	if diff := cmp.Diff(want, mods); diff != "" {
		t.Errorf("modified ranges mismatch (-want +got):\n%s", diff)
	}
	mods = mods[:0]
	n, _ = b.Read(p[:10], 110, &mods)
	if n != 10 || len(mods) != 1 || mods[0] != (ModifiedRange{110, 115}) {
		t.Errorf("unexpected partial read: %d bytes, %v", n, mods)
	}
}

func TestReadBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, testContent(20), Options{})
	p := make([]byte, 10)
	if n, err := b.Read(p, 20, nil); n != 0 || err != nil {
		t.Errorf("expected empty read at end, have %d, %v", n, err)
	}
	if n, _ := b.Read(p, 15, nil); n != 5 {
		t.Errorf("expected short read of 5 bytes, have %d", n)
	}
	if _, err := b.Read(p, -1, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected out-of-range error, have %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.ReadContext(ctx, p, 0, nil); err == nil {
		t.Errorf("expected canceled read to fail")
	}
}

func TestReader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bigbuf")
	defer teardown()
	//
	b := newTestBuffer(t, []byte("hello world"), Options{})
	b.Replace(0, 5, []byte("goodbye"))
	data, err := io.ReadAll(b.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "goodbye world" {
		t.Errorf("unexpected content %q", data)
	}
}
