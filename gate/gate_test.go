package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestReadersShareWriterExcludes(t *testing.T) {
	g := New()
	ctx := context.Background()
	if err := g.RLock(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.RLock(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.TryLock(); err == nil {
		t.Fatalf("expected writer to be excluded by readers")
	}
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := g.Lock(tctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, have %v", err)
	}
	g.RUnlock()
	g.RUnlock()
	if err := g.Lock(ctx); err != nil {
		t.Fatal(err)
	}
	g.Unlock()
}

func TestWriterWaitsForReader(t *testing.T) {
	g := New()
	ctx := context.Background()
	if err := g.RLock(ctx); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	acquired := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := g.Lock(ctx); err != nil {
			t.Error(err)
			return
		}
		close(acquired)
		g.Unlock()
	}()
	select {
	case <-acquired:
		t.Fatalf("writer acquired gate held by reader")
	case <-time.After(20 * time.Millisecond):
	}
	g.RUnlock()
	wg.Wait()
	select {
	case <-acquired:
	default:
		t.Errorf("writer did not acquire gate after reader left")
	}
}

func TestBusyRejectsWriters(t *testing.T) {
	g := New()
	ctx := context.Background()
	release, err := g.RLockBusy(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Busy() {
		t.Errorf("expected gate to be busy")
	}
	if err := g.Lock(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, have %v", err)
	}
	// plain readers are still admitted
	if err := g.RLock(ctx); err != nil {
		t.Fatal(err)
	}
	g.RUnlock()
	release()
	release()
	if g.Busy() {
		t.Errorf("expected gate not to be busy after release")
	}
	if err := g.Lock(ctx); err != nil {
		t.Fatal(err)
	}
	g.Unlock()
}

func TestCanceledReader(t *testing.T) {
	g := New()
	if err := g.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	release, err := g.RLockBusy(ctx)
	if err == nil {
		t.Fatalf("expected canceled acquisition to fail")
	}
	release()
	if g.Busy() {
		t.Errorf("failed acquisition must not mark gate busy")
	}
	g.Unlock()
}

func TestWaitingBusyReaderRejectsWriters(t *testing.T) {
	g := New()
	if err := g.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		_, err := g.RLockBusy(ctx)
		done <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !g.Busy() {
		if time.Now().After(deadline) {
			t.Fatalf("waiting busy reader did not mark gate busy")
		}
		time.Sleep(time.Millisecond)
	}
	wctx, wcancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	if err := g.Lock(wctx); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while busy reader waits, have %v", err)
	}
	wcancel()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled acquisition, have %v", err)
	}
	if g.Busy() {
		t.Errorf("abandoned busy reader must not leave gate busy")
	}
	g.Unlock()
	if err := g.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	g.Unlock()
}
