package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingFetch(calls *atomic.Int32, total int) FetchFunc {
	return func(ctx context.Context) (*ListResponse, error) {
		calls.Add(1)
		return &ListResponse{Total: total}, nil
	}
}

func TestLoaderFreshHit(t *testing.T) {
	l := NewLoader()
	var calls atomic.Int32
	fetch := countingFetch(&calls, 1)

	if _, _, err := l.Get(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}
	data, refreshing, err := l.Get(context.Background(), "k", fetch)
	if err != nil {
		t.Fatal(err)
	}
	if refreshing {
		t.Error("fresh entry should not revalidate")
	}
	if data.Total != 1 {
		t.Errorf("total = %d", data.Total)
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestLoaderStaleServesOldWhileRevalidating(t *testing.T) {
	l := NewLoader()
	l.FreshFor = 0 // everything is immediately stale

	release := make(chan struct{})
	var phase atomic.Int32
	fetch := func(ctx context.Context) (*ListResponse, error) {
		if phase.Add(1) == 1 {
			return &ListResponse{Total: 100}, nil
		}
		<-release
		return &ListResponse{Total: 200}, nil
	}

	if _, _, err := l.Get(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}

	data, refreshing, err := l.Get(context.Background(), "k", fetch)
	if err != nil {
		t.Fatal(err)
	}
	if !refreshing {
		t.Error("stale entry should report revalidation")
	}
	if data.Total != 100 {
		t.Errorf("stale read = %d, want old value 100", data.Total)
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		e := l.entries["k"]
		l.mu.Unlock()
		if e != nil && e.data.Total == 200 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("revalidation never landed")
}

func TestLoaderCoalescesConcurrentMisses(t *testing.T) {
	l := NewLoader()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (*ListResponse, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &ListResponse{Total: 7}, nil
	}

	var wg sync.WaitGroup
	results := make([]*ListResponse, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 0 {
				// first one starts the flight
			} else {
				<-started
			}
			data, _, err := l.Get(context.Background(), "k", fetch)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = data
		}(i)
	}
	<-started
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}
	for i, r := range results {
		if r == nil || r.Total != 7 {
			t.Errorf("result %d = %v", i, r)
		}
	}
}

func TestLoaderStaleHitSurfacesRevalidationError(t *testing.T) {
	l := NewLoader()
	l.FreshFor = 0

	var phase atomic.Int32
	fetch := func(ctx context.Context) (*ListResponse, error) {
		if phase.Add(1) == 1 {
			return &ListResponse{Total: 42}, nil
		}
		return nil, errors.New("upstream down")
	}

	if _, _, err := l.Get(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}
	// stale hit kicks off the failing revalidation
	if _, refreshing, _ := l.Get(context.Background(), "k", fetch); !refreshing {
		t.Fatal("expected revalidation to start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, refreshing, err := l.Get(context.Background(), "k", fetch)
		if data == nil || data.Total != 42 {
			t.Fatalf("stale data lost: %v", data)
		}
		if !refreshing {
			t.Fatal("entry should still be stale")
		}
		if err != nil {
			if err.Error() != "upstream down" {
				t.Errorf("err = %v", err)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("failed revalidation never surfaced on the stale hit")
}

func TestLoaderInvalidateFencesStaleWrite(t *testing.T) {
	l := NewLoader()
	l.FreshFor = 0

	release := make(chan struct{})
	var phase atomic.Int32
	fetch := func(ctx context.Context) (*ListResponse, error) {
		if phase.Add(1) == 1 {
			return &ListResponse{Total: 1}, nil
		}
		<-release
		return &ListResponse{Total: 2}, nil
	}

	if _, _, err := l.Get(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}
	// trigger the slow background revalidation
	if _, refreshing, _ := l.Get(context.Background(), "k", fetch); !refreshing {
		t.Fatal("expected revalidation to start")
	}
	l.Invalidate("k")
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		_, running := l.inflight["k"]
		e := l.entries["k"]
		l.mu.Unlock()
		if !running {
			if e != nil {
				t.Errorf("superseded fetch wrote back entry %+v", e.data)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("flight never finished")
}
