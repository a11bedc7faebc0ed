package client

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_swr_fresh_hits_total",
		Help: "The total number of fresh cache hits",
	})
	noStaleHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_swr_stale_hits_total",
		Help: "The total number of stale hits served while revalidating",
	})
	noCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_swr_coalesced_total",
		Help: "The total number of requests joined onto an inflight fetch",
	})
)

// FetchFunc loads the value for one cache key.
type FetchFunc func(ctx context.Context) (*ListResponse, error)

type swrEntry struct {
	data      *ListResponse
	fetchedAt time.Time
	version   uint64
	// lastErr holds the outcome of the most recent background
	// revalidation for this entry, nil after a successful one.
	lastErr error
}

type flight struct {
	done chan struct{}
	data *ListResponse
	err  error
}

// Loader is a stale-while-revalidate cache. A fresh entry is returned
// as-is; a stale one is returned immediately while a single background
// fetch revalidates it; concurrent misses for the same key share one
// upstream request. Invalidate bumps a version so that a fetch that was
// already running cannot write back outdated data afterwards.
type Loader struct {
	FreshFor time.Duration
	StaleFor time.Duration

	mu       sync.Mutex
	entries  map[string]*swrEntry
	inflight map[string]*flight
	versions map[string]uint64
}

func NewLoader() *Loader {
	return &Loader{
		FreshFor: 1500 * time.Millisecond,
		StaleFor: 5 * time.Minute,
		entries:  make(map[string]*swrEntry),
		inflight: make(map[string]*flight),
		versions: make(map[string]uint64),
	}
}

// Get returns the value for key. The second result reports whether the
// returned data is stale and a background revalidation is underway. A
// stale hit whose previous revalidation failed still returns the data,
// together with that error, so callers can tell a quiet refresh from a
// broken upstream.
func (l *Loader) Get(ctx context.Context, key string, fetch FetchFunc) (*ListResponse, bool, error) {
	l.mu.Lock()
	e := l.entries[key]
	now := time.Now()

	if e != nil && now.Sub(e.fetchedAt) < l.FreshFor {
		l.mu.Unlock()
		noCacheHits.Inc()
		return e.data, false, nil
	}

	if e != nil && now.Sub(e.fetchedAt) < l.StaleFor {
		if _, running := l.inflight[key]; !running {
			fl := &flight{done: make(chan struct{})}
			l.inflight[key] = fl
			go l.revalidate(key, fl, fetch)
		}
		l.mu.Unlock()
		noStaleHits.Inc()
		return e.data, true, e.lastErr
	}

	// miss: join the inflight fetch or start one
	if fl, running := l.inflight[key]; running {
		l.mu.Unlock()
		noCoalesced.Inc()
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-fl.done:
			return fl.data, false, fl.err
		}
	}
	fl := &flight{done: make(chan struct{})}
	l.inflight[key] = fl
	l.mu.Unlock()

	l.revalidate(key, fl, fetch)
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-fl.done:
		return fl.data, false, fl.err
	}
}

func (l *Loader) revalidate(key string, fl *flight, fetch FetchFunc) {
	l.mu.Lock()
	version := l.versions[key]
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	data, err := fetch(ctx)

	l.mu.Lock()
	if l.versions[key] == version {
		if err == nil {
			l.entries[key] = &swrEntry{data: data, fetchedAt: time.Now(), version: version}
		} else if e := l.entries[key]; e != nil {
			e.lastErr = err
		}
	}
	delete(l.inflight, key)
	l.mu.Unlock()

	fl.data, fl.err = data, err
	close(fl.done)
}

// Invalidate drops a key and fences off any fetch already running for
// it, so the next Get observes fresh data only.
func (l *Loader) Invalidate(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	l.versions[key]++
}

func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.entries {
		delete(l.entries, key)
		l.versions[key]++
	}
}
