package locations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var noFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "zipscout_location_fallback_total",
	Help: "The total number of times the embedded location tree was served",
})

const (
	simpleCacheKey  = "locations:simple"
	treeCacheKey    = "locations:tree"
	simpleCacheTime = 30 * time.Minute
	treeCacheTime   = 6 * time.Hour
)

// Cache is the shared cache surface the provider stores trees in.
type Cache interface {
	Get(key string, out any) error
	Set(key string, value any, expiration time.Duration) error
}

// Provider loads and caches the location hierarchy. A nil cache means
// memory-only operation.
type Provider struct {
	BaseUrl string
	Client  *http.Client
	Cache   Cache

	mu        sync.RWMutex
	simple    *SimpleTree
	fallback  bool
	fetchedAt time.Time
}

func NewProvider(baseUrl string, cache Cache) *Provider {
	return &Provider{
		BaseUrl: baseUrl,
		Client:  &http.Client{Timeout: 8 * time.Second},
		Cache:   cache,
	}
}

// Simple returns the name-only tree and whether it is the embedded
// fallback rather than live data.
func (p *Provider) Simple(ctx context.Context) (*SimpleTree, bool) {
	p.mu.RLock()
	ttl := simpleCacheTime
	if p.fallback {
		// retry the backend quickly while on fallback data
		ttl = 30 * time.Second
	}
	if p.simple != nil && time.Since(p.fetchedAt) < ttl {
		tree, fb := p.simple, p.fallback
		p.mu.RUnlock()
		return tree, fb
	}
	p.mu.RUnlock()

	if p.Cache != nil {
		var cached SimpleTree
		if err := p.Cache.Get(simpleCacheKey, &cached); err == nil && cached.valid() {
			p.store(&cached, false)
			return &cached, false
		}
	}

	tree, err := p.fetchSimple(ctx)
	if err != nil || !tree.valid() {
		if err != nil {
			slog.Warn("location tree unavailable, serving fallback", "error", err)
		} else {
			slog.Warn("location tree empty, serving fallback")
		}
		// the fallback is never cached so recovery is immediate
		noFallbacks.Inc()
		p.store(fallbackTree, true)
		return fallbackTree, true
	}

	if p.Cache != nil {
		if err := p.Cache.Set(simpleCacheKey, tree, simpleCacheTime); err != nil {
			slog.Warn("location tree cache write failed", "error", err)
		}
	}
	p.store(tree, false)
	return tree, false
}

func (p *Provider) store(tree *SimpleTree, fallback bool) {
	p.mu.Lock()
	p.simple = tree
	p.fallback = fallback
	p.fetchedAt = time.Now()
	p.mu.Unlock()
}

func (p *Provider) fetchSimple(ctx context.Context) (*SimpleTree, error) {
	body, err := p.get(ctx, "/api/v1/locations/tree-simple")
	if err != nil {
		return nil, err
	}
	var tree SimpleTree
	if err := sonic.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("location tree decode: %w", err)
	}
	return &tree, nil
}

// Tree returns the full coded tree with listing counts.
func (p *Provider) Tree(ctx context.Context, includeCounts bool) (*TreeResponse, error) {
	key := fmt.Sprintf("%s:%t", treeCacheKey, includeCounts)
	if p.Cache != nil {
		var cached TreeResponse
		if err := p.Cache.Get(key, &cached); err == nil && len(cached.Sidos) > 0 {
			return &cached, nil
		}
	}
	body, err := p.get(ctx, fmt.Sprintf("/api/v1/locations/tree?includeCounts=%t", includeCounts))
	if err != nil {
		return nil, err
	}
	var tree TreeResponse
	if err := sonic.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("location tree decode: %w", err)
	}
	if p.Cache != nil {
		if err := p.Cache.Set(key, &tree, treeCacheTime); err != nil {
			slog.Warn("location tree cache write failed", "error", err)
		}
	}
	return &tree, nil
}

func (p *Provider) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseUrl+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("locations status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Provinces lists the top level of whichever tree is active.
func (p *Provider) Provinces(ctx context.Context) []string {
	tree, _ := p.Simple(ctx)
	return tree.Provinces
}

// Cities lists the districts under one province; unknown provinces
// yield nothing.
func (p *Provider) Cities(ctx context.Context, province string) []string {
	tree, _ := p.Simple(ctx)
	return tree.Cities[province]
}

// Towns lists the neighborhoods under one city district.
func (p *Provider) Towns(ctx context.Context, city string) []string {
	tree, _ := p.Simple(ctx)
	return tree.Districts[city]
}
