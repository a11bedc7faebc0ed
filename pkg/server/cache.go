package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type LocalEntry struct {
	Expires time.Time
	Data    []byte
}

// Cache is a redis cache with a short-lived local memory layer in
// front of it. Values are stored as JSON both locally and in redis so
// Get can decode into any caller-owned type.
type Cache struct {
	Addr     string
	Password string
	DB       int
	client   *redis.Client
	ctx      context.Context

	mu       sync.Mutex
	memCache map[string]LocalEntry
}

const localCacheTime = time.Minute

func NewCache(addr, password string, db int) *Cache {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		client:   rdb,
		ctx:      ctx,
		memCache: make(map[string]LocalEntry),
	}
}

func (c *Cache) Get(key string, out any) error {
	c.mu.Lock()
	local, found := c.memCache[key]
	if found {
		if time.Now().Before(local.Expires) {
			c.mu.Unlock()
			return json.Unmarshal(local.Data, out)
		}
		delete(c.memCache, key)
	}
	c.mu.Unlock()

	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, out); err != nil {
		return err
	}
	c.mu.Lock()
	c.memCache[key] = LocalEntry{Expires: time.Now().Add(localCacheTime), Data: data}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	local := expiration
	if local > localCacheTime {
		local = localCacheTime
	}
	c.mu.Lock()
	c.memCache[key] = LocalEntry{Expires: time.Now().Add(local), Data: data}
	c.mu.Unlock()
	return c.client.Set(c.ctx, key, data, expiration).Err()
}

func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	delete(c.memCache, key)
	c.mu.Unlock()
	return c.client.Del(c.ctx, key).Err()
}

func (c *Cache) Close() {
	c.client.Close()
}
