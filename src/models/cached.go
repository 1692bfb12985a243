package models

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/agrimind/agrimind/src/cache"
)

// CachedModel wraps a Model and caches Generate results keyed by a
// fingerprint of the prompt plus the generation parameters, so two calls with
// identical inputs return the same string without a second external call.
type CachedModel struct {
	Model       Model
	Cache       *cache.LRUCache
	FilePath    string
	Fingerprint string
}

// NewCachedModel creates a caching wrapper. fingerprint should encode the
// model name and generation parameters (see GenParams.Fingerprint); filePath
// optionally persists the cache across restarts.
func NewCachedModel(model Model, size int, ttl time.Duration, fingerprint, filePath string) *CachedModel {
	c := &CachedModel{
		Model:       model,
		Cache:       cache.NewLRUCache(size, ttl),
		FilePath:    filePath,
		Fingerprint: fingerprint,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedModel) key(prompt string) string {
	return cache.HashKey(c.Fingerprint + "\x00" + prompt)
}

func (c *CachedModel) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // ignore errors (file not found, etc)
	}
	defer f.Close()

	var dump map[string]cache.CacheEntry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedModel) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	// Atomic write: write to temp, then rename
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// Generate checks the cache before calling the underlying model.
func (c *CachedModel) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)
	if val, ok := c.Cache.Get(key); ok {
		if s, ok := val.(string); ok {
			return s, nil
		}
	}

	res, err := c.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.Cache.Set(key, res)
	c.save()
	return res, nil
}

// GenerateStream passes through to the underlying model's streaming mode.
// A cached prompt returns a single-chunk stream; otherwise the full text is
// cached once the stream completes cleanly.
func (c *CachedModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	key := c.key(prompt)
	if val, ok := c.Cache.Get(key); ok {
		if s, ok := val.(string); ok {
			return singleChunkStream(s, nil), nil
		}
	}

	innerCh, err := c.Model.GenerateStream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		for chunk := range innerCh {
			ch <- chunk
			if chunk.Done && chunk.FullText != "" && chunk.Err == nil {
				c.Cache.Set(key, chunk.FullText)
				c.save()
			}
		}
	}()
	return ch, nil
}

var _ Model = (*CachedModel)(nil)
