package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ErrUnsafeCacheKey is returned for URLs whose cache path would leave the cache root.
var ErrUnsafeCacheKey = errors.New("cache key escapes cache root")

// PageFetcher renders a URL to HTML. It is only called on a cache miss.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageCache is a write-once, never-expiring disk cache of rendered pages.
type PageCache struct {
	root    string
	fetcher PageFetcher

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

func NewPageCache(root string, f PageFetcher) *PageCache {
	return &PageCache{root: root, fetcher: f}
}

// CacheKey maps a URL to its relative cache path:
// "https://x.com/careers/" -> "x.com/careers/index.html",
// "https://x.com/careers"  -> "x.com/careers.html".
func CacheKey(raw string) string {
	key := raw
	if strings.HasPrefix(key, "https://") {
		key = strings.TrimPrefix(key, "https://")
	} else {
		key = strings.TrimPrefix(key, "http://")
	}
	if strings.HasSuffix(key, "/") {
		key += "index.html"
	}
	if !strings.HasSuffix(key, ".html") {
		key += ".html"
	}
	return key
}

// Path is where raw's content lives on disk.
func (c *PageCache) Path(raw string) (string, error) {
	p := filepath.Join(c.root, filepath.FromSlash(CacheKey(raw)))
	rel, err := filepath.Rel(c.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeCacheKey, raw)
	}
	return p, nil
}

// Get returns the cached content for raw, fetching and persisting it on a miss.
// Concurrent misses for the same URL share one fetch.
func (c *PageCache) Get(ctx context.Context, raw string) (string, error) {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return "", fmt.Errorf("create cache root: %w", err)
	}

	path, err := c.Path(raw)
	if err != nil {
		return "", err
	}

	if content, ok, err := readCached(path); err != nil {
		return "", err
	} else if ok {
		c.hits.Add(1)
		return content, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		// someone else may have filled it while we waited
		if content, ok, err := readCached(path); err != nil || ok {
			if ok {
				c.hits.Add(1)
			}
			return content, err
		}

		c.misses.Add(1)
		log.Printf("[cache] miss url=%s", raw)
		content, err := c.fetcher.Fetch(ctx, raw)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", raw, err)
		}

		if err := writeAtomic(path, content); err != nil {
			return "", fmt.Errorf("write cache %s: %w", path, err)
		}
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Stats reports cache hits and misses since the cache was created.
func (c *PageCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func readCached(path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func writeAtomic(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
