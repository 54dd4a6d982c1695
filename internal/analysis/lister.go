package analysis

import (
	"context"
	"time"

	"depchain/internal/logging"
)

// FileLister returns the flat list of repository-relative blob paths.
type FileLister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// FileListerFunc adapts a function to FileLister.
type FileListerFunc func(ctx context.Context) ([]string, error)

// ListFiles calls f.
func (f FileListerFunc) ListFiles(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// ListingCache stores file listings for a freshness window chosen by the
// implementation. Get reports a miss for absent and expired entries alike.
type ListingCache interface {
	Get(key string) ([]string, bool, error)
	Set(key string, files []string) error
}

// CachingLister serves listings from a cache while they are fresh and falls
// back to the wrapped lister otherwise. Cache errors never fail a listing.
type CachingLister struct {
	lister FileLister
	cache  ListingCache
	key    string
	logger *logging.Logger
}

// NewCachingLister wraps lister with cache under key. A nil cache disables caching.
func NewCachingLister(lister FileLister, cache ListingCache, key string, logger *logging.Logger) *CachingLister {
	if logger == nil {
		logger = logging.Nop()
	}
	return &CachingLister{lister: lister, cache: cache, key: key, logger: logger}
}

// ListFiles implements FileLister.
func (c *CachingLister) ListFiles(ctx context.Context) ([]string, error) {
	if c.cache != nil {
		files, ok, err := c.cache.Get(c.key)
		switch {
		case err != nil:
			c.logger.Warn("Listing cache read failed", map[string]interface{}{
				"key":   c.key,
				"error": err.Error(),
			})
		case ok:
			c.logger.Debug("Listing cache hit", map[string]interface{}{
				"key":   c.key,
				"files": len(files),
			})
			return files, nil
		}
	}

	start := time.Now()
	files, err := c.lister.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched file listing", map[string]interface{}{
		"key":        c.key,
		"files":      len(files),
		"durationMs": time.Since(start).Milliseconds(),
	})

	if c.cache != nil {
		if err := c.cache.Set(c.key, files); err != nil {
			c.logger.Warn("Listing cache write failed", map[string]interface{}{
				"key":   c.key,
				"error": err.Error(),
			})
		}
	}
	return files, nil
}
