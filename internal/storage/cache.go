package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultListingTTL is how long a cached listing stays fresh.
const DefaultListingTTL = 300 * time.Second

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		// Options are static; NewWriter cannot fail with them
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return decoder
}

// ListingCacheStats summarizes the listing cache table.
type ListingCacheStats struct {
	Entries      int   `json:"entries" yaml:"entries"`
	Expired      int   `json:"expired" yaml:"expired"`
	Files        int   `json:"files" yaml:"files"`
	PayloadBytes int64 `json:"payloadBytes" yaml:"payloadBytes"`
}

// ListingCache persists repository file listings with a freshness window.
type ListingCache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewListingCache creates a ListingCache. A non-positive ttl uses DefaultListingTTL.
func NewListingCache(db *DB, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{db: db, ttl: ttl, now: time.Now}
}

// Get returns the cached listing for key. Expired rows are deleted and
// reported as a miss.
func (c *ListingCache) Get(key string) ([]string, bool, error) {
	var payload []byte
	var expiresAt int64

	err := c.db.QueryRow(`
		SELECT payload, expires_at
		FROM listing_cache
		WHERE key = ?
	`, key).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("listing cache lookup failed: %w", err)
	}

	if c.now().UnixMilli() >= expiresAt {
		if _, err := c.db.Exec("DELETE FROM listing_cache WHERE key = ?", key); err != nil {
			return nil, false, fmt.Errorf("failed to delete expired listing: %w", err)
		}
		return nil, false, nil
	}

	raw, err := zstdDecoder().DecodeAll(payload, nil)
	if err != nil {
		return nil, false, fmt.Errorf("listing cache payload corrupt: %w", err)
	}
	var files []string
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, false, fmt.Errorf("listing cache payload corrupt: %w", err)
	}
	if files == nil {
		files = []string{}
	}
	return files, true, nil
}

// Set stores files under key, replacing any previous entry.
func (c *ListingCache) Set(key string, files []string) error {
	if files == nil {
		files = []string{}
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}
	payload := zstdEncoder().EncodeAll(raw, nil)

	now := c.now()
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO listing_cache (key, payload, file_count, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, key, payload, len(files), now.Add(c.ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set listing cache: %w", err)
	}
	return nil
}

// Purge deletes every entry, or only expired ones when expiredOnly is set.
// It returns the number of rows removed.
func (c *ListingCache) Purge(expiredOnly bool) (int64, error) {
	var res sql.Result
	var err error
	if expiredOnly {
		res, err = c.db.Exec("DELETE FROM listing_cache WHERE expires_at <= ?", c.now().UnixMilli())
	} else {
		res, err = c.db.Exec("DELETE FROM listing_cache")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge listing cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports entry counts and payload size.
func (c *ListingCache) Stats() (ListingCacheStats, error) {
	var stats ListingCacheStats
	err := c.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(file_count), 0),
			COALESCE(SUM(LENGTH(payload)), 0)
		FROM listing_cache
	`, c.now().UnixMilli()).Scan(&stats.Entries, &stats.Expired, &stats.Files, &stats.PayloadBytes)
	if err != nil {
		return ListingCacheStats{}, fmt.Errorf("failed to read listing cache stats: %w", err)
	}
	return stats, nil
}
