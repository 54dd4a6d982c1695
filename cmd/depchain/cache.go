package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"depchain/internal/errors"
	"depchain/internal/storage"
)

var (
	cacheFormat      string
	cacheExpiredOnly bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the file listing cache",
	Long: `Repository file listings are cached in ~/.depchain/depchain.db (or
$DEPCHAIN_HOME) so repeated analyses of the same repository skip the tree
request while the listing is fresh.

Examples:
  depchain cache stats
  depchain cache purge
  depchain cache purge --expired`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listing cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached listings",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

func init() {
	cacheStatsCmd.Flags().StringVar(&cacheFormat, "format", "human", "Output format (json, human, yaml)")
	cachePurgeCmd.Flags().BoolVar(&cacheExpiredOnly, "expired", false, "Only delete expired listings")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

// CacheStatsResponseCLI describes the listing cache.
type CacheStatsResponseCLI struct {
	Path       string                    `json:"path" yaml:"path"`
	TTLSeconds int                       `json:"ttlSeconds" yaml:"ttlSeconds"`
	Stats      storage.ListingCacheStats `json:"stats" yaml:"stats"`
}

func openCommandCache() (*storage.DB, *storage.ListingCache, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, 0, err
	}
	db, err := openDB(newLogger(cfg))
	if err != nil {
		return nil, nil, 0, err
	}
	ttl := time.Duration(cfg.Cache.ListingTtlSeconds) * time.Second
	return db, storage.NewListingCache(db, ttl), cfg.Cache.ListingTtlSeconds, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	db, listings, ttl, err := openCommandCache()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stats, err := listings.Stats()
	if err != nil {
		return errors.New(errors.CacheFailure, "cannot read cache statistics", err)
	}

	output, err := FormatResponse(&CacheStatsResponseCLI{
		Path:       db.Path(),
		TTLSeconds: ttl,
		Stats:      stats,
	}, OutputFormat(cacheFormat))
	if err != nil {
		return errors.New(errors.InvalidRequest, "cannot format output", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	db, listings, _, err := openCommandCache()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	n, err := listings.Purge(cacheExpiredOnly)
	if err != nil {
		return errors.New(errors.CacheFailure, "cannot purge the listing cache", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached listing(s)\n", n)
	return nil
}
