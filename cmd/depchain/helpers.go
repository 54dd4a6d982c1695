package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"depchain/internal/analysis"
	"depchain/internal/cache"
	"depchain/internal/config"
	"depchain/internal/errors"
	"depchain/internal/logging"
	"depchain/internal/paths"
	"depchain/internal/storage"
)

// loadConfig reads .depchain/config.json from the working directory and
// applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return nil, errors.New(errors.InvalidRequest, "invalid configuration", err)
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = strings.ToLower(logLevelFlag)
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = strings.ToLower(logFormatFlag)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.InvalidRequest, "invalid configuration", err)
	}
	return cfg, nil
}

// newLogger creates the stderr logger described by cfg.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.InfoLevel
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  level,
		Output: os.Stderr,
	})
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openListingCache returns the listing cache chosen by config, plus a close
// function that is always safe to call. The cache is nil when disabled.
func openListingCache(cfg *config.Config, logger *logging.Logger) (analysis.ListingCache, func(), error) {
	noop := func() {}
	if noCacheFlag {
		return nil, noop, nil
	}

	ttl := time.Duration(cfg.Cache.ListingTtlSeconds) * time.Second
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil, noop, nil
	case config.CacheMemory:
		return cache.NewMemoryListingCache(cfg.Cache.MemoryEntries, ttl), noop, nil
	default:
		db, err := openDB(logger)
		if err != nil {
			return nil, noop, err
		}
		return storage.NewListingCache(db, ttl), func() { _ = db.Close() }, nil
	}
}

// openDB opens the SQLite database under the depchain home directory.
func openDB(logger *logging.Logger) (*storage.DB, error) {
	home, err := paths.GetHome()
	if err != nil {
		return nil, errors.New(errors.CacheFailure, "cannot locate the depchain home directory", err)
	}
	db, err := storage.Open(home, logger)
	if err != nil {
		return nil, errors.New(errors.CacheFailure, "cannot open the listing cache", err)
	}
	return db, nil
}

// printError writes err and any suggested fixes to w.
func printError(w io.Writer, err error) {
	var ae *errors.AnalysisError
	if !stderrors.As(err, &ae) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %v\n", ae)
	for _, fix := range ae.SuggestedFixes {
		switch fix.Type {
		case errors.RunCommand:
			fmt.Fprintf(w, "  hint: run `%s` (%s)\n", fix.Command, fix.Description)
		case errors.SetEnv:
			fmt.Fprintf(w, "  hint: set %s (%s)\n", fix.Variable, fix.Description)
		default:
			fmt.Fprintf(w, "  hint: %s\n", fix.Description)
		}
	}
}

// exitCode maps an error to the process exit status: 2 for bad input,
// 1 for everything else.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.InvalidRequest, errors.UnsupportedLanguage:
		return 2
	default:
		return 1
	}
}
