package depmap

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"depchain/internal/imports"
	"depchain/internal/logging"
)

// DefaultBatchSize bounds how many fetches run at once.
const DefaultBatchSize = 10

// ContentSource returns the full text of a repository file. Any error means
// the file contributes no edges.
type ContentSource interface {
	FetchContent(ctx context.Context, path string) (string, error)
}

// ContentSourceFunc adapts a function to ContentSource.
type ContentSourceFunc func(ctx context.Context, path string) (string, error)

// FetchContent calls f.
func (f ContentSourceFunc) FetchContent(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Options configures a Builder.
type Options struct {
	// BatchSize is the number of concurrent fetches per batch (default 10)
	BatchSize int

	// Extractor parses fetched content (default imports.NewExtractor())
	Extractor *imports.Extractor
}

// BuildStats summarizes one build.
type BuildStats struct {
	Files    int           `json:"files"`
	Fetched  int           `json:"fetched"`
	Failed   int           `json:"failed"`
	Edges    int           `json:"edges"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// Builder fetches candidate files in bounded batches and indexes their imports.
type Builder struct {
	batchSize int
	extractor *imports.Extractor
	logger    *logging.Logger
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(opts Options, logger *logging.Logger) *Builder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Extractor == nil {
		opts.Extractor = imports.NewExtractor()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{
		batchSize: opts.BatchSize,
		extractor: opts.Extractor,
		logger:    logger,
	}
}

type fetchResult struct {
	content string
	err     error
}

// Build fetches every file, extracts its imports and returns the reverse index.
//
// Batches run strictly one after another; within a batch fetches run
// concurrently and the whole batch settles before the next starts. Fetch
// results are integrated into the index only here, in file order, so the
// index is never written concurrently. Per-file failures are logged and
// skipped. The only error returned is the context's, checked between batches.
func (b *Builder) Build(ctx context.Context, src ContentSource, files []string) (*ReverseIndex, BuildStats, error) {
	start := time.Now()
	index := NewReverseIndex()
	stats := BuildStats{Files: len(files)}

	for lo := 0; lo < len(files); lo += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		hi := min(lo+b.batchSize, len(files))
		batch := files[lo:hi]
		results := make([]fetchResult, len(batch))

		g := new(errgroup.Group)
		for i, file := range batch {
			g.Go(func() error {
				content, err := src.FetchContent(ctx, file)
				results[i] = fetchResult{content: content, err: err}
				return nil
			})
		}
		_ = g.Wait()
		stats.Batches++

		for i, file := range batch {
			r := results[i]
			if r.err != nil {
				stats.Failed++
				b.logger.Debug("Skipping file: content unavailable", map[string]interface{}{
					"file":  file,
					"error": r.err.Error(),
				})
				continue
			}
			stats.Fetched++
			for _, edge := range b.extractor.ExtractEdges(r.content, file) {
				index.Add(edge)
				stats.Edges++
			}
		}
	}

	stats.Duration = time.Since(start)
	b.logger.Info("Dependency map built", map[string]interface{}{
		"files":      stats.Files,
		"fetched":    stats.Fetched,
		"failed":     stats.Failed,
		"edges":      stats.Edges,
		"keys":       index.Len(),
		"batches":    stats.Batches,
		"durationMs": stats.Duration.Milliseconds(),
	})

	return index, stats, nil
}
