// Package analysis runs one dependents analysis end to end: validate the
// request, list the repository, build the reverse index over the candidate
// files and traverse it from the target.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"depchain/internal/chain"
	"depchain/internal/depmap"
	"depchain/internal/errors"
	"depchain/internal/lang"
	"depchain/internal/logging"
)

// Request describes one analysis.
type Request struct {
	// Target is the repository-relative path whose dependents are wanted
	Target string

	// Language selects the candidate files; see lang.Parse
	Language string

	// MaxDepth caps traversal depth; zero means unbounded (see chain.Options)
	MaxDepth int

	// Unique collapses the output to one record per file
	Unique bool
}

// Result is the outcome of a successful analysis.
type Result struct {
	Dependencies  []chain.DependentRecord `json:"dependencies" yaml:"dependencies"`
	FilesAnalyzed int                     `json:"filesAnalyzed" yaml:"filesAnalyzed"`
}

// Analyzer wires a file lister and a content source to the engine.
type Analyzer struct {
	lister  FileLister
	source  depmap.ContentSource
	builder *depmap.Builder
	logger  *logging.Logger
}

// NewAnalyzer creates an Analyzer. A nil builder uses default options.
func NewAnalyzer(lister FileLister, source depmap.ContentSource, builder *depmap.Builder, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.Nop()
	}
	if builder == nil {
		builder = depmap.NewBuilder(depmap.Options{}, logger)
	}
	return &Analyzer{
		lister:  lister,
		source:  source,
		builder: builder,
		logger:  logger,
	}
}

// Analyze runs the analysis. It returns either a complete result or a single
// *errors.AnalysisError; problems with individual files are only logged.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	language, err := lang.Parse(req.Language)
	if err != nil {
		return nil, err
	}
	target := strings.TrimPrefix(strings.TrimSpace(req.Target), "./")
	if target == "" {
		return nil, errors.Errorf(errors.InvalidRequest, "target file is required")
	}

	start := time.Now()
	logger := a.logger.With(map[string]interface{}{"runId": uuid.New().String()})
	logger.Info("Starting analysis", map[string]interface{}{
		"target":   target,
		"language": string(language),
	})

	files, err := a.lister.ListFiles(ctx)
	if err != nil {
		if errors.Is(err, errors.ListingFailed) {
			return nil, err
		}
		return nil, errors.New(errors.ListingFailed, "could not obtain the repository file list", err)
	}

	candidates := lang.FilterFiles(files, language)
	byLanguage := make(map[string]interface{})
	for l, n := range lang.CountByLanguage(lang.NewRepositoryFiles(candidates)) {
		byLanguage[string(l)] = n
	}
	logger.Debug("Filtered candidate files", map[string]interface{}{
		"listed":     len(files),
		"candidates": len(candidates),
		"byLanguage": byLanguage,
	})

	index, _, err := a.builder.Build(ctx, a.source, candidates)
	if err != nil {
		return nil, errors.New(errors.InternalError, "building the dependency map was interrupted", err)
	}

	records := chain.Traverse(index, target, chain.Options{MaxDepth: req.MaxDepth})
	if req.Unique {
		records = chain.Unique(records)
	}

	logger.Info("Analysis completed", map[string]interface{}{
		"target":        target,
		"dependents":    len(records),
		"filesAnalyzed": len(candidates),
		"durationMs":    time.Since(start).Milliseconds(),
	})

	return &Result{
		Dependencies:  records,
		FilesAnalyzed: len(candidates),
	}, nil
}
