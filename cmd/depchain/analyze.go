package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"depchain/internal/analysis"
	"depchain/internal/depmap"
	"depchain/internal/errors"
	"depchain/internal/github"
	"depchain/internal/localrepo"
)

var (
	analyzeTarget    string
	analyzeLanguage  string
	analyzePath      string
	analyzeMaxDepth  int
	analyzeUnique    bool
	analyzeFormat    string
	analyzeBatchSize int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [owner/repo[@branch]]",
	Short: "List every file that depends on a target file",
	Long: `List the direct and transitive dependents of a target file.

The repository is read from GitHub unless --path points at a local checkout.
Each dependent is reported with its depth and the chain of files linking it
back to the target; a file reachable along several chains is reported once
per depth unless --unique is given.

Examples:
  depchain analyze acme/web --target src/utils/date.js --language javascript
  depchain analyze acme/api@develop --target pkg/models.py --language python --unique
  depchain analyze --path . --target src/app.tsx --language tsx --format human
  depchain analyze acme/web --target lib/core.ts --language typescript --max-depth 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTarget, "target", "t", "", "Repository-relative path of the target file")
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "Language: javascript, typescript, jsx, tsx, python")
	analyzeCmd.Flags().StringVar(&analyzePath, "path", "", "Analyze a local checkout instead of GitHub")
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", 0, "Maximum traversal depth (default from config, 0 = unbounded)")
	analyzeCmd.Flags().BoolVar(&analyzeUnique, "unique", false, "Report each dependent once, at its shallowest depth")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, human, yaml)")
	analyzeCmd.Flags().IntVar(&analyzeBatchSize, "batch-size", 0, "Files fetched concurrently per batch (default from config)")
	_ = analyzeCmd.MarkFlagRequired("target")
	_ = analyzeCmd.MarkFlagRequired("language")
	rootCmd.AddCommand(analyzeCmd)
}

// repositorySource is what a repository backend offers an analysis.
type repositorySource interface {
	analysis.FileLister
	depmap.ContentSource
	CacheKey() string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx, cancel := newContext()
	defer cancel()

	var repo repositorySource
	switch {
	case analyzePath != "":
		if len(args) > 0 {
			return errors.Errorf(errors.InvalidRequest, "give either a repository or --path, not both")
		}
		local, err := localrepo.Open(analyzePath, localrepo.Options{
			Ignore:           cfg.Local.Ignore,
			MaxFileSizeBytes: cfg.Fetch.MaxFileSizeBytes,
		}, logger)
		if err != nil {
			return errors.New(errors.InvalidRequest, "cannot open local checkout", err)
		}
		repo = local
	case len(args) == 1:
		ref, err := github.ParseRepo(args[0])
		if err != nil {
			return err
		}
		client := github.NewClient(github.Options{
			APIBaseURL:        cfg.GitHub.APIBaseURL,
			RawBaseURL:        cfg.GitHub.RawBaseURL,
			Token:             cfg.GitHub.Token,
			Timeout:           time.Duration(cfg.Fetch.TimeoutMs) * time.Millisecond,
			MaxFileSizeBytes:  cfg.Fetch.MaxFileSizeBytes,
			RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		}, logger)
		repo = github.NewRepository(client, ref)
	default:
		return errors.Errorf(errors.InvalidRequest, "a repository (owner/repo[@branch]) or --path is required")
	}

	listingCache, closeCache, err := openListingCache(cfg, logger)
	if err != nil {
		// The cache is an optimization; run without it
		logger.Warn("Listing cache unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		listingCache = nil
	}
	defer closeCache()

	batchSize := cfg.Fetch.BatchSize
	if analyzeBatchSize > 0 {
		batchSize = analyzeBatchSize
	}
	maxDepth := cfg.Traversal.MaxDepth
	if cmd.Flags().Changed("max-depth") {
		maxDepth = analyzeMaxDepth
	}

	analyzer := analysis.NewAnalyzer(
		analysis.NewCachingLister(repo, listingCache, repo.CacheKey(), logger),
		repo,
		depmap.NewBuilder(depmap.Options{BatchSize: batchSize}, logger),
		logger,
	)
	result, err := analyzer.Analyze(ctx, analysis.Request{
		Target:   analyzeTarget,
		Language: analyzeLanguage,
		MaxDepth: maxDepth,
		Unique:   analyzeUnique,
	})
	if err != nil {
		return err
	}

	output, err := FormatResponse(result, OutputFormat(analyzeFormat))
	if err != nil {
		return errors.New(errors.InvalidRequest, "cannot format output", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	logger.Debug("Analyze command completed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
	return nil
}
