package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"depchain/internal/errors"
	"depchain/internal/imports"
	"depchain/internal/lang"
	"depchain/internal/localrepo"
	"depchain/internal/paths"
)

var (
	importsRoot   string
	importsFormat string
)

var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "Show the imports extracted from one local file",
	Long: `Show the import edges depchain extracts from a single file, resolved to
repository-relative paths. Useful to check why a file is or is not reported
as a dependent.

Examples:
  depchain imports src/components/Button.tsx
  depchain imports app/views.py --root ~/code/shop --format human`,
	Args: cobra.ExactArgs(1),
	RunE: runImports,
}

func init() {
	importsCmd.Flags().StringVar(&importsRoot, "root", ".", "Repository root the file path is resolved against")
	importsCmd.Flags().StringVar(&importsFormat, "format", "json", "Output format (json, human, yaml)")
	rootCmd.AddCommand(importsCmd)
}

// ImportsResponseCLI lists the edges extracted from one file.
type ImportsResponseCLI struct {
	File    lang.RepositoryFile  `json:"file" yaml:"file"`
	Imports []imports.ImportEdge `json:"imports" yaml:"imports"`
}

func runImports(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx, cancel := newContext()
	defer cancel()

	repo, err := localrepo.Open(importsRoot, localrepo.Options{
		Ignore:           cfg.Local.Ignore,
		MaxFileSizeBytes: cfg.Fetch.MaxFileSizeBytes,
	}, logger)
	if err != nil {
		return errors.New(errors.InvalidRequest, "cannot open repository root", err)
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return errors.New(errors.InvalidRequest, "invalid file path", err)
	}
	rel, err := paths.CanonicalizePath(abs, repo.Root())
	if err != nil || !paths.IsWithinRepo(rel) {
		return errors.Errorf(errors.InvalidRequest, "%s is not inside %s", args[0], repo.Root())
	}

	content, err := repo.FetchContent(ctx, rel)
	if err != nil {
		return errors.New(errors.ContentUnavailable, "cannot read "+rel, err)
	}

	resp := &ImportsResponseCLI{
		File:    lang.NewRepositoryFile(rel),
		Imports: imports.ExtractEdges(content, rel),
	}
	output, err := FormatResponse(resp, OutputFormat(importsFormat))
	if err != nil {
		return errors.New(errors.InvalidRequest, "cannot format output", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
