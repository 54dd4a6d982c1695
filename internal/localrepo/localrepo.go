// Package localrepo serves file listings and contents from a checkout on
// local disk, so an analysis can run without network access.
package localrepo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"depchain/internal/logging"
	"depchain/internal/paths"
)

// DefaultMaxFileSize skips files larger than this (2 MiB).
const DefaultMaxFileSize int64 = 2 << 20

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8 << 10

// DefaultIgnore lists directory names never descended into.
var DefaultIgnore = []string{
	".git", ".hg", ".svn",
	"node_modules", "bower_components",
	"__pycache__", ".venv", "venv", ".tox", ".mypy_cache",
	".depchain",
}

// Options configures a Repository.
type Options struct {
	// Ignore replaces DefaultIgnore when non-empty
	Ignore           []string
	MaxFileSizeBytes int64
}

// Repository is a checkout rooted at a directory.
type Repository struct {
	root        string
	ignore      map[string]bool
	maxFileSize int64
	logger      *logging.Logger
}

// Open validates root and returns a Repository over it.
func Open(root string, opts Options, logger *logging.Logger) (*Repository, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	names := opts.Ignore
	if len(names) == 0 {
		names = DefaultIgnore
	}
	ignore := make(map[string]bool, len(names))
	for _, n := range names {
		ignore[n] = true
	}

	maxSize := opts.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Repository{root: abs, ignore: ignore, maxFileSize: maxSize, logger: logger}, nil
}

// Root returns the absolute root directory.
func (r *Repository) Root() string { return r.root }

// CacheKey is the listing cache key for this checkout.
func (r *Repository) CacheKey() string { return "local:" + filepath.ToSlash(r.root) }

// ListFiles walks the checkout and returns repository-relative paths with
// forward slashes, in lexical walk order.
func (r *Repository) ListFiles(ctx context.Context) ([]string, error) {
	var files []string
	skipped := 0

	err := filepath.WalkDir(r.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable directories are skipped, not fatal
			if d != nil && d.IsDir() && p != r.root {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != r.root && r.ignore[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished during the walk
		}
		if info.Size() > r.maxFileSize {
			skipped++
			return nil
		}

		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return nil //nolint:nilerr // cannot happen for paths under root
		}
		files = append(files, paths.NormalizePath(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Listed local checkout", map[string]interface{}{
		"root":     r.root,
		"files":    len(files),
		"oversize": skipped,
	})
	if files == nil {
		files = []string{}
	}
	return files, nil
}

// FetchContent reads a repository-relative file. Paths escaping the root,
// oversize files and binary files are refused.
func (r *Repository) FetchContent(ctx context.Context, relPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean(paths.NormalizePath(relPath))
	if !paths.IsWithinRepo(clean) {
		return "", fmt.Errorf("%s: path escapes the repository root", relPath)
	}

	f, err := os.Open(paths.JoinRepoPath(r.root, clean))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, r.maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", relPath, err)
	}
	if int64(len(data)) > r.maxFileSize {
		return "", fmt.Errorf("%s: exceeds %d bytes", relPath, r.maxFileSize)
	}
	if isBinary(data) {
		return "", fmt.Errorf("%s: binary content", relPath)
	}
	return string(data), nil
}

// isBinary reports whether data contains a NUL byte near its start.
func isBinary(data []byte) bool {
	n := len(data)
	if n > sniffLen {
		n = sniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
