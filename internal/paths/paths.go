// Package paths holds the path conventions shared by the extractor, the
// index and the traversal: repository-relative, forward-slash separated.
package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"depchain/internal/lang"
)

const (
	// HomeEnvVar overrides the directory holding depchain's cache database.
	HomeEnvVar = "DEPCHAIN_HOME"
	// DefaultHome is created under the user's home directory.
	DefaultHome = ".depchain"
)

// GetHome returns the depchain data directory.
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, DefaultHome), nil
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = repoRoot
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo reports whether a canonical repo-relative path stays inside the root.
func IsWithinRepo(canonical string) bool {
	clean := path.Clean(NormalizePath(canonical))
	return clean != ".." && !strings.HasPrefix(clean, "../") && !strings.HasPrefix(clean, "/")
}

// NormalizePath converts backslashes to forward slashes regardless of host OS.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(NormalizePath(canonicalPath), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// Dir returns the directory part of a repository path, "" for top-level files.
func Dir(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Join concatenates a directory and a remainder without cleaning either.
func Join(dir, rest string) string {
	if dir == "" {
		return rest
	}
	if rest == "" {
		return dir
	}
	return dir + "/" + rest
}

// ResolveRelative resolves an import specifier written in a file living in
// fromDir. "./x" is concatenated onto fromDir; each leading "../" pops one
// segment (clamping at the root) before concatenating. Anything else is
// already repository-relative.
func ResolveRelative(fromDir, specifier string) string {
	switch {
	case strings.HasPrefix(specifier, "./"):
		return Join(fromDir, specifier[2:])
	case strings.HasPrefix(specifier, "../"):
		dir, rest := fromDir, specifier
		for strings.HasPrefix(rest, "../") {
			rest = rest[3:]
			dir = Dir(dir)
		}
		return Join(dir, rest)
	default:
		return strings.TrimPrefix(specifier, "/")
	}
}

// StripSourceExtension removes a trailing extension belonging to a supported
// source language. Other extensions are kept: "a/b.css" stays as is.
func StripSourceExtension(p string) string {
	ext := path.Ext(p)
	if ext == "" || !lang.IsSourceExtension(ext) {
		return p
	}
	return p[:len(p)-len(ext)]
}

// LooseKey is the tolerant form used to compare an import target against a
// repository path: separators unified, leading "./" dropped, source extension
// stripped, lowercased.
func LooseKey(p string) string {
	p = NormalizePath(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.ToLower(StripSourceExtension(p))
}
