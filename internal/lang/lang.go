// Package lang defines the closed set of languages depchain analyzes and the
// file extensions each one treats as traversal candidates.
package lang

import (
	"path"
	"sort"
	"strings"

	"depchain/internal/errors"
)

// Language is a language tag accepted by an analysis request.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	JSX        Language = "jsx"
	TSX        Language = "tsx"
)

// candidateExtensions lists, per language, the extensions whose files are
// fetched and indexed. jsx and tsx deliberately include their base language.
var candidateExtensions = map[Language][]string{
	JavaScript: {".js", ".jsx", ".mjs"},
	TypeScript: {".ts", ".tsx"},
	Python:     {".py"},
	JSX:        {".jsx", ".js"},
	TSX:        {".tsx", ".ts"},
}

// detectByExtension infers a file's own language from its extension.
var detectByExtension = map[string]Language{
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JSX,
	".ts":  TypeScript,
	".tsx": TSX,
	".py":  Python,
}

// All returns every supported language in a stable order.
func All() []Language {
	all := make([]Language, 0, len(candidateExtensions))
	for l := range candidateExtensions {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Parse validates a language tag. Tags are matched case-insensitively.
func Parse(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := candidateExtensions[l]; !ok {
		return "", errors.Errorf(errors.UnsupportedLanguage, "language %q is not supported", s).
			WithDetails(map[string]interface{}{"supported": All()})
	}
	return l, nil
}

// Extensions returns the candidate extensions for l.
func (l Language) Extensions() []string {
	return append([]string(nil), candidateExtensions[l]...)
}

// Matches reports whether filePath has one of l's candidate extensions.
func (l Language) Matches(filePath string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	if ext == "" {
		return false
	}
	for _, e := range candidateExtensions[l] {
		if e == ext {
			return true
		}
	}
	return false
}

// FilterFiles keeps the candidate files for l, preserving order.
func FilterFiles(files []string, l Language) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if l.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// Detect infers the language of a single file, or "" when unknown.
func Detect(filePath string) Language {
	return detectByExtension[strings.ToLower(path.Ext(filePath))]
}

// IsSourceExtension reports whether ext (with leading dot, any case) belongs
// to a supported source language.
func IsSourceExtension(ext string) bool {
	_, ok := detectByExtension[strings.ToLower(ext)]
	return ok
}

// RepositoryFile is a repository-relative path paired with its language.
type RepositoryFile struct {
	Path     string   `json:"path" yaml:"path"`
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`
}

// NewRepositoryFile tags a path with its detected language.
func NewRepositoryFile(p string) RepositoryFile {
	return RepositoryFile{Path: p, Language: Detect(p)}
}

// NewRepositoryFiles tags each path with its detected language.
func NewRepositoryFiles(paths []string) []RepositoryFile {
	files := make([]RepositoryFile, len(paths))
	for i, p := range paths {
		files[i] = NewRepositoryFile(p)
	}
	return files
}

// CountByLanguage tallies files per detected language; unknown files count
// under the empty language.
func CountByLanguage(files []RepositoryFile) map[Language]int {
	counts := make(map[Language]int)
	for _, f := range files {
		counts[f.Language]++
	}
	return counts
}
