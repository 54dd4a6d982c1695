// Package imports extracts import edges from source text, one line at a time.
//
// Parsing is deliberately pattern based: each language contributes a small
// table of matchers, and every line is run through every matcher of the
// file's table. A statement split over several lines is not guaranteed to be
// recognized, and a line matching several patterns yields several edges.
package imports

// Mechanism names the syntax an import edge was found through.
type Mechanism string

const (
	// StaticImport is `import x from './a'` or a bare `import './a'`
	StaticImport Mechanism = "static-import"
	// Reexport is `export { x } from './a'` or `export * from './a'`
	Reexport Mechanism = "reexport"
	// DynamicImport is `import('./a')`
	DynamicImport Mechanism = "dynamic-import"
	// Require is a CommonJS `require('./a')`
	Require Mechanism = "require"
	// PythonFrom is `from pkg.mod import a, b`
	PythonFrom Mechanism = "python-from"
	// PythonImport is `import pkg.mod`
	PythonImport Mechanism = "python-import"
)

// ImportEdge is a directed edge From -> To found on one source line.
type ImportEdge struct {
	// From is the repository path of the importing file
	From string `json:"from" yaml:"from"`

	// To is the resolved repository-relative path of the imported module.
	// It is not guaranteed to exist: extensions are never guessed.
	To string `json:"to" yaml:"to"`

	// Specifier is the module string exactly as written in the source
	Specifier string `json:"specifier" yaml:"specifier"`

	Mechanism Mechanism `json:"mechanism" yaml:"mechanism"`

	// Symbols are the names the statement binds, when the syntax names any
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`

	// Line is the 1-based source line
	Line int `json:"line" yaml:"line"`
}

// Fragment is what a matcher recognizes on a line, before resolution.
type Fragment struct {
	Specifier string
	Mechanism Mechanism
	Symbols   []string
}

// Matcher recognizes one import form. Match must be pure and return nothing
// for lines it does not understand.
type Matcher struct {
	Name  string
	Match func(line string) []Fragment
}

// ResolveFunc turns a fragment found in fromPath into repository paths. Most
// fragments resolve to exactly one path; Python's `from . import a, b` names
// one module per symbol.
type ResolveFunc func(fromPath string, f Fragment) []Resolved

// Resolved is one resolution result of a fragment.
type Resolved struct {
	Path    string
	Symbols []string
}

// Table is the set of matchers for one language family.
type Table struct {
	// Name identifies the table in logs and in Extractor.Tables
	Name string

	// Extensions selects the table by file extension (lowercase, with dot)
	Extensions []string

	Matchers []Matcher
	Resolve  ResolveFunc
}
