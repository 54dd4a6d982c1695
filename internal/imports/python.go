package imports

import (
	"regexp"
	"strings"

	"depchain/internal/paths"
)

var (
	pyFromRe   = regexp.MustCompile(`^\s*from\s+(\.*[\w.]*)\s+import\s+(.+)$`)
	pyImportRe = regexp.MustCompile(`^\s*import\s+([\w.]+(?:\s+as\s+\w+)?(?:\s*,\s*[\w.]+(?:\s+as\s+\w+)?)*)`)
)

// PythonTable covers Python sources.
var PythonTable = &Table{
	Name:       "python",
	Extensions: []string{".py", ".pyi"},
	Matchers: []Matcher{
		{Name: "python-from", Match: matchPythonFrom},
		{Name: "python-import", Match: matchPythonImport},
	},
	Resolve: resolvePython,
}

func matchPythonFrom(line string) []Fragment {
	m := pyFromRe.FindStringSubmatch(line)
	if m == nil || m[1] == "" {
		return nil
	}
	return []Fragment{{Specifier: m[1], Mechanism: PythonFrom, Symbols: parseImportedNames(m[2])}}
}

func matchPythonImport(line string) []Fragment {
	m := pyImportRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	var out []Fragment
	for _, part := range strings.Split(m[1], ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		f := Fragment{Specifier: fields[0], Mechanism: PythonImport}
		if len(fields) == 3 && fields[1] == "as" {
			f.Symbols = []string{fields[2]}
		}
		out = append(out, f)
	}
	return out
}

// parseImportedNames reads the name list after `import` in a from-import,
// dropping parentheses, aliases and trailing comments.
func parseImportedNames(list string) []string {
	if i := strings.Index(list, "#"); i >= 0 {
		list = list[:i]
	}
	list = strings.NewReplacer("(", " ", ")", " ", "\\", " ").Replace(list)

	var names []string
	for _, part := range strings.Split(list, ",") {
		if fields := strings.Fields(part); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

// resolvePython converts a dotted module to a path: `pkg.mod` -> `pkg/mod.py`.
// Leading dots are directory hops from the importing file, one dot being its
// own directory. `from . import a, b` names sibling modules a.py and b.py.
func resolvePython(fromPath string, f Fragment) []Resolved {
	module := f.Specifier
	if !strings.HasPrefix(module, ".") {
		return []Resolved{{Path: dottedToPath(module), Symbols: f.Symbols}}
	}

	rest := strings.TrimLeft(module, ".")
	dots := len(module) - len(rest)
	dir := paths.Dir(fromPath)
	for i := 1; i < dots; i++ {
		dir = paths.Dir(dir)
	}

	if rest != "" {
		return []Resolved{{Path: paths.Join(dir, dottedToPath(rest)), Symbols: f.Symbols}}
	}

	var out []Resolved
	for _, name := range f.Symbols {
		if name == "*" {
			continue
		}
		out = append(out, Resolved{Path: paths.Join(dir, name+".py"), Symbols: []string{name}})
	}
	return out
}

func dottedToPath(module string) string {
	return strings.ReplaceAll(module, ".", "/") + ".py"
}
