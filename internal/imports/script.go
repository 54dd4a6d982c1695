package imports

import (
	"regexp"
	"strings"

	"depchain/internal/paths"
)

// quoted matches a single-, double- or backtick-quoted specifier. Backtick
// strings containing `$` are template literals and are left alone.
const quoted = `(?:'([^'\n]*)'|"([^"\n]*)"|` + "`([^`$\\n]*)`" + `)`

var (
	staticImportRe = regexp.MustCompile(`\bimport\s+(?:type\s+)?(?:([\w$*{}\s,]+?)\s+from\s*)?` + quoted)
	reexportRe     = regexp.MustCompile(`\bexport\s+(?:type\s+)?([\w$*{}\s,]+?)\s+from\s*` + quoted)
	dynamicRe      = regexp.MustCompile(`\bimport\s*\(\s*` + quoted + `\s*\)`)
	requireRe      = regexp.MustCompile(`(?:\b(?:const|let|var)\s+([\w$]+|\{[^}]*\})\s*=\s*)?\brequire\s*\(\s*` + quoted + `\s*\)`)
)

// ScriptTable covers JavaScript, TypeScript, JSX and TSX sources.
var ScriptTable = &Table{
	Name:       "script",
	Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"},
	Matchers: []Matcher{
		{Name: "static-import", Match: matchStaticImport},
		{Name: "reexport", Match: matchReexport},
		{Name: "dynamic-import", Match: matchDynamicImport},
		{Name: "require", Match: matchRequire},
	},
	Resolve: resolveScript,
}

func matchStaticImport(line string) []Fragment {
	var out []Fragment
	for _, m := range staticImportRe.FindAllStringSubmatch(line, -1) {
		if s := firstNonEmpty(m[2:5]); s != "" {
			out = append(out, Fragment{Specifier: s, Mechanism: StaticImport, Symbols: parseBinding(m[1])})
		}
	}
	return out
}

func matchReexport(line string) []Fragment {
	var out []Fragment
	for _, m := range reexportRe.FindAllStringSubmatch(line, -1) {
		if s := firstNonEmpty(m[2:5]); s != "" {
			out = append(out, Fragment{Specifier: s, Mechanism: Reexport, Symbols: parseBinding(m[1])})
		}
	}
	return out
}

func matchDynamicImport(line string) []Fragment {
	var out []Fragment
	for _, m := range dynamicRe.FindAllStringSubmatch(line, -1) {
		if s := firstNonEmpty(m[1:4]); s != "" {
			out = append(out, Fragment{Specifier: s, Mechanism: DynamicImport})
		}
	}
	return out
}

func matchRequire(line string) []Fragment {
	var out []Fragment
	for _, m := range requireRe.FindAllStringSubmatch(line, -1) {
		if s := firstNonEmpty(m[2:5]); s != "" {
			out = append(out, Fragment{Specifier: s, Mechanism: Require, Symbols: parseBinding(m[1])})
		}
	}
	return out
}

func resolveScript(fromPath string, f Fragment) []Resolved {
	return []Resolved{{
		Path:    paths.ResolveRelative(paths.Dir(fromPath), f.Specifier),
		Symbols: f.Symbols,
	}}
}

// parseBinding lists the names of a binding clause:
//
//	x               -> [x]
//	{ a, b as c }   -> [a b]
//	* as ns         -> [*]
//	x, { a }        -> [x a]
func parseBinding(clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}

	var names []string
	var braced string
	if open := strings.Index(clause, "{"); open >= 0 {
		end := strings.LastIndex(clause, "}")
		if end < open {
			end = len(clause)
		}
		braced = clause[open+1 : end]
		clause = clause[:open] + clause[min(end+1, len(clause)):]
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			names = append(names, "*")
		default:
			names = append(names, strings.Fields(part)[0])
		}
	}
	for _, part := range strings.Split(braced, ",") {
		// CommonJS destructuring renames with `a: b`
		part, _, _ = strings.Cut(part, ":")
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == "type" && len(fields) > 1 {
			name = fields[1]
		}
		names = append(names, name)
	}
	return names
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if s := strings.TrimSpace(g); s != "" {
			return s
		}
	}
	return ""
}
