package imports

import (
	"path"
	"strings"
	"sync"
)

// Extractor selects a matcher table by file extension and runs it over
// content line by line. The zero value is not usable; use NewExtractor.
type Extractor struct {
	mu       sync.RWMutex
	tables   []*Table
	byExt    map[string]*Table
	fallback *Table
}

// NewExtractor returns an extractor with the built-in script and Python
// tables. Files whose extension no table claims use the script table.
func NewExtractor() *Extractor {
	e := &Extractor{byExt: make(map[string]*Table), fallback: ScriptTable}
	e.Register(ScriptTable)
	e.Register(PythonTable)
	return e
}

// Register adds a table, taking over any extensions it lists.
func (e *Extractor) Register(t *Table) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tables = append(e.tables, t)
	for _, ext := range t.Extensions {
		e.byExt[strings.ToLower(ext)] = t
	}
}

// Tables returns the registered tables in registration order.
func (e *Extractor) Tables() []*Table {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Table(nil), e.tables...)
}

// TableFor returns the table used for filePath.
func (e *Extractor) TableFor(filePath string) *Table {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if t, ok := e.byExt[strings.ToLower(path.Ext(filePath))]; ok {
		return t
	}
	return e.fallback
}

// ExtractEdges returns every import edge found in content, in line order.
// Lines matching nothing contribute nothing; duplicates are kept.
func (e *Extractor) ExtractEdges(content, filePath string) []ImportEdge {
	table := e.TableFor(filePath)
	edges := []ImportEdge{}

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, m := range table.Matchers {
			for _, f := range m.Match(line) {
				for _, r := range table.Resolve(filePath, f) {
					if r.Path == "" {
						continue
					}
					edges = append(edges, ImportEdge{
						From:      filePath,
						To:        r.Path,
						Specifier: f.Specifier,
						Mechanism: f.Mechanism,
						Symbols:   r.Symbols,
						Line:      i + 1,
					})
				}
			}
		}
	}
	return edges
}

// ExtractImports returns the resolved import paths of content, in line order.
func (e *Extractor) ExtractImports(content, filePath string) []string {
	edges := e.ExtractEdges(content, filePath)
	out := make([]string, len(edges))
	for i, edge := range edges {
		out[i] = edge.To
	}
	return out
}

var defaultExtractor = NewExtractor()

// ExtractEdges runs the default extractor.
func ExtractEdges(content, filePath string) []ImportEdge {
	return defaultExtractor.ExtractEdges(content, filePath)
}

// ExtractImports runs the default extractor.
func ExtractImports(content, filePath string) []string {
	return defaultExtractor.ExtractImports(content, filePath)
}
