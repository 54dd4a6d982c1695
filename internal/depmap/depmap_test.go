package depmap

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"depchain/internal/imports"
)

// mapSource serves file contents from a map; missing files fail.
type mapSource map[string]string

func (m mapSource) FetchContent(_ context.Context, path string) (string, error) {
	content, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%s: not found", path)
	}
	return content, nil
}

func importersOf(x *ReverseIndex, key string) []string {
	var out []string
	for _, e := range x.Importers(key) {
		out = append(out, e.From)
	}
	return out
}

func TestBuild(t *testing.T) {
	src := mapSource{
		"src/a.js": "export const a = 1",
		"src/b.js": "import x from './a'",
		"src/c.js": "import y from './a'\nconst z = require('./b')",
	}
	files := []string{"src/a.js", "src/b.js", "src/c.js"}

	index, stats, err := NewBuilder(Options{}, nil).Build(context.Background(), src, files)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got, want := index.Keys(), []string{"src/a", "src/b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got, want := importersOf(index, "src/a"), []string{"src/b.js", "src/c.js"}; !reflect.DeepEqual(got, want) {
		t.Errorf("importers of src/a = %v, want %v", got, want)
	}
	if got, want := importersOf(index, "src/b"), []string{"src/c.js"}; !reflect.DeepEqual(got, want) {
		t.Errorf("importers of src/b = %v, want %v", got, want)
	}

	edge := index.Importers("src/b")[0]
	if edge.Mechanism != imports.Require || edge.Line != 2 {
		t.Errorf("edge metadata = %+v, want require on line 2", edge)
	}

	want := BuildStats{Files: 3, Fetched: 3, Edges: 3, Batches: 1}
	stats.Duration = 0
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildSkipsFailedFiles(t *testing.T) {
	src := mapSource{
		"src/b.js": "import x from './a'",
	}
	files := []string{"src/a.js", "src/b.js", "assets/logo.png"}

	index, stats, err := NewBuilder(Options{BatchSize: 2}, nil).Build(context.Background(), src, files)
	if err != nil {
		t.Fatalf("Build should not fail on per-file errors: %v", err)
	}
	if stats.Failed != 2 || stats.Fetched != 1 {
		t.Errorf("stats = %+v, want 1 fetched and 2 failed", stats)
	}
	if index.Len() != 1 || index.EdgeCount() != 1 {
		t.Errorf("index has %d keys and %d edges, want 1 and 1", index.Len(), index.EdgeCount())
	}
}

func TestBuildEmpty(t *testing.T) {
	index, stats, err := NewBuilder(Options{}, nil).Build(context.Background(), mapSource{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if index.Len() != 0 || stats.Batches != 0 {
		t.Errorf("empty build produced %d keys in %d batches", index.Len(), stats.Batches)
	}
}

// batchProbe records concurrency and ordering of fetches.
type batchProbe struct {
	mu        sync.Mutex
	inFlight  int
	maxFlight int
	completed int
	order     map[string]int
	violation string
	batchSize int
	files     []string
}

func (p *batchProbe) FetchContent(_ context.Context, path string) (string, error) {
	p.mu.Lock()
	idx := p.order[path]
	batchStart := (idx / p.batchSize) * p.batchSize
	if p.completed < batchStart && p.violation == "" {
		p.violation = fmt.Sprintf("%s started with only %d fetches completed", path, p.completed)
	}
	p.inFlight++
	if p.inFlight > p.maxFlight {
		p.maxFlight = p.inFlight
	}
	p.mu.Unlock()

	// Later files in a batch finish first to shake out ordering assumptions.
	time.Sleep(time.Duration(p.batchSize-idx%p.batchSize) * time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.completed++
	p.mu.Unlock()

	if idx%5 == 4 {
		return "", errors.New("simulated failure")
	}
	return fmt.Sprintf("import x from './shared'\nimport y from './f%d'", idx), nil
}

func TestBuildBatching(t *testing.T) {
	probe := &batchProbe{batchSize: 4, order: make(map[string]int)}
	for i := 0; i < 11; i++ {
		f := fmt.Sprintf("src/f%d.js", i)
		probe.files = append(probe.files, f)
		probe.order[f] = i
	}

	index, stats, err := NewBuilder(Options{BatchSize: 4}, nil).Build(context.Background(), probe, probe.files)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if probe.violation != "" {
		t.Errorf("batches overlapped: %s", probe.violation)
	}
	if probe.maxFlight > 4 {
		t.Errorf("max concurrent fetches = %d, want <= 4", probe.maxFlight)
	}
	if stats.Batches != 3 {
		t.Errorf("batches = %d, want 3", stats.Batches)
	}
	if stats.Failed != 2 {
		t.Errorf("failed = %d, want 2 (files 4 and 9)", stats.Failed)
	}

	var wantImporters []string
	for i, f := range probe.files {
		if i%5 != 4 {
			wantImporters = append(wantImporters, f)
		}
	}
	if got := importersOf(index, "src/shared"); !reflect.DeepEqual(got, wantImporters) {
		t.Errorf("importers of src/shared = %v, want file order %v", got, wantImporters)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(Options{}, nil).Build(ctx, mapSource{"a.js": ""}, []string{"a.js"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build error = %v, want context.Canceled", err)
	}
}

func TestContentSourceFunc(t *testing.T) {
	src := ContentSourceFunc(func(_ context.Context, path string) (string, error) {
		return "import z from './z'", nil
	})
	index, _, err := NewBuilder(Options{}, nil).Build(context.Background(), src, []string{"lib/y.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if got := importersOf(index, "lib/z"); !reflect.DeepEqual(got, []string{"lib/y.ts"}) {
		t.Errorf("importers of lib/z = %v", got)
	}
}

func TestReverseIndexLookup(t *testing.T) {
	x := NewReverseIndex()
	x.Add(imports.ImportEdge{From: "src/b.js", To: "src/a"})
	x.Add(imports.ImportEdge{From: "src/c.js", To: "src/a.js"})
	x.Add(imports.ImportEdge{From: "src/d.js", To: "Src/Util.JS"})
	x.Add(imports.ImportEdge{From: "src/e.js", To: "src/util"})

	tests := []struct {
		name  string
		path  string
		exact bool
		want  []string
	}{
		{"exact with and without extension", "src/a.js", true, []string{"src/a", "src/a.js"}},
		{"exact extensionless", "src/a", true, []string{"src/a"}},
		{"exact is case sensitive", "src/util.js", true, []string{"src/util"}},
		{"exact misses case variant", "src/Util.JS", true, nil},
		{"loose folds case and extension", "src/util.js", false, []string{"Src/Util.JS", "src/util"}},
		{"loose tolerates backslashes", `src\a.ts`, false, []string{"src/a", "src/a.js"}},
		{"no match", "src/zzz.js", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.Lookup(tt.path, tt.exact)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lookup(%q, %v) = %v, want %v", tt.path, tt.exact, got, tt.want)
			}
		})
	}
}

func TestReverseIndexFileCount(t *testing.T) {
	x := NewReverseIndex()
	x.Add(imports.ImportEdge{From: "A.js", To: "B"})
	x.Add(imports.ImportEdge{From: "B.js", To: "C"})
	x.Add(imports.ImportEdge{From: "C.js", To: "A"})
	x.Add(imports.ImportEdge{From: "C.js", To: "A"})

	if got := x.FileCount(); got != 3 {
		t.Errorf("FileCount() = %d, want 3", got)
	}
	if got := x.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}
	if got := x.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}
