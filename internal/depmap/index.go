// Package depmap builds the reverse dependency index: for every imported
// path, the edges of the files importing it.
package depmap

import (
	"sort"

	"depchain/internal/imports"
	"depchain/internal/paths"
)

// ReverseIndex maps a resolved import path to the edges whose To is that
// path. Keys are stored raw, exactly as the extractor resolved them; loose
// lookups go through paths.LooseKey, the same normalization recorded at Add.
//
// Keys and the edges under each key keep insertion order. An index is built
// by a single goroutine and must be treated as read-only afterwards.
type ReverseIndex struct {
	keys    []string
	pos     map[string]int
	entries map[string][]imports.ImportEdge
	loose   map[string][]string
	files   map[string]struct{}
	edges   int
}

// NewReverseIndex returns an empty index.
func NewReverseIndex() *ReverseIndex {
	return &ReverseIndex{
		pos:     make(map[string]int),
		entries: make(map[string][]imports.ImportEdge),
		loose:   make(map[string][]string),
		files:   make(map[string]struct{}),
	}
}

// Add records edge under edge.To.
func (x *ReverseIndex) Add(edge imports.ImportEdge) {
	key := edge.To
	if _, ok := x.pos[key]; !ok {
		x.pos[key] = len(x.keys)
		x.keys = append(x.keys, key)
		lk := paths.LooseKey(key)
		x.loose[lk] = append(x.loose[lk], key)
		x.files[lk] = struct{}{}
	}
	x.entries[key] = append(x.entries[key], edge)
	x.files[paths.LooseKey(edge.From)] = struct{}{}
	x.edges++
}

// Keys returns the imported paths in first-insertion order.
func (x *ReverseIndex) Keys() []string {
	return append([]string(nil), x.keys...)
}

// Importers returns the edges recorded under key, in insertion order.
func (x *ReverseIndex) Importers(key string) []imports.ImportEdge {
	return x.entries[key]
}

// Lookup returns the index keys that name p.
//
// An exact lookup matches p itself and p without its source extension, so an
// extensionless specifier naming the file explicitly still counts; matching is
// case-sensitive. A loose lookup matches every key whose paths.LooseKey equals
// that of p. Either way keys come back in insertion order.
func (x *ReverseIndex) Lookup(p string, exact bool) []string {
	if !exact {
		return x.loose[paths.LooseKey(p)]
	}

	var found []string
	for _, candidate := range []string{p, paths.StripSourceExtension(p)} {
		if _, ok := x.entries[candidate]; ok && !contains(found, candidate) {
			found = append(found, candidate)
		}
	}
	sort.Slice(found, func(i, j int) bool { return x.pos[found[i]] < x.pos[found[j]] })
	return found
}

// Len returns the number of keys.
func (x *ReverseIndex) Len() int {
	return len(x.keys)
}

// EdgeCount returns the number of edges recorded.
func (x *ReverseIndex) EdgeCount() int {
	return x.edges
}

// FileCount returns the number of distinct files the index knows about,
// importers and imported alike, counted by loose form.
func (x *ReverseIndex) FileCount() int {
	return len(x.files)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
