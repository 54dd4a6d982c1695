// Package chain walks the reverse dependency index outward from a target
// file, breadth first, and reports every dependent with the chain of files
// linking it back to the target.
package chain

import (
	"depchain/internal/depmap"
	"depchain/internal/paths"
)

// DependentRecord is one discovered dependent. Chain runs from the target to
// File inclusive; Depth is len(Chain)-1.
type DependentRecord struct {
	File  string   `json:"file" yaml:"file"`
	Depth int      `json:"depth" yaml:"depth"`
	Chain []string `json:"chain" yaml:"chain"`
}

// Options tunes a traversal.
type Options struct {
	// MaxDepth stops expansion at this depth. Zero or negative means the
	// number of distinct files the index knows, which no acyclic chain can
	// exceed.
	MaxDepth int
}

// visitKey identifies a file at a depth. A file may be visited once per depth.
type visitKey struct {
	file  string
	depth int
}

type visitSet map[visitKey]struct{}

// add marks k visited and reports whether it was new.
func (s visitSet) add(k visitKey) bool {
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

type queueItem struct {
	file  string
	depth int
	chain []string
}

// Traverse runs the breadth-first search from target.
//
// Direct dependents of the target itself are found by exact lookup (the raw
// target, or the target without its source extension). Every later hop uses
// the loose, case and extension insensitive lookup. Records are returned in
// discovery order, which is non-decreasing in depth. A file reachable at
// several depths appears once per depth; see Unique.
//
// A dependent already on its own chain closes a cycle. It is reported at
// that depth but not expanded again, so a cycle A -> B -> C -> A traversed
// from A yields B@1, C@2, A@3 regardless of the size of the index.
func Traverse(index *depmap.ReverseIndex, target string, opts Options) []DependentRecord {
	records := []DependentRecord{}
	if index == nil || target == "" {
		return records
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = index.FileCount()
	}

	visited := visitSet{}
	visited.add(visitKey{paths.LooseKey(target), 0})
	queue := []queueItem{{file: target, depth: 0, chain: []string{target}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, key := range index.Lookup(cur.file, cur.depth == 0) {
			for _, edge := range index.Importers(key) {
				next := visitKey{paths.LooseKey(edge.From), cur.depth + 1}
				if !visited.add(next) {
					continue
				}

				chain := make([]string, len(cur.chain)+1)
				copy(chain, cur.chain)
				chain[len(cur.chain)] = edge.From

				records = append(records, DependentRecord{
					File:  edge.From,
					Depth: next.depth,
					Chain: chain,
				})
				if onChain(cur.chain, next.file) {
					continue
				}
				queue = append(queue, queueItem{file: edge.From, depth: next.depth, chain: chain})
			}
		}
	}

	return records
}

// onChain reports whether a file with the given loose key is already part of
// chain.
func onChain(chain []string, key string) bool {
	for _, f := range chain {
		if paths.LooseKey(f) == key {
			return true
		}
	}
	return false
}

// Unique keeps the first record per file. Because Traverse emits records in
// depth order, that is the shallowest chain found for each file.
func Unique(records []DependentRecord) []DependentRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]DependentRecord, 0, len(records))
	for _, r := range records {
		k := paths.LooseKey(r.File)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
