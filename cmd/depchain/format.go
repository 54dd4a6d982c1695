package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"depchain/internal/analysis"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	case FormatYAML:
		return formatYAML(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *analysis.Result:
		return formatResultHuman(v), nil
	case *ImportsResponseCLI:
		return formatImportsHuman(v), nil
	case *CacheStatsResponseCLI:
		return formatCacheStatsHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatResultHuman(r *analysis.Result) string {
	var b strings.Builder

	if len(r.Dependencies) == 0 {
		b.WriteString(fmt.Sprintf("No dependents found (%d files analyzed)", r.FilesAnalyzed))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%d dependent(s), %d files analyzed\n", len(r.Dependencies), r.FilesAnalyzed))
	b.WriteString(strings.Repeat("=", 60) + "\n")

	depth := 0
	for _, d := range r.Dependencies {
		if d.Depth != depth {
			depth = d.Depth
			b.WriteString(fmt.Sprintf("\nDepth %d:\n", depth))
		}
		b.WriteString(fmt.Sprintf("  %s\n", d.File))
		if len(d.Chain) > 2 {
			b.WriteString(fmt.Sprintf("    via %s\n", strings.Join(d.Chain, " <- ")))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatImportsHuman(r *ImportsResponseCLI) string {
	var b strings.Builder
	if r.File.Language != "" {
		b.WriteString(fmt.Sprintf("%s (%s): %d import(s)\n", r.File.Path, r.File.Language, len(r.Imports)))
	} else {
		b.WriteString(fmt.Sprintf("%s: %d import(s)\n", r.File.Path, len(r.Imports)))
	}
	for _, e := range r.Imports {
		b.WriteString(fmt.Sprintf("  %4d  %-14s %s -> %s", e.Line, e.Mechanism, e.Specifier, e.To))
		if len(e.Symbols) > 0 {
			b.WriteString(" [" + strings.Join(e.Symbols, ", ") + "]")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCacheStatsHuman(r *CacheStatsResponseCLI) string {
	var b strings.Builder
	b.WriteString("Listing cache\n")
	b.WriteString(fmt.Sprintf("  Path:     %s\n", r.Path))
	b.WriteString(fmt.Sprintf("  TTL:      %ds\n", r.TTLSeconds))
	b.WriteString(fmt.Sprintf("  Entries:  %d (%d expired)\n", r.Stats.Entries, r.Stats.Expired))
	b.WriteString(fmt.Sprintf("  Files:    %d\n", r.Stats.Files))
	b.WriteString(fmt.Sprintf("  Payload:  %d bytes", r.Stats.PayloadBytes))
	return b.String()
}
