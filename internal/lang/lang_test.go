package lang

import (
	"reflect"
	"testing"

	"depchain/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"javascript", JavaScript, false},
		{"TypeScript", TypeScript, false},
		{" python ", Python, false},
		{"jsx", JSX, false},
		{"tsx", TSX, false},
		{"ruby", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.UnsupportedLanguage) {
				t.Errorf("Parse(%q) code = %v, want %v", tt.in, errors.CodeOf(err), errors.UnsupportedLanguage)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterFiles(t *testing.T) {
	files := []string{
		"src/a.js", "src/b.jsx", "src/c.mjs", "src/d.ts", "src/e.tsx",
		"app/main.py", "README.md", "src/F.JS", "Makefile",
	}

	tests := []struct {
		lang Language
		want []string
	}{
		{JavaScript, []string{"src/a.js", "src/b.jsx", "src/c.mjs", "src/F.JS"}},
		{TypeScript, []string{"src/d.ts", "src/e.tsx"}},
		{Python, []string{"app/main.py"}},
		{JSX, []string{"src/a.js", "src/b.jsx", "src/F.JS"}},
		{TSX, []string{"src/d.ts", "src/e.tsx"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			got := FilterFiles(files, tt.lang)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterFiles(%s) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestFilterFilesEmpty(t *testing.T) {
	got := FilterFiles(nil, Python)
	if got == nil || len(got) != 0 {
		t.Errorf("FilterFiles(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestDetect(t *testing.T) {
	tests := map[string]Language{
		"a.js":         JavaScript,
		"a.cjs":        JavaScript,
		"a.jsx":        JSX,
		"lib/a.ts":     TypeScript,
		"lib/a.TSX":    TSX,
		"pkg/mod.py":   Python,
		"docs/a.md":    "",
		"no_extension": "",
	}
	for p, want := range tests {
		if got := Detect(p); got != want {
			t.Errorf("Detect(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestNewRepositoryFiles(t *testing.T) {
	files := NewRepositoryFiles([]string{"src/a.ts", "setup.cfg"})
	want := []RepositoryFile{
		{Path: "src/a.ts", Language: TypeScript},
		{Path: "setup.cfg"},
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("NewRepositoryFiles = %v, want %v", files, want)
	}
}

func TestCountByLanguage(t *testing.T) {
	counts := CountByLanguage(NewRepositoryFiles([]string{"a.ts", "b.tsx", "c.ts", "README.md"}))
	want := map[Language]int{TypeScript: 2, TSX: 1, "": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountByLanguage = %v, want %v", counts, want)
	}
}

func TestExtensionsIsCopy(t *testing.T) {
	exts := JavaScript.Extensions()
	exts[0] = ".rb"
	if JavaScript.Extensions()[0] != ".js" {
		t.Error("Extensions must not expose the internal table")
	}
}
