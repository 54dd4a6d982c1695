package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetHome(t *testing.T) {
	t.Setenv(HomeEnvVar, "/custom/depchain")

	home, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if home != "/custom/depchain" {
		t.Errorf("GetHome() = %s, want /custom/depchain", home)
	}

	t.Setenv(HomeEnvVar, "")
	home, err = GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if !strings.HasSuffix(home, DefaultHome) {
		t.Errorf("GetHome() = %s, want suffix %s", home, DefaultHome)
	}
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		name      string
		fromDir   string
		specifier string
		want      string
	}{
		{"sibling", "a/b", "./sibling", "a/b/sibling"},
		{"parent", "a/b", "../sibling", "a/sibling"},
		{"two parents", "a/b/c", "../../x/y", "a/x/y"},
		{"pop past root clamps", "a", "../../x", "x"},
		{"dot slash at root", "", "./x", "x"},
		{"nested dot slash", "src", "./lib/util.js", "src/lib/util.js"},
		{"dot dot inside is concatenated", "a/b", "./c/../d", "a/b/c/../d"},
		{"bare specifier", "a/b", "lib/util", "lib/util"},
		{"package name", "a/b", "react", "react"},
		{"absolute drops slash", "a/b", "/src/x", "src/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRelative(tt.fromDir, tt.specifier); got != tt.want {
				t.Errorf("ResolveRelative(%q, %q) = %q, want %q", tt.fromDir, tt.specifier, got, tt.want)
			}
		})
	}
}

func TestDir(t *testing.T) {
	tests := map[string]string{
		"a/b/c.js": "a/b",
		"c.js":     "",
		"a/":       "a",
		"":         "",
	}
	for in, want := range tests {
		if got := Dir(in); got != want {
			t.Errorf("Dir(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripSourceExtension(t *testing.T) {
	tests := map[string]string{
		"src/a.js":      "src/a",
		"src/a.TSX":     "src/a",
		"pkg/mod.py":    "pkg/mod",
		"styles/a.css":  "styles/a.css",
		"src/a":         "src/a",
		"src.v2/module": "src.v2/module",
	}
	for in, want := range tests {
		if got := StripSourceExtension(in); got != want {
			t.Errorf("StripSourceExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLooseKey(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"Src/Util.JS", "src/util.js", true},
		{"src/util", "src/util.ts", true},
		{"./src/util", "src/util.js", true},
		{`src\util.js`, "src/util.js", true},
		{"src/util.js", "src/utils.js", false},
		{"src/util.css", "src/util", false},
	}
	for _, tt := range tests {
		if got := LooseKey(tt.a) == LooseKey(tt.b); got != tt.equal {
			t.Errorf("LooseKey(%q) == LooseKey(%q) is %v, want %v (%q vs %q)",
				tt.a, tt.b, got, tt.equal, LooseKey(tt.a), LooseKey(tt.b))
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`a\b\c.js`); got != "a/b/c.js" {
		t.Errorf("NormalizePath = %q", got)
	}
}

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "a.js")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "src/a.js" {
		t.Errorf("CanonicalizePath = %q, want src/a.js", got)
	}
}

func TestIsWithinRepo(t *testing.T) {
	tests := map[string]bool{
		"src/a.js":       true,
		"src/../a.js":    true,
		"../outside.js":  false,
		"..":             false,
		"src/../../x.js": false,
		"/etc/passwd":    false,
	}
	for in, want := range tests {
		if got := IsWithinRepo(in); got != want {
			t.Errorf("IsWithinRepo(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJoinRepoPath(t *testing.T) {
	got := JoinRepoPath("/repo", "src/lib/a.js")
	want := filepath.Join("/repo", "src", "lib", "a.js")
	if got != want {
		t.Errorf("JoinRepoPath = %q, want %q", got, want)
	}
}
