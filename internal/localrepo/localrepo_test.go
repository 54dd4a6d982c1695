package localrepo

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.js", "export default 1")
	writeFile(t, root, "src/b.js", "import a from './a'")
	writeFile(t, root, "README.md", "# readme")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "node_modules/lodash/index.js", "module.exports = {}")
	writeFile(t, root, "web/node_modules/x/index.js", "")
	writeFile(t, root, "big.js", strings.Repeat("x", 100))

	repo, err := Open(root, Options{MaxFileSizeBytes: 50}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	files, err := repo.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{"README.md", "src/a.js", "src/b.js"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ListFiles() = %v, want %v", files, want)
	}
}

func TestListFilesCustomIgnore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dist/out.js", "")
	writeFile(t, root, "node_modules/m/index.js", "")

	repo, err := Open(root, Options{Ignore: []string{"dist"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := repo.ListFiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"node_modules/m/index.js"}; !reflect.DeepEqual(files, want) {
		t.Errorf("ListFiles() = %v, want %v", files, want)
	}
}

func TestListFilesEmptyAndCancelled(t *testing.T) {
	repo, err := Open(t.TempDir(), Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := repo.ListFiles(context.Background())
	if err != nil || files == nil || len(files) != 0 {
		t.Errorf("ListFiles() = %#v, %v, want empty non-nil", files, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.ListFiles(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestFetchContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/mod.py", "from . import util\n")
	writeFile(t, root, "logo.js", "GIF89a\x00\x01")
	writeFile(t, root, "huge.py", strings.Repeat("#", 200))
	writeFile(t, filepath.Dir(root), "outside.py", "secret")

	repo, err := Open(root, Options{MaxFileSizeBytes: 100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "regular", path: "pkg/mod.py", want: "from . import util\n"},
		{name: "backslashes", path: `pkg\mod.py`, want: "from . import util\n"},
		{name: "dot segments", path: "./pkg/../pkg/mod.py", want: "from . import util\n"},
		{name: "escape", path: "../outside.py", wantErr: "escapes"},
		{name: "absolute", path: "/etc/passwd", wantErr: "escapes"},
		{name: "binary", path: "logo.js", wantErr: "binary"},
		{name: "oversize", path: "huge.py", wantErr: "exceeds"},
		{name: "missing", path: "nope.py", wantErr: "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FetchContent(ctx, tt.path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("FetchContent(%q) error = %v, want containing %q", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchContent(%q) failed: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FetchContent(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")

	if _, err := Open(filepath.Join(root, "file.txt"), Options{}, nil); err == nil {
		t.Error("Open on a file should fail")
	}
	if _, err := Open(filepath.Join(root, "missing"), Options{}, nil); err == nil {
		t.Error("Open on a missing directory should fail")
	}

	repo, err := Open(root, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(repo.CacheKey(), "local:") || !filepath.IsAbs(repo.Root()) {
		t.Errorf("CacheKey() = %q, Root() = %q", repo.CacheKey(), repo.Root())
	}
}

func TestIsBinary(t *testing.T) {
	if isBinary([]byte("plain text")) {
		t.Error("text reported as binary")
	}
	if !isBinary([]byte{'a', 0, 'b'}) {
		t.Error("NUL byte not detected")
	}
	late := append([]byte(strings.Repeat("a", sniffLen)), 0)
	if isBinary(late) {
		t.Error("NUL beyond the sniff window should be ignored")
	}
}
