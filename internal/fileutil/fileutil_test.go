package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFile - Atomic page writes
// ---------------------------------------------------------------------------

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "posts", "hello", "index.html")
		if err := fileutil.WriteFile(path, []byte("<p>hi</p>")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading back: %v", err)
		}
		if string(got) != "<p>hi</p>" {
			t.Errorf("content = %q, want %q", got, "<p>hi</p>")
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		if err := os.WriteFile(path, []byte("old content that is longer"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fileutil.WriteFile(path, []byte("new")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("content = %q, want %q", got, "new")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := fileutil.WriteFile(filepath.Join(dir, "feed.xml"), []byte("<feed/>")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "feed.xml" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory contains %v, want [feed.xml]", names)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFile("", nil); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("WriteFile(\"\") error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "posts")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fileutil.WriteFile(filepath.Join(blocker, "index.html"), []byte("x")); err == nil {
			t.Error("WriteFile() error = nil, want error")
		}
	})
}

// ---------------------------------------------------------------------------
// TestCopyDir - Static asset copy
// ---------------------------------------------------------------------------

func TestCopyDir(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) string {
		t.Helper()
		src := t.TempDir()
		files := map[string]string{
			"style.css":         "body{}",
			"img/photo.png":     "png",
			"img/deep/icon.svg": "<svg/>",
			"notes/README.md":   "# notes",
			"notes/draft.MD":    "# draft",
			"notes/keep.txt":    "keep",
		}
		for rel, content := range files {
			path := filepath.Join(src, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				t.Fatalf("setup: %v", err)
			}
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("setup: %v", err)
			}
		}
		return src
	}

	listFiles := func(t *testing.T, root string) []string {
		t.Helper()
		var got []string
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			got = append(got, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		sort.Strings(got)
		return got
	}

	t.Run("skips markdown", func(t *testing.T) {
		t.Parallel()

		src := setup(t)
		dst := t.TempDir()
		n, err := fileutil.CopyDir(src, dst, func(rel string) bool {
			return fileutil.HasExt(rel, ".md")
		})
		if err != nil {
			t.Fatalf("CopyDir() error = %v", err)
		}

		want := []string{"img/deep/icon.svg", "img/photo.png", "notes/keep.txt", "style.css"}
		got := listFiles(t, dst)
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("copied %v, want %v", got, want)
		}
		if n != len(want) {
			t.Errorf("CopyDir() = %d, want %d", n, len(want))
		}

		content, _ := os.ReadFile(filepath.Join(dst, "img", "deep", "icon.svg"))
		if string(content) != "<svg/>" {
			t.Errorf("icon.svg content = %q", content)
		}
	})

	t.Run("nil skip copies everything", func(t *testing.T) {
		t.Parallel()

		n, err := fileutil.CopyDir(setup(t), t.TempDir(), nil)
		if err != nil {
			t.Fatalf("CopyDir() error = %v", err)
		}
		if n != 6 {
			t.Errorf("CopyDir() = %d, want 6", n)
		}
	})

	t.Run("missing source copies nothing", func(t *testing.T) {
		t.Parallel()

		n, err := fileutil.CopyDir(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
		if err != nil || n != 0 {
			t.Errorf("CopyDir() = %d, %v, want 0, nil", n, err)
		}
	})

	t.Run("source is a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if _, err := fileutil.CopyDir(file, t.TempDir(), nil); !errors.Is(err, fileutil.ErrNotDir) {
			t.Errorf("CopyDir() error = %v, want ErrNotDir", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWithin - Destination containment
// ---------------------------------------------------------------------------

func TestWithin(t *testing.T) {
	t.Parallel()

	root := filepath.Join("site", "out")

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr error
	}{
		{name: "nested file", rel: "posts/a/index.html", want: filepath.Join(root, "posts", "a", "index.html")},
		{name: "dot segments inside root", rel: "posts/../feed.xml", want: filepath.Join(root, "feed.xml")},
		{name: "parent escape", rel: "../etc/passwd", wantErr: fileutil.ErrOutsideRoot},
		{name: "root itself escape", rel: "..", wantErr: fileutil.ErrOutsideRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.Within(root, tt.rel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Within(%q) error = %v, want %v", tt.rel, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Within(%q) unexpected error: %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("Within(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Existence checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0o755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantFile bool
		wantDir  bool
	}{
		{name: "existing file", path: testFile, wantFile: true},
		{name: "directory", path: testDir, wantDir: true},
		{name: "nonexistent path", path: filepath.Join(tempDir, "nonexistent")},
		{name: "empty path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantFile {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath / TestIsURL / TestHasExt - String classification
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"site", false},
		{"./site.yaml", true},
		{"../shared/site.toml", true},
		{"/etc/md2site/site.yaml", true},
		{"C:\\config\\site.yaml", true},
		{"my-site", false},
		{"name.with.dots", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"http://example.com", true},
		{"https://example.com/posts/a/", true},
		{"/posts/a/", false},
		{"./file.txt", false},
		{"", false},
		{"ftp://example.com", false},
		{"HTTP://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		ext  string
		want bool
	}{
		{"post.md", ".md", true},
		{"dir/POST.MD", ".md", true},
		{"post.markdown", ".md", false},
		{"md", ".md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.HasExt(tt.path, tt.ext); got != tt.want {
				t.Errorf("HasExt(%q, %q) = %v, want %v", tt.path, tt.ext, got, tt.want)
			}
		})
	}
}
