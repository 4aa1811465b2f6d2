package md2site

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAsset(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func TestNewAssetLoader_EmptyPath(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader(\"\") error = %v", err)
	}

	for _, name := range []string{DefaultStyle, MathStyle} {
		css, err := loader.LoadStyle(name)
		if err != nil {
			t.Errorf("LoadStyle(%q) error = %v", name, err)
		}
		if css == "" {
			t.Errorf("LoadStyle(%q) returned empty CSS", name)
		}
	}

	ts, err := loader.LoadTemplateSet(DefaultTemplateSet)
	if err != nil {
		t.Fatalf("LoadTemplateSet(%q) error = %v", DefaultTemplateSet, err)
	}
	if ts.Post == "" {
		t.Error("TemplateSet.Post is empty")
	}
	if ts.Index == "" {
		t.Error("TemplateSet.Index is empty")
	}
}

func TestNewAssetLoader_InvalidPath(t *testing.T) {
	t.Parallel()

	_, err := NewAssetLoader(filepath.Join(t.TempDir(), "nonexistent"))
	if !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("NewAssetLoader() error = %v, want ErrInvalidAssetPath", err)
	}
}

func TestNewAssetLoader_FallsBackToEmbedded(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}

	css, err := loader.LoadStyle(DefaultStyle)
	if err != nil || css == "" {
		t.Errorf("LoadStyle with fallback = %q, %v", css, err)
	}
}

func TestNewAssetLoader_CustomOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	customCSS := "/* custom override */ body { color: red; }"
	writeAsset(t, tmpDir, "styles/default.css", customCSS)
	writeAsset(t, tmpDir, "templates/default/post.html", "<article>{{.Content}}</article>")
	writeAsset(t, tmpDir, "templates/default/index.html", "<ul></ul>")

	loader, err := NewAssetLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}

	css, err := loader.LoadStyle(DefaultStyle)
	if err != nil || css != customCSS {
		t.Errorf("LoadStyle = %q, %v, want custom CSS", css, err)
	}

	ts, err := loader.LoadTemplateSet(DefaultTemplateSet)
	if err != nil {
		t.Fatalf("LoadTemplateSet error = %v", err)
	}
	if ts.Post != "<article>{{.Content}}</article>" || ts.Index != "<ul></ul>" {
		t.Errorf("TemplateSet = %+v, want custom templates", ts)
	}
}

func TestAssetLoader_Errors(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "templates/half/post.html", "<p></p>")

	loader, err := NewAssetLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetLoader error = %v", err)
	}

	if _, err := loader.LoadStyle("nonexistent-style"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
	} else if !strings.Contains(err.Error(), "nonexistent-style") {
		t.Errorf("error message %q should contain style name", err.Error())
	}
	if _, err := loader.LoadStyle("../escape"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(../escape) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadTemplateSet("nonexistent"); !errors.Is(err, ErrTemplateSetNotFound) {
		t.Errorf("LoadTemplateSet() error = %v, want ErrTemplateSetNotFound", err)
	}
	if _, err := loader.LoadTemplateSet("half"); !errors.Is(err, ErrIncompleteTemplateSet) {
		t.Errorf("LoadTemplateSet(half) error = %v, want ErrIncompleteTemplateSet", err)
	}
}

func TestWrappedAssetError(t *testing.T) {
	t.Parallel()

	original := errors.New("original error message")
	sentinel := errors.New("sentinel")

	wrapped := wrapError(sentinel, original)

	if wrapped.Error() != original.Error() {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), original.Error())
	}
	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is(wrapped, sentinel) should be true")
	}
	if errors.Is(wrapped, original) {
		t.Error("errors.Is(wrapped, original) should be false")
	}
	if convertAssetError(nil) != nil {
		t.Error("convertAssetError(nil) should be nil")
	}
}
