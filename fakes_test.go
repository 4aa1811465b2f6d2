package md2site

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errFakeRender = errors.New("fake render failure")

// fakeCode wraps source in <pre> tagged with the language. Sources listed in
// fail are rejected.
type fakeCode struct {
	mu    sync.Mutex
	langs []string
	fail  map[string]bool
}

func (f *fakeCode) RenderCode(_ context.Context, source, language string) (string, error) {
	f.mu.Lock()
	f.langs = append(f.langs, language)
	f.mu.Unlock()
	if f.fail[source] {
		return "", errFakeRender
	}
	return fmt.Sprintf("<pre data-lang=%q>%s</pre>", language, html.EscapeString(source)), nil
}

func (f *fakeCode) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.langs...)
}

// fakeMath renders any expression except those listed in fail.
type fakeMath struct {
	fail map[string]bool
}

func (f *fakeMath) RenderMath(_ context.Context, source string, display bool) (string, error) {
	if f.fail[source] {
		return "", errFakeRender
	}
	if display {
		return `<div class="math">` + html.EscapeString(source) + `</div>`, nil
	}
	return `<span class="math">` + html.EscapeString(source) + `</span>`, nil
}

// fakeDiagram counts calls and returns a fixed SVG.
type fakeDiagram struct {
	n atomic.Int32
}

func (f *fakeDiagram) RenderDiagram(context.Context, string) (string, error) {
	f.n.Add(1)
	return "<svg></svg>", nil
}

// slowCode tracks how many renders run at once.
type slowCode struct {
	active atomic.Int32
	peak   atomic.Int32
}

func (s *slowCode) RenderCode(_ context.Context, source, _ string) (string, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return "<pre>" + html.EscapeString(source) + "</pre>", nil
}

func newTestSite(t *testing.T, opts ...Option) *Site {
	t.Helper()
	all := append([]Option{
		WithCodeRenderer(&fakeCode{}),
		WithMathRenderer(&fakeMath{}),
		WithDiagramRenderer(&fakeDiagram{}),
	}, opts...)
	s, err := NewSite(all...)
	if err != nil {
		t.Fatalf("NewSite() error = %v", err)
	}
	return s
}

// header builds a metadata header. published is omitted when empty.
func header(slug, published, section string) string {
	h := "---\ntitle: Title " + slug + "\nslug: " + slug + "\ntags: [go, web]\nsummary: About " + slug + ".\n"
	if published != "" {
		h += "published: \"" + published + "\"\n"
	}
	if section != "" {
		h += "section: " + section + "\n"
	}
	return h + "---\n"
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return d.UTC()
}
