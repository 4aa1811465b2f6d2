package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
)

var errFakeRender = errors.New("fake render failure")

// fakeCode wraps source in <pre> tagged with the language and records calls.
type fakeCode struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeCode) RenderCode(_ context.Context, source, language string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, language)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("<pre data-lang=%q>%s</pre>", language, html.EscapeString(source)), nil
}

func (f *fakeCode) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeMath renders display math as <div class="display"> and inline math as
// <span class="inline">. Sources listed in fail are rejected.
type fakeMath struct {
	mu      sync.Mutex
	inline  []string
	display []string
	fail    map[string]bool
	err     error
}

func (f *fakeMath) RenderMath(_ context.Context, source string, display bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if display {
		f.display = append(f.display, source)
	} else {
		f.inline = append(f.inline, source)
	}
	if f.err != nil || f.fail[source] {
		return "", errFakeRender
	}
	if display {
		return `<div class="display">` + html.EscapeString(source) + `</div>`, nil
	}
	return `<span class="inline">` + html.EscapeString(source) + `</span>`, nil
}

// fakeDiagram returns a fixed SVG and records calls.
type fakeDiagram struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeDiagram) RenderDiagram(_ context.Context, source string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "<svg></svg>", nil
}

func newTestEngine() (*Engine, *fakeCode, *fakeMath, *fakeDiagram) {
	code, math, diagram := &fakeCode{}, &fakeMath{}, &fakeDiagram{}
	e := NewEngine(WithCodeRenderer(code), WithMathRenderer(math), WithDiagramRenderer(diagram))
	return e, code, math, diagram
}
