package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2site/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunBuildCmd - End-to-end site generation
// ---------------------------------------------------------------------------

func TestRunBuildCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes pages, index, feed, and assets", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{
			"first.md":  post("first", "2023-01-02T03:04:05Z", "Hello *world*.\n\n![Logo](img/logo.svg)\n"),
			"second.md": post("second", "2024-02-03T04:05:06+01:00", "Second post."),
			"draft.md":  post("draft", "", "Not yet."),
			"notes.txt": "ignored",
		})
		env, stdout, stderr := testEnv()

		code := runBuildCmd(context.Background(), buildArgs(root, "--title", "Notes", "--base-url", "https://example.com"), env)
		if code != ExitSuccess {
			t.Fatalf("runBuildCmd() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
		}

		out := filepath.Join(root, "out")
		page := readFile(t, filepath.Join(out, "posts", "first", "index.html"))
		for _, want := range []string{
			"<title>Post first | Notes</title>",
			"Hello <em>world</em>.",
			`src="/img/logo.svg"`,
			`<link rel="canonical" href="https://example.com/posts/first/">`,
		} {
			if !strings.Contains(page, want) {
				t.Errorf("first page missing %q", want)
			}
		}

		index := readFile(t, filepath.Join(out, "index.html"))
		second := strings.Index(index, "/posts/second/")
		first := strings.Index(index, "/posts/first/")
		if second < 0 || first < 0 || second > first {
			t.Errorf("index should list second before first:\n%s", index)
		}
		if strings.Contains(index, "/posts/draft/") {
			t.Error("index lists the unpublished draft")
		}

		feed := readFile(t, filepath.Join(out, "feed.xml"))
		if !strings.Contains(feed, "<id>https://example.com/posts/second/</id>") {
			t.Errorf("feed missing second entry:\n%s", feed)
		}

		if got := readFile(t, filepath.Join(out, "img", "logo.svg")); got != "<svg/>" {
			t.Errorf("copied asset = %q", got)
		}
		if _, err := os.Stat(filepath.Join(out, "README.md")); !os.IsNotExist(err) {
			t.Errorf("README.md should not be copied, stat error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "posts", "draft")); !os.IsNotExist(err) {
			t.Errorf("draft should not be written, stat error = %v", err)
		}

		if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
			t.Errorf("stdout = %q, want summary", stdout.String())
		}
	})

	t.Run("failed documents give partial exit code", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{
			"good.md":   post("good", "2023-01-01T00:00:00Z", "Fine."),
			"broken.md": "---\ntitle: [unclosed\n---\nbody",
		})
		env, stdout, stderr := testEnv()

		code := runBuildCmd(context.Background(), buildArgs(root), env)
		if code != ExitPartial {
			t.Fatalf("runBuildCmd() = %d, want %d", code, ExitPartial)
		}
		if !strings.Contains(stderr.String(), "FAILED ") || !strings.Contains(stderr.String(), "broken.md") {
			t.Errorf("stderr = %q, want FAILED line for broken.md", stderr.String())
		}
		if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
			t.Errorf("stdout = %q, want summary", stdout.String())
		}
		if _, err := os.Stat(filepath.Join(root, "out", "posts", "good", "index.html")); err != nil {
			t.Errorf("good page not written: %v", err)
		}
	})

	t.Run("missing renderer is reported with a hint", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{
			"math.md": post("math", "2023-01-01T00:00:00Z", "```katex\nx^2\n```\n"),
		})
		cfgPath := filepath.Join(root, "site.yaml")
		writeFile(t, cfgPath, "render:\n  math:\n    command: "+filepath.Join(root, "no-such-katex")+"\n")
		env, _, stderr := testEnv()

		code := runBuildCmd(context.Background(), buildArgs(root, "-c", cfgPath), env)
		if code != ExitPartial {
			t.Fatalf("runBuildCmd() = %d, want %d\nstderr: %s", code, ExitPartial, stderr.String())
		}
		if !strings.Contains(stderr.String(), "hint:") || !strings.Contains(stderr.String(), "md2site doctor") {
			t.Errorf("stderr = %q, want tool hint", stderr.String())
		}
	})

	t.Run("chroma highlights in process", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{
			"code.md": post("code", "2023-01-01T00:00:00Z", "```go\nfunc main() {}\n```\n"),
		})
		env, _, stderr := testEnv()

		code := runBuildCmd(context.Background(), buildArgs(root, "--code-engine", "chroma", "-q"), env)
		if code != ExitSuccess {
			t.Fatalf("runBuildCmd() = %d\nstderr: %s", code, stderr.String())
		}
		page := readFile(t, filepath.Join(root, "out", "posts", "code", "index.html"))
		if !strings.Contains(page, `<div class="highlight">`) {
			t.Errorf("page missing highlighted block:\n%s", page)
		}
		if !strings.Contains(page, ".chroma") {
			t.Error("page style missing chroma classes")
		}
	})

	t.Run("quiet prints nothing on success", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{"a.md": post("a", "2023-01-01T00:00:00Z", "A.")})
		env, stdout, _ := testEnv()

		if code := runBuildCmd(context.Background(), buildArgs(root, "-q"), env); code != ExitSuccess {
			t.Fatalf("runBuildCmd() = %d", code)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})

	t.Run("missing posts directory", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		env, _, stderr := testEnv()

		code := runBuildCmd(context.Background(), []string{filepath.Join(root, "nope"), "-o", filepath.Join(root, "out")}, env)
		if code != ExitIO {
			t.Fatalf("runBuildCmd() = %d, want %d", code, ExitIO)
		}
		if !strings.Contains(stderr.String(), "hint:") {
			t.Errorf("stderr = %q, want hint", stderr.String())
		}
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		code := runBuildCmd(context.Background(), []string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}, env)
		if code != ExitUsage {
			t.Errorf("runBuildCmd() = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("invalid flag value", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, nil)
		env, _, stderr := testEnv()
		code := runBuildCmd(context.Background(), buildArgs(root, "--code-engine", "nope"), env)
		if code != ExitUsage {
			t.Errorf("runBuildCmd() = %d, want %d\nstderr: %s", code, ExitUsage, stderr.String())
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		if code := runBuildCmd(context.Background(), []string{"--nope"}, env); code != ExitUsage {
			t.Errorf("runBuildCmd() = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("help flag", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv()
		if code := runBuildCmd(context.Background(), []string{"--help"}, env); code != ExitSuccess {
			t.Errorf("runBuildCmd() = %d, want %d", code, ExitSuccess)
		}
		if !strings.Contains(stderr.String(), "Usage: md2site build") {
			t.Errorf("stderr = %q, want build usage", stderr.String())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		root := siteFixture(t, map[string]string{"a.md": post("a", "2023-01-01T00:00:00Z", "A.")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		env, _, _ := testEnv()
		if code := runBuildCmd(ctx, buildArgs(root), env); code != ExitGeneral {
			t.Errorf("runBuildCmd() = %d, want %d", code, ExitGeneral)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flag precedence
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		flags := &buildFlags{posts: "content", output: "public", logJSON: true}
		flags.site.title = "Flag Title"
		flags.render.workers = 3
		flags.render.codeEngine = config.EngineChroma
		flags.theme.template = "custom"
		flags.common.verbose = true

		mergeFlags(flags, nil, cfg)

		if cfg.Input.PostsDir != "content" || cfg.Output.Dir != "public" {
			t.Errorf("dirs = %q, %q", cfg.Input.PostsDir, cfg.Output.Dir)
		}
		if cfg.Site.Title != "Flag Title" || cfg.Render.Workers != 3 {
			t.Errorf("title/workers = %q, %d", cfg.Site.Title, cfg.Render.Workers)
		}
		if cfg.Render.Code.Engine != config.EngineChroma || cfg.Assets.Template != "custom" {
			t.Errorf("engine/template = %q, %q", cfg.Render.Code.Engine, cfg.Assets.Template)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != config.LogFormatJSON {
			t.Errorf("log = %+v", cfg.Log)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		want := *cfg
		mergeFlags(&buildFlags{}, nil, cfg)
		if cfg.Input != want.Input || cfg.Site != want.Site || cfg.Render.Code != want.Render.Code {
			t.Errorf("config changed: %+v", cfg)
		}
	})

	t.Run("--posts beats positional", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeFlags(&buildFlags{posts: "flag"}, []string{"positional"}, cfg)
		if cfg.Input.PostsDir != "flag" {
			t.Errorf("PostsDir = %q, want flag", cfg.Input.PostsDir)
		}
	})

	t.Run("quiet lowers log level", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		flags := &buildFlags{}
		flags.common.quiet = true
		mergeFlags(flags, nil, cfg)
		if cfg.Log.Level != "error" {
			t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
		}
	})
}

func TestSitePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		baseURL string
		want    string
	}{
		{"", "/"},
		{"https://example.com", "/"},
		{"https://example.com/blog/", "/blog/"},
		{"::bad", "/"},
	}
	for _, tt := range tests {
		if got := sitePath(tt.baseURL); got != tt.want {
			t.Errorf("sitePath(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}
