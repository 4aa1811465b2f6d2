package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/render"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrReadPosts    = errors.New("failed to read posts directory")
	ErrWriteOutput  = errors.New("failed to write output")
	ErrPartialBuild = errors.New("some documents failed")
)

// defaultConfigName is looked up when no config is given. Its absence is
// not an error.
const defaultConfigName = "md2site"

// runBuildCmd runs the build command and returns an exit code.
func runBuildCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	err = runBuild(ctx, positional, flags, env)
	if err != nil && !errors.Is(err, ErrPartialBuild) {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// runBuild loads the configuration, renders every published document, and
// writes the site. Per-document failures do not stop the build; they are
// reported and turned into ErrPartialBuild at the end.
func runBuild(ctx context.Context, positional []string, flags *buildFlags, env *Environment) error {
	if err := loadDotEnv(env.DotEnv); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	cfg, err := resolveConfig(configName)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, positional, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env, cfg.Log)

	renderers, err := newRenderers(cfg.Render)
	if err != nil {
		return err
	}

	site, err := md2site.NewSite(
		md2site.WithLogger(logger),
		md2site.WithCodeRenderer(renderers.code),
		md2site.WithMathRenderer(renderers.math),
		md2site.WithDiagramRenderer(renderers.diagram),
		md2site.WithWorkers(cfg.Render.Workers),
		md2site.WithAssetBase(sitePath(cfg.Site.BaseURL)),
	)
	if err != nil {
		return err
	}

	tmpl, err := loadTemplates(cfg, renderers.css)
	if err != nil {
		return err
	}

	docs, failures, err := site.LoadDocuments(cfg.Input.PostsDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadPosts, cfg.Input.PostsDir, err)
	}
	logger.Debug("documents loaded", slog.Int("published", len(docs)), slog.Int("failed", len(failures)))

	pages, renderFailures := site.RenderAll(ctx, docs)
	failures = append(failures, renderFailures...)
	if err := ctx.Err(); err != nil {
		return err
	}

	out := cfg.Output.Dir
	results := writePages(tmpl, pages, out)
	for _, f := range failures {
		results = append(results, pageResult{Source: f.Source, Err: f})
	}

	// Only documents with a page on disk are listed, so the index has no
	// dead links.
	listed := make([]*md2site.Document, 0, len(pages))
	for _, r := range results {
		if r.Err == nil {
			listed = append(listed, r.Doc)
		}
	}

	extra, err := writeListings(tmpl, listed, out, env)
	if err != nil {
		return err
	}

	copied, err := fileutil.CopyDir(cfg.Input.AssetsDir, out, func(rel string) bool {
		return fileutil.HasExt(rel, md2site.SourceExt)
	})
	if err != nil {
		return fmt.Errorf("%w: copying assets: %w", ErrWriteOutput, err)
	}
	logger.Debug("assets copied", slog.String("from", cfg.Input.AssetsDir), slog.Int("files", copied))

	failed := printResults(results, extra, flags.common.quiet, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPartialBuild, failed, len(results))
	}
	return nil
}

// resolveConfig loads the named config, or the default config name when
// none is given. Only an explicitly requested config must exist.
func resolveConfig(name string) (*config.Config, error) {
	if name != "" {
		return config.LoadConfig(name)
	}
	cfg, err := config.LoadConfig(defaultConfigName)
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.DefaultConfig(), nil
	}
	return cfg, err
}

// mergeFlags applies explicitly set flags over cfg.
func mergeFlags(flags *buildFlags, positional []string, cfg *config.Config) {
	if len(positional) == 1 {
		cfg.Input.PostsDir = positional[0]
	}
	setIf(&cfg.Input.PostsDir, flags.posts)
	setIf(&cfg.Input.AssetsDir, flags.assets)
	setIf(&cfg.Output.Dir, flags.output)

	setIf(&cfg.Site.Title, flags.site.title)
	setIf(&cfg.Site.Author, flags.site.author)
	setIf(&cfg.Site.BaseURL, flags.site.baseURL)

	if flags.render.workers != 0 {
		cfg.Render.Workers = flags.render.workers
	}
	setIf(&cfg.Render.Timeout, flags.render.timeout)
	setIf(&cfg.Render.Code.Engine, flags.render.codeEngine)
	setIf(&cfg.Render.Code.Style, flags.render.codeStyle)

	setIf(&cfg.Assets.Style, flags.theme.style)
	setIf(&cfg.Assets.Template, flags.theme.template)
	setIf(&cfg.Assets.BasePath, flags.theme.assetPath)

	switch {
	case flags.common.verbose:
		cfg.Log.Level = "debug"
	case flags.common.quiet:
		cfg.Log.Level = "error"
	}
	if flags.logJSON {
		cfg.Log.Format = config.LogFormatJSON
	}
}

// newLogger builds the diagnostics logger on stderr.
func newLogger(env *Environment, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(env.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(env.Stderr, opts))
}

// renderers groups the block renderers selected by the config. css is extra
// stylesheet text the code renderer needs on every page.
type renderers struct {
	code    md2site.CodeRenderer
	math    md2site.MathRenderer
	diagram md2site.DiagramRenderer
	css     string
}

func newRenderers(cfg config.RenderConfig) (*renderers, error) {
	runner := &render.ExecRunner{Timeout: cfg.TimeoutDuration()}
	r := &renderers{
		math:    render.NewKaTeX(cfg.Math.Command, runner),
		diagram: render.NewPlantUML(cfg.Diagram.Command, runner),
	}

	if cfg.Code.Engine != config.EngineChroma {
		r.code = render.NewPygments(cfg.Code.Command, runner)
		return r, nil
	}

	c, err := render.NewChroma(cfg.Code.Style)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	var css strings.Builder
	if err := c.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("generating highlight stylesheet: %w", err)
	}
	r.code = c
	r.css = css.String()
	return r, nil
}

// loadTemplates loads the configured theme. extraCSS is appended to the
// page stylesheet.
func loadTemplates(cfg *config.Config, extraCSS string) (*md2site.Templates, error) {
	loader, err := md2site.NewAssetLoader(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	theme, err := md2site.LoadTheme(loader, cfg.Assets.Style, cfg.Assets.Template)
	if err != nil {
		return nil, err
	}
	if extraCSS != "" {
		theme.Style += "\n" + extraCSS
	}
	theme.DateFormat = cfg.Site.DateFormat

	return md2site.NewTemplates(md2site.SiteInfo{
		Title:   cfg.Site.Title,
		Author:  cfg.Site.Author,
		BaseURL: cfg.Site.BaseURL,
	}, theme)
}

// sitePath returns the path component of baseURL, where the site root and
// the copied assets are served.
func sitePath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// pageResult is the outcome for one document.
type pageResult struct {
	Source string
	Output string
	Doc    *md2site.Document
	Err    error
}

// writePages writes one index.html per page under out/posts/<slug>/.
func writePages(tmpl *md2site.Templates, pages []*md2site.Page, out string) []pageResult {
	results := make([]pageResult, 0, len(pages))
	for _, page := range pages {
		doc := page.Document
		r := pageResult{Source: doc.Source, Doc: doc}

		path, err := fileutil.Within(out, filepath.Join("posts", doc.Slug, "index.html"))
		if err != nil {
			r.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
			results = append(results, r)
			continue
		}
		r.Output = path

		var buf bytes.Buffer
		if err := tmpl.Post(&buf, page); err != nil {
			r.Err = err
		} else if err := fileutil.WriteFile(path, buf.Bytes()); err != nil {
			r.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		results = append(results, r)
	}
	return results
}

// writeListings writes the index page and the Atom feed and returns their
// paths.
func writeListings(tmpl *md2site.Templates, docs []*md2site.Document, out string, env *Environment) ([]string, error) {
	var index bytes.Buffer
	if err := tmpl.Index(&index, docs); err != nil {
		return nil, err
	}
	indexPath := filepath.Join(out, "index.html")
	if err := fileutil.WriteFile(indexPath, index.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	var feed bytes.Buffer
	if err := md2site.WriteFeed(&feed, tmpl.Info(), docs, env.Now()); err != nil {
		return nil, err
	}
	feedPath := filepath.Join(out, filepath.FromSlash(strings.TrimPrefix(md2site.FeedPath, "/")))
	if err := fileutil.WriteFile(feedPath, feed.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return []string{indexPath, feedPath}, nil
}

// printResults reports every document and the listings, then the summary.
// Returns the number of failed documents.
func printResults(results []pageResult, listings []string, quiet bool, env *Environment) int {
	failed := 0
	timedOut := false
	var missingTools []string
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Source, r.Err)
			if tool := missingTool(r.Err); tool != "" && !slices.Contains(missingTools, tool) {
				missingTools = append(missingTools, tool)
			}
			timedOut = timedOut || errors.Is(r.Err, render.ErrTimeout)
			continue
		}
		if !quiet {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.Output)
		}
	}

	for _, tool := range missingTools {
		fmt.Fprintf(env.Stderr, "%s not found%s\n", tool, hints.ForToolNotFound(tool))
	}
	if timedOut {
		fmt.Fprintf(env.Stderr, "some renderers timed out%s\n", hints.ForTimeout())
	}

	if !quiet {
		for _, p := range listings {
			fmt.Fprintf(env.Stdout, "Created %s\n", p)
		}
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}

// missingTool returns the renderer command behind a not-found error.
func missingTool(err error) string {
	var perr *render.ProcessError
	if errors.As(err, &perr) && errors.Is(perr, render.ErrToolNotFound) {
		return perr.Tool
	}
	return ""
}

// hintFor returns an actionable hint for a fatal build error.
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchedPaths(defaultConfigName))
	case errors.Is(err, ErrReadPosts):
		return hints.ForPostsDirectory()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, md2site.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{md2site.DefaultStyle})
	}
	return ""
}
