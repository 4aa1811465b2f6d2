package md2site

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// Site loads and renders the documents of one site. It is safe for
// concurrent use once constructed.
type Site struct {
	cfg    siteConfig
	engine *pipeline.Engine
}

// siteConfig holds the values set by options.
type siteConfig struct {
	logger    *slog.Logger
	workers   int
	assetBase string
	code      CodeRenderer
	math      MathRenderer
	diagram   DiagramRenderer
}

// Option configures a Site.
type Option func(*siteConfig)

// WithLogger sets the logger for skipped documents and inline math
// fallbacks. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *siteConfig) { c.logger = l }
}

// WithCodeRenderer sets the syntax highlighter for code blocks.
func WithCodeRenderer(r CodeRenderer) Option {
	return func(c *siteConfig) { c.code = r }
}

// WithMathRenderer sets the typesetter for katex blocks and inline math.
func WithMathRenderer(r MathRenderer) Option {
	return func(c *siteConfig) { c.math = r }
}

// WithDiagramRenderer sets the renderer for plantuml blocks.
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(c *siteConfig) { c.diagram = r }
}

// WithWorkers sets how many documents RenderAll renders concurrently.
// Zero picks a size from the available CPUs.
func WithWorkers(n int) Option {
	return func(c *siteConfig) { c.workers = n }
}

// WithAssetBase sets the site path that relative image and link targets in
// document bodies resolve against, such as "/" when the assets directory is
// copied to the site root. Empty leaves them untouched.
func WithAssetBase(path string) Option {
	return func(c *siteConfig) { c.assetBase = path }
}

// NewSite creates a Site. Blocks whose renderer is not configured fail to
// render with an error wrapping ErrRender.
func NewSite(opts ...Option) (*Site, error) {
	cfg := siteConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.workers)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engineOpts := []pipeline.Option{pipeline.WithLogger(cfg.logger)}
	if cfg.code != nil {
		engineOpts = append(engineOpts, pipeline.WithCodeRenderer(cfg.code))
	}
	if cfg.math != nil {
		engineOpts = append(engineOpts, pipeline.WithMathRenderer(cfg.math))
	}
	if cfg.diagram != nil {
		engineOpts = append(engineOpts, pipeline.WithDiagramRenderer(cfg.diagram))
	}

	return &Site{
		cfg:    cfg,
		engine: pipeline.NewEngine(engineOpts...),
	}, nil
}

// Workers returns the number of concurrent renders RenderAll uses.
func (s *Site) Workers() int {
	return ResolvePoolSize(s.cfg.workers)
}
