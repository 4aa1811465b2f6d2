package md2site

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// Render transforms the body of doc into an HTML fragment. Any block
// renderer failure fails the whole document with an error wrapping
// ErrRender.
func (s *Site) Render(ctx context.Context, doc *Document) (*Page, error) {
	engine := s.engine.Logger(s.cfg.logger.With(slog.String("source", doc.Source)))

	result, err := engine.Transform(ctx, doc.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, doc.Source, err)
	}

	content, err := pipeline.RewriteRelativePaths(result.HTML, s.cfg.assetBase)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: rewriting paths: %w", ErrRender, doc.Source, err)
	}

	return &Page{
		Document:     doc,
		Content:      content,
		NeedsMathCSS: result.NeedsMathCSS,
	}, nil
}

// RenderAll renders docs concurrently, at most Workers at a time. Pages come
// back in the order of docs; documents that failed are absent from pages and
// reported in failures, also in input order. One failure never stops the
// others. Once ctx is done, documents not yet started fail with ctx.Err().
func (s *Site) RenderAll(ctx context.Context, docs []*Document) ([]*Page, []Failure) {
	results := make([]*Page, len(docs))
	errs := make([]error, len(docs))

	var g errgroup.Group
	g.SetLimit(s.Workers())

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = s.Render(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]*Page, 0, len(docs))
	var failures []Failure
	for i, doc := range docs {
		if errs[i] != nil {
			failures = append(failures, Failure{Source: doc.Source, Stage: StageRender, Err: errs[i]})
			continue
		}
		pages = append(pages, results[i])
	}
	return pages, failures
}
