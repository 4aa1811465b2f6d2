package md2site

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/frontmatter"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// SourceExt is the extension of document files picked up by LoadDocuments.
const SourceExt = ".md"

// ParseDocument builds a Document from the full text of a source file.
// source identifies the document in errors and logs.
//
// Returns ErrNoMetadata when the text has no complete header, ErrUnpublished
// when the header has no valid published date, and ErrInvalidMetadata when
// the header is malformed. Only the last one is a real failure.
func (s *Site) ParseDocument(source, text string) (*Document, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, source)
	}

	raw, body, err := frontmatter.Parse(pipeline.NormalizeLineEndings(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, source, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMetadata, source)
	}

	meta := raw.Metadata(s.cfg.logger.With(slog.String("source", source)))
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnpublished, source)
	}

	return &Document{
		Metadata: *meta,
		Body:     body,
		Source:   source,
		URL:      URLFor(meta.Slug),
	}, nil
}

// LoadDocument reads and parses one file. A file that is empty, has no
// header, or is not published is skipped: the result is nil with a nil
// error and the reason is logged.
func (s *Site) LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the posts directory
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := s.ParseDocument(path, string(data))
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, ErrEmptySource), errors.Is(err, ErrNoMetadata):
		s.cfg.logger.Info("skipping document without metadata header", slog.String("source", path))
		return nil, nil
	case errors.Is(err, ErrUnpublished):
		s.cfg.logger.Info("skipping unpublished document", slog.String("source", path))
		return nil, nil
	default:
		return nil, err
	}
}

// LoadDocuments loads every *.md file directly inside dir, in name order,
// and returns the published documents sorted by SortByDate. Files that fail
// to load are reported as failures and do not stop the others. A second
// document claiming an already used slug is a failure too, since both would
// be written to the same URL.
//
// The error is non-nil only when dir itself cannot be read.
func (s *Site) LoadDocuments(dir string) ([]*Document, []Failure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading posts directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && fileutil.HasExt(e.Name(), SourceExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		docs     []*Document
		failures []Failure
		slugs    = make(map[string]string, len(names))
	)
	for _, name := range names {
		path := filepath.Join(dir, name)

		doc, err := s.LoadDocument(path)
		if err != nil {
			failures = append(failures, Failure{Source: path, Stage: StageLoad, Err: err})
			continue
		}
		if doc == nil {
			continue
		}
		if first, ok := slugs[doc.Slug]; ok {
			failures = append(failures, Failure{
				Source: path,
				Stage:  StageLoad,
				Err:    fmt.Errorf("%w: %q already used by %s", ErrDuplicateSlug, doc.Slug, first),
			})
			continue
		}
		slugs[doc.Slug] = path
		docs = append(docs, doc)
	}

	SortByDate(docs)
	return docs, failures, nil
}
