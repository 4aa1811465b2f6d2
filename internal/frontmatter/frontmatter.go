// Package frontmatter extracts and validates the YAML metadata header of a
// document.
//
// A header is delimited by a line of exactly three dashes at offset zero and
// a second such line before the body. Callers normalize line endings first
// (see pipeline.NormalizeLineEndings); this package only understands "\n".
package frontmatter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Delimiter is the line that opens and closes a metadata header.
const Delimiter = "---"

// DefaultSection is used when the header omits the section key.
const DefaultSection = "Miscellaneous"

// Sentinel errors for header decoding. All of them are structural failures:
// an unpublished document is reported by a nil Metadata, never by an error.
var (
	ErrDecode      = errors.New("invalid metadata header")
	ErrMissingKeys = errors.New("metadata header missing required keys")
	ErrInvalid     = errors.New("invalid metadata value")
)

// requiredKeys must be present in every header, even when empty.
var requiredKeys = []string{"slug", "summary", "tags", "title"}


// RawMetadata mirrors the header as written. It carries no invariants.
type RawMetadata struct {
	Title     string   `yaml:"title"`
	Slug      string   `yaml:"slug"`
	Tags      []string `yaml:"tags"`
	Published *string  `yaml:"published"`
	Summary   string   `yaml:"summary"`
	Section   *string  `yaml:"section"`
}

// Metadata is the validated, canonical header of a published document.
type Metadata struct {
	Title   string    `json:"title"`
	Slug    string    `json:"slug"`
	Tags    []string  `json:"tags"`
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
	Section string    `json:"section"`
}

// Split separates a leading metadata header from the body.
// ok is false when text does not start with a delimiter line or the closing
// delimiter line is missing; body is then the whole text.
func Split(text string) (header, body string, ok bool) {
	opening := Delimiter + "\n"
	if !strings.HasPrefix(text, opening) {
		return "", text, false
	}

	rest := text[len(opening):]
	for offset := 0; offset <= len(rest); {
		end := strings.IndexByte(rest[offset:], '\n')
		if end < 0 {
			if rest[offset:] == Delimiter {
				return rest[:offset], "", true
			}
			break
		}
		if rest[offset:offset+end] == Delimiter {
			return rest[:offset], rest[offset+end+1:], true
		}
		offset += end + 1
	}

	return "", text, false
}

// Parse splits text and decodes its header.
// raw is nil when text carries no complete header; err is non-nil only when a
// header exists but is structurally invalid.
func Parse(text string) (raw *RawMetadata, body string, err error) {
	header, body, ok := Split(text)
	if !ok {
		return nil, text, nil
	}

	raw, err = Decode([]byte(header))
	if err != nil {
		return nil, text, err
	}
	return raw, body, nil
}

// Decode decodes a header block into RawMetadata and checks that every
// required key is present. Keys it does not know are ignored.
func Decode(header []byte) (*RawMetadata, error) {
	keys, err := yamlutil.Keys(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if missing := missingKeys(keys); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ", "))
	}

	var raw RawMetadata
	if err := yamlutil.Unmarshal(header, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &raw, nil
}

// Validate rejects slugs that cannot name a page directory. Any other
// value, including an empty title, is accepted as written.
func (r *RawMetadata) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Slug, validation.Required, validation.By(pathSegment)),
	)
}

// pathSegment accepts a string usable as one directory name under /posts/.
func pathSegment(value any) error {
	s, _ := value.(string)
	switch {
	case s == "." || s == "..":
		return errors.New("cannot be a relative path segment")
	case strings.ContainsAny(s, `/\`):
		return errors.New("cannot contain a path separator")
	case strings.ContainsFunc(s, unicode.IsControl):
		return errors.New("cannot contain control characters")
	}
	return nil
}

// Metadata converts the header into its canonical form.
// It returns nil when the document is not published: the published key is
// absent or is not an RFC 3339 timestamp. The latter is logged with the
// offending value and the slug.
func (r *RawMetadata) Metadata(logger *slog.Logger) *Metadata {
	if r.Published == nil {
		return nil
	}

	date, err := time.Parse(time.RFC3339, *r.Published)
	if err != nil {
		if logger != nil {
			logger.Warn("unexpected published date format, treating as unpublished",
				slog.String("value", *r.Published),
				slog.String("slug", r.Slug),
				slog.String("expected", time.RFC3339),
				slog.String("error", err.Error()))
		}
		return nil
	}

	section := DefaultSection
	if r.Section != nil && *r.Section != "" {
		section = *r.Section
	}

	return &Metadata{
		Title:   r.Title,
		Slug:    r.Slug,
		Tags:    append([]string{}, r.Tags...),
		Date:    date.UTC(),
		Summary: r.Summary,
		Section: section,
	}
}

func missingKeys(keys []string) []string {
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}

	var missing []string
	for _, k := range requiredKeys {
		if _, ok := present[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
