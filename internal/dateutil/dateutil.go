// Package dateutil converts user-friendly date formats such as
// "MMMM D, YYYY" to Go layouts and formats publish dates for pages and feeds.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds the accepted format string.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when no format is configured.
const DefaultDateFormat = "MMMM D, YYYY"

// tokens maps format tokens to Go layout elements. Longer tokens sharing a
// prefix come first so matching is greedy.
var tokens = [...]struct{ tok, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"DD", "02"},
	{"D", "2"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
}

// DatePresets are named shortcuts accepted wherever a format is.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     DefaultDateFormat,
	"full":     "dddd, MMMM D, YYYY",
}

// ParseDateFormat converts a token format to a Go time layout.
//
// Tokens: YYYY YY MMMM MMM MM M DD D dddd ddd. Text inside square brackets
// is copied literally, so "[Posted] D MMM" keeps the word "Posted". Every
// other character is kept as is.
func ParseDateFormat(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				pos := len(format) - len(rest)
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			layout.WriteString(literal)
			rest = after
			continue
		}
		n := matchToken(rest, &layout)
		rest = rest[n:]
	}
	return layout.String(), nil
}

// matchToken writes the layout for the token at the start of s, or the
// first byte of s when no token matches, and returns how many bytes were
// consumed.
func matchToken(s string, w *strings.Builder) int {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.tok) {
			w.WriteString(t.layout)
			return len(t.tok)
		}
	}
	w.WriteByte(s[0])
	return 1
}

// Layout resolves a preset name (case-insensitive) or token format to a Go
// time layout. An empty format uses DefaultDateFormat.
func Layout(format string) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	return ParseDateFormat(format)
}

// Format renders t with a preset or token format.
func Format(t time.Time, format string) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// AtomDate renders t as an RFC 3339 timestamp in UTC, as required by Atom
// feeds.
func AtomDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
