package pipeline

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Inline math placeholders use Unicode Private Use Area characters.
// They pass through goldmark unchanged and are swapped for the rendered
// markup once the tree has been serialized, so KaTeX output is never
// reinterpreted as Markdown.
const (
	MathStartPlaceholder = "\uE002" // U+E002: Private Use Area
	MathEndPlaceholder   = "\uE003" // U+E003: Private Use Area
)

// Precompiled regex patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// $...$ or \(...\) on a single line, non-greedy
	inlineMathPattern = regexp.MustCompile(`\$([^$\n]+?)\$|\\\((.+?)\\\)`)

	// Placeholder written by substituteInlineMath
	placeholderPattern = regexp.MustCompile(MathStartPlaceholder + `(\d+)` + MathEndPlaceholder)
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// inlineMath records the expressions substituted by the pre-pass.
type inlineMath struct {
	sources  []string
	rendered []string
}

func (m *inlineMath) used() bool {
	return len(m.rendered) > 0
}

// restore swaps placeholders for rendered markup in text content. Inside a
// tag, where markup would break the attribute, the escaped source is used
// instead.
func (m *inlineMath) restore(s string) string {
	if !m.used() || !strings.Contains(s, MathStartPlaceholder) {
		return s
	}
	escaped := make([]string, len(m.sources))
	for i, src := range m.sources {
		escaped[i] = html.EscapeString(src)
	}

	var out strings.Builder
	out.Grow(len(s))
	start, inTag := 0, false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case !inTag:
			if c == '<' {
				out.WriteString(m.replace(s[start:i], m.rendered))
				start, inTag = i, true
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			out.WriteString(m.replace(s[start:i+1], escaped))
			start, inTag = i+1, false
		}
	}
	if inTag {
		out.WriteString(m.replace(s[start:], escaped))
	} else {
		out.WriteString(m.replace(s[start:], m.rendered))
	}
	return out.String()
}

// plain swaps placeholders for the original delimited source. Used where
// markup cannot appear, such as attribute values.
func (m *inlineMath) plain(s string) string {
	return m.replace(s, m.sources)
}

func (m *inlineMath) replace(s string, values []string) string {
	if len(values) == 0 || !strings.Contains(s, MathStartPlaceholder) {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		i, err := strconv.Atoi(match[len(MathStartPlaceholder) : len(match)-len(MathEndPlaceholder)])
		if err != nil || i < 0 || i >= len(values) {
			return match
		}
		return values[i]
	})
}

// substituteInlineMath renders every inline math expression outside code.
// An expression that fails to render is left as written and logged.
func substituteInlineMath(ctx context.Context, math MathRenderer, logger *slog.Logger, body string) (string, *inlineMath) {
	state := &inlineMath{}
	if math == nil || !strings.ContainsAny(body, `$\`) {
		return body, state
	}

	var out strings.Builder
	out.Grow(len(body))
	for _, seg := range splitFences(body) {
		if seg.code {
			out.WriteString(seg.text)
			continue
		}
		out.WriteString(substituteOutsideCodeSpans(ctx, math, logger, seg.text, state))
	}
	return out.String(), state
}

func substituteOutsideCodeSpans(ctx context.Context, math MathRenderer, logger *slog.Logger, text string, state *inlineMath) string {
	var out strings.Builder
	last := 0
	for _, span := range codeSpans(text) {
		out.WriteString(substituteMatches(ctx, math, logger, text[last:span[0]], state))
		out.WriteString(text[span[0]:span[1]])
		last = span[1]
	}
	out.WriteString(substituteMatches(ctx, math, logger, text[last:], state))
	return out.String()
}

func substituteMatches(ctx context.Context, math MathRenderer, logger *slog.Logger, text string, state *inlineMath) string {
	matches := inlineMathPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		var expr string
		switch {
		case m[2] >= 0:
			// $$ is display math, not two inline delimiters.
			if (start > 0 && text[start-1] == '$') || (end < len(text) && text[end] == '$') {
				continue
			}
			expr = text[m[2]:m[3]]
		case m[4] >= 0:
			expr = text[m[4]:m[5]]
		default:
			continue
		}

		rendered, err := math.RenderMath(ctx, expr, false)
		if err != nil {
			if logger != nil {
				logger.Warn("inline math render failed, keeping source",
					slog.String("expr", text[start:end]),
					slog.String("error", err.Error()))
			}
			continue
		}

		out.WriteString(text[last:start])
		out.WriteString(MathStartPlaceholder)
		out.WriteString(strconv.Itoa(len(state.rendered)))
		out.WriteString(MathEndPlaceholder)
		state.sources = append(state.sources, text[start:end])
		state.rendered = append(state.rendered, rendered)
		last = end
	}
	out.WriteString(text[last:])
	return out.String()
}

// codeSpans returns the byte ranges of inline code spans: a backtick run
// closed by the next run of the same length. A run with no closer before a
// blank line is literal.
func codeSpans(text string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		n := runLength(text[i:], '`')
		end := closingRun(text[i+n:], n)
		if end < 0 {
			i += n
			continue
		}
		spans = append(spans, [2]int{i, i + n + end})
		i += n + end
	}
	return spans
}

// closingRun returns the offset just past the first run of exactly n
// backticks in s, or -1.
func closingRun(s string, n int) int {
	for j := 0; j < len(s); {
		switch {
		case strings.HasPrefix(s[j:], "\n\n"):
			return -1
		case s[j] == '`':
			m := runLength(s[j:], '`')
			if m == n {
				return j + m
			}
			j += m
		default:
			j++
		}
	}
	return -1
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// segment is a run of lines that is either inside a fenced code block or not.
type segment struct {
	text string
	code bool
}

// splitFences partitions text into fenced code blocks and everything else.
// A fence opens with three or more backticks or tildes indented at most
// three spaces and closes with at least as many of the same character.
// An unclosed fence runs to the end of the text.
func splitFences(text string) []segment {
	var segs []segment
	var cur strings.Builder
	inCode := false
	var fenceChar byte
	fenceLen := 0

	flush := func(code bool) {
		if cur.Len() > 0 {
			segs = append(segs, segment{text: cur.String(), code: code})
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		ch, n, rest := fenceMarker(line)
		switch {
		case !inCode && n > 0 && !(ch == '`' && strings.ContainsRune(rest, '`')):
			flush(false)
			inCode, fenceChar, fenceLen = true, ch, n
			cur.WriteString(line)
		case inCode && n >= fenceLen && ch == fenceChar && strings.TrimSpace(rest) == "":
			cur.WriteString(line)
			flush(true)
			inCode = false
		default:
			cur.WriteString(line)
		}
	}
	flush(inCode)
	return segs
}

// fenceMarker reports the fence character and run length of a fence line, or
// n == 0 when line is not a fence.
func fenceMarker(line string) (ch byte, n int, rest string) {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent >= len(line) {
		return 0, 0, ""
	}
	ch = line[indent]
	if ch != '`' && ch != '~' {
		return 0, 0, ""
	}
	i := indent
	for i < len(line) && line[i] == ch {
		i++
	}
	if i-indent < 3 {
		return 0, 0, ""
	}
	return ch, i - indent, line[i:]
}
