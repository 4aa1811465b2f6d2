package render

import (
	"context"
)

// DefaultPygmentsCommand is the executable used when none is configured.
const DefaultPygmentsCommand = "pygmentize"

// PlainTextLanguage is passed to the highlighter for untagged blocks.
const PlainTextLanguage = "text"

// Pygments highlights code by invoking pygmentize.
type Pygments struct {
	Command string
	Runner  Runner
}

// NewPygments creates a Pygments renderer.
// An empty command selects DefaultPygmentsCommand.
func NewPygments(command string, runner Runner) *Pygments {
	if command == "" {
		command = DefaultPygmentsCommand
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &Pygments{Command: command, Runner: runner}
}

// RenderCode returns the highlighted block wrapped in pygments' own
// <div class="highlight"><pre> markup.
func (p *Pygments) RenderCode(ctx context.Context, source, language string) (string, error) {
	if language == "" {
		language = PlainTextLanguage
	}
	return p.Runner.Run(ctx, source, p.Command, "-l", language, "-f", "html")
}
