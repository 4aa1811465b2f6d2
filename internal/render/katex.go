package render

import (
	"context"
	"strings"
)

// DefaultKaTeXCommand is the executable used when none is configured.
const DefaultKaTeXCommand = "katex"

// KaTeX typesets TeX math by invoking the katex CLI.
type KaTeX struct {
	Command string
	Runner  Runner
}

// NewKaTeX creates a KaTeX renderer.
// An empty command selects DefaultKaTeXCommand.
func NewKaTeX(command string, runner Runner) *KaTeX {
	if command == "" {
		command = DefaultKaTeXCommand
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &KaTeX{Command: command, Runner: runner}
}

// RenderMath typesets source. Display math is wrapped in
// <figure class="math">; inline math is returned trimmed.
func (k *KaTeX) RenderMath(ctx context.Context, source string, display bool) (string, error) {
	if !display {
		out, err := k.Runner.Run(ctx, source, k.Command, "-t")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	}

	out, err := k.Runner.Run(ctx, source, k.Command, "-d", "-t")
	if err != nil {
		return "", err
	}
	return `<figure class="math">` + out + `</figure>`, nil
}
