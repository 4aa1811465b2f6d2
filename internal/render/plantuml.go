package render

import (
	"context"
	"strings"
)

// DefaultPlantUMLCommand is the executable used when none is configured.
const DefaultPlantUMLCommand = "plantuml"

// PlantUML renders diagram descriptions to inline SVG.
type PlantUML struct {
	Command string
	Runner  Runner
}

// NewPlantUML creates a PlantUML renderer.
// An empty command selects DefaultPlantUMLCommand.
func NewPlantUML(command string, runner Runner) *PlantUML {
	if command == "" {
		command = DefaultPlantUMLCommand
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &PlantUML{Command: command, Runner: runner}
}

// RenderDiagram returns the SVG for source without its XML declaration.
// The caller supplies the surrounding figure.
func (p *PlantUML) RenderDiagram(ctx context.Context, source string) (string, error) {
	out, err := p.Runner.Run(ctx, source, p.Command, "-tsvg", "-nometadata", "-pipe")
	if err != nil {
		return "", err
	}
	return StripXMLDeclaration(out), nil
}

// StripXMLDeclaration removes a leading <?xml ...?> declaration, which is
// invalid inside an HTML document.
func StripXMLDeclaration(svg string) string {
	trimmed := strings.TrimLeft(svg, " \t\r\n\ufeff")
	if !strings.HasPrefix(trimmed, "<?xml") {
		return svg
	}
	end := strings.Index(trimmed, "?>")
	if end < 0 {
		return svg
	}
	return strings.TrimLeft(trimmed[end+2:], "\r\n")
}
