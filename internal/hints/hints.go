// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// installHints maps a tool's base command name to how it is usually installed.
var installHints = map[string]string{
	"pygmentize": "install Pygments (pip install pygments)",
	"katex":      "install KaTeX (npm install -g katex)",
	"plantuml":   "install PlantUML (apt install plantuml or brew install plantuml)",
}

// ForToolNotFound returns hints for a renderer command missing from PATH.
func ForToolNotFound(command string) string {
	var hints []string

	name := strings.TrimSuffix(filepath.Base(command), ".exe")
	if install, ok := installHints[name]; ok {
		hints = append(hints, install)
	}
	if name == "pygmentize" {
		hints = append(hints, "or set render.code.engine: chroma to highlight without it")
	}
	if IsInContainer() {
		hints = append(hints, "add it to the container image")
	}
	hints = append(hints, "run 'md2site doctor' to check all tools")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the renderer timeout.
func ForTimeout() string {
	return format("for large diagrams, raise render.timeout or use --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-md2site/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-md2site/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForPostsDirectory returns hints when the posts directory cannot be read.
func ForPostsDirectory() string {
	return format("set input.postsDir in the config or pass --posts")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
