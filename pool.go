package md2site

import "runtime"

// Worker pool sizing constants.
const (
	// MinPoolSize ensures at least one document renders at a time.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent renders. Each render may hold one renderer
	// subprocess (a JVM for PlantUML, Node for KaTeX).
	MaxPoolSize = 16
)

// ResolvePoolSize determines how many documents render concurrently.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0)
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
