package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-md2site/internal/config"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "MD2SITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the config file.
type envConfig struct {
	ConfigPath string // MD2SITE_CONFIG: config file name or path

	// Site
	Title   string // MD2SITE_TITLE
	Author  string // MD2SITE_AUTHOR
	BaseURL string // MD2SITE_BASE_URL

	// I/O
	PostsDir  string // MD2SITE_POSTS_DIR
	AssetsDir string // MD2SITE_ASSETS_DIR
	OutputDir string // MD2SITE_OUTPUT_DIR

	// Rendering
	Workers    int    // MD2SITE_WORKERS
	Timeout    string // MD2SITE_TIMEOUT
	CodeEngine string // MD2SITE_CODE_ENGINE

	// Logging
	LogLevel  string // MD2SITE_LOG_LEVEL
	LogFormat string // MD2SITE_LOG_FORMAT
}

// knownEnvVars lists valid MD2SITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2SITE_CONFIG":      true,
	"MD2SITE_TITLE":       true,
	"MD2SITE_AUTHOR":      true,
	"MD2SITE_BASE_URL":    true,
	"MD2SITE_POSTS_DIR":   true,
	"MD2SITE_ASSETS_DIR":  true,
	"MD2SITE_OUTPUT_DIR":  true,
	"MD2SITE_WORKERS":     true,
	"MD2SITE_TIMEOUT":     true,
	"MD2SITE_CODE_ENGINE": true,
	"MD2SITE_LOG_LEVEL":   true,
	"MD2SITE_LOG_FORMAT":  true,
	"MD2SITE_CONTAINER":   true, // Read by doctor
}

// loadDotEnv loads variables from path into the process environment.
// Variables already set win over the file. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MD2SITE_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MD2SITE_CONFIG"),
		Title:      os.Getenv("MD2SITE_TITLE"),
		Author:     os.Getenv("MD2SITE_AUTHOR"),
		BaseURL:    os.Getenv("MD2SITE_BASE_URL"),
		PostsDir:   os.Getenv("MD2SITE_POSTS_DIR"),
		AssetsDir:  os.Getenv("MD2SITE_ASSETS_DIR"),
		OutputDir:  os.Getenv("MD2SITE_OUTPUT_DIR"),
		Timeout:    os.Getenv("MD2SITE_TIMEOUT"),
		CodeEngine: os.Getenv("MD2SITE_CODE_ENGINE"),
		LogLevel:   os.Getenv("MD2SITE_LOG_LEVEL"),
		LogFormat:  os.Getenv("MD2SITE_LOG_FORMAT"),
	}

	// Parse int for workers
	if workers := os.Getenv("MD2SITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2SITE_* variables.
// Helps catch typos like MD2SITE_OUTPUT instead of MD2SITE_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the loaded config.
// Only variables that are set take effect. Flags are applied afterwards via
// mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIf(&cfg.Site.Title, env.Title)
	setIf(&cfg.Site.Author, env.Author)
	setIf(&cfg.Site.BaseURL, env.BaseURL)

	setIf(&cfg.Input.PostsDir, env.PostsDir)
	setIf(&cfg.Input.AssetsDir, env.AssetsDir)
	setIf(&cfg.Output.Dir, env.OutputDir)

	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	setIf(&cfg.Render.Timeout, env.Timeout)
	setIf(&cfg.Render.Code.Engine, env.CodeEngine)

	setIf(&cfg.Log.Level, env.LogLevel)
	setIf(&cfg.Log.Format, env.LogFormat)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
