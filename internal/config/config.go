package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field length limits.
const (
	MaxTitleLength  = 200
	MaxAuthorLength = 100
	MaxURLLength    = 2048
	MaxPathLength   = 4096
	MaxWorkers      = 64
)

// Code highlighting engines.
const (
	EngineChroma   = "chroma"
	EnginePygments = "pygments"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ConfigDirName is the directory searched under the user config directory.
const ConfigDirName = "go-md2site"

// Config holds all configuration for a site build.
type Config struct {
	Site   SiteConfig   `yaml:"site" toml:"site"`
	Input  InputConfig  `yaml:"input" toml:"input"`
	Output OutputConfig `yaml:"output" toml:"output"`
	Render RenderConfig `yaml:"render" toml:"render"`
	Assets AssetsConfig `yaml:"assets" toml:"assets"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Author     string `yaml:"author" toml:"author"`
	BaseURL    string `yaml:"baseURL" toml:"baseURL"`       // Absolute URL used in the feed
	DateFormat string `yaml:"dateFormat" toml:"dateFormat"` // Tokens or preset, see dateutil
}

// InputConfig defines where sources are read from.
type InputConfig struct {
	PostsDir  string `yaml:"postsDir" toml:"postsDir"`
	AssetsDir string `yaml:"assetsDir" toml:"assetsDir"` // Copied as-is, .md files skipped
}

// OutputConfig defines where the site is written.
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// RenderConfig configures the block renderers.
type RenderConfig struct {
	Workers int           `yaml:"workers" toml:"workers"` // 0 = auto
	Timeout string        `yaml:"timeout" toml:"timeout"` // Per renderer invocation, e.g. "30s"
	Code    CodeConfig    `yaml:"code" toml:"code"`
	Math    MathConfig    `yaml:"math" toml:"math"`
	Diagram DiagramConfig `yaml:"diagram" toml:"diagram"`
}

// CodeConfig selects the syntax highlighter.
type CodeConfig struct {
	Engine  string `yaml:"engine" toml:"engine"`   // "pygments" or "chroma"
	Command string `yaml:"command" toml:"command"` // pygments only
	Style   string `yaml:"style" toml:"style"`     // chroma only
}

// MathConfig configures the KaTeX command.
type MathConfig struct {
	Command string `yaml:"command" toml:"command"`
}

// DiagramConfig configures the PlantUML command.
type DiagramConfig struct {
	Command string `yaml:"command" toml:"command"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" toml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style" toml:"style"`
	Template string `yaml:"template" toml:"template"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// TimeoutDuration returns the parsed renderer timeout. Empty means the
// renderer default; an unparsable value is rejected by Validate.
func (r RenderConfig) TimeoutDuration() time.Duration {
	if r.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks every section. Called automatically by LoadConfig, but
// available for callers that build a Config in code.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Site),
		validation.Field(&c.Input),
		validation.Field(&c.Output),
		validation.Field(&c.Render),
		validation.Field(&c.Assets),
		validation.Field(&c.Log),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Length(0, MaxTitleLength)),
		validation.Field(&s.Author, validation.Length(0, MaxAuthorLength)),
		validation.Field(&s.BaseURL, validation.Length(0, MaxURLLength), is.URL),
		validation.Field(&s.DateFormat, validation.By(validDateFormat)),
	)
}

// Validate implements validation.Validatable.
func (i InputConfig) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.PostsDir, validation.Required, validation.Length(0, MaxPathLength)),
		validation.Field(&i.AssetsDir, validation.Length(0, MaxPathLength)),
	)
}

// Validate implements validation.Validatable.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Dir, validation.Required, validation.Length(0, MaxPathLength)),
	)
}

// Validate implements validation.Validatable.
func (r RenderConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Workers, validation.Min(0), validation.Max(MaxWorkers)),
		validation.Field(&r.Timeout, validation.By(validTimeout)),
		validation.Field(&r.Code),
		validation.Field(&r.Math),
		validation.Field(&r.Diagram),
	)
}

// Validate implements validation.Validatable.
func (c CodeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Engine, validation.In(EnginePygments, EngineChroma)),
		validation.Field(&c.Command, validation.Length(0, MaxPathLength)),
		validation.Field(&c.Style, validation.Length(0, 50)),
	)
}

// Validate implements validation.Validatable.
func (m MathConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Command, validation.Length(0, MaxPathLength)),
	)
}

// Validate implements validation.Validatable.
func (d DiagramConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Command, validation.Length(0, MaxPathLength)),
	)
}

// Validate implements validation.Validatable.
func (a AssetsConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BasePath, validation.Length(0, MaxPathLength)),
		validation.Field(&a.Style, validation.Length(0, 100)),
		validation.Field(&a.Template, validation.Length(0, 100)),
	)
}

// Validate implements validation.Validatable.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In(LogFormatText, LogFormatJSON)),
	)
}

func validDateFormat(value any) error {
	s, _ := value.(string)
	_, err := dateutil.Layout(s)
	return err
}

func validTimeout(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration such as 30s or 2m")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:      "My Site",
			DateFormat: "long",
		},
		Input: InputConfig{
			PostsDir:  "posts",
			AssetsDir: "assets",
		},
		Output: OutputConfig{Dir: "docs"},
		Render: RenderConfig{
			Timeout: "30s",
			Code:    CodeConfig{Engine: EnginePygments, Command: "pygmentize", Style: "github"},
			Math:    MathConfig{Command: "katex"},
			Diagram: DiagramConfig{Command: "plantuml"},
		},
		Log: LogConfig{Level: "info", Format: LogFormatText},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode picks the format from the file extension. Unknown keys are errors
// in both formats.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	return yamlutil.UnmarshalStrict(data, cfg)
}

// Extensions tried, in order, when resolving a config name.
var configExtensions = []string{".yaml", ".yml", ".toml"}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries locations in order: current directory, ~/.config/go-md2site/
func resolveConfigPath(name string) (string, error) {
	triedPaths := make([]string, 0, len(configExtensions)*2)

	for _, ext := range configExtensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range configExtensions {
			userPath := filepath.Join(userConfigDir, ConfigDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths lists the locations LoadConfig tries for name, for hints.
func SearchedPaths(name string) []string {
	paths := make([]string, 0, len(configExtensions)*2)
	for _, ext := range configExtensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range configExtensions {
			paths = append(paths, filepath.Join(dir, ConfigDirName, name+ext))
		}
	}
	return paths
}
