// Package config loads the optional site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FormatTool selects the post-build formatter.
type FormatTool string

const (
	FormatPrettier FormatTool = "prettier"
	FormatNative   FormatTool = "native"
	FormatNone     FormatTool = "none"
)

// DiscoveryNames are the config file names looked up at the input root, in order.
var DiscoveryNames = []string{"site.yaml", "site.yml", "site.toml"}

// ErrNotFound indicates an explicitly requested config file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// Config is the site configuration.
type Config struct {
	Title        string             `yaml:"title" toml:"title"`
	BaseURL      string             `yaml:"base_url" toml:"base_url"`
	Params       map[string]any     `yaml:"params" toml:"params"`
	Output       OutputConfig       `yaml:"output" toml:"output"`
	Format       FormatConfig       `yaml:"format" toml:"format"`
	Markup       MarkupConfig       `yaml:"markup" toml:"markup"`
	Bibliography BibliographyConfig `yaml:"bibliography" toml:"bibliography"`
	Metrics      MetricsConfig      `yaml:"metrics" toml:"metrics"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-" toml:"-"`
}

// OutputConfig controls the output directory.
type OutputConfig struct {
	Clean bool `yaml:"clean" toml:"clean"` // Remove the output directory before building
}

// FormatConfig controls the post-build formatter.
type FormatConfig struct {
	Tool    FormatTool `yaml:"tool" toml:"tool"`
	OnDebug bool       `yaml:"on_debug" toml:"on_debug"` // Also format debug builds
}

// MarkupConfig controls which extensions are rendered as Markdown.
type MarkupConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// BibliographyConfig controls citation processing.
type BibliographyConfig struct {
	Field      string `yaml:"field" toml:"field"`             // JSONPath into frontmatter
	StyleLabel string `yaml:"style_label" toml:"style_label"` // Reference section heading
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Title:  "",
		Params: map[string]any{},
		Output: OutputConfig{Clean: true},
		Format: FormatConfig{Tool: FormatPrettier},
		Markup: MarkupConfig{Extensions: append([]string(nil), plan.DefaultMarkupExts...)},
		Bibliography: BibliographyConfig{
			Field:      "$.bibliography",
			StyleLabel: "Reference",
		},
	}
}

// Load reads the configuration at path. Values from the file are layered over
// Default, then PAGESMITH_* environment variables are applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the file content
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	}
	cfg.Source = path

	return finish(cfg)
}

// Discover returns the first config file found at the input root.
func Discover(inputDir string) (string, bool) {
	for _, name := range DiscoveryNames {
		p := filepath.Join(inputDir, name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// LoadForInput loads explicit if set, else a discovered file at the input
// root, else the defaults.
func LoadForInput(inputDir, explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if found, ok := Discover(inputDir); ok {
		return Load(found)
	}
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Format.Tool = FormatTool(strings.ToLower(strings.TrimSpace(string(cfg.Format.Tool))))
	if cfg.Format.Tool == "" {
		cfg.Format.Tool = FormatPrettier
	}
	exts := cfg.Markup.Extensions[:0]
	for _, ext := range cfg.Markup.Extensions {
		if ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), "."); ext != "" {
			exts = append(exts, ext)
		}
	}
	cfg.Markup.Extensions = exts
	if cfg.Params == nil {
		cfg.Params = map[string]any{}
	}
}

// Validate checks a configuration for values the build cannot use.
func Validate(cfg *Config) error {
	var errs []error
	switch cfg.Format.Tool {
	case FormatPrettier, FormatNative, FormatNone:
	default:
		errs = append(errs, fmt.Errorf("format.tool must be one of prettier, native, none (got %q)", cfg.Format.Tool))
	}
	if len(cfg.Markup.Extensions) == 0 {
		errs = append(errs, errors.New("markup.extensions must not be empty"))
	}
	for _, ext := range cfg.Markup.Extensions {
		if ext == plan.HTMLExt {
			errs = append(errs, errors.New("markup.extensions must not include html"))
		}
	}
	if strings.TrimSpace(cfg.Bibliography.Field) == "" {
		errs = append(errs, errors.New("bibliography.field must not be empty"))
	}
	return errors.Join(errs...)
}

// SiteData is the `site` value exposed to templates.
func (c *Config) SiteData() map[string]any {
	site := make(map[string]any, 3)
	site["title"] = c.Title
	site["base_url"] = c.BaseURL
	site["params"] = c.Params
	return site
}
