package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAGESMITH_"

// EnvFiles are loaded, when present, from the working directory.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads the .env files that exist. Variables already set in the
// process environment win. It returns the files that were loaded.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, name := range EnvFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, fmt.Errorf("load %s: %w", name, err)
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"TITLE":                    &cfg.Title,
		"BASE_URL":                 &cfg.BaseURL,
		"BIBLIOGRAPHY_FIELD":       &cfg.Bibliography.Field,
		"BIBLIOGRAPHY_STYLE_LABEL": &cfg.Bibliography.StyleLabel,
		"METRICS_TEXTFILE":         &cfg.Metrics.Textfile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"OUTPUT_CLEAN":    &cfg.Output.Clean,
		"FORMAT_ON_DEBUG": &cfg.Format.OnDebug,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	if v, ok := os.LookupEnv(EnvPrefix + "FORMAT_TOOL"); ok {
		cfg.Format.Tool = FormatTool(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MARKUP_EXTENSIONS"); ok {
		cfg.Markup.Extensions = strings.Split(v, ",")
	}
	return nil
}
