package config

import (
	"fmt"
	"os"
)

// Example is the configuration written by `pagesmith init`.
const Example = `# pagesmith site configuration
title: "My Site"
base_url: "https://example.com/"
params:
  author: "${USER}"
output:
  clean: true
format:
  tool: prettier # prettier | native | none
  on_debug: false
markup:
  extensions: [md, markdown]
bibliography:
  field: "$.bibliography"
  style_label: "Reference"
`

// WriteExample writes Example to path. An existing file is kept unless force is set.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(Example), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
