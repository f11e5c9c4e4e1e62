package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `arg:"" optional:"" default:"." help:"Directory to scaffold the site in" type:"path"`
	Force bool   `help:"Overwrite existing files"`
}

const scaffoldIndex = "# Welcome\n\nEdit `content/index.md` to get started.\n"

const scaffoldPage = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>{{ default .site.title .display_title }}</title>
  </head>
  <body>
    <main>{{ .content }}</main>
    {{ if .subpages }}<ul>{{ range .subpages }}<li><a href="{{ .URL }}">{{ .DisplayTitle }}</a></li>{{ end }}</ul>{{ end }}
    {{ if .debug }}<footer>debug build {{ .build_date }}</footer>{{ end }}
  </body>
</html>
`

var errExists = errors.New("file already exists (use --force to overwrite)")

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	files := []struct {
		rel  string
		body string
	}{
		{filepath.Join("content", "index.md"), scaffoldIndex},
		{filepath.Join("templates", "page.html"), scaffoldPage},
	}
	cfgPath := filepath.Join(i.Dir, config.DiscoveryNames[0])
	if !i.Force {
		for _, p := range []string{filepath.Join(i.Dir, files[0].rel), filepath.Join(i.Dir, files[1].rel), cfgPath} {
			if _, err := os.Stat(p); err == nil {
				return ferrors.WrapError(errExists, ferrors.CategoryValidation, "refusing to overwrite").WithPath(p).Build()
			}
		}
	}
	for _, f := range files {
		if err := writeScaffold(filepath.Join(i.Dir, f.rel), f.body); err != nil {
			return err
		}
	}
	if err := config.WriteExample(cfgPath, i.Force); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration").Fatal().WithPath(cfgPath).Build()
	}
	_, _ = fmt.Fprintf(g.Stdout, "Initialized site in %s\n", i.Dir)
	return nil
}

func writeScaffold(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // site source directories
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").Fatal().WithPath(path).Build()
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil { //nolint:gosec // site source files
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write file").Fatal().WithPath(path).Build()
	}
	return nil
}
