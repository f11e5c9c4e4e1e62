package main

import (
	"os"

	"git.home.luguber.info/inful/pagesmith/cmd/pagesmith/commands"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/version"
	"github.com/alecthomas/kong"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	ctx := kong.Parse(&cli,
		kong.Name("pagesmith"),
		kong.Description("Render a directory of Markdown, HTML and assets into a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
