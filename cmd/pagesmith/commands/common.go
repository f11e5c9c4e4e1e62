// Package commands implements the pagesmith subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
)

// LogLevelEnv overrides the log level unless -v is given.
const LogLevelEnv = "PAGESMITH_LOG_LEVEL"

// Global is shared state handed to every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: site.yaml, site.yml or site.toml in the input directory)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging and detailed errors"`
	LogFormat string           `name:"log-format" help:"Log output format (auto|text|json)" enum:"auto,text,json" default:"auto"`
	ShowVer   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render a site into an output directory"`
	Plan    PlanCmd    `cmd:"" help:"Show how every content file would be handled, without writing anything"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new site"`
	Version VersionCmd `cmd:"" help:"Print version and build information"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	level, err := parseLogLevel(c.Verbose, os.Getenv(LogLevelEnv))
	if err != nil {
		return err
	}
	g.Logger = newLogger(g.Stderr, c.LogFormat, level)
	slog.SetDefault(g.Logger)
	return nil
}

// parseLogLevel resolves the level from -v, then the environment, then info.
func parseLogLevel(verbose bool, env string) (slog.Level, error) {
	if verbose {
		return slog.LevelDebug, nil
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid %s %q (want debug, info, warn or error)", LogLevelEnv, env)
	}
}

// newLogger returns a text logger for terminals and a JSON logger otherwise,
// unless format forces one.
func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" || (format == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
