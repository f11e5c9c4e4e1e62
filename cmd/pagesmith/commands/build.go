package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/site"
	prom "github.com/prometheus/client_golang/prometheus"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Input       string `arg:"" optional:"" default:"." help:"Site root holding content/, templates/ and static/" type:"path"`
	Output      string `short:"o" help:"Output directory for the rendered site" default:"./public" type:"path"`
	Release     bool   `short:"r" help:"Release build: clear the debug flag and run the formatter"`
	KeepGoing   bool   `short:"k" name:"keep-going" help:"Render every page and report all content errors at the end"`
	FormatTool  string `name:"format" help:"Override format.tool (prettier|native|none)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the build" type:"path"`
	Quiet       bool   `short:"q" help:"Do not print the build summary"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, b.Input, root.Config)
	if err != nil {
		return err
	}
	if b.FormatTool != "" {
		cfg.Format.Tool = config.FormatTool(b.FormatTool)
		if err := config.Validate(cfg); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid --format").Fatal().Build()
		}
	}
	if b.MetricsFile != "" {
		cfg.Metrics.Textfile = b.MetricsFile
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if cfg.Metrics.Textfile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	builder, err := site.NewBuilder(cfg, site.WithLogger(g.Logger), site.WithRecorder(recorder))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, buildErr := builder.Build(ctx, site.Request{
		Input:     b.Input,
		Output:    b.Output,
		Release:   b.Release,
		KeepGoing: b.KeepGoing,
	})

	if registry != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			g.Logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}
	if !b.Quiet {
		_, _ = fmt.Fprintln(g.Stdout, renderSummary(report))
	}
	return nil
}

// loadConfig reads .env files, then the site configuration for input.
func loadConfig(g *Global, input, explicit string) (*config.Config, error) {
	loaded, err := config.LoadEnvFiles()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load .env files").Fatal().Build()
	}
	for _, f := range loaded {
		g.Logger.Debug("Loaded environment file", logfields.Path(f))
	}
	cfg, err := config.LoadForInput(input, explicit)
	if err != nil {
		eb := ferrors.WrapError(err, ferrors.CategoryConfig, "load configuration").Fatal()
		if explicit != "" {
			eb = eb.WithPath(explicit)
		}
		return nil, eb.Build()
	}
	if cfg.Source != "" {
		g.Logger.Debug("Loaded configuration", logfields.Path(cfg.Source))
	}
	return cfg, nil
}
