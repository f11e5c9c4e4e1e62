package format

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// DefaultPrettierBinary is looked up on PATH when Prettier.Binary is empty.
const DefaultPrettierBinary = "prettier"

// Prettier invokes the prettier binary over the whole output directory.
type Prettier struct {
	Binary string
	Logger *slog.Logger
}

func (p *Prettier) Name() string { return "prettier" }

func (p *Prettier) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return DefaultPrettierBinary
}

func (p *Prettier) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Prettier) Format(ctx context.Context, dir string) error {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBinaryNotFound, err)
	}

	cmd := exec.CommandContext(ctx, bin, "--write", "--no-config", "--ignore-path", "", dir)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	p.logger().Debug("Running formatter", logfields.Formatter(p.Name()), logfields.Path(dir))

	err = cmd.Run()

	outStr := stdout.String()
	errStr := stderr.String()
	if outStr != "" {
		p.logger().Debug("prettier stdout", "output", outStr)
	}
	if errStr != "" {
		p.logger().Warn("prettier stderr", "error_output", errStr)
	}

	if err != nil {
		// prettier reports problems on either stream
		output := errStr
		if output == "" {
			output = outStr
		} else if outStr != "" {
			output = outStr + "\n" + errStr
		}
		if output != "" {
			return fmt.Errorf("%w: %w: %s", ErrExecutionFailed, err, output)
		}
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	return nil
}
