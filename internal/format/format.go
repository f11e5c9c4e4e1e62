// Package format runs the post-build formatting pass over the output directory.
package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrBinaryNotFound  = errors.New("formatter binary not found")
	ErrExecutionFailed = errors.New("formatter execution failed")
)

// Formatter rewrites the files under an output directory in place.
type Formatter interface {
	Name() string
	Format(ctx context.Context, dir string) error
}

// ForTool returns the formatter for a configured tool name.
func ForTool(tool string, logger *slog.Logger) (Formatter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch tool {
	case "prettier", "":
		return &Prettier{Logger: logger}, nil
	case "native":
		return &Native{Logger: logger}, nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter %q", tool)
	}
}

// Noop leaves the output untouched.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Format(context.Context, string) error { return nil }
