package format

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Native normalises every .html file with the x/net/html parser and renderer:
// tags are closed, attributes quoted and entities canonicalised. Full
// documents keep their structure; fragments are rendered without the
// html/head/body wrapper the parser would otherwise add.
type Native struct {
	Logger *slog.Logger
}

func (n *Native) Name() string { return "native" }

func (n *Native) Format(ctx context.Context, dir string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	changed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, err := Normalize(src)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if bytes.Equal(src, out) {
			return nil
		}
		changed++
		return os.WriteFile(path, out, 0o644) //nolint:gosec // published site content
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	logger.Debug("Normalised HTML", logfields.Formatter(n.Name()), logfields.Count(changed))
	return nil
}

// Normalize parses src and renders it back.
func Normalize(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if isDocument(src) {
		doc, err := html.Parse(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		if err := html.Render(&buf, doc); err != nil {
			return nil, err
		}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(bytes.NewReader(src), body)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			if err := html.Render(&buf, node); err != nil {
				return nil, err
			}
		}
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

func isDocument(src []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(src[:min(len(src), 512)])))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}
