package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run parses args like main does and runs the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var stdout, stderr bytes.Buffer
	g := &Global{Stdout: &stdout, Stderr: &stderr}

	parser, err := kong.New(&cli,
		kong.Name("pagesmith"),
		kong.Bind(g),
		kong.Exit(func(int) { t.Fatalf("unexpected exit: %s", stderr.String()) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run(&cli)
	return stdout.String(), err
}

func TestInitThenBuild(t *testing.T) {
	t.Setenv("PAGESMITH_FORMAT_TOOL", "none")
	dir := filepath.Join(t.TempDir(), "site")
	out := filepath.Join(t.TempDir(), "public")

	stdout, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized site")
	assert.FileExists(t, filepath.Join(dir, "site.yaml"))

	stdout, err = run(t, "build", dir, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "templated")

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<h1 id="welcome">Welcome</h1>`)
	assert.Contains(t, string(html), "<title>Welcome</title>")
	assert.Contains(t, string(html), "debug build")
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "init", dir)
	require.NoError(t, err)

	_, err = run(t, "init", dir)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	_, err = run(t, "init", dir, "--force")
	require.NoError(t, err)
}

func TestBuild_WritesMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "index.md"), []byte("# Hi\n"), 0o600))
	metricsFile := filepath.Join(t.TempDir(), "pagesmith.prom")

	_, err := run(t, "build", dir, "-o", filepath.Join(t.TempDir(), "out"),
		"--format", "none", "--metrics-file", metricsFile, "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pagesmith_pages_total{kind="untemplated"} 1`)
}

func TestBuild_InvalidFormatOverride(t *testing.T) {
	_, err := run(t, "build", t.TempDir(), "-o", filepath.Join(t.TempDir(), "out"), "--format", "tidy")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "init", dir)
	require.NoError(t, err)

	stdout, err := run(t, "plan", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "content/index.md")
	assert.Contains(t, stdout, "render_markup > apply_template")
	assert.Contains(t, stdout, "page.html")
}

func TestVersionCommand(t *testing.T) {
	stdout, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pagesmith ")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		verbose bool
		env     string
		want    slog.Level
		wantErr bool
	}{
		{false, "", slog.LevelInfo, false},
		{true, "error", slog.LevelDebug, false},
		{false, "WARN", slog.LevelWarn, false},
		{false, "debug", slog.LevelDebug, false},
		{false, "loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.verbose, tt.env)
		if tt.wantErr {
			assert.Error(t, err, tt.env)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.env)
	}
}

func TestNewLogger_FormatSelection(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "auto", slog.LevelInfo).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`, "non-terminal writers get JSON")

	buf.Reset()
	newLogger(&buf, "text", slog.LevelInfo).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
