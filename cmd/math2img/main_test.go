package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/gogpu/math2img"
)

const sampleTeX = `Euler: $e^{i\pi} + 1 = 0$.

$$\int_0^1 x\,dx = \frac{1}{2}$$

\begin{align}
a &= b
\end{align}
`

type run struct {
	stdout, stderr bytes.Buffer
	err            error
}

// runCLI executes the command line with the given stdin.
func runCLI(t *testing.T, stdin string, args ...string) *run {
	t.Helper()
	t.Cleanup(func() { math2img.SetLogger(nil) })
	r := &run{}
	a := &app{stdin: strings.NewReader(stdin), stdout: &r.stdout, stderr: &r.stderr}
	cmd := a.cmdRoot()
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	r.err = cmd.ExecuteContext(context.Background())
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decode %s: %v", path, err)
	}
}

// =============================================================================
// Rendering
// =============================================================================

func TestRenderWritesFiles(t *testing.T) {
	input := writeFile(t, "paper.tex", sampleTeX)
	out := filepath.Join(t.TempDir(), "out")

	r := runCLI(t, "", input, "-o", out, "--scale", "1")
	if r.err != nil {
		t.Fatalf("run error = %v, stderr %s", r.err, r.stderr.String())
	}
	for i := 1; i <= 3; i++ {
		path := filepath.Join(out, math2img.FileName(i))
		decodePNG(t, path)
		if !strings.Contains(r.stdout.String(), path) {
			t.Errorf("stdout does not list %s", path)
		}
	}
	if !strings.Contains(r.stdout.String(), "rendered 3 of 3 equations") {
		t.Errorf("stdout = %q, want a summary", r.stdout.String())
	}
}

func TestRenderStdinMarkdown(t *testing.T) {
	out := t.TempDir()
	doc := "Math $x^2$.\n\n```\n$y$\n```\n"
	r := runCLI(t, doc, "-", "--format", "markdown", "-o", out, "--scale", "1")
	if r.err != nil {
		t.Fatalf("run error = %v", r.err)
	}
	decodePNG(t, filepath.Join(out, math2img.FileName(1)))
	if _, err := os.Stat(filepath.Join(out, math2img.FileName(2))); !os.IsNotExist(err) {
		t.Error("the code block was rendered")
	}
}

func TestRenderFormatFromExtension(t *testing.T) {
	out := t.TempDir()
	input := writeFile(t, "notes.md", "Code `$a$` and math $b$.\n")
	r := runCLI(t, "", input, "-o", out, "--scale", "1")
	if r.err != nil {
		t.Fatalf("run error = %v", r.err)
	}
	if !strings.Contains(r.stdout.String(), "rendered 1 of 1 equation ") {
		t.Errorf("stdout = %q, want one equation", r.stdout.String())
	}
}

func TestRenderReportsFailures(t *testing.T) {
	out := t.TempDir()
	r := runCLI(t, `Good $a$, bad $\frac{a}$.`, "-", "-o", out, "--scale", "1")
	if r.err == nil || !strings.Contains(r.err.Error(), "1 of 2 equations failed") {
		t.Fatalf("run error = %v, want one failure", r.err)
	}
	if !strings.Contains(r.stderr.String(), "equation 2 (line 1)") {
		t.Errorf("stderr = %q, want the failed index", r.stderr.String())
	}
	decodePNG(t, filepath.Join(out, math2img.FileName(1)))
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		check func(error) bool
	}{
		{"no equations", "plain text", []string{"-"}, func(err error) bool { return errors.Is(err, errNoEquations) }},
		{"bad theme", "$x$", []string{"-", "--theme", "sepia"}, func(err error) bool {
			var ce *math2img.ConfigurationError
			return errors.As(err, &ce) && ce.Option == "theme"
		}},
		{"bad format", "$x$", []string{"-", "--format", "rst"}, func(err error) bool { return err != nil }},
		{"missing input", "", []string{filepath.Join(t.TempDir(), "missing.tex")}, func(err error) bool { return errors.Is(err, os.ErrNotExist) }},
		{"no arguments", "", nil, func(err error) bool { return err != nil }},
		{"bad log level", "$x$", []string{"-", "--log-level", "loud"}, func(err error) bool { return err != nil }},
		{"missing font", "$x$", []string{"-", "--font", filepath.Join(t.TempDir(), "none.otf")}, func(err error) bool { return errors.Is(err, os.ErrNotExist) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-o", t.TempDir())
			if tt.args == nil {
				args = nil
			}
			r := runCLI(t, tt.stdin, args...)
			if !tt.check(r.err) {
				t.Errorf("run error = %v", r.err)
			}
		})
	}
}

// =============================================================================
// Environment
// =============================================================================

func TestApplyEnv(t *testing.T) {
	t.Setenv("MATH2IMG_THEME", "light")
	t.Setenv("MATH2IMG_SCALE", "2")
	t.Setenv("MATH2IMG_WORKERS", "")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("theme", "dark", "")
	flags.Float64("scale", 3, "")
	flags.Int("workers", 4, "")
	if err := flags.Parse([]string{"--scale", "5"}); err != nil {
		t.Fatal(err)
	}
	if err := applyEnv(flags); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if theme, _ := flags.GetString("theme"); theme != "light" {
		t.Errorf("theme = %q, want light from the environment", theme)
	}
	if scale, _ := flags.GetFloat64("scale"); scale != 5 {
		t.Errorf("scale = %v, want the flag to win", scale)
	}
	if workers, _ := flags.GetInt("workers"); workers != 4 {
		t.Errorf("workers = %d, want the default for an empty variable", workers)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("MATH2IMG_FONT_SIZE", "big")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("font-size", 24, "")
	err := applyEnv(flags)
	if err == nil || !strings.Contains(err.Error(), "MATH2IMG_FONT_SIZE") {
		t.Errorf("applyEnv() error = %v, want it to name the variable", err)
	}
}

func TestEnvThemeReachesRenderer(t *testing.T) {
	t.Setenv("MATH2IMG_THEME", "sepia")
	r := runCLI(t, "$x$", "-", "-o", t.TempDir())
	var ce *math2img.ConfigurationError
	if !errors.As(r.err, &ce) {
		t.Errorf("run error = %v, want a ConfigurationError", r.err)
	}
}

// =============================================================================
// Serve
// =============================================================================

func TestServe(t *testing.T) {
	t.Cleanup(func() { math2img.SetLogger(nil) })
	a := &app{stdin: strings.NewReader(""), stdout: io.Discard, stderr: io.Discard}
	cmd, _, err := a.cmdRoot().Find([]string{"serve"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags([]string{"--scale", "1"}); err != nil {
		t.Fatal(err)
	}
	if err := a.setupLogging(cmd, slog.LevelInfo); err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, cmd, ln, time.Second) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/v1/equation", "text/plain", strings.NewReader(`\sqrt{2}`))
	if err != nil {
		cancel()
		t.Fatalf("POST /v1/equation: %v", err)
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("response is not a PNG: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want clean shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}
