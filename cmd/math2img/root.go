package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/math2img"
	"github.com/gogpu/math2img/extract"
	"github.com/gogpu/math2img/mathfont"
)

var errNoEquations = errors.New("no equations found")

// envFlags lists the flags that fall back to an environment variable when
// not given on the command line.
var envFlags = []struct {
	flag, env string
}{
	{"theme", "MATH2IMG_THEME"},
	{"font-size", "MATH2IMG_FONT_SIZE"},
	{"scale", "MATH2IMG_SCALE"},
	{"workers", "MATH2IMG_WORKERS"},
	{"timeout", "MATH2IMG_TIMEOUT"},
	{"font", "MATH2IMG_FONT"},
	{"log-level", "MATH2IMG_LOG_LEVEL"},
	{"addr", "MATH2IMG_ADDR"},
}

// app carries the streams of one invocation.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	log            *slog.Logger
}

func execute(args []string) error {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	cmd := a.cmdRoot()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func (a *app) cmdRoot() *cobra.Command {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().String("theme", math2img.DefaultTheme, "color theme: dark or light")
		cmd.PersistentFlags().Float64("font-size", math2img.DefaultFontSize, "em size in pixels at scale 1")
		cmd.PersistentFlags().Float64("scale", math2img.DefaultScale, "output resolution multiplier")
		cmd.PersistentFlags().Int("workers", 0, "equations rendered at once (0 means one per CPU)")
		cmd.PersistentFlags().Duration("timeout", 0, "time limit for a whole document (0 means none)")
		cmd.PersistentFlags().String("font", "", "OpenType math font to use instead of Latin Modern Math")
		cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
		cmd.PersistentFlags().Bool("verbose", false, "log batch summaries")
		cmd.PersistentFlags().Bool("debug", false, "log per-equation timings")

		cmd.Flags().StringP("output", "o", ".", "directory for the PNG files")
		cmd.Flags().String("format", "", "input format: latex or markdown (default from the file extension)")
		return nil
	}

	cmd := &cobra.Command{
		Use:   "math2img <input>",
		Short: "Render LaTeX and Markdown equations to PNG",
		Long: `Render every equation of a LaTeX or Markdown document to its own PNG
file, numbered equation_0001.png, equation_0002.png and so on in document
order. Use - as input to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags()); err != nil {
				return err
			}
			return a.setupLogging(cmd, slog.LevelWarn)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd, args[0])
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	if err := addFlags(cmd); err != nil {
		panic(err)
	}

	cmd.AddCommand(a.cmdServe())
	return cmd
}

// applyEnv fills unset flags from their environment variables.
func applyEnv(flags *pflag.FlagSet) error {
	for _, ef := range envFlags {
		if flags.Lookup(ef.flag) == nil || flags.Changed(ef.flag) {
			continue
		}
		v, ok := os.LookupEnv(ef.env)
		if !ok || v == "" {
			continue
		}
		if err := flags.Set(ef.flag, v); err != nil {
			return fmt.Errorf("%s: %w", ef.env, err)
		}
	}
	return nil
}

// setupLogging installs a text logger on stderr. The level comes from
// --log-level, then --debug and --verbose, then def.
func (a *app) setupLogging(cmd *cobra.Command, def slog.Level) error {
	level := def
	name, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case name != "":
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("invalid log level %q", name)
		}
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	math2img.SetLogger(a.log)
	return nil
}

// rendererOptions maps the persistent flags to renderer options.
func rendererOptions(cmd *cobra.Command) ([]math2img.Option, error) {
	flags := cmd.Flags()
	theme, _ := flags.GetString("theme")
	fontSize, _ := flags.GetFloat64("font-size")
	scale, _ := flags.GetFloat64("scale")
	workers, _ := flags.GetInt("workers")
	timeout, _ := flags.GetDuration("timeout")
	opts := []math2img.Option{
		math2img.WithTheme(theme),
		math2img.WithFontSize(fontSize),
		math2img.WithScale(scale),
		math2img.WithWorkers(workers),
		math2img.WithTimeout(timeout),
	}

	if path, _ := flags.GetString("font"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		font, err := mathfont.Load(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, math2img.WithFont(font))
	}
	return opts, nil
}

func (a *app) readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(a.stdin)
		return string(data), err
	}
	data, err := os.ReadFile(input)
	return string(data), err
}

func (a *app) render(cmd *cobra.Command, input string) error {
	format := extract.FormatForPath(input)
	if name, _ := cmd.Flags().GetString("format"); name != "" {
		f, err := extract.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}
	output, _ := cmd.Flags().GetString("output")

	opts, err := rendererOptions(cmd)
	if err != nil {
		return err
	}
	doc, err := a.readInput(input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, err := math2img.Render(ctx, doc, format, opts...)
	if batch == nil {
		return err
	}
	for _, w := range batch.Warnings {
		fmt.Fprintf(a.stderr, "warning: %s\n", w)
	}
	if len(batch.Results) == 0 {
		return errNoEquations
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	for _, res := range batch.Results {
		if res.Err != nil {
			fmt.Fprintf(a.stderr, "equation %d (line %d): %v\n", res.Index, res.Span.Line, res.Err)
			continue
		}
		path := filepath.Join(output, math2img.FileName(res.Index))
		if err := os.WriteFile(path, res.PNG, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, path)
	}

	n, total := batch.Succeeded(), len(batch.Results)
	fmt.Fprintf(a.stdout, "rendered %d of %d %s to %s\n", n, total, plural(total, "equation"), output)
	if err != nil {
		return err
	}
	if n < total {
		return fmt.Errorf("%d of %d %s failed", total-n, total, plural(total, "equation"))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
