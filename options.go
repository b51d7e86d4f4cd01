package math2img

import (
	"math"
	"time"

	"github.com/gogpu/math2img/mathfont"
	"github.com/gogpu/math2img/raster"
)

// Defaults for the options.
const (
	DefaultTheme    = "dark"
	DefaultFontSize = 24
	DefaultScale    = 3.0
)

// Option configures a Renderer.
//
// Example:
//
//	r, err := math2img.New(
//	    math2img.WithTheme("light"),
//	    math2img.WithFontSize(32),
//	    math2img.WithTimeout(10*time.Second),
//	)
type Option func(*options)

type options struct {
	theme    string
	fontSize float64
	scale    float64
	padding  float64
	workers  int
	timeout  time.Duration
	font     *mathfont.Font
}

func defaultOptions() options {
	return options{
		theme:    DefaultTheme,
		fontSize: DefaultFontSize,
		scale:    DefaultScale,
		padding:  raster.DefaultPadding,
	}
}

// WithTheme selects the color theme, "dark" or "light".
func WithTheme(name string) Option {
	return func(o *options) {
		o.theme = name
	}
}

// WithFontSize sets the em size in pixels at scale 1.
func WithFontSize(px float64) Option {
	return func(o *options) {
		o.fontSize = px
	}
}

// WithScale sets the factor the layout is multiplied by when painting.
// A scale of 3 at font size 24 draws glyphs at 72 pixels per em.
func WithScale(s float64) Option {
	return func(o *options) {
		o.scale = s
	}
}

// WithPadding sets the margin around each equation in pixels at scale 1.
func WithPadding(px float64) Option {
	return func(o *options) {
		o.padding = px
	}
}

// WithWorkers sets the number of equations rendered at once. Zero means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithTimeout bounds each call to Render. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithFont replaces the embedded Latin Modern Math font. The font must
// carry a MATH table; see mathfont.Load.
func WithFont(f *mathfont.Font) Option {
	return func(o *options) {
		o.font = f
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// validate checks the options and resolves the theme.
func (o *options) validate() (raster.Theme, error) {
	theme, err := raster.ParseTheme(o.theme)
	if err != nil {
		return 0, &ConfigurationError{Option: "theme", Value: o.theme, Reason: "must be dark or light", Err: err}
	}
	switch {
	case !positive(o.fontSize):
		return 0, &ConfigurationError{Option: "font size", Value: o.fontSize, Reason: "must be positive"}
	case !positive(o.scale):
		return 0, &ConfigurationError{Option: "scale", Value: o.scale, Reason: "must be positive"}
	case o.padding < 0 || math.IsNaN(o.padding) || math.IsInf(o.padding, 0):
		return 0, &ConfigurationError{Option: "padding", Value: o.padding, Reason: "must not be negative"}
	case o.workers < 0:
		return 0, &ConfigurationError{Option: "workers", Value: o.workers, Reason: "must not be negative"}
	case o.timeout < 0:
		return 0, &ConfigurationError{Option: "timeout", Value: o.timeout, Reason: "must not be negative"}
	}
	return theme, nil
}
