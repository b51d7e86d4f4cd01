package math2img

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchTimeout is reported when a batch runs past its timeout or its
	// context deadline. Unfinished equations carry it as their error.
	ErrBatchTimeout = errors.New("math2img: batch timed out")

	// ErrClosed is returned when a closed Renderer is used.
	ErrClosed = errors.New("math2img: renderer closed")
)

// ConfigurationError reports an option value the renderer cannot work
// with. It is returned by New and Render before any equation is processed.
type ConfigurationError struct {
	Option string
	Value  any
	Reason string

	// Err is the underlying parse error, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("math2img: invalid %s %v: %s", e.Option, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Stage names the step an equation failed in.
type Stage string

const (
	StageParse  Stage = "parse"
	StageLayout Stage = "layout"
	StageRaster Stage = "raster"

	// StageInternal marks a panic recovered while rendering.
	StageInternal Stage = "internal"
)

// EquationError attaches a per-equation failure to its index. Err is the
// error of the stage, such as an *expr.ParseError or a *layout.LayoutError.
type EquationError struct {
	// Index is the 1-based position of the equation in the document, or 0
	// for equations rendered on their own.
	Index int
	Stage Stage
	Err   error
}

func (e *EquationError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("math2img: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("math2img: equation %d: %s: %v", e.Index, e.Stage, e.Err)
}

func (e *EquationError) Unwrap() error {
	return e.Err
}
