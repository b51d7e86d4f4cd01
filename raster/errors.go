package raster

import "errors"

// Sentinel errors for the raster package.
var (
	// ErrNilBox is returned when Render is called without a box tree.
	ErrNilBox = errors.New("raster: nil box")

	// ErrInvalidScale is returned for a scale that is not positive.
	ErrInvalidScale = errors.New("raster: scale must be positive")

	// ErrInvalidPadding is returned for a negative padding.
	ErrInvalidPadding = errors.New("raster: padding must not be negative")

	// ErrUnknownTheme is returned by ParseTheme for a name it does not know.
	ErrUnknownTheme = errors.New("raster: unknown theme")

	// ErrCanvasTooLarge is returned when the image would exceed MaxDimension
	// pixels on a side.
	ErrCanvasTooLarge = errors.New("raster: canvas too large")
)
