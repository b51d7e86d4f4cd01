// Package math2img renders the equations of a LaTeX or Markdown document
// to PNG images, one image per equation.
//
// # Overview
//
// A document goes through four stages. The extract package finds the
// equations and returns them as spans in document order. The expr package
// parses each span into an expression tree, the layout package turns the
// tree into positioned boxes using the OpenType MATH table of the font,
// and the raster package paints the boxes and encodes a PNG.
//
// Equations are independent, so a Renderer runs them on a worker pool and
// puts the results back in document order.
//
// # Quick Start
//
//	batch, err := math2img.Render(ctx, doc, extract.Markdown,
//	    math2img.WithTheme("light"),
//	    math2img.WithScale(2),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, res := range batch.Results {
//	    if res.Err != nil {
//	        log.Printf("equation %d: %v", res.Index, res.Err)
//	        continue
//	    }
//	    os.WriteFile(math2img.FileName(res.Index), res.PNG, 0o644)
//	}
//
// # Failures
//
// Only configuration errors stop a batch. An equation that fails to parse
// or lay out keeps its index and carries an *EquationError; the other
// equations render normally. When the batch runs out of time the results
// finished so far are returned together with an error matching
// ErrBatchTimeout.
//
// # Logging
//
// The package is silent by default. SetLogger installs a *slog.Logger that
// is shared with the layout and raster packages.
package math2img
