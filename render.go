package math2img

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/extract"
	"github.com/gogpu/math2img/internal/parallel"
	"github.com/gogpu/math2img/layout"
	"github.com/gogpu/math2img/mathfont"
	"github.com/gogpu/math2img/raster"
)

// FileName returns the conventional file name of the equation at a
// 1-based index: equation_0001.png, equation_0002.png and so on.
func FileName(index int) string {
	return fmt.Sprintf("equation_%04d.png", index)
}

// Result is the outcome of one equation. Exactly one of PNG and Err is set.
type Result struct {
	// Index is 1-based in document order. Failed equations keep theirs.
	Index int
	Span  extract.Span
	PNG   []byte
	Err   error
}

// Batch holds the results of one document, ordered by index.
type Batch struct {
	Results []Result

	// Warnings lists the unterminated delimiters the extractor skipped.
	Warnings []extract.Warning

	// TimedOut is set when the batch ran out of time. Results that did
	// not finish carry ErrBatchTimeout.
	TimedOut bool
}

// Succeeded returns the number of equations that produced an image.
func (b *Batch) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the results that carry an error, in index order.
func (b *Batch) Failures() []Result {
	var out []Result
	for _, r := range b.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Renderer renders documents with a fixed set of options. It owns a
// worker pool; call Close when done.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	opts   options
	theme  raster.Theme
	font   *mathfont.Font
	pool   *parallel.WorkerPool
	closed atomic.Bool
}

// New validates the options and starts a renderer.
func New(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	theme, err := o.validate()
	if err != nil {
		return nil, err
	}
	font := o.font
	if font == nil {
		font = mathfont.Default()
	}
	return &Renderer{
		opts:  o,
		theme: theme,
		font:  font,
		pool:  parallel.NewWorkerPool(o.workers),
	}, nil
}

// Close stops the worker pool. Close is safe to call more than once.
func (r *Renderer) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.pool.Close()
	}
}

// Render is a convenience wrapper that renders one document with a
// renderer built for the call.
func Render(ctx context.Context, doc string, format extract.Format, opts ...Option) (*Batch, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Render(ctx, doc, format)
}

// RenderEquation renders a single equation source to PNG. Display mode
// lays it out in display style, inline mode in text style.
func (r *Renderer) RenderEquation(src string, mode extract.Mode) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.equation(context.Background(), src, mode)
}

// Render extracts the equations of doc and renders them on the worker
// pool. Equations fail independently; see Result. If the renderer's
// timeout or ctx's deadline passes first, Render returns the partial
// batch and an error matching ErrBatchTimeout. If ctx is canceled, it
// returns the partial batch and ctx's error.
func (r *Renderer) Render(ctx context.Context, doc string, format extract.Format) (*Batch, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	spans, warnings := extract.Extract(doc, format)
	for _, w := range warnings {
		Logger().Warn("math2img: unterminated delimiter",
			slog.Int("line", w.Line),
			slog.String("delimiter", w.Delimiter))
	}
	batch := &Batch{Warnings: warnings}
	if len(spans) == 0 {
		return batch, nil
	}

	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}

	// Buffered to the batch size so workers never block on a coordinator
	// that stopped waiting.
	done := make(chan Result, len(spans))
	submitted := 0
	for i, span := range spans {
		index := i + 1
		err := r.pool.Submit(ctx, func(ctx context.Context) {
			done <- r.process(ctx, index, span)
		})
		if errors.Is(err, parallel.ErrPoolClosed) {
			return nil, ErrClosed
		}
		if err != nil {
			break
		}
		submitted++
	}

	results := make([]Result, len(spans))
	finished := make([]bool, len(spans))
	received := 0
	record := func(res Result) {
		results[res.Index-1] = res
		finished[res.Index-1] = true
		received++
	}
collect:
	for received < submitted {
		select {
		case res := <-done:
			record(res)
		case <-ctx.Done():
			break collect
		}
	}
	// Take whatever finished alongside the deadline.
	for drained := false; !drained; {
		select {
		case res := <-done:
			record(res)
		default:
			drained = true
		}
	}

	var batchErr error
	if err := ctx.Err(); err != nil {
		batchErr = r.interrupt(batch, results, finished, spans, err)
	}
	batch.Results = results

	r.logBatch(batch, time.Since(start))
	return batch, batchErr
}

// interrupt replaces the results that did not finish before ctx ended.
// It returns nil if every equation had finished anyway.
func (r *Renderer) interrupt(batch *Batch, results []Result, finished []bool, spans []extract.Span, cause error) error {
	unfinished := ErrBatchTimeout
	if !errors.Is(cause, context.DeadlineExceeded) {
		unfinished = cause
	}
	n := 0
	for i := range results {
		// An equation that stopped between stages reports the context
		// error; it is as unfinished as one that never ran.
		if finished[i] && !interrupted(results[i].Err) {
			n++
			continue
		}
		results[i] = Result{Index: i + 1, Span: spans[i], Err: unfinished}
	}
	if n == len(results) {
		return nil
	}

	Logger().Warn("math2img: batch interrupted",
		slog.Int("finished", n),
		slog.Int("equations", len(results)),
		slog.String("reason", cause.Error()))
	if unfinished == ErrBatchTimeout {
		batch.TimedOut = true
		return fmt.Errorf("%w: %d of %d equations finished", ErrBatchTimeout, n, len(results))
	}
	return fmt.Errorf("math2img: batch canceled: %w", cause)
}

func interrupted(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// process renders one span. A panic in any stage becomes the equation's
// error instead of taking down the batch.
func (r *Renderer) process(ctx context.Context, index int, span extract.Span) (res Result) {
	res = Result{Index: index, Span: span}
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			res.PNG = nil
			res.Err = &EquationError{Index: index, Stage: StageInternal, Err: fmt.Errorf("panic: %v", v)}
		}
		if res.Err != nil && !interrupted(res.Err) {
			Logger().Warn("math2img: equation failed",
				slog.Int("index", index),
				slog.Int("line", span.Line),
				slog.String("error", res.Err.Error()))
		}
	}()

	png, err := r.equation(ctx, span.Text, span.Mode)
	if err != nil {
		var eqErr *EquationError
		if errors.As(err, &eqErr) {
			eqErr.Index = index
		}
		res.Err = err
		return res
	}
	res.PNG = png
	Logger().Debug("math2img: equation rendered",
		slog.Int("index", index),
		slog.Int("bytes", len(png)),
		slog.Duration("elapsed", time.Since(start)))
	return res
}

// equation runs the parse, layout and raster stages, checking ctx between
// them.
func (r *Renderer) equation(ctx context.Context, src string, mode extract.Mode) ([]byte, error) {
	tree, err := expr.Parse(src)
	if err != nil {
		return nil, &EquationError{Stage: StageParse, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	style := expr.StyleText
	if mode == extract.Display {
		style = expr.StyleDisplay
	}
	box, err := layout.Layout(tree, layout.Options{Font: r.font, Size: r.opts.fontSize, Style: style})
	if err != nil {
		return nil, &EquationError{Stage: StageLayout, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	png, err := raster.RenderPNG(box, r.font, raster.Options{
		Scale:   r.opts.scale,
		Theme:   r.theme,
		Padding: r.opts.padding,
	})
	if err != nil {
		return nil, &EquationError{Stage: StageRaster, Err: err}
	}
	return png, nil
}

func (r *Renderer) logBatch(b *Batch, elapsed time.Duration) {
	l := Logger()
	l.Info("math2img: batch rendered",
		slog.Int("equations", len(b.Results)),
		slog.Int("succeeded", b.Succeeded()),
		slog.Int("warnings", len(b.Warnings)),
		slog.Duration("elapsed", elapsed))

	metrics, outlines := r.font.CacheStats()
	l.Debug("math2img: glyph caches",
		slog.Int("metrics", metrics.Len),
		slog.Float64("metrics_hit_rate", metrics.HitRate),
		slog.Int("outlines", outlines.Len),
		slog.Float64("outlines_hit_rate", outlines.HitRate))
}
