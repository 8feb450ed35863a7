// Package vector exports built layout geometry as SVG.
//
// The exporter streams: one element goes to the writer per primitive, so
// a multi-gigabyte layout exports in constant memory. A single transform
// on the root group maps database units to user units and flips the y
// axis, so element coordinates are written exactly as resolved.
package vector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/geometry"
	"github.com/javagg/layoutview/model"
)

var (
	// ErrNilWriter reports an exporter constructed without a destination.
	ErrNilWriter = errors.New("vector: nil writer")

	// ErrNotStarted reports a primitive written before Begin.
	ErrNotStarted = errors.New("vector: document not started")
)

// SVGExporter writes one SVG document element by element.
//
// Usage: Begin, any number of WritePrimitive calls in draw order, End.
// SVGExporter is not safe for concurrent use.
type SVGExporter struct {
	w      *bufio.Writer
	styles *layoutview.StyleTable

	started bool
	written int
	skipped int
}

// NewSVGExporter creates an exporter over a writer and style table.
func NewSVGExporter(w io.Writer, styles *layoutview.StyleTable) (*SVGExporter, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	if styles == nil {
		styles = layoutview.NewStyleTable()
	}
	return &SVGExporter{w: bufio.NewWriter(w), styles: styles}, nil
}

// Begin writes the document header. The bounds are the world extent in
// database units; units scale them to user units for the page size.
func (e *SVGExporter) Begin(bounds layoutview.Rect, units model.Units) error {
	scale := 1.0
	if units.DBUPerUU > 0 {
		scale = 1 / units.DBUPerUU
	}
	w := bounds.Width() * scale
	h := bounds.Height() * scale

	_, err := fmt.Fprintf(e.w,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g">`+"\n",
		w, h, w, h)
	if err != nil {
		return fmt.Errorf("vector: writing header: %w", err)
	}

	// One global transform: scale to user units and flip y so world +y
	// is up on the page. Elements then stream raw world coordinates.
	_, err = fmt.Fprintf(e.w,
		`<g transform="translate(%g %g) scale(%g %g)">`+"\n",
		-bounds.MinX*scale, bounds.MaxY*scale, scale, -scale)
	if err != nil {
		return fmt.Errorf("vector: writing transform: %w", err)
	}

	e.started = true
	return nil
}

// WritePrimitive streams one primitive as a polygon element. Primitives
// on hidden layers are skipped.
func (e *SVGExporter) WritePrimitive(p *geometry.Primitive) error {
	if !e.started {
		return ErrNotStarted
	}
	style := e.styles.Get(p.Layer)
	if !style.Visible {
		e.skipped++
		return nil
	}

	if _, err := fmt.Fprint(e.w, `<polygon points="`); err != nil {
		return fmt.Errorf("vector: writing primitive: %w", err)
	}
	for i, pt := range p.Outline {
		if i > 0 {
			if err := e.w.WriteByte(' '); err != nil {
				return fmt.Errorf("vector: writing primitive: %w", err)
			}
		}
		if _, err := fmt.Fprintf(e.w, "%g,%g", pt.X, pt.Y); err != nil {
			return fmt.Errorf("vector: writing primitive: %w", err)
		}
	}
	_, err := fmt.Fprintf(e.w, `" fill="%s" fill-opacity="%g"/>`+"\n",
		style.Hex(), style.Opacity)
	if err != nil {
		return fmt.Errorf("vector: writing primitive: %w", err)
	}
	e.written++
	return nil
}

// End closes the document and flushes the writer.
func (e *SVGExporter) End() error {
	if !e.started {
		return ErrNotStarted
	}
	if _, err := fmt.Fprint(e.w, "</g>\n</svg>\n"); err != nil {
		return fmt.Errorf("vector: writing footer: %w", err)
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("vector: flushing: %w", err)
	}
	e.started = false

	layoutview.Logger().Debug("svg export finished",
		slog.Int("written", e.written),
		slog.Int("skipped", e.skipped))
	return nil
}

// Export streams all primitives to w in draw order.
func Export(w io.Writer, prims []geometry.Primitive, bounds layoutview.Rect, units model.Units, styles *layoutview.StyleTable) error {
	e, err := NewSVGExporter(w, styles)
	if err != nil {
		return err
	}
	if err := e.Begin(bounds, units); err != nil {
		return err
	}
	for i := range prims {
		if err := e.WritePrimitive(&prims[i]); err != nil {
			return err
		}
	}
	return e.End()
}
