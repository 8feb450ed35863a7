// Package geometry turns resolved world-space shapes into triangle meshes
// ready for upload or export.
//
// Polygons are triangulated by ear clipping; paths are first expanded to a
// closed stroke outline and then triangulated the same way. Degenerate
// elements are skipped and reported as warnings, never as errors: one bad
// shape in a million-shape layout must not blank the screen.
package geometry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/internal/parallel"
	"github.com/javagg/layoutview/resolve"
)

// Primitive is one triangulated shape.
type Primitive struct {
	// Index is the shape's stable resolution index. Primitives keep
	// resolution order so later shapes draw over earlier ones.
	Index int

	Layer  layoutview.LayerKey
	Bounds layoutview.Rect

	// Vertices are world-space positions referenced by Indices.
	Vertices []layoutview.Point

	// Indices are triangle vertex indices, three per triangle.
	Indices []uint32

	// Outline is the closed boundary of the filled region: the polygon
	// itself, or the expanded stroke of a path. Vector export draws it
	// directly.
	Outline []layoutview.Point
}

// Warning records a shape that was skipped during the build.
type Warning struct {
	// ShapeID is the resolution index of the skipped shape.
	ShapeID int
	Kind    resolve.ShapeKind
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("shape %d (%s): %s", w.ShapeID, w.Kind, w.Reason)
}

// Builder triangulates resolved shapes, in parallel across a worker pool.
//
// Builder is safe for concurrent use; each Build call keeps its own
// output buffers.
type Builder struct {
	pool *parallel.WorkerPool
	own  bool
}

// NewBuilder creates a builder with its own worker pool sized to the
// machine. Close releases it.
func NewBuilder() *Builder {
	return &Builder{pool: parallel.NewWorkerPool(0), own: true}
}

// NewBuilderWithPool creates a builder over a shared pool. Close leaves
// the pool running.
func NewBuilderWithPool(pool *parallel.WorkerPool) *Builder {
	return &Builder{pool: pool}
}

// Close releases the builder's own worker pool, if any.
func (b *Builder) Close() {
	if b.own {
		b.pool.Close()
	}
}

// Build triangulates all shapes. Output keeps resolution order regardless
// of which worker finished first. Degenerate shapes produce warnings and
// are left out of the primitive list; the only error is cancellation.
func (b *Builder) Build(ctx context.Context, shapes []resolve.ResolvedShape) ([]Primitive, []Warning, error) {
	// Per-shape output slots are disjoint, so workers need no locking,
	// and reassembling by slot preserves resolution order.
	prims := make([]*Primitive, len(shapes))
	warns := make([]*Warning, len(shapes))

	work := make([]func(), len(shapes))
	for i := range shapes {
		idx := i
		shape := &shapes[i]
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			prim, err := buildOne(shape)
			if err != nil {
				warns[idx] = &Warning{ShapeID: shape.ID, Kind: shape.Kind, Reason: err.Error()}
				return
			}
			prims[idx] = prim
		}
	}
	b.pool.ExecuteAll(work)

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("geometry: %w", err)
	}

	out := make([]Primitive, 0, len(shapes))
	warnings := make([]Warning, 0)
	for i := range shapes {
		if prims[i] != nil {
			out = append(out, *prims[i])
		}
		if warns[i] != nil {
			warnings = append(warnings, *warns[i])
		}
	}

	if len(warnings) > 0 {
		layoutview.Logger().Warn("degenerate shapes skipped",
			slog.Int("count", len(warnings)))
	}
	return out, warnings, nil
}

// buildOne triangulates a single shape.
func buildOne(shape *resolve.ResolvedShape) (*Primitive, error) {
	var outline []layoutview.Point
	switch shape.Kind {
	case resolve.KindPolygon:
		outline = shape.Points
	case resolve.KindPath:
		var err error
		outline, err = strokeOutline(shape.Points, shape.Width, shape.Cap)
		if err != nil {
			return nil, err
		}
	}

	// Indices reference the cleaned outline, so clean before triangulating.
	outline = dropRepeatedClose(outline)
	indices, err := triangulate(outline)
	if err != nil {
		return nil, err
	}
	return &Primitive{
		Index:    shape.ID,
		Layer:    shape.Layer,
		Bounds:   layoutview.BoundsOf(outline),
		Vertices: outline,
		Indices:  indices,
		Outline:  outline,
	}, nil
}

// BuildOne triangulates a single shape outside the pool. Exposed for
// incremental callers and tests.
func BuildOne(shape *resolve.ResolvedShape) (*Primitive, error) {
	return buildOne(shape)
}
