// Package resolve flattens a cell hierarchy into world-space shapes.
//
// Resolution walks the instance tree depth-first from a chosen root,
// composing placement transforms along the way, and emits one
// ResolvedShape per polygon or path encountered. The output order is
// deterministic: elements of a structure in definition order, instances
// expanded in place. Broken references, cycles, and runaway nesting are
// terminal errors; a failed pass yields no shapes at all.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/model"
)

// DefaultMaxDepth bounds instantiation nesting when Options.MaxDepth is
// zero. Real designs rarely nest past a few dozen levels.
const DefaultMaxDepth = 64

// ShapeKind distinguishes filled boundaries from stroked paths.
type ShapeKind uint8

const (
	KindPolygon ShapeKind = iota
	KindPath
)

func (k ShapeKind) String() string {
	if k == KindPolygon {
		return "polygon"
	}
	return "path"
}

// ResolvedShape is one flattened shape in world coordinates.
type ResolvedShape struct {
	// ID is the stable index of the shape in resolution order. It doubles
	// as the scene-store entity key.
	ID int

	Kind  ShapeKind
	Layer layoutview.LayerKey

	// Points are world-space vertices in database units. For polygons
	// they trace the outline; for paths the centerline.
	Points []layoutview.Point

	// Width is the world-space stroke width. Zero for polygons. Placement
	// transforms here never scale, so the local width carries through.
	Width float64

	Cap model.CapStyle

	// Depth is the instantiation depth: 0 for shapes defined directly in
	// the root structure.
	Depth int

	// InstancePath names the structures traversed to reach this shape,
	// root first. Useful for diagnostics and selection display.
	InstancePath []string
}

// Bounds returns the world-space bounding box, including stroke width
// for paths.
func (s *ResolvedShape) Bounds() layoutview.Rect {
	b := layoutview.BoundsOf(s.Points)
	if s.Kind == KindPath && !b.IsEmpty() {
		b = b.Expand(s.Width / 2)
	}
	return b
}

// Options configures a resolution pass.
type Options struct {
	// MaxDepth limits instantiation nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Result is the output of a successful resolution pass.
type Result struct {
	Root   string
	Shapes []ResolvedShape

	// Bounds covers all shapes, in world database units.
	Bounds layoutview.Rect

	Units model.Units
}

// Resolver flattens structures of one library. It caches the last result
// and tracks a generation counter so a pass made stale by a newer request
// aborts early instead of completing useless work.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	lib *model.Library
	gen atomic.Uint64

	mu        sync.Mutex
	cacheKey  cacheKey
	cached    *Result
	haveCache bool
}

type cacheKey struct {
	root     string
	maxDepth int
}

// NewResolver creates a resolver over a library.
func NewResolver(lib *model.Library) *Resolver {
	return &Resolver{lib: lib}
}

// Invalidate drops the cached result.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.haveCache = false
	r.cached = nil
	r.mu.Unlock()
}

// Resolve flattens the hierarchy under the named root structure.
//
// Calling Resolve again before an earlier call returns supersedes it:
// the earlier call fails with ErrSuperseded at its next cancellation
// check. An unchanged root and depth limit return the cached result.
func (r *Resolver) Resolve(ctx context.Context, root string, opts Options) (*Result, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	key := cacheKey{root: root, maxDepth: maxDepth}

	r.mu.Lock()
	if r.haveCache && r.cacheKey == key {
		res := r.cached
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	if _, err := r.lib.Structure(root); err != nil {
		return nil, err
	}

	myGen := r.gen.Add(1)
	p := &pass{
		resolver: r,
		ctx:      ctx,
		gen:      myGen,
		maxDepth: maxDepth,
		onStack:  make(map[string]int),
	}

	if err := p.walk(root, layoutview.Identity(), 0); err != nil {
		return nil, err
	}

	bounds := layoutview.EmptyRect()
	for i := range p.shapes {
		bounds = bounds.Union(p.shapes[i].Bounds())
	}
	res := &Result{
		Root:   root,
		Shapes: p.shapes,
		Bounds: bounds,
		Units:  r.lib.Units,
	}

	layoutview.Logger().Debug("resolution complete",
		slog.String("root", root),
		slog.Int("shapes", len(res.Shapes)))

	r.mu.Lock()
	r.cacheKey = key
	r.cached = res
	r.haveCache = true
	r.mu.Unlock()
	return res, nil
}

// pass holds the mutable state of one resolution walk.
type pass struct {
	resolver *Resolver
	ctx      context.Context
	gen      uint64
	maxDepth int

	// onStack maps structure name to its position on the traversal stack,
	// for cycle detection and cycle path reconstruction.
	onStack map[string]int
	stack   []string

	shapes []ResolvedShape
}

// checkLive fails the pass if it was cancelled or superseded.
func (p *pass) checkLive() error {
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	if p.resolver.gen.Load() != p.gen {
		return ErrSuperseded
	}
	return nil
}

func (p *pass) walk(name string, world layoutview.Matrix, depth int) error {
	if depth > p.maxDepth {
		return &DepthExceededError{Structure: name, Limit: p.maxDepth}
	}
	if pos, ok := p.onStack[name]; ok {
		cycle := append([]string{}, p.stack[pos:]...)
		cycle = append(cycle, name)
		return &CyclicReferenceError{Cycle: cycle}
	}

	s, err := p.resolver.lib.Structure(name)
	if err != nil {
		return err
	}

	p.onStack[name] = len(p.stack)
	p.stack = append(p.stack, name)
	defer func() {
		p.stack = p.stack[:len(p.stack)-1]
		delete(p.onStack, name)
	}()

	path := append([]string{}, p.stack...)

	// Elements emit in declaration order: that order is draw order, and
	// an instance's contents land at its position in the sequence.
	for _, el := range s.Elements {
		if err := p.checkLive(); err != nil {
			return err
		}
		switch el := el.(type) {
		case model.Polygon:
			p.shapes = append(p.shapes, ResolvedShape{
				ID:           len(p.shapes),
				Kind:         KindPolygon,
				Layer:        el.Layer,
				Points:       transformVertices(world, el.Points),
				Depth:        depth,
				InstancePath: path,
			})
		case model.Path:
			p.shapes = append(p.shapes, ResolvedShape{
				ID:           len(p.shapes),
				Kind:         KindPath,
				Layer:        el.Layer,
				Points:       transformVertices(world, el.Points),
				Width:        float64(el.Width),
				Cap:          el.Cap,
				Depth:        depth,
				InstancePath: path,
			})
		case model.Instance:
			if !p.resolver.lib.Has(el.Structure) {
				return &DanglingReferenceError{From: name, Target: el.Structure}
			}
			child := world.Multiply(el.Transform())
			if err := p.walk(el.Structure, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func transformVertices(m layoutview.Matrix, vs []model.XY) []layoutview.Point {
	out := make([]layoutview.Point, len(vs))
	for i, v := range vs {
		out[i] = m.TransformPoint(v.Point())
	}
	return out
}
