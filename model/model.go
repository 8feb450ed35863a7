// Package model holds the in-memory cell hierarchy of a layout: a library
// of named structures whose elements are polygons, paths, and references to
// other structures.
//
// Coordinates are stored as int32 database units exactly as a layout file
// supplies them. Conversion to user units happens downstream, never here,
// so round trips through the model are lossless.
package model

import (
	"github.com/javagg/layoutview"
)

// Coord is a coordinate in database units.
type Coord = int32

// XY is a vertex in database units.
type XY struct {
	X, Y Coord
}

// Point converts the vertex to floating-point world coordinates.
func (v XY) Point() layoutview.Point {
	return layoutview.Pt(float64(v.X), float64(v.Y))
}

// CapStyle selects the end-cap geometry of a path.
type CapStyle uint8

const (
	// CapFlush ends the path exactly at its endpoints.
	CapFlush CapStyle = iota
	// CapRound extends the path with a semicircle of half the width.
	CapRound
	// CapSquare extends the path by half the width with a square end.
	CapSquare
)

func (c CapStyle) String() string {
	switch c {
	case CapFlush:
		return "flush"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	}
	return "unknown"
}

// Units records the measurement scale of a library.
type Units struct {
	// DBUPerUU is the number of database units per user unit.
	// Typically 1000 (1 user unit = 1 micron, 1 dbu = 1 nanometer).
	DBUPerUU float64

	// MetersPerDBU is the physical size of one database unit in meters.
	MetersPerDBU float64
}

// DefaultUnits matches the most common layout convention.
var DefaultUnits = Units{DBUPerUU: 1000, MetersPerDBU: 1e-9}

// Polygon is a closed filled boundary. Points describe the outline without
// a repeated closing vertex.
type Polygon struct {
	Layer  layoutview.LayerKey
	Points []XY
}

// Path is an open polyline rendered with a stroke width and end caps.
type Path struct {
	Layer layoutview.LayerKey

	Points []XY

	// Width is the full stroke width in database units.
	Width Coord

	Cap CapStyle
}

// Instance places another structure, by name, under a transformation.
// The placement applies reflection first, then rotation, then translation.
type Instance struct {
	// Structure is the name of the referenced structure. References are
	// by name so structures can be defined in any order; the resolver
	// reports an error if the name never appears.
	Structure string

	// X, Y is the placement origin in parent database units.
	X, Y Coord

	// RotationDegrees is counter-clockwise rotation about the origin.
	RotationDegrees float64

	// Reflect mirrors about the x axis before rotating.
	Reflect bool
}

// Transform returns the placement as a matrix over database-unit space.
func (in *Instance) Transform() layoutview.Matrix {
	m := layoutview.Translate(float64(in.X), float64(in.Y))
	if in.RotationDegrees != 0 {
		m = m.Multiply(layoutview.RotateDegrees(in.RotationDegrees))
	}
	if in.Reflect {
		m = m.Multiply(layoutview.ReflectX())
	}
	return m
}

// Element is one declared item of a structure: a Polygon, Path, or
// Instance. Declaration order is draw order; later elements overlay
// earlier ones, and an instance's contents draw at its position in the
// sequence.
type Element interface {
	element()
}

func (Polygon) element()  {}
func (Path) element()     {}
func (Instance) element() {}

// Structure is a named cell: a reusable ordered sequence of shapes and
// placements.
type Structure struct {
	Name string

	Elements []Element
}

// Polygons returns the structure's polygons in declaration order.
func (s *Structure) Polygons() []Polygon {
	var out []Polygon
	for _, el := range s.Elements {
		if p, ok := el.(Polygon); ok {
			out = append(out, p)
		}
	}
	return out
}

// Paths returns the structure's paths in declaration order.
func (s *Structure) Paths() []Path {
	var out []Path
	for _, el := range s.Elements {
		if p, ok := el.(Path); ok {
			out = append(out, p)
		}
	}
	return out
}

// Instances returns the structure's placements in declaration order.
func (s *Structure) Instances() []Instance {
	var out []Instance
	for _, el := range s.Elements {
		if in, ok := el.(Instance); ok {
			out = append(out, in)
		}
	}
	return out
}

// LocalBounds returns the bounding box of the structure's own shapes in
// database units, excluding instances. Path bounds include the stroke
// width and square/round cap extension.
func (s *Structure) LocalBounds() layoutview.Rect {
	b := layoutview.EmptyRect()
	for _, el := range s.Elements {
		switch el := el.(type) {
		case Polygon:
			for _, v := range el.Points {
				b = b.UnionPoint(v.Point())
			}
		case Path:
			pb := layoutview.EmptyRect()
			for _, v := range el.Points {
				pb = pb.UnionPoint(v.Point())
			}
			if !pb.IsEmpty() {
				// Half the width covers sideways extent and any cap overhang.
				b = b.Union(pb.Expand(float64(el.Width) / 2))
			}
		}
	}
	return b
}

// Library is a complete layout: named structures plus unit metadata.
// Libraries are immutable after construction; build them with a Builder.
type Library struct {
	Name  string
	Units Units

	structures map[string]*Structure
	order      []string
}

// Structure looks up a structure by name.
func (l *Library) Structure(name string) (*Structure, error) {
	s, ok := l.structures[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return s, nil
}

// Has reports whether a structure with the given name exists.
func (l *Library) Has(name string) bool {
	_, ok := l.structures[name]
	return ok
}

// Names returns all structure names in definition order.
func (l *Library) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of structures.
func (l *Library) Len() int {
	return len(l.order)
}

// RootCandidates returns the structures that no other structure references,
// in definition order. These are the natural top cells to display. A
// library where every structure is referenced (only possible with cycles)
// returns an empty slice.
func (l *Library) RootCandidates() []string {
	referenced := make(map[string]bool)
	for _, name := range l.order {
		for _, el := range l.structures[name].Elements {
			if in, ok := el.(Instance); ok {
				referenced[in.Structure] = true
			}
		}
	}
	var roots []string
	for _, name := range l.order {
		if !referenced[name] {
			roots = append(roots, name)
		}
	}
	return roots
}
