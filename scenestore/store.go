// Package scenestore indexes built primitives for spatial queries:
// viewport culling and picking.
package scenestore

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/geometry"
)

// EntityID identifies a primitive in the store. It equals the primitive's
// stable resolution index, so store results join directly against the
// primitive list.
type EntityID = int

// Store holds one entry per primitive in an R-tree keyed by world bounds.
//
// Store is immutable after Build and safe for concurrent reads.
type Store struct {
	tree  rtree.RTreeG[EntityID]
	prims map[EntityID]*geometry.Primitive
}

// Build indexes the primitives.
func Build(prims []geometry.Primitive) *Store {
	s := &Store{prims: make(map[EntityID]*geometry.Primitive, len(prims))}
	for i := range prims {
		p := &prims[i]
		if p.Bounds.IsEmpty() {
			continue
		}
		s.tree.Insert(
			[2]float64{p.Bounds.MinX, p.Bounds.MinY},
			[2]float64{p.Bounds.MaxX, p.Bounds.MaxY},
			p.Index,
		)
		s.prims[p.Index] = p
	}
	return s
}

// Len returns the number of indexed primitives.
func (s *Store) Len() int {
	return s.tree.Len()
}

// Primitive returns the indexed primitive for an entity, or nil.
func (s *Store) Primitive(id EntityID) *geometry.Primitive {
	return s.prims[id]
}

// QueryRect returns the IDs of primitives whose bounds intersect the
// rectangle, in ascending draw order.
func (s *Store) QueryRect(r layoutview.Rect) []EntityID {
	if r.IsEmpty() {
		return nil
	}
	var ids []EntityID
	s.tree.Search(
		[2]float64{r.MinX, r.MinY},
		[2]float64{r.MaxX, r.MaxY},
		func(_, _ [2]float64, id EntityID) bool {
			ids = append(ids, id)
			return true
		},
	)
	// R-tree traversal order is spatial, not draw order.
	sort.Ints(ids)
	return ids
}

// QueryPoint returns the IDs of primitives whose fill contains the point,
// topmost first (descending draw order). Bounds prune the candidates;
// triangle containment decides.
func (s *Store) QueryPoint(p layoutview.Point) []EntityID {
	var ids []EntityID
	s.tree.Search(
		[2]float64{p.X, p.Y},
		[2]float64{p.X, p.Y},
		func(_, _ [2]float64, id EntityID) bool {
			prim := s.prims[id]
			if geometry.PointInTriangles(p, prim.Vertices, prim.Indices) {
				ids = append(ids, id)
			}
			return true
		},
	)
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids
}

// Topmost returns the topmost primitive containing the point, or -1.
func (s *Store) Topmost(p layoutview.Point) EntityID {
	ids := s.QueryPoint(p)
	if len(ids) == 0 {
		return -1
	}
	return ids[0]
}
