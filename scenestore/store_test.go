package scenestore

import (
	"context"
	"testing"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/geometry"
	"github.com/javagg/layoutview/resolve"
)

func buildPrims(t *testing.T, shapes []resolve.ResolvedShape) []geometry.Primitive {
	t.Helper()
	b := geometry.NewBuilder()
	defer b.Close()
	prims, warns, err := b.Build(context.Background(), shapes)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("warnings: %v", warns)
	}
	return prims
}

func square(id int, x, y, size float64) resolve.ResolvedShape {
	return resolve.ResolvedShape{
		ID:   id,
		Kind: resolve.KindPolygon,
		Points: []layoutview.Point{
			layoutview.Pt(x, y), layoutview.Pt(x+size, y),
			layoutview.Pt(x+size, y+size), layoutview.Pt(x, y+size),
		},
	}
}

func TestQueryRect(t *testing.T) {
	prims := buildPrims(t, []resolve.ResolvedShape{
		square(0, 0, 0, 10),
		square(1, 100, 100, 10),
		square(2, 5, 5, 10),
	})
	s := Build(prims)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	got := s.QueryRect(layoutview.Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20})
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("QueryRect = %v, want [0 2]", got)
	}

	if got := s.QueryRect(layoutview.EmptyRect()); got != nil {
		t.Errorf("empty query = %v, want nil", got)
	}

	got = s.QueryRect(layoutview.Rect{MinX: -100, MinY: -100, MaxX: 200, MaxY: 200})
	if len(got) != 3 {
		t.Errorf("full query = %v, want all three", got)
	}
}

func TestQueryPointTopmost(t *testing.T) {
	// Two overlapping squares; the higher ID draws later, so it is on top.
	prims := buildPrims(t, []resolve.ResolvedShape{
		square(0, 0, 0, 10),
		square(1, 5, 5, 10),
	})
	s := Build(prims)

	got := s.QueryPoint(layoutview.Pt(7, 7))
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("QueryPoint = %v, want [1 0]", got)
	}
	if id := s.Topmost(layoutview.Pt(7, 7)); id != 1 {
		t.Errorf("Topmost = %d, want 1", id)
	}
	if id := s.Topmost(layoutview.Pt(-5, -5)); id != -1 {
		t.Errorf("Topmost outside = %d, want -1", id)
	}
}

func TestQueryPointBoundsOnlyMiss(t *testing.T) {
	// An L-shaped primitive: a point in the bounds notch must not hit.
	shape := resolve.ResolvedShape{
		ID:   0,
		Kind: resolve.KindPolygon,
		Points: []layoutview.Point{
			layoutview.Pt(0, 0), layoutview.Pt(10, 0), layoutview.Pt(10, 5),
			layoutview.Pt(5, 5), layoutview.Pt(5, 10), layoutview.Pt(0, 10),
		},
	}
	s := Build(buildPrims(t, []resolve.ResolvedShape{shape}))

	if got := s.QueryPoint(layoutview.Pt(8, 8)); len(got) != 0 {
		t.Errorf("point in notch matched: %v", got)
	}
	if got := s.QueryPoint(layoutview.Pt(2, 2)); len(got) != 1 {
		t.Errorf("interior point missed: %v", got)
	}
}

func TestPrimitiveLookup(t *testing.T) {
	prims := buildPrims(t, []resolve.ResolvedShape{square(0, 0, 0, 10)})
	s := Build(prims)

	if p := s.Primitive(0); p == nil || p.Index != 0 {
		t.Errorf("Primitive(0) = %v", p)
	}
	if p := s.Primitive(99); p != nil {
		t.Errorf("Primitive(99) = %v, want nil", p)
	}
}
