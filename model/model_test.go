package model

import (
	"errors"
	"testing"

	"github.com/javagg/layoutview"
)

func buildTwoLevel(t *testing.T) *Library {
	t.Helper()
	b := NewBuilder("test")

	if err := b.BeginStructure("A"); err != nil {
		t.Fatal(err)
	}
	b.AddPolygon(Polygon{
		Layer:  layoutview.LayerKey{Layer: 1},
		Points: []XY{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
	})

	if err := b.BeginStructure("B"); err != nil {
		t.Fatal(err)
	}
	b.AddInstance(Instance{Structure: "A", X: 5, Y: 5, RotationDegrees: 90})

	return b.Build()
}

func TestBuilderDuplicateName(t *testing.T) {
	b := NewBuilder("dup")
	if err := b.BeginStructure("A"); err != nil {
		t.Fatal(err)
	}
	err := b.BeginStructure("A")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestLibraryLookup(t *testing.T) {
	lib := buildTwoLevel(t)

	s, err := lib.Structure("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Polygons()) != 1 {
		t.Errorf("A has %d polygons, want 1", len(s.Polygons()))
	}

	_, err = lib.Structure("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("NotFoundError should carry the name, got %v", err)
	}
}

func TestLibraryNamesOrder(t *testing.T) {
	lib := buildTwoLevel(t)
	names := lib.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("Names() = %v, want [A B]", names)
	}
}

func TestRootCandidates(t *testing.T) {
	lib := buildTwoLevel(t)
	roots := lib.RootCandidates()
	if len(roots) != 1 || roots[0] != "B" {
		t.Errorf("RootCandidates = %v, want [B]", roots)
	}
}

func TestRootCandidatesAllReferenced(t *testing.T) {
	b := NewBuilder("cycle")
	if err := b.BeginStructure("X"); err != nil {
		t.Fatal(err)
	}
	b.AddInstance(Instance{Structure: "Y"})
	if err := b.BeginStructure("Y"); err != nil {
		t.Fatal(err)
	}
	b.AddInstance(Instance{Structure: "X"})
	lib := b.Build()

	if roots := lib.RootCandidates(); len(roots) != 0 {
		t.Errorf("RootCandidates = %v, want none", roots)
	}
}

func TestInstanceTransform(t *testing.T) {
	in := Instance{Structure: "A", X: 5, Y: 5, RotationDegrees: 90}
	m := in.Transform()

	tests := []struct {
		in, want layoutview.Point
	}{
		{layoutview.Pt(0, 0), layoutview.Pt(5, 5)},
		{layoutview.Pt(10, 0), layoutview.Pt(5, 15)},
		{layoutview.Pt(10, 10), layoutview.Pt(-5, 15)},
		{layoutview.Pt(0, 10), layoutview.Pt(-5, 5)},
	}
	for _, tt := range tests {
		if got := m.TransformPoint(tt.in); got != tt.want {
			t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInstanceTransformReflect(t *testing.T) {
	in := Instance{Structure: "A", Reflect: true, RotationDegrees: 90}
	m := in.Transform()

	// Reflection applies first: (1,1) -> (1,-1), then rotate 90 -> (1,1).
	got := m.TransformPoint(layoutview.Pt(1, 1))
	if got != layoutview.Pt(1, 1) {
		t.Errorf("TransformPoint(1,1) = %v, want (1,1)", got)
	}
	if m.Det() >= 0 {
		t.Error("reflected placement should flip orientation")
	}
}

func TestLocalBounds(t *testing.T) {
	b := NewBuilder("bounds")
	if err := b.BeginStructure("S"); err != nil {
		t.Fatal(err)
	}
	b.AddPolygon(Polygon{Points: []XY{{0, 0}, {4, 0}, {4, 4}}})
	b.AddPath(Path{Points: []XY{{10, 0}, {20, 0}}, Width: 4, Cap: CapSquare})
	lib := b.Build()

	s, err := lib.Structure("S")
	if err != nil {
		t.Fatal(err)
	}
	got := s.LocalBounds()
	want := layoutview.Rect{MinX: 0, MinY: -2, MaxX: 22, MaxY: 4}
	if got != want {
		t.Errorf("LocalBounds = %+v, want %+v", got, want)
	}
}

func TestBuilderElementOutsideStructure(t *testing.T) {
	b := NewBuilder("stray")
	// Must not panic; elements before any BeginStructure are dropped.
	b.AddPolygon(Polygon{Points: []XY{{0, 0}, {1, 0}, {1, 1}}})
	b.AddInstance(Instance{Structure: "A"})
	lib := b.Build()
	if lib.Len() != 0 {
		t.Errorf("Len = %d, want 0", lib.Len())
	}
}

func TestStructureElementOrder(t *testing.T) {
	b := NewBuilder("order")
	if err := b.BeginStructure("S"); err != nil {
		t.Fatal(err)
	}
	b.AddPath(Path{Points: []XY{{0, 0}, {10, 0}}, Width: 2})
	b.AddInstance(Instance{Structure: "T"})
	b.AddPolygon(Polygon{Points: []XY{{0, 0}, {4, 0}, {4, 4}}})
	if err := b.BeginStructure("T"); err != nil {
		t.Fatal(err)
	}
	lib := b.Build()

	s, err := lib.Structure("S")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(s.Elements))
	}
	if _, ok := s.Elements[0].(Path); !ok {
		t.Errorf("element 0 = %T, want Path", s.Elements[0])
	}
	if _, ok := s.Elements[1].(Instance); !ok {
		t.Errorf("element 1 = %T, want Instance", s.Elements[1])
	}
	if _, ok := s.Elements[2].(Polygon); !ok {
		t.Errorf("element 2 = %T, want Polygon", s.Elements[2])
	}
}

func TestCapStyleString(t *testing.T) {
	if CapFlush.String() != "flush" || CapRound.String() != "round" || CapSquare.String() != "square" {
		t.Error("CapStyle.String mismatch")
	}
	if CapStyle(9).String() != "unknown" {
		t.Error("out-of-range CapStyle should be unknown")
	}
}
