package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/model"
)

func mustBegin(t *testing.T, b *model.Builder, name string) {
	t.Helper()
	if err := b.BeginStructure(name); err != nil {
		t.Fatal(err)
	}
}

func square10(layer int16) model.Polygon {
	return model.Polygon{
		Layer:  layoutview.LayerKey{Layer: layer},
		Points: []model.XY{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
	}
}

func TestResolveFlat(t *testing.T) {
	b := model.NewBuilder("flat")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	b.AddPath(model.Path{
		Layer:  layoutview.LayerKey{Layer: 2},
		Points: []model.XY{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Width:  4,
		Cap:    model.CapRound,
	})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "A", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(res.Shapes))
	}

	poly := res.Shapes[0]
	if poly.Kind != KindPolygon || poly.ID != 0 || poly.Depth != 0 {
		t.Errorf("polygon shape = %+v", poly)
	}
	if poly.Points[2] != layoutview.Pt(10, 10) {
		t.Errorf("polygon vertex = %v, want (10,10)", poly.Points[2])
	}

	path := res.Shapes[1]
	if path.Kind != KindPath || path.Width != 4 || path.Cap != model.CapRound {
		t.Errorf("path shape = %+v", path)
	}
	// Path bounds include the half-width.
	if got := path.Bounds(); got != (layoutview.Rect{MinX: -2, MinY: -2, MaxX: 102, MaxY: 2}) {
		t.Errorf("path bounds = %+v", got)
	}
}

func TestResolveInstancePlacement(t *testing.T) {
	// B instantiates A at (5,5) rotated 90 degrees; A holds a 10x10 square.
	b := model.NewBuilder("placement")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	mustBegin(t, b, "B")
	b.AddInstance(model.Instance{Structure: "A", X: 5, Y: 5, RotationDegrees: 90})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "B", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shapes) != 1 {
		t.Fatalf("got %d shapes, want 1", len(res.Shapes))
	}

	got := res.Shapes[0].Points
	want := []layoutview.Point{
		layoutview.Pt(5, 5),
		layoutview.Pt(5, 15),
		layoutview.Pt(-5, 15),
		layoutview.Pt(-5, 5),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
	if res.Shapes[0].Depth != 1 {
		t.Errorf("Depth = %d, want 1", res.Shapes[0].Depth)
	}
	if len(res.Shapes[0].InstancePath) != 2 ||
		res.Shapes[0].InstancePath[0] != "B" || res.Shapes[0].InstancePath[1] != "A" {
		t.Errorf("InstancePath = %v, want [B A]", res.Shapes[0].InstancePath)
	}
}

func TestResolveIdentityPassthrough(t *testing.T) {
	b := model.NewBuilder("identity")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	mustBegin(t, b, "B")
	b.AddInstance(model.Instance{Structure: "A"})
	lib := b.Build()

	r := NewResolver(lib)
	direct, err := r.Resolve(context.Background(), "A", Options{})
	if err != nil {
		t.Fatal(err)
	}
	viaB, err := r.Resolve(context.Background(), "B", Options{})
	if err != nil {
		t.Fatal(err)
	}

	for i := range direct.Shapes[0].Points {
		if direct.Shapes[0].Points[i] != viaB.Shapes[0].Points[i] {
			t.Errorf("identity placement changed vertex %d: %v vs %v",
				i, direct.Shapes[0].Points[i], viaB.Shapes[0].Points[i])
		}
	}
}

func TestResolveNestedTransforms(t *testing.T) {
	// C places B at (100,0); B places A rotated 90. The composition must
	// apply A's placement first.
	b := model.NewBuilder("nested")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	mustBegin(t, b, "B")
	b.AddInstance(model.Instance{Structure: "A", RotationDegrees: 90})
	mustBegin(t, b, "C")
	b.AddInstance(model.Instance{Structure: "B", X: 100})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "C", Options{})
	if err != nil {
		t.Fatal(err)
	}
	// (10,0) -> rotate 90 -> (0,10) -> translate -> (100,10)
	if got := res.Shapes[0].Points[1]; got != layoutview.Pt(100, 10) {
		t.Errorf("nested vertex = %v, want (100,10)", got)
	}
	if res.Shapes[0].Depth != 2 {
		t.Errorf("Depth = %d, want 2", res.Shapes[0].Depth)
	}
}

func TestResolveUnknownRoot(t *testing.T) {
	b := model.NewBuilder("empty")
	mustBegin(t, b, "A")
	lib := b.Build()

	_, err := NewResolver(lib).Resolve(context.Background(), "nope", Options{})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveDanglingReference(t *testing.T) {
	b := model.NewBuilder("dangling")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	b.AddInstance(model.Instance{Structure: "C"})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "A", Options{})
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
	var de *DanglingReferenceError
	if !errors.As(err, &de) || de.Target != "C" || de.From != "A" {
		t.Errorf("error should name the missing target: %v", err)
	}
	if res != nil {
		t.Error("failed pass must not return partial output")
	}
}

func TestResolveDirectCycle(t *testing.T) {
	b := model.NewBuilder("self")
	mustBegin(t, b, "X")
	b.AddInstance(model.Instance{Structure: "X"})
	lib := b.Build()

	_, err := NewResolver(lib).Resolve(context.Background(), "X", Options{})
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected ErrCyclicReference, got %v", err)
	}
	var ce *CyclicReferenceError
	if !errors.As(err, &ce) || len(ce.Cycle) != 2 {
		t.Errorf("cycle = %v, want [X X]", err)
	}
}

func TestResolveTransitiveCycle(t *testing.T) {
	b := model.NewBuilder("loop")
	mustBegin(t, b, "X")
	b.AddInstance(model.Instance{Structure: "Y"})
	mustBegin(t, b, "Y")
	b.AddInstance(model.Instance{Structure: "Z"})
	mustBegin(t, b, "Z")
	b.AddInstance(model.Instance{Structure: "X"})
	lib := b.Build()

	_, err := NewResolver(lib).Resolve(context.Background(), "X", Options{})
	var ce *CyclicReferenceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CyclicReferenceError, got %v", err)
	}
	want := []string{"X", "Y", "Z", "X"}
	if len(ce.Cycle) != len(want) {
		t.Fatalf("Cycle = %v, want %v", ce.Cycle, want)
	}
	for i := range want {
		if ce.Cycle[i] != want[i] {
			t.Errorf("Cycle = %v, want %v", ce.Cycle, want)
			break
		}
	}
}

func TestResolveDiamondIsNotCycle(t *testing.T) {
	// Two paths to the same structure are legal reuse, not a cycle.
	b := model.NewBuilder("diamond")
	mustBegin(t, b, "Leaf")
	b.AddPolygon(square10(1))
	mustBegin(t, b, "L")
	b.AddInstance(model.Instance{Structure: "Leaf"})
	mustBegin(t, b, "R")
	b.AddInstance(model.Instance{Structure: "Leaf", X: 50})
	mustBegin(t, b, "Top")
	b.AddInstance(model.Instance{Structure: "L"})
	b.AddInstance(model.Instance{Structure: "R"})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "Top", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shapes) != 2 {
		t.Errorf("got %d shapes, want 2", len(res.Shapes))
	}
}

func TestResolveDepthLimit(t *testing.T) {
	b := model.NewBuilder("deep")
	mustBegin(t, b, "S0")
	b.AddInstance(model.Instance{Structure: "S1"})
	mustBegin(t, b, "S1")
	b.AddInstance(model.Instance{Structure: "S2"})
	mustBegin(t, b, "S2")
	b.AddPolygon(square10(1))
	lib := b.Build()

	r := NewResolver(lib)
	if _, err := r.Resolve(context.Background(), "S0", Options{MaxDepth: 2}); err != nil {
		t.Fatalf("depth 2 should fit in limit 2: %v", err)
	}

	_, err := r.Resolve(context.Background(), "S0", Options{MaxDepth: 1})
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestResolveDeterministic(t *testing.T) {
	b := model.NewBuilder("det")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	b.AddPolygon(square10(2))
	mustBegin(t, b, "B")
	b.AddInstance(model.Instance{Structure: "A"})
	b.AddInstance(model.Instance{Structure: "A", X: 20})
	lib := b.Build()

	r := NewResolver(lib)
	first, err := r.Resolve(context.Background(), "B", Options{})
	if err != nil {
		t.Fatal(err)
	}
	r.Invalidate()
	second, err := r.Resolve(context.Background(), "B", Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Shapes) != len(second.Shapes) {
		t.Fatalf("shape counts differ: %d vs %d", len(first.Shapes), len(second.Shapes))
	}
	for i := range first.Shapes {
		a, b := first.Shapes[i], second.Shapes[i]
		if a.ID != b.ID || a.Layer != b.Layer || len(a.Points) != len(b.Points) {
			t.Fatalf("shape %d differs between runs", i)
		}
		for j := range a.Points {
			if a.Points[j] != b.Points[j] {
				t.Fatalf("shape %d vertex %d differs", i, j)
			}
		}
	}
}

func TestResolveCached(t *testing.T) {
	b := model.NewBuilder("cache")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	lib := b.Build()

	r := NewResolver(lib)
	first, err := r.Resolve(context.Background(), "A", Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(context.Background(), "A", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("unchanged root and depth should return the cached result")
	}

	// A different depth limit is a different pass.
	third, err := r.Resolve(context.Background(), "A", Options{MaxDepth: 5})
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("changed options must not return the stale cache")
	}
}

func TestResolveCancelled(t *testing.T) {
	b := model.NewBuilder("cancel")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	lib := b.Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver(lib).Resolve(ctx, "A", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveDeclarationOrder(t *testing.T) {
	// Declaration order is draw order. A path declared before a polygon
	// resolves first, and a shape declared after an instance resolves
	// after that instance's contents so it overlays them.
	b := model.NewBuilder("order")
	mustBegin(t, b, "Leaf")
	b.AddPolygon(square10(3))
	mustBegin(t, b, "Top")
	b.AddPath(model.Path{
		Layer:  layoutview.LayerKey{Layer: 1},
		Points: []model.XY{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Width:  2,
	})
	b.AddInstance(model.Instance{Structure: "Leaf", X: 20})
	b.AddPolygon(square10(2))
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "Top", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shapes) != 3 {
		t.Fatalf("got %d shapes, want 3", len(res.Shapes))
	}

	want := []struct {
		kind  ShapeKind
		layer int16
		depth int
	}{
		{KindPath, 1, 0},
		{KindPolygon, 3, 1},
		{KindPolygon, 2, 0},
	}
	for i, w := range want {
		s := res.Shapes[i]
		if s.Kind != w.kind || s.Layer.Layer != w.layer || s.Depth != w.depth {
			t.Errorf("shape %d = kind %v layer %d depth %d, want kind %v layer %d depth %d",
				i, s.Kind, s.Layer.Layer, s.Depth, w.kind, w.layer, w.depth)
		}
	}
}

func TestResolveBounds(t *testing.T) {
	b := model.NewBuilder("bounds")
	mustBegin(t, b, "A")
	b.AddPolygon(square10(1))
	mustBegin(t, b, "B")
	b.AddInstance(model.Instance{Structure: "A"})
	b.AddInstance(model.Instance{Structure: "A", X: 90, Y: 40})
	lib := b.Build()

	res, err := NewResolver(lib).Resolve(context.Background(), "B", Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := layoutview.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}
	if res.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", res.Bounds, want)
	}
}
