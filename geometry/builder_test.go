package geometry

import (
	"context"
	"errors"
	"testing"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/model"
	"github.com/javagg/layoutview/resolve"
)

func squareShape(id int, layer int16, off float64) resolve.ResolvedShape {
	return resolve.ResolvedShape{
		ID:    id,
		Kind:  resolve.KindPolygon,
		Layer: layoutview.LayerKey{Layer: layer},
		Points: []layoutview.Point{
			layoutview.Pt(off, off), layoutview.Pt(off+10, off),
			layoutview.Pt(off+10, off+10), layoutview.Pt(off, off+10),
		},
	}
}

func TestBuildKeepsOrder(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	shapes := make([]resolve.ResolvedShape, 50)
	for i := range shapes {
		shapes[i] = squareShape(i, int16(i%4), float64(i*20))
	}

	prims, warns, err := b.Build(context.Background(), shapes)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(prims) != len(shapes) {
		t.Fatalf("got %d primitives, want %d", len(prims), len(shapes))
	}
	for i, p := range prims {
		if p.Index != i {
			t.Fatalf("primitive %d has index %d; order not preserved", i, p.Index)
		}
	}
}

func TestBuildPolygonMesh(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	prims, _, err := b.Build(context.Background(),
		[]resolve.ResolvedShape{squareShape(0, 1, 0)})
	if err != nil {
		t.Fatal(err)
	}
	p := prims[0]
	if len(p.Indices) != 6 {
		t.Errorf("square mesh has %d indices, want 6", len(p.Indices))
	}
	if p.Bounds != (layoutview.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}) {
		t.Errorf("Bounds = %+v", p.Bounds)
	}
	if p.Layer != (layoutview.LayerKey{Layer: 1}) {
		t.Errorf("Layer = %v", p.Layer)
	}
	if len(p.Outline) != 4 {
		t.Errorf("Outline has %d points, want 4", len(p.Outline))
	}
}

func TestBuildPathMesh(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	shape := resolve.ResolvedShape{
		ID:   0,
		Kind: resolve.KindPath,
		Points: []layoutview.Point{
			layoutview.Pt(0, 0), layoutview.Pt(100, 0),
		},
		Width: 4,
		Cap:   model.CapSquare,
	}
	prims, warns, err := b.Build(context.Background(), []resolve.ResolvedShape{shape})
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("warnings: %v", warns)
	}
	want := layoutview.Rect{MinX: -2, MinY: -2, MaxX: 102, MaxY: 2}
	if prims[0].Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", prims[0].Bounds, want)
	}
}

func TestBuildDegenerateWarnsAndContinues(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	shapes := []resolve.ResolvedShape{
		squareShape(0, 1, 0),
		{ID: 1, Kind: resolve.KindPolygon, Points: []layoutview.Point{
			layoutview.Pt(0, 0), layoutview.Pt(1, 1),
		}},
		{ID: 2, Kind: resolve.KindPath, Points: []layoutview.Point{
			layoutview.Pt(0, 0), layoutview.Pt(10, 0),
		}, Width: 0},
		squareShape(3, 1, 50),
	}

	prims, warns, err := b.Build(context.Background(), shapes)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warns), warns)
	}
	if warns[0].ShapeID != 1 || warns[1].ShapeID != 2 {
		t.Errorf("warnings name wrong shapes: %v", warns)
	}
	if len(prims) != 2 {
		t.Fatalf("got %d primitives, want 2", len(prims))
	}
	if prims[0].Index != 0 || prims[1].Index != 3 {
		t.Errorf("surviving primitives = %d, %d", prims[0].Index, prims[1].Index)
	}
}

func TestBuildCancelled(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := b.Build(ctx, []resolve.ResolvedShape{squareShape(0, 1, 0)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder()
	defer b.Close()

	prims, warns, err := b.Build(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(prims) != 0 || len(warns) != 0 {
		t.Errorf("empty build produced output: %v %v", prims, warns)
	}
}
