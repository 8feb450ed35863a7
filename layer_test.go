package layoutview

import (
	"image/color"
	"strings"
	"testing"
)

func TestLayerKeyString(t *testing.T) {
	k := LayerKey{Layer: 12, Datatype: 3}
	if got := k.String(); got != "12/3" {
		t.Errorf("String() = %q, want %q", got, "12/3")
	}
}

func TestStyleTableFallback(t *testing.T) {
	table := NewStyleTable()

	a := table.Get(LayerKey{Layer: 1})
	b := table.Get(LayerKey{Layer: 1, Datatype: 5})
	if a.Color != b.Color {
		t.Error("palette fallback should depend on layer number only")
	}
	if !a.Visible {
		t.Error("fallback styles should be visible")
	}
	if a.Opacity != table.DefaultOpacity {
		t.Errorf("fallback opacity = %v, want %v", a.Opacity, table.DefaultOpacity)
	}

	// Negative layer numbers must not panic.
	_ = table.Get(LayerKey{Layer: -3})
}

func TestStyleTableSetAndVisibility(t *testing.T) {
	table := NewStyleTable()
	key := LayerKey{Layer: 7, Datatype: 0}
	table.Set(key, Style{Color: color.RGBA{R: 0xff, A: 0xff}, Opacity: 0.5, Visible: true})

	if got := table.Get(key); got.Color.R != 0xff || got.Opacity != 0.5 {
		t.Errorf("Get = %+v", got)
	}

	table.SetVisible(key, false)
	if table.Visible(key) {
		t.Error("layer should be hidden after SetVisible(false)")
	}

	// Hiding an unconfigured layer materializes its palette style.
	other := LayerKey{Layer: 9}
	table.SetVisible(other, false)
	if table.Visible(other) {
		t.Error("unconfigured layer should be hidden after SetVisible(false)")
	}

	keys := table.Keys()
	if len(keys) != 2 {
		t.Errorf("Keys() returned %d entries, want 2", len(keys))
	}
}

func TestStyleHexAndRGBA(t *testing.T) {
	s := Style{Color: color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}, Opacity: 0.5}
	if got := s.Hex(); got != "#4682b4" {
		t.Errorf("Hex() = %q", got)
	}
	rgba := s.RGBA()
	if rgba[3] != 0.5 {
		t.Errorf("RGBA alpha = %v, want 0.5", rgba[3])
	}
	if rgba[0] != float32(0x46)/255 {
		t.Errorf("RGBA red = %v", rgba[0])
	}
}

func TestReadStyleTable(t *testing.T) {
	src := `
default_opacity = 0.6

[[layer]]
layer = 1
datatype = 0
color = "#ff0000"
opacity = 0.9

[[layer]]
layer = 2
datatype = 0
color = "#0f0"
visible = false
`
	table, err := ReadStyleTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadStyleTable: %v", err)
	}

	s1 := table.Get(LayerKey{Layer: 1})
	if s1.Color != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("layer 1 color = %+v", s1.Color)
	}
	if s1.Opacity != 0.9 {
		t.Errorf("layer 1 opacity = %v, want 0.9", s1.Opacity)
	}

	s2 := table.Get(LayerKey{Layer: 2})
	if s2.Color != (color.RGBA{G: 0xff, A: 0xff}) {
		t.Errorf("layer 2 color = %+v (short hex form)", s2.Color)
	}
	if s2.Visible {
		t.Error("layer 2 should be hidden")
	}
	if s2.Opacity != 0.6 {
		t.Errorf("layer 2 opacity = %v, want default 0.6", s2.Opacity)
	}
}

func TestReadStyleTableBadColor(t *testing.T) {
	src := `
[[layer]]
layer = 1
color = "red"
`
	if _, err := ReadStyleTable(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for non-hex color")
	}
}
