package layoutview

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
)

// LayerKey identifies a mask layer and its datatype. The pair selects the
// render style of a shape; it has no geometric meaning of its own.
type LayerKey struct {
	Layer    int16
	Datatype int16
}

// String formats the key as "layer/datatype".
func (k LayerKey) String() string {
	return fmt.Sprintf("%d/%d", k.Layer, k.Datatype)
}

// Style describes how shapes on one (layer, datatype) pair are drawn.
type Style struct {
	// Color is the fill color. Alpha is ignored; use Opacity.
	Color color.RGBA

	// Opacity in [0, 1]. 0 is fully transparent.
	Opacity float64

	// Visible controls whether shapes on this layer are drawn at all.
	// Toggling visibility never requires re-resolving the layout.
	Visible bool
}

// RGBA returns the premultiplied-free color components as floats in [0, 1],
// with Opacity in the alpha slot. This is the form GPU vertex colors and
// uniform buffers want.
func (s Style) RGBA() [4]float32 {
	return [4]float32{
		float32(s.Color.R) / 255,
		float32(s.Color.G) / 255,
		float32(s.Color.B) / 255,
		float32(s.Opacity),
	}
}

// Hex returns the color as a "#rrggbb" string for vector output.
func (s Style) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
}

// defaultPalette cycles distinct colors over layer numbers when no explicit
// style is configured. Picked for contrast on a dark background.
var defaultPalette = []color.RGBA{
	colornames.Steelblue,
	colornames.Tomato,
	colornames.Mediumseagreen,
	colornames.Gold,
	colornames.Orchid,
	colornames.Turquoise,
	colornames.Darkorange,
	colornames.Slategray,
	colornames.Yellowgreen,
	colornames.Hotpink,
	colornames.Cadetblue,
	colornames.Peru,
}

// StyleTable maps layer keys to styles. Lookups for unconfigured keys fall
// back to a palette color derived from the layer number, so every layer
// renders even without configuration.
//
// StyleTable is not safe for concurrent mutation; configure it before
// handing it to backend adapters.
type StyleTable struct {
	styles map[LayerKey]Style

	// DefaultOpacity applies to palette-derived styles.
	DefaultOpacity float64
}

// NewStyleTable creates an empty style table with palette fallback.
func NewStyleTable() *StyleTable {
	return &StyleTable{
		styles:         make(map[LayerKey]Style),
		DefaultOpacity: 0.8,
	}
}

// Set assigns an explicit style to a layer key.
func (t *StyleTable) Set(key LayerKey, s Style) {
	t.styles[key] = s
}

// Get returns the style for a layer key, falling back to the palette.
func (t *StyleTable) Get(key LayerKey) Style {
	if s, ok := t.styles[key]; ok {
		return s
	}
	idx := int(key.Layer)
	if idx < 0 {
		idx = -idx
	}
	return Style{
		Color:   defaultPalette[idx%len(defaultPalette)],
		Opacity: t.DefaultOpacity,
		Visible: true,
	}
}

// SetVisible toggles layer visibility, materializing a palette style if the
// key was not configured yet.
func (t *StyleTable) SetVisible(key LayerKey, visible bool) {
	s := t.Get(key)
	s.Visible = visible
	t.styles[key] = s
}

// Visible reports whether the layer is currently drawn.
func (t *StyleTable) Visible(key LayerKey) bool {
	return t.Get(key).Visible
}

// Keys returns the explicitly configured layer keys in unspecified order.
func (t *StyleTable) Keys() []LayerKey {
	keys := make([]LayerKey, 0, len(t.styles))
	for k := range t.styles {
		keys = append(keys, k)
	}
	return keys
}
