package layoutview

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// styleConfig is the on-disk TOML form of a style table.
//
//	default_opacity = 0.8
//
//	[[layer]]
//	layer = 1
//	datatype = 0
//	color = "#4682b4"
//	opacity = 0.9
//	visible = true
type styleConfig struct {
	DefaultOpacity float64       `toml:"default_opacity"`
	Layers         []layerConfig `toml:"layer"`
}

type layerConfig struct {
	Layer    int16   `toml:"layer"`
	Datatype int16   `toml:"datatype"`
	Color    string  `toml:"color"`
	Opacity  float64 `toml:"opacity"`
	Visible  *bool   `toml:"visible"`
}

// ReadStyleTable decodes a TOML style table from r.
func ReadStyleTable(r io.Reader) (*StyleTable, error) {
	var cfg styleConfig
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("layoutview: decoding style table: %w", err)
	}

	table := NewStyleTable()
	if cfg.DefaultOpacity > 0 {
		table.DefaultOpacity = cfg.DefaultOpacity
	}

	for _, lc := range cfg.Layers {
		c, err := parseHexColor(lc.Color)
		if err != nil {
			return nil, fmt.Errorf("layoutview: layer %d/%d: %w", lc.Layer, lc.Datatype, err)
		}
		opacity := lc.Opacity
		if opacity == 0 {
			opacity = table.DefaultOpacity
		}
		visible := true
		if lc.Visible != nil {
			visible = *lc.Visible
		}
		table.Set(LayerKey{Layer: lc.Layer, Datatype: lc.Datatype}, Style{
			Color:   c,
			Opacity: opacity,
			Visible: visible,
		})
	}
	return table, nil
}

// LoadStyleTable reads a TOML style table from a file.
func LoadStyleTable(path string) (*StyleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layoutview: opening style table: %w", err)
	}
	defer f.Close()
	return ReadStyleTable(f)
}

// parseHexColor parses "#rgb" or "#rrggbb".
func parseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		return c, fmt.Errorf("invalid color %q", s)
	}
	if err != nil {
		return c, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}
