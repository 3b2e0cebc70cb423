package chart

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-gg/palette"
)

// Categorical palettes.
var (
	Tableau10 = []string{
		"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	}
	Category10 = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
	// Pastel is used for annotation bands.
	Pastel = []string{
		"#b3e2cd", "#fdcdac", "#cbd5e8", "#f4cae4", "#e6f5c9",
		"#fff2ae", "#f1e2cc", "#cccccc",
	}
)

// Fixed colours with a meaning.
const (
	ColorLowSample = "#d62728"
	ColorHighlight = "#d3d3d3"
	ColorPrimary   = "#4682b4" // steelblue
	ColorSecondary = "#ffa500" // orange
)

// blues is the ColorBrewer Blues ramp.
var blues = palette.RGBGradient{Colors: []color.RGBA{
	{0xf7, 0xfb, 0xff, 0xff},
	{0xde, 0xeb, 0xf7, 0xff},
	{0xc6, 0xdb, 0xef, 0xff},
	{0x9e, 0xca, 0xe1, 0xff},
	{0x6b, 0xae, 0xd6, 0xff},
	{0x42, 0x92, 0xc6, 0xff},
	{0x21, 0x71, 0xb5, 0xff},
	{0x08, 0x51, 0x9c, 0xff},
	{0x08, 0x30, 0x6b, 0xff},
}}

// Sequential maps x in [0, 1] onto the Blues ramp. Values outside are
// clamped.
func Sequential(x float64) string {
	if x < 0 || x != x {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	return Hex(blues.Map(x))
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// ColorFor returns the colour of key: the explicit override when present,
// otherwise the palette entry at key's position in known.
func ColorFor(key string, known []string, overrides map[string]string, pal []string) string {
	if c, ok := overrides[key]; ok {
		return c
	}
	if len(pal) == 0 {
		pal = Tableau10
	}
	for i, k := range known {
		if k == key {
			return pal[i%len(pal)]
		}
	}
	return pal[0]
}
