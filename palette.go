package nebula

import (
	"fmt"
	"strings"

	"github.com/crazy3lf/colorconv"
)

// ParsePalette converts hex color strings ("#6366F1", "8B5CF6") into Colors.
func ParsePalette(hex ...string) ([]Color, error) {
	out := make([]Color, 0, len(hex))
	for _, h := range hex {
		h = strings.TrimPrefix(strings.TrimSpace(h), "#")
		if h == "" {
			continue
		}
		r, g, b, err := colorconv.HexToRGB(h)
		if err != nil {
			return nil, fmt.Errorf("parse palette color %q: %w", h, err)
		}
		out = append(out, Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1})
	}
	return out, nil
}

// HuePalette returns n colors evenly spaced around the hue
// circle starting at startHue degrees.
func HuePalette(n int, startHue, saturation, value float64) ([]Color, error) {
	out := make([]Color, 0, n)
	for i := 0; i < n; i++ {
		h := startHue + 360*float64(i)/float64(n)
		for h >= 360 {
			h -= 360
		}
		r, g, b, err := colorconv.HSVToRGB(h, saturation, value)
		if err != nil {
			return nil, fmt.Errorf("hue palette entry %d: %w", i, err)
		}
		out = append(out, Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1})
	}
	return out, nil
}
