package colors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Parse parses a user-supplied color: either a comma-separated "R,G,B"
// triplet with channel values 0-255, or a "#rrggbb" hex string.
func Parse(s string) (engine.RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return engine.RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return engine.RGB{R: r, G: g, B: b}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return engine.RGB{}, fmt.Errorf("invalid color %q: want \"R,G,B\" with values 0-255", s)
	}
	var ch [3]uint8
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return engine.RGB{}, fmt.Errorf("invalid color %q: channel %q out of range 0-255", s, part)
		}
		ch[i] = uint8(v)
	}
	return engine.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// ParseList parses a list of colors, failing on the first invalid entry.
func ParseList(specs []string) ([]engine.RGB, error) {
	out := make([]engine.RGB, 0, len(specs))
	for _, s := range specs {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Hex formats a color as a "#rrggbb" string.
func Hex(c engine.RGB) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Hex formats the dominant color as a "#rrggbb" string.
func (d Dominant) Hex() string {
	return Hex(d.RGB)
}

// String renders the entry for reports: "#rrggbb (R,G,B): p%".
func (d Dominant) String() string {
	return fmt.Sprintf("%s (%d,%d,%d): %.2f%%", d.Hex(), d.RGB.R, d.RGB.G, d.RGB.B, d.Percentage)
}
