package style

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColorHex maps the CSS2 color keywords to their 6-hex-digit value, so ColorToWord can normalize them
// the same way a literal #RRGGBB token is normalized.
var namedColorHex = map[string]string{
	"maroon": "800000", "red": "ff0000", "orange": "ffa500", "yellow": "ffff00",
	"olive": "808000", "purple": "800080", "fuchsia": "ff00ff", "white": "ffffff",
	"lime": "00ff00", "green": "008000", "navy": "000080", "blue": "0000ff",
	"aqua": "00ffff", "teal": "008080", "black": "000000", "silver": "c0c0c0",
	"gray": "808080",
}

// ColorToWord converts a CSS color value to the bare 6-hex-digit form word
// attributes use (`color="RRGGBB"`). "transparent" returns ("", false):
// the caller suppresses the color attribute entirely.
func ColorToWord(css string) (hex string, ok bool) {
	if css == "transparent" {
		return "", false
	}
	if h, found := namedColorHex[css]; found {
		return h, true
	}
	if hexRe.MatchString(css) {
		c, err := colorful.Hex("#" + normalizeHex(css))
		if err != nil {
			return "", false
		}
		return colorHex(c), true
	}
	if r, g, b, found := parseRGBTriple(css); found {
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		return colorHex(c), true
	}
	return "", false
}

// ColorFromWord converts a bare 6-hex-digit word color value back to the
// CSS `#RRGGBB` form.
func ColorFromWord(hex string) string {
	if hex == "" || hex == "auto" {
		return "transparent"
	}
	c, err := colorful.Hex("#" + normalizeHex(hex))
	if err != nil {
		return "transparent"
	}
	return "#" + colorHex(c)
}

// colorHex renders c as a bare, lowercase 6-hex-digit string (no '#'),
// clamping channel values the way colorful.Color.Hex does internally.
func colorHex(c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("%02x%02x%02x", r, g, b)
}
