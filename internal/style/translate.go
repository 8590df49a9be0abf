package style

import "strings"

// BorderSides lists the four sides a paragraph or cell border applies to,
// matching the border-{side}-{width,style,color} CSS property family.
var BorderSides = [4]string{"top", "left", "bottom", "right"}

// Border is the concrete-XML shape of one side's border: an eighths-of-a-
// point width, a border-style value ("solid" unless the rule carries a
// recognised CSS border-style keyword, which is then passed through as
// is), and a bare 6-hex-digit color.
type Border struct {
	WidthEighths int
	Val          string
	ColorHex     string
}

// BorderToWord reads the border-{side}-{width,style,color} properties off
// rule and translates them to the nested border element's attributes.
// Returns ok=false if none of the three properties is present.
func BorderToWord(rule *Rule, side string) (Border, bool) {
	widthProp, styleProp, colorProp := "border-"+side+"-width", "border-"+side+"-style", "border-"+side+"-color"
	widthCSS, hasWidth := rule.Declarations[widthProp]
	styleCSS, hasStyle := rule.Declarations[styleProp]
	colorCSS, hasColor := rule.Declarations[colorProp]
	if !hasWidth && !hasStyle && !hasColor {
		return Border{}, false
	}

	b := Border{Val: "solid"}
	if hasWidth {
		b.WidthEighths = int(NormalizeBorderWidth(widthCSS).ToPts(0)*8 + 0.5)
	}
	if hasStyle && IsBorderStyle(styleCSS) {
		b.Val = styleCSS
	}
	if hasColor {
		if hex, ok := ColorToWord(colorCSS); ok {
			b.ColorHex = hex
		}
	}
	return b, true
}

// BorderFromWord writes a concrete Border back onto rule's
// border-{side}-{width,style,color} properties, the WordGet* direction of
// the cascade.
func BorderFromWord(rule *Rule, side string, b Border) {
	widthPt := float64(b.WidthEighths) / 8.0
	rule.Set("border-"+side+"-width", LengthFromValue(widthPt, UnitPt).String())
	if b.Val != "" {
		rule.Set("border-"+side+"-style", b.Val)
	}
	if b.ColorHex != "" {
		rule.Set("border-"+side+"-color", "#"+b.ColorHex)
	}
}

// LengthPropertyToTwips reads prop off rule as a CSS length and converts
// it to twips, resolving a percentage against total. Returns ok=false if
// the property is absent or not a valid length.
func LengthPropertyToTwips(rule *Rule, prop string, total float64) (int, bool) {
	css, exists := rule.Declarations[prop]
	if !exists {
		return 0, false
	}
	l := ParseLength(css)
	if !l.Valid {
		return 0, false
	}
	return l.ToTwips(total), true
}

// SetLengthPropertyFromTwips writes a twips value back to rule as a CSS
// length in points.
func SetLengthPropertyFromTwips(rule *Rule, prop string, twips int) {
	rule.Set(prop, TwipsToLength(twips).String())
}

// Shading is the concrete word shading element's attributes: a bare
// 6-hex-digit fill color and a fixed "clear" pattern value.
type Shading struct {
	Fill string
	Val  string
}

// BackgroundColorToShading translates the CSS background-color property
// to a word shading element: background color becomes a shading element
// with fill=<RRGGBB> val=clear.
func BackgroundColorToShading(rule *Rule) (Shading, bool) {
	css, exists := rule.Declarations["background-color"]
	if !exists {
		return Shading{}, false
	}
	hex, ok := ColorToWord(css)
	if !ok {
		return Shading{}, false
	}
	return Shading{Fill: hex, Val: "clear"}, true
}

// ShadingToBackgroundColor writes a concrete shading element's fill back
// onto rule's background-color property.
func ShadingToBackgroundColor(rule *Rule, s Shading) {
	if s.Fill == "" || strings.EqualFold(s.Fill, "auto") {
		rule.Set("background-color", "transparent")
		return
	}
	rule.Set("background-color", ColorFromWord(s.Fill))
}
