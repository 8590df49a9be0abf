package style

import "testing"

func approxEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestConvertBetweenUnitsInchesToPoints(t *testing.T) {
	got := ConvertBetweenUnits(1, UnitIn, UnitPt)
	if !approxEqual(got, 72, 0.0001) {
		t.Fatalf("1in -> pt: got %v, want 72", got)
	}
}

func TestParseLengthAndToTwips(t *testing.T) {
	l := ParseLength("12pt")
	if !l.Valid || l.Unit != UnitPt || l.Value != 12 {
		t.Fatalf("ParseLength(12pt) = %+v", l)
	}
	if twips := l.ToTwips(0); twips != 240 {
		t.Fatalf("12pt -> twips: got %d, want 240", twips)
	}
}

func TestParseLengthRejectsGarbage(t *testing.T) {
	if l := ParseLength("not-a-length"); l.Valid {
		t.Fatalf("expected invalid length, got %+v", l)
	}
}

func TestLengthPercentageResolvesAgainstTotal(t *testing.T) {
	l := ParseLength("50%")
	if got := l.ToPts(100); got != 50 {
		t.Fatalf("50%% of 100pt = %v, want 50", got)
	}
}

func TestParseSelector(t *testing.T) {
	sel, ok := ParseSelector("h2.intro")
	if !ok || sel.Element != "h2" || sel.Class != "intro" {
		t.Fatalf("ParseSelector(h2.intro) = %+v, ok=%v", sel, ok)
	}
	if sel.HeadingLevel() != 2 || !sel.IsHeading() {
		t.Fatalf("expected heading level 2, got %d", sel.HeadingLevel())
	}
	if sel.String() != "h2.intro" {
		t.Fatalf("String() round trip failed: %q", sel.String())
	}
}

func TestParseSelectorRejectsCombinators(t *testing.T) {
	if _, ok := ParseSelector("h1 > p"); ok {
		t.Fatalf("expected combinator selector to be rejected")
	}
}

func TestSheetUpdateFromTextAndLookup(t *testing.T) {
	sh := NewSheet()
	err := sh.UpdateFromText(`
		h1 { color: #ff0000; font-weight: bold; }
		h2 { font-style: italic; }
	`)
	if err != nil {
		t.Fatalf("UpdateFromText: %v", err)
	}

	h1, err := sh.Lookup("h1", false, false)
	if err != nil {
		t.Fatalf("Lookup(h1): %v", err)
	}
	if h1.Declarations["color"] != "#ff0000" {
		t.Fatalf("h1 color = %q", h1.Declarations["color"])
	}

	h2, err := sh.Lookup("h2", false, true)
	if err != nil {
		t.Fatalf("Lookup(h2, inherit): %v", err)
	}
	if h2.Declarations["color"] != "#ff0000" {
		t.Fatalf("expected h2 to inherit color from h1, got %q", h2.Declarations["color"])
	}
	if h2.Declarations["font-style"] != "italic" {
		t.Fatalf("expected h2's own font-style to survive merge, got %q", h2.Declarations["font-style"])
	}
}

func TestSheetLookupAddIfMissing(t *testing.T) {
	sh := NewSheet()
	rule, err := sh.Lookup("p.caption", true, false)
	if err != nil {
		t.Fatalf("Lookup add_if_missing: %v", err)
	}
	rule.Set("font-style", "italic")

	again, err := sh.Lookup("p.caption", false, false)
	if err != nil {
		t.Fatalf("Lookup after add: %v", err)
	}
	if again.Declarations["font-style"] != "italic" {
		t.Fatalf("expected the rule created by add_if_missing to persist")
	}
}

func TestSheetLookupMissingWithoutAddFails(t *testing.T) {
	sh := NewSheet()
	if _, err := sh.Lookup("h3", false, false); err == nil {
		t.Fatalf("expected an error looking up a selector with no rule and no add_if_missing")
	}
}

func TestSheetCopyTextRoundTrips(t *testing.T) {
	sh := NewSheet()
	if err := sh.UpdateFromText("p.note { color: #112233; }"); err != nil {
		t.Fatalf("UpdateFromText: %v", err)
	}
	text := sh.CopyText()

	sh2 := NewSheet()
	if err := sh2.UpdateFromText(text); err != nil {
		t.Fatalf("UpdateFromText(copy_text output): %v", err)
	}
	rule, err := sh2.Lookup("p.note", false, false)
	if err != nil {
		t.Fatalf("Lookup after round trip: %v", err)
	}
	if rule.Declarations["color"] != "#112233" {
		t.Fatalf("round trip lost color declaration: %+v", rule.Declarations)
	}
}

func TestBorderWidthKeywordsNormalize(t *testing.T) {
	cases := map[string]float64{"thin": 0.5, "medium": 2.5, "thick": 4}
	for kw, want := range cases {
		got := NormalizeBorderWidth(kw)
		if !got.Valid || !approxEqual(got.Value, want, 0.0001) {
			t.Fatalf("NormalizeBorderWidth(%s) = %+v, want %v pt", kw, got, want)
		}
	}
}

func TestBorderToWordAndBack(t *testing.T) {
	rule := newRule(Selector{Element: "table"})
	rule.Set("border-top-width", "thin")
	rule.Set("border-top-style", "solid")
	rule.Set("border-top-color", "#336699")

	b, ok := BorderToWord(rule, "top")
	if !ok {
		t.Fatalf("expected a border to be found")
	}
	if b.WidthEighths != 4 { // 0.5pt * 8
		t.Fatalf("WidthEighths = %d, want 4", b.WidthEighths)
	}
	if b.Val != "solid" || b.ColorHex != "336699" {
		t.Fatalf("unexpected border: %+v", b)
	}

	back := newRule(Selector{Element: "table"})
	BorderFromWord(back, "top", b)
	if back.Declarations["border-top-color"] != "#336699" {
		t.Fatalf("round trip color: %q", back.Declarations["border-top-color"])
	}
}

func TestBackgroundColorToShadingAndBack(t *testing.T) {
	rule := newRule(Selector{Element: "td"})
	rule.Set("background-color", "#ffcc00")

	sh, ok := BackgroundColorToShading(rule)
	if !ok || sh.Fill != "ffcc00" || sh.Val != "clear" {
		t.Fatalf("BackgroundColorToShading = %+v, ok=%v", sh, ok)
	}

	back := newRule(Selector{Element: "td"})
	ShadingToBackgroundColor(back, sh)
	if back.Declarations["background-color"] != "#ffcc00" {
		t.Fatalf("round trip background-color: %q", back.Declarations["background-color"])
	}
}

func TestShadingAutoMeansTransparent(t *testing.T) {
	back := newRule(Selector{Element: "td"})
	ShadingToBackgroundColor(back, Shading{Fill: "auto"})
	if back.Declarations["background-color"] != "transparent" {
		t.Fatalf("expected transparent, got %q", back.Declarations["background-color"])
	}
}

func TestIsColorAcceptsNamedHexAndRGB(t *testing.T) {
	for _, s := range []string{"red", "#abc123", "rgb(1,2,3)"} {
		if !IsColor(s) {
			t.Fatalf("IsColor(%q) = false, want true", s)
		}
	}
	if IsColor("not-a-color") {
		t.Fatalf("IsColor(not-a-color) = true, want false")
	}
}
