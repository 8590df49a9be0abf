package style

import "strconv"

// StyleFamily classifies a selector's element by the kind of word-processing
// style it corresponds to.
type StyleFamily int

const (
	FamilyUnknown StyleFamily = iota
	FamilyParagraph
	FamilyCharacter
	FamilyTable
)

// headingElements maps an HTML heading tag to its outline level 1-6.
var headingElements = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// paragraphElements are the non-heading block elements backed by a
// word paragraph style.
var paragraphElements = map[string]bool{
	"p": true, "blockquote": true, "li": true, "figcaption": true,
}

var tableElements = map[string]bool{"table": true}

// Selector is the "element[.className]" grammar this cascade addresses
// styles with: a required tag name optionally qualified by a single
// class.
type Selector struct {
	Element string
	Class   string
}

// ParseSelector parses "h2" or "h2.intro" into a Selector. It rejects
// anything with combinators, pseudo-classes, or more than one class,
// since that is all the cascade here ever needs to address.
func ParseSelector(s string) (Selector, bool) {
	if s == "" {
		return Selector{}, false
	}
	dot := -1
	for i, r := range s {
		if r == '.' {
			dot = i
			break
		}
		if !isNameRune(r) {
			return Selector{}, false
		}
	}
	if dot < 0 {
		return Selector{Element: s}, true
	}
	element := s[:dot]
	class := s[dot+1:]
	if element == "" || class == "" {
		return Selector{}, false
	}
	for _, r := range class {
		if !isNameRune(r) {
			return Selector{}, false
		}
	}
	return Selector{Element: element, Class: class}, true
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}

// String renders the selector back to canonical CSS text.
func (s Selector) String() string {
	if s.Class == "" {
		return s.Element
	}
	return s.Element + "." + s.Class
}

// MakeSelector builds a Selector from an element name and an optional
// class, mirroring CSSMakeSelector.
func MakeSelector(element, class string) Selector {
	return Selector{Element: element, Class: class}
}

// HeadingLevel returns the selector's heading level 1-6, or 0 if it does
// not address a heading element. Ported from CSSSelectorHeadingLevel.
func (s Selector) HeadingLevel() int {
	return headingElements[s.Element]
}

// IsHeading reports whether the selector addresses h1..h6.
func (s Selector) IsHeading() bool { return s.HeadingLevel() > 0 }

// Family classifies the selector's element.
func (s Selector) Family() StyleFamily {
	switch {
	case s.IsHeading() || paragraphElements[s.Element]:
		return FamilyParagraph
	case tableElements[s.Element]:
		return FamilyTable
	case s.Element == "span" || s.Element == "a" || s.Element == "strong" || s.Element == "em":
		return FamilyCharacter
	default:
		return FamilyUnknown
	}
}

// parent returns the selector this one inherits properties from when
// followInheritance is requested, and whether one exists. A classed
// selector inherits from its bare element; h2..h6 inherit from the
// preceding heading level; h1 inherits from the generic paragraph
// selector "p".
func (s Selector) parent() (Selector, bool) {
	if s.Class != "" {
		return Selector{Element: s.Element}, true
	}
	if level := s.HeadingLevel(); level > 1 {
		return Selector{Element: "h" + strconv.Itoa(level-1)}, true
	}
	if s.HeadingLevel() == 1 {
		return Selector{Element: "p"}, true
	}
	return Selector{}, false
}
