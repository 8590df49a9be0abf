// Package numbering keeps a word-processing numbering definition in sync
// with the CSS heading content rules an HTML editor may have changed: it
// parses the generated-content property headings carry, detects whether
// the existing concrete numbering covers every heading level the CSS now
// asks for, and rebuilds it when it doesn't.
package numbering

import (
	"fmt"
	"strings"

	"github.com/uxwrite/docxhtml/internal/docxerr"
	"github.com/uxwrite/docxhtml/internal/style"
)

// PieceKind distinguishes the two kinds of token a heading's generated
// content can be built from.
type PieceKind int

const (
	PieceLiteral PieceKind = iota
	PieceCounter
)

// ContentPiece is one token of a parsed `before.content` value: either a
// literal string or a counter(name[, type]) reference.
type ContentPiece struct {
	Kind        PieceKind
	Literal     string
	CounterName string
	CounterType string // "" if the counter() call omitted a type argument
}

// ParseContent parses a `before.content` value into its literal and
// counter() pieces. Unrecognized syntax is
// reported as an error rather than silently dropped.
func ParseContent(value string) ([]ContentPiece, error) {
	var pieces []ContentPiece
	s := strings.TrimSpace(value)
	for len(s) > 0 {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		switch {
		case s[0] == '"':
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated string literal in content value %q", value)
			}
			pieces = append(pieces, ContentPiece{Kind: PieceLiteral, Literal: s[1 : 1+end]})
			s = s[end+2:]
		case strings.HasPrefix(s, "counter("):
			close := strings.IndexByte(s, ')')
			if close < 0 {
				return nil, fmt.Errorf("unterminated counter() in content value %q", value)
			}
			args := s[len("counter(") : close]
			name, typ, _ := strings.Cut(args, ",")
			pieces = append(pieces, ContentPiece{
				Kind:        PieceCounter,
				CounterName: strings.TrimSpace(name),
				CounterType: strings.TrimSpace(typ),
			})
			s = s[close+1:]
		default:
			return nil, fmt.Errorf("unrecognized token in content value %q", value)
		}
	}
	return pieces, nil
}

// HasCounter reports whether pieces references any counter, i.e. the
// heading actually requests automatic numbering rather than a purely
// literal prefix.
func HasCounter(pieces []ContentPiece) bool {
	for _, p := range pieces {
		if p.Kind == PieceCounter {
			return true
		}
	}
	return false
}

// wordNumFmt maps a CSS counter-style keyword to word's numbering-format
// string. Unrecognized or absent types default to
// "decimal", the most common heading numbering style.
func wordNumFmt(cssType string) string {
	switch cssType {
	case "decimal-leading-zero":
		return "decimalZero"
	case "lower-roman":
		return "lowerRoman"
	case "upper-roman":
		return "upperRoman"
	case "lower-alpha", "lower-latin":
		return "lowerLetter"
	case "upper-alpha", "upper-latin":
		return "upperLetter"
	case "disc", "circle", "square":
		return "bullet"
	case "none":
		return "none"
	case "", "decimal":
		return "decimal"
	default:
		return "decimal"
	}
}

// Level is one of a numbering definition's six levels.
type Level struct {
	NumFmt  string
	LvlText string
	Start   int // 0 means unset; serialized as 1
}

// Definition is a concrete numbering definition: the abstract numbering
// id it's built from, the numId paragraphs reference, and its six
// levels, indexed 0..5 for outline levels 1..6.
type Definition struct {
	AbstractNumID int
	NumID         int
	Levels        [6]Level
}

// Document holds every numbering definition in a part's numbering.xml.
type Document struct {
	Definitions []*Definition

	nextAbstractID int
	nextNumID      int
}

// NewDocument returns an empty numbering document.
func NewDocument() *Document {
	return &Document{nextAbstractID: 1, nextNumID: 1}
}

// Lookup returns the definition with the given numId, if any.
func (d *Document) Lookup(numID int) (*Definition, bool) {
	for _, def := range d.Definitions {
		if def.NumID == numID {
			return def, true
		}
	}
	return nil, false
}

// Allocate creates a fresh definition with unique abstract and concrete
// ids, appends it to the document, and returns it.
func (d *Document) Allocate() *Definition {
	def := &Definition{AbstractNumID: d.nextAbstractID, NumID: d.nextNumID}
	d.nextAbstractID++
	d.nextNumID++
	d.Definitions = append(d.Definitions, def)
	return def
}

// counterLevel maps a counter name of the form "hN" to N; any other name
// falls back to the heading level whose content rule referenced it.
func counterLevel(name string, fallback int) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return fallback
}

// headingSelectors is the fixed six-element list Reconcile walks, in
// outline-level order.
var headingSelectors = [6]string{"h1", "h2", "h3", "h4", "h5", "h6"}

// HeadingRequest is one heading level's parsed numbering request.
type HeadingRequest struct {
	Level    int // 1-6
	Selector string
	Pieces   []ContentPiece
}

// ExtractHeadingRequests reads and parses the `before.content` property
// off each h1..h6 rule present in sheet. Headings with no rule, or no
// before.content property, are omitted.
func ExtractHeadingRequests(sheet *style.Sheet) ([]HeadingRequest, error) {
	var requests []HeadingRequest
	for i, sel := range headingSelectors {
		rule, err := sheet.Lookup(sel, false, false)
		if err != nil {
			continue // no rule for this heading level at all
		}
		content, exists := rule.Declarations["before.content"]
		if !exists {
			continue
		}
		pieces, err := ParseContent(content)
		if err != nil {
			return nil, docxerr.WrapPath("numbering", "extract_requests", sel, err)
		}
		requests = append(requests, HeadingRequest{Level: i + 1, Selector: sel, Pieces: pieces})
	}
	return requests, nil
}

// ExistingNumPr reads the -word-numId/-word-ilvl annotations a previous
// reconciliation wrote back onto selector's rule.
func ExistingNumPr(sheet *style.Sheet, selector string) (numID, ilvl int, ok bool) {
	rule, err := sheet.Lookup(selector, false, false)
	if err != nil {
		return 0, 0, false
	}
	numIDStr, hasNumID := rule.Declarations["-word-numId"]
	ilvlStr, hasIlvl := rule.Declarations["-word-ilvl"]
	if !hasNumID || !hasIlvl {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(numIDStr, "%d", &numID); err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(ilvlStr, "%d", &ilvl); err != nil {
		return 0, 0, false
	}
	return numID, ilvl, true
}

// NeedsFullRebuild reports whether the CSS requests numbering on at least
// one heading level while the existing numbering (if any) doesn't cover
// all six levels under a single numId.
func NeedsFullRebuild(sheet *style.Sheet, requests []HeadingRequest, doc *Document) bool {
	wantsNumbering := false
	for _, req := range requests {
		if HasCounter(req.Pieces) {
			wantsNumbering = true
			break
		}
	}
	if !wantsNumbering {
		return false
	}

	var commonNumID int
	covered := 0
	for i, sel := range headingSelectors {
		numID, ilvl, ok := ExistingNumPr(sheet, sel)
		if !ok || ilvl != i {
			return true
		}
		if covered == 0 {
			commonNumID = numID
		} else if numID != commonNumID {
			return true
		}
		covered++
	}
	return covered != len(headingSelectors)
}

// Rebuild allocates a fresh abstract+concrete numbering pair and
// synthesizes all six levels: a level whose request holds at least one
// counter() piece takes its lvlText from the pieces and its type from a
// counter's explicit type (else the previous level's type); otherwise it
// inherits the previous level's type and prepends the previous level's
// lvlText with a dot separator. It then writes
// -word-numId/-word-ilvl back onto each heading rule.
func Rebuild(sheet *style.Sheet, doc *Document, requests []HeadingRequest) (*Definition, error) {
	def := doc.Allocate()

	byLevel := make(map[int]HeadingRequest, len(requests))
	for _, req := range requests {
		byLevel[req.Level] = req
	}

	prevFmt := "decimal"
	prevText := "%1"
	for i := 0; i < 6; i++ {
		level := i + 1
		req, hasReq := byLevel[level]

		numFmt := prevFmt
		lvlText := ""
		if hasReq {
			// Assemble the format string directly from the pieces: each
			// counter(hN) becomes its %N placeholder, literals are kept
			// verbatim, and trailing separator whitespace is dropped.
			var sb strings.Builder
			sawCounter := false
			for _, p := range req.Pieces {
				switch p.Kind {
				case PieceLiteral:
					sb.WriteString(p.Literal)
				case PieceCounter:
					sawCounter = true
					sb.WriteString("%")
					sb.WriteString(fmt.Sprint(counterLevel(p.CounterName, level)))
					if p.CounterType != "" {
						numFmt = wordNumFmt(p.CounterType)
					}
				}
			}
			if sawCounter {
				lvlText = strings.TrimRight(sb.String(), " \t")
			}
		}
		if lvlText == "" {
			// No usable request for this level: inherit the previous
			// level's type and chain its format string with a dot.
			if level == 1 {
				lvlText = "%1"
			} else {
				lvlText = prevText + ".%" + fmt.Sprint(level)
			}
		}

		def.Levels[i] = Level{NumFmt: numFmt, LvlText: lvlText}
		prevFmt, prevText = numFmt, lvlText

		rule, err := sheet.Lookup(headingSelectors[i], true, false)
		if err != nil {
			return nil, docxerr.WrapPath("numbering", "rebuild", headingSelectors[i], err)
		}
		rule.Set("-word-numId", fmt.Sprint(def.NumID))
		rule.Set("-word-ilvl", fmt.Sprint(i))
	}

	return def, nil
}

// Reconcile runs the full procedure: extract each
// heading's requested numbering, detect whether a rebuild is needed, and
// rebuild+write back if so. It returns the definition headings now use
// (existing or freshly rebuilt), or nil if no heading requests numbering
// at all.
func Reconcile(sheet *style.Sheet, doc *Document) (*Definition, error) {
	requests, err := ExtractHeadingRequests(sheet)
	if err != nil {
		return nil, err
	}

	if !NeedsFullRebuild(sheet, requests, doc) {
		if numID, _, ok := ExistingNumPr(sheet, headingSelectors[0]); ok {
			def, _ := doc.Lookup(numID)
			return def, nil
		}
		return nil, nil
	}

	return Rebuild(sheet, doc, requests)
}
