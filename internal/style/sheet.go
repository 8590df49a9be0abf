package style

import (
	"fmt"
	"strings"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// Rule is one selector's declaration bag. Declarations is an unordered
// map; the order slice keeps property names in insertion order so
// CopyText round-trips a sheet's textual layout.
type Rule struct {
	Selector     Selector
	order        []string
	Declarations map[string]string
}

func newRule(sel Selector) *Rule {
	return &Rule{Selector: sel, Declarations: make(map[string]string)}
}

// Set assigns a property, appending it to the emission order on first use.
func (r *Rule) Set(prop, value string) {
	if _, exists := r.Declarations[prop]; !exists {
		r.order = append(r.order, prop)
	}
	r.Declarations[prop] = value
}

// Sheet is the HTML-side style sheet: an ordered set of per-selector
// declaration bags, plus the "automatic heading numbering" toggle the
// numbering reconciler reads.
type Sheet struct {
	rules          map[string]*Rule // keyed by Selector.String()
	order          []string         // selector keys, insertion order
	headingNumbers bool
}

// NewSheet returns an empty style sheet.
func NewSheet() *Sheet {
	return &Sheet{rules: make(map[string]*Rule)}
}

// SetHeadingNumbering toggles automatic heading enumeration.
func (sh *Sheet) SetHeadingNumbering(on bool) { sh.headingNumbers = on }

// HeadingNumbering reports whether automatic heading enumeration is on.
func (sh *Sheet) HeadingNumbering() bool { return sh.headingNumbers }

// UpdateFromText parses cssText, a sequence of "selector { prop: value;
// ... }" blocks, replacing any existing rule for each selector
// encountered. Rules for selectors not mentioned in cssText are left
// untouched, the way a partial stylesheet edit only touches the rules it
// names.
func (sh *Sheet) UpdateFromText(cssText string) error {
	p := &cssParser{text: cssText}
	for {
		p.skipSpace()
		if p.atEnd() {
			return nil
		}
		selText, err := p.readUntil('{')
		if err != nil {
			return docxerr.WrapPath("style", "update_from_text", "", err)
		}
		selText = strings.TrimSpace(selText)

		// A ::before block's declarations are folded into the base
		// selector's rule under "before."-prefixed property names, so a
		// single Rule carries both the element's own properties and its
		// generated-content ones.
		propPrefix := ""
		for _, pseudo := range []string{"::before", ":before"} {
			if strings.HasSuffix(selText, pseudo) {
				selText = strings.TrimSuffix(selText, pseudo)
				propPrefix = "before."
				break
			}
		}

		sel, ok := ParseSelector(selText)
		if !ok {
			return docxerr.Errorf("style", "update_from_text", "", "invalid selector %q", selText)
		}
		p.expect('{')
		body, err := p.readUntil('}')
		if err != nil {
			return docxerr.WrapPath("style", "update_from_text", sel.String(), err)
		}
		p.expect('}')

		// A plain block replaces the selector's rule; a ::before block
		// merges into whatever is already there.
		var rule *Rule
		if propPrefix != "" {
			rule = sh.rules[sel.String()]
		}
		if rule == nil {
			rule = newRule(sel)
		}
		for _, decl := range strings.Split(body, ";") {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			colon := strings.IndexByte(decl, ':')
			if colon < 0 {
				return docxerr.Errorf("style", "update_from_text", sel.String(), "malformed declaration %q", decl)
			}
			prop := strings.TrimSpace(decl[:colon])
			value := strings.TrimSpace(decl[colon+1:])
			rule.Set(propPrefix+prop, value)
		}
		sh.putRule(sel, rule)
	}
}

func (sh *Sheet) putRule(sel Selector, rule *Rule) {
	key := sel.String()
	if _, exists := sh.rules[key]; !exists {
		sh.order = append(sh.order, key)
	}
	sh.rules[key] = rule
}

// CopyText emits the sheet's rules as canonical CSS text, selectors and
// declarations in insertion order.
func (sh *Sheet) CopyText() string {
	var sb strings.Builder
	for _, key := range sh.order {
		rule := sh.rules[key]

		var main, before []string
		for _, prop := range rule.order {
			if strings.HasPrefix(prop, "before.") {
				before = append(before, prop)
			} else {
				main = append(main, prop)
			}
		}

		if len(main) > 0 || len(before) == 0 {
			fmt.Fprintf(&sb, "%s {\n", key)
			for _, prop := range main {
				fmt.Fprintf(&sb, "  %s: %s;\n", prop, rule.Declarations[prop])
			}
			sb.WriteString("}\n")
		}
		if len(before) > 0 {
			fmt.Fprintf(&sb, "%s::before {\n", key)
			for _, prop := range before {
				fmt.Fprintf(&sb, "  %s: %s;\n", strings.TrimPrefix(prop, "before."), rule.Declarations[prop])
			}
			sb.WriteString("}\n")
		}
	}
	return sb.String()
}

// Lookup resolves selector's effective style. If followInheritance is set,
// declarations are overlaid on top of the selector's parent chain (see
// Selector.parent) so an unset property on, say, h3 falls back to h2, h1,
// then the bare paragraph rule. If addIfMissing is set and no rule exists
// for selector, an empty one is created (and returned) rather than an
// error.
func (sh *Sheet) Lookup(selectorText string, addIfMissing, followInheritance bool) (*Rule, error) {
	sel, ok := ParseSelector(selectorText)
	if !ok {
		return nil, docxerr.Errorf("style", "lookup", "", "invalid selector %q", selectorText)
	}

	own, exists := sh.rules[sel.String()]
	if !exists {
		if !addIfMissing {
			return nil, docxerr.WrapPath("style", "lookup", sel.String(), docxerr.ErrNotFound)
		}
		own = newRule(sel)
		sh.putRule(sel, own)
	}

	if !followInheritance {
		return own, nil
	}

	merged := newRule(sel)
	for _, chainSel := range sh.inheritanceChain(sel) {
		if rule, ok := sh.rules[chainSel.String()]; ok {
			for _, prop := range rule.order {
				merged.Set(prop, rule.Declarations[prop])
			}
		}
	}
	for _, prop := range own.order {
		merged.Set(prop, own.Declarations[prop])
	}
	return merged, nil
}

// inheritanceChain returns sel's ancestors, furthest first, so callers can
// overlay them in order with sel's own declarations applied last.
func (sh *Sheet) inheritanceChain(sel Selector) []Selector {
	var chain []Selector
	cur := sel
	for {
		parent, ok := cur.parent()
		if !ok {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	// chain was built nearest-parent-first; reverse so callers overlay
	// furthest ancestor first and sel's own declarations last.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// cssParser is a minimal character-at-a-time scanner over CSS block
// structure.
type cssParser struct {
	text string
	pos  int
}

func (p *cssParser) atEnd() bool { return p.pos >= len(p.text) }

func (p *cssParser) skipSpace() {
	for !p.atEnd() && isCSSSpace(p.text[p.pos]) {
		p.pos++
	}
}

func isCSSSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func (p *cssParser) readUntil(delim byte) (string, error) {
	start := p.pos
	for !p.atEnd() && p.text[p.pos] != delim {
		p.pos++
	}
	if p.atEnd() {
		return "", fmt.Errorf("unexpected end of input, expected %q", delim)
	}
	return p.text[start:p.pos], nil
}

func (p *cssParser) expect(delim byte) {
	if !p.atEnd() && p.text[p.pos] == delim {
		p.pos++
	}
}

// Selectors returns every selector key with a rule, in insertion order.
func (sh *Sheet) Selectors() []string {
	out := make([]string, len(sh.order))
	copy(out, sh.order)
	return out
}
