package xmlio

import (
	"encoding/xml"
	"strings"

	"github.com/uxwrite/docxhtml/internal/nametable"
)

// mceFrame is one entry in the parser's Markup Compatibility and
// Extensibility compatibility-record stack. It is pushed
// whenever an element or attribute declares mc:Ignorable or
// mc:ProcessContent, and records which namespace URIs those directives
// named, so that descendant elements in those namespaces are skipped or
// unwrapped.
type mceFrame struct {
	parent              *mceFrame
	ignorableURIs       []string
	processContentURIs  []string
}

type mceAction int

const (
	mceActionNone mceAction = iota
	mceActionIgnore
	mceActionUnwrap
)

// mceActionFor decides what to do with a just-opened element in namespace
// uri, given the innermost active compatibility frame: skip its subtree
// (Ignorable), unwrap it but keep its children (ProcessContent), or treat
// it normally.
func mceActionFor(compat *mceFrame, uri string) mceAction {
	for f := compat; f != nil; f = f.parent {
		for _, u := range f.processContentURIs {
			if u == uri {
				return mceActionUnwrap
			}
		}
		for _, u := range f.ignorableURIs {
			if u == uri {
				return mceActionIgnore
			}
		}
	}
	return mceActionNone
}

// attributeIgnored reports whether attributes in namespace uri should be
// dropped because an enclosing mc:Ignorable declaration named it. Per the
// MCE chapter, Ignorable filters both elements and attributes in the named
// namespace(s); MustUnderstand is a no-op for a reader that doesn't
// implement every extension.
func (f *mceFrame) attributeIgnored(uri string) bool {
	for c := f; c != nil; c = c.parent {
		for _, u := range c.ignorableURIs {
			if u == uri {
				return true
			}
		}
	}
	return false
}

// mceDirectives extracts the namespace URIs named by mc:Ignorable and
// mc:ProcessContent attributes on a start element, resolving each
// whitespace-separated QName prefix against the attributes already
// declared on this same element (xmlns:*), since MCE directives name prefixes,
// not URIs, so resolution happens against the element's own namespace
// declarations.
func mceDirectives(names *nametable.Table, attrs []xml.Attr) (ignorable, processContent []string) {
	prefixToURI := map[string]string{}
	for _, a := range attrs {
		if a.Name.Space == "xmlns" {
			prefixToURI[a.Name.Local] = a.Value
		} else if a.Name.Local == "xmlns" && a.Name.Space == "" {
			prefixToURI[""] = a.Value
		}
	}
	// mc:Ignorable names bare prefixes ("x y"); mc:ProcessContent names
	// qualified names ("x:wrapper"), whose prefix part is what resolves.
	resolvePrefixes := func(raw string) []string {
		var out []string
		for _, tok := range strings.Fields(raw) {
			if uri, ok := prefixToURI[tok]; ok {
				out = append(out, uri)
			}
		}
		return out
	}
	resolveQNames := func(raw string) []string {
		var out []string
		for _, tok := range strings.Fields(raw) {
			prefix := ""
			if i := strings.IndexByte(tok, ':'); i >= 0 {
				prefix = tok[:i]
			}
			if uri, ok := prefixToURI[prefix]; ok {
				out = append(out, uri)
			}
		}
		return out
	}

	for _, a := range attrs {
		if a.Name.Space != nametable.NSMCE {
			continue
		}
		switch a.Name.Local {
		case "Ignorable":
			ignorable = append(ignorable, resolvePrefixes(a.Value)...)
		case "ProcessContent":
			processContent = append(processContent, resolveQNames(a.Value)...)
		}
	}
	return ignorable, processContent
}
