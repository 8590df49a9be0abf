// Package xmlio implements a streaming, namespace-aware XML parser and a
// deterministic serializer. The parser is event-driven over
// encoding/xml.Decoder but builds dom.Node trees instead of
// annotated structs, driving the DOM from SAX-style callbacks the way a
// TreeBuilder would.
package xmlio

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/uxwrite/docxhtml/internal/docxerr"
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// ParseResult carries the parsed document plus buffers for non-fatal
// diagnostics. Fatal errors are not buffered; Parse returns them as its
// error. The parser itself appends nothing to Warnings or Errors.
type ParseResult struct {
	Document *dom.Document
	Warnings []string
	Errors   []string // recoverable errors: parsing continued
}

// Parse parses an XML document from r into a fresh dom.Document. A fatal
// error (malformed XML, or no root element) returns a non-nil error. Every
// problem the decoder reports is treated as fatal, so ParseResult.Errors
// stays empty.
func Parse(r io.Reader) (*ParseResult, error) {
	doc := dom.New()
	return parseInto(doc, r)
}

// ParseIntoIDDocument is like Parse but configures the document's id-index
// to track the given attribute tag (used for HTML parses, where the id
// attribute is the Put-direction correlation key).
func ParseIntoIDDocument(r io.Reader, idAttr nametable.Tag) (*ParseResult, error) {
	doc := dom.New()
	doc.SetIDAttribute(idAttr)
	return parseInto(doc, r)
}

func parseInto(doc *dom.Document, r io.Reader) (*ParseResult, error) {
	dec := xml.NewDecoder(r)
	res := &ParseResult{Document: doc}

	type frame struct {
		node   dom.Node
		compat *mceFrame
	}

	var stack []frame
	cur := doc.Root()
	var compat *mceFrame // top of the MCE compatibility stack
	var skipDepth int    // >0 while skipping an mc:Ignorable subtree
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, docxerr.Errorf("xmlio", "parse", "", "%w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			uri, local := splitName(t.Name)
			// Intern this element's own xmlns declarations first, so a
			// namespace first seen here keeps its declared prefix.
			for _, a := range t.Attr {
				if isXMLNSAttr(a.Name) {
					doc.Names.InternNamespace(xmlnsInfo(a))
				}
			}
			tag := doc.Names.TagForName(uri, local)

			ignorable, processContent := mceDirectives(doc.Names, t.Attr)
			action := mceActionFor(compat, uri)

			if skipDepth > 0 {
				skipDepth++
				stack = append(stack, frame{node: dom.Node{}, compat: compat})
				continue
			}
			if action == mceActionIgnore {
				skipDepth = 1
				stack = append(stack, frame{node: dom.Node{}, compat: compat})
				continue
			}

			var newCompat *mceFrame
			if len(ignorable) > 0 || len(processContent) > 0 {
				newCompat = &mceFrame{parent: compat, ignorableURIs: ignorable, processContentURIs: processContent}
			} else {
				newCompat = compat
			}

			if action == mceActionUnwrap {
				// mc:ProcessContent: drop the wrapper element, splice its
				// children directly into the current parent.
				stack = append(stack, frame{node: cur, compat: compat})
				compat = newCompat
				continue
			}

			elem := doc.CreateElement(tag)
			for _, a := range t.Attr {
				if isXMLNSAttr(a.Name) {
					auri, aprefix := xmlnsInfo(a)
					doc.Names.InternNamespace(auri, aprefix)
					continue
				}
				if skipFilteredAttr(doc.Names, a, action, newCompat) {
					continue
				}
				auri, alocal := splitName(a.Name)
				atag := doc.Names.TagForName(auri, alocal)
				if isRSIDAttr(auri, alocal) {
					continue
				}
				doc.SetAttribute(elem, atag, a.Value)
			}

			doc.AppendChild(cur, elem)
			stack = append(stack, frame{node: cur, compat: compat})
			cur = elem
			compat = newCompat
			if !sawRoot {
				sawRoot = true
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				stack = stack[:len(stack)-1]
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cur = top.node
			compat = top.compat

		case xml.CharData:
			if skipDepth > 0 {
				continue
			}
			text := doc.CreateText(string(t))
			doc.AppendChild(cur, text)

		case xml.Comment:
			if skipDepth > 0 {
				continue
			}
			c := doc.CreateComment(string(t))
			doc.AppendChild(cur, c)

		case xml.ProcInst:
			if skipDepth > 0 {
				continue
			}
			// The XML declaration surfaces as a processing instruction
			// with target "xml"; it is prolog, not content, and the
			// serializer emits its own.
			if t.Target == "xml" {
				continue
			}
			pi := doc.CreatePI(t.Target, string(t.Inst))
			doc.AppendChild(cur, pi)

		case xml.Directive:
			// DTDs and similar directives are ignored; they carry no
			// semantic weight for word-processing documents.
		}
	}

	if !sawRoot {
		return res, docxerr.Errorf("xmlio", "parse", "", "document has no root element")
	}

	return res, nil
}

func splitName(n xml.Name) (uri, local string) { return n.Space, n.Local }

func isXMLNSAttr(n xml.Name) bool {
	return n.Space == "xmlns" || n.Local == "xmlns"
}

func xmlnsInfo(a xml.Attr) (uri, prefix string) {
	if a.Name.Local == "xmlns" {
		return a.Value, ""
	}
	return a.Value, a.Name.Local
}

// isRSIDAttr reports whether (uri, local) is one of the w:rsid* attributes,
// which are stripped on load and never re-emitted.
func isRSIDAttr(uri, local string) bool {
	return uri == nametable.NSWordproc && strings.HasPrefix(local, "rsid")
}

func skipFilteredAttr(names *nametable.Table, a xml.Attr, action mceAction, compat *mceFrame) bool {
	uri, local := splitName(a.Name)
	if uri == nametable.NSMCE && (local == "Ignorable" || local == "ProcessContent" || local == "MustUnderstand") {
		return true
	}
	if compat != nil && compat.attributeIgnored(uri) {
		return true
	}
	return false
}
