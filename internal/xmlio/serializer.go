package xmlio

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// SerializeOptions controls serializer behavior.
type SerializeOptions struct {
	// Indent, when non-empty, is repeated per nesting depth to pretty-print
	// the output. Indentation is suppressed for any element whose only
	// children are text, to avoid introducing whitespace into content.
	Indent string
}

// Serialize writes doc to w. If the document's root (or its single element
// child) is an <html> element, the serializer switches to HTML mode: void
// tags are emitted without a closing tag, and HTML-namespace elements are
// written with no prefix.
func Serialize(w io.Writer, doc *dom.Document, opts SerializeOptions) error {
	s := &serializer{w: w, doc: doc, opts: opts}
	root := contentRoot(doc.Root())
	if !root.IsZero() && root.IsElement() && root.Kind() == nametable.HTMLHtml {
		s.htmlMode = true
	}
	s.rootElement = root
	s.usedNamespaces = collectNamespaces(doc, doc.Root(), map[nametable.NSID]bool{})
	return s.writeChildren(doc.Root(), 0, true)
}

// contentRoot returns the document's first element child, skipping
// processing instructions and comments at the top level.
func contentRoot(docRoot dom.Node) dom.Node {
	for c := docRoot.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.IsElement() {
			return c
		}
	}
	return dom.Node{}
}

type serializer struct {
	w              io.Writer
	doc            *dom.Document
	opts           SerializeOptions
	htmlMode       bool
	rootElement    dom.Node
	usedNamespaces map[nametable.NSID]bool
}

// collectNamespaces walks the subtree collecting the set of namespace ids
// actually used by element and attribute tags, so the serializer can emit
// declarations only at the root. The null namespace and the reserved xml
// namespace are never declared.
func collectNamespaces(doc *dom.Document, n dom.Node, acc map[nametable.NSID]bool) map[nametable.NSID]bool {
	if n.IsElement() {
		ns, _, err := doc.Names.NameForTag(n.Kind())
		if err == nil {
			acc[ns] = true
		}
		for _, a := range n.Attributes() {
			ans, _, err := doc.Names.NameForTag(a.Tag)
			if err == nil {
				acc[ans] = true
			}
		}
	}
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		collectNamespaces(doc, c, acc)
	}
	return acc
}

func (s *serializer) isDeclarable(ns nametable.NSID) bool {
	info, ok := s.doc.Names.Namespace(ns)
	if !ok {
		return false
	}
	return info.URI != nametable.NSNone && info.URI != nametable.NSXML
}

func (s *serializer) writeChildren(parent dom.Node, depth int, isDocRoot bool) error {
	children := parent.Children()
	onlyText := childrenAreTextOnly(children)
	for _, c := range children {
		indent := s.opts.Indent != "" && !onlyText
		if indent {
			s.writeIndent(depth)
		}
		// The namespace declarations go on the document's root element,
		// which may sit after top-level comments or PIs.
		if err := s.writeNode(c, depth, isDocRoot && c.Equal(s.rootElement)); err != nil {
			return err
		}
		if indent {
			fmt.Fprint(s.w, "\n")
		}
	}
	return nil
}

func childrenAreTextOnly(children []dom.Node) bool {
	for _, c := range children {
		switch c.Kind() {
		case nametable.TagText, nametable.TagCDATA:
		default:
			return false
		}
	}
	return len(children) > 0
}

func (s *serializer) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(s.w, s.opts.Indent)
	}
}

func (s *serializer) writeNode(n dom.Node, depth int, isRootElement bool) error {
	switch n.Kind() {
	case nametable.TagText:
		io.WriteString(s.w, escapeText(n.Value()))
		return nil
	case nametable.TagCDATA:
		fmt.Fprintf(s.w, "<![CDATA[%s]]>", n.Value())
		return nil
	case nametable.TagComment:
		fmt.Fprintf(s.w, "<!--%s-->", n.Value())
		return nil
	case nametable.TagProcessingInstruction:
		fmt.Fprintf(s.w, "<?%s %s?>", n.PITarget(), n.PIValue())
		return nil
	}
	return s.writeElement(n, depth, isRootElement)
}

func (s *serializer) writeElement(n dom.Node, depth int, isRootElement bool) error {
	ns, local, err := s.doc.Names.NameForTag(n.Kind())
	if err != nil {
		return err
	}
	name := s.qualifiedName(ns, local)

	fmt.Fprintf(s.w, "<%s", name)

	if isRootElement {
		s.writeNamespaceDecls()
	}

	for _, a := range sortedAttrs(n.Attributes()) {
		ans, alocal, err := s.doc.Names.NameForTag(a.Tag)
		if err != nil {
			continue
		}
		aname := s.qualifiedName(ans, alocal)
		fmt.Fprintf(s.w, ` %s="%s"`, aname, escapeAttr(a.Value))
	}

	// Void tags self-close: valid HTML5 and still well-formed XML, so a
	// Get-produced file can be re-parsed for Put without a tidy pass.
	isVoid := s.htmlMode && nametable.HTMLVoidTags()[n.Kind()]
	children := n.Children()
	if isVoid && len(children) == 0 {
		io.WriteString(s.w, "/>")
		return nil
	}
	if len(children) == 0 {
		io.WriteString(s.w, "/>")
		return nil
	}

	io.WriteString(s.w, ">")
	onlyText := childrenAreTextOnly(children) || s.noIndentInside(n)
	if !onlyText && s.opts.Indent != "" {
		fmt.Fprint(s.w, "\n")
	}
	if err := s.writeInline(n, depth+1, onlyText); err != nil {
		return err
	}
	if !onlyText && s.opts.Indent != "" {
		s.writeIndent(depth)
	}
	fmt.Fprintf(s.w, "</%s>", name)
	return nil
}

// noIndentInside reports whether an element's children must be written
// without surrounding whitespace. In HTML mode that covers every
// phrasing container, where an introduced newline would re-parse as
// content.
func (s *serializer) noIndentInside(n dom.Node) bool {
	if !s.htmlMode {
		return false
	}
	switch n.Kind() {
	case nametable.HTMLP, nametable.HTMLSpan, nametable.HTMLA,
		nametable.HTMLH1, nametable.HTMLH2, nametable.HTMLH3,
		nametable.HTMLH4, nametable.HTMLH5, nametable.HTMLH6,
		nametable.HTMLIns, nametable.HTMLDel, nametable.HTMLFigure,
		nametable.HTMLTitle:
		return true
	}
	return false
}

// writeInline writes children with indentation suppressed when the
// parent is a no-whitespace context.
func (s *serializer) writeInline(parent dom.Node, depth int, suppress bool) error {
	if !suppress {
		return s.writeChildren(parent, depth, false)
	}
	for _, c := range parent.Children() {
		if err := s.writeNode(c, depth, false); err != nil {
			return err
		}
	}
	return nil
}

// qualifiedName renders a namespace/local pair for output. In HTML mode,
// HTML-namespace names are written with no prefix; otherwise the
// namespace's declared prefix is used if one exists.
func (s *serializer) qualifiedName(ns nametable.NSID, local string) string {
	info, ok := s.doc.Names.Namespace(ns)
	if !ok || info.URI == nametable.NSNone {
		return local
	}
	if s.htmlMode && info.URI == nametable.NSHTML {
		return local
	}
	if info.Prefix == "" {
		return local
	}
	return info.Prefix + ":" + local
}

func (s *serializer) writeNamespaceDecls() {
	var ids []nametable.NSID
	for id := range s.usedNamespaces {
		if s.isDeclarable(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	wroteDefault := false
	for _, id := range ids {
		info, _ := s.doc.Names.Namespace(id)
		if info.Prefix == "" {
			// A prefixless namespace becomes the default declaration; only
			// one can exist per document.
			if !wroteDefault {
				fmt.Fprintf(s.w, ` xmlns="%s"`, info.URI)
				wroteDefault = true
			}
			continue
		}
		fmt.Fprintf(s.w, ` xmlns:%s="%s"`, info.Prefix, info.URI)
	}
}

func sortedAttrs(attrs []dom.Attr) []dom.Attr {
	out := make([]dom.Attr, len(attrs))
	copy(out, attrs)
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return r.Replace(s)
}
