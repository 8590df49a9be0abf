// Package wordlens implements the concrete lens instances for the
// word-processing vocabulary: document, body, paragraph, run, table,
// bookmark, hyperlink, field, smart tag, drawing, and change tracking.
// Each lens maps one concrete construct to its HTML counterpart and back,
// while everything it doesn't recognize (paragraph marks, section
// properties, proofing errors, foreign namespaces) stays untouched.
package wordlens

import (
	"strconv"
	"strings"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

// ImageDimensioner reports the pixel dimensions of an encoded image. The
// platform query lives outside the core; with a nil dimensioner the
// width/height attributes come from the drawing's wp:extent.
type ImageDimensioner interface {
	Dimensions(data []byte) (widthPx, heightPx int, ok bool)
}

// Converter is the shared state of one get/put/create run: the two
// documents, the package (for hyperlink and image relationships), the
// id-attribute prefix, and the bookmark registry.
type Converter struct {
	Concrete     *dom.Document
	Abstract     *dom.Document
	Pkg          *opc.Package
	DocumentPart string
	IDPrefix     string
	Images       ImageDimensioner

	// generated is the HTML tree a fresh Get of the unedited concrete
	// produces, with change flags computed against the edited tree. Put
	// consults it to skip re-filling subtrees the edit never touched.
	generated *dom.Document

	bookmarks map[string]string // w:id -> w:name
}

// NewConverter creates a converter over an already-parsed concrete tree.
func NewConverter(concrete *dom.Document, pkg *opc.Package, documentPart, idPrefix string) *Converter {
	return &Converter{
		Concrete:     concrete,
		Pkg:          pkg,
		DocumentPart: documentPart,
		IDPrefix:     idPrefix,
		bookmarks:    make(map[string]string),
	}
}

// SetGenerated installs the change-flagged reference HTML tree Put uses
// to decide which subtrees to leave alone.
func (cv *Converter) SetGenerated(generated *dom.Document) { cv.generated = generated }

// assignID stamps abs with the id that correlates it back to con on a
// later Put: the converter's prefix followed by con's sequence number.
func (cv *Converter) assignID(abs, con dom.Node) {
	cv.Abstract.SetAttribute(abs, nametable.HTMLId, cv.IDPrefix+strconv.FormatUint(con.SeqNo(), 10))
}

// lookupConcrete resolves an abstract node's id attribute back to the
// concrete node whose sequence number it encodes. A missing id, a foreign
// prefix, or a stale sequence number all return the zero Node; the
// caller then treats the abstract node as new (create rather than put).
func (cv *Converter) lookupConcrete(abs dom.Node) dom.Node {
	id, ok := abs.GetAttribute(nametable.HTMLId)
	if !ok || !strings.HasPrefix(id, cv.IDPrefix) {
		return dom.Node{}
	}
	seq, err := strconv.ParseUint(id[len(cv.IDPrefix):], 10, 64)
	if err != nil {
		return dom.Node{}
	}
	con, found := cv.Concrete.NodeBySeq(seq)
	if !found {
		return dom.Node{}
	}
	return con
}

// unchangedSince reports whether the subtree abs corresponds to came
// through the edit untouched, per the change flags recorded on the generated
// tree. With no generated tree installed every subtree counts as changed.
func (cv *Converter) unchangedSince(abs dom.Node) bool {
	if cv.generated == nil {
		return false
	}
	id, ok := abs.GetAttribute(nametable.HTMLId)
	if !ok {
		return false
	}
	gen, found := cv.generated.NodeByID(id)
	if !found {
		return false
	}
	return !cv.generated.Changed(gen) && !cv.generated.ChildrenChanged(gen)
}

// isWhitespace reports whether a text node holds only whitespace.
func isWhitespace(n dom.Node) bool {
	if n.Kind() != nametable.TagText {
		return false
	}
	return strings.TrimSpace(n.Value()) == ""
}

// NormalizeHTML prepares an edited HTML tree for Put: whitespace-only
// text nodes between block-level elements are dropped so indentation
// introduced by a serializer or an editor never reads as content.
func NormalizeHTML(doc *dom.Document) {
	blockParents := map[nametable.Tag]bool{
		nametable.HTMLHtml:  true,
		nametable.HTMLHead:  true,
		nametable.HTMLBody:  true,
		nametable.HTMLTable: true,
		nametable.HTMLTbody: true,
		nametable.HTMLTr:    true,
		nametable.HTMLTd:    true,
		nametable.HTMLTh:    true,
		nametable.HTMLFigure: true,
	}
	var walk func(n dom.Node)
	walk = func(n dom.Node) {
		strip := n.Kind() == nametable.TagDocument || blockParents[n.Kind()]
		for c := n.FirstChild(); !c.IsZero(); {
			next := c.Next()
			if strip && isWhitespace(c) {
				doc.RemoveNode(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(doc.Root())
}
