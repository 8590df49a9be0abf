// Package docxhtml is the top-level orchestrator: Get derives an HTML
// document from a word-processing package, Put reconciles an edited HTML
// document back into the original package, and Create builds a fresh
// package from HTML alone. The package-path facades in files.go wrap the
// three around file I/O.
package docxhtml

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/uxwrite/docxhtml/internal/changedetect"
	"github.com/uxwrite/docxhtml/internal/docxerr"
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/internal/numbering"
	"github.com/uxwrite/docxhtml/internal/xmlio"
	"github.com/uxwrite/docxhtml/pkg/opc"
	"github.com/uxwrite/docxhtml/pkg/wordlens"
)

// Relationship type URIs and content types for the parts the orchestrator
// touches.
const (
	officeDocumentRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	stylesRelType         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	numberingRelType      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"

	documentContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	stylesContentType    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	numberingContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
)

const defaultDocumentPart = "word/document.xml"

const xmlProlog = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Options controls a conversion run. The zero value is usable.
type Options struct {
	// IDPrefix is the document-scoped prefix of every HTML id attribute;
	// the decimal that follows it is the concrete node's sequence number.
	IDPrefix string

	// Indent, when non-empty, pretty-prints serialized output.
	Indent string

	// Images supplies pixel dimensions for embedded images. Nil means
	// dimensions fall back to the drawing's declared extent.
	Images wordlens.ImageDimensioner
}

func (o *Options) applyDefaults() {
	if o.IDPrefix == "" {
		o.IDPrefix = "x"
	}
}

func resolveOptions(opts *Options) Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()
	return o
}

// documentPartPath resolves the package's main document part through the
// root-level officeDocument relationship, defaulting to
// word/document.xml when the package has no relationships yet.
func documentPartPath(pkg *opc.Package) (string, error) {
	rels, err := pkg.Relationships("")
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.Type == officeDocumentRelType {
			return strings.TrimPrefix(rel.Target, "/"), nil
		}
	}
	if pkg.HasPart(defaultDocumentPart) {
		return defaultDocumentPart, nil
	}
	return "", docxerr.WrapPath("docxhtml", "document_part", defaultDocumentPart, docxerr.ErrNotFound)
}

// relatedPartPath resolves a part related to the document part by type,
// e.g. the styles or numbering part. Returns "" when absent.
func relatedPartPath(pkg *opc.Package, docPart, relType string) string {
	rels, err := pkg.Relationships(docPart)
	if err != nil {
		return ""
	}
	for _, rel := range rels {
		if rel.Type == relType {
			return resolveRelTarget(docPart, rel.Target)
		}
	}
	return ""
}

func resolveRelTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	if i := strings.LastIndexByte(sourcePart, '/'); i >= 0 {
		return sourcePart[:i+1] + target
	}
	return target
}

// parsePart parses an XML part into a DOM, or returns nil when the part
// doesn't exist.
func parsePart(pkg *opc.Package, path string) (*dom.Document, error) {
	if path == "" || !pkg.HasPart(path) {
		return nil, nil
	}
	data, err := pkg.ReadPart(path)
	if err != nil {
		return nil, err
	}
	res, err := xmlio.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, docxerr.WrapPath("docxhtml", "parse", path, err)
	}
	for _, w := range res.Warnings {
		slog.Debug("parse warning", "part", path, "warning", w)
	}
	return res.Document, nil
}

func serializeBytes(path string, doc *dom.Document, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlProlog)
	if err := xmlio.Serialize(&buf, doc, xmlio.SerializeOptions{Indent: indent}); err != nil {
		return nil, docxerr.WrapPath("docxhtml", "serialize", path, err)
	}
	return buf.Bytes(), nil
}

func serializePart(pkg *opc.Package, path string, doc *dom.Document, indent string) error {
	data, err := serializeBytes(path, doc, indent)
	if err != nil {
		return err
	}
	pkg.WritePart(path, data)
	return nil
}

// Get reads the concrete package and derives its HTML representation.
// Every element originating from a concrete node carries an id of the
// shape <prefix><seqno>; the styles part surfaces as CSS text in the
// head's <style> element.
func Get(pkg *opc.Package, opts *Options) (*dom.Document, error) {
	o := resolveOptions(opts)

	docPart, err := documentPartPath(pkg)
	if err != nil {
		return nil, err
	}
	conDoc, err := parsePart(pkg, docPart)
	if err != nil {
		return nil, err
	}
	if conDoc == nil {
		return nil, docxerr.WrapPath("docxhtml", "get", docPart, docxerr.ErrNotFound)
	}

	stylesDoc, err := parsePart(pkg, relatedPartPath(pkg, docPart, stylesRelType))
	if err != nil {
		return nil, err
	}
	sheet := wordlens.SheetFromStyles(stylesDoc)

	cv := wordlens.NewConverter(conDoc, pkg, docPart, o.IDPrefix)
	cv.Images = o.Images
	return cv.Get(sheet.CopyText())
}

// Put reconciles an edited HTML document back into the original package.
// The HTML must descend from a prior Get of the same package: its ids
// encode the concrete tree's sequence numbers. Ids that no longer
// resolve are treated as new content rather than an error.
func Put(pkg *opc.Package, html *dom.Document, opts *Options) error {
	o := resolveOptions(opts)

	docPart, err := documentPartPath(pkg)
	if err != nil {
		return err
	}
	conDoc, err := parsePart(pkg, docPart)
	if err != nil {
		return err
	}
	if conDoc == nil {
		return docxerr.WrapPath("docxhtml", "put", docPart, docxerr.ErrNotFound)
	}

	wordlens.NormalizeHTML(html)

	// Re-derive the reference HTML of the unedited concrete and diff it
	// against the edit, so Put can leave untouched subtrees alone.
	// Sequence numbers are deterministic per parse, so the reference
	// carries the same ids the edited tree descends from.
	stylesPart := relatedPartPath(pkg, docPart, stylesRelType)
	stylesDoc, err := parsePart(pkg, stylesPart)
	if err != nil {
		return err
	}
	sheet := wordlens.SheetFromStyles(stylesDoc)

	refCv := wordlens.NewConverter(conDoc, pkg, docPart, o.IDPrefix)
	generated, err := refCv.Get(sheet.CopyText())
	if err != nil {
		return err
	}
	genBody, editedBody := bodyOf(generated), bodyOf(html)
	if !genBody.IsZero() && !editedBody.IsZero() {
		changedetect.Compute(genBody, editedBody, nametable.HTMLId)
	}

	cv := wordlens.NewConverter(conDoc, pkg, docPart, o.IDPrefix)
	cv.Images = o.Images
	cv.SetGenerated(generated)
	if err := cv.Put(html); err != nil {
		return err
	}

	if err := reconcileStyles(pkg, docPart, html, stylesDoc, stylesPart, o.Indent); err != nil {
		return err
	}

	return serializePart(pkg, docPart, conDoc, o.Indent)
}

func bodyOf(doc *dom.Document) dom.Node {
	html := doc.Root().ChildWithTag(nametable.HTMLHtml)
	if html.IsZero() {
		return doc.Root().ChildWithTag(nametable.HTMLBody)
	}
	return html.ChildWithTag(nametable.HTMLBody)
}

// reconcileStyles pushes the edited HTML's CSS back into the styles and
// numbering parts: the sheet updates style declarations, and the
// numbering reconciler rebuilds heading list levels the CSS now asks for.
func reconcileStyles(pkg *opc.Package, docPart string, html *dom.Document, stylesDoc *dom.Document, stylesPart, indent string) error {
	css := embeddedCSS(html)
	if css == "" {
		return nil
	}

	sheet := wordlens.SheetFromStyles(stylesDoc)
	if err := sheet.UpdateFromText(css); err != nil {
		return err
	}

	numberingPart := relatedPartPath(pkg, docPart, numberingRelType)
	numberingDOM, err := parsePart(pkg, numberingPart)
	if err != nil {
		return err
	}
	var numDoc *numbering.Document
	if numberingDOM != nil {
		numDoc = numbering.FromDOM(numberingDOM.Root())
	} else {
		numDoc = numbering.NewDocument()
	}

	def, err := numbering.Reconcile(sheet, numDoc)
	if err != nil {
		return err
	}

	if def != nil {
		data, err := serializeBytes("word/numbering.xml", numDoc.ToDOM(), indent)
		if err != nil {
			return err
		}
		if numberingPart == "" {
			if _, err := pkg.AddRelatedPart(docPart, "word/numbering.xml", numberingContentType, numberingRelType, data); err != nil {
				return err
			}
		} else {
			pkg.WritePart(numberingPart, data)
		}
	}

	if stylesDoc == nil {
		stylesDoc = dom.New()
	}
	wordlens.ApplySheetToStyles(sheet, stylesDoc)
	data, err := serializeBytes("word/styles.xml", stylesDoc, indent)
	if err != nil {
		return err
	}
	if stylesPart == "" {
		_, err := pkg.AddRelatedPart(docPart, "word/styles.xml", stylesContentType, stylesRelType, data)
		return err
	}
	pkg.WritePart(stylesPart, data)
	return nil
}

// embeddedCSS extracts the text of the head's <style> element.
func embeddedCSS(html *dom.Document) string {
	root := html.Root().ChildWithTag(nametable.HTMLHtml)
	if root.IsZero() {
		return ""
	}
	head := root.ChildWithTag(nametable.HTMLHead)
	if head.IsZero() {
		return ""
	}
	styleElem := head.ChildWithTag(nametable.HTMLStyleElem)
	if styleElem.IsZero() {
		return ""
	}
	return styleElem.TextContent()
}

// Create builds a fresh package from HTML alone: a minimal part set
// seeded with an empty document body, then a Put-style reconciliation in
// which every HTML element creates its concrete counterpart.
func Create(html *dom.Document, opts *Options) (*opc.Package, error) {
	o := resolveOptions(opts)

	pkg := opc.New()
	if err := pkg.SetContentType(defaultDocumentPart, documentContentType); err != nil {
		return nil, err
	}
	if _, err := pkg.AddRelationship("", officeDocumentRelType, defaultDocumentPart, ""); err != nil {
		return nil, err
	}

	conDoc := dom.New()
	wdoc := conDoc.CreateElement(nametable.WordDocument)
	conDoc.AppendChild(conDoc.Root(), wdoc)
	conDoc.AppendChild(wdoc, conDoc.CreateElement(nametable.WordBody))

	wordlens.NormalizeHTML(html)

	cv := wordlens.NewConverter(conDoc, pkg, defaultDocumentPart, o.IDPrefix)
	cv.Images = o.Images
	if err := cv.Put(html); err != nil {
		return nil, err
	}

	if err := reconcileStyles(pkg, defaultDocumentPart, html, nil, "", o.Indent); err != nil {
		return nil, err
	}

	if err := serializePart(pkg, defaultDocumentPart, conDoc, o.Indent); err != nil {
		return nil, err
	}
	return pkg, nil
}
