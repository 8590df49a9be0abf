package docxhtml

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/internal/xmlio"
	"github.com/uxwrite/docxhtml/internal/xmlutil"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

const wNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const relNS = "http://schemas.openxmlformats.org/package/2006/relationships"

func docXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + wNS + `"><w:body>` + body + `</w:body></w:document>`
}

func buildDocx(t *testing.T, parts map[string]string) *opc.Package {
	t.Helper()
	if _, ok := parts["_rels/.rels"]; !ok {
		parts["_rels/.rels"] = `<Relationships xmlns="` + relNS + `">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`
	}
	if _, ok := parts["[Content_Types].xml"]; !ok {
		parts["[Content_Types].xml"] = `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`</Types>`
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	pkg, err := opc.OpenMemory(buf.Bytes())
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	return pkg
}

func serializeHTML(t *testing.T, html *dom.Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := xmlio.Serialize(&buf, html, xmlio.SerializeOptions{}); err != nil {
		t.Fatalf("serialize html: %v", err)
	}
	return buf.String()
}

func reparseHTML(t *testing.T, html *dom.Document) *dom.Document {
	t.Helper()
	text := serializeHTML(t, html)
	res, err := xmlio.ParseIntoIDDocument(strings.NewReader(text), nametable.HTMLId)
	if err != nil {
		t.Fatalf("reparse html: %v\n%s", err, text)
	}
	return res.Document
}

// assertSemanticallyEqual compares two XML parts modulo attribute order
// and whitespace.
func assertSemanticallyEqual(t *testing.T, want, got []byte, context string) {
	t.Helper()
	diffs, err := xmlutil.CompareXMLWithDetails(want, got, nil)
	if err != nil {
		t.Fatalf("%s: compare: %v", context, err)
	}
	if len(diffs) != 0 {
		for _, d := range diffs {
			t.Errorf("%s: %s at %s: expected %q, got %q", context, d.Type, d.Path, d.Expected, d.Got)
		}
		t.Fatalf("%s: %d differences\nwant:\n%s\ngot:\n%s", context, len(diffs), want, got)
	}
}

func TestGetProducesHeadingHTML(t *testing.T) {
	pkg := buildDocx(t, map[string]string{
		"word/document.xml": docXML(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Introduction</w:t></w:r></w:p>`),
	})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	out := serializeHTML(t, html)
	if !strings.Contains(out, `<h1 id="x`) {
		t.Errorf("expected an id-stamped h1:\n%s", out)
	}
	if !strings.Contains(out, ">Introduction</span></h1>") {
		t.Errorf("expected the heading text inside the run span:\n%s", out)
	}
}

// An unedited get/put cycle leaves the document part semantically
// unchanged, including the RSID stripping the loader applies.
func TestPutIdentityOnUnchangedHTML(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>One</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Two</w:t></w:r><w:bookmarkStart w:id="1" w:name="m"/><w:r><w:t>Three</w:t></w:r><w:bookmarkEnd w:id="1"/></w:p>` +
		`<w:sectPr/>`
	pkg := buildDocx(t, map[string]string{"word/document.xml": docXML(body)})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := Put(pkg, reparseHTML(t, html), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := pkg.ReadPart("word/document.xml")
	if err != nil {
		t.Fatalf("ReadPart: %v", err)
	}
	assertSemanticallyEqual(t, []byte(docXML(body)), got, "unchanged round trip")
}

// Putting the same edit twice (with a Get in between, since sequence
// numbers change) converges: the second cycle is a no-op.
func TestPutIdempotence(t *testing.T) {
	body := `<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`
	pkg := buildDocx(t, map[string]string{"word/document.xml": docXML(body)})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Edit: change the paragraph text.
	body1 := html.Root().ChildWithTag(nametable.HTMLHtml).ChildWithTag(nametable.HTMLBody)
	span := body1.ChildWithTag(nametable.HTMLP).FirstChild()
	span.FirstChild().SetValue("Goodbye")
	if err := Put(pkg, reparseHTML(t, html), nil); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	first, _ := pkg.ReadPart("word/document.xml")

	html2, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if err := Put(pkg, reparseHTML(t, html2), nil); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	second, _ := pkg.ReadPart("word/document.xml")

	assertSemanticallyEqual(t, first, second, "idempotent put")
	if !strings.Contains(string(second), "Goodbye") {
		t.Errorf("edit lost:\n%s", second)
	}
}

func TestCreateBuildsMinimalPackage(t *testing.T) {
	htmlText := `<html xmlns="http://www.w3.org/1999/xhtml"><head></head><body><p>Hello</p><p>World</p></body></html>`
	res, err := xmlio.ParseIntoIDDocument(strings.NewReader(htmlText), nametable.HTMLId)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	pkg, err := Create(res.Document, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	data, err := pkg.ReadPart("word/document.xml")
	if err != nil {
		t.Fatalf("document part missing: %v", err)
	}
	out := string(data)
	if got := strings.Count(out, "<w:p>"); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d:\n%s", got, out)
	}
	for _, want := range []string{"Hello", "World"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s:\n%s", want, out)
		}
	}

	// The fresh package must survive a save/reopen cycle.
	var buf bytes.Buffer
	if err := pkg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	reopened, err := opc.OpenMemory(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.HasPart("word/document.xml") || !reopened.HasPart("[Content_Types].xml") {
		t.Errorf("reopened package missing core parts: %v", reopened.Parts())
	}
	rels, err := reopened.Relationships("")
	if err != nil || len(rels) == 0 {
		t.Errorf("reopened package has no root relationships: %v", err)
	}
}

// RSID attributes are stripped on load and never re-emitted.
func TestRSIDsStripped(t *testing.T) {
	body := `<w:p w:rsidR="00AB12CD" w:rsidRDefault="00AB12CD"><w:r><w:t>text</w:t></w:r></w:p>`
	pkg := buildDocx(t, map[string]string{"word/document.xml": docXML(body)})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := Put(pkg, reparseHTML(t, html), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := pkg.ReadPart("word/document.xml")
	if strings.Contains(string(got), "rsid") {
		t.Errorf("RSIDs survived the round trip:\n%s", got)
	}
}

// A CSS edit that requests numbering on every heading level rebuilds the
// numbering part with six chained levels.
func TestNumberingRebuildEndToEnd(t *testing.T) {
	stylesXML := `<?xml version="1.0"?>` +
		`<w:styles xmlns:w="` + wNS + `">` +
		`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/>` +
		`<w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr></w:style>` +
		`</w:styles>`
	numberingXML := `<?xml version="1.0"?>` +
		`<w:numbering xmlns:w="` + wNS + `">` +
		`<w:abstractNum w:abstractNumId="1"><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1"/></w:lvl></w:abstractNum>` +
		`<w:num w:numId="1"><w:abstractNumId w:val="1"/></w:num>` +
		`</w:numbering>`
	docRels := `<Relationships xmlns="` + relNS + `">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
		`</Relationships>`

	pkg := buildDocx(t, map[string]string{
		"word/document.xml":            docXML(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>`),
		"word/styles.xml":              stylesXML,
		"word/numbering.xml":           numberingXML,
		"word/_rels/document.xml.rels": docRels,
	})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Edit the embedded CSS: request counters on all six heading levels.
	root := html.Root().ChildWithTag(nametable.HTMLHtml)
	head := root.ChildWithTag(nametable.HTMLHead)
	styleElem := head.ChildWithTag(nametable.HTMLStyleElem)
	if styleElem.IsZero() {
		styleElem = html.CreateElement(nametable.HTMLStyleElem)
		html.AppendChild(head, styleElem)
	}
	var css strings.Builder
	css.WriteString(styleElem.TextContent())
	for level := 1; level <= 6; level++ {
		var content strings.Builder
		for k := 1; k <= level; k++ {
			if k > 1 {
				content.WriteString(` "." `)
			}
			content.WriteString("counter(h")
			content.WriteString(string(rune('0' + k)))
			content.WriteString(")")
		}
		css.WriteString("h")
		css.WriteString(string(rune('0' + level)))
		css.WriteString("::before { content: ")
		css.WriteString(content.String())
		css.WriteString(` " "; }` + "\n")
	}
	for c := styleElem.FirstChild(); !c.IsZero(); c = styleElem.FirstChild() {
		html.RemoveNode(c)
	}
	html.AppendChild(styleElem, html.CreateText(css.String()))

	if err := Put(pkg, reparseHTML(t, html), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	numbering, err := pkg.ReadPart("word/numbering.xml")
	if err != nil {
		t.Fatalf("numbering part: %v", err)
	}
	// One level survives from the original definition; the rebuilt
	// definition carries all six.
	if got := strings.Count(string(numbering), "<w:lvl "); got != 7 {
		t.Errorf("expected 1 original + 6 rebuilt levels, got %d:\n%s", got, numbering)
	}
	if !strings.Contains(string(numbering), `w:val="%1.%2.%3.%4.%5.%6"`) {
		t.Errorf("deepest level not chained:\n%s", numbering)
	}

	styles, err := pkg.ReadPart("word/styles.xml")
	if err != nil {
		t.Fatalf("styles part: %v", err)
	}
	if got := strings.Count(string(styles), "<w:numPr>"); got != 6 {
		t.Errorf("expected numPr on all six heading styles, got %d:\n%s", got, styles)
	}
}

// An unknown-namespace element under the body round-trips through the
// whole package pipeline.
func TestUnknownNamespaceRoundTrip(t *testing.T) {
	body := `<w:p><w:r><w:t>text</w:t></w:r></w:p><custom:thing xmlns:custom="urn:x" custom:a="1"/>`
	pkg := buildDocx(t, map[string]string{"word/document.xml": docXML(body)})

	html, err := Get(pkg, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := Put(pkg, reparseHTML(t, html), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := pkg.ReadPart("word/document.xml")
	if !strings.Contains(string(got), "custom:thing") || !strings.Contains(string(got), `custom:a="1"`) {
		t.Errorf("unknown element not preserved:\n%s", got)
	}
}
