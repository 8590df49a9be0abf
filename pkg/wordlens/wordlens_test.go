package wordlens

import (
	"bytes"
	"strings"
	"testing"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/internal/xmlio"
)

func parseConcrete(t *testing.T, body string) *dom.Document {
	t.Helper()
	xml := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
	res, err := xmlio.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("parse concrete: %v", err)
	}
	return res.Document
}

func serialize(t *testing.T, doc *dom.Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := xmlio.Serialize(&buf, doc, xmlio.SerializeOptions{}); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.String()
}

func getHTML(t *testing.T, con *dom.Document) (*Converter, *dom.Document) {
	t.Helper()
	cv := NewConverter(con, nil, "word/document.xml", "x")
	html, err := cv.Get("")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return cv, html
}

func htmlBody(t *testing.T, html *dom.Document) dom.Node {
	t.Helper()
	root := html.Root().ChildWithTag(nametable.HTMLHtml)
	if root.IsZero() {
		t.Fatal("no <html> root")
	}
	body := root.ChildWithTag(nametable.HTMLBody)
	if body.IsZero() {
		t.Fatal("no <body>")
	}
	return body
}

// A Heading1 paragraph surfaces as <h1 id="xN">text</h1>, and putting
// the unedited HTML back reproduces the original paragraph.
func TestHeadingRoundTrip(t *testing.T) {
	src := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Introduction</w:t></w:r></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	body := htmlBody(t, html)
	h1 := body.ChildWithTag(nametable.HTMLH1)
	if h1.IsZero() {
		t.Fatalf("expected <h1>, body serialized as: %s", serialize(t, html))
	}
	if got := h1.TextContent(); got != "Introduction" {
		t.Errorf("h1 text = %q, want Introduction", got)
	}
	id, ok := h1.GetAttribute(nametable.HTMLId)
	if !ok || !strings.HasPrefix(id, "x") {
		t.Errorf("h1 id = %q, want x-prefixed", id)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out := serialize(t, con2)
	for _, want := range []string{`<w:pStyle w:val="Heading1"/>`, `<w:t>Introduction</w:t>`} {
		if !strings.Contains(out, want) {
			t.Errorf("round-tripped XML missing %s:\n%s", want, out)
		}
	}
}

// Two fresh paragraphs created from HTML become two w:p elements, each
// wrapping a single run.
func TestCreateParagraphsFromHTML(t *testing.T) {
	con := parseConcrete(t, ``)

	html := dom.New()
	html.SetIDAttribute(nametable.HTMLId)
	root := html.CreateElement(nametable.HTMLHtml)
	html.AppendChild(html.Root(), root)
	body := html.CreateElement(nametable.HTMLBody)
	html.AppendChild(root, body)
	for _, text := range []string{"Hello", "World"} {
		p := html.CreateElement(nametable.HTMLP)
		html.AppendChild(p, html.CreateText(text))
		html.AppendChild(body, p)
	}

	cv := NewConverter(con, nil, "word/document.xml", "x")
	if err := cv.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out := serialize(t, con)
	if got := strings.Count(out, "<w:p>"); got != 2 {
		t.Fatalf("expected 2 paragraphs, got %d:\n%s", got, out)
	}
	for _, want := range []string{"<w:r><w:t>Hello</w:t></w:r>", "<w:r><w:t>World</w:t></w:r>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

// Swapping two cells in the HTML reorders the w:tc elements in place.
func TestTableCellSwap(t *testing.T) {
	src := `<w:tbl>` +
		`<w:tr><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>3</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>4</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	body := htmlBody(t, html)
	table := body.ChildWithTag(nametable.HTMLTable)
	tbody := table.ChildWithTag(nametable.HTMLTbody)
	firstRow := tbody.ChildWithTag(nametable.HTMLTr)
	cellA := firstRow.FirstChild()
	cellB := cellA.Next()
	// Swap: move cell A after cell B.
	html.InsertBefore(firstRow, cellA, dom.Node{})
	_ = cellB

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out := serialize(t, con2)
	i2 := strings.Index(out, "<w:t>2</w:t>")
	i1 := strings.Index(out, "<w:t>1</w:t>")
	i3 := strings.Index(out, "<w:t>3</w:t>")
	if i2 < 0 || i1 < 0 || i2 > i1 {
		t.Errorf("expected cell 2 before cell 1 after swap:\n%s", out)
	}
	if i1 > i3 {
		t.Errorf("swapped cells leaked past the first row:\n%s", out)
	}
}

// Deleting the first run keeps the bookmark delimiters attached to the
// surviving content, with w:pPr staying first.
func TestHiddenSiblingPreservation(t *testing.T) {
	src := `<w:p><w:pPr/><w:r><w:t>A</w:t></w:r>` +
		`<w:bookmarkStart w:id="1" w:name="m"/><w:r><w:t>B</w:t></w:r><w:bookmarkEnd w:id="1"/></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	body := htmlBody(t, html)
	p := body.ChildWithTag(nametable.HTMLP)
	spans := p.Children()
	if len(spans) != 3 {
		t.Fatalf("expected run+bookmark+run spans, got %d: %s", len(spans), serialize(t, html))
	}
	if class, _ := spans[1].GetAttribute(nametable.HTMLClass); class != classBookmark {
		t.Fatalf("middle span class = %q, want %s", class, classBookmark)
	}
	html.RemoveNode(spans[0])

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out := serialize(t, con2)
	wantOrder := []string{"<w:pPr", "<w:bookmarkStart", "<w:t>B</w:t>", "<w:bookmarkEnd"}
	pos := -1
	for _, marker := range wantOrder {
		next := strings.Index(out, marker)
		if next < 0 || next < pos {
			t.Fatalf("expected order %v, got:\n%s", wantOrder, out)
		}
		pos = next
	}
	if strings.Contains(out, "<w:t>A</w:t>") {
		t.Errorf("deleted run survived:\n%s", out)
	}
}

// An element from an unrecognized namespace under w:body is not visible
// to any lens and survives an unedited round trip untouched.
func TestUnknownNamespacePreserved(t *testing.T) {
	src := `<w:p><w:r><w:t>text</w:t></w:r></w:p><custom:thing xmlns:custom="urn:x"/>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out := serialize(t, con2)
	if !strings.Contains(out, "custom:thing") {
		t.Errorf("unknown-namespace element dropped:\n%s", out)
	}
}

// Adjacent runs with the same formatting coalesce into a single span on
// Get.
func TestRunCoalescing(t *testing.T) {
	src := `<w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:t>lo</w:t></w:r></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	p := htmlBody(t, html).ChildWithTag(nametable.HTMLP)
	spans := p.Children()
	if len(spans) != 1 {
		t.Fatalf("expected 1 coalesced span, got %d", len(spans))
	}
	if got := spans[0].TextContent(); got != "Hello" {
		t.Errorf("coalesced text = %q, want Hello", got)
	}
}

// Bold/italic formatting survives the span style attribute in both
// directions.
func TestRunFormattingRoundTrip(t *testing.T) {
	src := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	span := htmlBody(t, html).ChildWithTag(nametable.HTMLP).FirstChild()
	style, _ := span.GetAttribute(nametable.HTMLStyle)
	if !strings.Contains(style, "font-weight: bold") {
		t.Fatalf("span style = %q, want bold", style)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out := serialize(t, con2)
	if !strings.Contains(out, "<w:b/>") {
		t.Errorf("w:b dropped on put:\n%s", out)
	}
}

// A merged 2x1 cell surfaces as colspan and is rebuilt with gridSpan.
func TestTableColspan(t *testing.T) {
	src := `<w:tbl>` +
		`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>wide</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	table := htmlBody(t, html).ChildWithTag(nametable.HTMLTable)
	td := table.ChildWithTag(nametable.HTMLTbody).ChildWithTag(nametable.HTMLTr).ChildWithTag(nametable.HTMLTd)
	if colspan, _ := td.GetAttribute(nametable.HTMLColspan); colspan != "2" {
		t.Fatalf("colspan = %q, want 2", colspan)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if out := serialize(t, con2); !strings.Contains(out, `<w:gridSpan w:val="2"/>`) {
		t.Errorf("gridSpan dropped:\n%s", out)
	}
}

// A vertically merged cell surfaces as rowspan, and the continuation
// cell is rebuilt on put.
func TestTableRowspan(t *testing.T) {
	src := `<w:tbl>` +
		`<w:tr><w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>tall</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>r1</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>` +
		`<w:tc><w:p><w:r><w:t>r2</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	table := htmlBody(t, html).ChildWithTag(nametable.HTMLTable)
	tbody := table.ChildWithTag(nametable.HTMLTbody)
	firstTd := tbody.ChildWithTag(nametable.HTMLTr).ChildWithTag(nametable.HTMLTd)
	if rowspan, _ := firstTd.GetAttribute(nametable.HTMLRowspan); rowspan != "2" {
		t.Fatalf("rowspan = %q, want 2", rowspan)
	}
	rows := tbody.Children()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if tds := rows[1].Children(); len(tds) != 1 {
		t.Fatalf("second row should only surface the unmerged cell, got %d tds", len(tds))
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out := serialize(t, con2)
	if !strings.Contains(out, `<w:vMerge w:val="restart"/>`) {
		t.Errorf("vMerge restart dropped:\n%s", out)
	}
	if !strings.Contains(out, `<w:vMerge/>`) {
		t.Errorf("continuation cell not rebuilt:\n%s", out)
	}
}

// Change-tracking wrappers pass through as <ins>/<del>.
func TestChangeTrackingPassThrough(t *testing.T) {
	src := `<w:p><w:ins w:id="5"><w:r><w:t>added</w:t></w:r></w:ins>` +
		`<w:del w:id="6"><w:r><w:delText>gone</w:delText></w:r></w:del></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	p := htmlBody(t, html).ChildWithTag(nametable.HTMLP)
	ins := p.ChildWithTag(nametable.HTMLIns)
	del := p.ChildWithTag(nametable.HTMLDel)
	if ins.IsZero() || del.IsZero() {
		t.Fatalf("expected <ins> and <del>: %s", serialize(t, html))
	}
	if got := ins.TextContent(); got != "added" {
		t.Errorf("ins text = %q", got)
	}
	if got := del.TextContent(); got != "gone" {
		t.Errorf("del text = %q", got)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out := serialize(t, con2)
	if !strings.Contains(out, `<w:ins w:id="5">`) || !strings.Contains(out, `<w:del w:id="6">`) {
		t.Errorf("change-tracking attributes dropped:\n%s", out)
	}
}

// A field surfaces with its instruction captured and updates it on put.
func TestFieldRoundTrip(t *testing.T) {
	src := `<w:p><w:fldSimple w:instr=" PAGE "><w:r><w:t>1</w:t></w:r></w:fldSimple></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	span := htmlBody(t, html).ChildWithTag(nametable.HTMLP).FirstChild()
	if class, _ := span.GetAttribute(nametable.HTMLClass); class != classField {
		t.Fatalf("field span class = %q", class)
	}
	instrTag := html.Names.TagForName(nametable.NSNone, "data-instr")
	if instr, _ := span.GetAttribute(instrTag); instr != " PAGE " {
		t.Fatalf("data-instr = %q", instr)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if out := serialize(t, con2); !strings.Contains(out, `w:instr=" PAGE "`) {
		t.Errorf("field instruction dropped:\n%s", out)
	}
}

// Smart tags are transparent wrappers; their property element survives
// put as a hidden child.
func TestSmartTagTransparent(t *testing.T) {
	src := `<w:p><w:smartTag><w:smartTagPr/><w:r><w:t>term</w:t></w:r></w:smartTag></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	span := htmlBody(t, html).ChildWithTag(nametable.HTMLP).FirstChild()
	if span.Kind() != nametable.HTMLSpan {
		t.Fatalf("expected transparent span")
	}
	if got := span.TextContent(); got != "term" {
		t.Errorf("smart tag text = %q", got)
	}

	con2 := parseConcrete(t, src)
	cv2 := NewConverter(con2, nil, "word/document.xml", "x")
	if err := cv2.Put(html); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if out := serialize(t, con2); !strings.Contains(out, "<w:smartTagPr/>") {
		t.Errorf("smartTagPr dropped:\n%s", out)
	}
}

// An outline level without a pStyle still classifies the paragraph as a
// heading; outline levels are 0-based.
func TestOutlineLevelFallback(t *testing.T) {
	src := `<w:p><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:r><w:t>Sub</w:t></w:r></w:p>`
	con := parseConcrete(t, src)
	_, html := getHTML(t, con)

	if h2 := htmlBody(t, html).ChildWithTag(nametable.HTMLH2); h2.IsZero() {
		t.Errorf("expected <h2> from outlineLvl 1: %s", serialize(t, html))
	}
}
