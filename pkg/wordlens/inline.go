package wordlens

import (
	"strconv"
	"strings"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/lens"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// Class names marking constructs that round-trip to specific word
// elements.
const (
	classBookmark = "uxwrite-bookmark"
	classField    = "uxwrite-field"
)

const hyperlinkRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
const imageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// inlineLens handles the children of a paragraph: runs, hyperlinks,
// bookmarks, fields, smart tags, change-tracking wrappers, and drawings.
// Everything else at run level (rPr, proofErr, bookmarkEnd, foreign
// namespaces) is invisible and preserved.
type inlineLens struct {
	cv *Converter

	// inDel is set while reconciling inside a w:del wrapper, where run
	// text serializes as w:delText rather than w:t.
	inDel bool
}

func (l inlineLens) IsVisible(con dom.Node) bool {
	switch con.Kind() {
	case nametable.WordR, nametable.WordIns, nametable.WordDel,
		nametable.WordHyperlink, nametable.WordBookmarkStart,
		nametable.WordFldSimple, nametable.WordSmartTag:
		return true
	}
	return false
}

func (l inlineLens) Get(con dom.Node) (dom.Node, bool) {
	switch con.Kind() {
	case nametable.WordR:
		if hasDrawing(con) {
			return l.getImage(con)
		}
		return l.getRun(con)
	case nametable.WordIns:
		return l.getTracked(con, nametable.HTMLIns)
	case nametable.WordDel:
		return l.getTracked(con, nametable.HTMLDel)
	case nametable.WordHyperlink:
		return l.getHyperlink(con)
	case nametable.WordBookmarkStart:
		return l.getBookmark(con)
	case nametable.WordFldSimple:
		return l.getField(con)
	case nametable.WordSmartTag:
		return l.getSmartTag(con)
	}
	return dom.Node{}, false
}

func (l inlineLens) Put(abs, con dom.Node) {
	switch con.Kind() {
	case nametable.WordR:
		if hasDrawing(con) {
			l.putImage(abs, con)
		} else {
			l.putRun(abs, con)
		}
	case nametable.WordIns, nametable.WordSmartTag:
		lens.ContainerPut(l, abs, con, l.cv.lookupConcrete)
	case nametable.WordDel:
		lens.ContainerPut(inlineLens{cv: l.cv, inDel: true}, abs, con, l.cv.lookupConcrete)
	case nametable.WordHyperlink:
		l.putHyperlink(abs, con)
	case nametable.WordBookmarkStart:
		// Collapsed span; name and id live on the concrete side.
	case nametable.WordFldSimple:
		l.putField(abs, con)
	}
}

func (l inlineLens) Create(abs dom.Node) (dom.Node, bool) {
	switch abs.Kind() {
	case nametable.TagText:
		return l.createRunFromText(abs.Value())
	case nametable.HTMLSpan:
		class, _ := abs.GetAttribute(nametable.HTMLClass)
		switch class {
		case classBookmark:
			return l.createBookmark(abs)
		case classField:
			return l.createField(abs)
		}
		return l.createRun(abs)
	case nametable.HTMLA:
		return l.createHyperlink(abs)
	case nametable.HTMLIns:
		return l.createTracked(abs, nametable.WordIns)
	case nametable.HTMLDel:
		return l.createTracked(abs, nametable.WordDel)
	case nametable.HTMLImg:
		return l.createImage(abs)
	case nametable.HTMLBr:
		// A bare line break becomes a run holding w:br.
		doc := l.cv.Concrete
		r := doc.CreateElement(nametable.WordR)
		doc.AppendChild(r, doc.CreateElement(doc.Names.TagForName(nametable.NSWordproc, "br")))
		return r, true
	}
	return dom.Node{}, false
}

func (l inlineLens) Remove(con dom.Node) {
	if con.Kind() != nametable.WordBookmarkStart {
		return
	}
	id, _ := con.GetAttribute(nametable.WordID)
	delete(l.cv.bookmarks, id)
	// The paired end marker is invisible to reconciliation; removing the
	// start must take it along or the pair dangles.
	if end := findBookmarkEnd(l.cv.Concrete.Root(), id); !end.IsZero() {
		l.cv.Concrete.RemoveNode(end)
	}
}

func findBookmarkEnd(root dom.Node, id string) dom.Node {
	if root.Kind() == nametable.WordBookmarkEnd {
		if v, _ := root.GetAttribute(nametable.WordID); v == id {
			return root
		}
	}
	for c := root.FirstChild(); !c.IsZero(); c = c.Next() {
		if found := findBookmarkEnd(c, id); !found.IsZero() {
			return found
		}
	}
	return dom.Node{}
}

// Runs.

func hasDrawing(run dom.Node) bool {
	return !run.ChildWithTag(nametable.WordDrawing).IsZero()
}

// runText concatenates the text-bearing children of a run. w:instrText is
// deliberately excluded: field codes surface through the field lens, not
// as visible text.
func runText(run dom.Node) string {
	var sb strings.Builder
	for c := run.FirstChild(); !c.IsZero(); c = c.Next() {
		switch c.Kind() {
		case nametable.WordT, nametable.WordDelText:
			sb.WriteString(c.TextContent())
		}
	}
	return sb.String()
}

// runStyle renders a run's rPr as the CSS fragment the span carries.
func runStyle(rPr dom.Node) string {
	if rPr.IsZero() {
		return ""
	}
	var parts []string
	if !rPr.ChildWithTag(nametable.WordB).IsZero() {
		parts = append(parts, "font-weight: bold")
	}
	if !rPr.ChildWithTag(nametable.WordI).IsZero() {
		parts = append(parts, "font-style: italic")
	}
	if !rPr.ChildWithTag(nametable.WordU).IsZero() {
		parts = append(parts, "text-decoration: underline")
	}
	return strings.Join(parts, "; ")
}

func (l inlineLens) getRun(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	span := doc.CreateElement(nametable.HTMLSpan)
	l.cv.assignID(span, con)
	if style := runStyle(con.ChildWithTag(nametable.WordRPr)); style != "" {
		doc.SetAttribute(span, nametable.HTMLStyle, style)
	}
	if text := runText(con); text != "" {
		doc.AppendChild(span, doc.CreateText(text))
	}
	return span, true
}

// putRun replaces the run's text-bearing children with the span's text
// and re-derives rPr's toggle properties from the span's style attribute.
// Everything else under the run (footnote references, drawings in a
// mixed run, foreign children) stays.
func (l inlineLens) putRun(abs, con dom.Node) {
	doc := l.cv.Concrete
	l.applySpanStyle(abs, con)

	for c := con.FirstChild(); !c.IsZero(); {
		next := c.Next()
		switch c.Kind() {
		case nametable.WordT, nametable.WordDelText, nametable.TagText:
			doc.RemoveNode(c)
		}
		c = next
	}
	l.appendRunText(con, abs.TextContent())
}

func (l inlineLens) appendRunText(run dom.Node, text string) {
	if text == "" {
		return
	}
	doc := l.cv.Concrete
	textTag := nametable.WordT
	if l.inDel {
		textTag = nametable.WordDelText
	}
	t := doc.CreateElement(textTag)
	if text != strings.TrimSpace(text) {
		space := doc.Names.TagForName(nametable.NSXML, "space")
		doc.SetAttribute(t, space, "preserve")
	}
	doc.AppendChild(t, doc.CreateText(text))
	doc.AppendChild(run, t)
}

// applySpanStyle reconciles w:b/w:i/w:u under the run's rPr against the
// span's style attribute, creating or dropping the rPr as needed. rPr
// properties the style attribute doesn't model are kept.
func (l inlineLens) applySpanStyle(abs, con dom.Node) {
	doc := l.cv.Concrete
	style, _ := abs.GetAttribute(nametable.HTMLStyle)

	toggles := []struct {
		needle string
		tag    nametable.Tag
	}{
		{"font-weight: bold", nametable.WordB},
		{"font-style: italic", nametable.WordI},
		{"text-decoration: underline", nametable.WordU},
	}

	rPr := con.ChildWithTag(nametable.WordRPr)
	for _, tg := range toggles {
		want := strings.Contains(style, tg.needle)
		have := !rPr.IsZero() && !rPr.ChildWithTag(tg.tag).IsZero()
		switch {
		case want && !have:
			if rPr.IsZero() {
				rPr = doc.CreateElement(nametable.WordRPr)
				doc.InsertBefore(con, rPr, con.FirstChild())
			}
			doc.AppendChild(rPr, doc.CreateElement(tg.tag))
		case !want && have:
			doc.RemoveNode(rPr.ChildWithTag(tg.tag))
		}
	}
	if !rPr.IsZero() && rPr.FirstChild().IsZero() && len(rPr.Attributes()) == 0 {
		doc.RemoveNode(rPr)
	}
}

func (l inlineLens) createRun(abs dom.Node) (dom.Node, bool) {
	doc := l.cv.Concrete
	r := doc.CreateElement(nametable.WordR)
	l.applySpanStyle(abs, r)
	l.appendRunText(r, abs.TextContent())
	return r, true
}

func (l inlineLens) createRunFromText(text string) (dom.Node, bool) {
	if text == "" {
		return dom.Node{}, false
	}
	doc := l.cv.Concrete
	r := doc.CreateElement(nametable.WordR)
	l.appendRunText(r, text)
	return r, true
}

// Change tracking.

func (l inlineLens) getTracked(con dom.Node, htmlTag nametable.Tag) (dom.Node, bool) {
	doc := l.cv.Abstract
	abs := doc.CreateElement(htmlTag)
	l.cv.assignID(abs, con)
	lens.ContainerGet(l, abs, con)
	return abs, true
}

func (l inlineLens) createTracked(abs dom.Node, wordTag nametable.Tag) (dom.Node, bool) {
	con := l.cv.Concrete.CreateElement(wordTag)
	child := inlineLens{cv: l.cv, inDel: wordTag == nametable.WordDel}
	lens.ContainerPut(child, abs, con, l.cv.lookupConcrete)
	return con, true
}

// Hyperlinks.

func (l inlineLens) getHyperlink(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	a := doc.CreateElement(nametable.HTMLA)
	l.cv.assignID(a, con)
	if rid, ok := con.GetAttribute(nametable.RelOfficeID); ok && l.cv.Pkg != nil {
		if rel, found, err := l.cv.Pkg.ResolveRelationship(l.cv.DocumentPart, rid); err == nil && found {
			doc.SetAttribute(a, nametable.HTMLHref, rel.Target)
		}
	}
	lens.ContainerGet(l, a, con)
	return a, true
}

func (l inlineLens) putHyperlink(abs, con dom.Node) {
	l.updateHyperlinkTarget(abs, con)
	lens.ContainerPut(l, abs, con, l.cv.lookupConcrete)
}

func (l inlineLens) updateHyperlinkTarget(abs, con dom.Node) {
	if l.cv.Pkg == nil {
		return
	}
	href, ok := abs.GetAttribute(nametable.HTMLHref)
	if !ok {
		return
	}
	if rid, has := con.GetAttribute(nametable.RelOfficeID); has {
		if rel, found, err := l.cv.Pkg.ResolveRelationship(l.cv.DocumentPart, rid); err == nil && found && rel.Target == href {
			return
		}
	}
	rid, err := l.cv.Pkg.AddRelationship(l.cv.DocumentPart, hyperlinkRelType, href, "External")
	if err != nil {
		return
	}
	l.cv.Concrete.SetAttribute(con, nametable.RelOfficeID, rid)
}

func (l inlineLens) createHyperlink(abs dom.Node) (dom.Node, bool) {
	con := l.cv.Concrete.CreateElement(nametable.WordHyperlink)
	l.updateHyperlinkTarget(abs, con)
	lens.ContainerPut(l, abs, con, l.cv.lookupConcrete)
	return con, true
}

// Bookmarks. A bookmarkStart collapses to an empty marker span on Get;
// the paired bookmarkEnd is invisible and rides along as a hidden
// sibling. The registry tracks id<->name so creation can allocate fresh
// ids.

func (l inlineLens) getBookmark(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	span := doc.CreateElement(nametable.HTMLSpan)
	l.cv.assignID(span, con)
	doc.SetAttribute(span, nametable.HTMLClass, classBookmark)
	id, _ := con.GetAttribute(nametable.WordID)
	name, _ := con.GetAttribute(nametable.WordName)
	l.cv.bookmarks[id] = name
	nameTag := doc.Names.TagForName(nametable.NSNone, "data-name")
	doc.SetAttribute(span, nameTag, name)
	return span, true
}

func (l inlineLens) createBookmark(abs dom.Node) (dom.Node, bool) {
	doc := l.cv.Concrete
	con := doc.CreateElement(nametable.WordBookmarkStart)
	id := l.nextBookmarkID()
	nameTag := l.cv.Abstract.Names.TagForName(nametable.NSNone, "data-name")
	name, _ := abs.GetAttribute(nameTag)
	if name == "" {
		name = "bookmark" + id
	}
	doc.SetAttribute(con, nametable.WordID, id)
	doc.SetAttribute(con, nametable.WordName, name)
	l.cv.bookmarks[id] = name
	return con, true
}

func (l inlineLens) nextBookmarkID() string {
	max := 0
	for id := range l.cv.bookmarks {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// ensureBookmarkEnds walks parent's children and inserts a bookmarkEnd
// directly after any bookmarkStart whose pair is missing; a freshly
// created bookmark has only its start until this pass runs.
func (cv *Converter) ensureBookmarkEnds(parent dom.Node) {
	doc := cv.Concrete
	for c := parent.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() != nametable.WordBookmarkStart {
			continue
		}
		id, _ := c.GetAttribute(nametable.WordID)
		if !findBookmarkEnd(doc.Root(), id).IsZero() {
			continue
		}
		end := doc.CreateElement(nametable.WordBookmarkEnd)
		doc.SetAttribute(end, nametable.WordID, id)
		doc.InsertBefore(parent, end, c.Next())
	}
}

// Fields.

func (l inlineLens) getField(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	span := doc.CreateElement(nametable.HTMLSpan)
	l.cv.assignID(span, con)
	doc.SetAttribute(span, nametable.HTMLClass, classField)
	if instr, ok := con.GetAttribute(nametable.WordInstr); ok {
		instrTag := doc.Names.TagForName(nametable.NSNone, "data-instr")
		doc.SetAttribute(span, instrTag, instr)
	}
	lens.ContainerGet(l, span, con)
	return span, true
}

func (l inlineLens) putField(abs, con dom.Node) {
	instrTag := l.cv.Abstract.Names.TagForName(nametable.NSNone, "data-instr")
	if instr, ok := abs.GetAttribute(instrTag); ok {
		l.cv.Concrete.SetAttribute(con, nametable.WordInstr, instr)
	}
	lens.ContainerPut(l, abs, con, l.cv.lookupConcrete)
}

func (l inlineLens) createField(abs dom.Node) (dom.Node, bool) {
	con := l.cv.Concrete.CreateElement(nametable.WordFldSimple)
	l.putField(abs, con)
	return con, true
}

// Smart tags are transparent: their children surface directly, the
// wrapper itself becomes an undecorated span. w:smartTagPr is invisible
// and survives Put as a hidden child.

func (l inlineLens) getSmartTag(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	span := doc.CreateElement(nametable.HTMLSpan)
	l.cv.assignID(span, con)
	lens.ContainerGet(l, span, con)
	return span, true
}
