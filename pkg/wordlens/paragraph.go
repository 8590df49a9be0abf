package wordlens

import (
	"strconv"
	"strings"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/lens"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// headingTag maps outline levels 1..6 to their HTML element tags.
func headingTag(level int) nametable.Tag {
	switch level {
	case 1:
		return nametable.HTMLH1
	case 2:
		return nametable.HTMLH2
	case 3:
		return nametable.HTMLH3
	case 4:
		return nametable.HTMLH4
	case 5:
		return nametable.HTMLH5
	case 6:
		return nametable.HTMLH6
	}
	return 0
}

func headingLevelOf(tag nametable.Tag) int {
	switch tag {
	case nametable.HTMLH1:
		return 1
	case nametable.HTMLH2:
		return 2
	case nametable.HTMLH3:
		return 3
	case nametable.HTMLH4:
		return 4
	case nametable.HTMLH5:
		return 5
	case nametable.HTMLH6:
		return 6
	}
	return 0
}

// paragraphClass classifies a w:p by its pPr: a Heading1..Heading6 pStyle
// (or, failing that, an explicit outline level) makes it a heading; a
// paragraph whose only content is a drawing run becomes a figure;
// everything else is a plain paragraph, with any non-heading pStyle
// surfacing as the HTML class.
func paragraphClass(con dom.Node) (tag nametable.Tag, class string) {
	pPr := con.ChildWithTag(nametable.WordPPr)
	if !pPr.IsZero() {
		if pStyle := pPr.ChildWithTag(nametable.WordPStyle); !pStyle.IsZero() {
			val, _ := pStyle.GetAttribute(nametable.WordVal)
			if level, ok := headingStyleLevel(val); ok {
				return headingTag(level), ""
			}
			class = val
		}
		if outline := pPr.ChildWithTag(nametable.WordOutlineLvl); !outline.IsZero() && class == "" {
			if v, ok := outline.GetAttribute(nametable.WordVal); ok {
				// Outline levels are 0-based.
				if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < 6 {
					return headingTag(n + 1), ""
				}
			}
		}
	}
	if isFigureParagraph(con) {
		return nametable.HTMLFigure, class
	}
	return nametable.HTMLP, class
}

// headingStyleLevel parses "Heading1".."Heading6" (and the spaced
// "Heading 1" variant some producers emit).
func headingStyleLevel(styleID string) (int, bool) {
	rest, ok := strings.CutPrefix(styleID, "Heading")
	if !ok {
		return 0, false
	}
	if len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0, false
	}
	return int(rest[0] - '0'), true
}

// isFigureParagraph reports whether the paragraph has at least one
// drawing run and no run with text.
func isFigureParagraph(con dom.Node) bool {
	sawDrawing := false
	for c := con.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() != nametable.WordR {
			continue
		}
		if hasDrawing(c) {
			sawDrawing = true
			continue
		}
		if runText(c) != "" {
			return false
		}
	}
	return sawDrawing
}

func (cv *Converter) getParagraph(con dom.Node) (dom.Node, bool) {
	doc := cv.Abstract
	tag, class := paragraphClass(con)
	abs := doc.CreateElement(tag)
	cv.assignID(abs, con)
	if class != "" {
		doc.SetAttribute(abs, nametable.HTMLClass, class)
	}
	lens.ContainerGet(inlineLens{cv: cv}, abs, con)
	coalesceRuns(doc, abs)
	return abs, true
}

// coalesceRuns merges adjacent spans with identical formatting into one,
// so a paragraph Word split into same-format runs reads as a single span.
// Only undecorated, text-only spans are candidates; bookmark and field
// spans carry a class and structural spans carry child elements.
func coalesceRuns(doc *dom.Document, para dom.Node) {
	c := para.FirstChild()
	for !c.IsZero() {
		next := c.Next()
		if !next.IsZero() && coalescable(c) && coalescable(next) && sameSpanFormat(c, next) {
			text := c.TextContent() + next.TextContent()
			for gc := c.FirstChild(); !gc.IsZero(); gc = c.FirstChild() {
				doc.RemoveNode(gc)
			}
			doc.AppendChild(c, doc.CreateText(text))
			doc.RemoveNode(next)
			continue // retry the same node against its new neighbor
		}
		c = next
	}
}

func coalescable(n dom.Node) bool {
	if n.Kind() != nametable.HTMLSpan {
		return false
	}
	if _, hasClass := n.GetAttribute(nametable.HTMLClass); hasClass {
		return false
	}
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() != nametable.TagText {
			return false
		}
	}
	return true
}

func sameSpanFormat(a, b dom.Node) bool {
	sa, _ := a.GetAttribute(nametable.HTMLStyle)
	sb, _ := b.GetAttribute(nametable.HTMLStyle)
	return sa == sb
}

// putParagraph reconciles an edited heading/paragraph/figure against its
// concrete counterpart: the pStyle follows the abstract tag, the inline
// children reconcile through the inline lens, and any bookmark started
// here without its end marker gets one.
func (cv *Converter) putParagraph(abs, con dom.Node) {
	if cv.unchangedSince(abs) {
		return
	}
	cv.applyParagraphStyle(abs, con)
	lens.ContainerPut(inlineLens{cv: cv}, abs, con, cv.lookupConcrete)
	cv.ensureBookmarkEnds(con)
}

// applyParagraphStyle makes the concrete pPr/pStyle agree with the
// abstract element: headings get HeadingN, a classed paragraph keeps its
// class as the style id, and a plain paragraph loses its pStyle. Other
// pPr content is never touched.
func (cv *Converter) applyParagraphStyle(abs, con dom.Node) {
	doc := cv.Concrete

	var wantStyle string
	if level := headingLevelOf(abs.Kind()); level > 0 {
		wantStyle = "Heading" + strconv.Itoa(level)
	} else if class, ok := abs.GetAttribute(nametable.HTMLClass); ok && class != "" {
		wantStyle = class
	}

	pPr := con.ChildWithTag(nametable.WordPPr)
	pStyle := dom.Node{}
	if !pPr.IsZero() {
		pStyle = pPr.ChildWithTag(nametable.WordPStyle)
	}

	switch {
	case wantStyle == "" && !pStyle.IsZero():
		doc.RemoveNode(pStyle)
		if pPr.FirstChild().IsZero() && len(pPr.Attributes()) == 0 {
			doc.RemoveNode(pPr)
		}
	case wantStyle != "":
		if pPr.IsZero() {
			pPr = doc.CreateElement(nametable.WordPPr)
			doc.InsertBefore(con, pPr, con.FirstChild())
		}
		if pStyle.IsZero() {
			pStyle = doc.CreateElement(nametable.WordPStyle)
			doc.InsertBefore(pPr, pStyle, pPr.FirstChild())
		}
		doc.SetAttribute(pStyle, nametable.WordVal, wantStyle)
	}
}

func (cv *Converter) createParagraph(abs dom.Node) (dom.Node, bool) {
	con := cv.Concrete.CreateElement(nametable.WordP)
	cv.applyParagraphStyle(abs, con)
	lens.ContainerPut(inlineLens{cv: cv}, abs, con, cv.lookupConcrete)
	cv.ensureBookmarkEnds(con)
	return con, true
}
