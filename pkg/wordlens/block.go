package wordlens

import (
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// blockLens handles block-level content: the children of w:body and of
// table cells. Paragraphs and tables are visible; section properties,
// bookmarks at body level, and anything from a foreign namespace are not
// and survive Put untouched.
type blockLens struct {
	cv *Converter
}

func (l blockLens) IsVisible(con dom.Node) bool {
	switch con.Kind() {
	case nametable.WordP, nametable.WordTbl:
		return true
	}
	return false
}

func (l blockLens) Get(con dom.Node) (dom.Node, bool) {
	switch con.Kind() {
	case nametable.WordP:
		return l.cv.getParagraph(con)
	case nametable.WordTbl:
		return l.cv.getTable(con)
	}
	return dom.Node{}, false
}

func (l blockLens) Put(abs, con dom.Node) {
	switch con.Kind() {
	case nametable.WordP:
		l.cv.putParagraph(abs, con)
	case nametable.WordTbl:
		if abs.Kind() == nametable.HTMLTable {
			l.cv.putTable(abs, con)
		}
	}
}

func (l blockLens) Create(abs dom.Node) (dom.Node, bool) {
	switch abs.Kind() {
	case nametable.HTMLP, nametable.HTMLFigure,
		nametable.HTMLH1, nametable.HTMLH2, nametable.HTMLH3,
		nametable.HTMLH4, nametable.HTMLH5, nametable.HTMLH6:
		return l.cv.createParagraph(abs)
	case nametable.HTMLTable:
		return l.cv.createTable(abs)
	case nametable.TagText:
		// Stray text at block level wraps into its own paragraph.
		if abs.Value() == "" {
			return dom.Node{}, false
		}
		doc := l.cv.Concrete
		p := doc.CreateElement(nametable.WordP)
		if r, ok := (inlineLens{cv: l.cv}).createRunFromText(abs.Value()); ok {
			doc.AppendChild(p, r)
		}
		return p, true
	}
	return dom.Node{}, false
}

func (l blockLens) Remove(con dom.Node) {}
