package wordlens

import (
	"github.com/uxwrite/docxhtml/internal/docxerr"
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/lens"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// conBody locates w:document/w:body in the concrete tree.
func (cv *Converter) conBody() (dom.Node, error) {
	wdoc := cv.Concrete.Root().ChildWithTag(nametable.WordDocument)
	if wdoc.IsZero() {
		return dom.Node{}, docxerr.Wrap("wordlens", "document", docxerr.ErrSemantic)
	}
	body := wdoc.ChildWithTag(nametable.WordBody)
	if body.IsZero() {
		return dom.Node{}, docxerr.Wrap("wordlens", "body", docxerr.ErrSemantic)
	}
	return body, nil
}

// Get runs the document lens in the get direction: it builds a fresh
// HTML document (the <html>/<head>/<body> shell plus the body content)
// whose element ids encode the concrete tree's sequence numbers. cssText,
// when non-empty, is embedded as the head's <style> element.
func (cv *Converter) Get(cssText string) (*dom.Document, error) {
	conBody, err := cv.conBody()
	if err != nil {
		return nil, err
	}

	doc := dom.New()
	doc.SetIDAttribute(nametable.HTMLId)
	cv.Abstract = doc

	html := doc.CreateElement(nametable.HTMLHtml)
	doc.AppendChild(doc.Root(), html)

	head := doc.CreateElement(nametable.HTMLHead)
	doc.AppendChild(html, head)
	meta := doc.CreateElement(nametable.HTMLMeta)
	doc.SetAttribute(meta, doc.Names.TagForName(nametable.NSNone, "charset"), "utf-8")
	doc.AppendChild(head, meta)
	if cssText != "" {
		styleElem := doc.CreateElement(nametable.HTMLStyleElem)
		doc.AppendChild(styleElem, doc.CreateText(cssText))
		doc.AppendChild(head, styleElem)
	}

	body := doc.CreateElement(nametable.HTMLBody)
	cv.assignID(body, conBody)
	doc.AppendChild(html, body)

	lens.ContainerGet(blockLens{cv}, body, conBody)
	return doc, nil
}

// absBody locates the <body> element of an abstract HTML tree.
func absBody(doc *dom.Document) (dom.Node, error) {
	html := doc.Root().ChildWithTag(nametable.HTMLHtml)
	if html.IsZero() {
		// A body-only fragment is accepted too.
		if body := doc.Root().ChildWithTag(nametable.HTMLBody); !body.IsZero() {
			return body, nil
		}
		return dom.Node{}, docxerr.Wrap("wordlens", "html", docxerr.ErrSemantic)
	}
	body := html.ChildWithTag(nametable.HTMLBody)
	if body.IsZero() {
		return dom.Node{}, docxerr.Wrap("wordlens", "body", docxerr.ErrSemantic)
	}
	return body, nil
}

// Put runs the document lens in the put direction: the edited HTML's
// body children are reconciled into the concrete body, preserving every
// non-visible concrete sibling.
func (cv *Converter) Put(abstract *dom.Document) error {
	body, err := absBody(abstract)
	if err != nil {
		return err
	}
	conBody, err := cv.conBody()
	if err != nil {
		return err
	}
	cv.Abstract = abstract

	cv.registerBookmarks(cv.Concrete.Root())
	lens.ContainerPut(blockLens{cv}, body, conBody, cv.lookupConcrete)
	cv.ensureBookmarkEnds(conBody)
	return nil
}

// registerBookmarks seeds the bookmark registry from the concrete tree so
// id allocation for new bookmarks never collides with existing ones.
func (cv *Converter) registerBookmarks(n dom.Node) {
	if n.Kind() == nametable.WordBookmarkStart {
		id, _ := n.GetAttribute(nametable.WordID)
		name, _ := n.GetAttribute(nametable.WordName)
		cv.bookmarks[id] = name
	}
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		cv.registerBookmarks(c)
	}
}

// Bookmarks exposes the id->name registry accumulated by the last run.
func (cv *Converter) Bookmarks() map[string]string { return cv.bookmarks }
