package lens

import (
	"strconv"
	"testing"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// runLens is a minimal Lens over WordR elements used to exercise
// ContainerGet/ContainerPut: it projects a run's id attribute straight
// through to an abstract HTMLBody element carrying the same id, and treats
// every other concrete node (e.g. bookmarks) as invisible/unrecognized.
type runLens struct {
	abstractDoc *dom.Document
	concreteDoc *dom.Document
}

func (l *runLens) IsVisible(concrete dom.Node) bool {
	return concrete.IsElement() && concrete.Kind() == nametable.WordR
}

func (l *runLens) Get(concrete dom.Node) (dom.Node, bool) {
	if !l.IsVisible(concrete) {
		return dom.Node{}, false
	}
	id, _ := concrete.GetAttribute(nametable.HTMLId)
	span := l.abstractDoc.CreateElement(nametable.HTMLBody)
	l.abstractDoc.SetAttribute(span, nametable.HTMLId, id)
	return span, true
}

func (l *runLens) Put(abstract, concrete dom.Node) {
	// no mutable content to copy back for this test lens
}

func (l *runLens) Create(abstract dom.Node) (dom.Node, bool) {
	con := l.concreteDoc.CreateElement(nametable.WordR)
	id, _ := abstract.GetAttribute(nametable.HTMLId)
	l.concreteDoc.SetAttribute(con, nametable.HTMLId, id)
	return con, true
}

func (l *runLens) Remove(concrete dom.Node) {}

func setupConcreteParagraph(idAttr nametable.Tag) (*dom.Document, dom.Node, []dom.Node) {
	d := dom.New()
	d.SetIDAttribute(idAttr)
	p := d.CreateElement(nametable.WordP)
	d.AppendChild(d.Root(), p)

	bookmark := d.CreateElement(nametable.WordBookmarkStart)
	d.AppendChild(p, bookmark)

	var runs []dom.Node
	for i := 0; i < 3; i++ {
		r := d.CreateElement(nametable.WordR)
		d.SetAttribute(r, idAttr, "r"+strconv.Itoa(i))
		d.AppendChild(p, r)
		runs = append(runs, r)
	}
	return d, p, runs
}

func TestContainerGetProjectsVisibleChildrenOnly(t *testing.T) {
	concreteDoc, p, _ := setupConcreteParagraph(nametable.HTMLId)
	abstractDoc := dom.New()
	l := &runLens{abstractDoc: abstractDoc}

	abstract := abstractDoc.CreateElement(nametable.HTMLBody)
	ContainerGet(l, abstract, p)

	got := abstract.Children()
	if len(got) != 3 {
		t.Fatalf("expected 3 abstract children (bookmark skipped), got %d", len(got))
	}
	_ = concreteDoc
}

func TestContainerPutPreservesHiddenSiblingPosition(t *testing.T) {
	concreteDoc, p, runs := setupConcreteParagraph(nametable.HTMLId)
	abstractDoc := dom.New()
	l := &runLens{abstractDoc: abstractDoc, concreteDoc: concreteDoc}

	// Build an abstract tree reordering run 0 and run 1, dropping run 2.
	abstract := abstractDoc.CreateElement(nametable.HTMLBody)
	for _, idx := range []int{1, 0} {
		id, _ := runs[idx].GetAttribute(nametable.HTMLId)
		span := abstractDoc.CreateElement(nametable.HTMLBody)
		abstractDoc.SetAttribute(span, nametable.HTMLId, id)
		abstractDoc.AppendChild(abstract, span)
	}

	byID := map[string]dom.Node{}
	for _, r := range runs {
		if id, ok := r.GetAttribute(nametable.HTMLId); ok {
			byID[id] = r
		}
	}
	lookup := func(abs dom.Node) dom.Node {
		id, ok := abs.GetAttribute(nametable.HTMLId)
		if !ok {
			return dom.Node{}
		}
		return byID[id]
	}

	ContainerPut(l, abstract, p, lookup)

	children := p.Children()
	if len(children) != 3 {
		t.Fatalf("expected bookmark + 2 surviving runs, got %d children", len(children))
	}
	if children[0].Kind() != nametable.WordBookmarkStart {
		t.Fatalf("expected the unrecognized bookmark to remain at the front, got kind %v", children[0].Kind())
	}
	id1, _ := children[1].GetAttribute(nametable.HTMLId)
	id2, _ := children[2].GetAttribute(nametable.HTMLId)
	if id1 != "r1" || id2 != "r0" {
		t.Fatalf("expected reordered runs r1, r0 after the bookmark, got %s, %s", id1, id2)
	}
}
