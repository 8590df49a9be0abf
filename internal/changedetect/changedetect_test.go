package changedetect

import (
	"testing"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// buildTree creates a small paragraph/run/text tree with the fixed id
// attributes "p1", "r1", "t1" so tests can correlate old/new copies
// deterministically.
func buildTree() (*dom.Document, dom.Node) {
	d := dom.New()
	idAttr := nametable.HTMLId
	d.SetIDAttribute(idAttr)

	p := d.CreateElement(nametable.WordP)
	d.SetAttribute(p, idAttr, "p1")
	d.AppendChild(d.Root(), p)

	r := d.CreateElement(nametable.WordR)
	d.SetAttribute(r, idAttr, "r1")
	d.AppendChild(p, r)

	t := d.CreateElement(nametable.WordT)
	d.SetAttribute(t, idAttr, "t1")
	d.AppendChild(r, t)

	d.AppendChild(t, d.CreateText("hello"))

	return d, p
}

func TestComputeMarksUnchangedTreeClean(t *testing.T) {
	oldDoc, oldRoot := buildTree()
	newDoc, newRoot := buildTree()
	_ = newDoc

	Compute(oldRoot, newRoot, nametable.HTMLId)

	var walk func(dom.Node)
	walk = func(n dom.Node) {
		if oldDoc.Changed(n) || oldDoc.ChildrenChanged(n) {
			t.Fatalf("node seq %d unexpectedly flagged for an identical tree", n.SeqNo())
		}
		for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
			walk(c)
		}
	}
	walk(oldRoot)
}

func TestComputeFlagsOnlyChangedNodeAndAncestors(t *testing.T) {
	oldDoc, oldRoot := buildTree()
	_, newRoot := buildTree()

	// Mutate exactly one element's attribute set in the new tree: add a
	// style attribute to its run.
	r2 := newRoot.ChildWithTag(nametable.WordR)
	newRoot.Doc().SetAttribute(r2, nametable.HTMLStyle, "bold")

	Compute(oldRoot, newRoot, nametable.HTMLId)

	r1 := oldRoot.ChildWithTag(nametable.WordR)
	if !oldDoc.Changed(r1) {
		t.Fatalf("expected the mutated run to be marked changed")
	}
	if oldDoc.Changed(oldRoot) {
		t.Fatalf("paragraph itself should not be marked changed, only childrenChanged")
	}
	if !oldDoc.ChildrenChanged(oldRoot) {
		t.Fatalf("expected paragraph to be marked childrenChanged")
	}

	t1 := r1.ChildWithTag(nametable.WordT)
	if oldDoc.Changed(t1) || oldDoc.ChildrenChanged(t1) {
		t.Fatalf("child subtree of the changed node should carry no flags")
	}
}

func TestComputeFlagsRemovedCorrespondent(t *testing.T) {
	oldDoc, oldRoot := buildTree()
	newDoc, newRoot := buildTree()

	// Delete the run entirely from the new tree: its old correlate should
	// be marked changed since it has no correspondent.
	r2 := newRoot.ChildWithTag(nametable.WordR)
	newDoc.RemoveNode(r2)

	Compute(oldRoot, newRoot, nametable.HTMLId)

	r1 := oldRoot.ChildWithTag(nametable.WordR)
	if !oldDoc.Changed(r1) {
		t.Fatalf("expected run with no correlate in the new tree to be marked changed")
	}
	if !oldDoc.ChildrenChanged(oldRoot) {
		t.Fatalf("expected ancestor to be marked childrenChanged")
	}
}

func TestComputeResetsPreviousFlags(t *testing.T) {
	oldDoc, oldRoot := buildTree()
	_, newRoot := buildTree()
	oldDoc.SetChanged(oldRoot, true)

	Compute(oldRoot, newRoot, nametable.HTMLId)

	if oldDoc.Changed(oldRoot) {
		t.Fatalf("expected stale changed flag to be cleared before recomputing")
	}
}
