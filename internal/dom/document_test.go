package dom

import (
	"testing"

	"github.com/uxwrite/docxhtml/internal/nametable"
)

func checkInvariants(t *testing.T, parent Node) {
	t.Helper()
	first, last := parent.FirstChild(), parent.LastChild()
	if first.IsZero() != last.IsZero() {
		t.Fatalf("parent.first == nil iff parent.last == nil violated for seq %d", parent.SeqNo())
	}
	var prev Node
	for c := first; !c.IsZero(); c = c.Next() {
		if !c.Parent().Equal(parent) {
			t.Fatalf("child %d's parent does not equal enclosing parent", c.SeqNo())
		}
		if !c.Prev().Equal(prev) {
			t.Fatalf("sibling chain broken at seq %d", c.SeqNo())
		}
		prev = c
		checkInvariants(t, c)
	}
	if !last.IsZero() && !last.Equal(prev) {
		t.Fatalf("parent.last does not match the tail of the sibling chain")
	}
}

func TestDOMInvariantsAfterMutations(t *testing.T) {
	d := New()
	root := d.Root()
	e1 := d.CreateElement(nametable.WordP)
	e2 := d.CreateElement(nametable.WordR)
	e3 := d.CreateElement(nametable.WordT)
	d.AppendChild(root, e1)
	d.AppendChild(root, e2)
	d.InsertBefore(root, e3, e2) // e1, e3, e2
	checkInvariants(t, root)

	d.RemoveNode(e3)
	checkInvariants(t, root)

	// Re-insert e3 as the sole child of e1.
	d.AppendChild(e1, e3)
	checkInvariants(t, root)

	d.RemoveNode(e1) // e1 (with e3 inside) detached from root
	checkInvariants(t, root)
	checkInvariants(t, e1)
}

func TestSetAttributeUpdatesIDIndex(t *testing.T) {
	d := New()
	idTag := nametable.HTMLId
	d.SetIDAttribute(idTag)

	e := d.CreateElement(nametable.HTMLBody)
	d.AppendChild(d.Root(), e)
	d.SetAttribute(e, idTag, "n42")

	got, ok := d.NodeByID("n42")
	if !ok || !got.Equal(e) {
		t.Fatalf("NodeByID did not find element after SetAttribute")
	}

	d.SetAttribute(e, idTag, "n43")
	if _, ok := d.NodeByID("n42"); ok {
		t.Fatalf("old id value still indexed after update")
	}
	got, ok = d.NodeByID("n43")
	if !ok || !got.Equal(e) {
		t.Fatalf("NodeByID did not find element after id change")
	}

	d.RemoveAttribute(e, idTag)
	if _, ok := d.NodeByID("n43"); ok {
		t.Fatalf("id still indexed after RemoveAttribute")
	}
}

func TestGetAttributeOnNonElementReturnsNone(t *testing.T) {
	d := New()
	text := d.CreateText("hello")
	if v, ok := text.GetAttribute(nametable.HTMLId); ok || v != "" {
		t.Fatalf("expected GetAttribute on text node to report absent, got (%q, %v)", v, ok)
	}
}

func TestTextContentConcatenatesDescendants(t *testing.T) {
	d := New()
	p := d.CreateElement(nametable.WordP)
	r := d.CreateElement(nametable.WordR)
	d.AppendChild(p, r)
	d.AppendChild(r, d.CreateText("Hello, "))
	d.AppendChild(r, d.CreateCDATA("World"))
	if got := p.TextContent(); got != "Hello, World" {
		t.Fatalf("TextContent() = %q, want %q", got, "Hello, World")
	}
}

func TestReassignSequenceNumbers(t *testing.T) {
	d := New()
	p := d.CreateElement(nametable.WordP)
	r := d.CreateElement(nametable.WordR)
	d.AppendChild(p, r)
	oldSeq := r.SeqNo()

	d.ReassignSequenceNumbers(p)
	if r.SeqNo() == oldSeq {
		t.Fatalf("expected sequence number to change after reassignment")
	}
	if got, ok := d.NodeBySeq(r.SeqNo()); !ok || !got.Equal(r) {
		t.Fatalf("sequence index not rebuilt correctly")
	}
	if _, ok := d.NodeBySeq(oldSeq); ok {
		t.Fatalf("stale sequence number still indexed")
	}
}
