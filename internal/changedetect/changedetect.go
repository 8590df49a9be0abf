// Package changedetect implements a two-tree structural diff: correlate
// nodes across an old and a new tree by an identity attribute, mark the
// ones that differ, and propagate a lighter "something beneath me
// changed" flag up to every ancestor.
package changedetect

import (
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// Compute correlates oldRoot's and newRoot's elements by idAttr and records
// changed/childrenChanged flags on oldRoot's document (via
// dom.Document.SetChanged/SetChildrenChanged). It does not modify newRoot's
// document, and it resets oldRoot's previous flags before recomputing.
//
// Two passes: build a value->node map over
// the new tree, record per-node changes against the old tree, then
// propagate childrenChanged upward in a second pass.
func Compute(oldRoot, newRoot dom.Node, idAttr nametable.Tag) {
	oldRoot.Doc().ResetChangeFlags()

	byID := make(map[string]dom.Node)
	collectByAttr(newRoot, idAttr, byID)

	recordChanges(oldRoot, idAttr, byID)
	propagateChanges(oldRoot)
}

// collectByAttr indexes every element under root by its idAttr value,
// keeping the first occurrence of a duplicate value.
func collectByAttr(root dom.Node, idAttr nametable.Tag, out map[string]dom.Node) {
	if root.IsElement() {
		if v, ok := root.GetAttribute(idAttr); ok {
			if _, exists := out[v]; !exists {
				out[v] = root
			}
		}
	}
	for c := root.FirstChild(); !c.IsZero(); c = c.Next() {
		collectByAttr(c, idAttr, out)
	}
}

// recordChanges walks parent1's element descendants bottom-up, then decides
// whether parent1 itself changed: it has no correlated sibling in the new
// tree, its tag changed, its non-id attributes differ, or its immediate
// children differ in tag or count. A text/comment/CDATA/PI child whose
// value differs is marked changed itself, not parent1.
// Child correlation for non-element nodes is purely positional: without an
// id attribute there is no other way to tell "this text node" from "that
// text node".
func recordChanges(parent1 dom.Node, idAttr nametable.Tag, byID map[string]dom.Node) {
	for c := parent1.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.IsElement() {
			recordChanges(c, idAttr, byID)
		}
	}

	doc1 := parent1.Doc()

	idValue, hasID := parent1.GetAttribute(idAttr)
	parent2, found := dom.Node{}, false
	if hasID {
		parent2, found = byID[idValue]
	}
	if !found {
		doc1.SetChanged(parent1, true)
		return
	}

	if parent1.Kind() != parent2.Kind() {
		doc1.SetChanged(parent1, true)
	}
	if !identicalAttributesExcept(parent1, parent2, idAttr) {
		doc1.SetChanged(parent1, true)
	}

	child1, child2 := parent1.FirstChild(), parent2.FirstChild()
	for !child1.IsZero() && !child2.IsZero() {
		if child1.Kind() != child2.Kind() {
			doc1.SetChanged(parent1, true)
		} else {
			switch child1.Kind() {
			case nametable.TagText, nametable.TagComment, nametable.TagCDATA:
				if child1.Value() != child2.Value() {
					doc1.SetChanged(child1, true)
				}
			case nametable.TagProcessingInstruction:
				if child1.PITarget() != child2.PITarget() || child1.PIValue() != child2.PIValue() {
					doc1.SetChanged(child1, true)
				}
			}
		}
		child1, child2 = child1.Next(), child2.Next()
	}
	if !child1.IsZero() || !child2.IsZero() {
		doc1.SetChanged(parent1, true)
	}
}

// identicalAttributesExcept reports whether a and b carry the same set of
// attribute values, ignoring the identity attribute, which is guaranteed
// equal by construction, since a and b were correlated by its value.
func identicalAttributesExcept(a, b dom.Node, except nametable.Tag) bool {
	for _, attr := range a.Attributes() {
		if attr.Tag == except {
			continue
		}
		v, ok := b.GetAttribute(attr.Tag)
		if !ok || v != attr.Value {
			return false
		}
	}
	for _, attr := range b.Attributes() {
		if attr.Tag == except {
			continue
		}
		v, ok := a.GetAttribute(attr.Tag)
		if !ok || v != attr.Value {
			return false
		}
	}
	return true
}

// propagateChanges sets childrenChanged on every node with a changed or
// childrenChanged descendant.
func propagateChanges(node dom.Node) {
	doc := node.Doc()
	for c := node.FirstChild(); !c.IsZero(); c = c.Next() {
		propagateChanges(c)
		if doc.Changed(c) || doc.ChildrenChanged(c) {
			doc.SetChildrenChanged(node, true)
		}
	}
}
