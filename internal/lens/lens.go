// Package lens implements a generic bidirectional transform: a Lens maps
// one concrete (XML) node to its abstract (HTML) counterpart and back,
// and ContainerGet/ContainerPut apply a child lens
// across an entire sibling list while preserving concrete siblings the
// lens doesn't recognize.
package lens

import "github.com/uxwrite/docxhtml/internal/dom"

// Lens is the per-tag transform contract every concrete construct (a
// paragraph, a run, a table row, ...) implements. IsVisible reports whether
// a concrete node is one this lens projects into the abstract tree at all;
// nodes for which it returns false (RSIDs already stripped, proofing marks,
// raw whitespace runs) are left untouched by ContainerPut's reconciliation.
//
type Lens interface {
	IsVisible(concrete dom.Node) bool
	Get(concrete dom.Node) (abstract dom.Node, ok bool)
	Put(abstract, concrete dom.Node)
	Create(abstract dom.Node) (concrete dom.Node, ok bool)
	Remove(concrete dom.Node)
}

// LookupConcrete resolves an abstract node to the concrete node it was
// correlated with on a previous Get, or the zero Node if none exists yet
// (a newly created abstract node). Implementations typically look the
// abstract node's id attribute up in a sequence-number index built from
// the concrete tree.
type LookupConcrete func(abstract dom.Node) dom.Node

// ContainerGet builds abstract's children by running childLens.Get over
// every child of concrete, in document order, skipping nodes the lens
// doesn't recognize (Get returns ok=false). IsVisible is not consulted.
func ContainerGet(childLens Lens, abstract, concrete dom.Node) dom.Node {
	doc := abstract.Doc()
	for c := concrete.FirstChild(); !c.IsZero(); c = c.Next() {
		if absChild, ok := childLens.Get(c); ok {
			doc.AppendChild(abstract, absChild)
		}
	}
	return abstract
}

// ContainerPut reconciles concrete's children against abstract's children
// using childLens, preserving the relative order and identity of concrete
// nodes childLens doesn't recognize (IsVisible returns false for them):
// comments, bookmarks belonging to a different lens, raw text runs a
// block-level lens doesn't itself own.
//
// The algorithm in full:
//
//  1. For each abstract child, resolve (or create) its concrete
//     counterpart via lookupConcrete/childLens.Create, or update it in
//     place via childLens.Put if a counterpart already exists. The
//     resulting concrete nodes are collected into conChildren, in the
//     same order as the abstract children.
//  2. Before touching the tree, record each conChildren[i]'s current
//     hidden predecessor: walk backward over visible siblings until an
//     invisible one (or the start of the list) is found. This captures
//     where a hidden node should end up relative to its concrete
//     neighbor once reconciliation is done.
//  3. Remove every visible concrete child whose node isn't one of the
//     resolved conChildren; its abstract counterpart no longer exists.
//  4. Reinsert conChildren in reverse order, each immediately before the
//     next resolved node (skipping over any intervening hidden nodes),
//     anchored at the last non-visible trailing node if there is no next
//     resolved node.
//  5. Fixup pass: for every visible concrete node that had a hidden
//     predecessor recorded in step 2, walk backward from it looking for
//     that predecessor; if found without passing another visible node
//     first, move the node back to sit immediately after the predecessor
//     again. This re-threads hidden siblings (footnote references,
//     unrecognized extensions) back to the visible node they were
//     anchored to before, instead of letting reconciliation scatter
//     them to the end of the list.
func ContainerPut(childLens Lens, abstract, concrete dom.Node, lookupConcrete LookupConcrete) {
	doc := concrete.Doc()
	isVisible := childLens.IsVisible

	abstractChildren := abstract.Children()
	conChildren := make([]dom.Node, 0, len(abstractChildren))

	for _, abs := range abstractChildren {
		var con dom.Node
		if lookupConcrete != nil {
			con = lookupConcrete(abs)
		}
		if con.IsZero() {
			if created, ok := childLens.Create(abs); ok {
				con = created
			}
		} else {
			childLens.Put(abs, con)
		}
		if !con.IsZero() {
			conChildren = append(conChildren, con)
		}
	}
	count := len(conChildren)

	// Step 2: capture each resolved node's hidden predecessor before any
	// mutation. Absence from the map means "no hidden predecessor".
	oldPrevHidden := make(map[uint64]dom.Node, count)
	for i := count - 1; i >= 0; i-- {
		con := conChildren[i]
		prevHidden := con.Prev()
		for !prevHidden.IsZero() && isVisible(prevHidden) {
			prevHidden = prevHidden.Prev()
		}
		if !prevHidden.IsZero() {
			oldPrevHidden[con.SeqNo()] = prevHidden
		}
	}

	// Step 3: remove visible concrete children with no surviving abstract
	// counterpart.
	remaining := make(map[uint64]bool, count)
	for _, con := range conChildren {
		remaining[con.SeqNo()] = true
	}
	for c := concrete.FirstChild(); !c.IsZero(); {
		next := c.Next()
		if isVisible(c) && !remaining[c.SeqNo()] {
			childLens.Remove(c)
			doc.RemoveNode(c)
		}
		c = next
	}

	// Step 4: find the anchor: the last node in the list, walked
	// backward over any trailing invisible run.
	var last dom.Node
	if lastChild := concrete.LastChild(); !lastChild.IsZero() {
		last = lastChild
		for !last.Prev().IsZero() && !isVisible(last.Prev()) {
			last = last.Prev()
		}
	}

	for i := count - 1; i >= 0; i-- {
		con := conChildren[i]
		var newNext dom.Node
		if i+1 < count {
			newNext = conChildren[i+1]
		} else {
			newNext = last
		}
		doc.InsertBefore(concrete, con, newNext)
	}

	// Step 5: fixup, restoring hidden predecessors next to the resolved
	// node they were anchored to before reconciliation moved things.
	for c := concrete.FirstChild(); !c.IsZero(); {
		next := c.Next()
		if !isVisible(c) {
			c = next
			continue
		}
		prevHidden, ok := oldPrevHidden[c.SeqNo()]
		if !ok {
			c = next
			continue
		}

		insertionPoint := c.Next()
		actual := c.Prev()
		blockedByPrev := false
		found := false
		for {
			if !blockedByPrev {
				if actual.IsZero() {
					insertionPoint = concrete.FirstChild()
				} else {
					insertionPoint = actual.Next()
				}
			}
			if !actual.IsZero() && isVisible(actual) {
				blockedByPrev = true
			}
			if actual.Equal(prevHidden) {
				found = true
				break
			}
			if actual.IsZero() {
				break
			}
			actual = actual.Prev()
		}
		if found {
			doc.InsertBefore(concrete, c, insertionPoint)
		}
		c = next
	}
}
