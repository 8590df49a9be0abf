package dom

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/uxwrite/docxhtml/internal/nametable"
)

// TestDOMInvariantsHoldUnderRandomMutation is a property test: after any
// sequence of insert_before / remove_node /
// append_child, every non-root node has either (both parent and at least
// one of prev/next) or (parent and be the only child); parent.first and
// parent.last stay consistent.
func TestDOMInvariantsHoldUnderRandomMutation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("random append/insert/remove sequences preserve sibling-list invariants", prop.ForAll(
		func(ops []int) bool {
			d := New()
			root := d.Root()
			var live []Node

			for _, op := range ops {
				switch op % 3 {
				case 0: // append a fresh element to root
					e := d.CreateElement(nametable.WordR)
					d.AppendChild(root, e)
					live = append(live, e)
				case 1: // insert a fresh element before a random live node
					e := d.CreateElement(nametable.WordT)
					if len(live) == 0 {
						d.AppendChild(root, e)
					} else {
						ref := live[op%len(live)]
						d.InsertBefore(root, e, ref)
					}
					live = append(live, e)
				case 2: // remove a random live node
					if len(live) == 0 {
						continue
					}
					idx := op % len(live)
					d.RemoveNode(live[idx])
					live = append(live[:idx], live[idx+1:]...)
				}
			}

			return invariantsHold(root)
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func invariantsHold(parent Node) bool {
	first, last := parent.FirstChild(), parent.LastChild()
	if first.IsZero() != last.IsZero() {
		return false
	}
	var prev Node
	count := 0
	for c := first; !c.IsZero(); c = c.Next() {
		if !c.Parent().Equal(parent) {
			return false
		}
		if !c.Prev().Equal(prev) {
			return false
		}
		prev = c
		count++
		if !invariantsHold(c) {
			return false
		}
	}
	if count > 0 && !last.Equal(prev) {
		return false
	}
	return true
}
