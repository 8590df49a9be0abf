// Package dom implements an interned-name DOM: an arena-backed tree of
// nodes carrying stable per-node sequence numbers, used for both the HTML
// side and the XML side of every format. Nodes are identified by index
// into the arena rather than linked by pointer, so the whole tree can be
// released by dropping the Document.
package dom

import (
	"strings"

	"github.com/uxwrite/docxhtml/internal/nametable"
)

// NodeID is an index into a Document's node arena. The zero value denotes
// "no node".
type NodeID uint32

// noNode is the sentinel "no node" NodeID.
const noNode NodeID = 0

// Attr is a single interned-name attribute value.
type Attr struct {
	Tag   nametable.Tag
	Value string
}

// nodeBody is the arena-resident representation of one node. Document
// owns every nodeBody; nodes are never individually freed; only the
// document as a whole releases its arena, matching the "nodes live in an
// arena bound to the document's lifetime... reclaimed only when the
// document is dropped" invariant.
type nodeBody struct {
	kind nametable.Tag // TagDocument/Text/Comment/CDATA/ProcessingInstruction, or >= MinElementTag for an element
	seq  uint64

	parent, prev, next, first, last NodeID

	// Element-only fields.
	attrs []Attr

	// Text/Comment/CDATA-only field.
	value string

	// ProcessingInstruction-only fields.
	piTarget string
	piValue  string

	// alive is false once the node has been removed via a future
	// "collect" pass; today removal simply unlinks (see RemoveNode), the
	// body stays in the arena until the document is dropped.
	alive bool
}

// Node is a lightweight handle into a Document's arena. It is a value
// type: copying a Node is free, and equality compares by (doc, id).
type Node struct {
	doc *Document
	id  NodeID
}

// IsZero reports whether n is the zero Node (no node).
func (n Node) IsZero() bool { return n.doc == nil || n.id == noNode }

// Equal reports whether n and other refer to the same node in the same
// document.
func (n Node) Equal(other Node) bool { return n.doc == other.doc && n.id == other.id }

func (n Node) body() *nodeBody {
	return &n.doc.nodes[n.id]
}

// Kind returns the node's tag: a node-kind tag (TagDocument, TagText, ...)
// or an element tag (>= nametable.MinElementTag).
func (n Node) Kind() nametable.Tag { return n.body().kind }

// IsElement reports whether n is an element node.
func (n Node) IsElement() bool { return nametable.IsElementTag(n.Kind()) }

// SeqNo returns the node's sequence number, assigned at creation and
// stable across re-parenting.
func (n Node) SeqNo() uint64 { return n.body().seq }

// Doc returns the owning Document.
func (n Node) Doc() *Document { return n.doc }

// Parent, Prev, Next, FirstChild, LastChild return the zero Node when
// there is none; sibling chains terminate in the zero Node.
func (n Node) Parent() Node     { return n.doc.handle(n.body().parent) }
func (n Node) Prev() Node       { return n.doc.handle(n.body().prev) }
func (n Node) Next() Node       { return n.doc.handle(n.body().next) }
func (n Node) FirstChild() Node { return n.doc.handle(n.body().first) }
func (n Node) LastChild() Node  { return n.doc.handle(n.body().last) }

// Children returns the node's children in document order.
func (n Node) Children() []Node {
	var out []Node
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		out = append(out, c)
	}
	return out
}

// ChildWithTag returns the first child element with the given tag, or the
// zero Node if none matches.
func (n Node) ChildWithTag(tag nametable.Tag) Node {
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.IsElement() && c.Kind() == tag {
			return c
		}
	}
	return Node{}
}

// Value returns the text/comment/CDATA string value, or the empty string
// for any other node kind.
func (n Node) Value() string {
	switch n.Kind() {
	case nametable.TagText, nametable.TagComment, nametable.TagCDATA:
		return n.body().value
	default:
		return ""
	}
}

// SetValue sets the text/comment/CDATA string value. No-op on other kinds.
func (n Node) SetValue(v string) {
	switch n.Kind() {
	case nametable.TagText, nametable.TagComment, nametable.TagCDATA:
		n.body().value = v
	}
}

// PITarget and PIValue return the processing instruction's target/value,
// or the empty string for any other node kind.
func (n Node) PITarget() string {
	if n.Kind() == nametable.TagProcessingInstruction {
		return n.body().piTarget
	}
	return ""
}

func (n Node) PIValue() string {
	if n.Kind() == nametable.TagProcessingInstruction {
		return n.body().piValue
	}
	return ""
}

// GetAttribute returns the attribute value for tag, or "" with ok=false if
// absent. Calling this on a non-element node always returns ("", false).
func (n Node) GetAttribute(tag nametable.Tag) (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	for _, a := range n.body().attrs {
		if a.Tag == tag {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes returns a copy of the element's attribute set.
func (n Node) Attributes() []Attr {
	if !n.IsElement() {
		return nil
	}
	b := n.body()
	out := make([]Attr, len(b.attrs))
	copy(out, b.attrs)
	return out
}

// TextContent concatenates the string value of every descendant Text and
// CDATA node, in document order.
func (n Node) TextContent() string {
	var sb strings.Builder
	collectText(n, &sb)
	return sb.String()
}

func collectText(n Node, sb *strings.Builder) {
	switch n.Kind() {
	case nametable.TagText, nametable.TagCDATA:
		sb.WriteString(n.Value())
		return
	}
	for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
		collectText(c, sb)
	}
}
