package dom

import "github.com/uxwrite/docxhtml/internal/nametable"

// Document owns every node in its tree: an arena-backed bump allocator
// (nodes is append-only; removal unlinks but never frees) plus a
// document-scoped name table and two side indices, sequence number and
// HTML id. Releasing a Document (letting it become unreachable) releases
// every node body and attribute string it owns; there is no explicit
// Close, since releasing the top-level object releases everything it
// owns.
type Document struct {
	Names *nametable.Table

	nodes    []nodeBody
	nextSeq  uint64
	root     NodeID
	idAttr   nametable.Tag // which attribute tag is indexed by id; see SetIDAttribute
	byID     map[string]NodeID
	bySeq    map[uint64]NodeID
	changed  map[uint64]bool // sequence-number-keyed change flags, kept as a side table rather than a node field
	childrenChanged map[uint64]bool
}

// New creates an empty Document with its own name table seeded from the
// builtin table.
func New() *Document {
	d := &Document{
		Names: nametable.New(),
		byID:  make(map[string]NodeID),
		bySeq: make(map[uint64]NodeID),
		changed: make(map[uint64]bool),
		childrenChanged: make(map[uint64]bool),
	}
	// index 0 is reserved as the "no node" sentinel.
	d.nodes = append(d.nodes, nodeBody{})
	d.root = d.alloc(nametable.TagDocument)
	return d
}

// SetIDAttribute configures which attribute tag the id-index tracks. This
// is the HTML id attribute tag; no other tag is ever indexed. Must be
// called before any SetAttribute(_, idTag, _) calls that should be
// indexed.
func (d *Document) SetIDAttribute(tag nametable.Tag) { d.idAttr = tag }

func (d *Document) handle(id NodeID) Node {
	if id == noNode {
		return Node{}
	}
	return Node{doc: d, id: id}
}

func (d *Document) alloc(kind nametable.Tag) NodeID {
	d.nextSeq++
	seq := d.nextSeq
	d.nodes = append(d.nodes, nodeBody{kind: kind, seq: seq, alive: true})
	id := NodeID(len(d.nodes) - 1)
	d.bySeq[seq] = id
	return id
}

// Root returns the document root node (kind TagDocument). Exactly one
// exists per tree and owns every descendant.
func (d *Document) Root() Node { return d.handle(d.root) }

// NodeBySeq returns the node with the given sequence number, and whether
// it was found. This is the weak, document-scoped index Put-direction
// correlation relies on.
func (d *Document) NodeBySeq(seq uint64) (Node, bool) {
	id, ok := d.bySeq[seq]
	if !ok {
		return Node{}, false
	}
	return d.handle(id), true
}

// NodeByID returns the element whose indexed id attribute equals id.
func (d *Document) NodeByID(id string) (Node, bool) {
	nid, ok := d.byID[id]
	if !ok {
		return Node{}, false
	}
	return d.handle(nid), true
}

// CreateElement allocates a new, detached element node with the given tag.
func (d *Document) CreateElement(tag nametable.Tag) Node { return d.handle(d.alloc(tag)) }

// CreateText allocates a new, detached text node.
func (d *Document) CreateText(data string) Node {
	n := d.handle(d.alloc(nametable.TagText))
	n.body().value = data
	return n
}

// CreateComment allocates a new, detached comment node.
func (d *Document) CreateComment(data string) Node {
	n := d.handle(d.alloc(nametable.TagComment))
	n.body().value = data
	return n
}

// CreateCDATA allocates a new, detached CDATA node.
func (d *Document) CreateCDATA(data string) Node {
	n := d.handle(d.alloc(nametable.TagCDATA))
	n.body().value = data
	return n
}

// CreatePI allocates a new, detached processing-instruction node.
func (d *Document) CreatePI(target, value string) Node {
	n := d.handle(d.alloc(nametable.TagProcessingInstruction))
	b := n.body()
	b.piTarget, b.piValue = target, value
	return n
}

// AppendChild appends newChild as parent's last child. newChild must be
// detached (no current parent).
func (d *Document) AppendChild(parent, newChild Node) {
	d.InsertBefore(parent, newChild, Node{})
}

// InsertBefore inserts newChild immediately before ref among parent's
// children, or at the end if ref is the zero Node. newChild is first
// unlinked from wherever it currently sits (re-parenting is allowed and
// preserves newChild's sequence number).
func (d *Document) InsertBefore(parent, newChild, ref Node) {
	if newChild.Equal(ref) {
		return
	}
	d.unlink(newChild)

	pb := parent.body()
	nb := newChild.body()
	nb.parent = parent.id

	if ref.IsZero() {
		// Append at the end.
		nb.prev = pb.last
		nb.next = noNode
		if pb.last != noNode {
			d.handle(pb.last).body().next = newChild.id
		} else {
			pb.first = newChild.id
		}
		pb.last = newChild.id
		return
	}

	rb := ref.body()
	nb.next = ref.id
	nb.prev = rb.prev
	if rb.prev != noNode {
		d.handle(rb.prev).body().next = newChild.id
	} else {
		pb.first = newChild.id
	}
	rb.prev = newChild.id
}

// RemoveNode detaches n from its parent and siblings. The node body is not
// freed (it is reclaimed only when the whole Document is released), and it
// stays in the sequence-number and id indices: only setting or removing
// the id attribute changes the id index.
func (d *Document) RemoveNode(n Node) {
	d.unlink(n)
}

// RemoveButKeepChildren removes n but reparents its children in place of
// it, preserving their order.
func (d *Document) RemoveButKeepChildren(n Node) {
	parent := n.Parent()
	next := n.Next()
	children := n.Children()
	d.unlink(n)
	for _, c := range children {
		d.InsertBefore(parent, c, next)
	}
}

func (d *Document) unlink(n Node) {
	if n.IsZero() {
		return
	}
	b := n.body()
	if b.parent == noNode && b.prev == noNode && b.next == noNode {
		// Already detached (or root); nothing to unlink in sibling chain,
		// but still clear the parent pointer for idempotency.
		if b.parent != noNode {
			b.parent = noNode
		}
		return
	}
	if b.prev != noNode {
		d.handle(b.prev).body().next = b.next
	} else if b.parent != noNode {
		d.handle(b.parent).body().first = b.next
	}
	if b.next != noNode {
		d.handle(b.next).body().prev = b.prev
	} else if b.parent != noNode {
		d.handle(b.parent).body().last = b.prev
	}
	b.parent, b.prev, b.next = noNode, noNode, noNode
}

// SetAttribute sets an attribute, replacing any existing value for tag.
// Setting the configured id attribute also updates the id index; removing
// it (via RemoveAttribute) removes the index entry. No other attribute tag
// is ever indexed.
func (d *Document) SetAttribute(n Node, tag nametable.Tag, value string) {
	if !n.IsElement() {
		return
	}
	b := n.body()
	for i := range b.attrs {
		if b.attrs[i].Tag == tag {
			if tag == d.idAttr {
				delete(d.byID, b.attrs[i].Value)
			}
			b.attrs[i].Value = value
			if tag == d.idAttr {
				d.byID[value] = n.id
			}
			return
		}
	}
	b.attrs = append(b.attrs, Attr{Tag: tag, Value: value})
	if tag == d.idAttr {
		d.byID[value] = n.id
	}
}

// RemoveAttribute removes the attribute for tag, if present.
func (d *Document) RemoveAttribute(n Node, tag nametable.Tag) {
	if !n.IsElement() {
		return
	}
	b := n.body()
	for i, a := range b.attrs {
		if a.Tag == tag {
			if tag == d.idAttr {
				delete(d.byID, a.Value)
			}
			b.attrs = append(b.attrs[:i], b.attrs[i+1:]...)
			return
		}
	}
}

// ClearAttributes removes every attribute from n.
func (d *Document) ClearAttributes(n Node) {
	if !n.IsElement() {
		return
	}
	b := n.body()
	if d.idAttr != 0 {
		for _, a := range b.attrs {
			if a.Tag == d.idAttr {
				delete(d.byID, a.Value)
			}
		}
	}
	b.attrs = nil
}

// ReassignSequenceNumbers walks the tree rooted at root in document order
// and assigns fresh sequence numbers, rebuilding the sequence-number index
// atomically. Used after wholesale imports of detached subtrees.
func (d *Document) ReassignSequenceNumbers(root Node) {
	newBySeq := make(map[uint64]NodeID, len(d.bySeq))
	for seq, id := range d.bySeq {
		if !d.isDescendantOrSelf(root, id) {
			newBySeq[seq] = id
		}
	}
	var walk func(Node)
	walk = func(n Node) {
		d.nextSeq++
		n.body().seq = d.nextSeq
		newBySeq[d.nextSeq] = n.id
		for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
			walk(c)
		}
	}
	walk(root)
	d.bySeq = newBySeq
}

func (d *Document) isDescendantOrSelf(root Node, id NodeID) bool {
	for cur := d.handle(id); !cur.IsZero(); cur = cur.Parent() {
		if cur.id == root.id {
			return true
		}
	}
	return false
}

// SetChanged and SetChildrenChanged record the change-detector flags in a
// sequence-number-keyed side table rather than on the node itself, so
// nodes remain immutable during the put traversal.
func (d *Document) SetChanged(n Node, v bool)         { d.setFlag(d.changed, n, v) }
func (d *Document) SetChildrenChanged(n Node, v bool) { d.setFlag(d.childrenChanged, n, v) }

func (d *Document) setFlag(table map[uint64]bool, n Node, v bool) {
	if v {
		table[n.SeqNo()] = true
	} else {
		delete(table, n.SeqNo())
	}
}

// Changed and ChildrenChanged read the change-detector flags.
func (d *Document) Changed(n Node) bool         { return d.changed[n.SeqNo()] }
func (d *Document) ChildrenChanged(n Node) bool { return d.childrenChanged[n.SeqNo()] }

// ResetChangeFlags clears every changed/childrenChanged flag, e.g. before
// re-running the change detector.
func (d *Document) ResetChangeFlags() {
	d.changed = make(map[uint64]bool)
	d.childrenChanged = make(map[uint64]bool)
}
