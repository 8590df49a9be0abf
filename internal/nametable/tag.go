// Package nametable interns (namespace URI, local name) pairs into compact
// numeric Tags. A process-wide builtin table covers every name known at build
// time (node kinds, Open XML word-processing vocabulary, MCE, relationships,
// content types, and a minimal HTML5 vocabulary); per-document tables extend
// it for names discovered during parsing.
package nametable

import (
	"fmt"
	"sync"
)

// Tag is a compact numeric identifier for an XML element or attribute name,
// or (below MinElementTag) a node kind.
type Tag uint32

// Node-kind tags. These occupy the range below MinElementTag.
const (
	TagDocument Tag = iota
	TagText
	TagComment
	TagCDATA
	TagProcessingInstruction

	// MinElementTag is the first tag id that denotes an element or
	// attribute name rather than a node kind.
	MinElementTag
)

// PredefinedTagCount bounds the range of tags baked in at build time from
// known schemas. Tags at or beyond this value were allocated dynamically
// from an unrecognized (URI, local name) pair encountered while parsing.
var PredefinedTagCount Tag

// NSID identifies a (URI, prefix) pair. Identity is by URI; prefix is
// advisory and used only during serialization.
type NSID uint32

// NamespaceInfo describes one interned namespace.
type NamespaceInfo struct {
	URI    string
	Prefix string
}

// nameKey is the lookup key into the hash-keyed half of a Table: the
// (namespace id, local name) pair for an already-namespaced tag.
type nameKey struct {
	ns    NSID
	local string
}

// Table is a name table: it interns (URI, local) pairs into Tags and
// (URI, prefix) pairs into NSIDs. A document-scoped Table embeds the
// process-wide builtin table and consults it first; builtin lookups never
// allocate. The Table never shrinks: entries are appended, never removed.
type Table struct {
	builtin *Table // nil for the builtin table itself

	// byKey maps (nsID, local) -> tag for tags not already resolved by the
	// builtin table.
	byKey map[nameKey]Tag
	// decls is indexed by (tag - firstDynamicTag); decls[i].local/ns gives
	// the name for tag firstDynamicTag+i.
	decls []TagDecl
	// firstDynamicTag is the first tag id this table itself allocates.
	firstDynamicTag Tag

	nsByURI []NSID // not searched directly; nsList holds the data
	nsList  []NamespaceInfo
	nsIndex map[string]NSID
}

// TagDecl is what a Tag resolves to: a namespace id and a local name.
type TagDecl struct {
	NamespaceID NSID
	LocalName   string
}

var (
	builtinTable *Table
	builtinOnce  sync.Once
)

// newTable creates an empty table starting tag allocation at firstTag.
func newTable(builtin *Table, firstTag Tag) *Table {
	return &Table{
		builtin:         builtin,
		byKey:           make(map[nameKey]Tag),
		firstDynamicTag: firstTag,
		nsIndex:         make(map[string]NSID),
	}
}

// Builtin returns the lazily-initialized, process-wide predefined table.
// It is read-only after first use and safe to share across goroutines; it
// must never be mutated by a per-document Table.
func Builtin() *Table {
	builtinOnce.Do(func() {
		builtinTable = buildPredefinedTable()
		PredefinedTagCount = builtinTable.firstDynamicTag + Tag(len(builtinTable.decls))
	})
	return builtinTable
}

// New creates a fresh per-document name table seeded from the builtin table.
func New() *Table {
	b := Builtin()
	return newTable(b, b.firstDynamicTag+Tag(len(b.decls)))
}

// TagForName interns (uri, local) into a Tag, consulting the builtin table
// first and allocating a fresh dynamic tag only on a genuine miss.
func (t *Table) TagForName(uri, local string) Tag {
	ns := t.InternNamespace(uri, "")
	return t.tagForNSLocal(ns, local)
}

func (t *Table) tagForNSLocal(ns NSID, local string) Tag {
	if t.builtin != nil {
		if tag, ok := t.builtin.lookupOwn(ns, local); ok {
			return tag
		}
	}
	if tag, ok := t.lookupOwn(ns, local); ok {
		return tag
	}
	tag := t.firstDynamicTag + Tag(len(t.decls))
	t.decls = append(t.decls, TagDecl{NamespaceID: ns, LocalName: local})
	t.byKey[nameKey{ns: ns, local: local}] = tag
	return tag
}

func (t *Table) lookupOwn(ns NSID, local string) (Tag, bool) {
	tag, ok := t.byKey[nameKey{ns: ns, local: local}]
	return tag, ok
}

// NameForTag resolves a Tag back to its (namespace id, local name). It
// fails if the tag is out of range for both the builtin and this table.
func (t *Table) NameForTag(tag Tag) (NSID, string, error) {
	if t.builtin != nil && tag < t.builtin.firstDynamicTag+Tag(len(t.builtin.decls)) {
		return t.builtin.nameForOwnTag(tag)
	}
	return t.nameForOwnTag(tag)
}

func (t *Table) nameForOwnTag(tag Tag) (NSID, string, error) {
	if tag < t.firstDynamicTag || tag >= t.firstDynamicTag+Tag(len(t.decls)) {
		return 0, "", fmt.Errorf("nametable: tag %d out of range", tag)
	}
	decl := t.decls[tag-t.firstDynamicTag]
	return decl.NamespaceID, decl.LocalName, nil
}

// InternNamespace interns (uri, prefix) into an NSID. If the URI is already
// known, its existing prefix is preserved and the new prefix is ignored;
// prefix is advisory only, identity is by URI.
func (t *Table) InternNamespace(uri, prefix string) NSID {
	if t.builtin != nil {
		if id, ok := t.builtin.nsIndex[uri]; ok {
			return id
		}
	}
	if id, ok := t.nsIndex[uri]; ok {
		return id
	}
	id := NSID(t.totalNamespaceCount())
	t.nsList = append(t.nsList, NamespaceInfo{URI: uri, Prefix: prefix})
	t.nsIndex[uri] = id
	return id
}

func (t *Table) totalNamespaceCount() int {
	n := len(t.nsList)
	if t.builtin != nil {
		n += t.builtin.totalNamespaceCount()
	}
	return n
}

// Namespace resolves an NSID back to its NamespaceInfo.
func (t *Table) Namespace(id NSID) (NamespaceInfo, bool) {
	if t.builtin != nil {
		if int(id) < len(t.builtin.nsList) {
			return t.builtin.nsList[id], true
		}
		id -= NSID(len(t.builtin.nsList))
	}
	if int(id) < len(t.nsList) {
		return t.nsList[id], true
	}
	return NamespaceInfo{}, false
}

// IsElementTag reports whether tag denotes an element or attribute name
// rather than a node kind.
func IsElementTag(tag Tag) bool { return tag >= MinElementTag }
