// Package opc implements the Open Packaging Conventions container that
// backs every Open XML word-processing document: a zip archive of named
// parts, a content-type registry ([Content_Types].xml), and per-part
// relationship sets (*_rels/*.rels).
package opc

import (
	"archive/zip"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// fileEntry stores a part's raw bytes plus the ZIP header it was read with
// (nil for parts created in memory), so Save can preserve compression
// method and modification time on parts that were never touched.
// A part is only parsed into a structured form (relationships, content
// types) the first time something asks for it, then cached.
type fileEntry struct {
	data   []byte
	header *zip.FileHeader
}

// Package is an in-memory OPC container. Parts are stored as raw bytes;
// relationships and the content-type registry are parsed lazily on first
// access and cached.
type Package struct {
	parts     map[string]*fileEntry
	partOrder []string

	contentTypes *contentTypes // cached, nil until first access
	rels         map[string][]Relationship // cached per relsPath; a missing key means "not yet parsed", a nil entry means "no rels part"
}

// New creates an empty package with a bare content-type registry.
func New() *Package {
	return &Package{
		parts: make(map[string]*fileEntry),
		rels:  make(map[string][]Relationship),
		contentTypes: &contentTypes{
			Defaults: []defaultEntry{
				{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
				{Extension: "xml", ContentType: "application/xml"},
			},
		},
	}
}

// PartNames returns every part name currently in the package, in no
// particular order. Use Parts for document order.
func (p *Package) PartNames() []string {
	names := make([]string, 0, len(p.parts))
	for name := range p.parts {
		names = append(names, name)
	}
	return names
}

// Parts returns every part name in the order parts were first added (or, if
// opened from a zip archive, the archive's own file order), preserved so
// Save produces byte-stable output for an unmodified package.
func (p *Package) Parts() []string {
	out := make([]string, len(p.partOrder))
	copy(out, p.partOrder)
	return out
}

// HasPart reports whether a part exists.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// ReadPart returns a part's raw bytes. Returns a docxerr wrapping
// ErrNotFound if the part doesn't exist.
func (p *Package) ReadPart(name string) ([]byte, error) {
	entry, ok := p.parts[name]
	if !ok {
		return nil, docxerr.WrapPath("opc", "read_part", name, docxerr.ErrNotFound)
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

// WritePart sets a part's raw bytes, creating it if absent. Writing the
// reserved content-types or a *.rels part directly invalidates the cached
// parsed form; the next AddRelationship/ContentType call re-parses it.
func (p *Package) WritePart(name string, data []byte) {
	if entry, exists := p.parts[name]; exists {
		entry.data = data
	} else {
		p.parts[name] = &fileEntry{data: data}
		p.partOrder = append(p.partOrder, name)
	}
	if name == contentTypesPath {
		p.contentTypes = nil
	}
	delete(p.rels, name)
}

// RemovePart deletes a part, along with its content-type override, its
// own relationships part, and any relationship elsewhere in the package
// that pointed at it. Returns true if it existed.
func (p *Package) RemovePart(name string) bool {
	if _, ok := p.parts[name]; !ok {
		return false
	}
	p.deleteEntry(name)
	p.removeOverrideFor(name)
	if rels := relsPathFor(name); p.HasPart(rels) {
		p.deleteEntry(rels)
		delete(p.rels, rels)
	}
	p.removeInboundRelationships(name)
	return true
}

func (p *Package) deleteEntry(name string) {
	delete(p.parts, name)
	for i, n := range p.partOrder {
		if n == name {
			p.partOrder = append(p.partOrder[:i], p.partOrder[i+1:]...)
			break
		}
	}
}
