package opc

import (
	"path"
	"strings"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// ContentType returns the content type for a part, resolving an explicit
// override first, then falling back to the extension default. Returns
// ErrNotFound if neither applies.
func (p *Package) ContentType(partName string) (string, error) {
	ct, err := p.loadContentTypes()
	if err != nil {
		return "", err
	}
	if t, ok := ct.overrideFor("/" + partName); ok {
		return t, nil
	}
	if t, ok := ct.defaultFor(extOf(partName)); ok {
		return t, nil
	}
	return "", docxerr.WrapPath("opc", "content_type", partName, docxerr.ErrNotFound)
}

// SetContentType registers an explicit content-type override for partName,
// the way a newly created part (one with no sensible extension default, or
// one that needs to differ from it) is declared in OPC.
func (p *Package) SetContentType(partName, contentType string) error {
	ct, err := p.loadContentTypes()
	if err != nil {
		return err
	}
	ct.setOverride("/"+partName, contentType)
	return nil
}

// SetDefaultContentType registers an extension-wide default content type.
func (p *Package) SetDefaultContentType(extension, contentType string) error {
	ct, err := p.loadContentTypes()
	if err != nil {
		return err
	}
	ct.setDefault(extension, contentType)
	return nil
}

func (p *Package) removeOverrideFor(partName string) {
	if p.contentTypes == nil {
		return
	}
	p.contentTypes.removeOverride("/" + partName)
}

func (p *Package) loadContentTypes() (*contentTypes, error) {
	if p.contentTypes != nil {
		return p.contentTypes, nil
	}
	data, err := p.ReadPart(contentTypesPath)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "content_types", contentTypesPath, err)
	}
	ct, err := parseContentTypes(data)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "content_types", contentTypesPath, err)
	}
	p.contentTypes = ct
	return ct, nil
}

func extOf(partName string) string {
	ext := path.Ext(partName)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}

// Relationships returns the relationships whose source is partName ("" for
// the package root), parsing the owning *.rels part on first access and
// caching the result. Returns an empty slice (not an error) if the part has
// no *.rels file; most parts have none.
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	relsPath := relsPathFor(partName)
	if cached, ok := p.rels[relsPath]; ok {
		return cached, nil
	}
	if !p.HasPart(relsPath) {
		p.rels[relsPath] = nil
		return nil, nil
	}
	data, err := p.ReadPart(relsPath)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "relationships", relsPath, err)
	}
	rels, err := parseRelationships(data)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "relationships", relsPath, err)
	}
	p.rels[relsPath] = rels
	return rels, nil
}

// AddRelationship appends a new relationship from partName to target,
// assigning it the next unused rId, and returns the assigned id.
func (p *Package) AddRelationship(partName, relType, target, targetMode string) (string, error) {
	rels, err := p.Relationships(partName)
	if err != nil {
		return "", err
	}
	id := nextRelationshipID(rels)
	rels = append(rels, Relationship{ID: id, Type: relType, Target: target, TargetMode: targetMode})
	relsPath := relsPathFor(partName)
	p.rels[relsPath] = rels
	return id, p.flushRelationships(relsPath, rels)
}

// ResolveRelationship returns the relationship with the given id among
// partName's relationships.
func (p *Package) ResolveRelationship(partName, id string) (Relationship, bool, error) {
	rels, err := p.Relationships(partName)
	if err != nil {
		return Relationship{}, false, err
	}
	for _, r := range rels {
		if r.ID == id {
			return r, true, nil
		}
	}
	return Relationship{}, false, nil
}

func (p *Package) flushRelationships(relsPath string, rels []Relationship) error {
	data, err := marshalRelationships(rels)
	if err != nil {
		return docxerr.WrapPath("opc", "relationships", relsPath, err)
	}
	p.WritePart(relsPath, data)
	p.rels[relsPath] = rels // WritePart's cache-invalidation just cleared this; restore it
	return nil
}

// removeInboundRelationships drops every relationship in the package
// whose resolved internal target is partName, rewriting the affected
// *.rels parts. External-mode relationships are never affected.
func (p *Package) removeInboundRelationships(partName string) {
	var relsParts []string
	for _, name := range p.partOrder {
		if strings.HasSuffix(name, ".rels") {
			relsParts = append(relsParts, name)
		}
	}
	for _, relsPath := range relsParts {
		source := sourceForRelsPath(relsPath)
		rels, err := p.Relationships(source)
		if err != nil {
			continue
		}
		kept := rels[:0:0]
		for _, r := range rels {
			if r.TargetMode != "External" && resolveTargetPath(source, r.Target) == partName {
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) != len(rels) {
			_ = p.flushRelationships(relsPath, kept)
		}
	}
}

// sourceForRelsPath is the inverse of relsPathFor: the part a
// relationships file describes, or "" for the package root's.
func sourceForRelsPath(relsPath string) string {
	dir, file := path.Split(relsPath)
	dir = strings.TrimSuffix(dir, "_rels/")
	file = strings.TrimSuffix(file, ".rels")
	return dir + file
}

// resolveTargetPath resolves a relationship target against its source
// part's directory. Absolute targets drop the leading slash.
func resolveTargetPath(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	dir, _ := path.Split(sourcePart)
	return path.Clean(dir + target)
}

// AddRelatedPart creates target with the given content, registers its
// content type, and records a relationship to it from source, the
// one-call path for attaching a new styles, numbering, or media part.
// Returns the assigned relationship id.
func (p *Package) AddRelatedPart(source, target, contentType, relType string, content []byte) (string, error) {
	p.WritePart(target, content)
	if contentType != "" {
		if err := p.SetContentType(target, contentType); err != nil {
			return "", err
		}
	}
	relTarget := target
	if dir, _ := path.Split(source); dir != "" && strings.HasPrefix(target, dir) {
		relTarget = target[len(dir):]
	}
	return p.AddRelationship(source, relType, relTarget, "")
}
