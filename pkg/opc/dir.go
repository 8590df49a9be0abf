package opc

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// OpenDir opens an OPC package from an exploded directory tree: the
// same layout a zip package has, with each part stored as a plain file
// under rootPath. Useful for packages kept unpacked in version control
// or while debugging a conversion.
func OpenDir(rootPath string) (*Package, error) {
	pkg := &Package{
		parts: make(map[string]*fileEntry),
		rels:  make(map[string][]Relationship),
	}

	err := filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootPath, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !isValidZipPath(name) {
			return docxerr.WrapPath("opc", "open_dir", name, docxerr.ErrInvalidFormat)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		pkg.parts[name] = &fileEntry{data: data}
		pkg.partOrder = append(pkg.partOrder, name)
		return nil
	})
	if err != nil {
		return nil, docxerr.WrapPath("opc", "open_dir", rootPath, err)
	}
	return pkg, nil
}

// SaveDir writes the package as an exploded directory tree under
// rootPath, creating directories as needed. The inverse of OpenDir.
func (p *Package) SaveDir(rootPath string) error {
	if err := p.flushContentTypes(); err != nil {
		return err
	}
	for _, name := range p.partOrder {
		dest := filepath.Join(rootPath, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return docxerr.WrapPath("opc", "save_dir", name, err)
		}
		if err := os.WriteFile(dest, p.parts[name].data, 0o644); err != nil {
			return docxerr.WrapPath("opc", "save_dir", name, err)
		}
	}
	return nil
}
