package opc

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// Save writes the package to filePath as a zip archive, atomically: it
// writes to a temporary file in the same directory, then renames it into
// place, so a crash or a failed write never leaves a half-written package
// at filePath. Parts keep their original zip.FileHeader (preserving
// compression method) where one was read; new parts default to Deflate.
func (p *Package) Save(filePath string) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".opc-*.tmp")
	if err != nil {
		return docxerr.WrapPath("opc", "save", filePath, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := p.writeZip(tmp); err != nil {
		tmp.Close()
		return docxerr.WrapPath("opc", "save", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return docxerr.WrapPath("opc", "save", filePath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return docxerr.WrapPath("opc", "save", filePath, err)
	}
	return nil
}

// WriteTo writes the package as a zip archive to an arbitrary io.Writer,
// for callers that want the bytes in memory rather than on disk.
func (p *Package) WriteTo(w io.Writer) error {
	return p.writeZip(w)
}

func (p *Package) writeZip(f io.Writer) error {
	if err := p.flushContentTypes(); err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, name := range p.partOrder {
		entry := p.parts[name]
		header := entry.header
		if header == nil {
			header = &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()}
		} else {
			h := *header
			header = &h
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return docxerr.WrapPath("opc", "save", name, err)
		}
		if _, err := fw.Write(entry.data); err != nil {
			return docxerr.WrapPath("opc", "save", name, err)
		}
	}
	return zw.Close()
}

// flushContentTypes re-marshals the cached content-type registry into its
// part before the archive is written. Writing through the parts map
// directly would invalidate the cache, so the entry is updated in place.
func (p *Package) flushContentTypes() error {
	if p.contentTypes == nil {
		return nil
	}
	data, err := p.contentTypes.marshal()
	if err != nil {
		return docxerr.WrapPath("opc", "save", contentTypesPath, err)
	}
	if entry, exists := p.parts[contentTypesPath]; exists {
		entry.data = data
	} else {
		p.parts[contentTypesPath] = &fileEntry{data: data}
		p.partOrder = append(p.partOrder, contentTypesPath)
	}
	return nil
}
