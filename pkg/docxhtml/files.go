package docxhtml

import (
	"bytes"
	"os"

	"github.com/uxwrite/docxhtml/internal/docxerr"
	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/internal/xmlio"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

// GetFile converts a word document on disk to an HTML file.
func GetFile(concretePath, abstractPath string, opts *Options) error {
	pkg, err := opc.OpenZip(concretePath)
	if err != nil {
		return err
	}
	html, err := Get(pkg, opts)
	if err != nil {
		return err
	}

	o := resolveOptions(opts)
	indent := o.Indent
	if indent == "" {
		indent = "  "
	}
	var buf bytes.Buffer
	if err := xmlio.Serialize(&buf, html, xmlio.SerializeOptions{Indent: indent}); err != nil {
		return docxerr.WrapPath("docxhtml", "serialize", abstractPath, err)
	}
	if err := os.WriteFile(abstractPath, buf.Bytes(), 0o644); err != nil {
		return docxerr.WrapPath("docxhtml", "write", abstractPath, err)
	}
	return nil
}

// PutFile updates a word document on disk from an edited HTML file. The
// HTML must have been produced by GetFile from the same document.
func PutFile(concretePath, abstractPath string, opts *Options) error {
	pkg, err := opc.OpenZip(concretePath)
	if err != nil {
		return err
	}
	html, err := parseHTMLFile(abstractPath)
	if err != nil {
		return err
	}
	if err := Put(pkg, html, opts); err != nil {
		return err
	}
	return pkg.Save(concretePath)
}

// CreateFile creates a fresh word document from an HTML file.
func CreateFile(concretePath, abstractPath string, opts *Options) error {
	html, err := parseHTMLFile(abstractPath)
	if err != nil {
		return err
	}
	pkg, err := Create(html, opts)
	if err != nil {
		return err
	}
	return pkg.Save(concretePath)
}

func parseHTMLFile(path string) (*dom.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docxerr.WrapPath("docxhtml", "read", path, err)
	}
	res, err := xmlio.ParseIntoIDDocument(bytes.NewReader(data), nametable.HTMLId)
	if err != nil {
		return nil, docxerr.WrapPath("docxhtml", "parse", path, err)
	}
	return res.Document, nil
}
