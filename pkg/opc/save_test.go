package opc_test

import (
	"path/filepath"
	"testing"

	"github.com/uxwrite/docxhtml/internal/testutil"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

// Saving the same package twice produces archives with identical entry
// contents, so unmodified saves never churn a document on disk.
func TestSaveIsContentStable(t *testing.T) {
	pkg := opc.New()
	pkg.WritePart("word/document.xml", []byte(`<w:document xmlns:w="urn:w"><w:body/></w:document>`))
	if _, err := pkg.AddRelationship("", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument", "word/document.xml", ""); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.docx")
	second := filepath.Join(dir, "second.docx")
	if err := pkg.Save(first); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := pkg.Save(second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	comp, err := testutil.CompareZIPContents(t, first, second)
	if err != nil {
		t.Fatalf("CompareZIPContents: %v", err)
	}
	if !comp.IsIdentical {
		t.Errorf("saves differ:\n%s", comp.Report())
	}
}
