package opc

import (
	"path/filepath"
	"testing"
)

func TestDirRoundTrip(t *testing.T) {
	pkg := New()
	pkg.WritePart("word/document.xml", []byte("<doc/>"))
	pkg.WritePart("word/media/image1.png", []byte{0x89, 'P', 'N', 'G'})

	root := filepath.Join(t.TempDir(), "exploded")
	if err := pkg.SaveDir(root); err != nil {
		t.Fatalf("SaveDir: %v", err)
	}

	reopened, err := OpenDir(root)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	data, err := reopened.ReadPart("word/document.xml")
	if err != nil || string(data) != "<doc/>" {
		t.Errorf("document part did not round-trip: %q, %v", data, err)
	}
	if !reopened.HasPart("word/media/image1.png") {
		t.Errorf("binary part missing after round trip: %v", reopened.Parts())
	}
}

func TestRemovePartDropsInboundRelationships(t *testing.T) {
	pkg := New()
	pkg.WritePart("word/document.xml", []byte("<doc/>"))
	pkg.WritePart("word/styles.xml", []byte("<styles/>"))
	if _, err := pkg.AddRelationship("word/document.xml", "urn:type/styles", "styles.xml", ""); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	if _, err := pkg.AddRelationship("word/document.xml", "urn:type/external", "http://example.com/", "External"); err != nil {
		t.Fatalf("AddRelationship external: %v", err)
	}

	if !pkg.RemovePart("word/styles.xml") {
		t.Fatal("RemovePart returned false for an existing part")
	}

	rels, err := pkg.Relationships("word/document.xml")
	if err != nil {
		t.Fatalf("Relationships: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("expected only the external relationship to survive, got %v", rels)
	}
	if rels[0].TargetMode != "External" {
		t.Errorf("wrong relationship survived: %+v", rels[0])
	}
}
