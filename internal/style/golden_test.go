package style_test

import (
	"testing"

	"github.com/uxwrite/docxhtml/internal/style"
	"github.com/uxwrite/docxhtml/internal/testutil"
)

// The canonical CSS a sheet emits is part of the editor contract: ids in
// the HTML reference it across round trips, so its exact shape is pinned
// with a golden file.
func TestSheetCopyTextGolden(t *testing.T) {
	sheet := style.NewSheet()
	css := `p { color: #ff0000; margin-top: 12pt; }` + "\n" +
		`h1::before { content: counter(h1) " "; }` + "\n"
	if err := sheet.UpdateFromText(css); err != nil {
		t.Fatalf("UpdateFromText: %v", err)
	}

	gf := testutil.NewGoldenFileInTestdata(t)
	gf.Assert(t, "sheet-copytext", []byte(sheet.CopyText()))
}
