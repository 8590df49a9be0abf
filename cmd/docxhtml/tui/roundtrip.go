package tui

import (
	"bytes"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/xmlio"
	"github.com/uxwrite/docxhtml/pkg/docxhtml"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

// roundtripView renders a line diff between the document part before and
// after an unedited get/put round trip. Anything it shows is content
// the engine failed to preserve.
type roundtripView struct {
	lines  []string
	offset int
	height int
}

func newRoundtripView(path string, pkg *opc.Package, html *dom.Document) (*roundtripView, error) {
	before, err := pkg.ReadPart("word/document.xml")
	if err != nil {
		return nil, err
	}

	// Re-open the package so the put never touches the inspector's copy.
	work, err := opc.OpenZip(path)
	if err != nil {
		return nil, err
	}
	if err := docxhtml.Put(work, html, nil); err != nil {
		return nil, err
	}
	after, err := work.ReadPart("word/document.xml")
	if err != nil {
		return nil, err
	}

	return &roundtripView{
		lines:  diffLines(normalize(before), normalize(after)),
		height: 24,
	}, nil
}

// normalize reserializes the XML through the deterministic serializer so
// the diff shows semantic changes, not attribute-order noise.
func normalize(data []byte) string {
	res, err := xmlio.Parse(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	var buf bytes.Buffer
	if err := xmlio.Serialize(&buf, res.Document, xmlio.SerializeOptions{Indent: "  "}); err != nil {
		return string(data)
	}
	return buf.String()
}

func diffLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []string
	identical := true
	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				identical = false
				out = append(out, DiffAddStyle.Render("+ "+line))
			case diffmatchpatch.DiffDelete:
				identical = false
				out = append(out, DiffDelStyle.Render("- "+line))
			default:
				out = append(out, "  "+line)
			}
		}
	}
	if identical {
		return []string{DiffAddStyle.Render("round trip is clean: no differences")}
	}
	return out
}

// update returns done=true when the view should close.
func (v *roundtripView) update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return true, nil
		case "ctrl+c":
			return true, tea.Quit
		case "up", "k":
			if v.offset > 0 {
				v.offset--
			}
		case "down", "j":
			if v.offset < len(v.lines)-1 {
				v.offset++
			}
		}
	}
	return false, nil
}

func (v *roundtripView) view() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("round-trip diff"))
	sb.WriteString("\n\n")

	visible := v.height - 4
	if visible < 1 {
		visible = 1
	}
	end := v.offset + visible
	if end > len(v.lines) {
		end = len(v.lines)
	}
	for i := v.offset; i < end; i++ {
		sb.WriteString(v.lines[i])
		sb.WriteString("\n")
	}
	sb.WriteString(FormatHelp("j/k: scroll", "esc: back"))
	return sb.String()
}
