package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/pkg/docxhtml"
	"github.com/uxwrite/docxhtml/pkg/opc"
)

// treeLine is one flattened row of the node tree.
type treeLine struct {
	node      dom.Node
	depth     int
	collapsed bool
}

// Inspector is the bubbletea model for `docxhtml inspect`: it walks the
// HTML tree a document converts to and can switch to a round-trip diff
// view.
type Inspector struct {
	path string
	pkg  *opc.Package
	html *dom.Document

	lines     []treeLine
	collapsed map[uint64]bool
	cursor    int
	offset    int
	height    int

	diffView *roundtripView
	err      error
	quitting bool
}

// NewInspector opens the document and runs Get on it.
func NewInspector(path string, opts *docxhtml.Options) (*Inspector, error) {
	pkg, err := opc.OpenZip(path)
	if err != nil {
		return nil, err
	}
	html, err := docxhtml.Get(pkg, opts)
	if err != nil {
		return nil, err
	}
	m := &Inspector{
		path:      path,
		pkg:       pkg,
		html:      html,
		collapsed: make(map[uint64]bool),
		height:    24,
	}
	m.rebuild()
	return m, nil
}

func (m *Inspector) rebuild() {
	m.lines = m.lines[:0]
	var walk func(n dom.Node, depth int)
	walk = func(n dom.Node, depth int) {
		if n.Kind() == nametable.TagText && strings.TrimSpace(n.Value()) == "" {
			return
		}
		collapsed := m.collapsed[n.SeqNo()]
		m.lines = append(m.lines, treeLine{node: n, depth: depth, collapsed: collapsed})
		if collapsed {
			return
		}
		for c := n.FirstChild(); !c.IsZero(); c = c.Next() {
			walk(c, depth+1)
		}
	}
	for c := m.html.Root().FirstChild(); !c.IsZero(); c = c.Next() {
		walk(c, 0)
	}
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Inspector) Init() tea.Cmd { return nil }

func (m *Inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.diffView != nil {
		done, cmd := m.diffView.update(msg)
		if done {
			m.diffView = nil
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.lines)-1 {
				m.cursor++
			}

		case "enter", " ":
			if m.cursor < len(m.lines) {
				n := m.lines[m.cursor].node
				if !n.FirstChild().IsZero() {
					m.collapsed[n.SeqNo()] = !m.collapsed[n.SeqNo()]
					m.rebuild()
				}
			}

		case "d":
			view, err := newRoundtripView(m.path, m.pkg, m.html)
			if err != nil {
				m.err = err
			} else {
				m.diffView = view
			}
		}
	}

	// Keep the cursor on screen.
	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}

	return m, nil
}

func (m *Inspector) View() string {
	if m.quitting {
		return ""
	}
	if m.diffView != nil {
		return m.diffView.view()
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(m.path))
	sb.WriteString("\n\n")

	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	end := m.offset + visible
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.offset; i < end; i++ {
		line := m.lines[i]
		rendered := renderLine(m.html, line)
		if i == m.cursor {
			sb.WriteString(SelectedStyle.Render("> " + rendered))
		} else {
			sb.WriteString("  " + rendered)
		}
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(DiffDelStyle.Render(fmt.Sprintf("\nerror: %v\n", m.err)))
	}
	sb.WriteString(FormatHelp("j/k: move", "enter: fold", "d: round-trip diff", "q: quit"))
	return sb.String()
}

func renderLine(doc *dom.Document, line treeLine) string {
	indent := strings.Repeat("  ", line.depth)

	if line.node.Kind() == nametable.TagText {
		return indent + TextPreviewStyle.Render(preview(line.node.Value()))
	}
	if !line.node.IsElement() {
		return indent + AttrStyle.Render("(non-element)")
	}

	_, local, err := doc.Names.NameForTag(line.node.Kind())
	if err != nil {
		local = "?"
	}
	out := indent + NodeStyle.Render("<"+local+">")
	if id, ok := line.node.GetAttribute(nametable.HTMLId); ok {
		out += AttrStyle.Render(" #" + id)
	}
	if class, ok := line.node.GetAttribute(nametable.HTMLClass); ok {
		out += AttrStyle.Render(" ." + class)
	}
	if line.collapsed {
		out += AttrStyle.Render(" …")
	}
	return out
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	const max = 60
	if len(s) > max {
		return "\"" + s[:max] + "…\""
	}
	return "\"" + s + "\""
}
