package wordlens

import (
	"strconv"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/lens"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// cellInfo is one merged cell during grid reconstruction: the owning
// w:tc plus the rectangle it covers.
type cellInfo struct {
	tc      dom.Node
	colspan int
	rowspan int
}

func gridSpanOf(tc dom.Node) int {
	tcPr := tc.ChildWithTag(nametable.WordTcPr)
	if tcPr.IsZero() {
		return 1
	}
	gs := tcPr.ChildWithTag(nametable.WordGridSpan)
	if gs.IsZero() {
		return 1
	}
	v, _ := gs.GetAttribute(nametable.WordVal)
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// vMergeState returns "restart", "continue", or "" for a cell. A vMerge
// element with no val (or val="continue") continues the merge from the
// row above.
func vMergeState(tc dom.Node) string {
	tcPr := tc.ChildWithTag(nametable.WordTcPr)
	if tcPr.IsZero() {
		return ""
	}
	vm := tcPr.ChildWithTag(nametable.WordVMerge)
	if vm.IsZero() {
		return ""
	}
	if v, ok := vm.GetAttribute(nametable.WordVal); ok && v == "restart" {
		return "restart"
	}
	return "continue"
}

// tableRows returns the table's w:tr children in order.
func tableRows(conTbl dom.Node) []dom.Node {
	var rows []dom.Node
	for c := conTbl.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() == nametable.WordTr {
			rows = append(rows, c)
		}
	}
	return rows
}

// getTable reconstructs the rectangular cell grid: cells spanning
// multiple rows or columns occupy every covered slot with the same cell
// reference, and only a cell's top-left slot emits a <td>.
func (cv *Converter) getTable(con dom.Node) (dom.Node, bool) {
	doc := cv.Abstract
	table := doc.CreateElement(nametable.HTMLTable)
	cv.assignID(table, con)
	tbody := doc.CreateElement(nametable.HTMLTbody)
	doc.AppendChild(table, tbody)

	// vOpen maps a column to the cell whose vertical merge is still open
	// above the current row. Rowspans are stamped at the end, once every
	// continuation row has been counted.
	type pendingRowspan struct {
		info *cellInfo
		td   dom.Node
	}
	var pending []pendingRowspan
	vOpen := map[int]*cellInfo{}
	for _, row := range tableRows(con) {
		tr := doc.CreateElement(nametable.HTMLTr)
		cv.assignID(tr, row)
		doc.AppendChild(tbody, tr)

		newVOpen := map[int]*cellInfo{}
		col := 0
		for c := row.FirstChild(); !c.IsZero(); c = c.Next() {
			if c.Kind() != nametable.WordTc {
				continue
			}
			span := gridSpanOf(c)
			switch vMergeState(c) {
			case "continue":
				if open := vOpen[col]; open != nil {
					open.rowspan++
					newVOpen[col] = open
					col += span
					continue
				}
				// A continue with nothing above it degrades to a plain
				// cell.
				fallthrough
			default:
				info := &cellInfo{tc: c, colspan: span, rowspan: 1}
				if vMergeState(c) == "restart" {
					newVOpen[col] = info
				}
				td := doc.CreateElement(nametable.HTMLTd)
				cv.assignID(td, c)
				if span > 1 {
					doc.SetAttribute(td, nametable.HTMLColspan, strconv.Itoa(span))
				}
				lens.ContainerGet(blockLens{cv}, td, c)
				doc.AppendChild(tr, td)
				pending = append(pending, pendingRowspan{info: info, td: td})
				col += span
			}
		}
		vOpen = newVOpen
	}

	for _, p := range pending {
		if p.info.rowspan > 1 {
			doc.SetAttribute(p.td, nametable.HTMLRowspan, strconv.Itoa(p.info.rowspan))
		}
	}

	return table, true
}

// rowLens reconciles w:tr children of a table.
type rowLens struct {
	cv *Converter
}

func (l rowLens) IsVisible(con dom.Node) bool { return con.Kind() == nametable.WordTr }

func (l rowLens) Get(con dom.Node) (dom.Node, bool) {
	// Get-direction table walking happens in getTable, which needs the
	// whole grid at once; the row lens only serves Put.
	return dom.Node{}, false
}

func (l rowLens) Put(abs, con dom.Node) {
	lens.ContainerPut(cellLens{l.cv}, abs, con, l.cv.lookupConcrete)
}

func (l rowLens) Create(abs dom.Node) (dom.Node, bool) {
	if abs.Kind() != nametable.HTMLTr {
		return dom.Node{}, false
	}
	con := l.cv.Concrete.CreateElement(nametable.WordTr)
	lens.ContainerPut(cellLens{l.cv}, abs, con, l.cv.lookupConcrete)
	return con, true
}

func (l rowLens) Remove(con dom.Node) {}

// cellLens reconciles w:tc children of a row.
type cellLens struct {
	cv *Converter
}

func (l cellLens) IsVisible(con dom.Node) bool { return con.Kind() == nametable.WordTc }

func (l cellLens) Get(con dom.Node) (dom.Node, bool) { return dom.Node{}, false }

func (l cellLens) Put(abs, con dom.Node) {
	l.applyCellSpans(abs, con)
	if l.cv.unchangedSince(abs) {
		return
	}
	lens.ContainerPut(blockLens{l.cv}, abs, con, l.cv.lookupConcrete)
}

func (l cellLens) Create(abs dom.Node) (dom.Node, bool) {
	switch abs.Kind() {
	case nametable.HTMLTd, nametable.HTMLTh:
	default:
		return dom.Node{}, false
	}
	doc := l.cv.Concrete
	con := doc.CreateElement(nametable.WordTc)
	l.applyCellSpans(abs, con)
	lens.ContainerPut(blockLens{l.cv}, abs, con, l.cv.lookupConcrete)
	// A cell must contain at least one paragraph.
	if con.ChildWithTag(nametable.WordP).IsZero() {
		doc.AppendChild(con, doc.CreateElement(nametable.WordP))
	}
	return con, true
}

func (l cellLens) Remove(con dom.Node) {}

// applyCellSpans makes the concrete tcPr agree with the td's
// colspan/rowspan: gridSpan follows colspan, and a rowspan greater than
// one marks the origin with vMerge restart. Continuation cells for the
// covered rows are synthesized afterwards by rebuildVerticalMerges.
func (l cellLens) applyCellSpans(abs, con dom.Node) {
	doc := l.cv.Concrete
	tcPr := con.ChildWithTag(nametable.WordTcPr)

	ensureTcPr := func() dom.Node {
		if tcPr.IsZero() {
			tcPr = doc.CreateElement(nametable.WordTcPr)
			doc.InsertBefore(con, tcPr, con.FirstChild())
		}
		return tcPr
	}

	colspan := intAttr(abs, nametable.HTMLColspan, 1)
	if colspan > 1 {
		gs := ensureTcPr().ChildWithTag(nametable.WordGridSpan)
		if gs.IsZero() {
			gs = doc.CreateElement(nametable.WordGridSpan)
			doc.AppendChild(tcPr, gs)
		}
		doc.SetAttribute(gs, nametable.WordVal, strconv.Itoa(colspan))
	} else if !tcPr.IsZero() {
		if gs := tcPr.ChildWithTag(nametable.WordGridSpan); !gs.IsZero() {
			doc.RemoveNode(gs)
		}
	}

	rowspan := intAttr(abs, nametable.HTMLRowspan, 1)
	if rowspan > 1 {
		vm := ensureTcPr().ChildWithTag(nametable.WordVMerge)
		if vm.IsZero() {
			vm = doc.CreateElement(nametable.WordVMerge)
			doc.AppendChild(tcPr, vm)
		}
		doc.SetAttribute(vm, nametable.WordVal, "restart")
	} else if !tcPr.IsZero() {
		if vm := tcPr.ChildWithTag(nametable.WordVMerge); !vm.IsZero() {
			doc.RemoveNode(vm)
		}
	}

	if !tcPr.IsZero() && tcPr.FirstChild().IsZero() && len(tcPr.Attributes()) == 0 {
		doc.RemoveNode(tcPr)
	}
}

func intAttr(n dom.Node, tag nametable.Tag, def int) int {
	v, ok := n.GetAttribute(tag)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		return def
	}
	return i
}

// putTable reconciles an edited table: rows through the row lens, then a
// rebuild of the vertical-merge continuation cells the HTML grid implies.
func (cv *Converter) putTable(abs, con dom.Node) {
	if cv.unchangedSince(abs) {
		return
	}
	tbody := abs.ChildWithTag(nametable.HTMLTbody)
	if tbody.IsZero() {
		tbody = abs
	}
	lens.ContainerPut(rowLens{cv}, tbody, con, cv.lookupConcrete)
	cv.rebuildVerticalMerges(tbody, con)
}

func (cv *Converter) createTable(abs dom.Node) (dom.Node, bool) {
	doc := cv.Concrete
	con := doc.CreateElement(nametable.WordTbl)
	doc.AppendChild(con, doc.CreateElement(nametable.WordTblPr))

	tbody := abs.ChildWithTag(nametable.HTMLTbody)
	if tbody.IsZero() {
		tbody = abs
	}

	// tblGrid carries one gridCol per column of the widest row.
	cols := 0
	for tr := tbody.FirstChild(); !tr.IsZero(); tr = tr.Next() {
		if tr.Kind() != nametable.HTMLTr {
			continue
		}
		width := 0
		for td := tr.FirstChild(); !td.IsZero(); td = td.Next() {
			if td.Kind() == nametable.HTMLTd || td.Kind() == nametable.HTMLTh {
				width += intAttr(td, nametable.HTMLColspan, 1)
			}
		}
		if width > cols {
			cols = width
		}
	}
	grid := doc.CreateElement(nametable.WordTblGrid)
	for i := 0; i < cols; i++ {
		doc.AppendChild(grid, doc.CreateElement(nametable.WordGridCol))
	}
	doc.AppendChild(con, grid)

	lens.ContainerPut(rowLens{cv}, tbody, con, cv.lookupConcrete)
	cv.rebuildVerticalMerges(tbody, con)
	return con, true
}

// rebuildVerticalMerges synthesizes the continuation w:tc cells a
// rowspan implies: for every slot covered by a merge from above, a cell
// with vMerge (continue) and an empty paragraph is inserted at the
// correct column position in the concrete row.
func (cv *Converter) rebuildVerticalMerges(absTbody, conTbl dom.Node) {
	doc := cv.Concrete

	// open maps a column to (last covered row index, colspan) for
	// merges started above.
	type merge struct {
		untilRow int
		colspan  int
	}
	open := map[int]merge{}

	conRows := tableRows(conTbl)
	rowIdx := 0
	for tr := absTbody.FirstChild(); !tr.IsZero(); tr = tr.Next() {
		if tr.Kind() != nametable.HTMLTr {
			continue
		}
		if rowIdx >= len(conRows) {
			break
		}
		conRow := conRows[rowIdx]

		// Walk abstract cells and open merges left to right, tracking
		// which columns this row fills itself.
		type slotKind struct {
			covered bool
			colspan int
		}
		var slots []slotKind
		col := 0
		for td := tr.FirstChild(); !td.IsZero(); td = td.Next() {
			if td.Kind() != nametable.HTMLTd && td.Kind() != nametable.HTMLTh {
				continue
			}
			for {
				if m, ok := open[col]; ok && m.untilRow >= rowIdx {
					slots = append(slots, slotKind{covered: true, colspan: m.colspan})
					col += m.colspan
					continue
				}
				break
			}
			colspan := intAttr(td, nametable.HTMLColspan, 1)
			rowspan := intAttr(td, nametable.HTMLRowspan, 1)
			if rowspan > 1 {
				open[col] = merge{untilRow: rowIdx + rowspan - 1, colspan: colspan}
			}
			slots = append(slots, slotKind{covered: false, colspan: colspan})
			col += colspan
		}
		// Trailing covered columns after the last cell.
		for {
			if m, ok := open[col]; ok && m.untilRow >= rowIdx {
				slots = append(slots, slotKind{covered: true, colspan: m.colspan})
				col += m.colspan
				continue
			}
			break
		}

		// Now make the concrete row match: real cells are already in
		// order; insert a continuation cell wherever a covered slot
		// appears.
		next := conRow.FirstChild()
		advance := func() dom.Node {
			for !next.IsZero() && next.Kind() != nametable.WordTc {
				next = next.Next()
			}
			return next
		}
		for _, slot := range slots {
			cur := advance()
			if slot.covered {
				if !cur.IsZero() && vMergeState(cur) == "continue" {
					// An existing continuation cell survives in place.
					next = cur.Next()
					continue
				}
				cont := doc.CreateElement(nametable.WordTc)
				tcPr := doc.CreateElement(nametable.WordTcPr)
				if slot.colspan > 1 {
					gs := doc.CreateElement(nametable.WordGridSpan)
					doc.SetAttribute(gs, nametable.WordVal, strconv.Itoa(slot.colspan))
					doc.AppendChild(tcPr, gs)
				}
				doc.AppendChild(tcPr, doc.CreateElement(nametable.WordVMerge))
				doc.AppendChild(cont, tcPr)
				doc.AppendChild(cont, doc.CreateElement(nametable.WordP))
				doc.InsertBefore(conRow, cont, cur)
			} else {
				if !cur.IsZero() {
					next = cur.Next()
				}
			}
		}
		rowIdx++
	}
}
