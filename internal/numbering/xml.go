package numbering

import (
	"strconv"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// FromDOM reads a parsed numbering part into a Document. Abstract
// definitions with no referencing w:num are dropped; a w:num referencing
// a missing abstract definition is dropped too, with no error: a
// numbering part that disagrees with itself is treated as "no numbering"
// rather than a fatal condition.
func FromDOM(root dom.Node) *Document {
	doc := NewDocument()

	numbering := root
	if numbering.Kind() == nametable.TagDocument {
		numbering = numbering.ChildWithTag(nametable.WordNumbering)
	}
	if numbering.IsZero() {
		return doc
	}

	type abstract struct {
		levels []Level
	}
	abstracts := make(map[int]abstract)

	for c := numbering.FirstChild(); !c.IsZero(); c = c.Next() {
		switch c.Kind() {
		case nametable.WordAbstractNum:
			idStr, _ := c.GetAttribute(nametable.WordAbstractNumID)
			id, err := strconv.Atoi(idStr)
			if err != nil {
				continue
			}
			var levels []Level
			for lvl := c.FirstChild(); !lvl.IsZero(); lvl = lvl.Next() {
				if lvl.Kind() != nametable.WordLvl {
					continue
				}
				levels = append(levels, levelFromDOM(lvl))
			}
			abstracts[id] = abstract{levels: levels}

		case nametable.WordNum:
			numIDStr, _ := c.GetAttribute(nametable.WordNumID)
			numID, err := strconv.Atoi(numIDStr)
			if err != nil {
				continue
			}
			absRef := c.ChildWithTag(nametable.WordAbstractNumID)
			if absRef.IsZero() {
				continue
			}
			absIDStr, _ := absRef.GetAttribute(nametable.WordVal)
			absID, err := strconv.Atoi(absIDStr)
			if err != nil {
				continue
			}
			abs, ok := abstracts[absID]
			if !ok {
				continue
			}
			def := &Definition{AbstractNumID: absID, NumID: numID}
			for i := 0; i < len(abs.levels) && i < len(def.Levels); i++ {
				def.Levels[i] = abs.levels[i]
			}
			doc.Definitions = append(doc.Definitions, def)
			if numID >= doc.nextNumID {
				doc.nextNumID = numID + 1
			}
			if absID >= doc.nextAbstractID {
				doc.nextAbstractID = absID + 1
			}
		}
	}
	return doc
}

func levelFromDOM(lvl dom.Node) Level {
	var out Level
	if start := lvl.ChildWithTag(nametable.WordStart); !start.IsZero() {
		if v, ok := start.GetAttribute(nametable.WordVal); ok {
			out.Start, _ = strconv.Atoi(v)
		}
	}
	if fmtEl := lvl.ChildWithTag(nametable.WordNumFmt); !fmtEl.IsZero() {
		out.NumFmt, _ = fmtEl.GetAttribute(nametable.WordVal)
	}
	if text := lvl.ChildWithTag(nametable.WordLvlText); !text.IsZero() {
		out.LvlText, _ = text.GetAttribute(nametable.WordVal)
	}
	return out
}

// ToDOM builds a fresh numbering part tree from the Document. Each
// definition emits levels up to the last populated one, so a partially
// defined list keeps its original depth while a rebuilt one carries the
// full chain.
func (d *Document) ToDOM() *dom.Document {
	out := dom.New()
	numbering := out.CreateElement(nametable.WordNumbering)
	out.AppendChild(out.Root(), numbering)

	for _, def := range d.Definitions {
		abs := out.CreateElement(nametable.WordAbstractNum)
		out.SetAttribute(abs, nametable.WordAbstractNumID, strconv.Itoa(def.AbstractNumID))
		depth := 0
		for i, level := range def.Levels {
			if level.NumFmt != "" || level.LvlText != "" || level.Start != 0 {
				depth = i + 1
			}
		}
		for i, level := range def.Levels[:depth] {
			lvl := out.CreateElement(nametable.WordLvl)
			out.SetAttribute(lvl, nametable.WordIlvl, strconv.Itoa(i))

			start := out.CreateElement(nametable.WordStart)
			startVal := level.Start
			if startVal == 0 {
				startVal = 1
			}
			out.SetAttribute(start, nametable.WordVal, strconv.Itoa(startVal))
			out.AppendChild(lvl, start)

			numFmt := out.CreateElement(nametable.WordNumFmt)
			fmtVal := level.NumFmt
			if fmtVal == "" {
				fmtVal = "decimal"
			}
			out.SetAttribute(numFmt, nametable.WordVal, fmtVal)
			out.AppendChild(lvl, numFmt)

			lvlText := out.CreateElement(nametable.WordLvlText)
			out.SetAttribute(lvlText, nametable.WordVal, level.LvlText)
			out.AppendChild(lvl, lvlText)

			out.AppendChild(abs, lvl)
		}
		out.AppendChild(numbering, abs)
	}

	for _, def := range d.Definitions {
		num := out.CreateElement(nametable.WordNum)
		out.SetAttribute(num, nametable.WordNumID, strconv.Itoa(def.NumID))
		absRef := out.CreateElement(nametable.WordAbstractNumID)
		out.SetAttribute(absRef, nametable.WordVal, strconv.Itoa(def.AbstractNumID))
		out.AppendChild(num, absRef)
		out.AppendChild(numbering, num)
	}

	return out
}
