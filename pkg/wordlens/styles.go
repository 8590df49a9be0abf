package wordlens

import (
	"strconv"
	"strings"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
	"github.com/uxwrite/docxhtml/internal/style"
)

// selectorForStyle maps a paragraph style id to its CSS selector:
// Heading1..6 become h1..h6, Normal is the bare paragraph, and any other
// id becomes a classed paragraph selector.
func selectorForStyle(styleID string) string {
	if level, ok := headingStyleLevel(styleID); ok {
		return "h" + strconv.Itoa(level)
	}
	if styleID == "Normal" {
		return "p"
	}
	return "p." + styleID
}

// styleIDForSelector is the put-direction inverse of selectorForStyle.
func styleIDForSelector(sel style.Selector) string {
	if level := sel.HeadingLevel(); level > 0 {
		return "Heading" + strconv.Itoa(level)
	}
	if sel.Class != "" {
		return sel.Class
	}
	return "Normal"
}

// SheetFromStyles reads a parsed styles part into a CSS sheet: each
// paragraph-family w:style contributes one rule, carrying the border,
// shading, and numbering properties the cascade models.
func SheetFromStyles(stylesDoc *dom.Document) *style.Sheet {
	sheet := style.NewSheet()
	if stylesDoc == nil {
		return sheet
	}
	styles := stylesDoc.Root().ChildWithTag(nametable.WordStyles)
	if styles.IsZero() {
		return sheet
	}
	for c := styles.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() != nametable.WordStyle {
			continue
		}
		if t, _ := c.GetAttribute(nametable.WordType); t != "paragraph" {
			continue
		}
		styleID, _ := c.GetAttribute(nametable.WordStyleID)
		if styleID == "" {
			continue
		}
		rule, err := sheet.Lookup(selectorForStyle(styleID), true, false)
		if err != nil {
			continue
		}
		pPr := c.ChildWithTag(nametable.WordPPr)
		if pPr.IsZero() {
			continue
		}
		readParagraphProps(stylesDoc, pPr, rule)
	}
	return sheet
}

// readParagraphProps fills rule from a style's pPr: numbering references,
// borders, and shading.
func readParagraphProps(doc *dom.Document, pPr dom.Node, rule *style.Rule) {
	if numPr := pPr.ChildWithTag(nametable.WordNumPr); !numPr.IsZero() {
		if numID := numPr.ChildWithTag(nametable.WordNumID); !numID.IsZero() {
			if v, ok := numID.GetAttribute(nametable.WordVal); ok {
				rule.Set("-word-numId", v)
			}
		}
		if ilvl := numPr.ChildWithTag(nametable.WordIlvl); !ilvl.IsZero() {
			if v, ok := ilvl.GetAttribute(nametable.WordVal); ok {
				rule.Set("-word-ilvl", v)
			}
		}
	}

	pBdrTag := doc.Names.TagForName(nametable.NSWordproc, "pBdr")
	if pBdr := pPr.ChildWithTag(pBdrTag); !pBdr.IsZero() {
		for _, side := range style.BorderSides {
			sideTag := doc.Names.TagForName(nametable.NSWordproc, side)
			el := pBdr.ChildWithTag(sideTag)
			if el.IsZero() {
				continue
			}
			var b style.Border
			if sz, ok := el.GetAttribute(doc.Names.TagForName(nametable.NSWordproc, "sz")); ok {
				b.WidthEighths, _ = strconv.Atoi(sz)
			}
			b.Val, _ = el.GetAttribute(nametable.WordVal)
			if color, ok := el.GetAttribute(doc.Names.TagForName(nametable.NSWordproc, "color")); ok && !strings.EqualFold(color, "auto") {
				b.ColorHex = color
			}
			style.BorderFromWord(rule, side, b)
		}
	}

	shdTag := doc.Names.TagForName(nametable.NSWordproc, "shd")
	if shd := pPr.ChildWithTag(shdTag); !shd.IsZero() {
		var s style.Shading
		s.Fill, _ = shd.GetAttribute(doc.Names.TagForName(nametable.NSWordproc, "fill"))
		s.Val, _ = shd.GetAttribute(nametable.WordVal)
		style.ShadingToBackgroundColor(rule, s)
	}
}

// ApplySheetToStyles writes the sheet's rules back into the styles part,
// creating missing w:style declarations and updating only the properties
// the cascade models. Concrete properties outside the model are left
// alone.
func ApplySheetToStyles(sheet *style.Sheet, stylesDoc *dom.Document) {
	styles := stylesDoc.Root().ChildWithTag(nametable.WordStyles)
	if styles.IsZero() {
		styles = stylesDoc.CreateElement(nametable.WordStyles)
		stylesDoc.AppendChild(stylesDoc.Root(), styles)
	}

	// latentStyles carries no information the cascade models and bloats
	// every save; drop it.
	if latent := styles.ChildWithTag(nametable.WordLatentStyles); !latent.IsZero() {
		stylesDoc.RemoveNode(latent)
	}

	for _, selText := range sheet.Selectors() {
		sel, ok := style.ParseSelector(selText)
		if !ok || sel.Family() != style.FamilyParagraph {
			continue
		}
		rule, err := sheet.Lookup(selText, false, false)
		if err != nil {
			continue
		}
		styleID := styleIDForSelector(sel)
		decl := findStyleByID(styles, styleID)
		if decl.IsZero() {
			decl = createStyleDecl(stylesDoc, styles, styleID, sel)
		}
		writeParagraphProps(stylesDoc, decl, rule)
	}
}

func findStyleByID(styles dom.Node, styleID string) dom.Node {
	for c := styles.FirstChild(); !c.IsZero(); c = c.Next() {
		if c.Kind() != nametable.WordStyle {
			continue
		}
		if id, _ := c.GetAttribute(nametable.WordStyleID); id == styleID {
			return c
		}
	}
	return dom.Node{}
}

func createStyleDecl(doc *dom.Document, styles dom.Node, styleID string, sel style.Selector) dom.Node {
	decl := doc.CreateElement(nametable.WordStyle)
	doc.SetAttribute(decl, nametable.WordType, "paragraph")
	doc.SetAttribute(decl, nametable.WordStyleID, styleID)

	nameTag := doc.Names.TagForName(nametable.NSWordproc, "name")
	name := doc.CreateElement(nameTag)
	displayName := styleID
	if level := sel.HeadingLevel(); level > 0 {
		displayName = "heading " + strconv.Itoa(level)
	}
	doc.SetAttribute(name, nametable.WordVal, displayName)
	doc.AppendChild(decl, name)

	if level := sel.HeadingLevel(); level > 0 {
		basedOn := doc.CreateElement(nametable.WordBasedOn)
		doc.SetAttribute(basedOn, nametable.WordVal, "Normal")
		doc.AppendChild(decl, basedOn)
	}

	doc.AppendChild(styles, decl)
	return decl
}

// writeParagraphProps reconciles a style declaration's pPr against the
// rule: numbering references, borders, and shading. Only properties the
// rule actually carries are touched.
func writeParagraphProps(doc *dom.Document, decl dom.Node, rule *style.Rule) {
	pPr := decl.ChildWithTag(nametable.WordPPr)
	ensurePPr := func() dom.Node {
		if pPr.IsZero() {
			pPr = doc.CreateElement(nametable.WordPPr)
			doc.AppendChild(decl, pPr)
		}
		return pPr
	}

	if numID, hasNum := rule.Declarations["-word-numId"]; hasNum {
		ilvl := rule.Declarations["-word-ilvl"]
		numPr := ensurePPr().ChildWithTag(nametable.WordNumPr)
		if numPr.IsZero() {
			numPr = doc.CreateElement(nametable.WordNumPr)
			doc.AppendChild(pPr, numPr)
		}
		setValChild(doc, numPr, nametable.WordIlvl, ilvl)
		setValChild(doc, numPr, nametable.WordNumID, numID)
	}

	pBdrTag := doc.Names.TagForName(nametable.NSWordproc, "pBdr")
	for _, side := range style.BorderSides {
		b, ok := style.BorderToWord(rule, side)
		if !ok {
			continue
		}
		pBdr := ensurePPr().ChildWithTag(pBdrTag)
		if pBdr.IsZero() {
			pBdr = doc.CreateElement(pBdrTag)
			doc.AppendChild(pPr, pBdr)
		}
		sideTag := doc.Names.TagForName(nametable.NSWordproc, side)
		el := pBdr.ChildWithTag(sideTag)
		if el.IsZero() {
			el = doc.CreateElement(sideTag)
			doc.AppendChild(pBdr, el)
		}
		doc.SetAttribute(el, nametable.WordVal, b.Val)
		doc.SetAttribute(el, doc.Names.TagForName(nametable.NSWordproc, "sz"), strconv.Itoa(b.WidthEighths))
		if b.ColorHex != "" {
			doc.SetAttribute(el, doc.Names.TagForName(nametable.NSWordproc, "color"), b.ColorHex)
		}
	}

	if s, ok := style.BackgroundColorToShading(rule); ok {
		shdTag := doc.Names.TagForName(nametable.NSWordproc, "shd")
		shd := ensurePPr().ChildWithTag(shdTag)
		if shd.IsZero() {
			shd = doc.CreateElement(shdTag)
			doc.AppendChild(pPr, shd)
		}
		doc.SetAttribute(shd, nametable.WordVal, s.Val)
		doc.SetAttribute(shd, doc.Names.TagForName(nametable.NSWordproc, "fill"), s.Fill)
	}
}

func setValChild(doc *dom.Document, parent dom.Node, tag nametable.Tag, value string) {
	el := parent.ChildWithTag(tag)
	if el.IsZero() {
		el = doc.CreateElement(tag)
		doc.AppendChild(parent, el)
	}
	doc.SetAttribute(el, nametable.WordVal, value)
}
