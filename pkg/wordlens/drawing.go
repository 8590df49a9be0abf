package wordlens

import (
	"strconv"

	"github.com/uxwrite/docxhtml/internal/dom"
	"github.com/uxwrite/docxhtml/internal/nametable"
)

// EMUs per CSS pixel at 96dpi.
const emuPerPx = 9525

// findAttrInSubtree returns the first descendant (or root itself) carrying
// the given attribute, in document order.
func findAttrInSubtree(root dom.Node, tag nametable.Tag) (dom.Node, string) {
	if v, ok := root.GetAttribute(tag); ok {
		return root, v
	}
	for c := root.FirstChild(); !c.IsZero(); c = c.Next() {
		if n, v := findAttrInSubtree(c, tag); !n.IsZero() {
			return n, v
		}
	}
	return dom.Node{}, ""
}

func findTagInSubtree(root dom.Node, tag nametable.Tag) dom.Node {
	if root.Kind() == tag {
		return root
	}
	for c := root.FirstChild(); !c.IsZero(); c = c.Next() {
		if n := findTagInSubtree(c, tag); !n.IsZero() {
			return n
		}
	}
	return dom.Node{}
}

// getImage maps a run containing w:drawing to <img>. The src resolves the
// picture's r:embed relationship to its image part; dimensions come from
// the image bytes when a dimensioner is injected, falling back to the
// drawing's wp:extent.
func (l inlineLens) getImage(con dom.Node) (dom.Node, bool) {
	doc := l.cv.Abstract
	img := doc.CreateElement(nametable.HTMLImg)
	l.cv.assignID(img, con)

	drawing := con.ChildWithTag(nametable.WordDrawing)
	_, rid := findAttrInSubtree(drawing, nametable.RelOfficeEmbed)
	var target string
	if rid != "" && l.cv.Pkg != nil {
		if rel, found, err := l.cv.Pkg.ResolveRelationship(l.cv.DocumentPart, rid); err == nil && found {
			target = rel.Target
			doc.SetAttribute(img, nametable.HTMLSrc, target)
		}
	}

	if w, h, ok := l.imageDimensions(target); ok {
		doc.SetAttribute(img, nametable.HTMLWidth, strconv.Itoa(w))
		doc.SetAttribute(img, nametable.HTMLHeight, strconv.Itoa(h))
	} else if extent := findTagInSubtree(drawing, nametable.WPExtent); !extent.IsZero() {
		if cx, ok := extent.GetAttribute(nametable.DrawCx); ok {
			if emu, err := strconv.Atoi(cx); err == nil {
				doc.SetAttribute(img, nametable.HTMLWidth, strconv.Itoa(emu/emuPerPx))
			}
		}
		if cy, ok := extent.GetAttribute(nametable.DrawCy); ok {
			if emu, err := strconv.Atoi(cy); err == nil {
				doc.SetAttribute(img, nametable.HTMLHeight, strconv.Itoa(emu/emuPerPx))
			}
		}
	}
	return img, true
}

// imageDimensions reads the image part and asks the injected dimensioner
// for its pixel size. Both the width and the height fall back to the
// drawing's extent when the query fails.
func (l inlineLens) imageDimensions(target string) (int, int, bool) {
	if l.cv.Images == nil || l.cv.Pkg == nil || target == "" {
		return 0, 0, false
	}
	data, err := l.cv.Pkg.ReadPart(resolvePartPath(l.cv.DocumentPart, target))
	if err != nil {
		return 0, 0, false
	}
	return l.cv.Images.Dimensions(data)
}

// resolvePartPath resolves a relationship target relative to the source
// part's directory, e.g. ("word/document.xml", "media/image1.png") ->
// "word/media/image1.png". Absolute targets drop their leading slash.
func resolvePartPath(sourcePart, target string) string {
	if len(target) > 0 && target[0] == '/' {
		return target[1:]
	}
	slash := -1
	for i := len(sourcePart) - 1; i >= 0; i-- {
		if sourcePart[i] == '/' {
			slash = i
			break
		}
	}
	if slash < 0 {
		return target
	}
	return sourcePart[:slash+1] + target
}

// putImage updates the drawing's extent from the img's width/height and
// re-points the blip relationship if the src changed. The rest of the
// drawing subtree is preserved as-is.
func (l inlineLens) putImage(abs, con dom.Node) {
	doc := l.cv.Concrete
	drawing := con.ChildWithTag(nametable.WordDrawing)
	if drawing.IsZero() {
		return
	}

	if src, ok := abs.GetAttribute(nametable.HTMLSrc); ok && l.cv.Pkg != nil {
		blip, rid := findAttrInSubtree(drawing, nametable.RelOfficeEmbed)
		current := ""
		if rid != "" {
			if rel, found, err := l.cv.Pkg.ResolveRelationship(l.cv.DocumentPart, rid); err == nil && found {
				current = rel.Target
			}
		}
		if !blip.IsZero() && current != src {
			if newID, err := l.cv.Pkg.AddRelationship(l.cv.DocumentPart, imageRelType, src, ""); err == nil {
				doc.SetAttribute(blip, nametable.RelOfficeEmbed, newID)
			}
		}
	}

	extent := findTagInSubtree(drawing, nametable.WPExtent)
	if extent.IsZero() {
		return
	}
	if w, ok := abs.GetAttribute(nametable.HTMLWidth); ok {
		if px, err := strconv.Atoi(w); err == nil {
			doc.SetAttribute(extent, nametable.DrawCx, strconv.Itoa(px*emuPerPx))
		}
	}
	if h, ok := abs.GetAttribute(nametable.HTMLHeight); ok {
		if px, err := strconv.Atoi(h); err == nil {
			doc.SetAttribute(extent, nametable.DrawCy, strconv.Itoa(px*emuPerPx))
		}
	}
}

// createImage builds the minimal inline-picture subtree for a new <img>:
// run > drawing > wp:inline > a:graphic > a:graphicData > pic:pic >
// pic:blipFill > a:blip, with the blip's r:embed pointing at a fresh
// relationship to the image part.
func (l inlineLens) createImage(abs dom.Node) (dom.Node, bool) {
	doc := l.cv.Concrete
	src, ok := abs.GetAttribute(nametable.HTMLSrc)
	if !ok || l.cv.Pkg == nil {
		return dom.Node{}, false
	}
	rid, err := l.cv.Pkg.AddRelationship(l.cv.DocumentPart, imageRelType, src, "")
	if err != nil {
		return dom.Node{}, false
	}

	run := doc.CreateElement(nametable.WordR)
	drawing := doc.CreateElement(nametable.WordDrawing)
	inline := doc.CreateElement(nametable.WPInline)
	extent := doc.CreateElement(nametable.WPExtent)
	graphic := doc.CreateElement(nametable.AGraphic)
	graphicData := doc.CreateElement(nametable.AGraphicData)
	pic := doc.CreateElement(nametable.PicPic)
	blipFill := doc.CreateElement(nametable.PicBlipFill)
	blip := doc.CreateElement(nametable.ABlip)

	doc.SetAttribute(blip, nametable.RelOfficeEmbed, rid)
	if w, ok := abs.GetAttribute(nametable.HTMLWidth); ok {
		if px, err := strconv.Atoi(w); err == nil {
			doc.SetAttribute(extent, nametable.DrawCx, strconv.Itoa(px*emuPerPx))
		}
	}
	if h, ok := abs.GetAttribute(nametable.HTMLHeight); ok {
		if px, err := strconv.Atoi(h); err == nil {
			doc.SetAttribute(extent, nametable.DrawCy, strconv.Itoa(px*emuPerPx))
		}
	}

	doc.AppendChild(blipFill, blip)
	doc.AppendChild(pic, blipFill)
	doc.AppendChild(graphicData, pic)
	doc.AppendChild(graphic, graphicData)
	doc.AppendChild(inline, extent)
	doc.AppendChild(inline, graphic)
	doc.AppendChild(drawing, inline)
	doc.AppendChild(run, drawing)
	return run, true
}
