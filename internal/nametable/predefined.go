package nametable

// Predefined namespace URIs. Identity is by URI; the prefix listed here is
// only the conventional one used when serializing.
const (
	NSNone       = ""
	NSXML        = "http://www.w3.org/XML/1998/namespace"
	NSRelDoc     = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTyp = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSWordproc   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSMCE        = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSHTML       = "http://www.w3.org/1999/xhtml"
	NSRelOffice  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSDrawingWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NSDrawingA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSDrawingPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// Predefined element/attribute local names. Only the subset the lens
// engine, change detector, and CLI need to name directly by constant are
// listed here; everything else is interned on first encounter during
// parsing (still within the predefined range if buildPredefinedTable
// below declares it, dynamically otherwise).
var (
	// Node-kind tags are TagDocument..TagProcessingInstruction, declared in
	// tag.go.

	// Word-processing element tags, populated by buildPredefinedTable.
	WordDocument, WordBody, WordP, WordPPr, WordPStyle, WordR, WordRPr, WordT,
	WordTbl, WordTr, WordTc, WordTcPr, WordGridSpan, WordVMerge,
	WordIns, WordDel, WordHyperlink, WordBookmarkStart, WordBookmarkEnd,
	WordFldSimple, WordInstrText, WordSmartTag, WordSmartTagPr, WordDrawing,
	WordSectPr, WordProofErr, WordRsid, WordLatentStyles, WordOutlineLvl,
	WordNumPr, WordNumID, WordIlvl, WordDelText,
	WordTblPr, WordTblGrid, WordGridCol, WordTrPr,
	WordVal, WordID, WordName, WordInstr,
	WordStyles, WordStyle, WordStyleID, WordBasedOn, WordType,
	WordNumbering, WordAbstractNum, WordAbstractNumID,
	WordNum, WordLvl, WordStart, WordNumFmt, WordLvlText,
	WordB, WordI, WordU, WordSectPrChange Tag

	// Relationship-reference attributes (the r: namespace).
	RelOfficeID, RelOfficeEmbed Tag

	// DrawingML tags the drawing lens needs to build or walk an inline
	// picture.
	WPInline, WPExtent, AGraphic, AGraphicData, ABlip, PicPic, PicBlipFill,
	DrawCx, DrawCy Tag

	// MCE attributes.
	MCEIgnorable, MCEProcessContent, MCEMustUnderstand Tag

	// Relationship/content-type element tags.
	RelRelationships, RelRelationship, CTTypes, CTDefault, CTOverride Tag

	// HTML element tags the lens engine and serializer reference directly.
	HTMLHtml, HTMLHead, HTMLBody, HTMLImg, HTMLBr, HTMLMeta, HTMLLink,
	HTMLHr, HTMLCol,
	HTMLTitle, HTMLStyleElem, HTMLP, HTMLSpan, HTMLA, HTMLFigure,
	HTMLH1, HTMLH2, HTMLH3, HTMLH4, HTMLH5, HTMLH6,
	HTMLTable, HTMLTbody, HTMLTr, HTMLTd, HTMLTh,
	HTMLIns, HTMLDel Tag

	// HTML attribute tags. Unprefixed attributes carry no namespace, so
	// these are interned in the null namespace rather than the xhtml one.
	HTMLId, HTMLClass, HTMLHref, HTMLSrc, HTMLStyle, HTMLWidth, HTMLHeight,
	HTMLColspan, HTMLRowspan Tag
)

// The predefined tag variables above are only valid once the builtin
// table has been constructed, and callers read them as ordinary package
// variables (nametable.HTMLId as a function argument, for instance)
// before ever touching a Table. Build the table at package init so no
// reference can observe a zero tag.
func init() { Builtin() }

// buildPredefinedTable constructs the process-wide builtin table. It is
// called exactly once, from Builtin().
func buildPredefinedTable() *Table {
	t := newTable(nil, MinElementTag)

	nsNone := t.InternNamespace(NSNone, "")
	nsXML := t.InternNamespace(NSXML, "xml")
	nsRel := t.InternNamespace(NSRelDoc, "")
	nsCT := t.InternNamespace(NSContentTyp, "")
	nsW := t.InternNamespace(NSWordproc, "w")
	nsMC := t.InternNamespace(NSMCE, "mc")
	nsHTML := t.InternNamespace(NSHTML, "")
	_ = nsXML

	w := func(local string) Tag { return t.tagForNSLocal(nsW, local) }
	mc := func(local string) Tag { return t.tagForNSLocal(nsMC, local) }
	rel := func(local string) Tag { return t.tagForNSLocal(nsRel, local) }
	ct := func(local string) Tag { return t.tagForNSLocal(nsCT, local) }
	html := func(local string) Tag { return t.tagForNSLocal(nsHTML, local) }

	WordDocument = w("document")
	WordBody = w("body")
	WordP = w("p")
	WordPPr = w("pPr")
	WordPStyle = w("pStyle")
	WordR = w("r")
	WordRPr = w("rPr")
	WordT = w("t")
	WordTbl = w("tbl")
	WordTr = w("tr")
	WordTc = w("tc")
	WordTcPr = w("tcPr")
	WordGridSpan = w("gridSpan")
	WordVMerge = w("vMerge")
	WordIns = w("ins")
	WordDel = w("del")
	WordHyperlink = w("hyperlink")
	WordBookmarkStart = w("bookmarkStart")
	WordBookmarkEnd = w("bookmarkEnd")
	WordFldSimple = w("fldSimple")
	WordInstrText = w("instrText")
	WordSmartTag = w("smartTag")
	WordSmartTagPr = w("smartTagPr")
	WordDrawing = w("drawing")
	WordSectPr = w("sectPr")
	WordProofErr = w("proofErr")
	WordRsid = w("rsid")
	WordLatentStyles = w("latentStyles")
	WordOutlineLvl = w("outlineLvl")
	WordNumPr = w("numPr")
	WordNumID = w("numId")
	WordIlvl = w("ilvl")
	WordDelText = w("delText")
	WordTblPr = w("tblPr")
	WordTblGrid = w("tblGrid")
	WordGridCol = w("gridCol")
	WordTrPr = w("trPr")
	WordVal = w("val")
	WordID = w("id")
	WordName = w("name")
	WordInstr = w("instr")
	WordStyles = w("styles")
	WordStyle = w("style")
	WordStyleID = w("styleId")
	WordBasedOn = w("basedOn")
	WordType = w("type")
	WordNumbering = w("numbering")
	WordAbstractNum = w("abstractNum")
	WordAbstractNumID = w("abstractNumId")
	WordNum = w("num")
	WordLvl = w("lvl")
	WordStart = w("start")
	WordNumFmt = w("numFmt")
	WordLvlText = w("lvlText")
	WordB = w("b")
	WordI = w("i")
	WordU = w("u")
	WordSectPrChange = w("sectPrChange")

	nsR := t.InternNamespace(NSRelOffice, "r")
	r := func(local string) Tag { return t.tagForNSLocal(nsR, local) }
	RelOfficeID = r("id")
	RelOfficeEmbed = r("embed")

	nsWP := t.InternNamespace(NSDrawingWP, "wp")
	nsA := t.InternNamespace(NSDrawingA, "a")
	nsPic := t.InternNamespace(NSDrawingPic, "pic")
	wp := func(local string) Tag { return t.tagForNSLocal(nsWP, local) }
	a := func(local string) Tag { return t.tagForNSLocal(nsA, local) }
	pic := func(local string) Tag { return t.tagForNSLocal(nsPic, local) }
	WPInline = wp("inline")
	WPExtent = wp("extent")
	AGraphic = a("graphic")
	AGraphicData = a("graphicData")
	ABlip = a("blip")
	PicPic = pic("pic")
	PicBlipFill = pic("blipFill")
	DrawCx = t.tagForNSLocal(nsNone, "cx")
	DrawCy = t.tagForNSLocal(nsNone, "cy")

	MCEIgnorable = mc("Ignorable")
	MCEProcessContent = mc("ProcessContent")
	MCEMustUnderstand = mc("MustUnderstand")

	RelRelationships = rel("Relationships")
	RelRelationship = rel("Relationship")
	CTTypes = ct("Types")
	CTDefault = ct("Default")
	CTOverride = ct("Override")

	ha := func(local string) Tag { return t.tagForNSLocal(nsNone, local) }

	HTMLHtml = html("html")
	HTMLHead = html("head")
	HTMLBody = html("body")
	HTMLId = ha("id")
	HTMLClass = ha("class")
	HTMLHref = ha("href")
	HTMLSrc = ha("src")
	HTMLStyle = ha("style")
	HTMLWidth = ha("width")
	HTMLHeight = ha("height")
	HTMLImg = html("img")
	HTMLBr = html("br")
	HTMLMeta = html("meta")
	HTMLLink = html("link")
	HTMLHr = html("hr")
	HTMLCol = html("col")
	HTMLTitle = html("title")
	HTMLStyleElem = html("style")
	HTMLP = html("p")
	HTMLSpan = html("span")
	HTMLA = html("a")
	HTMLFigure = html("figure")
	HTMLH1 = html("h1")
	HTMLH2 = html("h2")
	HTMLH3 = html("h3")
	HTMLH4 = html("h4")
	HTMLH5 = html("h5")
	HTMLH6 = html("h6")
	HTMLTable = html("table")
	HTMLTbody = html("tbody")
	HTMLTr = html("tr")
	HTMLTd = html("td")
	HTMLTh = html("th")
	HTMLIns = html("ins")
	HTMLDel = html("del")
	HTMLColspan = ha("colspan")
	HTMLRowspan = ha("rowspan")

	return t
}

// HTMLVoidTags is the set of HTML elements the serializer emits without a
// closing tag.
func HTMLVoidTags() map[Tag]bool {
	return map[Tag]bool{
		HTMLImg:  true,
		HTMLBr:   true,
		HTMLMeta: true,
		HTMLLink: true,
		HTMLHr:   true,
		HTMLCol:  true,
	}
}
