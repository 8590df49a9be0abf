package opc

import "encoding/xml"

// contentTypesPath is the fixed location of the content-type registry, per
// the Open Packaging Conventions.
const contentTypesPath = "[Content_Types].xml"

// contentTypes is the [Content_Types].xml document: a set of file-extension
// defaults plus per-part overrides, both kept as slices and searched
// linearly by their own key.
type contentTypes struct {
	XMLName   xml.Name           `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []defaultEntry     `xml:"Default"`
	Overrides []overrideEntry    `xml:"Override"`
}

type defaultEntry struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideEntry struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	ct := &contentTypes{}
	if err := xml.Unmarshal(data, ct); err != nil {
		return nil, err
	}
	return ct, nil
}

func (ct *contentTypes) marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(ct, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (ct *contentTypes) defaultFor(extension string) (string, bool) {
	for _, d := range ct.Defaults {
		if d.Extension == extension {
			return d.ContentType, true
		}
	}
	return "", false
}

func (ct *contentTypes) overrideFor(partName string) (string, bool) {
	for _, o := range ct.Overrides {
		if o.PartName == partName {
			return o.ContentType, true
		}
	}
	return "", false
}

func (ct *contentTypes) setOverride(partName, contentType string) {
	for i, o := range ct.Overrides {
		if o.PartName == partName {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, overrideEntry{PartName: partName, ContentType: contentType})
}

func (ct *contentTypes) removeOverride(partName string) {
	for i, o := range ct.Overrides {
		if o.PartName == partName {
			ct.Overrides = append(ct.Overrides[:i], ct.Overrides[i+1:]...)
			return
		}
	}
}

func (ct *contentTypes) setDefault(extension, contentType string) {
	for i, d := range ct.Defaults {
		if d.Extension == extension {
			ct.Defaults[i].ContentType = contentType
			return
		}
	}
	ct.Defaults = append(ct.Defaults, defaultEntry{Extension: extension, ContentType: contentType})
}
