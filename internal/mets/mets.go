// Package mets parses METS manifests published by digitized-library
// systems and recovers the ordered list of per-page resource locators
// together with the embedded cataloging records.
package mets

import (
	"encoding/xml"
	"fmt"

	"djvuget/internal/marc"
)

// Section IDs and group names used by Kramerius-style manifests.
const (
	marcSectionID = "DMD_MARC"
	dcSectionID   = "DMD_DC"
	imageGroupUse = "img"
	textGroupUse  = "txt"
	pageFileUse   = "Page"
)

// metsRoot represents the mets root element.
type metsRoot struct {
	XMLName    xml.Name    `xml:"http://www.loc.gov/METS/ mets"`
	ObjID      string      `xml:"OBJID,attr"`
	DmdSecs    []dmdSec    `xml:"http://www.loc.gov/METS/ dmdSec"`
	FileSec    fileSec     `xml:"http://www.loc.gov/METS/ fileSec"`
	StructMaps []structMap `xml:"http://www.loc.gov/METS/ structMap"`
}

// dmdSec represents a descriptive metadata section.
type dmdSec struct {
	ID     string `xml:"ID,attr"`
	MdWrap mdWrap `xml:"http://www.loc.gov/METS/ mdWrap"`
}

type mdWrap struct {
	XMLData xmlData `xml:"http://www.loc.gov/METS/ xmlData"`
}

// xmlData wraps the embedded metadata payload; which member is present
// depends on the enclosing section's ID.
type xmlData struct {
	Collections []marc.Collection `xml:"http://www.loc.gov/MARC21/slim collection"`
	DublinCores []dublinCore      `xml:"http://www.openarchives.org/OAI/2.0/oai_dc/ dc"`
}

type dublinCore struct {
	Languages []string `xml:"http://purl.org/dc/elements/1.1/ language"`
}

type fileSec struct {
	Groups []fileGrp `xml:"http://www.loc.gov/METS/ fileGrp"`
}

type fileGrp struct {
	Use   string     `xml:"USE,attr"`
	Files []metsFile `xml:"http://www.loc.gov/METS/ file"`
}

type metsFile struct {
	ID        string   `xml:"ID,attr"`
	Use       string   `xml:"USE,attr"`
	MIMEType  string   `xml:"MIMETYPE,attr"`
	Locations []fLocat `xml:"http://www.loc.gov/METS/ FLocat"`
}

type fLocat struct {
	LocType string `xml:"LOCTYPE,attr"`
	Href    string `xml:"http://www.w3.org/1999/xlink href,attr"`
}

type structMap struct {
	Type string    `xml:"TYPE,attr"`
	Divs []metsDiv `xml:"http://www.loc.gov/METS/ div"`
}

type metsDiv struct {
	Type  string    `xml:"TYPE,attr"`
	Order string    `xml:"ORDER,attr"`
	Fptrs []fptr    `xml:"http://www.loc.gov/METS/ fptr"`
	Divs  []metsDiv `xml:"http://www.loc.gov/METS/ div"`
}

type fptr struct {
	FileID string `xml:"FILEID,attr"`
}

// expectOne returns the single element of items, or a structural error
// naming what was looked for. The exactly-one check recurs throughout
// METS interpretation; any other count means a malformed manifest.
func expectOne[T any](items []T, what string) (T, error) {
	if len(items) != 1 {
		var zero T
		return zero, fmt.Errorf("expected exactly one %s, found %d", what, len(items))
	}
	return items[0], nil
}

// Parse parses a METS manifest and resolves the image and text file
// groups. imageMIME and textMIME are the exact MIME types expected for
// page image and page text resources.
func Parse(data []byte, imageMIME, textMIME string) (*Document, error) {
	var root metsRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse METS XML: %w", err)
	}

	doc := &Document{ObjectID: root.ObjID, root: &root}

	var err error
	if doc.Images, err = root.fileGroup(imageGroupUse, imageMIME); err != nil {
		return nil, err
	}
	if doc.Texts, err = root.fileGroup(textGroupUse, textMIME); err != nil {
		return nil, err
	}

	return doc, nil
}

// fileGroup locates the single fileGrp with the given USE attribute and
// builds its locator map from the page-use entries with the expected
// MIME type. Each entry must carry exactly one URL-type location.
func (r *metsRoot) fileGroup(use, mimeType string) (FileGroup, error) {
	var matches []fileGrp
	for _, g := range r.FileSec.Groups {
		if g.Use == use {
			matches = append(matches, g)
		}
	}
	grp, err := expectOne(matches, fmt.Sprintf("fileGrp[USE=%q]", use))
	if err != nil {
		return FileGroup{}, err
	}

	out := FileGroup{URLs: make(map[string]string)}
	for _, f := range grp.Files {
		if f.Use != pageFileUse || f.MIMEType != mimeType {
			continue
		}
		loc, err := expectOne(urlLocations(f.Locations), fmt.Sprintf("URL location for file %q", f.ID))
		if err != nil {
			return FileGroup{}, err
		}
		out.URLs[f.ID] = loc.Href
		out.Order = append(out.Order, f.ID)
	}
	return out, nil
}

func urlLocations(locs []fLocat) []fLocat {
	var out []fLocat
	for _, l := range locs {
		if l.LocType == "URL" {
			out = append(out, l)
		}
	}
	return out
}

// PageEntries builds the ordered page list. When the manifest carries a
// page structure section, each page div is classified against the image
// and text groups; a page without an image resolution is a fatal error
// naming the div's ORDER attribute. Without a structure section every
// image-group entry becomes a page in group document order, with no
// attached text; that legacy mode cannot guarantee page sequencing
// beyond what the group order provides.
func (d *Document) PageEntries() ([]PageEntry, error) {
	pagesDiv, ok, err := d.pageStructure()
	if err != nil {
		return nil, err
	}
	if !ok {
		entries := make([]PageEntry, 0, len(d.Images.Order))
		for _, id := range d.Images.Order {
			entries = append(entries, PageEntry{ImageURL: d.Images.URLs[id]})
		}
		return entries, nil
	}

	entries := make([]PageEntry, 0, len(pagesDiv.Divs))
	for _, page := range pagesDiv.Divs {
		var e PageEntry
		for _, fp := range page.Fptrs {
			if url, ok := d.Images.URLs[fp.FileID]; ok {
				e.ImageURL = url
			} else if url, ok := d.Texts.URLs[fp.FileID]; ok {
				// Text resources are optional; some documents have none.
				e.TextURL = url
			}
		}
		if e.ImageURL == "" {
			return nil, fmt.Errorf("no image resource for page %s", page.Order)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// pageStructure returns the div holding the ordered page divs, or
// ok=false when the manifest has no Pages structure section at all.
func (d *Document) pageStructure() (metsDiv, bool, error) {
	var maps []structMap
	for _, sm := range d.root.StructMaps {
		if sm.Type == "Pages" {
			maps = append(maps, sm)
		}
	}
	if len(maps) == 0 {
		return metsDiv{}, false, nil
	}
	sm, err := expectOne(maps, `structMap[TYPE="Pages"]`)
	if err != nil {
		return metsDiv{}, false, err
	}

	var divs []metsDiv
	for _, div := range sm.Divs {
		if div.Type == "Pages" {
			divs = append(divs, div)
		}
	}
	top, err := expectOne(divs, `div[TYPE="Pages"]`)
	if err != nil {
		return metsDiv{}, false, err
	}
	return top, true, nil
}

// Record extracts the embedded MARC record as a tag-indexed mapping.
func (d *Document) Record() (marc.Fields, error) {
	sec, err := d.metadataSection(marcSectionID)
	if err != nil {
		return nil, err
	}
	coll, err := expectOne(sec.MdWrap.XMLData.Collections, "MARC collection")
	if err != nil {
		return nil, err
	}
	rec, err := expectOne(coll.Records, "MARC record")
	if err != nil {
		return nil, err
	}
	return rec.Fields(), nil
}

// Languages returns the Dublin Core language element values in document
// order, duplicates preserved.
func (d *Document) Languages() ([]string, error) {
	sec, err := d.metadataSection(dcSectionID)
	if err != nil {
		return nil, err
	}
	dc, err := expectOne(sec.MdWrap.XMLData.DublinCores, "Dublin Core element")
	if err != nil {
		return nil, err
	}
	return dc.Languages, nil
}

func (d *Document) metadataSection(id string) (dmdSec, error) {
	var matches []dmdSec
	for _, sec := range d.root.DmdSecs {
		if sec.ID == id {
			matches = append(matches, sec)
		}
	}
	return expectOne(matches, fmt.Sprintf("dmdSec[ID=%q]", id))
}
