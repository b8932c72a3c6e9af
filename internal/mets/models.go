package mets

// Document is the parsed view of a METS manifest: the object
// identifier, the page-level file groups, the optional page structure
// and the embedded descriptive metadata sections.
type Document struct {
	// ObjectID is the OBJID attribute of the mets root element.
	ObjectID string

	// Images and Texts are the page-use file groups (USE="img" and
	// USE="txt") filtered to the expected MIME types.
	Images FileGroup
	Texts  FileGroup

	root *metsRoot
}

// FileGroup maps resource IDs to retrieval URLs. Order lists the IDs
// in manifest document order; resource IDs are unique within a group.
type FileGroup struct {
	URLs  map[string]string // id -> retrieval URL
	Order []string
}

// PageEntry is one ordered page of the document. ImageURL is always
// set; TextURL is empty when the page has no text resource.
type PageEntry struct {
	ImageURL string
	TextURL  string
}
