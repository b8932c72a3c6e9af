// Package marc parses MARC21 slim records embedded in library metadata
// documents and exposes a tag-indexed view of their datafields.
package marc

import "strings"

// Namespace is the MARC21 slim XML namespace.
const Namespace = "http://www.loc.gov/MARC21/slim"

// Collection represents a marc:collection element.
type Collection struct {
	Records []Record `xml:"http://www.loc.gov/MARC21/slim record"`
}

// Record represents a marc:record element.
type Record struct {
	Datafields []Datafield `xml:"http://www.loc.gov/MARC21/slim datafield"`
}

// Datafield represents a marc:datafield element.
type Datafield struct {
	Tag       string     `xml:"tag,attr"`
	Subfields []Subfield `xml:"http://www.loc.gov/MARC21/slim subfield"`
}

// Subfield represents a marc:subfield element.
type Subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// Field maps a subfield code to its text values in document order.
type Field map[string][]string

// Fields is the tag-indexed view of a record: tag to field instances,
// preserving document order within each tag and within each subfield.
// Built once per document and read-only afterward.
type Fields map[string][]Field

// Fields builds the tag-indexed view of the record.
func (r Record) Fields() Fields {
	out := make(Fields)
	for _, df := range r.Datafields {
		f := make(Field)
		for _, sf := range df.Subfields {
			f[sf.Code] = append(f[sf.Code], sf.Value)
		}
		out[df.Tag] = append(out[df.Tag], f)
	}
	return out
}

// First returns the first instance of the given tag.
func (m Fields) First(tag string) (Field, bool) {
	fs := m[tag]
	if len(fs) == 0 {
		return nil, false
	}
	return fs[0], true
}

// FullName joins the person name subfields a, b and c (b and c are
// optional) with single spaces, in that fixed order.
func (f Field) FullName() string {
	parts := make([]string, 0, len(f["a"])+len(f["b"])+len(f["c"]))
	parts = append(parts, f["a"]...)
	parts = append(parts, f["b"]...)
	parts = append(parts, f["c"]...)
	return strings.Join(parts, " ")
}

// Persons returns the full names of the person entries (tags 100 then
// 700, in document order) whose relator subfield e contains at least
// one of the given roles.
func (m Fields) Persons(roles ...string) []string {
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}
	var names []string
	for _, tag := range []string{"100", "700"} {
		for _, f := range m[tag] {
			for _, role := range f["e"] {
				if want[role] {
					names = append(names, f.FullName())
					break
				}
			}
		}
	}
	return names
}
