// Package describe derives the Wikimedia Commons {{Book}} description
// block from the cataloging records embedded in a library manifest.
package describe

import (
	"fmt"
	"strings"

	"djvuget/internal/language"
	"djvuget/internal/marc"
)

// Field is one labeled line of the description block.
type Field struct {
	Label string
	Value string
}

var (
	authorRoles = []string{"Author", "Librettist", "Composer"}
	editorRoles = []string{"Editor", "Compiler"}
)

// BuildFields maps the MARC record, the Dublin Core language codes and
// the manifest object identifier to the ordered description field list.
// Field order is fixed by this function, not by source order in the
// record; fields whose source data is absent are omitted, except the
// trailing Source, Permission, Image page and Wikisource fields, which
// are always emitted.
func BuildFields(rec marc.Fields, langCodes []string, objectID string) ([]Field, error) {
	var out []Field
	add := func(label, value string) {
		out = append(out, Field{Label: label, Value: value})
	}
	addPersons := func(label string, names []string) {
		if len(names) > 0 {
			add(label, strings.Join(names, "; "))
		}
	}

	addPersons("Author", rec.Persons(authorRoles...))
	addPersons("Translator", rec.Persons("Translator"))
	addPersons("Editor", rec.Persons(editorRoles...))
	addPersons("Illustrator", rec.Persons("Illustrator"))

	title, ok := rec.First("245")
	if !ok {
		return nil, fmt.Errorf("record has no title field (tag 245)")
	}
	if len(title["a"]) == 0 {
		return nil, fmt.Errorf("title field has no subfield a")
	}
	add("Title", title["a"][0])
	if sub := title["b"]; len(sub) > 0 {
		add("Subtitle", sub[0])
	}

	if series, ok := rec.First("440"); ok {
		if len(series["a"]) == 0 {
			return nil, fmt.Errorf("series field (tag 440) has no subfield a")
		}
		add("Series title", strings.Join(series["a"], ", "))
	}

	if vol := append(append([]string{}, title["n"]...), title["p"]...); len(vol) > 0 {
		add("Volume", strings.Join(vol, ": "))
	}

	if pub, ok := rec.First("260"); ok {
		for _, sf := range []struct{ code, label string }{
			{"b", "Publisher"},
			{"f", "Printer"},
			{"c", "Date"},
			{"a", "City"},
		} {
			if vals := pub[sf.code]; len(vals) > 0 {
				add(sf.label, vals[0])
			}
		}
	}

	lang, ok, err := language.FieldValue(langCodes)
	if err != nil {
		return nil, err
	}
	if ok {
		add("Language", lang)
	}

	if desc, ok := rec.First("520"); ok {
		if len(desc["a"]) == 0 {
			return nil, fmt.Errorf("description field (tag 520) has no subfield a")
		}
		add("Description", desc["a"][0])
	}

	source, err := sourceLink(objectID)
	if err != nil {
		return nil, err
	}
	add("Source", source)
	add("Permission", "{{PD-old}}")
	add("Image page", "1")
	add("Wikisource", ":s:cs:Index:{{PAGENAME}}")

	return out, nil
}

// sourceLink builds the {{Kramerius link}} template from the manifest
// object identifier, which must consist of two '/'-separated parts.
func sourceLink(objectID string) (string, error) {
	parts := strings.Split(objectID, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("object identifier %q: want two '/'-separated parts", objectID)
	}
	return fmt.Sprintf("{{Kramerius link|%s|%s}}", parts[0], parts[1]), nil
}

// Render serializes the field list into the {{Book}} template block.
// Values are emitted verbatim: template delimiter characters inside
// bibliographic text are not escaped, so a value containing wikitext
// syntax ends up in the output as-is.
func Render(fields []Field) string {
	var b strings.Builder
	b.WriteString("{{Book")
	for _, f := range fields {
		b.WriteString("\n |")
		b.WriteString(f.Label)
		b.WriteString(" = ")
		b.WriteString(f.Value)
	}
	b.WriteString("\n}}")
	return b.String()
}
