// Package language maps the bibliographic ISO 639-2B language codes
// found in library cataloging records to two-letter presentation codes.
//
// The table is a closed enumeration: a code missing from both tables is
// an error, never a silent fallback, so new codes in source records
// require a table update here rather than degrading output.
package language

import (
	"fmt"
	"strings"
)

type entry struct {
	code3 string // ISO 639-2B (3-letter)
	code2 string // ISO 639-1 (2-letter)
}

// Ancient Greek has no ISO 639-1 code; Modern Greek 'el' is used instead.
var languages = []entry{
	{"chu", "cu"},
	{"cze", "cs"},
	{"eng", "en"},
	{"fre", "fr"},
	{"ger", "de"},
	{"grc", "el"},
	{"heb", "he"},
	{"ita", "it"},
	{"lat", "la"},
	{"pol", "pl"},
	{"rum", "ro"},
	{"rus", "ru"},
	{"scc", "sr"},
	{"scr", "hr"},
	{"slo", "sk"},
	{"slv", "sl"},
	{"swe", "sv"},
	{"ukr", "uk"},
}

// Group codes represent sets of languages and have no ISO 639-1 code;
// they resolve to a display label instead.
var groups = map[string]string{
	"mul": "(Multiple unspecified languages)",
	"sla": "(Slavic languages)",
	"wen": "(Sorbian languages)",
}

var byCode3 map[string]string

func init() {
	byCode3 = make(map[string]string, len(languages))
	for _, e := range languages {
		byCode3[e.code3] = e.code2
	}
}

// Resolve maps a three-letter bibliographic code to its two-letter
// presentation code, or to the group label for group codes.
func Resolve(code string) (string, error) {
	if c2, ok := byCode3[code]; ok {
		return c2, nil
	}
	if label, ok := groups[code]; ok {
		return label, nil
	}
	return "", fmt.Errorf("unknown language code %q", code)
}

// IsGroup reports whether code denotes a language group rather than a
// single mappable language.
func IsGroup(code string) bool {
	_, ok := groups[code]
	return ok
}

// FieldValue renders the Language description value for the given code
// list, in input order with duplicates preserved. A single code yields
// its resolved form verbatim; several codes yield a comma-joined list
// where mapped codes are wrapped in a {{language|..}} template and
// group labels are left unwrapped. ok is false for an empty list.
func FieldValue(codes []string) (value string, ok bool, err error) {
	switch len(codes) {
	case 0:
		return "", false, nil
	case 1:
		v, err := Resolve(codes[0])
		return v, err == nil, err
	}
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		v, err := Resolve(code)
		if err != nil {
			return "", false, err
		}
		if IsGroup(code) {
			parts = append(parts, v)
		} else {
			parts = append(parts, "{{language|"+v+"}}")
		}
	}
	return strings.Join(parts, ", "), true, nil
}
