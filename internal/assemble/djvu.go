package assemble

import (
	"encoding/binary"
	"fmt"
)

// pageSize reads the page dimensions from a single-page DjVu file. The
// layout is the AT&T magic followed by an IFF85 FORM:DJVU composite;
// the INFO chunk carries width and height as big-endian 16-bit values.
func pageSize(data []byte) (width, height int, err error) {
	if len(data) < 16 || string(data[:4]) != "AT&T" {
		return 0, 0, fmt.Errorf("not a DjVu file")
	}
	if string(data[4:8]) != "FORM" || string(data[12:16]) != "DJVU" {
		return 0, 0, fmt.Errorf("not a single-page DjVu document")
	}

	// Walk the chunks inside the form. INFO is required to be first by
	// the format, but a scan costs nothing and tolerates oddities.
	formEnd := 12 + int(binary.BigEndian.Uint32(data[8:12]))
	if formEnd > len(data) {
		formEnd = len(data)
	}
	for off := 16; off+8 <= formEnd; {
		id := string(data[off : off+4])
		size := int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > formEnd {
			break
		}
		if id == "INFO" {
			if size < 4 {
				return 0, 0, fmt.Errorf("truncated INFO chunk")
			}
			width = int(binary.BigEndian.Uint16(data[body : body+2]))
			height = int(binary.BigEndian.Uint16(data[body+2 : body+4]))
			return width, height, nil
		}
		// Chunks are padded to even length.
		off = body + size + size&1
	}
	return 0, 0, fmt.Errorf("no INFO chunk found")
}

// textLayerScript builds the djvused command script that replaces the
// text layer of page 1 with a single full-page zone: page index 0,
// bounding box (0,0,width-1,height-1), then the raw text.
func textLayerScript(width, height int, text string) string {
	return fmt.Sprintf("select 1; set-txt; (page 0 0 %d %d %s)", width-1, height-1, quoteSexpr(text))
}

// quoteSexpr renders text as a double-quoted s-expression string the
// way the djvused lexer expects: backslash escapes for the quote and
// backslash themselves, C escapes for newline and tab, octal escapes
// for the remaining control bytes. Multi-byte UTF-8 passes through.
func quoteSexpr(text string) string {
	buf := make([]byte, 0, len(text)+2)
	buf = append(buf, '"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' || c == '\\':
			buf = append(buf, '\\', c)
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 0x20 || c == 0x7f:
			buf = append(buf, fmt.Sprintf("\\%03o", c)...)
		default:
			buf = append(buf, c)
		}
	}
	return string(append(buf, '"'))
}
