package export

import (
	"bytes"
	"strings"

	"github.com/matzehuels/pagesmith/pkg/element"
)

// CSS writes one rule per element, hidden ones included, in document order
// (children after their container):
//
//	#element-btn_1 {
//	  color: blue;
//	  font-size: 16px;
//	}
//
// Elements without styles still get an empty block. Blocks are separated by
// a blank line.
func CSS(elems []element.Element) []byte {
	var buf bytes.Buffer
	first := true
	element.Walk(elems, func(e *element.Element, _ int) {
		if !first {
			buf.WriteByte('\n')
		}
		first = false
		writeRule(&buf, *e)
	})
	return buf.Bytes()
}

func writeRule(buf *bytes.Buffer, e element.Element) {
	buf.WriteString("#element-")
	buf.WriteString(cssIdent(e.ID))
	buf.WriteString(" {\n")
	e.Styles.Each(func(k, v string) {
		buf.WriteString("  ")
		buf.WriteString(element.CSSName(k))
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString(";\n")
	})
	buf.WriteString("}\n")
}

// cssIdent escapes an id for use in an id selector. Minted ids need no
// escaping and pass through unchanged.
func cssIdent(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r >= 0x80:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
