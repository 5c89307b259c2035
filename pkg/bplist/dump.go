package bplist

import (
	"fmt"
	"io"
	"strings"
)

// String renders v as a single-line summary, primarily useful in %v/%s
// formatting and error messages. Use Dump for a full indented tree.
func (v Value) String() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagBool:
		return fmt.Sprintf("%t", v.Bool)
	case TagInt:
		return fmt.Sprintf("%d", v.Int)
	case TagReal:
		return fmt.Sprintf("%g", v.Real)
	case TagDate:
		return v.Date.Format("2006-01-02T15:04:05Z")
	case TagData:
		return fmt.Sprintf("<%d bytes>", len(v.Data))
	case TagAsciiString, TagUnicodeString:
		return v.Str
	case TagUid:
		return fmt.Sprintf("UID(%d)", v.Uid)
	case TagArray:
		return fmt.Sprintf("[%d items]", len(v.Array))
	case TagDict:
		return fmt.Sprintf("{%d entries}", v.Dict.Len())
	default:
		return v.Tag.String()
	}
}

// Dump writes an indented tree representation of v to w, recursing into
// arrays and dicts. It exists for the "info" command's read-only inspection
// path and for debugging decoder output by hand.
func (v Value) Dump(w io.Writer) {
	v.dump(w, 0)
}

func (v Value) dump(w io.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Tag {
	case TagArray:
		fmt.Fprintf(w, "%s%s\n", indent, v.String())
		for i, elem := range v.Array {
			fmt.Fprintf(w, "%s  [%d]\n", indent, i)
			elem.dump(w, depth+2)
		}
	case TagDict:
		fmt.Fprintf(w, "%s%s\n", indent, v.String())
		for _, entry := range v.Dict.Entries() {
			fmt.Fprintf(w, "%s  %s:\n", indent, entry.Key)
			entry.Value.dump(w, depth+2)
		}
	default:
		fmt.Fprintf(w, "%s%s: %s\n", indent, v.Tag, v.String())
	}
}
