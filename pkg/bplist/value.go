// Package bplist decodes Apple binary property lists (bplist00) into a
// generic, tagged value tree. It does not write plists, does not bind
// values to Go structs via struct tags, and does not understand any plist
// variant other than bplist00 — see github.com/blacktop/go-plist (and this
// repo's pkg/webarchive, which consumes the decoded tree) for that.
package bplist

import (
	"fmt"
	"time"
)

// Tag identifies the kind of value held by a Value.
type Tag int

const (
	TagNull Tag = iota
	TagBool
	TagInt
	TagReal
	TagDate
	TagData
	TagAsciiString
	TagUnicodeString
	TagUid
	TagArray
	TagDict
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagReal:
		return "real"
	case TagDate:
		return "date"
	case TagData:
		return "data"
	case TagAsciiString:
		return "ascii-string"
	case TagUnicodeString:
		return "unicode-string"
	case TagUid:
		return "uid"
	case TagArray:
		return "array"
	case TagDict:
		return "dict"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Epoch is the bplist reference instant, 2001-01-01T00:00:00Z. Date values
// are stored as seconds (and fractional seconds) relative to it.
var Epoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Value is a tagged union over the eleven kinds of decoded plist value. Exactly
// one of the fields below is meaningful, selected by Tag.
type Value struct {
	Tag Tag

	Bool bool
	Int  int64
	Real float64
	Date time.Time
	Data []byte

	// Str holds both AsciiString and UnicodeString payloads; Tag
	// distinguishes the two only so callers can tell which wire encoding
	// produced the Go string, not because the string content differs in
	// kind.
	Str string

	Uid uint64

	Array []Value
	Dict  *Dict
}

// IsString reports whether v holds an AsciiString or UnicodeString.
func (v Value) IsString() bool {
	return v.Tag == TagAsciiString || v.Tag == TagUnicodeString
}

// DictEntry is one key/value pair of a Dict, in insertion order.
type DictEntry struct {
	Key   string
	Value Value
}

// Dict is an insertion-order-preserving string-keyed map, matching bplist's
// requirement (§9: "some archives rely on [key order]") and the Archive
// Model's need to iterate resource dictionaries without a lookup (§4.2).
// Duplicate keys overwrite the value at the key's original position.
type Dict struct {
	entries []DictEntry
	index   map[string]int
}

// NewDict returns an empty Dict ready to append to.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set inserts key/value, or overwrites the value of an existing key while
// preserving its original position.
func (d *Dict) Set(key string, v Value) {
	if i, ok := d.index[key]; ok {
		d.entries[i].Value = v
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, DictEntry{Key: key, Value: v})
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Value{}, false
	}
	return d.entries[i].Value, true
}

// GetString is a convenience for the common case of a required/optional
// string-valued field (§4.2's WebResource* keys).
func (d *Dict) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok || !v.IsString() {
		return "", false
	}
	return v.Str, true
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns the dict's entries in insertion order. Callers must not
// mutate the returned slice.
func (d *Dict) Entries() []DictEntry {
	if d == nil {
		return nil
	}
	return d.entries
}
