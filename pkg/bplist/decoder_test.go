package bplist

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestDecodeMinimalDict(t *testing.T) {
	b := newFixtureBuilder(1)
	key := b.add(asciiString("Hello"))
	val := b.add(asciiString("World"))
	root := b.add(b.dict([2]int64{key, val}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v.Tag != TagDict {
		t.Fatalf("Tag = %v, want TagDict", v.Tag)
	}
	got, ok := v.Dict.GetString("Hello")
	if !ok || got != "World" {
		t.Errorf("Dict[Hello] = %q, %v, want World, true", got, ok)
	}
}

func TestDecodeIntegerWidths(t *testing.T) {
	tests := []struct {
		name  string
		n     int64
		width int
		want  int64
	}{
		{"1-byte 0xFF", 0xFF, 1, 255},
		{"2-byte 0xFF00", 0xFF00, 2, 65280},
		{"4-byte", 0x01020304, 4, 0x01020304},
		{"8-byte negative", -1, 8, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFixtureBuilder(1)
			iv := b.add(intObj(tt.n, tt.width))
			key := b.add(asciiString("v"))
			root := b.add(b.dict([2]int64{key, iv}))

			v, err := Decode(bytes.NewReader(b.build(root)))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			got, _ := v.Dict.Get("v")
			if got.Tag != TagInt || got.Int != tt.want {
				t.Errorf("got %v %d, want TagInt %d", got.Tag, got.Int, tt.want)
			}
		})
	}
}

func TestDecodeDateEpoch(t *testing.T) {
	b := newFixtureBuilder(1)
	dv := b.add(dateObj(0.0))
	key := b.add(asciiString("d"))
	root := b.add(b.dict([2]int64{key, dv}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, _ := v.Dict.Get("d")
	if got.Tag != TagDate {
		t.Fatalf("Tag = %v, want TagDate", got.Tag)
	}
	if !got.Date.Equal(Epoch) {
		t.Errorf("Date = %v, want %v", got.Date, Epoch)
	}
	if got.Date.Year() != 2001 || got.Date.Month() != time.January || got.Date.Day() != 1 {
		t.Errorf("Date = %v, want 2001-01-01", got.Date)
	}
}

func TestDecodeUnicodeString(t *testing.T) {
	b := newFixtureBuilder(1)
	sv := b.add(unicodeString("AB"))
	key := b.add(asciiString("s"))
	root := b.add(b.dict([2]int64{key, sv}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, _ := v.Dict.GetString("s")
	if got != "AB" {
		t.Errorf("got %q, want AB", got)
	}
}

func TestDecodeArrayAndNestedDict(t *testing.T) {
	b := newFixtureBuilder(1)
	e1 := b.add(asciiString("x"))
	e2 := b.add(asciiString("y"))
	arr := b.add(b.array(e1, e2))
	key := b.add(asciiString("items"))
	root := b.add(b.dict([2]int64{key, arr}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	items, _ := v.Dict.Get("items")
	if items.Tag != TagArray || len(items.Array) != 2 {
		t.Fatalf("items = %+v, want 2-element array", items)
	}
	if items.Array[0].Str != "x" || items.Array[1].Str != "y" {
		t.Errorf("items = %v, %v, want x, y", items.Array[0].Str, items.Array[1].Str)
	}
}

func TestDecodeDataBoolReal(t *testing.T) {
	b := newFixtureBuilder(1)
	dataKey := b.add(asciiString("data"))
	dataVal := b.add(dataObj([]byte{0x89, 0x50, 0x4E, 0x47}))
	boolKey := b.add(asciiString("flag"))
	boolVal := b.add(boolObj(true))
	realKey := b.add(asciiString("pi"))
	realVal := b.add(realObj(3.5, 8))
	root := b.add(b.dict([2]int64{dataKey, dataVal}, [2]int64{boolKey, boolVal}, [2]int64{realKey, realVal}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	data, _ := v.Dict.Get("data")
	if data.Tag != TagData || !bytes.Equal(data.Data, []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Errorf("data = %+v", data)
	}
	flag, _ := v.Dict.Get("flag")
	if flag.Tag != TagBool || !flag.Bool {
		t.Errorf("flag = %+v, want true", flag)
	}
	pi, _ := v.Dict.Get("pi")
	if pi.Tag != TagReal || pi.Real != 3.5 {
		t.Errorf("pi = %+v, want 3.5", pi)
	}
}

func TestDecodeSelfReferentialArray(t *testing.T) {
	b := newFixtureBuilder(1)
	// Reserve index 0 for the array, then encode an array whose single
	// element refers back to itself.
	arrIdx := int64(len(b.objects))
	b.add(nil) // placeholder, patched below
	b.objects[arrIdx] = b.array(arrIdx)

	key := b.add(asciiString("self"))
	root := b.add(b.dict([2]int64{key, arrIdx}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	self, _ := v.Dict.Get("self")
	if self.Tag != TagArray {
		t.Fatalf("self = %+v, want TagArray", self)
	}
	if len(self.Array) != 0 {
		t.Errorf("self-referential array should decode to an empty slot, got %d elements", len(self.Array))
	}
}

func TestDecodeSelfReferentialDict(t *testing.T) {
	b := newFixtureBuilder(1)
	dictIdx := int64(len(b.objects))
	b.add(nil)
	key := b.add(asciiString("k"))
	b.objects[dictIdx] = b.dict([2]int64{key, dictIdx})

	outerKey := b.add(asciiString("outer"))
	root := b.add(b.dict([2]int64{outerKey, dictIdx}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	outer, _ := v.Dict.Get("outer")
	if outer.Tag != TagDict {
		t.Fatalf("outer = %+v, want TagDict", outer)
	}
	if outer.Dict.Len() != 0 {
		t.Errorf("self-referential dict pair should be skipped, got %d entries", outer.Dict.Len())
	}
}

func TestDecodeOutOfRangeRefIsSkipped(t *testing.T) {
	b := newFixtureBuilder(1)
	validKey := b.add(asciiString("ok"))
	validVal := b.add(asciiString("yes"))
	// A dict entry referencing an out-of-range index alongside a valid one.
	root := b.add(b.dict([2]int64{validKey, validVal}, [2]int64{99, 99}))

	v, err := Decode(bytes.NewReader(b.build(root)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v.Dict.Len() != 1 {
		t.Fatalf("Dict.Len() = %d, want 1 (out-of-range pair skipped)", v.Dict.Len())
	}
	got, _ := v.Dict.GetString("ok")
	if got != "yes" {
		t.Errorf("Dict[ok] = %q, want yes", got)
	}
}

func TestDecodeStreamTooShort(t *testing.T) {
	_, err := Decode(bytes.NewReader(make([]byte, 39)))
	if err == nil {
		t.Fatal("expected error for stream shorter than 40 bytes")
	}
}

func TestDecodeBadHeaderMagic(t *testing.T) {
	b := newFixtureBuilder(1)
	key := b.add(asciiString("k"))
	val := b.add(asciiString("v"))
	root := b.add(b.dict([2]int64{key, val}))
	data := b.build(root)
	data[0] = 'X' // corrupt magic

	_, err := Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for bad header magic")
	}
}

func TestDecodeBadTrailerOffsetIntSizeZero(t *testing.T) {
	b := newFixtureBuilder(1)
	key := b.add(asciiString("k"))
	val := b.add(asciiString("v"))
	root := b.add(b.dict([2]int64{key, val}))
	data := b.build(root)
	data[len(data)-26] = 0 // offsetIntSize

	_, err := Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for offsetIntSize == 0")
	}
}

func TestDecodeBadTrailerTopLevelOutOfRange(t *testing.T) {
	b := newFixtureBuilder(1)
	key := b.add(asciiString("k"))
	val := b.add(asciiString("v"))
	b.add(b.dict([2]int64{key, val}))

	data := b.build(int64(len(b.objects))) // one past the end
	_, err := Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for topLevelObjectOffset >= objectCount")
	}
}

func TestDecodeRootNotDict(t *testing.T) {
	b := newFixtureBuilder(1)
	root := b.add(asciiString("not a dict"))

	_, err := Decode(bytes.NewReader(b.build(root)))
	if err == nil {
		t.Fatal("expected error when root object isn't a dictionary")
	}
}

// readOnly hides bytes.Reader's Seek method so Decode must take the
// buffer-into-memory path of §4.1's "Stream requirements".
type readOnly struct {
	io.Reader
}

func TestDecodeNonSeekableReader(t *testing.T) {
	b := newFixtureBuilder(1)
	key := b.add(asciiString("k"))
	val := b.add(asciiString("v"))
	root := b.add(b.dict([2]int64{key, val}))

	v, err := Decode(readOnly{bytes.NewReader(b.build(root))})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v.Tag != TagDict {
		t.Fatalf("Tag = %v, want TagDict", v.Tag)
	}
}
