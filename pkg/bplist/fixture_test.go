package bplist

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// fixtureBuilder assembles a minimal, valid bplist00 byte stream one object
// at a time, for exercising the decoder without any on-disk fixture files.
// Every object is added by its already-marker-encoded bytes; add returns the
// object's reference index for use in array/dict refs.
type fixtureBuilder struct {
	objects [][]byte
	refSize int
}

func newFixtureBuilder(refSize int) *fixtureBuilder {
	return &fixtureBuilder{refSize: refSize}
}

func (b *fixtureBuilder) add(encoded []byte) int64 {
	b.objects = append(b.objects, encoded)
	return int64(len(b.objects) - 1)
}

func (b *fixtureBuilder) ref(n int64) []byte {
	buf := make([]byte, b.refSize)
	switch b.refSize {
	case 1:
		buf[0] = byte(n)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(n))
	default:
		panic("unsupported test refSize")
	}
	return buf
}

func (b *fixtureBuilder) array(elems ...int64) []byte {
	out := []byte{0xA0 | byte(len(elems))}
	for _, e := range elems {
		out = append(out, b.ref(e)...)
	}
	return out
}

func (b *fixtureBuilder) dict(pairs ...[2]int64) []byte {
	out := []byte{0xD0 | byte(len(pairs))}
	for _, p := range pairs {
		out = append(out, b.ref(p[0])...)
	}
	for _, p := range pairs {
		out = append(out, b.ref(p[1])...)
	}
	return out
}

func asciiString(s string) []byte {
	return append([]byte{0x50 | byte(len(s))}, []byte(s)...)
}

func unicodeString(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := []byte{0x60 | byte(len(units))}
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func intObj(n int64, width int) []byte {
	var nibble byte
	switch width {
	case 1:
		nibble = 0
	case 2:
		nibble = 1
	case 4:
		nibble = 2
	case 8:
		nibble = 3
	default:
		panic("unsupported test int width")
	}
	out := []byte{0x10 | nibble}
	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, uint64(n))
	return append(out, full[8-width:]...)
}

func realObj(f float64, width int) []byte {
	if width == 4 {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(f)))
		return append([]byte{0x22}, buf[:]...)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	return append([]byte{0x23}, buf[:]...)
}

func dateObj(secondsSinceEpoch float64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(secondsSinceEpoch))
	return append([]byte{0x33}, buf[:]...)
}

func dataObj(b []byte) []byte {
	return append([]byte{0x40 | byte(len(b))}, b...)
}

func boolObj(v bool) []byte {
	if v {
		return []byte{0x09}
	}
	return []byte{0x08}
}

func nullObj() []byte {
	return []byte{0x00}
}

// build assembles the final stream with the given top-level object index.
func (b *fixtureBuilder) build(top int64) []byte {
	var buf bytes.Buffer
	buf.WriteString("bplist00")

	offsets := make([]int64, len(b.objects))
	for i, o := range b.objects {
		offsets[i] = int64(buf.Len())
		buf.Write(o)
	}

	offsetTableOffset := int64(buf.Len())
	for _, off := range offsets {
		buf.WriteByte(byte(off)) // offsetIntSize == 1 for all fixtures
	}

	buf.Write(make([]byte, 6)) // unused trailer bytes
	buf.WriteByte(1)           // offsetIntSize
	buf.WriteByte(byte(b.refSize))
	writeInt64BE(&buf, int64(len(b.objects)))
	writeInt64BE(&buf, top)
	writeInt64BE(&buf, offsetTableOffset)

	return buf.Bytes()
}

func writeInt64BE(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}
