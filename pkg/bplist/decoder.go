package bplist

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"
	"unicode/utf16"
)

const (
	headerMagicHi uint32 = 0x62706C69 // "bpli"
	headerMagicLo uint32 = 0x73743030 // "st00"

	minStreamLength = 40
	trailerLength   = 32
)

// Marker high nibbles (§4.1).
const (
	tagPrimitive = 0x0
	tagInteger   = 0x1
	tagReal      = 0x2
	tagDate      = 0x3
	tagData      = 0x4
	tagASCII     = 0x5
	tagUnicode   = 0x6
	tagUID       = 0x8
	tagArrayA    = 0xA
	tagArrayC    = 0xC
	tagDict      = 0xD
)

const (
	primNull      = 0x0
	primBoolFalse = 0x8
	primBoolTrue  = 0x9
	primFill      = 0xF
)

type trailer struct {
	offsetIntSize        uint8
	objectRefSize        uint8
	objectCount          int64
	topLevelObjectOffset int64
	offsetTableOffset    int64
}

// rawKind distinguishes a fully-resolved object (every scalar type) from a
// container whose member references haven't been resolved to Values yet.
type rawKind int

const (
	rawResolved rawKind = iota
	rawArray
	rawDict
)

type rawObject struct {
	kind     rawKind
	resolved Value

	// rawArray
	elemRefs []int64

	// rawDict
	keyRefs []int64
	valRefs []int64
}

// decoder holds the state needed to decode one bplist00 stream. It is not
// reused across calls to Decode.
type decoder struct {
	r       io.ReadSeeker
	length  int64
	trailer trailer
	offsets []int64
	raw     []rawObject

	// resolved memoizes completed Values by object index; inProgress marks
	// indices currently being materialized higher up the call stack, used
	// to detect the self-referential containers described in §4.1's
	// Materialization rules and §9's design note.
	resolved   map[int64]Value
	inProgress map[int64]bool
}

// Decode parses a bplist00 stream into its root Value, which §4.1 requires
// to be a dict. r need not be seekable; a non-seekable r is buffered into
// memory first (§4.1 "Stream requirements").
func Decode(r io.Reader) (Value, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return Value{}, errorf("failed to buffer non-seekable stream: %v", err)
		}
		rs = bytes.NewReader(buf)
	}

	length, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return Value{}, errorf("failed to seek stream: %v", err)
	}
	if length < minStreamLength {
		return Value{}, errorf("stream too short (%d bytes, need at least %d)", length, minStreamLength)
	}

	d := &decoder{
		r:          rs,
		length:     length,
		resolved:   make(map[int64]Value),
		inProgress: make(map[int64]bool),
	}

	if err := d.readHeader(); err != nil {
		return Value{}, err
	}
	if err := d.readTrailer(); err != nil {
		return Value{}, err
	}
	if err := d.validateTrailer(); err != nil {
		return Value{}, err
	}
	if err := d.readOffsetTable(); err != nil {
		return Value{}, err
	}
	if err := d.decodeAllRaw(); err != nil {
		return Value{}, err
	}

	root, err := d.resolve(d.trailer.topLevelObjectOffset)
	if err != nil {
		return Value{}, err
	}
	if root.Tag != TagDict {
		return Value{}, errorf("root object is a %s, not a dictionary", root.Tag)
	}
	return root, nil
}

func (d *decoder) readHeader() error {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return errorf("failed to seek to header: %v", err)
	}
	var hi, lo uint32
	if err := binary.Read(d.r, binary.BigEndian, &hi); err != nil {
		return errorf("failed to read header: %v", err)
	}
	if err := binary.Read(d.r, binary.BigEndian, &lo); err != nil {
		return errorf("failed to read header: %v", err)
	}
	if hi != headerMagicHi || lo != headerMagicLo {
		return errorf("bad header magic (got %08x%08x, want bplist00)", hi, lo)
	}
	return nil
}

func (d *decoder) readTrailer() error {
	if _, err := d.r.Seek(d.length-trailerLength, io.SeekStart); err != nil {
		return errorf("failed to seek to trailer: %v", err)
	}
	var raw struct {
		Unused               [6]byte
		OffsetIntSize        uint8
		ObjectRefSize        uint8
		ObjectCount          int64
		TopLevelObjectOffset int64
		OffsetTableOffset    int64
	}
	if err := binary.Read(d.r, binary.BigEndian, &raw); err != nil {
		return errorf("failed to read trailer: %v", err)
	}
	d.trailer = trailer{
		offsetIntSize:        raw.OffsetIntSize,
		objectRefSize:        raw.ObjectRefSize,
		objectCount:          raw.ObjectCount,
		topLevelObjectOffset: raw.TopLevelObjectOffset,
		offsetTableOffset:    raw.OffsetTableOffset,
	}
	return nil
}

func (d *decoder) validateTrailer() error {
	t := d.trailer
	if t.offsetIntSize < 1 || t.offsetIntSize > 8 {
		return errorf("bad trailer: offsetIntSize out of range (%d)", t.offsetIntSize)
	}
	if t.objectRefSize < 1 || t.objectRefSize > 8 {
		return errorf("bad trailer: objectRefSize out of range (%d)", t.objectRefSize)
	}
	if t.offsetTableOffset < 8 {
		return errorf("bad trailer: offsetTableOffset before end of header (%d)", t.offsetTableOffset)
	}
	if t.topLevelObjectOffset < 0 || t.topLevelObjectOffset >= t.objectCount {
		return errorf("bad trailer: topLevelObjectOffset (%d) out of range for %d objects", t.topLevelObjectOffset, t.objectCount)
	}
	need := t.offsetTableOffset + int64(t.offsetIntSize)*t.objectCount + trailerLength
	if need > d.length {
		return errorf("bad trailer: offset table + trailer (%d bytes) overruns stream (%d bytes)", need, d.length)
	}
	return nil
}

func (d *decoder) readOffsetTable() error {
	if _, err := d.r.Seek(d.trailer.offsetTableOffset, io.SeekStart); err != nil {
		return errorf("failed to seek to offset table: %v", err)
	}
	d.offsets = make([]int64, d.trailer.objectCount)
	for i := range d.offsets {
		off, err := d.readSizedUint(int(d.trailer.offsetIntSize))
		if err != nil {
			return errorf("failed to read offset table entry %d: %v", i, err)
		}
		d.offsets[i] = int64(off)
	}
	return nil
}

func (d *decoder) decodeAllRaw() error {
	d.raw = make([]rawObject, d.trailer.objectCount)
	for i := range d.raw {
		obj, err := d.decodeRawAt(d.offsets[i])
		if err != nil {
			return err
		}
		d.raw[i] = obj
	}
	return nil
}

// readSizedUint reads an n-byte big-endian unsigned integer, widened into a
// uint64. n must be between 1 and 8.
func (d *decoder) readSizedUint(n int) (uint64, error) {
	var buf [8]byte
	if n < 1 || n > 8 {
		return 0, errorf("illegal integer size %d", n)
	}
	if _, err := io.ReadFull(d.r, buf[8-n:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// readCount reads the size/count encoded by a marker's low nibble, handling
// the "0xF means read an auxiliary integer object" escape of §4.1.
func (d *decoder) readCount(marker byte) (uint64, error) {
	n := marker & 0x0F
	if n != 0x0F {
		return uint64(n), nil
	}
	var intMarker byte
	if err := binary.Read(d.r, binary.BigEndian, &intMarker); err != nil {
		return 0, errorf("failed to read count marker: %v", err)
	}
	if intMarker&0xF0 != tagInteger<<4 {
		return 0, errorf("count marker 0x%02x is not an integer", intMarker)
	}
	size := 1 << (intMarker & 0x0F)
	if size != 1 && size != 2 && size != 4 && size != 8 {
		return 0, errorf("illegal count integer size %d", size)
	}
	return d.readSizedUint(size)
}

func (d *decoder) decodeRawAt(off int64) (rawObject, error) {
	if _, err := d.r.Seek(off, io.SeekStart); err != nil {
		return rawObject{}, errorf("failed to seek to object at %d: %v", off, err)
	}
	var marker byte
	if err := binary.Read(d.r, binary.BigEndian, &marker); err != nil {
		return rawObject{}, errorf("failed to read marker at %d: %v", off, err)
	}

	hi := marker >> 4
	lo := marker & 0x0F

	switch hi {
	case tagPrimitive:
		switch lo {
		case primNull, primFill:
			return rawObject{resolved: Value{Tag: TagNull}}, nil
		case primBoolFalse:
			return rawObject{resolved: Value{Tag: TagBool, Bool: false}}, nil
		case primBoolTrue:
			return rawObject{resolved: Value{Tag: TagBool, Bool: true}}, nil
		}
		return rawObject{}, errorf("unexpected primitive marker 0x%02x at %d", marker, off)

	case tagInteger:
		size := 1 << lo
		if size != 1 && size != 2 && size != 4 && size != 8 {
			return rawObject{}, errorf("unsupported integer width %d at %d", size, off)
		}
		u, err := d.readSizedUint(size)
		if err != nil {
			return rawObject{}, errorf("failed to read integer at %d: %v", off, err)
		}
		// 1/2/4-byte integers are unsigned widened; 8-byte integers are
		// signed two's complement — both fall out of the uint64->int64
		// reinterpretation since the smaller widths never set bit 63.
		return rawObject{resolved: Value{Tag: TagInt, Int: int64(u)}}, nil

	case tagReal:
		size := 1 << lo
		switch size {
		case 4:
			u, err := d.readSizedUint(4)
			if err != nil {
				return rawObject{}, errorf("failed to read real at %d: %v", off, err)
			}
			return rawObject{resolved: Value{Tag: TagReal, Real: float64(math.Float32frombits(uint32(u)))}}, nil
		case 8:
			u, err := d.readSizedUint(8)
			if err != nil {
				return rawObject{}, errorf("failed to read real at %d: %v", off, err)
			}
			return rawObject{resolved: Value{Tag: TagReal, Real: math.Float64frombits(u)}}, nil
		default:
			return rawObject{}, errorf("unsupported real width %d at %d", size, off)
		}

	case tagDate:
		if lo != 3 {
			return rawObject{}, errorf("unsupported date size nibble %d at %d", lo, off)
		}
		u, err := d.readSizedUint(8)
		if err != nil {
			return rawObject{}, errorf("failed to read date at %d: %v", off, err)
		}
		secs := math.Float64frombits(u)
		whole, frac := math.Modf(secs)
		t := Epoch.Add(time.Duration(whole) * time.Second).Add(time.Duration(frac * float64(time.Second)))
		return rawObject{resolved: Value{Tag: TagDate, Date: t}}, nil

	case tagData:
		count, err := d.readCount(marker)
		if err != nil {
			return rawObject{}, err
		}
		buf := make([]byte, count)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return rawObject{}, errorf("failed to read %d bytes of data at %d: %v", count, off, err)
		}
		return rawObject{resolved: Value{Tag: TagData, Data: buf}}, nil

	case tagASCII:
		count, err := d.readCount(marker)
		if err != nil {
			return rawObject{}, err
		}
		buf := make([]byte, count)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return rawObject{}, errorf("failed to read %d byte ascii string at %d: %v", count, off, err)
		}
		return rawObject{resolved: Value{Tag: TagAsciiString, Str: string(buf)}}, nil

	case tagUnicode:
		count, err := d.readCount(marker)
		if err != nil {
			return rawObject{}, err
		}
		units := make([]uint16, count)
		if err := binary.Read(d.r, binary.BigEndian, units); err != nil {
			return rawObject{}, errorf("failed to read %d unicode code units at %d: %v", count, off, err)
		}
		return rawObject{resolved: Value{Tag: TagUnicodeString, Str: string(utf16.Decode(units))}}, nil

	case tagUID:
		size := int(lo) + 1
		u, err := d.readSizedUint(size)
		if err != nil {
			return rawObject{}, errorf("failed to read uid at %d: %v", off, err)
		}
		return rawObject{resolved: Value{Tag: TagUid, Uid: u}}, nil

	case tagArrayA, tagArrayC:
		count, err := d.readCount(marker)
		if err != nil {
			return rawObject{}, err
		}
		refs := make([]int64, count)
		for i := range refs {
			r, err := d.readSizedUint(int(d.trailer.objectRefSize))
			if err != nil {
				return rawObject{}, errorf("failed to read array ref %d at %d: %v", i, off, err)
			}
			refs[i] = int64(r)
		}
		return rawObject{kind: rawArray, elemRefs: refs}, nil

	case tagDict:
		count, err := d.readCount(marker)
		if err != nil {
			return rawObject{}, err
		}
		keyRefs := make([]int64, count)
		for i := range keyRefs {
			r, err := d.readSizedUint(int(d.trailer.objectRefSize))
			if err != nil {
				return rawObject{}, errorf("failed to read dict key ref %d at %d: %v", i, off, err)
			}
			keyRefs[i] = int64(r)
		}
		valRefs := make([]int64, count)
		for i := range valRefs {
			r, err := d.readSizedUint(int(d.trailer.objectRefSize))
			if err != nil {
				return rawObject{}, errorf("failed to read dict value ref %d at %d: %v", i, off, err)
			}
			valRefs[i] = int64(r)
		}
		return rawObject{kind: rawDict, keyRefs: keyRefs, valRefs: valRefs}, nil
	}

	return rawObject{}, errorf("unexpected marker 0x%02x at offset %d", marker, off)
}

// resolve materializes the object at index, memoizing the result. Arrays and
// dicts recurse into resolve for each member reference; their branches below
// are the only place that applies the self-reference and out-of-range
// tolerance of §4.1's Materialization rules.
func (d *decoder) resolve(index int64) (Value, error) {
	if v, ok := d.resolved[index]; ok {
		return v, nil
	}
	if index < 0 || index >= int64(len(d.raw)) {
		return Value{}, errorf("object reference %d out of range (%d objects)", index, len(d.raw))
	}

	obj := d.raw[index]
	var v Value
	switch obj.kind {
	case rawResolved:
		v = obj.resolved

	case rawArray:
		d.inProgress[index] = true
		elems := make([]Value, 0, len(obj.elemRefs))
		for _, ref := range obj.elemRefs {
			if d.inProgress[ref] {
				continue // self-referential slot: leave empty (§4.1)
			}
			if ref < 0 || ref >= int64(len(d.raw)) {
				continue // out-of-range ref: skip (§4.1 tolerance)
			}
			ev, err := d.resolve(ref)
			if err != nil {
				delete(d.inProgress, index)
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		delete(d.inProgress, index)
		v = Value{Tag: TagArray, Array: elems}

	case rawDict:
		d.inProgress[index] = true
		dict := NewDict()
		for i, keyRef := range obj.keyRefs {
			valRef := obj.valRefs[i]
			if d.inProgress[keyRef] || d.inProgress[valRef] {
				continue // self-referential pair: skip (§4.1)
			}
			if keyRef < 0 || keyRef >= int64(len(d.raw)) || valRef < 0 || valRef >= int64(len(d.raw)) {
				continue // out-of-range ref: skip the whole pair (§4.1)
			}
			kv, err := d.resolve(keyRef)
			if err != nil {
				delete(d.inProgress, index)
				return Value{}, err
			}
			if !kv.IsString() {
				continue // non-string keys can't address the dict: skip
			}
			vv, err := d.resolve(valRef)
			if err != nil {
				delete(d.inProgress, index)
				return Value{}, err
			}
			dict.Set(kv.Str, vv)
		}
		delete(d.inProgress, index)
		v = Value{Tag: TagDict, Dict: dict}
	}

	d.resolved[index] = v
	return v, nil
}
