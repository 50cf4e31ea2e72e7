// Copyright 2024-2026 The PackStream Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package packstream

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// UnpackValue decodes one complete value from buf starting at offset and
// returns it together with the offset of the first byte past it, so a
// sequence of values sharing one buffer can be decoded by feeding each
// returned offset back in.
//
// The buffer is only borrowed for the duration of the call: every string
// and byte payload is copied out, so the decoded value stays valid after
// the caller reuses or discards buf. Every read is bounds-checked first;
// truncated input returns CodeTruncated, never a panic.
//
// Structures decode as raw [*Structure] values. The decoder accepts the
// wide 8- and 16-bit structure framings (field counts up to 65535) even
// though the encoder cannot produce them.
func UnpackValue(buf []byte, offset int) (Value, int, error) {
	u := unpacker{buf: buf, off: offset}
	value, err := u.unpack(0)
	if err != nil {
		return nil, offset, err
	}
	return value, u.off, nil
}

// unpacker is a cursor over a caller-owned buffer. The cursor moves strictly
// forward; a successful unpack advances it by exactly the bytes of one
// complete value.
type unpacker struct {
	buf []byte
	off int
}

func (u *unpacker) unpack(depth int) (Value, error) {
	if depth > maxNestingDepth {
		return nil, errorf(CodeOverflow, "value nested deeper than %d levels", maxNestingDepth)
	}
	marker, err := u.readByte()
	if err != nil {
		return nil, err
	}
	switch highNibble(marker) {
	case markerTinyString:
		return u.unpackString(lowNibble(marker))
	case markerTinyList:
		return u.unpackList(lowNibble(marker), depth)
	case markerTinyMap:
		return u.unpackMap(lowNibble(marker), depth)
	case markerTinyStruct:
		return u.unpackStructure(lowNibble(marker), depth)
	}
	// Tiny integer. Checked only after the composite nibbles: bytes like
	// 0x90 are negative as signed bytes and would misclassify here.
	if signed := int8(marker); signed >= minTinyInt {
		return Int(signed), nil
	}
	switch marker {
	case markerNull:
		return Null{}, nil
	case markerFalse:
		return Bool(false), nil
	case markerTrue:
		return Bool(true), nil
	case markerFloat64:
		bits, err := u.readUint64()
		if err != nil {
			return nil, err
		}
		return Float(math.Float64frombits(bits)), nil
	case markerInt8:
		b, err := u.readByte()
		if err != nil {
			return nil, err
		}
		return Int(int8(b)), nil
	case markerInt16:
		v, err := u.readUint16()
		if err != nil {
			return nil, err
		}
		return Int(int16(v)), nil
	case markerInt32:
		v, err := u.readUint32()
		if err != nil {
			return nil, err
		}
		return Int(int32(v)), nil
	case markerInt64:
		v, err := u.readUint64()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	case markerBytes8, markerBytes16, markerBytes32:
		size, err := u.readSize(marker - markerBytes8)
		if err != nil {
			return nil, err
		}
		payload, err := u.read(size)
		if err != nil {
			return nil, err
		}
		// Copy out: decoded values must not alias the borrowed buffer.
		return Bytes(append([]byte(nil), payload...)), nil
	case markerString8, markerString16, markerString32:
		size, err := u.readSize(marker - markerString8)
		if err != nil {
			return nil, err
		}
		return u.unpackString(size)
	case markerList8, markerList16, markerList32:
		size, err := u.readSize(marker - markerList8)
		if err != nil {
			return nil, err
		}
		return u.unpackList(size, depth)
	case markerMap8, markerMap16, markerMap32:
		size, err := u.readSize(marker - markerMap8)
		if err != nil {
			return nil, err
		}
		return u.unpackMap(size, depth)
	case markerStruct8, markerStruct16:
		size, err := u.readSize(marker - markerStruct8)
		if err != nil {
			return nil, err
		}
		return u.unpackStructure(size, depth)
	}
	return nil, errorf(CodeMalformedMarker, "unknown marker 0x%02X at offset %d", marker, u.off-1)
}

func (u *unpacker) unpackString(size int) (Value, error) {
	payload, err := u.read(size)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(payload) {
		return nil, errorf(CodeInvalidUTF8, "string ending at offset %d is not valid UTF-8", u.off)
	}
	// string(payload) copies, so the result doesn't alias the buffer.
	return String(payload), nil
}

func (u *unpacker) unpackList(size, depth int) (Value, error) {
	list := make(List, 0, sizeHint(size))
	for i := 0; i < size; i++ {
		elem, err := u.unpack(depth + 1)
		if err != nil {
			return nil, err
		}
		list = append(list, elem)
	}
	return list, nil
}

func (u *unpacker) unpackMap(size, depth int) (Value, error) {
	m := make(Map, 0, sizeHint(size))
	for i := 0; i < size; i++ {
		key, err := u.unpackMapKey()
		if err != nil {
			return nil, err
		}
		value, err := u.unpack(depth + 1)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Get(key); dup {
			// Last write wins, matching other implementations of the
			// format. The entry keeps its original position.
			for j := range m {
				if m[j].Key == key {
					m[j].Value = value
					break
				}
			}
			continue
		}
		m = append(m, MapEntry{Key: key, Value: value})
	}
	return m, nil
}

// unpackMapKey decodes a map key, which the grammar restricts to the string
// sub-grammar: any non-string marker at a key position is an error.
func (u *unpacker) unpackMapKey() (string, error) {
	at := u.off
	marker, err := u.readByte()
	if err != nil {
		return "", err
	}
	var size int
	switch {
	case highNibble(marker) == markerTinyString:
		size = lowNibble(marker)
	case marker == markerString8, marker == markerString16, marker == markerString32:
		size, err = u.readSize(marker - markerString8)
		if err != nil {
			return "", err
		}
	default:
		return "", errorf(CodeInvalidMapKey, "map key at offset %d has non-string marker 0x%02X", at, marker)
	}
	value, err := u.unpackString(size)
	if err != nil {
		return "", err
	}
	return string(value.(String)), nil
}

func (u *unpacker) unpackStructure(size, depth int) (Value, error) {
	tag, err := u.readByte()
	if err != nil {
		return nil, err
	}
	fields := make([]Value, 0, sizeHint(size))
	for i := 0; i < size; i++ {
		field, err := u.unpack(depth + 1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return &Structure{Tag: tag, Fields: fields}, nil
}

// read returns the next n bytes of the buffer as a view and advances the
// cursor. Callers that retain the bytes must copy them.
func (u *unpacker) read(n int) ([]byte, error) {
	if len(u.buf)-u.off < n {
		return nil, errorf(CodeTruncated,
			"unexpected end of input: need %d bytes at offset %d, have %d", n, u.off, len(u.buf)-u.off)
	}
	view := u.buf[u.off : u.off+n]
	u.off += n
	return view, nil
}

func (u *unpacker) readByte() (byte, error) {
	view, err := u.read(1)
	if err != nil {
		return 0, err
	}
	return view[0], nil
}

func (u *unpacker) readUint16() (uint16, error) {
	view, err := u.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(view), nil
}

func (u *unpacker) readUint32() (uint32, error) {
	view, err := u.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(view), nil
}

func (u *unpacker) readUint64() (uint64, error) {
	view, err := u.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(view), nil
}

// readSize reads a length field whose width is selected by the marker's
// distance from the 8-bit marker of its family: 0 for one byte, 1 for two,
// 2 for four.
func (u *unpacker) readSize(width byte) (int, error) {
	switch width {
	case 0:
		b, err := u.readByte()
		return int(b), err
	case 1:
		v, err := u.readUint16()
		return int(v), err
	default:
		v, err := u.readUint32()
		if err != nil {
			return 0, err
		}
		if v > maxSize32 {
			return 0, errorf(CodeOverflow, "size %d out of range at offset %d", v, u.off-4)
		}
		return int(v), nil
	}
}

// sizeHint caps pre-allocation for declared element counts. A malicious
// header can claim up to 2^31-1 elements while the buffer holds almost
// nothing; allocation grows with actual decoded content instead.
func sizeHint(size int) int {
	const limit = 1024
	if size > limit {
		return limit
	}
	return size
}
