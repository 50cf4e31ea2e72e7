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
)

// maxNestingDepth bounds recursion on both the encode and decode paths.
// Values nested more deeply than this are rejected with CodeOverflow rather
// than risking stack exhaustion on adversarial input.
const maxNestingDepth = 1024

// PackValue encodes a [Value] into a freshly allocated byte slice. The
// encoder always chooses the smallest marker and size class that represents
// the value exactly, so output is minimal and deterministic. The input is
// never mutated.
//
// Structures must have at most 15 fields; the encoder only emits the tiny
// structure framing. Strings, byte arrays, lists, and maps are limited to
// 2^31-1 elements. Either limit exceeded returns CodeOverflow.
func PackValue(value Value) ([]byte, error) {
	p := packer{}
	if err := p.packValue(value, 0); err != nil {
		return nil, err
	}
	return p.buf, nil
}

// Pack encodes an ordinary Go value, translating it into the wire format by
// the fixed dispatch order: null, booleans, floats, integers, strings, byte
// arrays, sequences, string-keyed mappings, then [Value] pass-through. A
// value matching none of those shapes is handed to the dehydration hook
// registered for its type, if any, and the single replacement it returns is
// encoded in its place; otherwise Pack fails with CodeUnsupported.
//
// Which Go types count as which shape is decided by the process classifier
// table (see [RegisterClassifiers]); the default covers nil, bool, the
// built-in numeric types, string, []byte, slices, arrays, and maps. Native
// Go maps encode with sorted keys so that output is deterministic.
func Pack(value any, hooks *DehydrationHooks) ([]byte, error) {
	p := packer{hooks: hooks, cls: currentClassifiers()}
	if err := p.pack(value, 0, true); err != nil {
		return nil, err
	}
	return p.buf, nil
}

// packer appends the encoding of one value to an owned buffer. It is used
// for a single top-level call and never shared.
type packer struct {
	buf   []byte
	hooks *DehydrationHooks
	cls   *Classifiers
}

func (p *packer) packValue(value Value, depth int) error {
	if depth > maxNestingDepth {
		return errorf(CodeOverflow, "value nested deeper than %d levels", maxNestingDepth)
	}
	switch v := value.(type) {
	case nil, Null:
		p.buf = append(p.buf, markerNull)
	case Bool:
		p.packBool(bool(v))
	case Int:
		p.packInt(int64(v))
	case Float:
		p.packFloat(float64(v))
	case String:
		if err := p.packString(string(v)); err != nil {
			return err
		}
	case Bytes:
		if err := p.packBytesHeader(len(v)); err != nil {
			return err
		}
		p.buf = append(p.buf, v...)
	case List:
		if err := p.packListHeader(len(v)); err != nil {
			return err
		}
		for _, elem := range v {
			if err := p.packValue(elem, depth+1); err != nil {
				return err
			}
		}
	case Map:
		if err := p.packMapHeader(len(v)); err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(v))
		for _, entry := range v {
			if _, dup := seen[entry.Key]; dup {
				return errorf(CodeInvalidMapKey, "duplicate map key %q", entry.Key)
			}
			seen[entry.Key] = struct{}{}
			if err := p.packString(entry.Key); err != nil {
				return err
			}
			if err := p.packValue(entry.Value, depth+1); err != nil {
				return err
			}
		}
	case *Structure:
		if len(v.Fields) > maxStructFields {
			return errorf(CodeOverflow, "structure with tag 0x%02X has %d fields, limit is %d",
				v.Tag, len(v.Fields), maxStructFields)
		}
		p.buf = append(p.buf, markerTinyStruct|byte(len(v.Fields)), v.Tag)
		for _, field := range v.Fields {
			if err := p.packValue(field, depth+1); err != nil {
				return err
			}
		}
	default:
		return errorf(CodeUnsupported, "values of type %T are not supported", value)
	}
	return nil
}

// pack dispatches a foreign Go value. allowHook is cleared after a
// dehydration transform fires so that the replacement cannot be transformed
// again; fresh values nested inside the replacement dispatch normally.
func (p *packer) pack(value any, depth int, allowHook bool) error {
	if depth > maxNestingDepth {
		return errorf(CodeOverflow, "value nested deeper than %d levels", maxNestingDepth)
	}
	if value == nil || p.cls.IsNull(value) {
		p.buf = append(p.buf, markerNull)
		return nil
	}
	if v, ok := value.(Value); ok {
		return p.packValue(v, depth)
	}
	if b, ok := p.cls.AsBool(value); ok {
		p.packBool(b)
		return nil
	}
	if f, ok := p.cls.AsFloat(value); ok {
		p.packFloat(f)
		return nil
	}
	if i, ok := p.cls.AsInt(value); ok {
		p.packInt(i)
		return nil
	}
	if u, ok := oversizedUint(value); ok {
		return errorf(CodeOverflow, "integer %d out of range", u)
	}
	if s, ok := p.cls.AsString(value); ok {
		return p.packString(s)
	}
	if b, ok := p.cls.AsBytes(value); ok {
		if err := p.packBytesHeader(len(b)); err != nil {
			return err
		}
		p.buf = append(p.buf, b...)
		return nil
	}
	if elems, ok := p.cls.AsSequence(value); ok {
		if err := p.packListHeader(len(elems)); err != nil {
			return err
		}
		for _, elem := range elems {
			if err := p.pack(elem, depth+1, true); err != nil {
				return err
			}
		}
		return nil
	}
	if items, ok := p.cls.AsMapping(value); ok {
		if err := p.packMapHeader(len(items)); err != nil {
			return err
		}
		for _, item := range items {
			key, ok := item.Key.(string)
			if !ok {
				return errorf(CodeInvalidMapKey, "map keys must be strings, not %T", item.Key)
			}
			if err := p.packString(key); err != nil {
				return err
			}
			if err := p.pack(item.Value, depth+1, true); err != nil {
				return err
			}
		}
		return nil
	}
	if allowHook && p.hooks != nil {
		if transform := p.hooks.transformer(value); transform != nil {
			replacement, err := transform(value)
			if err != nil {
				return hookError(err)
			}
			return p.pack(replacement, depth, false)
		}
	}
	return errorf(CodeUnsupported, "values of type %T are not supported", value)
}

func (p *packer) packBool(b bool) {
	if b {
		p.buf = append(p.buf, markerTrue)
	} else {
		p.buf = append(p.buf, markerFalse)
	}
}

func (p *packer) packFloat(f float64) {
	p.buf = append(p.buf, markerFloat64)
	p.buf = binary.BigEndian.AppendUint64(p.buf, math.Float64bits(f))
}

func (p *packer) packInt(i int64) {
	switch {
	case i >= minTinyInt && i <= maxTinyInt:
		p.buf = append(p.buf, byte(i))
	case i >= math.MinInt8 && i <= math.MaxInt8:
		p.buf = append(p.buf, markerInt8, byte(i))
	case i >= math.MinInt16 && i <= math.MaxInt16:
		p.buf = append(p.buf, markerInt16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(i))
	case i >= math.MinInt32 && i <= math.MaxInt32:
		p.buf = append(p.buf, markerInt32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(i))
	default:
		p.buf = append(p.buf, markerInt64)
		p.buf = binary.BigEndian.AppendUint64(p.buf, uint64(i))
	}
}

func (p *packer) packString(s string) error {
	if err := p.packStringHeader(len(s)); err != nil {
		return err
	}
	p.buf = append(p.buf, s...)
	return nil
}

func (p *packer) packStringHeader(size int) error {
	return p.packHeader(markerTinyString, markerString8, markerString16, markerString32, size, "string")
}

func (p *packer) packBytesHeader(size int) error {
	// Byte arrays have no tiny framing.
	switch {
	case size <= maxSize8:
		p.buf = append(p.buf, markerBytes8, byte(size))
	case size <= maxSize16:
		p.buf = append(p.buf, markerBytes16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(size))
	case size <= maxSize32:
		p.buf = append(p.buf, markerBytes32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(size))
	default:
		return errorf(CodeOverflow, "bytes size %d out of range", size)
	}
	return nil
}

func (p *packer) packListHeader(size int) error {
	return p.packHeader(markerTinyList, markerList8, markerList16, markerList32, size, "list")
}

func (p *packer) packMapHeader(size int) error {
	return p.packHeader(markerTinyMap, markerMap8, markerMap16, markerMap32, size, "map")
}

func (p *packer) packHeader(tiny, m8, m16, m32 byte, size int, what string) error {
	switch {
	case size <= maxSizeTiny:
		p.buf = append(p.buf, tiny|byte(size))
	case size <= maxSize8:
		p.buf = append(p.buf, m8, byte(size))
	case size <= maxSize16:
		p.buf = append(p.buf, m16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(size))
	case size <= maxSize32:
		p.buf = append(p.buf, m32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(size))
	default:
		return errorf(CodeOverflow, "%s size %d out of range", what, size)
	}
	return nil
}

// oversizedUint reports unsigned values too large for the wire format's
// signed 64-bit integers. The integer classifier rejects them, and without
// this check they would fall through to a misleading unsupported-type error.
func oversizedUint(value any) (uint64, bool) {
	switch u := value.(type) {
	case uint64:
		if u > math.MaxInt64 {
			return u, true
		}
	case uint:
		if uint64(u) > math.MaxInt64 {
			return uint64(u), true
		}
	case uintptr:
		if uint64(u) > math.MaxInt64 {
			return uint64(u), true
		}
	}
	return 0, false
}
