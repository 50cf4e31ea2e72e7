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
	"bytes"
	"math"
)

// A Kind identifies one variant of the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindStructure
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// A Value is one of the nine types PackStream can represent on the wire:
// [Null], [Bool], [Int], [Float], [String], [Bytes], [List], [Map], or
// [*Structure]. The union is closed; the codec core dispatches on it
// exhaustively. Application types outside the union travel through the
// dehydration and hydration hook tables instead (see [Pack] and [Unpack]).
type Value interface {
	// Kind reports which variant of the union this value is.
	Kind() Kind
}

// Null is the PackStream null value.
type Null struct{}

// Bool is a PackStream boolean.
type Bool bool

// Int is a PackStream integer. The wire format supports signed 64-bit
// integers only; the encoder picks the smallest representation that holds
// the value exactly.
type Int int64

// Float is a PackStream 64-bit IEEE-754 float.
type Float float64

// String is a PackStream string. The wire payload is UTF-8.
type String string

// Bytes is a PackStream byte array.
type Bytes []byte

// List is an ordered sequence of values.
type List []Value

// Map is a mapping from string keys to values. Entries preserve insertion
// order and keys must be unique; the encoder rejects duplicates.
type Map []MapEntry

// A MapEntry is a single key-value pair of a [Map].
type MapEntry struct {
	Key   string
	Value Value
}

// Get returns the value for key and whether the key is present. Lookup is
// linear; Map is intended for the small property maps that travel on the
// wire, not as a general-purpose container.
func (m Map) Get(key string) (Value, bool) {
	for _, entry := range m {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// A Structure is a tagged record: one tag byte identifying the record type,
// agreed upon out of band, and an ordered sequence of fields. It is the
// lowest-common-denominator representation for protocol messages and
// application types the codec doesn't natively understand. A decoded
// Structure owns its fields outright and never aliases the decode buffer.
type Structure struct {
	Tag    byte
	Fields []Value
}

func (Null) Kind() Kind       { return KindNull }
func (Bool) Kind() Kind       { return KindBool }
func (Int) Kind() Kind        { return KindInt }
func (Float) Kind() Kind      { return KindFloat }
func (String) Kind() Kind     { return KindString }
func (Bytes) Kind() Kind      { return KindBytes }
func (List) Kind() Kind       { return KindList }
func (Map) Kind() Kind        { return KindMap }
func (*Structure) Kind() Kind { return KindStructure }

// Equal reports whether s and other have the same tag and pairwise-equal
// fields, in order.
func (s *Structure) Equal(other *Structure) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Tag != other.Tag || len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if !Equal(s.Fields[i], other.Fields[i]) {
			return false
		}
	}
	return true
}

// Hash returns an order-sensitive hash of the structure's tag and fields,
// consistent with Equal: equal structures hash identically.
func (s *Structure) Hash() uint64 {
	h := offset64
	h = hashByte(h, s.Tag)
	for _, field := range s.Fields {
		h = hashCombine(h, hashValue(field))
	}
	return h
}

// Equal reports deep structural equality of two values. Lists and structure
// fields compare element-wise in order; maps compare by content, ignoring
// entry order; floats compare bit-exactly (NaN equals NaN).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Float)))
	case String:
		return av == b.(String)
	case Bytes:
		return bytes.Equal(av, b.(Bytes))
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for _, entry := range av {
			other, ok := bv.Get(entry.Key)
			if !ok || !Equal(entry.Value, other) {
				return false
			}
		}
		return true
	case *Structure:
		return av.Equal(b.(*Structure))
	default:
		return false
	}
}

// FNV-1a, the usual choice for cheap structural hashing.
const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

func hashByte(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * prime64
}

func hashUint64(h, v uint64) uint64 {
	for shift := 56; shift >= 0; shift -= 8 {
		h = hashByte(h, byte(v>>shift))
	}
	return h
}

func hashCombine(h, sub uint64) uint64 {
	return hashUint64(h, sub)
}

func hashValue(v Value) uint64 {
	h := offset64 ^ uint64(v.Kind())
	switch val := v.(type) {
	case Null:
	case Bool:
		if val {
			h = hashByte(h, 1)
		} else {
			h = hashByte(h, 0)
		}
	case Int:
		h = hashUint64(h, uint64(val))
	case Float:
		h = hashUint64(h, math.Float64bits(float64(val)))
	case String:
		for i := 0; i < len(val); i++ {
			h = hashByte(h, val[i])
		}
	case Bytes:
		for _, b := range val {
			h = hashByte(h, b)
		}
	case List:
		for _, elem := range val {
			h = hashCombine(h, hashValue(elem))
		}
	case Map:
		// XOR-combine entries so the hash matches content equality, which
		// ignores entry order.
		var acc uint64
		for _, entry := range val {
			eh := offset64
			for i := 0; i < len(entry.Key); i++ {
				eh = hashByte(eh, entry.Key[i])
			}
			eh = hashCombine(eh, hashValue(entry.Value))
			acc ^= eh
		}
		h = hashUint64(h, acc)
	case *Structure:
		h = hashCombine(h, val.Hash())
	}
	return h
}
