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
	"math"
	"strings"
	"testing"

	"boltproto.dev/packstream/internal/assert"
)

func TestPackValueReference(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		value Value
		want  []byte
	}{
		{"null", Null{}, []byte{0xC0}},
		{"nil interface", nil, []byte{0xC0}},
		{"false", Bool(false), []byte{0xC2}},
		{"true", Bool(true), []byte{0xC3}},
		{"tiny int zero", Int(0), []byte{0x00}},
		{"tiny int 42", Int(42), []byte{0x2A}},
		{"tiny int -1", Int(-1), []byte{0xFF}},
		{"tiny int -16", Int(-16), []byte{0xF0}},
		{"int8 -17", Int(-17), []byte{0xC8, 0xEF}},
		{"int8 -128", Int(-128), []byte{0xC8, 0x80}},
		{"int16 128", Int(128), []byte{0xC9, 0x00, 0x80}},
		{"int16 1000", Int(1000), []byte{0xC9, 0x03, 0xE8}},
		{"int16 -129", Int(-129), []byte{0xC9, 0xFF, 0x7F}},
		{"int16 min", Int(-32768), []byte{0xC9, 0x80, 0x00}},
		{"int32 32768", Int(32768), []byte{0xCA, 0x00, 0x00, 0x80, 0x00}},
		{"int32 -32769", Int(-32769), []byte{0xCA, 0xFF, 0xFF, 0x7F, 0xFF}},
		{"int32 max", Int(2147483647), []byte{0xCA, 0x7F, 0xFF, 0xFF, 0xFF}},
		{"int64 2147483648", Int(2147483648), []byte{0xCB, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00}},
		{"int64 min", Int(math.MinInt64), []byte{0xCB, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"float 3.14", Float(3.14), []byte{0xC1, 0x40, 0x09, 0x1E, 0xB8, 0x51, 0xEB, 0x85, 0x1F}},
		{"float zero", Float(0), []byte{0xC1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"empty string", String(""), []byte{0x80}},
		{"tiny string", String("abc"), []byte{0x83, 0x61, 0x62, 0x63}},
		{"empty bytes", Bytes{}, []byte{0xCC, 0x00}},
		{"bytes", Bytes{0x01, 0x02, 0x03}, []byte{0xCC, 0x03, 0x01, 0x02, 0x03}},
		{"empty list", List{}, []byte{0x90}},
		{"tiny list", List{Int(1), Int(2), Int(3)}, []byte{0x93, 0x01, 0x02, 0x03}},
		{"empty map", Map{}, []byte{0xA0}},
		{"tiny map", Map{{Key: "a", Value: Int(1)}}, []byte{0xA1, 0x81, 0x61, 0x01}},
		{
			"structure",
			&Structure{Tag: 'N', Fields: []Value{String("x")}},
			[]byte{0xB1, 0x4E, 0x81, 0x78},
		},
		{"empty structure", &Structure{Tag: 0x01}, []byte{0xB0, 0x01}},
		{
			"nested",
			List{List{Map{{Key: "k", Value: Null{}}}}},
			[]byte{0x91, 0x91, 0xA1, 0x81, 0x6B, 0xC0},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := PackValue(tt.value)
			assert.Nil(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestPackStringSizeClasses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size   int
		header []byte
	}{
		{15, []byte{0x8F}},
		{16, []byte{0xD0, 0x10}},
		{255, []byte{0xD0, 0xFF}},
		{256, []byte{0xD1, 0x01, 0x00}},
		{65535, []byte{0xD1, 0xFF, 0xFF}},
		{65536, []byte{0xD2, 0x00, 0x01, 0x00, 0x00}},
	}
	for _, tt := range tests {
		got, err := PackValue(String(strings.Repeat("a", tt.size)))
		assert.Nil(t, err)
		assert.Equal(t, got[:len(tt.header)], tt.header, assert.Sprintf("size %d", tt.size))
		assert.Equal(t, len(got), len(tt.header)+tt.size, assert.Sprintf("size %d", tt.size))
	}
}

func TestPackListSizeClasses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size   int
		header []byte
	}{
		{15, []byte{0x9F}},
		{16, []byte{0xD4, 0x10}},
		{255, []byte{0xD4, 0xFF}},
		{256, []byte{0xD5, 0x01, 0x00}},
		{65535, []byte{0xD5, 0xFF, 0xFF}},
		{65536, []byte{0xD6, 0x00, 0x01, 0x00, 0x00}},
	}
	for _, tt := range tests {
		list := make(List, tt.size)
		for i := range list {
			list[i] = Int(0)
		}
		got, err := PackValue(list)
		assert.Nil(t, err)
		assert.Equal(t, got[:len(tt.header)], tt.header, assert.Sprintf("size %d", tt.size))
		// Each zero element encodes as a single tiny int byte.
		assert.Equal(t, len(got), len(tt.header)+tt.size, assert.Sprintf("size %d", tt.size))
	}
}

func TestPackMapSizeClasses(t *testing.T) {
	t.Parallel()
	m := make(Map, 0, 16)
	for i := 0; i < 16; i++ {
		m = append(m, MapEntry{Key: string(rune('a' + i)), Value: Int(0)})
	}
	got, err := PackValue(m[:15])
	assert.Nil(t, err)
	assert.Equal(t, got[0], byte(0xAF))
	got, err = PackValue(m)
	assert.Nil(t, err)
	assert.Equal(t, got[:2], []byte{0xD8, 0x10})
}

func TestPackBytesSizeClasses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size   int
		header []byte
	}{
		{1, []byte{0xCC, 0x01}},
		{255, []byte{0xCC, 0xFF}},
		{256, []byte{0xCD, 0x01, 0x00}},
		{65536, []byte{0xCE, 0x00, 0x01, 0x00, 0x00}},
	}
	for _, tt := range tests {
		got, err := PackValue(Bytes(make([]byte, tt.size)))
		assert.Nil(t, err)
		assert.Equal(t, got[:len(tt.header)], tt.header, assert.Sprintf("size %d", tt.size))
		assert.Equal(t, len(got), len(tt.header)+tt.size, assert.Sprintf("size %d", tt.size))
	}
}

func TestPackStructureFieldLimit(t *testing.T) {
	t.Parallel()
	fields := make([]Value, 16)
	for i := range fields {
		fields[i] = Int(int64(i))
	}
	got, err := PackValue(&Structure{Tag: 0x7F, Fields: fields[:15]})
	assert.Nil(t, err)
	assert.Equal(t, got[0], byte(0xBF))

	_, err = PackValue(&Structure{Tag: 0x7F, Fields: fields})
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeOverflow)
}

func TestPackValueDuplicateMapKey(t *testing.T) {
	t.Parallel()
	_, err := PackValue(Map{
		{Key: "a", Value: Int(1)},
		{Key: "a", Value: Int(2)},
	})
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeInvalidMapKey)
}

func TestPackValueDepthLimit(t *testing.T) {
	t.Parallel()
	value := Value(Null{})
	for i := 0; i < maxNestingDepth+2; i++ {
		value = List{value}
	}
	_, err := PackValue(value)
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeOverflow)
}

func TestPackForeignValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		value any
		want  []byte
	}{
		{"nil", nil, []byte{0xC0}},
		{"nil pointer", (*int)(nil), []byte{0xC0}},
		{"bool", true, []byte{0xC3}},
		{"int", 1000, []byte{0xC9, 0x03, 0xE8}},
		{"int8", int8(-17), []byte{0xC8, 0xEF}},
		{"uint16", uint16(1000), []byte{0xC9, 0x03, 0xE8}},
		{"uint64 in range", uint64(7), []byte{0x07}},
		{"float64", 3.14, []byte{0xC1, 0x40, 0x09, 0x1E, 0xB8, 0x51, 0xEB, 0x85, 0x1F}},
		{"float32", float32(0.5), []byte{0xC1, 0x3F, 0xE0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"string", "abc", []byte{0x83, 0x61, 0x62, 0x63}},
		{"bytes", []byte{0x01, 0x02}, []byte{0xCC, 0x02, 0x01, 0x02}},
		{"any slice", []any{int64(1), "a"}, []byte{0x92, 0x01, 0x81, 0x61}},
		{"typed slice", []int{1, 2, 3}, []byte{0x93, 0x01, 0x02, 0x03}},
		{"array", [2]bool{true, false}, []byte{0x92, 0xC3, 0xC2}},
		{"value pass-through", List{Int(1)}, []byte{0x91, 0x01}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Pack(tt.value, nil)
			assert.Nil(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestPackNativeMapDeterministic(t *testing.T) {
	t.Parallel()
	want := []byte{0xA3, 0x81, 0x61, 0x01, 0x81, 0x62, 0x02, 0x81, 0x63, 0x03}
	for i := 0; i < 10; i++ {
		got, err := Pack(map[string]any{"c": int64(3), "a": int64(1), "b": int64(2)}, nil)
		assert.Nil(t, err)
		assert.Equal(t, got, want)
	}
}

func TestPackNonStringMapKey(t *testing.T) {
	t.Parallel()
	_, err := Pack(map[int]string{1: "a"}, nil)
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeInvalidMapKey)
}

func TestPackOversizedUint(t *testing.T) {
	t.Parallel()
	_, err := Pack(uint64(math.MaxUint64), nil)
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeOverflow)

	_, err = Pack(uint64(math.MaxInt64), nil)
	assert.Nil(t, err)
}

func TestPackUnsupportedType(t *testing.T) {
	t.Parallel()
	_, err := Pack(struct{ X int }{X: 1}, nil)
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeUnsupported)

	_, err = Pack(make(chan int), nil)
	assert.NotNil(t, err)
	assert.Equal(t, CodeOf(err), CodeUnsupported)
}

func TestPackTypedNilContainers(t *testing.T) {
	t.Parallel()
	got, err := Pack([]int(nil), nil)
	assert.Nil(t, err)
	assert.Equal(t, got, []byte{0x90})

	got, err = Pack(map[string]any(nil), nil)
	assert.Nil(t, err)
	assert.Equal(t, got, []byte{0xA0})
}
