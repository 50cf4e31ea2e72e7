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
	"testing"

	"boltproto.dev/packstream/internal/assert"
)

func TestSpatialRoundTrip(t *testing.T) {
	t.Parallel()
	dehydrate := StandardDehydrationHooks()
	hydrate := StandardHydrationHooks()
	values := []any{
		Point2D{SRID: SRIDWGS84Point2D, X: 13.4, Y: 52.5},
		Point3D{SRID: SRIDCartesian3D, X: 1, Y: 2, Z: 3},
	}
	for _, value := range values {
		encoded, err := Pack(value, dehydrate)
		assert.Nil(t, err)
		decoded, next, err := Unpack(encoded, 0, hydrate)
		assert.Nil(t, err)
		assert.Equal(t, next, len(encoded))
		assert.Equal(t, decoded, value, assert.Sprintf("round trip of %+v", value))
	}
}

func TestSpatialWireFormat(t *testing.T) {
	t.Parallel()
	encoded, err := Pack(Point2D{SRID: 7203, X: 0, Y: 0}, StandardDehydrationHooks())
	assert.Nil(t, err)
	want := []byte{
		0xB3, 0x58, // Point2D, three fields
		0xC9, 0x1C, 0x23, // 7203
		0xC1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, encoded, want)
}

func TestHydratePointIntegerCoordinates(t *testing.T) {
	t.Parallel()
	// Coordinates may arrive as integers; they hydrate as floats.
	encoded, err := PackValue(&Structure{Tag: TagPoint3D, Fields: []Value{
		Int(9157), Int(1), Int(2), Int(3),
	}})
	assert.Nil(t, err)
	decoded, _, err := Unpack(encoded, 0, StandardHydrationHooks())
	assert.Nil(t, err)
	assert.Equal(t, decoded, any(Point3D{SRID: 9157, X: 1, Y: 2, Z: 3}))
}

func TestHydratePointBadFields(t *testing.T) {
	t.Parallel()
	tests := []*Structure{
		{Tag: TagPoint2D, Fields: []Value{Int(4326), Float(1)}},
		{Tag: TagPoint2D, Fields: []Value{Float(4326), Float(1), Float(2)}},
		{Tag: TagPoint3D, Fields: []Value{Int(4979), String("x"), Float(2), Float(3)}},
	}
	for _, s := range tests {
		encoded, err := PackValue(s)
		assert.Nil(t, err)
		_, _, err = Unpack(encoded, 0, StandardHydrationHooks())
		assert.NotNil(t, err)
		assert.Equal(t, CodeOf(err), CodeHookFailure)
	}
}
