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

// Marker bytes for the PackStream wire grammar. The tiny composite families
// embed a length (0-15) in the marker's low nibble; everything else is a
// fixed full-byte marker, optionally followed by an 8-, 16-, or 32-bit
// big-endian length field.
const (
	markerTinyString byte = 0x80 // high nibble; length in low nibble
	markerTinyList   byte = 0x90
	markerTinyMap    byte = 0xA0
	markerTinyStruct byte = 0xB0 // tag byte follows

	markerNull    byte = 0xC0
	markerFloat64 byte = 0xC1
	markerFalse   byte = 0xC2
	markerTrue    byte = 0xC3

	markerInt8  byte = 0xC8
	markerInt16 byte = 0xC9
	markerInt32 byte = 0xCA
	markerInt64 byte = 0xCB

	markerBytes8  byte = 0xCC
	markerBytes16 byte = 0xCD
	markerBytes32 byte = 0xCE

	markerString8  byte = 0xD0
	markerString16 byte = 0xD1
	markerString32 byte = 0xD2

	markerList8  byte = 0xD4
	markerList16 byte = 0xD5
	markerList32 byte = 0xD6

	markerMap8  byte = 0xD8
	markerMap16 byte = 0xD9
	markerMap32 byte = 0xDA

	// Wide structure framings carry an explicit 8- or 16-bit field count.
	// The encoder never emits them (it only produces the tiny framing), but
	// the decoder accepts them for interoperability with other producers.
	markerStruct8  byte = 0xDC
	markerStruct16 byte = 0xDD
)

// Size-class boundaries. The encoder always selects the smallest class that
// fits; lengths beyond maxSize32 cannot be represented and are an encode
// error.
const (
	maxSizeTiny = 0x0F
	maxSize8    = 0xFF
	maxSize16   = 0xFFFF
	maxSize32   = 0x7FFFFFFF
)

// Tiny integer range: a marker byte whose signed interpretation lies in
// [-16, 127] is itself the integer value. The composite-family nibbles must
// be checked first, since e.g. 0x90 is negative as a signed byte.
const (
	minTinyInt = -16
	maxTinyInt = 127
)

// maxStructFields is the field-count limit for the tiny structure framing,
// the only framing the encoder emits. The decoder accepts up to 65535 fields
// via the wide framings.
const maxStructFields = 15

// highNibble strips the embedded length from a tiny composite marker.
func highNibble(marker byte) byte { return marker & 0xF0 }

// lowNibble extracts the embedded length from a tiny composite marker.
func lowNibble(marker byte) int { return int(marker & 0x0F) }
