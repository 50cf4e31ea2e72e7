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
	"encoding/binary"
	"io"
	"testing"

	"boltproto.dev/packstream/internal/assert"
)

func TestChunkRoundTrip(t *testing.T) {
	t.Parallel()
	payloads := [][]byte{
		{},
		{0xC0},
		bytes.Repeat([]byte{0xAB}, 100),
		bytes.Repeat([]byte{0xCD}, MaxChunkSize),
		bytes.Repeat([]byte{0xEF}, MaxChunkSize+1),
		bytes.Repeat([]byte{0x01}, 3*MaxChunkSize+17),
	}
	var stream bytes.Buffer
	writer := NewChunkWriter(&stream)
	for _, payload := range payloads {
		assert.Nil(t, writer.WriteMessage(payload))
	}

	reader := NewChunkReader(&stream)
	for i, want := range payloads {
		got, err := reader.ReadMessage()
		assert.Nil(t, err, assert.Sprintf("message %d", i))
		assert.Equal(t, len(got), len(want), assert.Sprintf("message %d", i))
		assert.True(t, bytes.Equal(got, want), assert.Sprintf("message %d differs", i))
	}
	_, err := reader.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChunkWriterFraming(t *testing.T) {
	t.Parallel()
	var stream bytes.Buffer
	writer := NewChunkWriter(&stream)
	payload := bytes.Repeat([]byte{0x42}, MaxChunkSize+10)
	assert.Nil(t, writer.WriteMessage(payload))

	framed := stream.Bytes()
	// First chunk carries the maximum payload.
	assert.Equal(t, binary.BigEndian.Uint16(framed[:2]), uint16(MaxChunkSize))
	// Second chunk carries the remainder.
	rest := framed[2+MaxChunkSize:]
	assert.Equal(t, binary.BigEndian.Uint16(rest[:2]), uint16(10))
	// Then the terminating header.
	assert.Equal(t, rest[2+10:], []byte{0x00, 0x00})
}

func TestChunkWriterEmptyMessage(t *testing.T) {
	t.Parallel()
	var stream bytes.Buffer
	writer := NewChunkWriter(&stream)
	assert.Nil(t, writer.WriteMessage(nil))
	// No payload chunks, just the terminator.
	assert.Equal(t, stream.Bytes(), []byte{0x00, 0x00})
}

func TestChunkReaderSplitAcrossChunks(t *testing.T) {
	t.Parallel()
	// One message split at an arbitrary position; chunk boundaries carry no
	// meaning beyond framing.
	stream := []byte{
		0x00, 0x02, 0x83, 0x61,
		0x00, 0x02, 0x62, 0x63,
		0x00, 0x00,
	}
	reader := NewChunkReader(bytes.NewReader(stream))
	payload, err := reader.ReadMessage()
	assert.Nil(t, err)
	assert.Equal(t, payload, []byte{0x83, 0x61, 0x62, 0x63})

	value, _, err := UnpackValue(payload, 0)
	assert.Nil(t, err)
	assert.True(t, Equal(value, String("abc")))
}

func TestChunkReaderTruncated(t *testing.T) {
	t.Parallel()
	truncated := [][]byte{
		{0x00},                   // torn size header
		{0x00, 0x05, 0x01},       // payload shorter than declared
		{0x00, 0x01, 0x01},       // missing terminator
		{0x00, 0x01, 0x01, 0x00}, // torn terminator
	}
	for _, stream := range truncated {
		reader := NewChunkReader(bytes.NewReader(stream))
		_, err := reader.ReadMessage()
		assert.NotNil(t, err, assert.Sprintf("stream % X", stream))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, assert.Sprintf("stream % X", stream))
	}
}

func TestChunkReaderNextMessageSkips(t *testing.T) {
	t.Parallel()
	var stream bytes.Buffer
	writer := NewChunkWriter(&stream)
	assert.Nil(t, writer.WriteMessage(bytes.Repeat([]byte{0x01}, 50)))
	assert.Nil(t, writer.WriteMessage([]byte{0x02}))

	reader := NewChunkReader(&stream)
	// Read only part of the first message, then skip the rest.
	var partial [10]byte
	n, err := io.ReadFull(reader, partial[:])
	assert.Nil(t, err)
	assert.Equal(t, n, 10)
	assert.Nil(t, reader.NextMessage())

	payload, err := reader.ReadMessage()
	assert.Nil(t, err)
	assert.Equal(t, payload, []byte{0x02})
}

func TestChunkedMessageCarriesPackedValues(t *testing.T) {
	t.Parallel()
	encoded, err := Pack(map[string]any{"answer": int64(42)}, nil)
	assert.Nil(t, err)

	var stream bytes.Buffer
	writer := NewChunkWriter(&stream)
	assert.Nil(t, writer.WriteMessage(encoded))

	reader := NewChunkReader(&stream)
	payload, err := reader.ReadMessage()
	assert.Nil(t, err)
	decoded, _, err := Unpack(payload, 0, nil)
	assert.Nil(t, err)
	assert.Equal(t, decoded, any(map[string]any{"answer": int64(42)}))
}
