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
	"io"
)

// The Bolt transport carries each packed message as a sequence of chunks: a
// two-byte big-endian payload size followed by up to MaxChunkSize payload
// bytes, terminated by a zero-size header.
const MaxChunkSize = 0xFFFF

// A ChunkWriter frames written bytes into transport chunks. Bytes from Write
// calls may be split across chunks at arbitrary positions; chunk boundaries
// carry no meaning beyond framing. Call EndMessage after writing one
// complete packed message.
//
// A ChunkWriter is not safe for concurrent use.
type ChunkWriter struct {
	w io.Writer
}

// NewChunkWriter returns a ChunkWriter framing onto w.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{w: w}
}

// Write frames p into one or more chunks and writes them through. It always
// returns len(p) on success.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		payload := p
		if len(payload) > MaxChunkSize {
			payload = payload[:MaxChunkSize]
		}
		// Assemble header and payload into one buffer so each chunk reaches
		// the underlying writer in a single Write call.
		buf := getBuffer()
		var header [2]byte
		binary.BigEndian.PutUint16(header[:], uint16(len(payload)))
		buf.Write(header[:])
		buf.Write(payload)
		_, err := cw.w.Write(buf.Bytes())
		putBuffer(buf)
		if err != nil {
			return total - len(p), err
		}
		p = p[len(payload):]
	}
	return total, nil
}

// EndMessage writes the zero-size header that terminates the current
// message.
func (cw *ChunkWriter) EndMessage() error {
	_, err := cw.w.Write([]byte{0x00, 0x00})
	return err
}

// WriteMessage frames one complete message: the payload in chunks, then the
// terminating header.
func (cw *ChunkWriter) WriteMessage(payload []byte) error {
	if _, err := cw.Write(payload); err != nil {
		return err
	}
	return cw.EndMessage()
}

// A ChunkReader reassembles the chunked framing produced by [ChunkWriter].
// Read returns payload bytes until the current message's terminating header,
// then io.EOF; NextMessage moves on to the following message.
//
// A ChunkReader is not safe for concurrent use.
type ChunkReader struct {
	r         io.Reader
	remaining int  // unread payload bytes of the current chunk
	done      bool // terminating header seen for the current message
	started   bool // at least one chunk header of the current message read
}

// NewChunkReader returns a ChunkReader reading from r.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: r}
}

// Read copies payload bytes of the current message into p. At the end of the
// message it returns io.EOF; the underlying stream may hold further
// messages, reachable via NextMessage.
func (cr *ChunkReader) Read(p []byte) (int, error) {
	for cr.remaining == 0 {
		if cr.done {
			return 0, io.EOF
		}
		if err := cr.nextChunk(); err != nil {
			return 0, err
		}
	}
	if len(p) > cr.remaining {
		p = p[:cr.remaining]
	}
	n, err := cr.r.Read(p)
	cr.remaining -= n
	if err == io.EOF && cr.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// ReadMessage reads and returns one complete message payload, leaving the
// reader positioned at the next message. At a clean end of the underlying
// stream it returns io.EOF.
func (cr *ChunkReader) ReadMessage() ([]byte, error) {
	payload, err := io.ReadAll(cr)
	if err != nil {
		return nil, err
	}
	if err := cr.NextMessage(); err != nil {
		return nil, err
	}
	return payload, nil
}

// NextMessage discards the rest of the current message, including its
// terminating header, and prepares the reader for the message after it.
func (cr *ChunkReader) NextMessage() error {
	for !cr.done {
		if cr.remaining > 0 {
			if _, err := io.CopyN(io.Discard, cr.r, int64(cr.remaining)); err != nil {
				return unexpectedEOF(err)
			}
			cr.remaining = 0
		}
		if err := cr.nextChunk(); err != nil {
			return err
		}
	}
	cr.done = false
	cr.started = false
	return nil
}

func (cr *ChunkReader) nextChunk() error {
	var header [2]byte
	// io.ReadFull leaves a clean end-of-stream as io.EOF (zero bytes read)
	// and reports a torn header as io.ErrUnexpectedEOF. A clean end in the
	// middle of a message means its terminator is missing, which is just as
	// truncated; only before the first header of a message does io.EOF mean
	// "no more messages".
	if _, err := io.ReadFull(cr.r, header[:]); err != nil {
		if err == io.EOF && cr.started {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	cr.started = true
	size := int(binary.BigEndian.Uint16(header[:]))
	if size == 0 {
		cr.done = true
		return nil
	}
	cr.remaining = size
	return nil
}

// unexpectedEOF converts a bare io.EOF in the middle of a frame into
// io.ErrUnexpectedEOF so callers can tell a truncated stream from a clean
// end of message.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
