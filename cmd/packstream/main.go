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

// Command packstream decodes PackStream data and prints each value in a
// readable notation, one value per line. It reads raw bytes from a file or
// stdin; with --hex the input is hex digits (whitespace ignored), and with
// --chunked the input carries the Bolt transport's chunked message framing.
//
//	packstream --hex < dump.hex
//	packstream --chunked --hydrate session.bin
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"boltproto.dev/packstream"
)

func main() {
	hexInput := pflag.Bool("hex", false, "input is hex digits instead of raw bytes")
	chunked := pflag.Bool("chunked", false, "input uses the chunked message framing")
	hydrate := pflag.Bool("hydrate", false, "hydrate standard structure tags (graph, temporal, spatial)")
	pflag.Parse()

	if err := run(pflag.Args(), *hexInput, *chunked, *hydrate); err != nil {
		fmt.Fprintf(os.Stderr, "packstream: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, hexInput, chunked, hydrate bool) error {
	input := os.Stdin
	switch len(args) {
	case 0:
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	default:
		return fmt.Errorf("at most one input file, got %d arguments", len(args))
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if hexInput {
		compact := strings.Join(strings.Fields(string(data)), "")
		if data, err = hex.DecodeString(compact); err != nil {
			return fmt.Errorf("decode hex input: %w", err)
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("empty input")
	}

	var hooks packstream.HydrationHooks
	if hydrate {
		hooks = packstream.StandardHydrationHooks()
	}

	if chunked {
		return dumpChunked(data, hooks)
	}
	return dumpSequence(data, hooks)
}

// dumpSequence decodes back-to-back values sharing one buffer.
func dumpSequence(data []byte, hooks packstream.HydrationHooks) error {
	offset := 0
	for offset < len(data) {
		value, next, err := packstream.Unpack(data, offset, hooks)
		if err != nil {
			return fmt.Errorf("at byte %d: %w", offset, err)
		}
		fmt.Println(format(value))
		offset = next
	}
	return nil
}

// dumpChunked reassembles each chunked message, then decodes the values it
// contains.
func dumpChunked(data []byte, hooks packstream.HydrationHooks) error {
	reader := packstream.NewChunkReader(bytes.NewReader(data))
	for msgIndex := 0; ; msgIndex++ {
		payload, err := reader.ReadMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", msgIndex, err)
		}
		if err := dumpSequence(payload, hooks); err != nil {
			return fmt.Errorf("message %d: %w", msgIndex, err)
		}
	}
}

// format renders a decoded value in a compact single-line notation: strings
// quoted, bytes as h'..' hex, structures with their tag and fields.
func format(value any) string {
	switch v := value.(type) {
	case nil, packstream.Null:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case packstream.Bool:
		return strconv.FormatBool(bool(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case packstream.Int:
		return strconv.FormatInt(int64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case packstream.Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case packstream.String:
		return strconv.Quote(string(v))
	case []byte:
		return "h'" + hex.EncodeToString(v) + "'"
	case packstream.Bytes:
		return "h'" + hex.EncodeToString(v) + "'"
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case packstream.List:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = strconv.Quote(key) + ": " + format(v[key])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case packstream.Map:
		parts := make([]string, len(v))
		for i, entry := range v {
			parts[i] = strconv.Quote(entry.Key) + ": " + format(entry.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *packstream.Structure:
		parts := make([]string, len(v.Fields))
		for i, field := range v.Fields {
			parts[i] = format(field)
		}
		return "Structure[" + formatTag(v.Tag) + "](" + strings.Join(parts, ", ") + ")"
	default:
		// Hydrated application types (Node, Path, time.Time, ...).
		return fmt.Sprintf("%+v", v)
	}
}

func formatTag(tag byte) string {
	if tag >= 0x20 && tag < 0x7F {
		return "'" + string(tag) + "'"
	}
	return fmt.Sprintf("0x%02X", tag)
}
