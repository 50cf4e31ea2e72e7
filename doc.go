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

// Package packstream implements the PackStream binary serialization format
// used by the Bolt client/server protocol. PackStream is compact and
// self-describing: every encoded value begins with a marker byte that
// identifies its type and, for small values, carries its length or payload
// inline. All multi-byte fields are big-endian.
//
// The package has two layers. The core codec converts between the closed
// [Value] union and bytes:
//
//	data, err := packstream.PackValue(packstream.List{
//		packstream.Int(1),
//		packstream.String("two"),
//	})
//	value, end, err := packstream.UnpackValue(data, 0)
//
// On top of the core, [Pack] and [Unpack] translate between ordinary Go
// values and the wire format. Application types the codec doesn't understand
// natively are dehydrated into tagged [Structure] records before encoding,
// and decoded Structures are hydrated back into application types, both via
// caller-supplied hook tables:
//
//	hooks := packstream.StandardDehydrationHooks()
//	data, err := packstream.Pack(map[string]any{"when": time.Now()}, hooks)
//
// [UnpackValue] returns the offset just past the decoded value, so a
// sequence of values sharing one buffer can be decoded by feeding each
// returned offset back in. Decoded values never alias the input buffer.
//
// The wire grammar, including the decode-only wide structure framings, is
// specified in the Bolt documentation at https://neo4j.com/docs/bolt/.
package packstream
