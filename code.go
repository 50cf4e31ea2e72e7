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

import "fmt"

// A Code classifies a codec error. There are no user-defined codes, so only
// the codes enumerated below are valid.
type Code uint32

const (
	// CodeTruncated indicates that fewer bytes remained in the decode
	// buffer than a marker's payload requires.
	CodeTruncated Code = 1

	// CodeMalformedMarker indicates a byte that matches no known marker and
	// is not a tiny integer.
	CodeMalformedMarker Code = 2

	// CodeInvalidUTF8 indicates a string payload that is not valid UTF-8.
	CodeInvalidUTF8 Code = 3

	// CodeInvalidMapKey indicates a map entry whose key is not a string.
	CodeInvalidMapKey Code = 4

	// CodeOverflow indicates a length, field count, or nesting depth beyond
	// what the format or this implementation can represent.
	CodeOverflow Code = 5

	// CodeUnsupported indicates an encode-side value that matches no native
	// shape and no dehydration transform.
	CodeUnsupported Code = 6

	// CodeHookFailure indicates that a dehydration or hydration transform
	// itself reported an error. The transform's error is wrapped unchanged.
	CodeHookFailure Code = 7

	// CodeInternal indicates a misuse of the package itself, such as
	// registering classifiers twice.
	CodeInternal Code = 8
)

// String returns the code's name in snake_case.
func (c Code) String() string {
	switch c {
	case CodeTruncated:
		return "truncated"
	case CodeMalformedMarker:
		return "malformed_marker"
	case CodeInvalidUTF8:
		return "invalid_utf8"
	case CodeInvalidMapKey:
		return "invalid_map_key"
	case CodeOverflow:
		return "overflow"
	case CodeUnsupported:
		return "unsupported"
	case CodeHookFailure:
		return "hook_failure"
	case CodeInternal:
		return "internal"
	}
	return fmt.Sprintf("code_%d", uint32(c))
}
