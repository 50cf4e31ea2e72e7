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

// Unpack decodes one complete value from buf starting at offset and returns
// it as an ordinary Go value together with the offset of the first byte past
// it. Scalars become nil, bool, int64, float64, string, and []byte; lists
// become []any; maps become map[string]any.
//
// Each decoded structure whose tag has an entry in hooks is replaced by the
// hook's result, exactly once, from the inside out; the hook's own return
// value is not hydrated again. A structure with no registered tag stays a
// raw [*Structure], its fields left as [Value] trees. A nil hooks table is
// valid and leaves every structure raw.
//
// On failure the buffer is unmodified (it is only ever read) and no partial
// value is returned.
func Unpack(buf []byte, offset int, hooks HydrationHooks) (any, int, error) {
	value, end, err := UnpackValue(buf, offset)
	if err != nil {
		return nil, offset, err
	}
	hydrated, err := hydrate(value, hooks)
	if err != nil {
		return nil, offset, err
	}
	return hydrated, end, nil
}

// hydrate converts a decoded Value tree into application-level Go values,
// applying per-tag hooks bottom-up.
func hydrate(value Value, hooks HydrationHooks) (any, error) {
	switch v := value.(type) {
	case Null:
		return nil, nil
	case Bool:
		return bool(v), nil
	case Int:
		return int64(v), nil
	case Float:
		return float64(v), nil
	case String:
		return string(v), nil
	case Bytes:
		return []byte(v), nil
	case List:
		elems := make([]any, len(v))
		for i, elem := range v {
			hydrated, err := hydrate(elem, hooks)
			if err != nil {
				return nil, err
			}
			elems[i] = hydrated
		}
		return elems, nil
	case Map:
		entries := make(map[string]any, len(v))
		for _, entry := range v {
			hydrated, err := hydrate(entry.Value, hooks)
			if err != nil {
				return nil, err
			}
			entries[entry.Key] = hydrated
		}
		return entries, nil
	case *Structure:
		hook, ok := hooks[v.Tag]
		if !ok {
			return v, nil
		}
		fields := make([]any, len(v.Fields))
		for i, field := range v.Fields {
			hydrated, err := hydrate(field, hooks)
			if err != nil {
				return nil, err
			}
			fields[i] = hydrated
		}
		result, err := hook(fields)
		if err != nil {
			return nil, hookError(err)
		}
		return result, nil
	default:
		return nil, errorf(CodeInternal, "unhandled value kind %v", value.Kind())
	}
}

// Helpers for hydration hooks reading their typed fields out of the
// already-hydrated []any. Errors from these surface as hook failures.

func wantFields(tag byte, fields []any, counts ...int) error {
	for _, n := range counts {
		if len(fields) == n {
			return nil
		}
	}
	return errorf(CodeHookFailure, "structure 0x%02X ('%c') has %d fields, want %v", tag, tag, len(fields), counts)
}

func fieldInt(fields []any, i int) (int64, error) {
	v, ok := fields[i].(int64)
	if !ok {
		return 0, errorf(CodeHookFailure, "field %d: expected integer, got %T", i, fields[i])
	}
	return v, nil
}

func fieldFloat(fields []any, i int) (float64, error) {
	switch v := fields[i].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, errorf(CodeHookFailure, "field %d: expected float, got %T", i, fields[i])
}

func fieldString(fields []any, i int) (string, error) {
	v, ok := fields[i].(string)
	if !ok {
		return "", errorf(CodeHookFailure, "field %d: expected string, got %T", i, fields[i])
	}
	return v, nil
}

func fieldList(fields []any, i int) ([]any, error) {
	if fields[i] == nil {
		return nil, nil
	}
	v, ok := fields[i].([]any)
	if !ok {
		return nil, errorf(CodeHookFailure, "field %d: expected list, got %T", i, fields[i])
	}
	return v, nil
}

func fieldMap(fields []any, i int) (map[string]any, error) {
	if fields[i] == nil {
		return nil, nil
	}
	v, ok := fields[i].(map[string]any)
	if !ok {
		return nil, errorf(CodeHookFailure, "field %d: expected map, got %T", i, fields[i])
	}
	return v, nil
}
