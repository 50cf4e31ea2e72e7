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
	"reflect"
	"sort"
	"sync/atomic"
)

// A MapItem is one entry of a foreign mapping as reported by a classifier.
// The key is typed any so that the encoder, not the classifier, rejects
// non-string keys with a diagnostic naming the key's type.
type MapItem struct {
	Key   any
	Value any
}

// Classifiers decides which foreign Go values count as which PackStream
// shape during [Pack]. Each classifier either claims the value, returning
// its canonical form, or declines it so dispatch moves on. Any nil field
// falls back to the default classifier for that shape.
//
// The defaults claim exact built-in types only (int but not a named integer
// type, for example), so that named application types stay visible to
// dehydration hooks.
type Classifiers struct {
	IsNull     func(any) bool
	AsBool     func(any) (bool, bool)
	AsInt      func(any) (int64, bool)
	AsFloat    func(any) (float64, bool)
	AsString   func(any) (string, bool)
	AsBytes    func(any) ([]byte, bool)
	AsSequence func(any) ([]any, bool)
	AsMapping  func(any) ([]MapItem, bool)
}

var (
	classifierTable    atomic.Pointer[Classifiers]
	classifiersClaimed atomic.Bool
)

var errDoubleRegistration = errorf(CodeInternal, "classifiers already registered")

// RegisterClassifiers installs a process-wide classifier table consulted by
// every subsequent [Pack] call. Nil fields keep their default behavior.
//
// Registration may happen at most once per process, before encoding begins:
// exactly one call succeeds, and any later call, including one racing the
// first, fails with an error rather than silently replacing the table. After
// a successful registration all reads are synchronization-free.
func RegisterClassifiers(c Classifiers) error {
	if !classifiersClaimed.CompareAndSwap(false, true) {
		return errDoubleRegistration
	}
	filled := fillClassifierDefaults(c)
	classifierTable.Store(&filled)
	return nil
}

// currentClassifiers returns the registered table, or the defaults when
// nothing was registered.
func currentClassifiers() *Classifiers {
	if table := classifierTable.Load(); table != nil {
		return table
	}
	return &defaultClassifiers
}

var defaultClassifiers = fillClassifierDefaults(Classifiers{})

func fillClassifierDefaults(c Classifiers) Classifiers {
	if c.IsNull == nil {
		c.IsNull = defaultIsNull
	}
	if c.AsBool == nil {
		c.AsBool = defaultAsBool
	}
	if c.AsInt == nil {
		c.AsInt = defaultAsInt
	}
	if c.AsFloat == nil {
		c.AsFloat = defaultAsFloat
	}
	if c.AsString == nil {
		c.AsString = defaultAsString
	}
	if c.AsBytes == nil {
		c.AsBytes = defaultAsBytes
	}
	if c.AsSequence == nil {
		c.AsSequence = defaultAsSequence
	}
	if c.AsMapping == nil {
		c.AsMapping = defaultAsMapping
	}
	return c
}

// defaultIsNull treats untyped nil and nil pointers as the null value.
// Typed nil slices and maps are claimed by their shape classifiers instead,
// encoding as empty containers.
func defaultIsNull(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func defaultAsBool(value any) (bool, bool) {
	b, ok := value.(bool)
	return b, ok
}

func defaultAsInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func defaultAsFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

func defaultAsString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func defaultAsBytes(value any) ([]byte, bool) {
	b, ok := value.([]byte)
	return b, ok
}

// defaultAsSequence claims slices and arrays of any element type except
// byte, which belongs to the bytes classifier.
func defaultAsSequence(value any) ([]any, bool) {
	if elems, ok := value.([]any); ok {
		return elems, true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return elems, true
	}
	return nil, false
}

// defaultAsMapping claims Go maps. Entries come back sorted by key when all
// keys are strings, making native map encoding deterministic; maps with
// other key types are claimed too, leaving the encoder to reject the first
// offending key.
func defaultAsMapping(value any) ([]MapItem, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	items := make([]MapItem, 0, rv.Len())
	stringKeys := true
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().Interface()
		if _, ok := key.(string); !ok {
			stringKeys = false
		}
		items = append(items, MapItem{Key: key, Value: iter.Value().Interface()})
	}
	if stringKeys {
		sort.Slice(items, func(i, j int) bool {
			return items[i].Key.(string) < items[j].Key.(string)
		})
	}
	return items, true
}
