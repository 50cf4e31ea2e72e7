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

import "reflect"

// A DehydrationFunc transforms an application value the codec doesn't
// understand into something it does, usually a [*Structure]. The replacement
// is encoded in the original's place; it is not run through the hook tables
// again, though fresh values nested inside it (slice elements, map values)
// dispatch normally.
type DehydrationFunc func(value any) (any, error)

// A HydrationFunc transforms a decoded structure back into an application
// value. It receives the structure's fields, already hydrated bottom-up, so
// a hook for an outer tag sees application values where inner tagged
// structures appeared on the wire.
type HydrationFunc func(fields []any) (any, error)

// HydrationHooks maps a structure's tag byte to the transform that turns it
// into an application value. Tags without an entry decode as raw
// [*Structure] values. The table is read-only for the duration of an
// [Unpack] call; the codec never mutates or retains it.
type HydrationHooks map[byte]HydrationFunc

// Extend returns a new table containing the entries of h overlaid with
// those of others, later tables winning on conflict. The receivers are
// unchanged.
func (h HydrationHooks) Extend(others ...HydrationHooks) HydrationHooks {
	merged := make(HydrationHooks, len(h))
	for tag, fn := range h {
		merged[tag] = fn
	}
	for _, other := range others {
		for tag, fn := range other {
			merged[tag] = fn
		}
	}
	return merged
}

// DehydrationHooks maps application types to the transforms that convert
// them into codec-native shapes before encoding. Exact-type entries are
// consulted first; interface entries are checked in registration order
// against the value's dynamic type. The table is read-only for the duration
// of a [Pack] call.
type DehydrationHooks struct {
	exact      map[reflect.Type]DehydrationFunc
	interfaces []interfaceHook
}

type interfaceHook struct {
	iface     reflect.Type
	transform DehydrationFunc
}

// NewDehydrationHooks returns an empty table.
func NewDehydrationHooks() *DehydrationHooks {
	return &DehydrationHooks{exact: make(map[reflect.Type]DehydrationFunc)}
}

// RegisterType maps the exact type T to a transform, replacing any previous
// entry for that type.
func RegisterType[T any](h *DehydrationHooks, transform DehydrationFunc) {
	h.exact[reflect.TypeOf((*T)(nil)).Elem()] = transform
}

// RegisterInterface maps an interface type to a transform applied to any
// value implementing it that no exact entry claims. The type parameter must
// be an interface type.
func RegisterInterface[T any](h *DehydrationHooks, transform DehydrationFunc) {
	iface := reflect.TypeOf((*T)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		panic("packstream: RegisterInterface requires an interface type parameter")
	}
	h.interfaces = append(h.interfaces, interfaceHook{iface: iface, transform: transform})
}

// Extend returns a new table with the entries of h plus those of others,
// later tables winning on exact-type conflict. Interface entries
// concatenate in order. The receivers are unchanged.
func (h *DehydrationHooks) Extend(others ...*DehydrationHooks) *DehydrationHooks {
	merged := NewDehydrationHooks()
	for rt, fn := range h.exact {
		merged.exact[rt] = fn
	}
	merged.interfaces = append(merged.interfaces, h.interfaces...)
	for _, other := range others {
		if other == nil {
			continue
		}
		for rt, fn := range other.exact {
			merged.exact[rt] = fn
		}
		merged.interfaces = append(merged.interfaces, other.interfaces...)
	}
	return merged
}

// transformer returns the transform for value's dynamic type, or nil.
func (h *DehydrationHooks) transformer(value any) DehydrationFunc {
	rt := reflect.TypeOf(value)
	if rt == nil {
		return nil
	}
	if fn, ok := h.exact[rt]; ok {
		return fn
	}
	for _, entry := range h.interfaces {
		if rt.Implements(entry.iface) {
			return entry.transform
		}
	}
	return nil
}

// StandardDehydrationHooks returns a table covering the types this package
// defines for the standard structure tags: the temporal types (including
// time.Time and time.Duration) and the spatial points.
func StandardDehydrationHooks() *DehydrationHooks {
	hooks := NewDehydrationHooks()
	registerTemporalDehydration(hooks)
	registerSpatialDehydration(hooks)
	return hooks
}

// StandardHydrationHooks returns a table covering the standard structure
// tags: graph entities ('N', 'R', 'r', 'P'), temporal values ('D', 't',
// 'T', 'd', 'F', 'f', 'E'), and spatial points ('X', 'Y').
func StandardHydrationHooks() HydrationHooks {
	return HydrationHooks{}.Extend(
		graphHydrationHooks(),
		temporalHydrationHooks(),
		spatialHydrationHooks(),
	)
}
