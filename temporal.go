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
	"strings"
	"time"
)

// Structure tags for temporal values.
const (
	TagDate          byte = 'D' // days since the Unix epoch
	TagLocalTime     byte = 't' // nanoseconds since midnight
	TagTime          byte = 'T' // nanoseconds since midnight, UTC offset in seconds
	TagLocalDateTime byte = 'd' // seconds and nanoseconds since the Unix epoch
	TagDateTime      byte = 'F' // seconds, nanoseconds, UTC offset in seconds
	TagDateTimeZone  byte = 'f' // seconds, nanoseconds, zone name
	TagDuration      byte = 'E' // months, days, seconds, nanoseconds
)

const (
	secondsPerDay = 86400
	nanosPerSec   = int64(time.Second)
)

// A Date is a calendar date with no time or zone component, stored as days
// since 1970-01-01.
type Date struct {
	Days int64
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Days: midnight.Unix() / secondsPerDay}
}

// Time returns midnight UTC on the date.
func (d Date) Time() time.Time {
	return time.Unix(d.Days*secondsPerDay, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// A LocalTime is a wall-clock time with no date or zone component, stored as
// nanoseconds since midnight.
type LocalTime struct {
	Nanoseconds int64
}

func (t LocalTime) String() string {
	return time.Unix(0, t.Nanoseconds).UTC().Format("15:04:05.000000000")
}

// A Time is a wall-clock time with a UTC offset but no date component.
type Time struct {
	Nanoseconds int64 // since midnight
	Offset      int64 // seconds east of UTC
}

// A LocalDateTime is a date and wall-clock time with no zone component. The
// seconds count the Unix epoch as if the wall clock read UTC.
type LocalDateTime struct {
	Seconds     int64
	Nanoseconds int64
}

// Time returns the wall-clock reading with a UTC location attached.
func (dt LocalDateTime) Time() time.Time {
	return time.Unix(dt.Seconds, dt.Nanoseconds).UTC()
}

// A Duration is a temporal amount in the wire format's four components.
// Months and days have no fixed length in seconds, so the type cannot be
// collapsed into time.Duration without losing meaning.
type Duration struct {
	Months      int64
	Days        int64
	Seconds     int64
	Nanoseconds int64
}

// DurationOf splits d into whole seconds and nanoseconds.
func DurationOf(d time.Duration) Duration {
	nanos := d.Nanoseconds()
	return Duration{Seconds: nanos / nanosPerSec, Nanoseconds: nanos % nanosPerSec}
}

func temporalHydrationHooks() HydrationHooks {
	return HydrationHooks{
		TagDate:          hydrateDate,
		TagLocalTime:     hydrateLocalTime,
		TagTime:          hydrateTime,
		TagLocalDateTime: hydrateLocalDateTime,
		TagDateTime:      hydrateDateTime,
		TagDateTimeZone:  hydrateDateTimeZone,
		TagDuration:      hydrateDuration,
	}
}

func registerTemporalDehydration(hooks *DehydrationHooks) {
	RegisterType[Date](hooks, func(value any) (any, error) {
		d := value.(Date)
		return &Structure{Tag: TagDate, Fields: []Value{Int(d.Days)}}, nil
	})
	RegisterType[LocalTime](hooks, func(value any) (any, error) {
		t := value.(LocalTime)
		return &Structure{Tag: TagLocalTime, Fields: []Value{Int(t.Nanoseconds)}}, nil
	})
	RegisterType[Time](hooks, func(value any) (any, error) {
		t := value.(Time)
		return &Structure{Tag: TagTime, Fields: []Value{Int(t.Nanoseconds), Int(t.Offset)}}, nil
	})
	RegisterType[LocalDateTime](hooks, func(value any) (any, error) {
		dt := value.(LocalDateTime)
		return &Structure{Tag: TagLocalDateTime, Fields: []Value{Int(dt.Seconds), Int(dt.Nanoseconds)}}, nil
	})
	RegisterType[Duration](hooks, func(value any) (any, error) {
		d := value.(Duration)
		return &Structure{Tag: TagDuration, Fields: []Value{
			Int(d.Months), Int(d.Days), Int(d.Seconds), Int(d.Nanoseconds),
		}}, nil
	})
	RegisterType[time.Duration](hooks, func(value any) (any, error) {
		d := DurationOf(value.(time.Duration))
		return &Structure{Tag: TagDuration, Fields: []Value{
			Int(d.Months), Int(d.Days), Int(d.Seconds), Int(d.Nanoseconds),
		}}, nil
	})
	RegisterType[time.Time](hooks, dehydrateTime)
}

// dehydrateTime encodes a time.Time as a zoned datetime when its location
// carries an IANA zone name, and as an offset datetime otherwise. Seconds
// count the UTC epoch; the zone or offset locates the wall clock.
func dehydrateTime(value any) (any, error) {
	t := value.(time.Time)
	seconds := t.Unix()
	nanos := int64(t.Nanosecond())
	if name := t.Location().String(); strings.Contains(name, "/") {
		return &Structure{Tag: TagDateTimeZone, Fields: []Value{
			Int(seconds), Int(nanos), String(name),
		}}, nil
	}
	_, offset := t.Zone()
	return &Structure{Tag: TagDateTime, Fields: []Value{
		Int(seconds), Int(nanos), Int(int64(offset)),
	}}, nil
}

func hydrateDate(fields []any) (any, error) {
	if err := wantFields(TagDate, fields, 1); err != nil {
		return nil, err
	}
	days, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	return Date{Days: days}, nil
}

func hydrateLocalTime(fields []any) (any, error) {
	if err := wantFields(TagLocalTime, fields, 1); err != nil {
		return nil, err
	}
	nanos, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	return LocalTime{Nanoseconds: nanos}, nil
}

func hydrateTime(fields []any) (any, error) {
	if err := wantFields(TagTime, fields, 2); err != nil {
		return nil, err
	}
	nanos, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	offset, err := fieldInt(fields, 1)
	if err != nil {
		return nil, err
	}
	return Time{Nanoseconds: nanos, Offset: offset}, nil
}

func hydrateLocalDateTime(fields []any) (any, error) {
	if err := wantFields(TagLocalDateTime, fields, 2); err != nil {
		return nil, err
	}
	seconds, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	nanos, err := fieldInt(fields, 1)
	if err != nil {
		return nil, err
	}
	return LocalDateTime{Seconds: seconds, Nanoseconds: nanos}, nil
}

func hydrateDateTime(fields []any) (any, error) {
	if err := wantFields(TagDateTime, fields, 3); err != nil {
		return nil, err
	}
	seconds, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	nanos, err := fieldInt(fields, 1)
	if err != nil {
		return nil, err
	}
	offset, err := fieldInt(fields, 2)
	if err != nil {
		return nil, err
	}
	return time.Unix(seconds, nanos).In(time.FixedZone("", int(offset))), nil
}

func hydrateDateTimeZone(fields []any) (any, error) {
	if err := wantFields(TagDateTimeZone, fields, 3); err != nil {
		return nil, err
	}
	seconds, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	nanos, err := fieldInt(fields, 1)
	if err != nil {
		return nil, err
	}
	name, err := fieldString(fields, 2)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return time.Unix(seconds, nanos).In(loc), nil
}

func hydrateDuration(fields []any) (any, error) {
	if err := wantFields(TagDuration, fields, 4); err != nil {
		return nil, err
	}
	var parts [4]int64
	for i := range parts {
		v, err := fieldInt(fields, i)
		if err != nil {
			return nil, err
		}
		parts[i] = v
	}
	return Duration{Months: parts[0], Days: parts[1], Seconds: parts[2], Nanoseconds: parts[3]}, nil
}
