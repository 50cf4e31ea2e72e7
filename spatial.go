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

// Structure tags for spatial values.
const (
	TagPoint2D byte = 'X' // srid, x, y
	TagPoint3D byte = 'Y' // srid, x, y, z
)

// Well-known spatial reference identifiers.
const (
	SRIDWGS84Point2D = 4326
	SRIDWGS84Point3D = 4979
	SRIDCartesian2D  = 7203
	SRIDCartesian3D  = 9157
)

// A Point2D is a point in a two-dimensional coordinate system identified by
// its spatial reference identifier.
type Point2D struct {
	SRID int64
	X    float64
	Y    float64
}

// A Point3D is a point in a three-dimensional coordinate system identified
// by its spatial reference identifier.
type Point3D struct {
	SRID int64
	X    float64
	Y    float64
	Z    float64
}

func spatialHydrationHooks() HydrationHooks {
	return HydrationHooks{
		TagPoint2D: hydratePoint2D,
		TagPoint3D: hydratePoint3D,
	}
}

func registerSpatialDehydration(hooks *DehydrationHooks) {
	RegisterType[Point2D](hooks, func(value any) (any, error) {
		p := value.(Point2D)
		return &Structure{Tag: TagPoint2D, Fields: []Value{
			Int(p.SRID), Float(p.X), Float(p.Y),
		}}, nil
	})
	RegisterType[Point3D](hooks, func(value any) (any, error) {
		p := value.(Point3D)
		return &Structure{Tag: TagPoint3D, Fields: []Value{
			Int(p.SRID), Float(p.X), Float(p.Y), Float(p.Z),
		}}, nil
	})
}

func hydratePoint2D(fields []any) (any, error) {
	if err := wantFields(TagPoint2D, fields, 3); err != nil {
		return nil, err
	}
	srid, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	x, err := fieldFloat(fields, 1)
	if err != nil {
		return nil, err
	}
	y, err := fieldFloat(fields, 2)
	if err != nil {
		return nil, err
	}
	return Point2D{SRID: srid, X: x, Y: y}, nil
}

func hydratePoint3D(fields []any) (any, error) {
	if err := wantFields(TagPoint3D, fields, 4); err != nil {
		return nil, err
	}
	srid, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	x, err := fieldFloat(fields, 1)
	if err != nil {
		return nil, err
	}
	y, err := fieldFloat(fields, 2)
	if err != nil {
		return nil, err
	}
	z, err := fieldFloat(fields, 3)
	if err != nil {
		return nil, err
	}
	return Point3D{SRID: srid, X: x, Y: y, Z: z}, nil
}
