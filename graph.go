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

import "strconv"

// Structure tags for graph entities. These are server-to-client only: the
// hydration table decodes them, but there is no dehydration counterpart
// because clients never send graph entities back over the wire.
const (
	TagNode                byte = 'N' // id, labels, properties[, element id]
	TagRelationship        byte = 'R' // id, start id, end id, type, properties[, element ids]
	TagUnboundRelationship byte = 'r' // id, type, properties[, element id]
	TagPath                byte = 'P' // nodes, relationships, sequence
)

// A Node is a graph node with its labels and properties.
type Node struct {
	// ID is the server-assigned numeric identity. Older servers send only
	// this; newer ones also send the string ElementID, which is the durable
	// way to refer to the node.
	ID        int64
	ElementID string

	Labels     []string
	Properties map[string]any
}

// A Relationship is a directed, typed connection between two nodes. When
// hydrated from an unbound framing (inside a path), the endpoint fields are
// filled in during path traversal.
type Relationship struct {
	ID        int64
	ElementID string

	StartID        int64
	StartElementID string
	EndID          int64
	EndElementID   string

	Type       string
	Properties map[string]any
}

// A Path is an alternating sequence of nodes and relationships. Nodes holds
// every node the path touches in traversal order, starting with the path's
// origin; Relationships holds one entry per step, each with its endpoints
// resolved against Nodes.
type Path struct {
	Nodes         []*Node
	Relationships []*Relationship
}

func graphHydrationHooks() HydrationHooks {
	return HydrationHooks{
		TagNode:                hydrateNode,
		TagRelationship:        hydrateRelationship,
		TagUnboundRelationship: hydrateUnboundRelationship,
		TagPath:                hydratePath,
	}
}

// legacyElementID derives an element ID for structures from servers that
// predate element IDs and send only the numeric identity.
func legacyElementID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func hydrateNode(fields []any) (any, error) {
	if err := wantFields(TagNode, fields, 3, 4); err != nil {
		return nil, err
	}
	id, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	rawLabels, err := fieldList(fields, 1)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(rawLabels))
	for i, raw := range rawLabels {
		label, ok := raw.(string)
		if !ok {
			return nil, errorf(CodeHookFailure, "node label %d: expected string, got %T", i, raw)
		}
		labels = append(labels, label)
	}
	properties, err := fieldMap(fields, 2)
	if err != nil {
		return nil, err
	}
	node := &Node{
		ID:         id,
		ElementID:  legacyElementID(id),
		Labels:     labels,
		Properties: properties,
	}
	if len(fields) == 4 {
		if node.ElementID, err = fieldString(fields, 3); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func hydrateRelationship(fields []any) (any, error) {
	if err := wantFields(TagRelationship, fields, 5, 8); err != nil {
		return nil, err
	}
	id, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	startID, err := fieldInt(fields, 1)
	if err != nil {
		return nil, err
	}
	endID, err := fieldInt(fields, 2)
	if err != nil {
		return nil, err
	}
	relType, err := fieldString(fields, 3)
	if err != nil {
		return nil, err
	}
	properties, err := fieldMap(fields, 4)
	if err != nil {
		return nil, err
	}
	rel := &Relationship{
		ID:             id,
		ElementID:      legacyElementID(id),
		StartID:        startID,
		StartElementID: legacyElementID(startID),
		EndID:          endID,
		EndElementID:   legacyElementID(endID),
		Type:           relType,
		Properties:     properties,
	}
	if len(fields) == 8 {
		if rel.ElementID, err = fieldString(fields, 5); err != nil {
			return nil, err
		}
		if rel.StartElementID, err = fieldString(fields, 6); err != nil {
			return nil, err
		}
		if rel.EndElementID, err = fieldString(fields, 7); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

func hydrateUnboundRelationship(fields []any) (any, error) {
	if err := wantFields(TagUnboundRelationship, fields, 3, 4); err != nil {
		return nil, err
	}
	id, err := fieldInt(fields, 0)
	if err != nil {
		return nil, err
	}
	relType, err := fieldString(fields, 1)
	if err != nil {
		return nil, err
	}
	properties, err := fieldMap(fields, 2)
	if err != nil {
		return nil, err
	}
	rel := &Relationship{
		ID:         id,
		ElementID:  legacyElementID(id),
		Type:       relType,
		Properties: properties,
	}
	if len(fields) == 4 {
		if rel.ElementID, err = fieldString(fields, 3); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

// hydratePath walks the path's sequence field: pairs of (relationship
// index, node index), where a positive one-based relationship index means
// the relationship points forward along the path and a negative one means
// it points backward. Endpoints of each relationship are resolved as the
// walk proceeds.
func hydratePath(fields []any) (any, error) {
	if err := wantFields(TagPath, fields, 3); err != nil {
		return nil, err
	}
	rawNodes, err := fieldList(fields, 0)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(rawNodes))
	for i, raw := range rawNodes {
		node, ok := raw.(*Node)
		if !ok {
			return nil, errorf(CodeHookFailure, "path node %d: expected node structure, got %T", i, raw)
		}
		nodes = append(nodes, node)
	}
	rawRels, err := fieldList(fields, 1)
	if err != nil {
		return nil, err
	}
	rels := make([]*Relationship, 0, len(rawRels))
	for i, raw := range rawRels {
		rel, ok := raw.(*Relationship)
		if !ok {
			return nil, errorf(CodeHookFailure, "path relationship %d: expected relationship structure, got %T", i, raw)
		}
		rels = append(rels, rel)
	}
	rawSequence, err := fieldList(fields, 2)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errorf(CodeHookFailure, "path has no nodes")
	}
	if len(rawSequence)%2 != 0 {
		return nil, errorf(CodeHookFailure, "path sequence has odd length %d", len(rawSequence))
	}
	sequence := make([]int64, 0, len(rawSequence))
	for i, raw := range rawSequence {
		index, ok := raw.(int64)
		if !ok {
			return nil, errorf(CodeHookFailure, "path sequence %d: expected integer, got %T", i, raw)
		}
		sequence = append(sequence, index)
	}

	path := &Path{Nodes: []*Node{nodes[0]}}
	last := nodes[0]
	for i := 0; i < len(sequence); i += 2 {
		relIndex, nodeIndex := sequence[i], sequence[i+1]
		if relIndex == 0 {
			return nil, errorf(CodeHookFailure, "path sequence %d: relationship index is zero", i)
		}
		if nodeIndex < 0 || nodeIndex >= int64(len(nodes)) {
			return nil, errorf(CodeHookFailure, "path sequence %d: node index %d out of range", i+1, nodeIndex)
		}
		next := nodes[nodeIndex]
		var rel *Relationship
		if relIndex > 0 {
			if relIndex > int64(len(rels)) {
				return nil, errorf(CodeHookFailure, "path sequence %d: relationship index %d out of range", i, relIndex)
			}
			rel = rels[relIndex-1]
			bindRelationship(rel, last, next)
		} else {
			if -relIndex > int64(len(rels)) {
				return nil, errorf(CodeHookFailure, "path sequence %d: relationship index %d out of range", i, relIndex)
			}
			rel = rels[-relIndex-1]
			bindRelationship(rel, next, last)
		}
		path.Nodes = append(path.Nodes, next)
		path.Relationships = append(path.Relationships, rel)
		last = next
	}
	return path, nil
}

func bindRelationship(rel *Relationship, start, end *Node) {
	rel.StartID = start.ID
	rel.StartElementID = start.ElementID
	rel.EndID = end.ID
	rel.EndElementID = end.ElementID
}
