package flow

import "sort"

// Node is one playlist in a relationship-building pass. Nodes are built from
// a live snapshot of playlist names and rebuilt on every run; they are never
// persisted.
type Node struct {
	ID         string
	Name       string
	Annotation Annotation
}

// NewNode builds a node with the flow annotation extracted from the name.
func NewNode(id, name string) Node {
	return Node{ID: id, Name: name, Annotation: Extract(name)}
}

// Graph holds the direct flow relationships between playlists as two
// adjacency maps keyed by opaque playlist IDs. An edge (child, parent)
// exists iff the child's child markers intersect the parent's parent
// markers. The graph may legitimately contain cycles; see DetectCycles.
type Graph struct {
	ParentToChildren map[string][]string
	ChildToParents   map[string][]string
}

// BuildGraph computes the relationship graph over every ordered pair of
// nodes. Flow is inferred purely from marker overlap, so this is all-pairs
// by design: a child with several markers can donate to many parents, a
// parent with several markers can receive from many children, and a
// playlist with markers on both sides participates in both roles in the
// same pass. Nodes whose names yielded no annotation contribute no edges.
func BuildGraph(nodes []Node) Graph {
	g := Graph{
		ParentToChildren: make(map[string][]string),
		ChildToParents:   make(map[string][]string),
	}

	for _, child := range nodes {
		if !child.Annotation.IsChild() {
			continue
		}
		for _, parent := range nodes {
			if parent.ID == child.ID || !parent.Annotation.IsParent() {
				continue
			}
			if markersIntersect(child.Annotation.ChildMarkers, parent.Annotation.ParentMarkers) {
				g.ParentToChildren[parent.ID] = append(g.ParentToChildren[parent.ID], child.ID)
				g.ChildToParents[child.ID] = append(g.ChildToParents[child.ID], parent.ID)
			}
		}
	}

	dedupeValues(g.ParentToChildren)
	dedupeValues(g.ChildToParents)
	return g
}

// markersIntersect reports whether the two marker sets share a marker, by
// exact cluster equality.
func markersIntersect(a, b []string) bool {
	for _, m := range a {
		for _, n := range b {
			if m == n {
				return true
			}
		}
	}
	return false
}

// dedupeValues sorts each adjacency list and removes duplicate IDs so the
// maps behave as sets with deterministic iteration for tests and logs.
func dedupeValues(adj map[string][]string) {
	for key, ids := range adj {
		sort.Strings(ids)
		out := ids[:0]
		for i, id := range ids {
			if i == 0 || ids[i-1] != id {
				out = append(out, id)
			}
		}
		adj[key] = out
	}
}
