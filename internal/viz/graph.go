// Package viz assembles bounded, deduplicated visualization graphs from
// raw neighborhood query results.
package viz

import (
	"github.com/thesmileydroid/wikigraph/internal/storage"
)

// Node group tags understood by the frontend renderer
const (
	GroupCenter   = 1
	GroupOutgoing = 2
	GroupIncoming = 3
)

// Limit clamp range for requested graph sizes
const (
	MinLimit = 10
	MaxLimit = 200
)

// Node is one vertex of a visualization graph
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group int    `json:"group"`
}

// Edge is one directed edge of a visualization graph, referencing node ids
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a request-scoped node/edge payload for the frontend
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ClampLimit forces a requested node limit into [MinLimit, MaxLimit]
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Budgets splits a node limit into outgoing and incoming neighbor budgets.
// One slot is reserved for the center node, so for any limit
// 1 + outgoing + incoming == limit, with the odd remainder going to
// incoming. limit must already be clamped.
func Budgets(limit int) (outgoing, incoming int) {
	outgoing = limit / 2
	if outgoing > limit-1 {
		outgoing = limit - 1
	}
	incoming = limit - outgoing - 1
	return outgoing, incoming
}

// Assemble builds a visualization graph from a neighborhood result.
// The center is added first with group 1; outgoing then incoming neighbors
// follow with groups 2 and 3. A node id is admitted once, first group
// assignment wins, nil candidate slots are skipped. The node list is
// defensively truncated to the limit before edges are filtered, so no
// edge ever references a dropped node.
func Assemble(neighborhood *storage.Neighborhood, requestedLimit int) Graph {
	limit := ClampLimit(requestedLimit)

	graph := Graph{
		Nodes: make([]Node, 0, limit),
		Edges: make([]Edge, 0, limit),
	}
	seen := make(map[string]bool, limit)

	center := neighborhood.Center
	graph.Nodes = append(graph.Nodes, Node{ID: center.ID, Label: center.Title, Group: GroupCenter})
	seen[center.ID] = true

	for _, candidate := range neighborhood.Outgoing {
		if candidate == nil {
			continue
		}
		if !seen[candidate.ID] {
			graph.Nodes = append(graph.Nodes, Node{ID: candidate.ID, Label: candidate.Title, Group: GroupOutgoing})
			seen[candidate.ID] = true
		}
		graph.Edges = append(graph.Edges, Edge{From: center.ID, To: candidate.ID})
	}

	for _, candidate := range neighborhood.Incoming {
		if candidate == nil {
			continue
		}
		if !seen[candidate.ID] {
			graph.Nodes = append(graph.Nodes, Node{ID: candidate.ID, Label: candidate.Title, Group: GroupIncoming})
			seen[candidate.ID] = true
		}
		graph.Edges = append(graph.Edges, Edge{From: candidate.ID, To: center.ID})
	}

	// The store applies the budgets at the query layer, but re-truncate
	// in case a result overshoots: nodes first, then every edge with a
	// dropped endpoint.
	if len(graph.Nodes) > limit {
		graph.Nodes = graph.Nodes[:limit]

		kept := make(map[string]bool, limit)
		for _, node := range graph.Nodes {
			kept[node.ID] = true
		}

		edges := graph.Edges[:0]
		for _, edge := range graph.Edges {
			if kept[edge.From] && kept[edge.To] {
				edges = append(edges, edge)
			}
		}
		graph.Edges = edges
	}

	return graph
}

// AssemblePath renders an ordered page path as a visualization graph:
// endpoints get the center group, intermediate hops the outgoing group,
// with one edge per hop.
func AssemblePath(steps []storage.PageRef) Graph {
	graph := Graph{
		Nodes: make([]Node, 0, len(steps)),
		Edges: make([]Edge, 0, len(steps)),
	}
	seen := make(map[string]bool, len(steps))

	for i, step := range steps {
		group := GroupOutgoing
		if i == 0 || i == len(steps)-1 {
			group = GroupCenter
		}
		if !seen[step.ID] {
			graph.Nodes = append(graph.Nodes, Node{ID: step.ID, Label: step.Title, Group: group})
			seen[step.ID] = true
		}
		if i > 0 {
			graph.Edges = append(graph.Edges, Edge{From: steps[i-1].ID, To: step.ID})
		}
	}

	return graph
}
