package graph

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// Graph is an immutable, validated relationship graph with adjacency and label indices.
type Graph struct {
	nodes map[string]Node
	ids   []string
	edges []Edge

	// adjacency lists every edge touching a node, incoming or outgoing.
	adjacency map[string][]Hop

	// labelIndex maps lowercased labels to node ids.
	labelIndex map[string][]string
	// idIndex maps lowercased ids to node ids.
	idIndex map[string][]string
}

// Load validates nodes and edges against the structural contract and builds the indices.
// Any violation rejects the whole payload with a *LoadError.
func Load(nodes []Node, edges []Edge, limits Limits) (*Graph, error) {
	limits = withDefaultLimits(limits)
	if len(nodes) > limits.MaxNodes {
		return nil, loadErr(TooManyNodes, "%d nodes exceeds limit of %d", len(nodes), limits.MaxNodes)
	}
	if len(edges) > limits.MaxEdges {
		return nil, loadErr(TooManyEdges, "%d edges exceeds limit of %d", len(edges), limits.MaxEdges)
	}

	g := &Graph{
		nodes:      make(map[string]Node, len(nodes)),
		ids:        make([]string, 0, len(nodes)),
		edges:      make([]Edge, 0, len(edges)),
		adjacency:  make(map[string][]Hop, len(nodes)),
		labelIndex: make(map[string][]string, len(nodes)),
		idIndex:    make(map[string][]string, len(nodes)),
	}

	for i, n := range nodes {
		n.ID = strings.TrimSpace(n.ID)
		if n.ID == "" {
			return nil, loadErr(InvalidNode, "node %d has no id", i)
		}
		if !n.Type.Valid() {
			return nil, loadErr(InvalidNode, "node %q has unknown type %q", n.ID, n.Type)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, loadErr(DuplicateNode, "node %q appears more than once", n.ID)
		}
		if strings.TrimSpace(n.Label) == "" {
			n.Label = n.ID
		}
		g.nodes[n.ID] = n
		g.ids = append(g.ids, n.ID)

		key := strings.ToLower(strings.TrimSpace(n.Label))
		g.labelIndex[key] = append(g.labelIndex[key], n.ID)
		lid := strings.ToLower(n.ID)
		g.idIndex[lid] = append(g.idIndex[lid], n.ID)
	}

	for i, e := range edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, loadErr(MissingNode, "edge %d references unknown source %q", i, e.Source)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, loadErr(MissingNode, "edge %d references unknown target %q", i, e.Target)
		}
		if !e.Relationship.Valid() {
			return nil, loadErr(InvalidEdge, "edge %d has unknown relationship %q", i, e.Relationship)
		}
		if math.IsNaN(e.Strength) || e.Strength <= 0 || e.Strength > 1 {
			return nil, loadErr(InvalidEdge, "edge %d has strength %v outside (0,1]", i, e.Strength)
		}
		g.edges = append(g.edges, e)
		g.adjacency[e.Source] = append(g.adjacency[e.Source], Hop{To: e.Target, Edge: e})
		if e.Target != e.Source {
			g.adjacency[e.Target] = append(g.adjacency[e.Target], Hop{To: e.Source, Edge: e})
		}
	}

	sort.Strings(g.ids)
	for _, ids := range g.labelIndex {
		sort.Strings(ids)
	}
	for _, ids := range g.idIndex {
		sort.Strings(ids)
	}
	for id, hops := range g.adjacency {
		sortHops(hops)
		g.adjacency[id] = hops
	}
	return g, nil
}

func withDefaultLimits(l Limits) Limits {
	def := DefaultLimits()
	if l.MaxNodes <= 0 {
		l.MaxNodes = def.MaxNodes
	}
	if l.MaxEdges <= 0 {
		l.MaxEdges = def.MaxEdges
	}
	return l
}

func sortHops(hops []Hop) {
	sort.SliceStable(hops, func(i, j int) bool {
		a, b := hops[i], hops[j]
		if a.To != b.To {
			return a.To < b.To
		}
		if a.Edge.Strength != b.Edge.Strength {
			return a.Edge.Strength > b.Edge.Strength
		}
		return a.Edge.Relationship < b.Edge.Relationship
	})
}

func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return nil
	}
	out := make([]Node, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edges in load order.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns every hop from id, treating edges as undirected.
func (g *Graph) Neighbors(id string) []Hop {
	if g == nil {
		return nil
	}
	return g.adjacency[id]
}

// Resolve maps a free-text label to node ids: case-insensitive label match first, then an
// id match (exact before case-insensitive), then label containment. Results are sorted by id.
func (g *Graph) Resolve(label string) []string {
	raw := strings.TrimSpace(label)
	key := strings.ToLower(raw)
	if g == nil || key == "" {
		return nil
	}
	if ids, ok := g.labelIndex[key]; ok {
		return append([]string(nil), ids...)
	}
	if _, ok := g.nodes[raw]; ok {
		return []string{raw}
	}
	if ids, ok := g.idIndex[key]; ok {
		return append([]string(nil), ids...)
	}

	var out []string
	for l, ids := range g.labelIndex {
		if strings.Contains(l, key) {
			out = append(out, ids...)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultChainDepth bounds RootChains when the caller passes no depth.
const DefaultChainDepth = 3

// RootChains follows outgoing has_root edges from id and returns every derivation path that
// ends at a node with no roots of its own, within maxDepth hops. Paths cut off by the depth
// bound are dropped. A node without roots yields the single path [id].
func (g *Graph) RootChains(id string, maxDepth int) [][]string {
	if _, ok := g.Node(id); !ok {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultChainDepth
	}

	var chains [][]string
	var walk func(cur string, path []string)
	walk = func(cur string, path []string) {
		path = append(path, cur)
		roots := g.rootsOf(cur)
		if len(roots) == 0 {
			chains = append(chains, slices.Clone(path))
			return
		}
		if len(path) > maxDepth {
			return
		}
		for _, r := range roots {
			walk(r, path)
		}
	}
	walk(id, nil)
	return chains
}

func (g *Graph) rootsOf(id string) []string {
	var out []string
	for _, h := range g.adjacency[id] {
		e := h.Edge
		if e.Relationship == RelationHasRoot && e.Source == id && e.Target != id {
			out = append(out, e.Target)
		}
	}
	return out
}
