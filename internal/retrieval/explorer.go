package retrieval

import (
	"sort"
	"strings"
	"sync"
	"time"

	"fidakune/internal/graph"
	"fidakune/internal/query"

	"go.uber.org/zap"
)

// Config controls traversal depth and query validation.
type Config struct {
	DefaultDepth   int
	MaxDepth       int
	MaxQueryLength int
}

func DefaultConfig() Config {
	return Config{
		DefaultDepth:   2,
		MaxDepth:       5,
		MaxQueryLength: query.DefaultMaxLength,
	}
}

// Result is one node reached by a traversal.
type Result struct {
	Node         graph.Node         `json:"node"`
	Relationship graph.Relationship `json:"relationship"`
	Strength     float64            `json:"strength"`
	Depth        int                `json:"depth"`
	Path         []string           `json:"path"`
}

// Traversal is the categorized outcome of one exploration. A node appears in exactly one
// bucket, chosen by the relationship of the edge that first reached it.
type Traversal struct {
	Query           string       `json:"query"`
	SeedIDs         []string     `json:"seed_ids"`
	MaxDepth        int          `json:"max_depth"`
	DirectlyRelated []Result     `json:"directly_related"`
	ComponentRoots  []Result     `json:"component_roots"`
	RelatedIdeas    []Result     `json:"related_ideas"`
	Edges           []graph.Edge `json:"edges"`
	Error           string       `json:"error,omitempty"`
}

// Total counts reached nodes across buckets.
func (t *Traversal) Total() int {
	return len(t.DirectlyRelated) + len(t.ComponentRoots) + len(t.RelatedIdeas)
}

type Option func(*Explorer)

func WithLogger(l *zap.Logger) Option {
	return func(x *Explorer) {
		if l != nil {
			x.logger = l
		}
	}
}

// Explorer serves traversals over one loaded graph. Reload swaps the graph atomically;
// traversals already returned keep referring to copied data.
type Explorer struct {
	mu     sync.RWMutex
	g      *graph.Graph
	cfg    Config
	logger *zap.Logger
}

func NewExplorer(g *graph.Graph, cfg Config, opts ...Option) *Explorer {
	def := DefaultConfig()
	if cfg.DefaultDepth <= 0 {
		cfg.DefaultDepth = def.DefaultDepth
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.DefaultDepth > cfg.MaxDepth {
		cfg.DefaultDepth = cfg.MaxDepth
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = def.MaxQueryLength
	}
	x := &Explorer{g: g, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Explorer) Reload(g *graph.Graph) {
	x.mu.Lock()
	x.g = g
	x.mu.Unlock()
	x.logger.Info("graph reloaded", zap.Int("nodes", g.NodeCount()), zap.Int("edges", g.EdgeCount()))
}

func (x *Explorer) Graph() *graph.Graph {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.g
}

// ClampDepth applies the default to non-positive depths and caps the rest at MaxDepth.
func (x *Explorer) ClampDepth(depth int) int {
	if depth <= 0 {
		return x.cfg.DefaultDepth
	}
	return min(depth, x.cfg.MaxDepth)
}

// Search resolves label to seed nodes and explores outward up to maxDepth hops. An empty or
// unresolved label yields an empty traversal; a malformed one is flagged invalid_query.
func (x *Explorer) Search(label string, maxDepth int) *Traversal {
	g := x.Graph()
	depth := x.ClampDepth(maxDepth)
	t := &Traversal{
		Query:           label,
		SeedIDs:         []string{},
		MaxDepth:        depth,
		DirectlyRelated: []Result{},
		ComponentRoots:  []Result{},
		RelatedIdeas:    []Result{},
		Edges:           []graph.Edge{},
	}

	if strings.TrimSpace(label) == "" {
		return t
	}
	if !query.Valid(label, x.cfg.MaxQueryLength) {
		t.Error = query.ErrInvalid
		return t
	}

	start := time.Now()
	seeds := g.Resolve(label)
	explored := Explore(g, seeds, depth)
	explored.Query = label
	x.logger.Debug("explore",
		zap.String("query", label),
		zap.Int("seeds", len(explored.SeedIDs)),
		zap.Int("depth", depth),
		zap.Int("reached", explored.Total()),
		zap.Duration("took", time.Since(start)),
	)
	return explored
}

// Explore runs a breadth-first search from seeds, treating edges as undirected. A node is
// settled by the first path that reaches it; path strength is the weakest edge on the path.
func Explore(g *graph.Graph, seeds []string, maxDepth int) *Traversal {
	if maxDepth < 0 {
		maxDepth = 0
	}
	out := &Traversal{
		SeedIDs:         []string{},
		MaxDepth:        maxDepth,
		DirectlyRelated: []Result{},
		ComponentRoots:  []Result{},
		RelatedIdeas:    []Result{},
		Edges:           []graph.Edge{},
	}
	if g == nil {
		return out
	}

	seedSet := make(map[string]bool, len(seeds))
	for _, id := range seeds {
		if _, ok := g.Node(id); ok {
			seedSet[id] = true
		}
	}
	out.SeedIDs = sortedKeys(seedSet)

	visitedDepth := make(map[string]int, len(out.SeedIDs))
	queue := make([]queueItem, 0, len(out.SeedIDs))
	for _, id := range out.SeedIDs {
		visitedDepth[id] = 0
		queue = append(queue, queueItem{id: id, depth: 0, strength: 1.0, path: []string{id}})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, hop := range g.Neighbors(cur.id) {
			if _, seen := visitedDepth[hop.To]; seen {
				continue
			}
			next := queueItem{
				id:       hop.To,
				depth:    cur.depth + 1,
				strength: min(cur.strength, normalizedStrength(hop.Edge.Strength)),
				path:     appendPath(cur.path, hop.To),
			}
			visitedDepth[hop.To] = next.depth
			queue = append(queue, next)

			node, _ := g.Node(hop.To)
			r := Result{
				Node:         node,
				Relationship: hop.Edge.Relationship,
				Strength:     next.strength,
				Depth:        next.depth,
				Path:         next.path,
			}
			switch hop.Edge.Relationship {
			case graph.RelationIsA:
				out.DirectlyRelated = append(out.DirectlyRelated, r)
			case graph.RelationHasRoot:
				out.ComponentRoots = append(out.ComponentRoots, r)
			default:
				out.RelatedIdeas = append(out.RelatedIdeas, r)
			}
			out.Edges = append(out.Edges, hop.Edge)
		}
	}

	rankResults(out.DirectlyRelated)
	rankResults(out.ComponentRoots)
	rankResults(out.RelatedIdeas)
	sort.SliceStable(out.Edges, func(i, j int) bool {
		a, b := out.Edges[i], out.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Relationship < b.Relationship
	})
	return out
}

type queueItem struct {
	id       string
	depth    int
	strength float64
	path     []string
}

func appendPath(path []string, id string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = id
	return out
}

// rankResults orders by strength, then depth, then label.
func rankResults(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.Node.Label != b.Node.Label {
			return a.Node.Label < b.Node.Label
		}
		return a.Node.ID < b.Node.ID
	})
}

func normalizedStrength(s float64) float64 {
	if s <= 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
