package graph

import (
	"errors"
	"fmt"
	"testing"

	"fidakune/internal/lexicon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNodes() []Node {
	return []Node{
		{ID: "kore-pet", Label: "kore-pet", Type: NodeWord, Definition: "grief", Domain: "Emotion"},
		{ID: "kore", Label: "kore", Type: NodeRoot, Definition: "heart", Domain: "Body"},
		{ID: "pet", Label: "pet", Type: NodeRoot, Definition: "stone", Domain: "Nature"},
		{ID: "en:heart", Label: "Heart", Type: NodeKeyword},
	}
}

func sampleEdges() []Edge {
	return []Edge{
		{Source: "kore-pet", Target: "kore", Relationship: RelationHasRoot, Strength: 1.0},
		{Source: "kore", Target: "pet", Relationship: RelationRelatedTo, Strength: 0.3},
		{Source: "kore", Target: "en:heart", Relationship: RelationIsA, Strength: 0.9},
	}
}

func TestLoad_BuildsIndices(t *testing.T) {
	g, err := Load(sampleNodes(), sampleEdges(), DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())

	hops := g.Neighbors("kore")
	require.Len(t, hops, 3)
	assert.Equal(t, "en:heart", hops[0].To)
	assert.Equal(t, "kore-pet", hops[1].To)
	assert.Equal(t, RelationHasRoot, hops[1].Edge.Relationship)
	assert.Equal(t, "pet", hops[2].To)

	n, ok := g.Node("pet")
	require.True(t, ok)
	assert.Equal(t, "stone", n.Definition)

	ids := make([]string, 0)
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"en:heart", "kore", "kore-pet", "pet"}, ids)
}

func TestResolve(t *testing.T) {
	g, err := Load(sampleNodes(), sampleEdges(), DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, []string{"kore"}, g.Resolve("KORE"))
	assert.Equal(t, []string{"en:heart"}, g.Resolve("heart"))
	assert.Equal(t, []string{"en:heart"}, g.Resolve("en:heart"))
	assert.Equal(t, []string{"kore", "kore-pet"}, g.Resolve("kor"))
	assert.Empty(t, g.Resolve("aqua"))
	assert.Empty(t, g.Resolve(" "))
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		kind  LoadErrorKind
	}{
		{
			name:  "missing target",
			nodes: sampleNodes(),
			edges: []Edge{{Source: "kore", Target: "aqua", Relationship: RelationIsA, Strength: 1}},
			kind:  MissingNode,
		},
		{
			name:  "duplicate node",
			nodes: append(sampleNodes(), Node{ID: "kore", Label: "kore", Type: NodeWord}),
			kind:  DuplicateNode,
		},
		{
			name:  "unknown node type",
			nodes: []Node{{ID: "kore", Label: "kore", Type: "verb"}},
			kind:  InvalidNode,
		},
		{
			name:  "empty id",
			nodes: []Node{{ID: " ", Label: "kore", Type: NodeWord}},
			kind:  InvalidNode,
		},
		{
			name:  "unknown relationship",
			nodes: sampleNodes(),
			edges: []Edge{{Source: "kore", Target: "pet", Relationship: "rhymes_with", Strength: 1}},
			kind:  InvalidEdge,
		},
		{
			name:  "zero strength",
			nodes: sampleNodes(),
			edges: []Edge{{Source: "kore", Target: "pet", Relationship: RelationRelatedTo, Strength: 0}},
			kind:  InvalidEdge,
		},
		{
			name:  "strength above one",
			nodes: sampleNodes(),
			edges: []Edge{{Source: "kore", Target: "pet", Relationship: RelationRelatedTo, Strength: 1.5}},
			kind:  InvalidEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Load(tt.nodes, tt.edges, DefaultLimits())
			assert.Nil(t, g)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.kind, le.Kind)
			assert.ErrorIs(t, err, ErrLoad)
		})
	}
}

func TestLoad_RejectsOversizedGraph(t *testing.T) {
	nodes := make([]Node, 10001)
	for i := range nodes {
		nodes[i] = Node{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("n%d", i), Type: NodeKeyword}
	}

	g, err := Load(nodes, nil, DefaultLimits())
	assert.Nil(t, g)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, TooManyNodes, le.Kind)

	_, err = Load(nodes[:10000], nil, DefaultLimits())
	assert.NoError(t, err)

	_, err = Load(sampleNodes(), sampleEdges(), Limits{MaxNodes: 10, MaxEdges: 2})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, TooManyEdges, le.Kind)
}

func TestFromCollection(t *testing.T) {
	c := lexicon.NewCollection([]lexicon.Entry{
		lexicon.NewEntry("kore", "heart", lexicon.DomainBody),
		lexicon.NewEntry("kore-pet", "grief", lexicon.DomainEmotion),
		lexicon.NewEntry("aqua", "water that flows down from the hills", lexicon.DomainNature),
	})

	nodes, edges := FromCollection(c)
	g, err := Load(nodes, edges, DefaultLimits())
	require.NoError(t, err)

	kore, ok := g.Node("kore")
	require.True(t, ok)
	assert.Equal(t, NodeRoot, kore.Type)

	pet, ok := g.Node("pet")
	require.True(t, ok)
	assert.Equal(t, NodeRoot, pet.Type)
	assert.Empty(t, pet.Definition)

	_, ok = g.Node("en:grief")
	assert.True(t, ok)
	_, ok = g.Node("en:water that flows down from the hills")
	assert.False(t, ok)

	var hasRoot int
	for _, e := range g.Edges() {
		if e.Relationship == RelationHasRoot {
			hasRoot++
			assert.Equal(t, "kore-pet", e.Source)
			assert.InDelta(t, 1.0, e.Strength, 0.0001)
		}
	}
	assert.Equal(t, 2, hasRoot)
}

func TestResolve_MixedCaseIDs(t *testing.T) {
	nodes := []Node{
		{ID: "Sole-Lum", Label: "hope", Type: NodeWord},
		{ID: "sole", Label: "sun", Type: NodeRoot},
	}
	g, err := Load(nodes, nil, DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, []string{"Sole-Lum"}, g.Resolve("Sole-Lum"))
	assert.Equal(t, []string{"Sole-Lum"}, g.Resolve("sole-lum"))
	assert.Equal(t, []string{"sole"}, g.Resolve(" SOLE "))
}

func TestRootChains(t *testing.T) {
	nodes := []Node{
		{ID: "kore-pet-lum", Type: NodeWord},
		{ID: "kore-pet", Type: NodeWord},
		{ID: "kore", Type: NodeRoot},
		{ID: "pet", Type: NodeRoot},
		{ID: "lum", Type: NodeRoot},
	}
	edges := []Edge{
		{Source: "kore-pet-lum", Target: "kore-pet", Relationship: RelationHasRoot, Strength: 1},
		{Source: "kore-pet-lum", Target: "lum", Relationship: RelationHasRoot, Strength: 1},
		{Source: "kore-pet", Target: "kore", Relationship: RelationHasRoot, Strength: 1},
		{Source: "kore-pet", Target: "pet", Relationship: RelationHasRoot, Strength: 1},
		{Source: "kore", Target: "lum", Relationship: RelationRelatedTo, Strength: 0.5},
	}
	g, err := Load(nodes, edges, DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"kore-pet-lum", "kore-pet", "kore"},
		{"kore-pet-lum", "kore-pet", "pet"},
		{"kore-pet-lum", "lum"},
	}, g.RootChains("kore-pet-lum", 0))

	// Chains longer than the bound are dropped.
	assert.Equal(t, [][]string{{"kore-pet-lum", "lum"}}, g.RootChains("kore-pet-lum", 1))

	// Incoming has_root edges are not followed.
	assert.Equal(t, [][]string{{"kore"}}, g.RootChains("kore", 3))
	assert.Nil(t, g.RootChains("ghost", 3))
}
