package graph

type NodeType string

const (
	NodeWord    NodeType = "fidakune_word"
	NodeRoot    NodeType = "fidakune_root"
	NodeKeyword NodeType = "english_keyword"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeWord, NodeRoot, NodeKeyword:
		return true
	}
	return false
}

type Relationship string

const (
	RelationIsA       Relationship = "is_a"
	RelationHasRoot   Relationship = "has_root"
	RelationRelatedTo Relationship = "is_related_to"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationIsA, RelationHasRoot, RelationRelatedTo:
		return true
	}
	return false
}

// Node is a vertex of the relationship graph.
type Node struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       NodeType `json:"type"`
	Definition string   `json:"definition,omitempty"`
	Domain     string   `json:"domain,omitempty"`
}

// Edge is a directed, typed relationship. Strength is in (0,1]; higher is more direct.
type Edge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship Relationship `json:"relationship"`
	Strength     float64      `json:"strength"`
	Description  string       `json:"description,omitempty"`
}

// Hop is one step from a node along an edge, in either direction.
type Hop struct {
	To   string
	Edge Edge
}

// Limits caps the size of a graph accepted by Load.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

func DefaultLimits() Limits {
	return Limits{MaxNodes: 10000, MaxEdges: 50000}
}
