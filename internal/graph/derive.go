package graph

import (
	"fmt"
	"strings"

	"fidakune/internal/lexicon"
)

// keywordPrefix namespaces English keyword ids so they never collide with words.
const keywordPrefix = "en:"

// maxKeywordTokens skips glosses too long to act as a keyword label.
const maxKeywordTokens = 3

// FromCollection derives a graph from a vocabulary: compounds point at their roots with
// has_root edges, and short glosses become English keywords linked by is_a.
func FromCollection(c *lexicon.Collection) ([]Node, []Edge) {
	var nodes []Node
	var edges []Edge
	seen := make(map[string]bool)

	addNode := func(n Node) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}

	entries := c.Entries()
	for _, e := range entries {
		id := strings.ToLower(e.Word)
		typ := NodeWord
		if !e.IsCompound() && len(c.DerivedWords(e.Word)) > 0 {
			typ = NodeRoot
		}
		addNode(Node{ID: id, Label: e.Word, Type: typ, Definition: e.Definition, Domain: string(e.Domain)})
	}

	for _, e := range entries {
		id := strings.ToLower(e.Word)
		for _, root := range e.Roots() {
			rootID := strings.ToLower(root)
			addNode(Node{ID: rootID, Label: root, Type: NodeRoot})
			edges = append(edges, Edge{
				Source:       id,
				Target:       rootID,
				Relationship: RelationHasRoot,
				Strength:     1.0,
				Description:  fmt.Sprintf("%s is built on %s", e.Word, root),
			})
		}

		gloss := strings.ToLower(strings.TrimSpace(e.Definition))
		if gloss == "" || len(strings.Fields(gloss)) > maxKeywordTokens {
			continue
		}
		kwID := keywordPrefix + gloss
		addNode(Node{ID: kwID, Label: gloss, Type: NodeKeyword})
		edges = append(edges, Edge{
			Source:       id,
			Target:       kwID,
			Relationship: RelationIsA,
			Strength:     1.0,
			Description:  fmt.Sprintf("%s means %s", e.Word, gloss),
		})
	}
	return nodes, edges
}
