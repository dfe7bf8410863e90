package retrieval

import (
	"fmt"
	"strings"
)

// Mermaid renders the traversal as a flowchart of seeds, reached nodes and the edges that
// reached them.
func (t *Traversal) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")

	for _, id := range t.SeedIDs {
		sb.WriteString(fmt.Sprintf("    %s((%q))\n", sanitizeMermaidID(id), id))
	}
	for _, bucket := range [][]Result{t.DirectlyRelated, t.ComponentRoots, t.RelatedIdeas} {
		for _, r := range bucket {
			sb.WriteString(fmt.Sprintf("    %s[%q]\n", sanitizeMermaidID(r.Node.ID), r.Node.Label))
		}
	}
	for _, e := range t.Edges {
		sb.WriteString(fmt.Sprintf("    %s -->|%s %.2f| %s\n",
			sanitizeMermaidID(e.Source), e.Relationship, e.Strength, sanitizeMermaidID(e.Target)))
	}

	sb.WriteString("```\n")
	return sb.String()
}

// sanitizeMermaidID maps a node id to a distinct Mermaid identifier. Letters and digits are
// kept; every other byte, a leading digit and the reserved word "end" are escaped as _xx.
func sanitizeMermaidID(v string) string {
	if v == "" {
		return "_"
	}
	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		literal := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9')
		if i == 0 && strings.EqualFold(v, "end") {
			literal = false
		}
		if literal {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "_%02x", c)
	}
	return sb.String()
}
