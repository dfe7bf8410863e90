package snapshot

import (
	"bytes"
	"fmt"
	"strings"
)

// RenderMarkdown writes the vocabulary as the hand-curated lexicon document: one pipe table
// with a row per entry, in entry order.
func RenderMarkdown(v *Vocabulary) []byte {
	var b bytes.Buffer
	b.WriteString("# Fidakune Lexicon\n\n")
	if v.Metadata.Description != "" {
		b.WriteString(v.Metadata.Description + "\n\n")
	}
	if v.Metadata.GeneratedAt != "" {
		fmt.Fprintf(&b, "_Generated %s._\n\n", v.Metadata.GeneratedAt)
	}

	b.WriteString("| Word | Pronunciation | Definition | Domain | Type | Examples | Etymology |\n")
	b.WriteString("|------|---------------|------------|--------|------|----------|-----------|\n")
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			cell(e.Word),
			cell(e.Pronunciation),
			cell(e.Definition),
			cell(string(e.Domain)),
			e.Type(),
			cell(strings.Join(e.Examples, "; ")),
			cell(e.Etymology),
		)
	}
	return b.Bytes()
}

// cell keeps a value on one line and out of the column separators.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}
