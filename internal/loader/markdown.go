package loader

import (
	"context"
	"os"
	"strings"

	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"

	sitter "github.com/smacker/go-tree-sitter"
	markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
)

// MarkdownSource reads the hand-curated lexicon document: any pipe table whose header has a
// "word" column contributes entries. It never serves a graph.
type MarkdownSource struct {
	Path string
}

func (s *MarkdownSource) Name() string {
	return "markdown"
}

func (s *MarkdownSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	return nil, ErrNotProvided
}

func (s *MarkdownSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	if s.Path == "" {
		return nil, ErrNotProvided
	}
	src, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	entries, err := ParseMarkdownTable(ctx, src)
	if err != nil {
		return nil, err
	}
	return &snapshot.Vocabulary{
		Metadata: snapshot.Metadata{Version: snapshot.SchemaVersion, Source: s.Path},
		Entries:  entries,
	}, nil
}

// ParseMarkdownTable extracts entries from every lexicon table in src, in document order.
func ParseMarkdownTable(ctx context.Context, src []byte) ([]lexicon.Entry, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(markdown.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	entries := []lexicon.Entry{}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "pipe_table" {
			entries = append(entries, tableEntries(n, src)...)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(tree.RootNode())
	return entries, nil
}

func tableEntries(table *sitter.Node, src []byte) []lexicon.Entry {
	var columns map[string]int
	var out []lexicon.Entry
	for i := 0; i < int(table.NamedChildCount()); i++ {
		row := table.NamedChild(i)
		switch row.Type() {
		case "pipe_table_header":
			columns = headerColumns(cells(row, src))
			if _, ok := columns["word"]; !ok {
				return nil
			}
		case "pipe_table_row":
			if columns == nil {
				continue
			}
			if e, ok := rowEntry(columns, cells(row, src)); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// cells splits a row on its pipes. Working from the row text keeps empty cells in place.
func cells(row *sitter.Node, src []byte) []string {
	text := strings.TrimSpace(row.Content(src))
	text = strings.TrimPrefix(text, "|")
	text = strings.TrimSuffix(text, "|")
	parts := strings.Split(text, "|")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = cleanCell(p)
	}
	return out
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*_")
	return strings.TrimSpace(s)
}

func headerColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(h)
		switch name {
		case "meaning", "gloss":
			name = "definition"
		case "notes":
			name = "etymology"
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func rowEntry(cols map[string]int, row []string) (lexicon.Entry, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	word := strings.ToLower(get("word"))
	if word == "" {
		return lexicon.Entry{}, false
	}

	var examples []string
	for _, ex := range strings.Split(get("examples"), ";") {
		if ex = strings.TrimSpace(ex); ex != "" {
			examples = append(examples, ex)
		}
	}

	e := lexicon.NewEntry(word, get("definition"), lexicon.Domain(get("domain")), examples...)
	if p := get("pronunciation"); p != "" {
		e.Pronunciation = p
	}
	e.Etymology = get("etymology")
	return e, true
}
