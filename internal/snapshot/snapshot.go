// Package snapshot defines the wire documents for vocabulary and graph snapshots and
// validates them against embedded JSON Schemas before decoding.
package snapshot

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const SchemaVersion = "v1"

var ErrInvalidDocument = errors.New("invalid snapshot document")

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	vocabularySchema = "vocabulary.schema.json"
	graphSchema      = "graph.schema.json"
)

var (
	schemaCacheMu sync.Mutex
	schemaCache   = make(map[string]*jsonschema.Schema)
)

type Metadata struct {
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Vocabulary is an ordered list of entries. On the wire it is either a bare array or an
// object with metadata and entries.
type Vocabulary struct {
	Metadata Metadata        `json:"metadata"`
	Entries  []lexicon.Entry `json:"entries"`
}

// Graph is the relationship graph document.
type Graph struct {
	Metadata Metadata     `json:"metadata"`
	Nodes    []graph.Node `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
}

// DecodeVocabulary validates data against the vocabulary schema and decodes it.
func DecodeVocabulary(data []byte) (*Vocabulary, error) {
	doc, err := validate(vocabularySchema, data)
	if err != nil {
		return nil, err
	}
	v := &Vocabulary{}
	if _, isArray := doc.([]any); isArray {
		if err := json.Unmarshal(data, &v.Entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return v, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return v, nil
}

// DecodeGraph validates data against the graph schema and decodes it. Structural checks
// that need the whole graph (missing nodes, size ceilings) are left to graph.Load.
func DecodeGraph(data []byte) (*Graph, error) {
	if _, err := validate(graphSchema, data); err != nil {
		return nil, err
	}
	g := &Graph{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return g, nil
}

// ValidateVocabulary checks an in-memory document against the vocabulary schema, for
// sources that do not start from JSON.
func ValidateVocabulary(v *Vocabulary) error {
	data, err := EncodeVocabulary(v)
	if err != nil {
		return err
	}
	_, err = validate(vocabularySchema, data)
	return err
}

// ValidateGraph checks an in-memory document against the graph schema.
func ValidateGraph(g *Graph) error {
	data, err := EncodeGraph(g)
	if err != nil {
		return err
	}
	_, err = validate(graphSchema, data)
	return err
}

func EncodeVocabulary(v *Vocabulary) ([]byte, error) {
	if v.Entries == nil {
		v = &Vocabulary{Metadata: v.Metadata, Entries: []lexicon.Entry{}}
	}
	return json.MarshalIndent(v, "", "  ")
}

func EncodeGraph(g *Graph) ([]byte, error) {
	out := *g
	if out.Nodes == nil {
		out.Nodes = []graph.Node{}
	}
	if out.Edges == nil {
		out.Edges = []graph.Edge{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// NewVocabulary wraps a collection for encoding.
func NewVocabulary(c *lexicon.Collection, meta Metadata) *Vocabulary {
	if meta.Version == "" {
		meta.Version = SchemaVersion
	}
	return &Vocabulary{Metadata: meta, Entries: c.Entries()}
}

// NewGraph wraps a loaded graph for encoding.
func NewGraph(g *graph.Graph, meta Metadata) *Graph {
	if meta.Version == "" {
		meta.Version = SchemaVersion
	}
	return &Graph{Metadata: meta, Nodes: g.Nodes(), Edges: g.Edges()}
}

func validate(name string, data []byte) (any, error) {
	sch, err := loadCompiledSchema(name)
	if err != nil {
		return nil, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

func loadCompiledSchema(name string) (*jsonschema.Schema, error) {
	schemaCacheMu.Lock()
	defer schemaCacheMu.Unlock()
	if cached, ok := schemaCache[name]; ok {
		return cached, nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	url := "mem://fidakune/" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache[name] = compiled
	return compiled, nil
}
