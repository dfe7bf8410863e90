package storage

import (
	"context"

	"fidakune/internal/snapshot"
)

// Store combines vocabulary and graph snapshot persistence.
type Store interface {
	VocabularyStore
	GraphStore
	Close() error
}

// VocabularyStore persists the vocabulary as a whole snapshot.
type VocabularyStore interface {
	// SaveVocabulary replaces the stored vocabulary, keeping entry order.
	SaveVocabulary(ctx context.Context, v *snapshot.Vocabulary) error

	// LoadVocabulary returns the stored vocabulary, or ErrEmpty when none was saved.
	LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error)
}

// GraphStore persists the relationship graph as a whole snapshot.
type GraphStore interface {
	// SaveGraph replaces the stored nodes and edges.
	SaveGraph(ctx context.Context, g *snapshot.Graph) error

	// LoadGraph returns the stored graph, or ErrEmpty when none was saved.
	LoadGraph(ctx context.Context) (*snapshot.Graph, error)
}
