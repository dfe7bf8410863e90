// Package loader fetches vocabulary and graph snapshots from an ordered list of sources,
// falling back to the next source when one fails.
package loader

import (
	"context"
	"errors"

	"fidakune/internal/snapshot"
)

// ErrNotProvided is returned by a source that does not serve the requested document kind.
var ErrNotProvided = errors.New("document not provided by source")

// Source is one place snapshots can come from.
type Source interface {
	Name() string
	LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error)
	LoadGraph(ctx context.Context) (*snapshot.Graph, error)
}
