package loader

import (
	"context"
	"errors"

	"fidakune/internal/snapshot"
	"fidakune/internal/storage"
)

const storeSourceName = "store"

// StoreSource reads the last snapshot written to the local store.
type StoreSource struct {
	Store storage.Store
}

func (s *StoreSource) Name() string {
	return storeSourceName
}

func (s *StoreSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	if s.Store == nil {
		return nil, ErrNotProvided
	}
	v, err := s.Store.LoadVocabulary(ctx)
	if errors.Is(err, storage.ErrEmpty) {
		return nil, ErrNotProvided
	}
	return v, err
}

func (s *StoreSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	if s.Store == nil {
		return nil, ErrNotProvided
	}
	g, err := s.Store.LoadGraph(ctx)
	if errors.Is(err, storage.ErrEmpty) {
		return nil, ErrNotProvided
	}
	return g, err
}
