package loader

import (
	"context"
	"fmt"
	"os"

	"fidakune/internal/snapshot"

	"github.com/kaptinlin/jsonrepair"
)

// FileSource reads JSON snapshots from disk. With Lenient set, hand-edited files with
// trailing commas or missing quotes are repaired before schema validation.
type FileSource struct {
	VocabularyPath string
	GraphPath      string
	Lenient        bool
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	if s.VocabularyPath == "" {
		return nil, ErrNotProvided
	}
	data, err := s.read(s.VocabularyPath)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeVocabulary(data)
}

func (s *FileSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	if s.GraphPath == "" {
		return nil, ErrNotProvided
	}
	data, err := s.read(s.GraphPath)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeGraph(data)
}

func (s *FileSource) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !s.Lenient {
		return data, nil
	}
	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, fmt.Errorf("repair %s: %w", path, err)
	}
	return []byte(repaired), nil
}
