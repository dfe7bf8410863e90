package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Vocabulary_SnapshotSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LoadVocabulary(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	first := &snapshot.Vocabulary{
		Metadata: snapshot.Metadata{Version: "v1", Source: "test"},
		Entries: []lexicon.Entry{
			lexicon.NewEntry("kore", "heart", lexicon.DomainBody, "kore mi"),
			lexicon.NewEntry("pet", "stone", lexicon.DomainNature),
		},
	}
	require.NoError(t, store.SaveVocabulary(ctx, first))

	second := &snapshot.Vocabulary{
		Entries: []lexicon.Entry{
			lexicon.NewEntry("kore-pet", "grief", lexicon.DomainEmotion),
			lexicon.NewEntry("kore", "heart", lexicon.DomainBody, "kore mi"),
			lexicon.NewEntry("kore", "core", lexicon.DomainObject),
		},
	}
	require.NoError(t, store.SaveVocabulary(ctx, second))

	loaded, err := store.LoadVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Entries, loaded.Entries)
	assert.Empty(t, loaded.Metadata.Source)

	_, err = store.SavedAt(ctx, "vocabulary")
	assert.NoError(t, err)
}

func TestSQLiteStore_Graph_SnapshotSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LoadGraph(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	g1 := &snapshot.Graph{
		Nodes: []graph.Node{
			{ID: "a", Label: "a", Type: graph.NodeWord},
			{ID: "b", Label: "b", Type: graph.NodeRoot},
		},
		Edges: []graph.Edge{{Source: "a", Target: "b", Relationship: graph.RelationHasRoot, Strength: 1}},
	}
	require.NoError(t, store.SaveGraph(ctx, g1))

	// New snapshot: remove a, add c, and replace the edge with c->b.
	g2 := &snapshot.Graph{
		Metadata: snapshot.Metadata{Version: "v2"},
		Nodes: []graph.Node{
			{ID: "b", Label: "b", Type: graph.NodeRoot, Definition: "stone", Domain: "Nature"},
			{ID: "c", Label: "c", Type: graph.NodeKeyword},
		},
		Edges: []graph.Edge{{Source: "c", Target: "b", Relationship: graph.RelationRelatedTo, Strength: 0.4, Description: "loosely"}},
	}
	require.NoError(t, store.SaveGraph(ctx, g2))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, g2, loaded)
}

func TestSQLiteStore_Graph_EmptySnapshotClearsData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, &snapshot.Graph{
		Nodes: []graph.Node{{ID: "x", Label: "x", Type: graph.NodeWord}},
	}))
	require.NoError(t, store.SaveGraph(ctx, &snapshot.Graph{}))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)
	assert.Empty(t, loaded.Edges)
}

func TestSQLiteStore_CorruptRowsFailLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := &snapshot.Vocabulary{Entries: []lexicon.Entry{lexicon.NewEntry("kore", "heart", lexicon.DomainBody, "kore mi")}}
	require.NoError(t, store.SaveVocabulary(ctx, v))

	_, err := store.db.ExecContext(ctx, "UPDATE entries SET examples = ? WHERE word = ?", "[\"kore mi\"", "kore")
	require.NoError(t, err)
	_, err = store.LoadVocabulary(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `examples of "kore"`)

	require.NoError(t, store.SaveVocabulary(ctx, v))
	_, err = store.db.ExecContext(ctx, "UPDATE snapshots SET metadata = ? WHERE kind = ?", "{broken", "vocabulary")
	require.NoError(t, err)
	_, err = store.LoadVocabulary(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vocabulary metadata")
}
