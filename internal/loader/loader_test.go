package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"
	"fidakune/internal/storage"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name  string
	vocab *snapshot.Vocabulary
	graph *snapshot.Graph
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vocab == nil {
		return nil, ErrNotProvided
	}
	return f.vocab, nil
}

func (f *fakeSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.graph == nil {
		return nil, ErrNotProvided
	}
	return f.graph, nil
}

func TestChain_Vocabulary_FallsBackInOrder(t *testing.T) {
	down := errors.New("connection refused")
	chain := NewChain(
		&fakeSource{name: "remote", err: down},
		&fakeSource{name: "broken", vocab: &snapshot.Vocabulary{Entries: []lexicon.Entry{{Definition: "nameless"}}}},
		&fakeSource{name: "empty"},
		BuiltinSource{},
	)

	res, err := chain.Vocabulary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "builtin", res.Source)
	require.Len(t, res.Stages, 4)
	assert.ErrorIs(t, res.Stages[0].Err, down)
	assert.ErrorIs(t, res.Stages[1].Err, snapshot.ErrInvalidDocument)
	assert.ErrorIs(t, res.Stages[2].Err, ErrNotProvided)
	assert.NoError(t, res.Stages[3].Err)

	_, ok := res.Collection.Get("kore-pet")
	assert.True(t, ok)
}

func TestChain_Vocabulary_RejectsInvalidEntries(t *testing.T) {
	chain := NewChain(&fakeSource{name: "nodomain", vocab: &snapshot.Vocabulary{
		Entries: []lexicon.Entry{{Word: "kore", Definition: "heart"}},
	}})

	res, err := chain.Vocabulary(context.Background())
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.ErrorIs(t, err, lexicon.ErrInvalidEntry)
	assert.Nil(t, res.Collection)
	require.Len(t, res.Stages, 1)
}

func TestChain_Graph_StructuralFailureContinues(t *testing.T) {
	dangling := &snapshot.Graph{
		Nodes: []graph.Node{{ID: "a", Label: "a", Type: graph.NodeWord}},
		Edges: []graph.Edge{{Source: "a", Target: "ghost", Relationship: graph.RelationIsA, Strength: 1}},
	}
	chain := NewChain(&fakeSource{name: "dangling", graph: dangling}, BuiltinSource{})

	res, err := chain.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "builtin", res.Source)

	var le *graph.LoadError
	require.ErrorAs(t, res.Stages[0].Err, &le)
	assert.Equal(t, graph.MissingNode, le.Kind)
	assert.Positive(t, res.Graph.NodeCount())
}

func TestChain_AllSourcesFailed(t *testing.T) {
	down := errors.New("timeout")
	chain := NewChain(&fakeSource{name: "a", err: down}, &fakeSource{name: "b"})

	_, err := chain.Graph(context.Background())
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestChain_WriteBack(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	chain := NewChain(BuiltinSource{})
	chain.WriteBack = store
	_, err = chain.Vocabulary(ctx)
	require.NoError(t, err)
	_, err = chain.Graph(ctx)
	require.NoError(t, err)

	// The next run can be served offline from the store alone.
	offline := NewChain(&StoreSource{Store: store})
	res, err := offline.Vocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "store", res.Source)
	assert.Equal(t, len(builtinEntries()), res.Collection.Len())

	g, err := offline.Graph(ctx)
	require.NoError(t, err)
	assert.Equal(t, "store", g.Source)
}

func TestStoreSource_EmptyStoreNotProvided(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	src := &StoreSource{Store: store}
	_, err = src.LoadVocabulary(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)
	_, err = src.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestHTTPSource(t *testing.T) {
	var graphHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/vocabulary.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"word": "kore", "definition": "heart", "domain": "Body"}]`))
	})
	mux.HandleFunc("/graph.json", func(w http.ResponseWriter, r *http.Request) {
		graphHits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/vocabulary.json", srv.URL+"/graph.json", time.Second,
		BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := src.LoadGraph(ctx)
		require.Error(t, err)
	}
	// The breaker is open now and the server is not contacted again.
	_, err := src.LoadGraph(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), graphHits.Load())

	empty := NewHTTPSource(srv.URL+"/vocabulary.json", "", time.Second, BreakerSettings{}, nil)
	v, err := empty.LoadVocabulary(ctx)
	require.NoError(t, err)
	require.Len(t, v.Entries, 1)
	assert.Equal(t, lexicon.DomainBody, v.Entries[0].Domain)

	_, err = empty.LoadGraph(ctx)
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestFileSource_Lenient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"word": "kore", "definition": "heart", "domain": "Body",},]`), 0o644))

	strict := &FileSource{VocabularyPath: path}
	_, err := strict.LoadVocabulary(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrInvalidDocument)

	lenient := &FileSource{VocabularyPath: path, Lenient: true}
	v, err := lenient.LoadVocabulary(context.Background())
	require.NoError(t, err)
	require.Len(t, v.Entries, 1)
	assert.Equal(t, "heart", v.Entries[0].Definition)

	_, err = lenient.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)

	missing := &FileSource{GraphPath: filepath.Join(dir, "nope.json")}
	_, err = missing.LoadGraph(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const lexiconDoc = `# Fidakune Lexicon

Some intro text.

| Word | Pronunciation | Definition | Domain | Examples |
|------|---------------|------------|--------|----------|
| kore | /ˈko.ɾe/ | heart | Body | kore mi; kore tu |
| **kore-pet** |  | grief | Emotion |  |

## Notes

| Symbol | Meaning |
|--------|---------|
| - | separator |
`

func TestParseMarkdownTable(t *testing.T) {
	entries, err := ParseMarkdownTable(context.Background(), []byte(lexiconDoc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "kore", entries[0].Word)
	assert.Equal(t, "/ˈko.ɾe/", entries[0].Pronunciation)
	assert.Equal(t, lexicon.DomainBody, entries[0].Domain)
	assert.Equal(t, []string{"kore mi", "kore tu"}, entries[0].Examples)

	assert.Equal(t, "kore-pet", entries[1].Word)
	assert.Equal(t, "grief", entries[1].Definition)
	assert.Equal(t, lexicon.GeneratePronunciation("kore-pet"), entries[1].Pronunciation)
	assert.Empty(t, entries[1].Examples)
}

func TestMarkdownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LEXICON.md")
	require.NoError(t, os.WriteFile(path, []byte(lexiconDoc), 0o644))

	res, err := NewChain(&MarkdownSource{Path: path}).Vocabulary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "markdown", res.Source)
	assert.Equal(t, 2, res.Collection.Len())

	_, err = (&MarkdownSource{Path: path}).LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestLoadAll(t *testing.T) {
	loaded, err := LoadAll(context.Background(), NewChain(BuiltinSource{}), NewChain(BuiltinSource{}))
	require.NoError(t, err)
	require.NotNil(t, loaded.Vocabulary)
	require.NotNil(t, loaded.Graph)

	ids := loaded.Graph.Graph.Resolve("kore")
	assert.Contains(t, ids, "kore")

	loaded, err = LoadAll(context.Background(), NewChain(BuiltinSource{}), NewChain(&fakeSource{name: "none"}))
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.NotNil(t, loaded.Vocabulary)
}

func TestMarkdownRoundTrip(t *testing.T) {
	v, err := BuiltinSource{}.LoadVocabulary(context.Background())
	require.NoError(t, err)

	entries, err := ParseMarkdownTable(context.Background(), snapshot.RenderMarkdown(v))
	require.NoError(t, err)
	assert.Equal(t, builtinEntries(), entries)
}
