package loader

import (
	"context"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"
)

// BuiltinSource serves a small embedded lexicon so the engines can start with no data files.
// Its graph is derived from the vocabulary.
type BuiltinSource struct{}

func (BuiltinSource) Name() string {
	return "builtin"
}

func (BuiltinSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	return &snapshot.Vocabulary{
		Metadata: snapshot.Metadata{Version: snapshot.SchemaVersion, Source: "builtin"},
		Entries:  builtinEntries(),
	}, nil
}

func (BuiltinSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	nodes, edges := graph.FromCollection(lexicon.NewCollection(builtinEntries()))
	return &snapshot.Graph{
		Metadata: snapshot.Metadata{Version: snapshot.SchemaVersion, Source: "builtin"},
		Nodes:    nodes,
		Edges:    edges,
	}, nil
}

func builtinEntries() []lexicon.Entry {
	aqua := lexicon.NewEntry("aqua", "water", lexicon.DomainNature)
	aqua.Pronunciation = "/ˈa.kwa/"

	korePet := lexicon.NewEntry("kore-pet", "grief", lexicon.DomainEmotion, "mi sente kore-pet")
	korePet.Etymology = "compound: heart + stone"

	soleLum := lexicon.NewEntry("sole-lum", "hope", lexicon.DomainEmotion)
	soleLum.Etymology = "compound: sun + light"

	return []lexicon.Entry{
		lexicon.NewEntry("kore", "heart", lexicon.DomainBody),
		lexicon.NewEntry("pet", "stone", lexicon.DomainNature),
		aqua,
		lexicon.NewEntry("sole", "sun", lexicon.DomainNature),
		lexicon.NewEntry("lum", "light", lexicon.DomainNature),
		korePet,
		soleLum,
	}
}
