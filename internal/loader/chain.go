package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"
	"fidakune/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrAllSourcesFailed = errors.New("all snapshot sources failed")

// StageResult records one source attempt.
type StageResult struct {
	Source   string
	Err      error
	Duration time.Duration
}

// Chain tries its sources in order and accepts the first document that passes schema and
// structural validation. When WriteBack is set, a document won from any source other than
// the store is saved to it.
type Chain struct {
	Sources   []Source
	WriteBack storage.Store
	Limits    graph.Limits
	Logger    *zap.Logger
}

func NewChain(sources ...Source) *Chain {
	return &Chain{Sources: sources}
}

type VocabularyResult struct {
	Collection *lexicon.Collection
	Document   *snapshot.Vocabulary
	Source     string
	Stages     []StageResult
}

type GraphResult struct {
	Graph    *graph.Graph
	Document *snapshot.Graph
	Source   string
	Stages   []StageResult
}

// Vocabulary loads the first valid vocabulary. The stage log is returned even on failure.
func (c *Chain) Vocabulary(ctx context.Context) (*VocabularyResult, error) {
	res := &VocabularyResult{}
	doc, src, stages, err := attempt(ctx, c,
		func(s Source) (*snapshot.Vocabulary, error) { return s.LoadVocabulary(ctx) },
		func(doc *snapshot.Vocabulary) error {
			if err := snapshot.ValidateVocabulary(doc); err != nil {
				return err
			}
			coll, err := lexicon.LoadCollection(doc.Entries)
			if err != nil {
				return err
			}
			res.Collection = coll
			return nil
		})
	res.Document, res.Source, res.Stages = doc, src, stages
	if err != nil {
		return res, err
	}

	if conflicts := res.Collection.Conflicts(); len(conflicts) > 0 {
		c.logger().Warn("vocabulary has conflicts",
			zap.String("source", src),
			zap.Int("conflicts", len(conflicts)))
	}
	if c.shouldWriteBack(src) {
		if err := c.WriteBack.SaveVocabulary(ctx, doc); err != nil {
			c.logger().Warn("failed to write vocabulary back to store", zap.Error(err))
		}
	}
	return res, nil
}

// Graph loads the first valid graph.
func (c *Chain) Graph(ctx context.Context) (*GraphResult, error) {
	res := &GraphResult{}
	doc, src, stages, err := attempt(ctx, c,
		func(s Source) (*snapshot.Graph, error) { return s.LoadGraph(ctx) },
		func(doc *snapshot.Graph) error {
			if err := snapshot.ValidateGraph(doc); err != nil {
				return err
			}
			g, err := graph.Load(doc.Nodes, doc.Edges, c.Limits)
			if err != nil {
				return err
			}
			res.Graph = g
			return nil
		})
	res.Document, res.Source, res.Stages = doc, src, stages
	if err != nil {
		return res, err
	}

	if c.shouldWriteBack(src) {
		if err := c.WriteBack.SaveGraph(ctx, doc); err != nil {
			c.logger().Warn("failed to write graph back to store", zap.Error(err))
		}
	}
	return res, nil
}

func attempt[D any](ctx context.Context, c *Chain, fetch func(Source) (*D, error), accept func(*D) error) (*D, string, []StageResult, error) {
	var stages []StageResult
	var errs []error
	for _, s := range c.Sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		doc, err := fetch(s)
		if err == nil && doc == nil {
			err = ErrNotProvided
		}
		if err == nil {
			err = accept(doc)
		}
		stages = append(stages, StageResult{Source: s.Name(), Err: err, Duration: time.Since(start)})

		if err == nil {
			c.logger().Debug("snapshot loaded", zap.String("source", s.Name()))
			return doc, s.Name(), stages, nil
		}
		if !errors.Is(err, ErrNotProvided) {
			c.logger().Warn("snapshot source failed", zap.String("source", s.Name()), zap.Error(err))
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return nil, "", stages, errors.Join(append([]error{ErrAllSourcesFailed}, errs...)...)
}

func (c *Chain) shouldWriteBack(source string) bool {
	return c.WriteBack != nil && source != storeSourceName
}

func (c *Chain) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Loaded holds the outcome of LoadAll. A nil chain leaves its half nil.
type Loaded struct {
	Vocabulary *VocabularyResult
	Graph      *GraphResult
}

// LoadAll runs the vocabulary and graph chains concurrently.
func LoadAll(ctx context.Context, vocabulary, graphs *Chain) (*Loaded, error) {
	out := &Loaded{}
	g, gctx := errgroup.WithContext(ctx)
	if vocabulary != nil {
		g.Go(func() error {
			res, err := vocabulary.Vocabulary(gctx)
			out.Vocabulary = res
			if err != nil {
				return fmt.Errorf("vocabulary: %w", err)
			}
			return nil
		})
	}
	if graphs != nil {
		g.Go(func() error {
			res, err := graphs.Graph(gctx)
			out.Graph = res
			if err != nil {
				return fmt.Errorf("graph: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
