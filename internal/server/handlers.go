package server

import (
	"errors"
	"net/http"
	"time"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/search"

	"github.com/gin-gonic/gin"
)

type searchRequest struct {
	Query     string `form:"q"`
	ForceRoot bool   `form:"force_root"`
	Limit     int    `form:"limit" binding:"gte=0"`
	Domain    string `form:"domain"`
}

type patternRequest struct {
	Pattern string `form:"pattern" binding:"required"`
}

// errInvalidPattern is the data-level error code for a pattern that does not compile.
const errInvalidPattern = "invalid_pattern"

type exploreRequest struct {
	Query string `form:"q"`
	Depth int    `form:"depth"`
}

type reviewRequest struct {
	Word          string   `json:"word" binding:"required"`
	Definition    string   `json:"definition" binding:"required"`
	Domain        string   `json:"domain"`
	Pronunciation string   `json:"pronunciation"`
	Examples      []string `json:"examples"`
}

func (s *Server) health(c *gin.Context) {
	entries := 0
	if s.engine != nil {
		entries = s.engine.Metrics().CollectionSize
	}
	g := s.graph()
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "fidakune",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"entries":     entries,
		"graph_nodes": g.NodeCount(),
		"graph_edges": g.EdgeCount(),
	})
}

// graph returns the explorer's current graph, or nil when the server has no explorer.
func (s *Server) graph() *graph.Graph {
	if s.explorer == nil {
		return nil
	}
	return s.explorer.Graph()
}

// search answers 200 even for malformed query text; the result carries the error code.
func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := s.engine.SearchWithOptions(req.Query, search.Options{
		ForceRootTier: req.ForceRoot,
		Limit:         req.Limit,
		Domain:        lexicon.Domain(req.Domain),
	})
	c.JSON(http.StatusOK, res)
}

func (s *Server) explore(c *gin.Context) {
	var req exploreRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.explorer.Search(req.Query, req.Depth))
}

func (s *Server) word(c *gin.Context) {
	coll := s.engine.Collection()
	entry, ok := coll.Get(c.Param("word"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found", "word": c.Param("word")})
		return
	}
	roots, missing := coll.Roots(entry.Word)
	c.JSON(http.StatusOK, gin.H{
		"entry":         entry,
		"roots":         nonNil(roots),
		"missing_roots": nonNil(missing),
		"derived_words": nonNil(coll.DerivedWords(entry.Word)),
		"root_chains":   nonNil(s.rootChains(entry.Word)),
		"phonotactics":  lexicon.CheckPhonotactics(entry.Word),
	})
}

func (s *Server) rootChains(word string) [][]string {
	g := s.graph()
	for _, id := range g.Resolve(word) {
		if n, _ := g.Node(id); n.Type != graph.NodeKeyword {
			return g.RootChains(id, graph.DefaultChainDepth)
		}
	}
	return nil
}

// words lists entries whose word or pronunciation matches a regular expression. A pattern that
// does not compile is answered with 200 and an error code, like a malformed search query.
func (s *Server) words(c *gin.Context) {
	var req patternRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found, err := s.engine.Collection().FindByPattern(req.Pattern)
	if errors.Is(err, lexicon.ErrInvalidPattern) {
		c.JSON(http.StatusOK, gin.H{
			"pattern": req.Pattern,
			"words":   []lexicon.Entry{},
			"error":   errInvalidPattern,
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pattern": req.Pattern,
		"count":   len(found),
		"words":   nonNil(found),
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Collection().Statistics())
}

func (s *Server) conflicts(c *gin.Context) {
	opts := lexicon.ValidateOptions{MissingRoots: true}
	if c.Query("similar") == "true" {
		opts.SimilarityThreshold = lexicon.DefaultSimilarityThreshold
	}
	found := lexicon.Validate(s.engine.Collection(), opts)
	c.JSON(http.StatusOK, gin.H{
		"conflicts": nonNil(found),
		"counts":    lexicon.CountByType(found),
	})
}

func (s *Server) history(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"history": s.engine.History(),
		"metrics": s.engine.Metrics(),
	})
}

func (s *Server) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft := lexicon.NewEntry(req.Word, req.Definition, lexicon.Domain(req.Domain), req.Examples...)
	if req.Pronunciation != "" {
		draft.Pronunciation = req.Pronunciation
	}
	c.JSON(http.StatusOK, lexicon.ReviewProposal(draft, s.engine.Collection()))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
