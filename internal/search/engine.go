package search

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fidakune/internal/lexicon"
	"fidakune/internal/query"

	"go.uber.org/zap"
)

// Tier names the stage of the cascade that produced the primary results.
type Tier string

const (
	TierExact    Tier = "exact"
	TierRoot     Tier = "root"
	TierSemantic Tier = "semantic"
	TierNone     Tier = "none"
)

// Match is one ranked entry within a tier.
type Match struct {
	Entry        lexicon.Entry `json:"entry"`
	Confidence   float64       `json:"confidence"`
	MatchedRoots int           `json:"matched_roots,omitempty"`
}

// Result is the outcome of one query. Input errors are reported in Error, never as a Go error.
type Result struct {
	Query           string        `json:"query"`
	ExactMatches    []Match       `json:"exact_matches"`
	RelatedWords    []Match       `json:"related_words"`
	SemanticMatches []Match       `json:"semantic_matches"`
	Tier            Tier          `json:"search_tier"`
	ProcessingTime  time.Duration `json:"processing_time"`
	Error           string        `json:"error,omitempty"`
}

// Total counts matches across all tiers.
func (r *Result) Total() int {
	return len(r.ExactMatches) + len(r.RelatedWords) + len(r.SemanticMatches)
}

// Options refines a single search.
type Options struct {
	// ForceRootTier runs root analysis even when the exact tier matched.
	ForceRootTier bool
	// Limit caps each tier list. Zero means unlimited.
	Limit int
	// Domain restricts results to one domain.
	Domain lexicon.Domain
}

type Config struct {
	CacheTTL              time.Duration
	CacheSize             int
	HistorySize           int
	MaxQueryLength        int
	ContainmentConfidence float64
	DomainBonus           float64
}

func DefaultConfig() Config {
	return Config{
		CacheTTL:              24 * time.Hour,
		CacheSize:             1000,
		HistorySize:           50,
		MaxQueryLength:        query.DefaultMaxLength,
		ContainmentConfidence: 0.8,
		DomainBonus:           0.2,
	}
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces time.Now, for TTL handling in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine resolves queries against one collection through the exact, root and semantic
// tiers. Each engine owns its cache, metrics and history.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
	collection *lexicon.Collection
	cache      *resultCache
	stats      counters
	history    *history
}

func NewEngine(c *lexicon.Collection, cfg Config, opts ...Option) *Engine {
	cfg = withDefaults(cfg)
	e := &Engine{
		cfg:        cfg,
		logger:     zap.NewNop(),
		now:        time.Now,
		collection: c,
		cache:      newResultCache(cfg.CacheSize),
		history:    newHistory(cfg.HistorySize),
	}
	for _, opt := range opts {
		opt(e)
	}
	if c == nil {
		e.collection = lexicon.NewCollection(nil)
	}
	return e
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = def.MaxQueryLength
	}
	if cfg.ContainmentConfidence <= 0 || cfg.ContainmentConfidence > 1 {
		cfg.ContainmentConfidence = def.ContainmentConfidence
	}
	if cfg.DomainBonus < 0 {
		cfg.DomainBonus = def.DomainBonus
	}
	return cfg
}

// Reload swaps in a new collection and drops every cached result.
func (e *Engine) Reload(c *lexicon.Collection) {
	if c == nil {
		c = lexicon.NewCollection(nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.collection = c
	e.cache.clear()
	e.logger.Info("vocabulary reloaded", zap.Int("entries", c.Len()))
}

// Collection returns the collection currently served.
func (e *Engine) Collection() *lexicon.Collection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collection
}

func (e *Engine) Search(q string) *Result {
	return e.SearchWithOptions(q, Options{})
}

// SearchWithOptions runs the cascade. Identical normalized queries with identical options
// are served from the cache until the TTL expires or the collection is reloaded.
func (e *Engine) SearchWithOptions(q string, opts Options) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	now := e.now()

	if !query.Valid(q, e.cfg.MaxQueryLength) {
		res := newResult(q)
		res.Tier = TierNone
		res.Error = query.ErrInvalid
		res.ProcessingTime = time.Since(start)
		e.stats.record(res.ProcessingTime, false)
		e.logger.Debug("rejected query", zap.Int("length", utf8.RuneCountInString(q)))
		return res
	}

	key := newCacheKey(q, opts)
	if cached, ok := e.cache.get(key, now); ok {
		e.stats.record(time.Since(start), true)
		e.history.add(HistoryItem{Query: q, Timestamp: now, ResultCount: cached.Total()})
		return cached.clone()
	}

	res := e.run(q, opts)
	res.ProcessingTime = time.Since(start)

	e.cache.put(key, res.clone(), now.Add(e.cfg.CacheTTL), now)
	e.stats.record(res.ProcessingTime, false)
	e.history.add(HistoryItem{Query: q, Timestamp: now, ResultCount: res.Total()})

	e.logger.Debug("search",
		zap.String("query", q),
		zap.String("tier", string(res.Tier)),
		zap.Int("exact", len(res.ExactMatches)),
		zap.Int("related", len(res.RelatedWords)),
		zap.Int("semantic", len(res.SemanticMatches)),
		zap.Duration("took", res.ProcessingTime),
	)
	return res
}

func (e *Engine) run(q string, opts Options) *Result {
	entries := e.candidates(opts.Domain)
	res := newResult(q)

	res.ExactMatches = append(res.ExactMatches, e.exactTier(entries, q)...)
	if len(res.ExactMatches) == 0 || opts.ForceRootTier || query.HasCompoundHint(q) {
		res.RelatedWords = append(res.RelatedWords, rootTier(entries, q)...)
	}
	res.SemanticMatches = append(res.SemanticMatches, e.semanticTier(entries, q)...)

	switch {
	case len(res.ExactMatches) > 0:
		res.Tier = TierExact
	case len(res.RelatedWords) > 0:
		res.Tier = TierRoot
	case len(res.SemanticMatches) > 0:
		res.Tier = TierSemantic
	default:
		res.Tier = TierNone
	}

	res.ExactMatches = limit(res.ExactMatches, opts.Limit)
	res.RelatedWords = limit(res.RelatedWords, opts.Limit)
	res.SemanticMatches = limit(res.SemanticMatches, opts.Limit)
	return res
}

func newResult(q string) *Result {
	return &Result{
		Query:           q,
		ExactMatches:    []Match{},
		RelatedWords:    []Match{},
		SemanticMatches: []Match{},
	}
}

func (e *Engine) candidates(d lexicon.Domain) []lexicon.Entry {
	if strings.TrimSpace(string(d)) == "" {
		return e.collection.Entries()
	}
	return e.collection.ByDomain(d)
}

// exactTier ranks field equality at 1.0 above containment.
func (e *Engine) exactTier(entries []lexicon.Entry, q string) []Match {
	var out []Match
	for _, entry := range entries {
		switch entry.Match(q, false) {
		case lexicon.MatchExact:
			out = append(out, Match{Entry: entry, Confidence: 1.0})
		case lexicon.MatchContains:
			out = append(out, Match{Entry: entry, Confidence: e.cfg.ContainmentConfidence})
		}
	}
	rank(out)
	return out
}

// rootTier scores compounds by the share of their roots named in the query.
func rootTier(entries []lexicon.Entry, q string) []Match {
	tokens := make(map[string]bool)
	for _, p := range query.Parts(q) {
		tokens[p] = true
	}
	if len(tokens) == 0 {
		return nil
	}

	var out []Match
	for _, entry := range entries {
		roots := entry.Roots()
		if len(roots) == 0 {
			continue
		}
		matched := 0
		for _, r := range roots {
			if tokens[strings.ToLower(r)] {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, Match{
			Entry:        entry,
			Confidence:   clamp(float64(matched)/float64(len(roots)), 0, 1),
			MatchedRoots: matched,
		})
	}
	rank(out)
	return out
}

// semanticTier keeps every entry with keyword overlap. A query token naming the entry's
// domain adds the configured bonus.
func (e *Engine) semanticTier(entries []lexicon.Entry, q string) []Match {
	tokens := lexicon.Tokenize(q)
	var out []Match
	for _, entry := range entries {
		score := entry.SemanticScore(q)
		if score <= 0 {
			continue
		}
		domain := strings.ToLower(string(entry.Domain))
		for _, t := range tokens {
			if t == domain {
				score += e.cfg.DomainBonus
				break
			}
		}
		out = append(out, Match{Entry: entry, Confidence: clamp(score, 0, 1)})
	}
	rank(out)
	return out
}

// rank orders by confidence, then roots matched, then shorter word, then word.
func rank(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.MatchedRoots != b.MatchedRoots {
			return a.MatchedRoots > b.MatchedRoots
		}
		la, lb := utf8.RuneCountInString(a.Entry.Word), utf8.RuneCountInString(b.Entry.Word)
		if la != lb {
			return la < lb
		}
		return a.Entry.Word < b.Entry.Word
	})
}

func limit(ms []Match, n int) []Match {
	if n > 0 && len(ms) > n {
		return ms[:n]
	}
	return ms
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (r *Result) clone() *Result {
	out := *r
	out.ExactMatches = slices.Clone(r.ExactMatches)
	out.RelatedWords = slices.Clone(r.RelatedWords)
	out.SemanticMatches = slices.Clone(r.SemanticMatches)
	return &out
}
