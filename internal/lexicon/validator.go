package lexicon

import (
	"sort"
	"strings"
)

type ConflictType string

const (
	ConflictDuplicate            ConflictType = "duplicate"
	ConflictHomophone            ConflictType = "homophone"
	ConflictMissingRoot          ConflictType = "missing_root"
	ConflictSimilarPronunciation ConflictType = "similar_pronunciation"
)

// Conflict is a soft consistency finding. It never blocks loading or searching.
type Conflict struct {
	Type    ConflictType `json:"type"`
	Entries []Entry      `json:"entries"`
	Detail  string       `json:"detail,omitempty"`
}

// ValidateOptions enables the checks beyond duplicates and homophones.
type ValidateOptions struct {
	MissingRoots bool
	// SimilarityThreshold reports near-homophones at or above this score. Zero disables it.
	SimilarityThreshold float64
}

// DefaultSimilarityThreshold is the near-homophone cut-off used by review tooling.
const DefaultSimilarityThreshold = 0.9

// Conflicts runs the duplicate and homophone checks.
func (c *Collection) Conflicts() []Conflict {
	return Validate(c, ValidateOptions{})
}

// Validate cross-checks the collection. It reports only; the collection is left untouched.
func Validate(c *Collection, opts ValidateOptions) []Conflict {
	if c.Len() == 0 {
		return nil
	}
	var out []Conflict
	out = append(out, duplicateConflicts(c.entries)...)
	out = append(out, homophoneConflicts(c.entries)...)
	if opts.MissingRoots {
		out = append(out, missingRootConflicts(c)...)
	}
	if opts.SimilarityThreshold > 0 {
		out = append(out, similarConflicts(c.entries, opts.SimilarityThreshold)...)
	}
	return out
}

func duplicateConflicts(entries []Entry) []Conflict {
	groups, order := groupBy(entries, func(e Entry) string { return strings.ToLower(e.Word) })
	var out []Conflict
	for _, key := range order {
		if g := groups[key]; len(g) > 1 {
			out = append(out, Conflict{Type: ConflictDuplicate, Entries: g, Detail: key})
		}
	}
	return out
}

func homophoneConflicts(entries []Entry) []Conflict {
	groups, order := groupBy(entries, func(e Entry) string { return NormalizePronunciation(e.Pronunciation) })
	var out []Conflict
	for _, key := range order {
		g := groups[key]
		if key == "" || len(g) < 2 {
			continue
		}
		words := make(map[string]bool, len(g))
		for _, e := range g {
			words[strings.ToLower(e.Word)] = true
		}
		if len(words) < 2 {
			continue
		}
		out = append(out, Conflict{Type: ConflictHomophone, Entries: g, Detail: key})
	}
	return out
}

func missingRootConflicts(c *Collection) []Conflict {
	var out []Conflict
	for _, e := range c.entries {
		_, missing := c.Roots(e.Word)
		for _, root := range missing {
			out = append(out, Conflict{Type: ConflictMissingRoot, Entries: []Entry{e.clone()}, Detail: root})
		}
	}
	return out
}

func similarConflicts(entries []Entry, threshold float64) []Conflict {
	var out []Conflict
	for i := 0; i < len(entries); i++ {
		a := entries[i]
		pa := NormalizePronunciation(a.Pronunciation)
		for j := i + 1; j < len(entries); j++ {
			b := entries[j]
			if strings.EqualFold(a.Word, b.Word) || pa == NormalizePronunciation(b.Pronunciation) {
				continue
			}
			if Similarity(a.Pronunciation, b.Pronunciation) >= threshold {
				out = append(out, Conflict{
					Type:    ConflictSimilarPronunciation,
					Entries: []Entry{a.clone(), b.clone()},
				})
			}
		}
	}
	return out
}

// groupBy buckets entries by key, keeping first-seen key order.
func groupBy(entries []Entry, key func(Entry) string) (map[string][]Entry, []string) {
	groups := make(map[string][]Entry)
	var order []string
	for _, e := range entries {
		k := key(e)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e.clone())
	}
	return groups, order
}

// CountByType summarizes conflicts for logging.
func CountByType(conflicts []Conflict) map[ConflictType]int {
	counts := make(map[ConflictType]int)
	for _, c := range conflicts {
		counts[c.Type]++
	}
	return counts
}

// SortedTypes returns the conflict types present in counts in a stable order.
func SortedTypes(counts map[ConflictType]int) []ConflictType {
	out := make([]ConflictType, 0, len(counts))
	for t := range counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
