package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"fidakune/internal/query"
)

// Separator joins the roots of a compound word.
const Separator = "-"

// Type distinguishes simple words from compounds. It is always derived from the word.
type Type string

const (
	TypeSimple   Type = "simple"
	TypeCompound Type = "compound"
)

// MatchKind grades how a query matched an entry field.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchContains
	MatchExact
)

var ErrInvalidEntry = errors.New("invalid entry")

// Entry is one vocabulary record.
type Entry struct {
	Word          string
	Pronunciation string
	Definition    string
	Domain        Domain
	Examples      []string
	Etymology     string
}

// Classification is the derived shape of a word.
type Classification struct {
	Type  Type
	Roots []string
}

// Classify splits word on the compound separator.
func Classify(word string) Classification {
	word = strings.TrimSpace(word)
	if !strings.Contains(word, Separator) {
		return Classification{Type: TypeSimple, Roots: []string{}}
	}
	parts := strings.Split(word, Separator)
	roots := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roots = append(roots, p)
		}
	}
	return Classification{Type: TypeCompound, Roots: roots}
}

// NewEntry builds a normalized entry, deriving the pronunciation when it is missing.
func NewEntry(word, definition string, domain Domain, examples ...string) Entry {
	e := Entry{
		Word:       strings.TrimSpace(word),
		Definition: strings.TrimSpace(definition),
		Domain:     canonicalDomain(string(domain)),
		Examples:   slices.Clone(examples),
	}
	e.Pronunciation = GeneratePronunciation(e.Word)
	return e
}

func (e Entry) Type() Type {
	return Classify(e.Word).Type
}

// Roots returns the ordered roots of a compound, or an empty slice for simple words.
func (e Entry) Roots() []string {
	return Classify(e.Word).Roots
}

func (e Entry) IsCompound() bool {
	return e.Type() == TypeCompound
}

// IsValid reports whether word, definition and domain are set and a compound has roots.
func (e Entry) IsValid() bool {
	return e.Validate() == nil
}

func (e Entry) Validate() error {
	var missing []string
	if strings.TrimSpace(e.Word) == "" {
		missing = append(missing, "word")
	}
	if strings.TrimSpace(e.Definition) == "" {
		missing = append(missing, "definition")
	}
	if strings.TrimSpace(string(e.Domain)) == "" {
		missing = append(missing, "domain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w %q: missing %s", ErrInvalidEntry, e.Word, strings.Join(missing, ", "))
	}
	if e.IsCompound() && len(e.Roots()) == 0 {
		return fmt.Errorf("%w %q: compound without roots", ErrInvalidEntry, e.Word)
	}
	return nil
}

// IsPhonologicallyValid reports whether every letter of the word belongs to the phoneme inventory.
func (e Entry) IsPhonologicallyValid() bool {
	return IsPhonologicallyValid(e.Word)
}

// Match grades q against the word and definition, and against the roots when includeRoots is set.
// Comparison is case-insensitive; field equality beats containment.
func (e Entry) Match(q string, includeRoots bool) MatchKind {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return MatchNone
	}
	fields := []string{e.Word, e.Definition}
	if includeRoots {
		fields = append(fields, e.Roots()...)
	}
	best := MatchNone
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		switch {
		case f == q:
			return MatchExact
		case strings.Contains(f, q):
			best = MatchContains
		}
	}
	return best
}

// MatchesQuery is a case-insensitive containment check over word, definition and roots.
func (e Entry) MatchesQuery(q string) bool {
	return e.Match(q, true) != MatchNone
}

// SemanticScore measures keyword overlap between q and the entry's definition and domain.
// Each query token scores 2 for an exact keyword hit and 1 for a partial one; the sum is
// normalized by twice the number of query tokens. A definition containing the whole query
// string scores 1.
func (e Entry) SemanticScore(q string) float64 {
	tokens := Tokenize(q)
	if len(tokens) == 0 {
		return 0
	}
	if strings.Contains(strings.ToLower(e.Definition), query.Normalize(q)) {
		return 1
	}
	keywords := Tokenize(e.Definition + " " + string(e.Domain))
	if len(keywords) == 0 {
		return 0
	}

	exact := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		exact[k] = true
	}

	seen := make(map[string]bool, len(tokens))
	points, total := 0, 0
	for _, qt := range tokens {
		if seen[qt] {
			continue
		}
		seen[qt] = true
		total++
		if exact[qt] {
			points += 2
			continue
		}
		for _, k := range keywords {
			if partialOverlap(qt, k) {
				points++
				break
			}
		}
	}
	return min(1, float64(points)/float64(2*total))
}

// Tokenize lowercases s and splits it into keyword tokens of at least two characters.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func partialOverlap(a, b string) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	return strings.Contains(b, a) || strings.Contains(a, b)
}

func (e Entry) clone() Entry {
	e.Examples = slices.Clone(e.Examples)
	return e
}

type entryJSON struct {
	Word          string   `json:"word"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Definition    string   `json:"definition,omitempty"`
	Meaning       string   `json:"meaning,omitempty"`
	Domain        Domain   `json:"domain"`
	Type          Type     `json:"type,omitempty"`
	Roots         []string `json:"roots"`
	Examples      []string `json:"examples,omitempty"`
	Etymology     string   `json:"etymology,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	c := Classify(e.Word)
	return json.Marshal(entryJSON{
		Word:          e.Word,
		Pronunciation: e.Pronunciation,
		Definition:    e.Definition,
		Domain:        e.Domain,
		Type:          c.Type,
		Roots:         c.Roots,
		Examples:      e.Examples,
		Etymology:     e.Etymology,
	})
}

// etymologyNote matches a trailing "(compound: ...)" or "(idiom: ...)" in legacy glosses.
var etymologyNote = regexp.MustCompile(`^(.*?)\s*\(((?:compound|idiom)\s*:[^)]*)\)\s*$`)

// UnmarshalJSON accepts the current record shape and the legacy one that carries the gloss in
// "meaning". Stored type and roots are ignored and re-derived from the word.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	definition := strings.TrimSpace(raw.Definition)
	etymology := strings.TrimSpace(raw.Etymology)
	if definition == "" {
		definition = strings.TrimSpace(raw.Meaning)
		if m := etymologyNote.FindStringSubmatch(definition); m != nil && etymology == "" {
			definition = strings.TrimSpace(m[1])
			etymology = strings.TrimSpace(m[2])
		}
	}

	*e = Entry{
		Word:          strings.TrimSpace(raw.Word),
		Pronunciation: strings.TrimSpace(raw.Pronunciation),
		Definition:    definition,
		Domain:        canonicalDomain(string(raw.Domain)),
		Examples:      raw.Examples,
		Etymology:     etymology,
	}
	if e.Pronunciation == "" {
		e.Pronunciation = GeneratePronunciation(e.Word)
	}
	return nil
}
