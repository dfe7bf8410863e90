package lexicon

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern reports a word pattern that is not a valid regular expression.
var ErrInvalidPattern = errors.New("invalid pattern")

// Collection is an immutable, ordered set of entries with lookup indices.
type Collection struct {
	entries []Entry
	byWord  map[string]int
	derived map[string][]int
}

// NewCollection copies entries in order. Later duplicates stay in the collection for the
// validator to report, but Get resolves to the first occurrence.
func NewCollection(entries []Entry) *Collection {
	c := &Collection{
		entries: make([]Entry, len(entries)),
		byWord:  make(map[string]int, len(entries)),
		derived: make(map[string][]int),
	}
	for i, e := range entries {
		c.entries[i] = e.clone()
		key := strings.ToLower(e.Word)
		if _, ok := c.byWord[key]; !ok {
			c.byWord[key] = i
		}
		for _, root := range e.Roots() {
			r := strings.ToLower(root)
			c.derived[r] = append(c.derived[r], i)
		}
	}
	return c
}

// LoadCollection validates every entry and refuses the whole set when one is invalid.
func LoadCollection(entries []Entry) (*Collection, error) {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return NewCollection(entries), nil
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of all entries in load order.
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Get looks a word up case-insensitively.
func (c *Collection) Get(word string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byWord[strings.ToLower(strings.TrimSpace(word))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].clone(), true
}

func (c *Collection) ByDomain(d Domain) []Entry {
	if c == nil {
		return nil
	}
	var out []Entry
	for _, e := range c.entries {
		if strings.EqualFold(string(e.Domain), string(d)) {
			out = append(out, e.clone())
		}
	}
	return out
}

// DerivedWords returns the compounds built on root, in load order.
func (c *Collection) DerivedWords(root string) []Entry {
	if c == nil {
		return nil
	}
	idx := c.derived[strings.ToLower(strings.TrimSpace(root))]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.entries[i].clone())
	}
	return out
}

// Roots resolves the roots of word to their entries. Roots without an entry of their
// own are returned in missing.
func (c *Collection) Roots(word string) (found []Entry, missing []string) {
	for _, root := range Classify(word).Roots {
		if e, ok := c.Get(root); ok {
			found = append(found, e)
			continue
		}
		missing = append(missing, root)
	}
	return found, missing
}

// FindByPattern returns the entries whose word or pronunciation matches the regular
// expression expr, case-insensitively, in load order.
func (c *Collection) FindByPattern(expr string) ([]Entry, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if c == nil {
		return nil, nil
	}
	var out []Entry
	for _, e := range c.entries {
		if re.MatchString(e.Word) || re.MatchString(e.Pronunciation) {
			out = append(out, e.clone())
		}
	}
	return out, nil
}
