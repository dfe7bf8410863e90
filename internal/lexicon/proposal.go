package lexicon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ProposalSimilarityThreshold flags existing words that sound close to a proposed one.
const ProposalSimilarityThreshold = 0.8

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

type Check struct {
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Messages []string `json:"messages,omitempty"`
}

// Review is the outcome of checking a proposed entry against the collection.
type Review struct {
	ID             string         `json:"id"`
	Word           string         `json:"word"`
	Checks         []Check        `json:"checks"`
	Recommendation Recommendation `json:"recommendation"`
}

// ReviewProposal re-runs the entry, phonotactic and collection checks on a draft entry.
func ReviewProposal(draft Entry, c *Collection) Review {
	if draft.Pronunciation == "" {
		draft.Pronunciation = GeneratePronunciation(draft.Word)
	}
	r := Review{ID: uuid.NewString(), Word: draft.Word}

	r.Checks = append(r.Checks,
		checkCompleteness(draft),
		checkPhonotactics(draft),
		checkDuplicate(draft, c),
		checkRoots(draft, c),
		checkDomain(draft, c),
		checkPronunciation(draft, c),
	)

	r.Recommendation = RecommendApprove
	for _, ch := range r.Checks {
		switch ch.Status {
		case StatusFail:
			r.Recommendation = RecommendReject
			return r
		case StatusWarning:
			r.Recommendation = RecommendReview
		}
	}
	return r
}

func checkCompleteness(e Entry) Check {
	if err := e.Validate(); err != nil {
		return Check{Name: "completeness", Status: StatusFail, Messages: []string{err.Error()}}
	}
	return Check{Name: "completeness", Status: StatusPass}
}

func checkPhonotactics(e Entry) Check {
	rep := CheckPhonotactics(e.Word)
	return Check{
		Name:     "phonotactics",
		Status:   rep.Status,
		Messages: append(append([]string{}, rep.Errors...), rep.Warnings...),
	}
}

func checkDuplicate(e Entry, c *Collection) Check {
	if _, ok := c.Get(e.Word); ok {
		return Check{Name: "duplicate", Status: StatusFail, Messages: []string{fmt.Sprintf("%q already exists", e.Word)}}
	}
	return Check{Name: "duplicate", Status: StatusPass}
}

func checkRoots(e Entry, c *Collection) Check {
	if !e.IsCompound() {
		return Check{Name: "roots", Status: StatusPass}
	}
	_, missing := c.Roots(e.Word)
	if len(missing) > 0 {
		return Check{
			Name:     "roots",
			Status:   StatusWarning,
			Messages: []string{"roots without an entry: " + strings.Join(missing, ", ")},
		}
	}
	return Check{Name: "roots", Status: StatusPass}
}

func checkDomain(e Entry, c *Collection) Check {
	if !e.Domain.IsKnown() {
		return Check{Name: "domain", Status: StatusWarning, Messages: []string{fmt.Sprintf("unknown domain %q", e.Domain)}}
	}
	if !e.IsCompound() {
		return Check{Name: "domain", Status: StatusPass}
	}
	found, _ := c.Roots(e.Word)
	if len(found) == 0 {
		return Check{Name: "domain", Status: StatusPass}
	}
	var rootDomains []string
	for _, root := range found {
		if e.Domain.CompatibleWith(root.Domain) {
			return Check{Name: "domain", Status: StatusPass}
		}
		rootDomains = append(rootDomains, fmt.Sprintf("%s (%s)", root.Word, root.Domain))
	}
	return Check{
		Name:     "domain",
		Status:   StatusWarning,
		Messages: []string{fmt.Sprintf("%s is not derivable from %s", e.Domain, strings.Join(rootDomains, ", "))},
	}
}

func checkPronunciation(e Entry, c *Collection) Check {
	ch := Check{Name: "pronunciation", Status: StatusPass}
	if c == nil {
		return ch
	}
	own := NormalizePronunciation(e.Pronunciation)

	type near struct {
		word  string
		score float64
	}
	var nearby []near
	for _, other := range c.entries {
		if strings.EqualFold(other.Word, e.Word) {
			continue
		}
		if NormalizePronunciation(other.Pronunciation) == own {
			ch.Status = StatusFail
			ch.Messages = append(ch.Messages, fmt.Sprintf("homophone of %q", other.Word))
			continue
		}
		if s := Similarity(e.Pronunciation, other.Pronunciation); s >= ProposalSimilarityThreshold {
			nearby = append(nearby, near{word: other.Word, score: s})
		}
	}
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].score != nearby[j].score {
			return nearby[i].score > nearby[j].score
		}
		return nearby[i].word < nearby[j].word
	})
	for _, n := range nearby {
		ch.Messages = append(ch.Messages, fmt.Sprintf("sounds like %q (%.2f)", n.word, n.score))
	}
	if len(nearby) > 0 && ch.Status == StatusPass {
		ch.Status = StatusWarning
	}
	return ch
}
