package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollection() *Collection {
	return NewCollection([]Entry{
		NewEntry("kore", "heart", DomainBody),
		NewEntry("pet", "stone", DomainNature),
		NewEntry("kore-pet", "grief", DomainEmotion),
		NewEntry("kore-lumo", "joy", DomainEmotion),
	})
}

func TestCollection_Lookups(t *testing.T) {
	c := testCollection()
	assert.Equal(t, 4, c.Len())

	e, ok := c.Get("KORE")
	require.True(t, ok)
	assert.Equal(t, "heart", e.Definition)

	_, ok = c.Get("aqua")
	assert.False(t, ok)

	derived := c.DerivedWords("kore")
	require.Len(t, derived, 2)
	assert.Equal(t, "kore-pet", derived[0].Word)
	assert.Equal(t, "kore-lumo", derived[1].Word)

	found, missing := c.Roots("kore-lumo")
	require.Len(t, found, 1)
	assert.Equal(t, "kore", found[0].Word)
	assert.Equal(t, []string{"lumo"}, missing)

	assert.Len(t, c.ByDomain(DomainEmotion), 2)
	assert.Len(t, c.ByDomain("nature"), 1)
}

func TestCollection_EntriesAreCopies(t *testing.T) {
	src := []Entry{NewEntry("kore", "heart", DomainBody, "example")}
	c := NewCollection(src)
	src[0].Examples[0] = "changed"

	got := c.Entries()
	assert.Equal(t, "example", got[0].Examples[0])
	got[0].Examples[0] = "changed again"

	again, _ := c.Get("kore")
	assert.Equal(t, "example", again.Examples[0])
}

func TestCollection_FindByPattern(t *testing.T) {
	c := testCollection()

	got, err := c.FindByPattern("^KORE-")
	require.NoError(t, err)
	assert.Equal(t, []string{"kore-pet", "kore-lumo"}, wordsOf(got))

	// Pronunciations are searched too: only the transcriptions carry the flap.
	got, err = c.FindByPattern("ɾe\\.")
	require.NoError(t, err)
	assert.Equal(t, []string{"kore-pet", "kore-lumo"}, wordsOf(got))

	got, err = c.FindByPattern("^pe")
	require.NoError(t, err)
	assert.Equal(t, []string{"pet"}, wordsOf(got))

	got, err = c.FindByPattern("zzz")
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"(", "[a-", " "} {
		_, err = c.FindByPattern(bad)
		assert.ErrorIs(t, err, ErrInvalidPattern, bad)
	}
}

func wordsOf(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}

func TestLoadCollection_RejectsInvalidEntry(t *testing.T) {
	_, err := LoadCollection([]Entry{NewEntry("kore", "heart", DomainBody), NewEntry("pet", "", DomainNature)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	c, err := LoadCollection(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestValidate_DuplicatesAndHomophones(t *testing.T) {
	c := NewCollection([]Entry{
		NewEntry("kore", "heart", DomainBody),
		NewEntry("KORE", "core", DomainObject),
		{Word: "tiru", Pronunciation: "/tiɾu/", Definition: "pull", Domain: DomainAction},
		{Word: "tiro", Pronunciation: "/ˈti.ɾu/", Definition: "throw", Domain: DomainAction},
		NewEntry("pet", "stone", DomainNature),
	})

	conflicts := c.Conflicts()
	require.Len(t, conflicts, 2)

	assert.Equal(t, ConflictDuplicate, conflicts[0].Type)
	assert.Len(t, conflicts[0].Entries, 2)
	assert.Equal(t, "kore", conflicts[0].Detail)

	assert.Equal(t, ConflictHomophone, conflicts[1].Type)
	assert.Equal(t, "tiru", conflicts[1].Entries[0].Word)
	assert.Equal(t, "tiro", conflicts[1].Entries[1].Word)
}

func TestValidate_OptionalChecks(t *testing.T) {
	c := NewCollection([]Entry{
		NewEntry("korema", "ember", DomainNature),
		NewEntry("korima", "embers", DomainNature),
		NewEntry("aqua-lumo", "dawn", DomainTime),
	})

	assert.Empty(t, c.Conflicts())

	conflicts := Validate(c, ValidateOptions{MissingRoots: true, SimilarityThreshold: DefaultSimilarityThreshold})
	counts := CountByType(conflicts)
	assert.Equal(t, 2, counts[ConflictMissingRoot])
	assert.Equal(t, 1, counts[ConflictSimilarPronunciation])
	assert.Equal(t, []ConflictType{ConflictMissingRoot, ConflictSimilarPronunciation}, SortedTypes(counts))
}

func TestValidate_EmptyCollection(t *testing.T) {
	assert.Empty(t, NewCollection(nil).Conflicts())
}

func TestStatistics(t *testing.T) {
	st := testCollection().Statistics()

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Simple)
	assert.Equal(t, 2, st.Compound)
	assert.Equal(t, 2, st.Domains[DomainEmotion])
	assert.InDelta(t, 2.0, st.AverageCompoundRoots, 0.0001)
	require.Len(t, st.ProductiveRoots, 3)
	assert.Equal(t, RootCount{Root: "kore", Count: 2}, st.ProductiveRoots[0])
	assert.Equal(t, "lumo", st.ProductiveRoots[1].Root)
}

func TestReviewProposal(t *testing.T) {
	c := NewCollection([]Entry{
		NewEntry("kore", "heart", DomainBody),
		NewEntry("pet", "stone", DomainNature),
	})

	r := ReviewProposal(NewEntry("kore-pet", "grief", DomainEmotion), c)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, RecommendApprove, r.Recommendation, "%+v", r.Checks)

	r = ReviewProposal(NewEntry("kore", "core", DomainObject), c)
	assert.Equal(t, RecommendReject, r.Recommendation)

	r = ReviewProposal(NewEntry("kore-tama", "longing", DomainEmotion), c)
	assert.Equal(t, RecommendReview, r.Recommendation)
	assert.Equal(t, StatusWarning, checkByName(r, "roots").Status)

	r = ReviewProposal(NewEntry("pet-lumo", "grief", DomainTechnology), c)
	assert.Equal(t, StatusWarning, checkByName(r, "domain").Status)

	r = ReviewProposal(NewEntry("stone", "stone", DomainNature), c)
	assert.Equal(t, RecommendReject, r.Recommendation)
	assert.Equal(t, StatusFail, checkByName(r, "phonotactics").Status)
}

func checkByName(r Review, name string) Check {
	for _, ch := range r.Checks {
		if ch.Name == name {
			return ch
		}
	}
	return Check{}
}
