package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhonologicallyValid(t *testing.T) {
	assert.True(t, IsPhonologicallyValid("kore"))
	assert.True(t, IsPhonologicallyValid("kore-pet"))
	assert.True(t, IsPhonologicallyValid("Sole"))
	assert.False(t, IsPhonologicallyValid("xylo"))
	assert.False(t, IsPhonologicallyValid("kor3"))
	assert.False(t, IsPhonologicallyValid(""))
	assert.False(t, IsPhonologicallyValid("-"))
}

func TestGeneratePronunciation(t *testing.T) {
	assert.Equal(t, "/koɾe/", GeneratePronunciation("kore"))
	assert.Equal(t, "/koɾe.pet/", GeneratePronunciation("kore-pet"))
	assert.Equal(t, "/yalu/", GeneratePronunciation("Jalu"))
	assert.Equal(t, "", GeneratePronunciation(" "))
}

func TestNormalizePronunciation(t *testing.T) {
	assert.Equal(t, "koɾepet", NormalizePronunciation("/ˈko.ɾe.pet/"))
	assert.Equal(t, NormalizePronunciation(GeneratePronunciation("korepet")), NormalizePronunciation(GeneratePronunciation("kore-pet")))
}

func TestCheckPhonotactics(t *testing.T) {
	tests := []struct {
		word      string
		status    Status
		syllables int
	}{
		{"kore", StatusPass, 2},
		{"kore-pet", StatusPass, 3},
		{"kopla-sta", StatusPass, 3},
		{"kopla-mta", StatusWarning, 3},
		{"-kore", StatusFail, 2},
		{"kore-", StatusFail, 2},
		{"kore--pet", StatusFail, 3},
		{"stal", StatusFail, 1},
		{"kant", StatusFail, 1},
		{"kostra", StatusFail, 2},
		{"krk", StatusFail, 0},
		{"kaxe", StatusFail, 2},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			rep := CheckPhonotactics(tt.word)
			assert.Equal(t, tt.status, rep.Status, "errors=%v warnings=%v", rep.Errors, rep.Warnings)
			assert.Equal(t, tt.syllables, rep.Syllables)
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("/koɾe/", "/koɾe/"), 0.0001)
	assert.InDelta(t, 1.0, Similarity("kore-pet", "korepet"), 0.0001)
	assert.InDelta(t, 2.0/3.0+0.1, Similarity("pet", "pat"), 0.0001)
	assert.InDelta(t, 0.0, Similarity("kore", ""), 0.0001)
	assert.InDelta(t, 1.0, Similarity("", ""), 0.0001)
}
