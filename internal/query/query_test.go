package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid("kore", 0))
	assert.True(t, Valid("  heavy heart? ", 0))
	assert.True(t, Valid("kore-pet", 0))
	assert.True(t, Valid("Ärger", 0))

	assert.False(t, Valid("", 0))
	assert.False(t, Valid("   ", 0))
	assert.False(t, Valid("<script>", 0))
	assert.False(t, Valid("kore;drop", 0))
	assert.False(t, Valid(strings.Repeat("a", 101), 0))
	assert.True(t, Valid(strings.Repeat("a", 100), 0))
	assert.False(t, Valid("kore-pet", 4))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kore pet", Normalize("  Kore PET\t"))
}

func TestHasCompoundHint(t *testing.T) {
	assert.True(t, HasCompoundHint("kore-pet"))
	assert.True(t, HasCompoundHint("kore pet"))
	assert.False(t, HasCompoundHint(" kore "))
}

func TestParts(t *testing.T) {
	assert.Equal(t, []string{"kore", "pet"}, Parts("Kore-Pet"))
	assert.Equal(t, []string{"kore", "pet", "lumo"}, Parts(" kore  pet, lumo?"))
}
