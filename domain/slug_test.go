package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "lake-house", Slugify("Lake House"))
	assert.Equal(t, "annas-cabin-2", Slugify("Anna's Cabin #2"))
	assert.Equal(t, "chalet", Slugify("  Chalet  "))
	assert.Equal(t, "a-b-c", Slugify("a---b___c"))
}

func TestNextAvailableSlug_NoCollision(t *testing.T) {
	assert.Equal(t, "lake-house", NextAvailableSlug("lake-house", nil))
}

func TestNextAvailableSlug_FirstCollision(t *testing.T) {
	slug := NextAvailableSlug("lake-house", []string{"lake-house"})
	assert.Equal(t, "lake-house-1", slug)
}

func TestNextAvailableSlug_Sequence(t *testing.T) {
	existing := []string{"lake-house"}
	for _, want := range []string{"lake-house-1", "lake-house-2", "lake-house-3"} {
		got := NextAvailableSlug("lake-house", existing)
		assert.Equal(t, want, got)
		existing = append(existing, got)
	}
}

func TestNextAvailableSlug_NeverReusesDeletedSuffix(t *testing.T) {
	// lake-house-1 was deleted; the allocator extrapolates from the highest
	// surviving suffix instead of filling the gap.
	slug := NextAvailableSlug("lake-house", []string{"lake-house", "lake-house-2"})
	assert.Equal(t, "lake-house-3", slug)
}

func TestNextAvailableSlug_NaturalOrder(t *testing.T) {
	// Lexicographic sorting would pick name-9 as the highest and yield
	// name-10 twice; natural ordering must see name-10 on top.
	slug := NextAvailableSlug("name", []string{"name", "name-9", "name-10"})
	assert.Equal(t, "name-11", slug)
}

func TestNextAvailableSlug_InputOrderIrrelevant(t *testing.T) {
	slug := NextAvailableSlug("name", []string{"name-2", "name", "name-1"})
	assert.Equal(t, "name-3", slug)
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("name-2", "name-10"))
	assert.False(t, naturalLess("name-10", "name-2"))
	assert.True(t, naturalLess("name", "name-1"))
}
