package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "classic-tee", Slugify("Classic Tee"))
	assert.Equal(t, "limited-edition-2024", Slugify("  Limited Edition 2024! "))
	assert.Equal(t, "a-b-c", Slugify("a---b___c"))
	assert.Equal(t, "", Slugify("!!!"))
}
