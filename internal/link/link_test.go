package link

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Alice", "alice"},
		{"space to hyphen", "Amina Kone", "amina-kone"},
		{"whitespace run collapses", "a  \t b", "a-b"},
		{"strips accents entirely", "Amina Koné", "amina-kon"},
		{"strips symbols", "jo!hn@doe", "johndoe"},
		{"no leading hyphen", "  alice", "alice"},
		{"no trailing hyphen", "alice  ", "alice"},
		{"all stripped", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	// Scenario from the registration flow: accented display name.
	pattern := regexp.MustCompile(`^amina-kon[e]?-[a-z0-9]{5}$`)
	got := g.Generate("Amina Koné")
	assert.Regexp(t, pattern, got)
}

func TestGenerate_DistinctForSameName(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		l := g.Generate("Amina Koné")
		assert.False(t, seen[l], "generated duplicate link %q", l)
		seen[l] = true
	}
}

func TestGenerate_EmptyName(t *testing.T) {
	g := NewGenerator()

	// A display name that slugs to nothing still yields a usable suffix.
	got := g.Generate("!!!")
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{5}$`), got)
}
