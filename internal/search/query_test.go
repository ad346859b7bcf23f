package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		expected string
	}{
		{
			name:     "title only",
			filters:  Filters{Title: "dune"},
			expected: "intitle:dune",
		},
		{
			name:     "author only",
			filters:  Filters{Author: "herbert"},
			expected: "inauthor:herbert",
		},
		{
			name:     "genre only",
			filters:  Filters{Genre: "science fiction"},
			expected: "subject:science fiction",
		},
		{
			name:     "all three in fixed order",
			filters:  Filters{Title: "dune", Author: "herbert", Genre: "sf"},
			expected: "intitle:dune+inauthor:herbert+subject:sf",
		},
		{
			name:     "values are trimmed",
			filters:  Filters{Title: "  dune  ", Author: " herbert "},
			expected: "intitle:dune+inauthor:herbert",
		},
		{
			name:     "all blank falls back to default term",
			filters:  Filters{},
			expected: DefaultQuery,
		},
		{
			name:     "whitespace-only counts as blank",
			filters:  Filters{Title: "   ", Author: "\t", Genre: " "},
			expected: DefaultQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildQuery(tt.filters))
		})
	}
}

func TestFilters_IsBlank(t *testing.T) {
	assert.True(t, Filters{}.IsBlank())
	assert.True(t, Filters{Title: "  "}.IsBlank())
	assert.False(t, Filters{Genre: "history"}.IsBlank())
}
