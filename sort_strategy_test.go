package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imagePaths(paths ...string) []ImagePath {
	result := make([]ImagePath, 0, len(paths))
	for _, p := range paths {
		result = append(result, ImagePath{Path: p})
	}
	return result
}

func pathsToStrings(paths []ImagePath) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		result = append(result, p.Path)
	}
	return result
}

func TestSortStrategies(t *testing.T) {
	input := []string{"test/01.png", "test/04.jpg", "test/08.png", "test/09.png", "test/2.png", "test/３.png"}

	tests := []struct {
		name       string
		sortMethod int
		expected   []string
	}{
		{
			name:       "natural",
			sortMethod: SortNatural,
			expected:   []string{"test/01.png", "test/2.png", "test/04.jpg", "test/08.png", "test/09.png", "test/３.png"},
		},
		{
			name:       "simple",
			sortMethod: SortSimple,
			expected:   []string{"test/01.png", "test/04.jpg", "test/08.png", "test/09.png", "test/2.png", "test/３.png"},
		},
		{
			name:       "entry",
			sortMethod: SortEntryOrder,
			expected:   input,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := GetSortStrategy(tt.sortMethod)
			assert.Equal(t, tt.name, strategy.Name())
			assert.Equal(t, tt.sortMethod, strategy.ID())

			original := imagePaths(input...)
			result := strategy.Sort(original)
			assert.Equal(t, tt.expected, pathsToStrings(result))
			assert.Equal(t, input, pathsToStrings(original), "input slice must not be modified")
		})
	}
}

func TestSortStrategyEdgeCases(t *testing.T) {
	for _, id := range []int{SortNatural, SortSimple, SortEntryOrder} {
		strategy := GetSortStrategy(id)

		result := strategy.Sort(nil)
		require.NotNil(t, result, strategy.Name())
		assert.Empty(t, result)

		result = strategy.Sort(imagePaths("a.png", "a.png"))
		assert.Equal(t, []string{"a.png", "a.png"}, pathsToStrings(result))
	}
}

func TestGetSortStrategyFallback(t *testing.T) {
	assert.Equal(t, SortNatural, GetSortStrategy(999).ID())
}

func TestParseSortMethod(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"natural", SortNatural, true},
		{"Simple", SortSimple, true},
		{" entry ", SortEntryOrder, true},
		{"random", SortNatural, false},
		{"", SortNatural, false},
	}

	for _, tt := range tests {
		got, ok := parseSortMethod(tt.input)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}
}
