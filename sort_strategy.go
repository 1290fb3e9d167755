package main

import (
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Sort method constants
const (
	SortNatural    = iota // file1, file2, file10
	SortSimple            // lexicographical
	SortEntryOrder        // directory / archive order
)

var sortMethodNames = map[int]string{
	SortNatural:    "natural",
	SortSimple:     "simple",
	SortEntryOrder: "entry",
}

// parseSortMethod maps a config or flag value to a sort method.
func parseSortMethod(name string) (int, bool) {
	for id, n := range sortMethodNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return id, true
		}
	}
	return SortNatural, false
}

// SortStrategy orders scanned images.
type SortStrategy interface {
	// Sort returns a new sorted slice without modifying the original
	Sort(images []ImagePath) []ImagePath
	Name() string
	ID() int
}

type lessSortStrategy struct {
	id   int
	less func(a, b string) bool // nil keeps entry order
}

func (s lessSortStrategy) Sort(images []ImagePath) []ImagePath {
	result := slices.Clone(images)
	if result == nil {
		return []ImagePath{}
	}
	if s.less != nil {
		slices.SortStableFunc(result, func(a, b ImagePath) int {
			switch {
			case s.less(a.Path, b.Path):
				return -1
			case s.less(b.Path, a.Path):
				return 1
			default:
				return 0
			}
		})
	}
	return result
}

func (s lessSortStrategy) Name() string { return sortMethodNames[s.id] }

func (s lessSortStrategy) ID() int { return s.id }

// GetSortStrategy returns the appropriate strategy based on the sort method ID
func GetSortStrategy(sortMethod int) SortStrategy {
	switch sortMethod {
	case SortSimple:
		return lessSortStrategy{id: SortSimple, less: func(a, b string) bool { return a < b }}
	case SortEntryOrder:
		return lessSortStrategy{id: SortEntryOrder}
	default:
		return lessSortStrategy{id: SortNatural, less: natural.Less}
	}
}
