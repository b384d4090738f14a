package catalog

import (
	"github.com/sahilm/fuzzy"
)

type rankSource[T any] struct {
	items []T
	key   func(T) string
}

func (s rankSource[T]) String(i int) string { return s.key(s.items[i]) }
func (s rankSource[T]) Len() int            { return len(s.items) }

// rank orders items by how well key matches pattern. With keep, items that do
// not match follow the matches in their original order; otherwise they are dropped.
func rank[T any](pattern string, items []T, key func(T) string, keep bool) []T {
	if pattern == "" {
		return items
	}
	matches := fuzzy.FindFrom(pattern, rankSource[T]{items: items, key: key})
	out := make([]T, 0, len(items))
	seen := make([]bool, len(items))
	for _, m := range matches {
		out = append(out, items[m.Index])
		seen[m.Index] = true
	}
	for i, it := range items {
		if keep && !seen[i] {
			out = append(out, it)
		}
	}
	return out
}
