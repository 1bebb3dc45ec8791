package ordering

import (
	"cmp"
	"slices"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
)

// Priority is 1 for items whose preview is in the high set, else 0
func Priority(item core.Message, high map[string]bool) int {
	if high[item.Preview] {
		return 1
	}
	return 0
}

// PriorityIndices returns the permutation that stably sorts items by
// descending priority. Element i of the result is an index into items.
func PriorityIndices(items []core.Message, high map[string]bool) []int {
	return stableIndices(len(items), func(a, b int) int {
		return cmp.Compare(Priority(items[b], high), Priority(items[a], high))
	})
}

// RestoreIndices returns the permutation that stably sorts items by their
// recorded position. Items the tracker never saw keep their relative order
// at the end.
func RestoreIndices(items []core.Message, tracker *Tracker) []int {
	positions := tracker.Positions(items)
	return stableIndices(len(items), func(a, b int) int {
		return cmp.Compare(positions[a], positions[b])
	})
}

// PriorityOrder returns a copy of items in priority order
func PriorityOrder(items []core.Message, high map[string]bool) []core.Message {
	return Permute(items, PriorityIndices(items, high))
}

// RestoreOrder returns a copy of items in recorded order
func RestoreOrder(items []core.Message, tracker *Tracker) []core.Message {
	return Permute(items, RestoreIndices(items, tracker))
}

// Permute returns items rearranged so that result[i] = items[perm[i]]
func Permute[T any](items []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, p := range perm {
		out[i] = items[p]
	}
	return out
}

func stableIndices(n int, compare func(a, b int) int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, compare)
	return idx
}
