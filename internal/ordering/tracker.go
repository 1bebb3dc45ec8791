// Package ordering computes target orders for the conversation list.
// Nothing here touches the live list; see package view for that.
package ordering

import (
	"math"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
)

// Last is returned by Lookup for identities absent at capture time
const Last = math.MaxInt

// Tracker records the original position of every item before a sort
type Tracker struct {
	entries map[string][]recorded
	count   int
}

type recorded struct {
	preview string
	pos     int
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string][]recorded)}
}

// Record clears the previous snapshot and captures items in their current
// order. Repeated identities keep one position per occurrence.
func (t *Tracker) Record(items []core.Message) {
	t.entries = make(map[string][]recorded, len(items))
	for i, item := range items {
		t.entries[item.Identity] = append(t.entries[item.Identity], recorded{preview: item.Preview, pos: i})
	}
	t.count = len(items)
}

// Lookup returns the first recorded index of identity, or Last
func (t *Tracker) Lookup(identity string) int {
	if e := t.entries[identity]; len(e) > 0 {
		return e[0].pos
	}
	return Last
}

// Positions returns the recorded index of every item. Items sharing an
// identity are paired with recorded occurrences by full preview first, then
// in order of appearance. Surplus occurrences get Last.
func (t *Tracker) Positions(items []core.Message) []int {
	out := make([]int, len(items))
	for i := range out {
		out[i] = Last
	}
	assigned := make([]bool, len(items))
	taken := make(map[string][]bool)

	for _, exact := range []bool{true, false} {
		for i, item := range items {
			if assigned[i] {
				continue
			}
			entries := t.entries[item.Identity]
			used := taken[item.Identity]
			if used == nil {
				used = make([]bool, len(entries))
				taken[item.Identity] = used
			}
			for j, e := range entries {
				if used[j] || (exact && e.preview != item.Preview) {
					continue
				}
				used[j] = true
				out[i] = e.pos
				assigned[i] = true
				break
			}
		}
	}
	return out
}

// Len returns the number of recorded items
func (t *Tracker) Len() int {
	return t.count
}

// Clear drops the snapshot
func (t *Tracker) Clear() {
	t.entries = make(map[string][]recorded)
	t.count = 0
}
