// Package view is the adapter between the ordering logic and the live
// conversation list. All structural changes go through List so they can be
// observed.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// IndicatorID is the identity of the summary element pinned in the list
const IndicatorID = "inbox-prioritizer-indicator"

// ErrItemNotFound is returned when no item carries the requested link
var ErrItemNotFound = errors.New("conversation item not found")

// MutationKind describes a structural or style change of the list
type MutationKind int

const (
	MutationInsert MutationKind = iota
	MutationRemove
	MutationMove
	MutationStyle
	MutationReload
)

// Mutation is delivered to the observer for every change
type Mutation struct {
	Kind     MutationKind
	Identity string
}

// Source produces the items currently rendered by the host page
type Source interface {
	Scan(ctx context.Context) ([]core.Message, error)
}

// Node is one rendered element of the list
type Node struct {
	Item        core.Message
	Hidden      bool
	Highlighted bool
	Indicator   bool
	Replies     []string
}

// List is the live conversation list
type List struct {
	mu        sync.Mutex
	nodes     []*Node
	source    Source
	logger    *zap.Logger
	observer  func(Mutation)
	observing bool
}

// NewList creates a list fed by source. The summary indicator is pinned first.
func NewList(source Source, logger *zap.Logger) *List {
	return &List{
		nodes:  []*Node{{Item: core.Message{Identity: IndicatorID}, Indicator: true}},
		source: source,
		logger: logger,
	}
}

// Observe registers fn as the mutation observer and starts observing
func (l *List) Observe(fn func(Mutation)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = fn
	l.observing = true
}

// Suspend stops delivering mutations until Resume
func (l *List) Suspend() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observing = false
	l.logger.Debug("List observation suspended")
}

// Resume restarts mutation delivery
func (l *List) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observing = l.observer != nil
	l.logger.Debug("List observation resumed")
}

// Observing reports whether mutations are currently delivered
func (l *List) Observing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.observing
}

// Reload discards every node and rebuilds the list from the source
func (l *List) Reload(ctx context.Context) error {
	items, err := l.source.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan list source: %w", err)
	}

	l.mu.Lock()
	indicator := l.indicator()
	nodes := make([]*Node, 0, len(items)+1)
	if indicator != nil {
		nodes = append(nodes, indicator)
	}
	for _, item := range items {
		nodes = append(nodes, &Node{Item: item})
	}
	l.nodes = nodes
	notify := l.pending(Mutation{Kind: MutationReload})
	l.mu.Unlock()

	l.logger.Debug("List reloaded", zap.Int("items", len(items)))
	notify()
	return nil
}

// Sync merges a fresh scan into the list. Known items keep their node and
// position, vanished items are removed and new items are inserted at the top.
func (l *List) Sync(ctx context.Context) (added int, err error) {
	items, err := l.source.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan list source: %w", err)
	}

	l.mu.Lock()
	existing := make(map[string][]*Node)
	for _, n := range l.nodes {
		if !n.Indicator {
			existing[n.Item.Identity] = append(existing[n.Item.Identity], n)
		}
	}

	var fresh []*Node
	keep := make(map[*Node]bool)
	for _, item := range items {
		if queue := existing[item.Identity]; len(queue) > 0 {
			n := queue[0]
			existing[item.Identity] = queue[1:]
			n.Item = item
			keep[n] = true
			continue
		}
		fresh = append(fresh, &Node{Item: item})
	}

	var mutations []Mutation
	nodes := make([]*Node, 0, len(items)+1)
	inserted := false
	for _, n := range l.nodes {
		if !n.Indicator && !inserted {
			nodes = append(nodes, fresh...)
			inserted = true
		}
		if n.Indicator || keep[n] {
			nodes = append(nodes, n)
			continue
		}
		mutations = append(mutations, Mutation{Kind: MutationRemove, Identity: n.Item.Identity})
	}
	if !inserted {
		nodes = append(nodes, fresh...)
	}
	for _, n := range fresh {
		mutations = append(mutations, Mutation{Kind: MutationInsert, Identity: n.Item.Identity})
	}
	l.nodes = nodes
	notify := l.pending(mutations...)
	l.mu.Unlock()

	notify()
	return len(fresh), nil
}

// Items returns the conversation items in display order, indicator excluded
func (l *List) Items() []core.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]core.Message, 0, len(l.nodes))
	for _, n := range l.nodes {
		if !n.Indicator {
			items = append(items, n.Item)
		}
	}
	return items
}

// Nodes returns a snapshot of every node, indicator included
func (l *List) Nodes() []Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Node, len(l.nodes))
	for i, n := range l.nodes {
		out[i] = *n
	}
	return out
}

// Len returns the number of conversation items
func (l *List) Len() int {
	return len(l.Items())
}

// Arrange moves items so that item i ends up where Items()[perm[i]] was
// requested. Items already in place are not moved; the indicator is neither
// moved nor counted. It returns the number of moves performed.
func (l *List) Arrange(perm []int) (int, error) {
	l.mu.Lock()
	items := l.itemNodes()
	if len(perm) != len(items) {
		l.mu.Unlock()
		return 0, fmt.Errorf("permutation covers %d items, list has %d", len(perm), len(items))
	}
	targets := make([]*Node, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(items) {
			l.mu.Unlock()
			return 0, fmt.Errorf("permutation index %d out of range", p)
		}
		targets[i] = items[p]
	}

	moves := 0
	var mutations []Mutation
	for i, n := range targets {
		if l.itemIndex(n) == i {
			continue
		}
		l.moveTo(n, i)
		moves++
		mutations = append(mutations, Mutation{Kind: MutationMove, Identity: n.Item.Identity})
	}
	notify := l.pending(mutations...)
	l.mu.Unlock()

	notify()
	return moves, nil
}

// SetVisibility hides the items for which hide returns true and shows the rest
func (l *List) SetVisibility(hide func(core.Message) bool) (hidden int) {
	l.mu.Lock()
	var mutations []Mutation
	for _, n := range l.nodes {
		if n.Indicator {
			continue
		}
		h := hide(n.Item)
		if h {
			hidden++
		}
		if n.Hidden != h {
			n.Hidden = h
			mutations = append(mutations, Mutation{Kind: MutationStyle, Identity: n.Item.Identity})
		}
	}
	notify := l.pending(mutations...)
	l.mu.Unlock()

	notify()
	return hidden
}

// ClearOverrides makes every item visible again
func (l *List) ClearOverrides() {
	l.mu.Lock()
	var mutations []Mutation
	for _, n := range l.nodes {
		if n.Hidden {
			n.Hidden = false
			mutations = append(mutations, Mutation{Kind: MutationStyle, Identity: n.Item.Identity})
		}
	}
	notify := l.pending(mutations...)
	l.mu.Unlock()

	notify()
}

// Highlight marks the items whose preview is in the high set
func (l *List) Highlight(high map[string]bool) {
	l.mu.Lock()
	var mutations []Mutation
	for _, n := range l.nodes {
		if n.Indicator {
			continue
		}
		h := high[n.Item.Preview]
		if n.Highlighted != h {
			n.Highlighted = h
			mutations = append(mutations, Mutation{Kind: MutationStyle, Identity: n.Item.Identity})
		}
	}
	notify := l.pending(mutations...)
	l.mu.Unlock()

	notify()
}

// Reply records text as sent to the conversation with the given link
func (l *List) Reply(link, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range l.nodes {
		if !n.Indicator && n.Item.Link == link {
			n.Replies = append(n.Replies, text)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, link)
}

func (l *List) indicator() *Node {
	for _, n := range l.nodes {
		if n.Indicator {
			return n
		}
	}
	return nil
}

func (l *List) itemNodes() []*Node {
	out := make([]*Node, 0, len(l.nodes))
	for _, n := range l.nodes {
		if !n.Indicator {
			out = append(out, n)
		}
	}
	return out
}

// itemIndex is the position of n among the item nodes
func (l *List) itemIndex(n *Node) int {
	idx := 0
	for _, c := range l.nodes {
		if c.Indicator {
			continue
		}
		if c == n {
			return idx
		}
		idx++
	}
	return -1
}

// moveTo places n before the item currently at item position i
func (l *List) moveTo(n *Node, i int) {
	for k, c := range l.nodes {
		if c == n {
			l.nodes = append(l.nodes[:k], l.nodes[k+1:]...)
			break
		}
	}

	idx := 0
	for k, c := range l.nodes {
		if c.Indicator {
			continue
		}
		if idx == i {
			l.nodes = append(l.nodes[:k], append([]*Node{n}, l.nodes[k:]...)...)
			return
		}
		idx++
	}
	l.nodes = append(l.nodes, n)
}

// pending captures the mutations to deliver once the lock is released
func (l *List) pending(mutations ...Mutation) func() {
	if !l.observing || l.observer == nil || len(mutations) == 0 {
		return func() {}
	}
	fn := l.observer
	return func() {
		for _, m := range mutations {
			fn(m)
		}
	}
}
