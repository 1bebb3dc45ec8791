package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap/zaptest"
)

func sourceOf(previews ...string) *StaticSource {
	s := &StaticSource{}
	for i, p := range previews {
		s.Messages = append(s.Messages, core.NewMessage("sender", p, "", "/m/"+string(rune('a'+i))))
	}
	return s
}

func loaded(t *testing.T, src Source) *List {
	t.Helper()
	l := NewList(src, zaptest.NewLogger(t))
	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return l
}

func order(l *List) []string {
	var out []string
	for _, m := range l.Items() {
		out = append(out, m.Preview)
	}
	return out
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestArrangeKeepsIndicatorFirst(t *testing.T) {
	l := loaded(t, sourceOf("a", "b", "c"))

	moves, err := l.Arrange([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if moves != 1 {
		t.Fatalf("expected a single move, got %d", moves)
	}
	if got := order(l); !sameOrder(got, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if nodes := l.Nodes(); !nodes[0].Indicator {
		t.Fatal("indicator should stay the first node")
	}
}

func TestArrangeIdentitySkipsMoves(t *testing.T) {
	l := loaded(t, sourceOf("a", "b", "c"))

	moves, err := l.Arrange([]int{0, 1, 2})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if moves != 0 {
		t.Fatalf("expected no moves for an ordered list, got %d", moves)
	}
}

func TestArrangeRejectsBadPermutation(t *testing.T) {
	l := loaded(t, sourceOf("a", "b"))
	if _, err := l.Arrange([]int{0}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := l.Arrange([]int{0, 5}); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestObserverSuspension(t *testing.T) {
	l := loaded(t, sourceOf("a", "b"))
	var seen []Mutation
	l.Observe(func(m Mutation) { seen = append(seen, m) })

	l.Suspend()
	if _, err := l.Arrange([]int{1, 0}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("suspended observer received %d mutations", len(seen))
	}

	l.Resume()
	if _, err := l.Arrange([]int{1, 0}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if len(seen) != 1 || seen[0].Kind != MutationMove {
		t.Fatalf("expected one move mutation, got %+v", seen)
	}
}

func TestSetVisibilityAndClear(t *testing.T) {
	l := loaded(t, sourceOf("spam", "ok"))

	hidden := l.SetVisibility(func(m core.Message) bool { return m.Preview == "spam" })
	if hidden != 1 {
		t.Fatalf("expected 1 hidden item, got %d", hidden)
	}
	nodes := l.Nodes()
	if !nodes[1].Hidden || nodes[2].Hidden {
		t.Fatalf("unexpected visibility: %+v", nodes)
	}

	l.ClearOverrides()
	for _, n := range l.Nodes() {
		if n.Hidden {
			t.Fatal("ClearOverrides left a hidden item")
		}
	}
}

func TestSyncInsertsNewItemsOnTop(t *testing.T) {
	src := sourceOf("a", "b")
	l := loaded(t, src)
	if _, err := l.Arrange([]int{1, 0}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}

	src.Messages = append([]core.Message{core.NewMessage("sender", "new", "", "/m/new")}, src.Messages[1:]...)
	added, err := l.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 new item, got %d", added)
	}
	if got := order(l); !sameOrder(got, []string{"new", "b"}) {
		t.Fatalf("unexpected order after sync %v", got)
	}
}

func TestReply(t *testing.T) {
	l := loaded(t, sourceOf("a"))
	r := NewResponder(l, zaptest.NewLogger(t))

	if err := r.SendResponse(context.Background(), "/m/a", "thanks"); err != nil {
		t.Fatalf("SendResponse: %v", err)
	}
	if got := l.Nodes()[1].Replies; len(got) != 1 || got[0] != "thanks" {
		t.Fatalf("unexpected replies %v", got)
	}
	if err := r.SendResponse(context.Background(), "/m/zzz", "x"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

type lateSource struct {
	calls int
	ready int
}

func (s *lateSource) Scan(context.Context) ([]core.Message, error) {
	s.calls++
	if s.calls < s.ready {
		return nil, ErrContainerMissing
	}
	return []core.Message{core.NewMessage("x", "hello", "", "")}, nil
}

func TestWaitForListRetries(t *testing.T) {
	src := &lateSource{ready: 3}
	l, err := WaitForList(context.Background(), src, time.Millisecond, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("WaitForList: %v", err)
	}
	if src.calls != 3 || l.Len() != 1 {
		t.Fatalf("calls=%d len=%d", src.calls, l.Len())
	}
}

func TestWaitForListHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := WaitForList(ctx, &lateSource{ready: 1 << 30}, 5*time.Millisecond, zaptest.NewLogger(t))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
