package session

import (
	"context"
	"testing"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/storage"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/view"
	"go.uber.org/zap/zaptest"
)

func newSession(t *testing.T, previews []string, high, spam []string) (*Session, *view.StaticSource) {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	src := &view.StaticSource{}
	for _, p := range previews {
		src.Messages = append(src.Messages, core.NewMessage("sender "+p, p, "", "/m/"+p))
	}

	store := storage.NewMemoryStore()
	groups := core.ClassifiedGroups{}
	for _, p := range high {
		groups.High = append(groups.High, core.Message{Preview: p, Label: core.LabelHigh})
	}
	for _, p := range spam {
		groups.Spam = append(groups.Spam, core.Message{Preview: p, Label: core.LabelSpam})
	}
	if err := core.SaveJSON(ctx, store, core.KeyClassifiedGroups, groups); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	list := view.NewList(src, logger)
	if err := list.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return New(list, store, logger), src
}

func previews(s *Session) []string {
	var out []string
	for _, m := range s.List().Items() {
		out = append(out, m.Preview)
	}
	return out
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestToggleSortRoundTrip(t *testing.T) {
	s, _ := newSession(t, []string{"a", "H1", "b", "H2"}, []string{"H1", "H2"}, nil)
	ctx := context.Background()

	state, err := s.ToggleSort(ctx)
	if err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	if !state.IsSorted || state.MessageCount != 4 {
		t.Fatalf("unexpected state %+v", state)
	}
	assertOrder(t, previews(s), []string{"H1", "H2", "a", "b"})
	if s.List().Observing() {
		t.Fatal("observation should be suspended while sorted")
	}
	if s.ObservedMutations() != 0 {
		t.Fatal("observer saw the reorderer's own moves")
	}

	state, err = s.ToggleSort(ctx)
	if err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	if state.IsSorted {
		t.Fatal("expected unsorted state")
	}
	assertOrder(t, previews(s), []string{"a", "H1", "b", "H2"})
	if !s.List().Observing() {
		t.Fatal("observation should resume after restore")
	}
}

func TestIncrementalSortKeepsSnapshot(t *testing.T) {
	s, src := newSession(t, []string{"a", "H1", "b"}, []string{"H1", "H2"}, nil)
	ctx := context.Background()

	if _, err := s.ToggleSort(ctx); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}

	src.Messages = append(src.Messages, core.NewMessage("sender H2", "H2", "", "/m/H2"))
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	assertOrder(t, previews(s), []string{"H2", "H1", "a", "b"})

	if _, err := s.ToggleSort(ctx); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	assertOrder(t, previews(s), []string{"a", "H1", "b", "H2"})
}

func TestIncrementalSortNoopWhenUnsorted(t *testing.T) {
	s, _ := newSession(t, []string{"a", "H"}, []string{"H"}, nil)
	if err := s.ApplyIncrementalSort(context.Background()); err != nil {
		t.Fatalf("ApplyIncrementalSort: %v", err)
	}
	assertOrder(t, previews(s), []string{"a", "H"})
}

func TestToggleSpam(t *testing.T) {
	s, _ := newSession(t, []string{"a", "junk", "H"}, []string{"H"}, []string{"junk"})
	ctx := context.Background()

	state, err := s.ToggleSpam(ctx)
	if err != nil {
		t.Fatalf("ToggleSpam: %v", err)
	}
	if !state.IsSpamFiltered {
		t.Fatal("expected spam filter on")
	}
	for _, n := range s.List().Nodes() {
		if n.Indicator {
			continue
		}
		if n.Hidden != (n.Item.Preview == "junk") {
			t.Fatalf("unexpected visibility for %q", n.Item.Preview)
		}
	}

	if _, err := s.ToggleSort(ctx); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}

	state, err = s.ToggleSpam(ctx)
	if err != nil {
		t.Fatalf("ToggleSpam: %v", err)
	}
	if state.IsSpamFiltered || state.IsSorted {
		t.Fatalf("expected both toggles off after reload, got %+v", state)
	}
	assertOrder(t, previews(s), []string{"a", "junk", "H"})
	for _, n := range s.List().Nodes() {
		if n.Hidden {
			t.Fatal("reload left a hidden item")
		}
	}
}

func TestOnChange(t *testing.T) {
	s, _ := newSession(t, []string{"a"}, nil, nil)
	var got []State
	s.OnChange(func(st State) { got = append(got, st) })

	if _, err := s.ToggleSort(context.Background()); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	if len(got) != 1 || !got[0].IsSorted {
		t.Fatalf("unexpected notifications %+v", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a, _ := newSession(t, []string{"x", "H"}, []string{"H"}, nil)
	b, _ := newSession(t, []string{"x", "H"}, []string{"H"}, nil)

	if a.ID() == b.ID() {
		t.Fatal("sessions share an id")
	}
	if _, err := a.ToggleSort(context.Background()); err != nil {
		t.Fatalf("ToggleSort: %v", err)
	}
	if b.State().IsSorted {
		t.Fatal("toggling one session changed another")
	}
}

func TestToggleSortRoundTripWithSharedIdentity(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	src := &view.StaticSource{Messages: []core.Message{
		core.NewMessage("Ann", "Hello there, how are you A", "", "/m/1"),
		core.NewMessage("Bob", "plain", "", "/m/2"),
		core.NewMessage("Ann", "Hello there, how are you B urgent", "", "/m/3"),
	}}
	if src.Messages[0].Identity != src.Messages[2].Identity {
		t.Fatal("rows are expected to share an identity")
	}

	store := storage.NewMemoryStore()
	groups := core.ClassifiedGroups{High: []core.Message{{Preview: "Hello there, how are you B urgent", Label: core.LabelHigh}}}
	if err := core.SaveJSON(ctx, store, core.KeyClassifiedGroups, groups); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	list := view.NewList(src, logger)
	if err := list.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s := New(list, store, logger)

	if _, err := s.ToggleSort(ctx); err != nil {
		t.Fatalf("ToggleSort on: %v", err)
	}
	assertOrder(t, previews(s), []string{"Hello there, how are you B urgent", "Hello there, how are you A", "plain"})

	if _, err := s.ToggleSort(ctx); err != nil {
		t.Fatalf("ToggleSort off: %v", err)
	}
	assertOrder(t, previews(s), []string{"Hello there, how are you A", "plain", "Hello there, how are you B urgent"})
}

func TestHostInsertPublishesState(t *testing.T) {
	s, src := newSession(t, []string{"a"}, []string{"H"}, nil)
	var got []State
	s.OnChange(func(st State) { got = append(got, st) })

	src.Messages = append(src.Messages, core.NewMessage("sender H", "H", "", "/m/H"))
	added, err := s.List().Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	if len(got) != 1 || got[0].MessageCount != 2 || got[0].IsSorted {
		t.Fatalf("unexpected notifications %+v", got)
	}
	if s.ObservedMutations() != 1 {
		t.Fatalf("ObservedMutations = %d, want 1", s.ObservedMutations())
	}
	for _, n := range s.List().Nodes() {
		if n.Item.Preview == "H" && !n.Highlighted {
			t.Fatal("inserted high-priority item was not highlighted")
		}
	}
}

func TestOwnChangesAreNotPublishedTwice(t *testing.T) {
	s, _ := newSession(t, []string{"a", "junk"}, nil, []string{"junk"})
	var got []State
	s.OnChange(func(st State) { got = append(got, st) })

	ctx := context.Background()
	if _, err := s.ToggleSpam(ctx); err != nil {
		t.Fatalf("ToggleSpam on: %v", err)
	}
	if _, err := s.ToggleSpam(ctx); err != nil {
		t.Fatalf("ToggleSpam off: %v", err)
	}
	if len(got) != 2 || s.ObservedMutations() != 0 {
		t.Fatalf("expected one notification per toggle, got %+v (%d observed)", got, s.ObservedMutations())
	}
}
