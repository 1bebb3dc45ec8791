package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/storage"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap/zaptest"
)

func TestContactsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, err := Load(ctx, store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	added, err := m.AddImportantContact(ctx, "Jane Doe")
	if err != nil || !added {
		t.Fatalf("AddImportantContact = %v, %v", added, err)
	}
	added, _ = m.AddImportantContact(ctx, "Jane Doe")
	if added {
		t.Fatal("duplicate contact should not be added")
	}

	reloaded, err := Load(ctx, store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Snapshot().ImportantContacts; len(got) != 1 || got[0] != "Jane Doe" {
		t.Fatalf("contacts not persisted: %v", got)
	}

	removed, err := m.RemoveImportantContact(ctx, "Jane Doe")
	if err != nil || !removed {
		t.Fatalf("RemoveImportantContact = %v, %v", removed, err)
	}
	removed, _ = m.RemoveImportantContact(ctx, "Jane Doe")
	if removed {
		t.Fatal("removing an absent contact should report false")
	}
}

func TestPriorityTagsKeepOrder(t *testing.T) {
	ctx := context.Background()
	m, _ := Load(ctx, storage.NewMemoryStore(), zaptest.NewLogger(t))

	for _, tag := range []string{"rust", "golang", "rust", "  ", "k8s"} {
		if _, err := m.AddPriorityTag(ctx, tag); err != nil {
			t.Fatalf("AddPriorityTag: %v", err)
		}
	}
	got := m.Snapshot().PriorityTags
	want := []string{"rust", "golang", "k8s"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if ok, _ := m.RemovePriorityTag(ctx, "golang"); !ok {
		t.Fatal("expected tag removal")
	}
	if got := m.Snapshot().PriorityTags; len(got) != 2 || got[1] != "k8s" {
		t.Fatalf("unexpected tags after removal %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m, _ := Load(ctx, storage.NewMemoryStore(), zaptest.NewLogger(t))
	_, _ = m.AddImportantContact(ctx, "A")

	snap := m.Snapshot()
	snap.ImportantContacts[0] = "mutated"
	if m.Snapshot().ImportantContacts[0] != "A" {
		t.Fatal("snapshot aliases the mirror")
	}
}

func TestSetAutomation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, _ := Load(ctx, store, zaptest.NewLogger(t))

	settings := core.AutomationSettings{Enabled: true, Template: "Hi {sender}"}
	if err := m.SetAutomation(ctx, settings); err != nil {
		t.Fatalf("SetAutomation: %v", err)
	}

	var stored core.UserPreferences
	if err := core.LoadJSON(ctx, store, core.KeyUserPreferences, &stored); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if stored.Automation != settings {
		t.Fatalf("unexpected stored automation %+v", stored.Automation)
	}
}

type failingStore struct{ *storage.MemoryStore }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestFailedSaveKeepsMirror(t *testing.T) {
	ctx := context.Background()
	m, _ := Load(ctx, failingStore{storage.NewMemoryStore()}, zaptest.NewLogger(t))

	if _, err := m.AddImportantContact(ctx, "A"); err == nil {
		t.Fatal("expected save error")
	}
	if len(m.Snapshot().ImportantContacts) != 0 {
		t.Fatal("mirror changed although the save failed")
	}
}
