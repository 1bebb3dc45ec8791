package ordering

import (
	"math/rand"
	"testing"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
)

func items(previews ...string) []core.Message {
	out := make([]core.Message, len(previews))
	for i, p := range previews {
		out[i] = core.NewMessage("sender", p, "", "")
	}
	return out
}

func previews(ms []core.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Preview
	}
	return out
}

func equal(a, b []string) bool {
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

func TestPriorityOrderIsStable(t *testing.T) {
	in := items("a", "H1", "b", "H2", "c")
	high := map[string]bool{"H1": true, "H2": true}

	got := previews(PriorityOrder(in, high))
	want := []string{"H1", "H2", "a", "b", "c"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !equal(previews(in), []string{"a", "H1", "b", "H2", "c"}) {
		t.Fatal("PriorityOrder modified its input")
	}
}

func TestPriorityOrderIsIdempotent(t *testing.T) {
	in := items("x", "H", "y", "z", "H2")
	high := map[string]bool{"H": true, "H2": true}

	once := PriorityOrder(in, high)
	twice := PriorityOrder(once, high)
	if !equal(previews(once), previews(twice)) {
		t.Fatalf("second pass changed the order: %v vs %v", previews(once), previews(twice))
	}
}

func TestRestoreUndoesPriorityOrder(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		n := r.Intn(12)
		in := make([]core.Message, n)
		high := map[string]bool{}
		for i := range in {
			p := string(rune('a'+i)) + "-preview"
			in[i] = core.NewMessage("s", p, "", "")
			if r.Intn(2) == 0 {
				high[p] = true
			}
		}

		tracker := NewTracker()
		tracker.Record(in)
		restored := RestoreOrder(PriorityOrder(in, high), tracker)
		if !equal(previews(restored), previews(in)) {
			t.Fatalf("round %d: restore gave %v, want %v", round, previews(restored), previews(in))
		}
	}
}

func TestRestorePutsUnknownLast(t *testing.T) {
	tracker := NewTracker()
	tracker.Record(items("a", "b", "c"))

	current := items("new1", "c", "a", "new2", "b")
	got := previews(RestoreOrder(current, tracker))
	want := []string{"a", "b", "c", "new1", "new2"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTrackerLookup(t *testing.T) {
	tracker := NewTracker()
	in := items("a", "b")
	tracker.Record(in)

	if got := tracker.Lookup(in[1].Identity); got != 1 {
		t.Fatalf("Lookup = %d, want 1", got)
	}
	if got := tracker.Lookup("missing"); got != Last {
		t.Fatalf("Lookup of unknown identity = %d, want Last", got)
	}

	tracker.Record(items("z"))
	if tracker.Len() != 1 || tracker.Lookup(in[0].Identity) != Last {
		t.Fatal("Record should replace the previous snapshot")
	}

	tracker.Clear()
	if tracker.Len() != 0 {
		t.Fatal("Clear left entries behind")
	}
}

func TestRestoreWithSharedIdentities(t *testing.T) {
	in := items(
		"Hello there, how are you A",
		"plain",
		"Hello there, how are you B urgent",
		"dup",
		"dup",
	)
	if in[0].Identity != in[2].Identity {
		t.Fatal("test rows must share an identity")
	}

	tracker := NewTracker()
	tracker.Record(in)
	if tracker.Len() != len(in) {
		t.Fatalf("Len = %d, want %d", tracker.Len(), len(in))
	}

	high := map[string]bool{"Hello there, how are you B urgent": true, "dup": true}
	got := previews(RestoreOrder(PriorityOrder(in, high), tracker))
	if !equal(got, previews(in)) {
		t.Fatalf("got %v, want %v", got, previews(in))
	}
}

func TestRestoreSurplusOccurrencesGoLast(t *testing.T) {
	tracker := NewTracker()
	tracker.Record(items("x", "y"))

	current := items("x", "y", "x")
	got := tracker.Positions(current)
	if got[0] != 0 || got[1] != 1 || got[2] != Last {
		t.Fatalf("Positions = %v", got)
	}
}
