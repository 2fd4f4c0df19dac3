package arena

import "testing"

func TestInsertGetRemove(t *testing.T) {
	a := New[string]()
	h1 := a.Insert("one")
	h2 := a.Insert("two")

	if h1 == h2 {
		t.Fatalf("expected distinct handles, got %v twice", h1)
	}
	if got, ok := a.Get(h1); !ok || got != "one" {
		t.Fatalf("Get(h1) = %q, %v; want one, true", got, ok)
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}

	if !a.Remove(h1) {
		t.Fatalf("Remove(h1) = false, want true")
	}
	if a.Remove(h1) {
		t.Fatalf("second Remove(h1) = true, want false")
	}
	if _, ok := a.Get(h1); ok {
		t.Fatalf("Get on removed handle should fail")
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	a := New[int]()
	old := a.Insert(1)
	a.Remove(old)

	fresh := a.Insert(2)
	if fresh == old {
		t.Fatalf("reused slot must bump generation")
	}
	if a.Contains(old) {
		t.Fatalf("stale handle %v must not resolve after reuse", old)
	}
	if got, ok := a.Get(fresh); !ok || got != 2 {
		t.Fatalf("Get(fresh) = %d, %v; want 2, true", got, ok)
	}
}

func TestZeroHandleNeverResolves(t *testing.T) {
	a := New[int]()
	a.Insert(7)
	if a.Contains(Handle{}) {
		t.Fatalf("zero handle must not resolve")
	}
	if !(Handle{}).IsZero() {
		t.Fatalf("IsZero() = false for zero handle")
	}
}

func TestParseHandleRoundTrip(t *testing.T) {
	a := New[int]()
	a.Insert(1)
	h := a.Insert(2)

	parsed, err := ParseHandle(h.String())
	if err != nil {
		t.Fatalf("ParseHandle(%q): %v", h.String(), err)
	}
	if parsed != h {
		t.Fatalf("ParseHandle(%q) = %v, want %v", h.String(), parsed, h)
	}

	for _, bad := range []string{"", "3", "a.b", "1.0", "-1.2"} {
		if _, err := ParseHandle(bad); err == nil {
			t.Errorf("ParseHandle(%q) succeeded, want error", bad)
		}
	}
}

func TestEachVisitsLiveRecordsInSlotOrder(t *testing.T) {
	a := New[string]()
	h1 := a.Insert("a")
	a.Insert("b")
	a.Insert("c")
	a.Remove(h1)

	var seen []string
	a.Each(func(_ Handle, v string) bool {
		seen = append(seen, v)
		return true
	})
	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Fatalf("Each visited %v, want [b c]", seen)
	}
}
