package wm

import (
	"testing"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

func TestCheckConsistency_CleanRegistryIsUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	b := f.open("B")
	f.open("C")
	f.m.CreateGroup(a, []arena.Handle{b})
	f.rec.Reset()

	if rep := f.m.CheckConsistency(); rep.Repaired() {
		t.Fatalf("sweep repaired a consistent registry: %+v", rep)
	}
	if len(f.rec.Calls()) != 0 {
		t.Fatalf("sweep hit the renderer: %v", f.rec.Calls())
	}
}

func TestCheckConsistency_RecreatesMissingEntry(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	f.m.Taskbar().Remove(a)

	rep := f.m.CheckConsistency()
	if len(rep.Taskbar.Created) != 1 || rep.Taskbar.Created[0] != taskbar.EntryID(a) {
		t.Fatalf("report = %+v", rep)
	}
	if e := f.mustEntry(a); e.State != taskbar.Active || e.Title != "A" {
		t.Fatalf("recreated entry = %+v", e)
	}
}

func TestCheckConsistency_RemovesStaleEntry(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	if err := f.m.Close(a); err != nil {
		t.Fatalf("close: %v", err)
	}
	f.settle()
	f.m.Taskbar().Ensure(taskbar.Desired{Bound: a, Title: "ghost"})

	rep := f.m.CheckConsistency()
	if len(rep.Taskbar.Removed) != 1 {
		t.Fatalf("report = %+v", rep)
	}
	f.noEntry(a)
}

func TestCheckConsistency_ReturnsOrphanToDesktop(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	b := f.open("B")
	bBefore := f.info(b).Geometry
	g, _ := f.m.CreateGroup(a, []arena.Handle{b})

	// Lose the group record without going through Close.
	f.m.records.Remove(g)

	rep := f.m.CheckConsistency()
	if len(rep.Orphans) != 2 {
		t.Fatalf("orphans = %v, want both members", rep.Orphans)
	}
	if in := f.info(b); in.Grouped || in.Geometry != bBefore {
		t.Fatalf("orphan not restored: %+v", in)
	}
	f.mustEntry(a)
	f.mustEntry(b)
	f.noEntry(g)
	if !rep.FocusFixed || f.m.Focused().IsZero() {
		t.Fatalf("focus not repaired: %+v focused=%v", rep, f.m.Focused())
	}
}

func TestCheckConsistency_ClosesEmptyGroup(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	b := f.open("B")
	g, _ := f.m.CreateGroup(a, []arena.Handle{b})

	// Members that no longer point back at the group.
	for _, w := range []arena.Handle{a, b} {
		rec, _ := f.m.records.Get(w)
		rec.parent = arena.Handle{}
	}

	rep := f.m.CheckConsistency()
	if len(rep.DroppedMembers) != 2 || len(rep.ClosedGroups) != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if _, err := f.m.Get(g); err == nil {
		t.Fatalf("empty group survived the sweep")
	}
	f.mustEntry(a)
	f.mustEntry(b)
}

func TestCheckConsistency_FixesDanglingActiveTab(t *testing.T) {
	f := newFixture(t)
	a := f.open("A")
	b := f.open("B")
	g, _ := f.m.CreateGroup(a, []arena.Handle{b})
	grec, _ := f.m.records.Get(g)
	grec.active = arena.Handle{}

	rep := f.m.CheckConsistency()
	if len(rep.ActiveFixed) != 1 || f.info(g).Active != a {
		t.Fatalf("report = %+v active = %v", rep, f.info(g).Active)
	}
	if f.mustEntry(g).Title != "A" {
		t.Fatalf("group entry title not refreshed")
	}
}
