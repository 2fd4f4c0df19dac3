package wm

import (
	"reflect"
	"testing"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/geom"
)

// Two windows are grouped, then taken apart tab by tab.
func TestScenario_GroupAndDetach(t *testing.T) {
	f := newFixture(t)
	w1 := f.open("Notes")
	w2 := f.open("Calc")

	g1, err := f.m.CreateGroup(w2, []arena.Handle{w1})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	gi := f.info(g1)
	if !reflect.DeepEqual(gi.Members, []arena.Handle{w2, w1}) || gi.Active != w2 {
		t.Fatalf("group = members %v active %v", gi.Members, gi.Active)
	}
	entries := f.m.Taskbar().Entries()
	if len(entries) != 1 || entries[0].Bound != g1 {
		t.Fatalf("taskbar = %+v, want only the group", entries)
	}

	if err := f.m.DetachMember(g1, w1, &geom.Point{X: 40, Y: 40}); err != nil {
		t.Fatalf("detach w1: %v", err)
	}
	if got := f.info(w1).Geometry.Origin(); got != (geom.Point{X: 40, Y: 40}) {
		t.Fatalf("w1 at %v, want (40,40)", got)
	}
	f.mustEntry(w1)
	if gi := f.info(g1); !reflect.DeepEqual(gi.Members, []arena.Handle{w2}) {
		t.Fatalf("g1 members = %v, want [w2]", gi.Members)
	}

	if err := f.m.DetachMember(g1, w2, nil); err != nil {
		t.Fatalf("detach w2: %v", err)
	}
	if _, err := f.m.Get(g1); err == nil {
		t.Fatalf("g1 survived its last member")
	}
	f.mustEntry(w2)
	if f.m.Taskbar().Len() != 2 {
		t.Fatalf("taskbar = %+v", f.m.Taskbar().Entries())
	}
}
