package wm

import (
	"errors"
	"testing"

	"github.com/1broseidon/deskshell/internal/arena"
)

func TestFindByTitleAndLaunch(t *testing.T) {
	f := newFixture(t)
	f.open("Notes")
	newer := f.open("Notes")
	f.open("Calc")

	if h, ok := f.m.FindByTitle("Notes"); !ok || h != newer {
		t.Fatalf("FindByTitle = %v, %v; want newest %v", h, ok, newer)
	}
	if _, ok := f.m.FindByTitle("notes"); ok {
		t.Fatalf("FindByTitle should be exact")
	}

	h, opened := f.m.Launch("Notes", "")
	if opened || h != newer || f.m.Focused() != newer {
		t.Fatalf("Launch existing = %v, %v; focused %v", h, opened, f.m.Focused())
	}

	before := f.m.Len()
	h, opened = f.m.Launch("Paint", "canvas")
	if !opened || f.m.Len() != before+1 {
		t.Fatalf("Launch new = %v, %v", h, opened)
	}
	if in := f.info(h); in.Title != "Paint" || in.Content != "canvas" {
		t.Fatalf("launched window = %+v", in)
	}
}

func TestFindByTitleSkipsTabs(t *testing.T) {
	f := newFixture(t)
	a := f.open("Notes")
	b := f.open("Calc")
	f.m.CreateGroup(a, []arena.Handle{b})
	if _, ok := f.m.FindByTitle("Notes"); ok {
		t.Fatalf("FindByTitle returned a tab")
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	notes := f.open("Notes")
	calc := f.open("Calculator")
	term := f.open("Terminal")

	tests := []struct {
		ref  string
		want arena.Handle
	}{
		{notes.String(), notes},
		{"Calculator", calc},
		{"calculator", calc},
		{"calc", calc},
		{"trml", term},
		{" Notes ", notes},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := f.m.Resolve(tt.ref)
			if err != nil || got != tt.want {
				t.Fatalf("Resolve(%q) = %v, %v; want %v", tt.ref, got, err, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "zzz", "99.1"} {
		if _, err := f.m.Resolve(bad); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Resolve(%q) = %v, want ErrInvalidReference", bad, err)
		}
	}
}
