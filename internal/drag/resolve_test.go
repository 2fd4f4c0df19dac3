package drag

import (
	"testing"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/wm"
)

func handles(n int) []arena.Handle {
	var out []arena.Handle
	for i := 1; i <= n; i++ {
		h, err := arena.ParseHandle(string(rune('0'+i)) + ".1")
		if err != nil {
			panic(err)
		}
		out = append(out, h)
	}
	return out
}

func window(h arena.Handle, seq uint64, z int, r geom.Rect) wm.Info {
	return wm.Info{Handle: h, Kind: wm.KindWindow, Seq: seq, Z: z, Geometry: r}
}

func TestResolve(t *testing.T) {
	cfg := config.DefaultConfig()
	desk := snap.Desktop{Width: 1280, Height: 800, TaskbarHeight: 45}
	hs := handles(4)
	subject := window(hs[0], 1, 110, geom.Rect{X: 0, Y: 0, Width: 300, Height: 200})

	tests := []struct {
		name     string
		frame    geom.Rect
		pointer  geom.Point
		modifier bool
		world    []wm.Info
		want     Intent
	}{
		{
			name:    "nothing nearby",
			frame:   geom.Rect{X: 600, Y: 400, Width: 300, Height: 200},
			pointer: geom.Point{X: 650, Y: 410},
			want:    Intent{},
		},
		{
			name:    "left edge snaps",
			frame:   geom.Rect{X: 0, Y: 300, Width: 300, Height: 200},
			pointer: geom.Point{X: 29, Y: 310},
			want:    Intent{Kind: IntentSnap, Zone: snap.Left},
		},
		{
			name:    "right edge snaps",
			frame:   geom.Rect{X: 1000, Y: 300, Width: 300, Height: 200},
			pointer: geom.Point{X: 1251, Y: 310},
			want:    Intent{Kind: IntentSnap, Zone: snap.Right},
		},
		{
			name:    "top edge snaps",
			frame:   geom.Rect{X: 400, Y: 0, Width: 300, Height: 200},
			pointer: geom.Point{X: 450, Y: 5},
			want:    Intent{Kind: IntentSnap, Zone: snap.Top},
		},
		{
			name:     "overlap groups with modifier",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world:    []wm.Info{window(hs[1], 2, 101, geom.Rect{X: 520, Y: 320, Width: 300, Height: 200})},
			want:     Intent{Kind: IntentGroupOnto, Target: hs[1]},
		},
		{
			name:    "overlap without modifier",
			frame:   geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer: geom.Point{X: 550, Y: 310},
			world:   []wm.Info{window(hs[1], 2, 101, geom.Rect{X: 520, Y: 320, Width: 300, Height: 200})},
			want:    Intent{},
		},
		{
			name:     "exactly half is not enough",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world:    []wm.Info{window(hs[1], 2, 101, geom.Rect{X: 650, Y: 300, Width: 300, Height: 200})},
			want:     Intent{},
		},
		{
			name:     "snap beats grouping",
			frame:    geom.Rect{X: 0, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 10, Y: 310},
			modifier: true,
			world:    []wm.Info{window(hs[1], 2, 101, geom.Rect{X: 0, Y: 300, Width: 300, Height: 200})},
			want:     Intent{Kind: IntentSnap, Zone: snap.Left},
		},
		{
			name:     "largest overlap wins",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world: []wm.Info{
				window(hs[1], 2, 105, geom.Rect{X: 540, Y: 300, Width: 300, Height: 200}),
				window(hs[2], 3, 101, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}),
			},
			want: Intent{Kind: IntentGroupOnto, Target: hs[2]},
		},
		{
			name:     "equal overlap prefers topmost",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world: []wm.Info{
				window(hs[1], 2, 105, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}),
				window(hs[2], 3, 101, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}),
			},
			want: Intent{Kind: IntentGroupOnto, Target: hs[1]},
		},
		{
			name:     "equal overlap and z prefers newest",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world: []wm.Info{
				window(hs[1], 2, 101, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}),
				window(hs[2], 3, 101, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}),
			},
			want: Intent{Kind: IntentGroupOnto, Target: hs[2]},
		},
		{
			name:     "minimized windows are ignored",
			frame:    geom.Rect{X: 500, Y: 300, Width: 300, Height: 200},
			pointer:  geom.Point{X: 550, Y: 310},
			modifier: true,
			world: []wm.Info{func() wm.Info {
				w := window(hs[1], 2, 101, geom.Rect{X: 500, Y: 300, Width: 300, Height: 200})
				w.Minimized = true
				return w
			}()},
			want: Intent{},
		},
		{
			name:     "add button beats snap",
			frame:    geom.Rect{X: 0, Y: 50, Width: 300, Height: 200},
			pointer:  geom.Point{X: 20, Y: 40},
			modifier: true,
			world: []wm.Info{{
				Handle: hs[3], Kind: wm.KindGroup, Seq: 4, Z: 120,
				Geometry: geom.Rect{X: -240, Y: 0, Width: 400, Height: 300},
				Members:  hs[1:3],
			}},
			want: Intent{Kind: IntentDropOnTabStrip, Target: hs[3]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(Input{
				Subject:  subject,
				Frame:    tt.frame,
				Pointer:  tt.pointer,
				Modifier: tt.modifier,
				World:    append([]wm.Info{subject}, tt.world...),
				Desktop:  desk,
			}, cfg)
			if got.Intent != tt.want {
				t.Errorf("Resolve() = %v, want %v", got.Intent, tt.want)
			}
		})
	}
}

func TestResolveGroupSubjectNeverGroups(t *testing.T) {
	cfg := config.DefaultConfig()
	hs := handles(2)
	subject := wm.Info{Handle: hs[0], Kind: wm.KindGroup, Seq: 1, Z: 110, Geometry: geom.Rect{X: 500, Y: 300, Width: 300, Height: 200}}
	other := window(hs[1], 2, 101, subject.Geometry)

	got := Resolve(Input{
		Subject:  subject,
		Frame:    subject.Geometry,
		Pointer:  geom.Point{X: 550, Y: 310},
		Modifier: true,
		World:    []wm.Info{subject, other},
		Desktop:  snap.Desktop{Width: 1280, Height: 800, TaskbarHeight: 45},
	}, cfg)
	if got.Intent.Kind != IntentNone || len(got.GroupTargets) != 0 {
		t.Fatalf("Resolve() = %+v, want none", got)
	}
}

func TestHitTest(t *testing.T) {
	cfg := config.DefaultConfig()
	hs := handles(3)
	win := window(hs[0], 1, 101, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	group := wm.Info{
		Handle: hs[1], Kind: wm.KindGroup, Seq: 2, Z: 102,
		Geometry: geom.Rect{X: 600, Y: 100, Width: 400, Height: 300},
		Members:  []arena.Handle{hs[2]},
		Active:   hs[2],
	}
	world := []wm.Info{win, group}

	tests := []struct {
		name   string
		p      geom.Point
		handle arena.Handle
		part   Part
	}{
		{"desktop", geom.Point{X: 50, Y: 50}, arena.Handle{}, PartNone},
		{"title bar", geom.Point{X: 150, Y: 110}, hs[0], PartTitleBar},
		{"close", geom.Point{X: 495, Y: 110}, hs[0], PartClose},
		{"maximize", geom.Point{X: 445, Y: 110}, hs[0], PartMaximize},
		{"minimize", geom.Point{X: 415, Y: 110}, hs[0], PartMinimize},
		{"body", geom.Point{X: 150, Y: 300}, hs[0], PartBody},
		{"tab", geom.Point{X: 610, Y: 140}, hs[1], PartTab},
		{"add tab", geom.Point{X: 725, Y: 140}, hs[1], PartAddTab},
		{"group body", geom.Point{X: 800, Y: 300}, hs[1], PartBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := HitTest(world, tt.p, cfg)
			if hit.Handle != tt.handle || hit.Part != tt.part {
				t.Errorf("HitTest(%v) = %v %v, want %v %v", tt.p, hit.Handle, hit.Part, tt.handle, tt.part)
			}
			if tt.part == PartTab && hit.Member != hs[2] {
				t.Errorf("tab member = %v, want %v", hit.Member, hs[2])
			}
		})
	}
}

func TestResolveTab(t *testing.T) {
	cfg := config.DefaultConfig()
	hs := handles(3)
	source := wm.Info{Handle: hs[0], Kind: wm.KindGroup, Seq: 1, Z: 101, Geometry: geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}, Members: hs[2:3]}

	if got := ResolveTab(source, geom.Point{X: 200, Y: 200}, []wm.Info{source}, cfg); got.Kind != IntentNone {
		t.Errorf("over source = %v, want none", got)
	}
	got := ResolveTab(source, geom.Point{X: 700, Y: 600}, []wm.Info{source}, cfg)
	if got.Kind != IntentDetach || got.Drop != (geom.Point{X: 690, Y: 590}) {
		t.Errorf("on desktop = %v, want detach at 690,590", got)
	}

	other := wm.Info{Handle: hs[1], Kind: wm.KindWindow, Seq: 2, Z: 102, Geometry: geom.Rect{X: 600, Y: 500, Width: 300, Height: 200}}
	world := []wm.Info{source, other}
	if got := ResolveTab(source, geom.Point{X: 700, Y: 600}, world, cfg); got.Kind != IntentNone {
		t.Errorf("over another window = %v, want none", got)
	}
	other.Minimized = true
	world = []wm.Info{source, other}
	if got := ResolveTab(source, geom.Point{X: 700, Y: 600}, world, cfg); got.Kind != IntentDetach {
		t.Errorf("over a minimized window = %v, want detach", got)
	}
}
