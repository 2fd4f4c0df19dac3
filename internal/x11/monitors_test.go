package x11

import (
	"testing"

	"github.com/1broseidon/deskshell/internal/geom"
)

func TestChooseScreen(t *testing.T) {
	left := Monitor{ID: 0, Name: "DP-1", Bounds: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}}
	right := Monitor{ID: 1, Name: "HDMI-1", Bounds: geom.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}}
	root := geom.Rect{Width: 3200, Height: 1080}

	tests := []struct {
		name     string
		pointer  geom.Point
		workArea geom.Rect
		want     Screen
	}{
		{
			name:     "pointer on second monitor",
			pointer:  geom.Point{X: 2000, Y: 10},
			workArea: geom.Rect{X: 0, Y: 28, Width: 3200, Height: 1052},
			want:     Screen{Monitor: "HDMI-1", Root: root, Usable: geom.Rect{X: 1920, Y: 28, Width: 1280, Height: 996}},
		},
		{
			name:     "pointer off every monitor uses first",
			pointer:  geom.Point{X: 5000, Y: 5000},
			workArea: root,
			want:     Screen{Monitor: "DP-1", Root: root, Usable: left.Bounds},
		},
		{
			name:     "disjoint work area ignored",
			pointer:  geom.Point{X: 10, Y: 10},
			workArea: geom.Rect{X: 4000, Y: 0, Width: 100, Height: 100},
			want:     Screen{Monitor: "DP-1", Root: root, Usable: left.Bounds},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseScreen([]Monitor{left, right}, tt.pointer, tt.workArea, root)
			if got != tt.want {
				t.Errorf("chooseScreen = %+v, want %+v", got, tt.want)
			}
		})
	}
}
