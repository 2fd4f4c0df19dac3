package desktop

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/deskshell/internal/geom"
)

func testGrid() Grid {
	// 3 columns x 2 rows.
	return Grid{Size: 90, Width: 300, Height: 200}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGridSnap(t *testing.T) {
	g := testGrid()
	tests := []struct {
		in, want geom.Point
	}{
		{geom.Point{X: 0, Y: 0}, geom.Point{X: 0, Y: 0}},
		{geom.Point{X: 44, Y: 46}, geom.Point{X: 0, Y: 90}},
		{geom.Point{X: 140, Y: 10}, geom.Point{X: 180, Y: 0}},
		{geom.Point{X: -50, Y: -50}, geom.Point{X: 0, Y: 0}},
		{geom.Point{X: 5000, Y: 5000}, geom.Point{X: 180, Y: 90}},
	}
	for _, tt := range tests {
		if got := g.Snap(tt.in); got != tt.want {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNextFreeSlot(t *testing.T) {
	g := testGrid()
	used := map[geom.Point]bool{{X: 0, Y: 0}: true, {X: 90, Y: 0}: true}
	p, err := g.NextFreeSlot(used, 2)
	if err != nil || p != (geom.Point{X: 180, Y: 0}) {
		t.Fatalf("NextFreeSlot = %v, %v", p, err)
	}

	full := map[geom.Point]bool{}
	for _, x := range []int{0, 90, 180} {
		for _, y := range []int{0, 90} {
			full[geom.Point{X: x, Y: y}] = true
		}
	}
	p, err = g.NextFreeSlot(full, 7)
	if !errors.Is(err, ErrNoFreeSlot) {
		t.Fatalf("err = %v, want ErrNoFreeSlot", err)
	}
	if p != (geom.Point{X: 10, Y: 50}) {
		t.Fatalf("fallback = %v, want 10,50", p)
	}
}

func TestPlaceWrapsAround(t *testing.T) {
	g := testGrid()
	used := map[geom.Point]bool{{X: 180, Y: 90}: true}
	p, err := g.Place(geom.Point{X: 170, Y: 95}, used)
	if err != nil || p != (geom.Point{X: 0, Y: 0}) {
		t.Fatalf("Place = %v, %v; want wrap to 0,0", p, err)
	}
}

func TestCreateNamesAndPlaces(t *testing.T) {
	s := NewMemoryStore(testGrid(), quietLogger())
	a, _ := s.Create("", KindText, "", "")
	b, _ := s.Create("", KindText, "", "")
	f, _ := s.Create("", KindFolder, "", "")

	if a.Name != "New Text Document" || b.Name != "New Text Document (2)" || f.Name != "New Folder" {
		t.Fatalf("names = %q %q %q", a.Name, b.Name, f.Name)
	}
	if *a.Position != (geom.Point{X: 0, Y: 0}) || *b.Position != (geom.Point{X: 90, Y: 0}) || *f.Position != (geom.Point{X: 180, Y: 0}) {
		t.Fatalf("positions = %v %v %v", a.Position, b.Position, f.Position)
	}

	inside, err := s.Create(f.ID, KindText, "", "hi")
	if err != nil {
		t.Fatalf("Create in folder: %v", err)
	}
	if inside.Position != nil || inside.Parent != f.ID || inside.Name != "New Text Document" {
		t.Fatalf("inside = %+v", inside)
	}
	if _, err := s.Create(a.ID, KindText, "", ""); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("Create under a file = %v", err)
	}
}

func TestCreateOnFullDesktopFallsBack(t *testing.T) {
	s := NewMemoryStore(Grid{Size: 90, Width: 90, Height: 90}, quietLogger())
	s.Create("", KindText, "a", "")
	b, err := s.Create("", KindText, "b", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *b.Position != (geom.Point{X: 10, Y: 30}) {
		t.Fatalf("fallback position = %v", b.Position)
	}
}

func TestMoveOntoFullDesktopFallsBack(t *testing.T) {
	// One column, two rows: the seeded readme and folder fill it.
	s := NewMemoryStore(Grid{Size: 90, Width: 90, Height: 180}, quietLogger())
	s.Seed()

	moved, err := s.Move("item-in-docs-1", "", nil)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Parent != "" || *moved.Position != (geom.Point{X: 10, Y: 50}) {
		t.Fatalf("moved = %+v, want on desktop at 10,50", moved)
	}

	dropped, err := s.Move("item-in-docs-1", "", &geom.Point{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Move with drop: %v", err)
	}
	if *dropped.Position != (geom.Point{X: 10, Y: 70}) {
		t.Fatalf("dropped at %v, want stacked fallback 10,70", *dropped.Position)
	}
}

func TestMoveIntoFolderAndBack(t *testing.T) {
	s := NewMemoryStore(testGrid(), quietLogger())
	f, _ := s.Create("", KindFolder, "Docs", "")
	s.Create(f.ID, KindText, "notes.txt", "")
	doc, _ := s.Create("", KindText, "notes.txt", "")

	moved, err := s.Move(doc.ID, f.ID, nil)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Name != "notes (2).txt" || moved.Position != nil {
		t.Fatalf("moved = %+v", moved)
	}
	if got := len(s.List(f.ID)); got != 2 {
		t.Fatalf("folder holds %d items", got)
	}

	back, err := s.Move(doc.ID, "", &geom.Point{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("Move to desktop: %v", err)
	}
	// 0,0 is taken by the folder.
	if back.Parent != "" || *back.Position != (geom.Point{X: 90, Y: 0}) {
		t.Fatalf("back = %+v", back)
	}

	if _, err := s.Move(f.ID, f.ID, nil); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("folder into itself = %v", err)
	}
	other, _ := s.Create("", KindFolder, "Other", "")
	if _, err := s.Move(other.ID, f.ID, nil); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("nested folder = %v", err)
	}
}

func TestDeleteRemovesChildren(t *testing.T) {
	s := NewMemoryStore(testGrid(), quietLogger())
	s.Seed()
	if err := s.Delete("folder-default-docs"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("item-in-docs-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("child survived: %v", err)
	}
	if got := len(s.List("")); got != 1 {
		t.Fatalf("desktop holds %d items, want 1", got)
	}
	if err := s.Delete("folder-default-docs"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
}

func TestRenameKeepsNamesUnique(t *testing.T) {
	s := NewMemoryStore(testGrid(), quietLogger())
	a, _ := s.Create("", KindText, "a.txt", "")
	b, _ := s.Create("", KindText, "b.txt", "")

	got, err := s.Rename(b.ID, "a.txt")
	if err != nil || got.Name != "a (2).txt" {
		t.Fatalf("Rename = %+v, %v", got, err)
	}
	if got, _ := s.Rename(a.ID, "a.txt"); got.Name != "a.txt" {
		t.Fatalf("renaming to own name = %q", got.Name)
	}
	if _, err := s.Rename(a.ID, ""); err == nil {
		t.Fatalf("empty name accepted")
	}
}

func TestOpenFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "desktop.yaml")

	s, err := OpenFile(path, testGrid(), quietLogger())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if got := len(s.List("")); got != 2 {
		t.Fatalf("seeded desktop holds %d items", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	item, _ := s.Create("", KindText, "todo.txt", "buy milk")

	reopened, err := OpenFile(path, testGrid(), quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(item.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Content != "buy milk" || *got.Position != *item.Position {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"txt": KindText, "Text": KindText, "folder": KindFolder} {
		if got, err := ParseKind(in); err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("image"); err == nil {
		t.Errorf("ParseKind(image) succeeded")
	}
}
