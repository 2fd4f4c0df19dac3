// Package desktop keeps the icons on the desktop: text files and folders in
// a shallow tree, placed on a fixed grid.
package desktop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/deskshell/internal/geom"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidMove = errors.New("invalid move")
	// ErrNoFreeSlot means every grid cell on the desktop is taken.
	ErrNoFreeSlot = errors.New("no free desktop slot")
)

// Kind is the type of a desktop item.
type Kind string

const (
	KindText   Kind = "txt"
	KindFolder Kind = "folder"
)

// ParseKind accepts "txt", "text" and "folder".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text", "file":
		return KindText, nil
	case "folder", "dir":
		return KindFolder, nil
	default:
		return "", fmt.Errorf("unknown item kind %q (want txt or folder)", s)
	}
}

func (k Kind) baseName() string {
	if k == KindFolder {
		return "New Folder"
	}
	return "New Text Document"
}

// Item is one desktop icon or folder entry. Position is set only for items
// directly on the desktop.
type Item struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Kind     Kind        `json:"kind" yaml:"kind"`
	Parent   string      `json:"parent,omitempty" yaml:"parent,omitempty"`
	Content  string      `json:"content,omitempty" yaml:"content,omitempty"`
	Position *geom.Point `json:"position,omitempty" yaml:"position,omitempty"`
}

// OnDesktop reports whether the item sits directly on the desktop.
func (i Item) OnDesktop() bool {
	return i.Parent == ""
}

// uniqueName returns name, or name with a " (n)" counter before its
// extension, so that it differs from every name in taken.
func uniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	base, ext := name, ""
	if dot := strings.LastIndex(name, "."); dot > 0 {
		base, ext = name[:dot], name[dot:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}
