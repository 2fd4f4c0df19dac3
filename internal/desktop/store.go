package desktop

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskshell/internal/geom"
)

// Store manages the desktop item tree.
type Store interface {
	// List returns the children of parent in creation order. An empty
	// parent lists the desktop.
	List(parent string) []Item
	Get(id string) (Item, error)
	// Create adds an item under parent. An empty name picks a free default
	// name for the kind.
	Create(parent string, kind Kind, name, content string) (Item, error)
	Rename(id, name string) (Item, error)
	SetContent(id, content string) error
	// Move reparents an item. Moving to the desktop places the icon at the
	// grid cell nearest drop, or the first free cell when drop is nil.
	Move(id, parent string, drop *geom.Point) (Item, error)
	// Delete removes an item and everything inside it.
	Delete(id string) error
}

type state struct {
	Items []Item `yaml:"items"`
}

// MemoryStore is a Store held in memory, optionally mirrored to a YAML file
// after every change.
type MemoryStore struct {
	mu     sync.Mutex
	grid   Grid
	items  map[string]*Item
	order  []string
	path   string
	logger *slog.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(grid Grid, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		grid:   grid,
		items:  make(map[string]*Item),
		logger: logger,
	}
}

// OpenFile loads the store persisted at path. A missing file yields the
// default desktop, which is written back immediately.
func OpenFile(path string, grid Grid, logger *slog.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(grid, logger)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.Seed()
		s.path = path
		return s, s.save()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read desktop state: %w", err)
	}

	var st state
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse desktop state %s: %w", path, err)
	}
	for _, it := range st.Items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Kind != KindFolder {
			it.Kind = KindText
		}
		if it.Name == "" {
			it.Name = "Unnamed Item"
		}
		if it.OnDesktop() {
			p := geom.Point{}
			if it.Position != nil {
				p = *it.Position
			}
			p = grid.Snap(p)
			it.Position = &p
		} else {
			it.Position = nil
		}
		s.items[it.ID] = &it
		s.order = append(s.order, it.ID)
	}
	// Orphans from a half-written file land back on the desktop.
	for _, id := range s.order {
		it := s.items[id]
		if parent, ok := s.items[it.Parent]; !it.OnDesktop() && (!ok || parent.Kind != KindFolder) {
			s.logger.Warn("orphaned desktop item restored", "id", id, "parent", it.Parent)
			it.Parent = ""
			p, _ := s.grid.NextFreeSlot(s.occupied(""), len(s.children("")))
			it.Position = &p
		}
	}
	s.path = path
	return s, nil
}

// Seed fills an empty store with the default desktop.
func (s *MemoryStore) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) > 0 {
		return
	}
	s.insert(&Item{
		ID:       "item-default-readme",
		Name:     "Readme.txt",
		Kind:     KindText,
		Position: &geom.Point{X: 0, Y: 0},
		Content: "Welcome to deskshell!\n\n" +
			"- Drag windows by their title bars.\n" +
			"- Hold the group modifier while dropping one window onto another to tab them.\n" +
			"- Drag a tab onto the desktop to take it out of its group.",
	})
	s.insert(&Item{
		ID:       "folder-default-docs",
		Name:     "Documents",
		Kind:     KindFolder,
		Position: &geom.Point{X: 0, Y: s.grid.Size},
	})
	s.insert(&Item{
		ID:      "item-in-docs-1",
		Name:    "Sample Doc.txt",
		Kind:    KindText,
		Parent:  "folder-default-docs",
		Content: "This is a file inside the Documents folder.",
	})
}

func (s *MemoryStore) insert(it *Item) {
	s.items[it.ID] = it
	s.order = append(s.order, it.ID)
}

func (s *MemoryStore) children(parent string) []*Item {
	var out []*Item
	for _, id := range s.order {
		if it := s.items[id]; it.Parent == parent {
			out = append(out, it)
		}
	}
	return out
}

// occupied returns the grid cells used by desktop icons other than skip.
func (s *MemoryStore) occupied(skip string) map[geom.Point]bool {
	used := make(map[geom.Point]bool)
	for _, it := range s.children("") {
		if it.ID != skip && it.Position != nil {
			used[*it.Position] = true
		}
	}
	return used
}

func (s *MemoryStore) nameTaken(parent, skip string) func(string) bool {
	return func(name string) bool {
		for _, it := range s.children(parent) {
			if it.ID != skip && it.Name == name {
				return true
			}
		}
		return false
	}
}

func (s *MemoryStore) lookup(id string) (*Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, nil
}

func (s *MemoryStore) folder(id string) (*Item, error) {
	it, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if it.Kind != KindFolder {
		return nil, fmt.Errorf("%w: %s is not a folder", ErrInvalidMove, it.Name)
	}
	return it, nil
}

func (s *MemoryStore) List(parent string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Item
	for _, it := range s.children(parent) {
		out = append(out, clone(it))
	}
	return out
}

func (s *MemoryStore) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	return clone(it), nil
}

func (s *MemoryStore) Create(parent string, kind Kind, name, content string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parent != "" {
		if _, err := s.folder(parent); err != nil {
			return Item{}, err
		}
	}
	if name == "" {
		name = kind.baseName()
	}
	it := &Item{
		ID:     uuid.NewString(),
		Name:   uniqueName(name, s.nameTaken(parent, "")),
		Kind:   kind,
		Parent: parent,
	}
	if kind == KindText {
		it.Content = content
	}
	if parent == "" {
		p, err := s.grid.NextFreeSlot(s.occupied(""), len(s.children("")))
		if err != nil {
			s.logger.Warn("desktop full, using fallback position", "item", it.Name, "x", p.X, "y", p.Y)
		}
		it.Position = &p
	}
	s.insert(it)
	s.persist()
	return clone(it), nil
}

func (s *MemoryStore) Rename(id, name string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	if name == "" {
		return Item{}, fmt.Errorf("name must not be empty")
	}
	it.Name = uniqueName(name, s.nameTaken(it.Parent, id))
	s.persist()
	return clone(it), nil
}

func (s *MemoryStore) SetContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.lookup(id)
	if err != nil {
		return err
	}
	if it.Kind != KindText {
		return fmt.Errorf("%s is a %s and has no text content", it.Name, it.Kind)
	}
	it.Content = content
	s.persist()
	return nil
}

func (s *MemoryStore) Move(id, parent string, drop *geom.Point) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}

	if parent == "" {
		occupied := s.occupied(id)
		var p geom.Point
		if drop != nil {
			p, err = s.grid.Place(*drop, occupied)
		}
		if drop == nil || err != nil {
			p, err = s.grid.NextFreeSlot(occupied, len(s.children("")))
		}
		if err != nil {
			s.logger.Warn("desktop full, using fallback position", "item", it.Name, "x", p.X, "y", p.Y)
		}
		if !it.OnDesktop() {
			it.Name = uniqueName(it.Name, s.nameTaken("", id))
		}
		it.Parent = ""
		it.Position = &p
		s.persist()
		return clone(it), nil
	}

	if parent == id {
		return Item{}, fmt.Errorf("%w: %s into itself", ErrInvalidMove, it.Name)
	}
	if _, err := s.folder(parent); err != nil {
		return Item{}, err
	}
	if it.Kind == KindFolder {
		return Item{}, fmt.Errorf("%w: folders cannot be nested", ErrInvalidMove)
	}
	if it.Parent == parent {
		return clone(it), nil
	}
	it.Name = uniqueName(it.Name, s.nameTaken(parent, id))
	it.Parent = parent
	it.Position = nil
	s.persist()
	return clone(it), nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return err
	}
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, other := range s.order {
			if !doomed[other] && doomed[s.items[other].Parent] {
				doomed[other] = true
				changed = true
			}
		}
	}
	kept := s.order[:0]
	for _, other := range s.order {
		if doomed[other] {
			delete(s.items, other)
			continue
		}
		kept = append(kept, other)
	}
	s.order = kept
	s.persist()
	return nil
}

// persist mirrors the store to its file. Failures are logged; the in-memory
// change stands.
func (s *MemoryStore) persist() {
	if s.path == "" {
		return
	}
	if err := s.save(); err != nil {
		s.logger.Warn("failed to save desktop state", "path", s.path, "error", err)
	}
}

func (s *MemoryStore) save() error {
	st := state{Items: make([]Item, 0, len(s.order))}
	for _, id := range s.order {
		st.Items = append(st.Items, clone(s.items[id]))
	}
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("failed to marshal desktop state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write desktop state: %w", err)
	}
	return nil
}

func clone(it *Item) Item {
	out := *it
	if it.Position != nil {
		p := *it.Position
		out.Position = &p
	}
	return out
}
