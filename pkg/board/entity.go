package board

import (
	"fmt"
	"slices"
	"sync"
)

// Kind names an entity table in a Snapshot.
type Kind uint8

const (
	KindPad Kind = iota
	KindVia
	KindTrack
	KindText
	KindDrawing
	KindFootprint
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindVia:
		return "via"
	case KindTrack:
		return "track"
	case KindText:
		return "text"
	case KindDrawing:
		return "drawing"
	case KindFootprint:
		return "footprint"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// EntityID identifies one record in a Snapshot.
type EntityID struct {
	Kind  Kind
	Index int
}

func (id EntityID) String() string {
	return fmt.Sprintf("%s#%d", id.Kind, id.Index)
}

func compareIDs(a, b EntityID) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return a.Index - b.Index
}

// Flags is the set of entities marked as failing. It is safe for
// concurrent use and flagging is idempotent.
type Flags struct {
	mu  sync.Mutex
	set map[EntityID]struct{}
}

// NewFlags returns an empty flag set.
func NewFlags() *Flags {
	return &Flags{set: make(map[EntityID]struct{})}
}

// Flag marks id. It reports whether id was newly flagged.
func (f *Flags) Flag(id EntityID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set == nil {
		f.set = make(map[EntityID]struct{})
	}
	if _, ok := f.set[id]; ok {
		return false
	}
	f.set[id] = struct{}{}
	return true
}

// IsFlagged reports whether id is marked.
func (f *Flags) IsFlagged(id EntityID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.set[id]
	return ok
}

// Len is the number of flagged entities.
func (f *Flags) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.set)
}

// List returns the flagged entities ordered by kind then index.
func (f *Flags) List() []EntityID {
	f.mu.Lock()
	ids := make([]EntityID, 0, len(f.set))
	for id := range f.set {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	slices.SortFunc(ids, compareIDs)
	return ids
}

// Clear unflags everything.
func (f *Flags) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.set)
}
