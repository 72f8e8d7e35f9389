package layout

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/tree"
)

// Info is the layout record of a node.
type Info struct {
	// Clamp is the clamp the node was last laid out under.
	Clamp    BoxClamp
	HasClamp bool
	// Size is valid only when Sized is set.
	Size  graphics.Size
	Sized bool
	// Position is relative to the parent's origin.
	Position graphics.Offset
}

// Store is the side table of layout records keyed by node.
type Store struct {
	infos map[tree.NodeID]*Info
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{infos: make(map[tree.NodeID]*Info)}
}

func (s *Store) ensure(id tree.NodeID) *Info {
	info, ok := s.infos[id]
	if !ok {
		info = &Info{}
		s.infos[id] = info
	}
	return info
}

// Info returns a copy of the record for id.
func (s *Store) Info(id tree.NodeID) (Info, bool) {
	info, ok := s.infos[id]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Size returns the cached size of id.
func (s *Store) Size(id tree.NodeID) (graphics.Size, bool) {
	info, ok := s.infos[id]
	if !ok || !info.Sized {
		return graphics.Size{}, false
	}
	return info.Size, true
}

// IsSized reports whether id has a valid cached size.
func (s *Store) IsSized(id tree.NodeID) bool {
	info, ok := s.infos[id]
	return ok && info.Sized
}

// Clamp returns the clamp id was last laid out under.
func (s *Store) Clamp(id tree.NodeID) (BoxClamp, bool) {
	info, ok := s.infos[id]
	if !ok || !info.HasClamp {
		return BoxClamp{}, false
	}
	return info.Clamp, true
}

// Position returns the offset of id within its parent.
func (s *Store) Position(id tree.NodeID) graphics.Offset {
	if info, ok := s.infos[id]; ok {
		return info.Position
	}
	return graphics.Offset{}
}

// SetPosition records the offset of id within its parent.
func (s *Store) SetPosition(id tree.NodeID, pos graphics.Offset) {
	s.ensure(id).Position = pos
}

// InvalidateSize drops the cached size of id. The clamp is kept.
func (s *Store) InvalidateSize(id tree.NodeID) {
	if info, ok := s.infos[id]; ok {
		info.Sized = false
	}
}

// ForgetClamp drops both the size and the clamp of id.
func (s *Store) ForgetClamp(id tree.NodeID) {
	if info, ok := s.infos[id]; ok {
		info.Sized = false
		info.HasClamp = false
		info.Clamp = BoxClamp{}
	}
}

func (s *Store) record(id tree.NodeID, clamp BoxClamp, size graphics.Size) {
	info := s.ensure(id)
	info.Clamp = clamp
	info.HasClamp = true
	info.Size = size
	info.Sized = true
}

// Remove deletes the record of id.
func (s *Store) Remove(id tree.NodeID) {
	delete(s.infos, id)
}

// Swap exchanges the records of a and b, following an identity swap.
func (s *Store) Swap(a, b tree.NodeID) {
	ia, okA := s.infos[a]
	ib, okB := s.infos[b]
	delete(s.infos, a)
	delete(s.infos, b)
	if okA {
		s.infos[b] = ia
	}
	if okB {
		s.infos[a] = ib
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.infos)
}

// GlobalPosition returns the offset of id from the root of its tree.
func GlobalPosition(arena *Arena, store *Store, id tree.NodeID) graphics.Offset {
	var pos graphics.Offset
	for n := range arena.Ancestors(id) {
		pos = pos.Add(store.Position(n))
	}
	return pos
}

// GlobalRect returns the rectangle id covers in root coordinates.
func GlobalRect(arena *Arena, store *Store, id tree.NodeID) (graphics.Rect, bool) {
	size, ok := store.Size(id)
	if !ok {
		return graphics.Rect{}, false
	}
	return graphics.RectFromOffsetSize(GlobalPosition(arena, store, id), size), true
}
