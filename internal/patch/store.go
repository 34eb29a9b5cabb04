package patch

import "errors"

// ErrNotFound is returned when a patch ID is not in the store.
var ErrNotFound = errors.New("patch not found")

// Store is the ordered queue of pending patches plus the currently selected (active) patch. Position fields are kept equal to queue indices. Store is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	queue  []Patch
	active string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// RestoreStore rebuilds a store from a persisted queue and active ID. An active ID that is not in the queue is an error.
func RestoreStore(queue []Patch, activeID string) (*Store, error) {
	s := &Store{}
	seen := make(map[string]bool, len(queue))
	for _, p := range queue {
		if p.ID == "" || seen[p.ID] {
			return nil, errors.New("patch store: missing or duplicate patch id")
		}
		seen[p.ID] = true
		s.queue = append(s.queue, p.Clone())
	}
	if activeID != "" && !seen[activeID] {
		return nil, ErrNotFound
	}
	s.active = activeID
	s.renumber()
	return s, nil
}

// Len returns the number of pending patches.
func (s *Store) Len() int {
	return len(s.queue)
}

// Has reports whether id is pending.
func (s *Store) Has(id string) bool {
	return s.indexOf(id) >= 0
}

// Get returns a copy of the pending patch with the given id.
func (s *Store) Get(id string) (Patch, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Patch{}, false
	}
	return s.queue[i].Clone(), true
}

// Pending returns copies of all pending patches in queue order.
func (s *Store) Pending() []Patch {
	out := make([]Patch, len(s.queue))
	for i, p := range s.queue {
		out[i] = p.Clone()
	}
	return out
}

// ActiveID returns the selected patch's ID, or "" when nothing is selected.
func (s *Store) ActiveID() string {
	return s.active
}

// Active returns a copy of the selected patch.
func (s *Store) Active() (Patch, bool) {
	if s.active == "" {
		return Patch{}, false
	}
	return s.Get(s.active)
}

// Enqueue appends patches in order. If nothing was selected, the first enqueued patch becomes active. Callers are expected to have screened the patches (see Screen).
func (s *Store) Enqueue(patches ...Patch) {
	for _, p := range patches {
		s.queue = append(s.queue, p.Clone())
	}
	s.renumber()
	if s.active == "" && len(s.queue) > 0 {
		s.active = s.queue[0].ID
	}
}

// Select makes id the active patch.
func (s *Store) Select(id string) error {
	if !s.Has(id) {
		return ErrNotFound
	}
	s.active = id
	return nil
}

// SelectHead makes the first pending patch active, or clears the selection when the queue is empty.
func (s *Store) SelectHead() {
	if len(s.queue) == 0 {
		s.active = ""
		return
	}
	s.active = s.queue[0].ID
}

// Remove deletes id from the queue. If id was active, the selection moves round-robin: to the patch that now occupies the removed index, wrapping to the first patch
// when the last one was removed; it is cleared when the queue becomes empty.
func (s *Store) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.queue = append(s.queue[:i], s.queue[i+1:]...)
	s.renumber()
	if s.active != id {
		return nil
	}
	switch {
	case len(s.queue) == 0:
		s.active = ""
	case i < len(s.queue):
		s.active = s.queue[i].ID
	default:
		s.active = s.queue[0].ID
	}
	return nil
}

// Reorder moves id to index (clamped to the queue bounds). The selection is unchanged.
func (s *Store) Reorder(id string, index int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	index = max(0, min(index, len(s.queue)-1))
	p := s.queue[i]
	s.queue = append(s.queue[:i], s.queue[i+1:]...)
	s.queue = append(s.queue[:index], append([]Patch{p}, s.queue[index:]...)...)
	s.renumber()
	return nil
}

// Update replaces the stored descriptors (Target, Before) of patches with matching IDs. Unknown IDs are ignored; the queue's order and length never change, nor do
// After or Rationale.
func (s *Store) Update(patches []Patch) {
	byID := make(map[string]Patch, len(patches))
	for _, p := range patches {
		byID[p.ID] = p
	}
	for i := range s.queue {
		if p, ok := byID[s.queue[i].ID]; ok {
			s.queue[i].Target = p.Target
			s.queue[i].Before = p.Before
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.queue {
		if s.queue[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) renumber() {
	for i := range s.queue {
		s.queue[i].Position = i
	}
}
