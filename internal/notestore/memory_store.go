package notestore

import (
	"slices"
	"sync"
)

// MemoryStore is a map-backed Store. Ids come from a counter kept next to
// the map, so an id is never handed out twice even after deletions.
type MemoryStore struct {
	mu     sync.RWMutex
	notes  map[int64]Note
	nextID int64
	opts   options
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		notes:  make(map[int64]Note),
		nextID: 1,
		opts:   buildOptions(opts),
	}
}

// Create stores a new note under a freshly assigned id.
func (s *MemoryStore) Create(title, content string, tags []string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now()
	note := Note{
		ID:        s.nextID,
		Title:     title,
		Content:   content,
		Tags:      cloneTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.notes[note.ID] = note

	return note.clone(), nil
}

// Update applies the patch and refreshes UpdatedAt.
func (s *MemoryStore) Update(id int64, patch Patch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return Note{}, notFound(id)
	}

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tags != nil {
		note.Tags = cloneTags(*patch.Tags)
	}
	note.UpdatedAt = laterOf(note.CreatedAt, s.opts.now())
	s.notes[id] = note

	return note.clone(), nil
}

// Delete removes a note and returns it.
func (s *MemoryStore) Delete(id int64) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return Note{}, notFound(id)
	}
	delete(s.notes, id)

	return note, nil
}

// Get returns a single note.
func (s *MemoryStore) Get(id int64) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return Note{}, notFound(id)
	}
	return note.clone(), nil
}

// List returns every note, or only those carrying tag, ordered by id.
func (s *MemoryStore) List(tag string) ([]Note, error) {
	return s.collect(func(n Note) bool {
		return tag == "" || n.HasTag(tag)
	}), nil
}

// Search returns the notes whose title or content contains query.
func (s *MemoryStore) Search(query string) ([]Note, error) {
	return s.collect(func(n Note) bool {
		return n.Matches(query)
	}), nil
}

// Count returns the number of stored notes.
func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes), nil
}

// Close is a no-op; the map is dropped with the store.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) collect(keep func(Note) bool) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.notes))
	for id := range s.notes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	results := make([]Note, 0, len(ids))
	for _, id := range ids {
		if note := s.notes[id]; keep(note) {
			results = append(results, note.clone())
		}
	}
	return results
}
