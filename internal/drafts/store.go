package drafts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relist-app/relist/internal/models"
)

// Lister fetches the draft collection from the service.
type Lister interface {
	ListDrafts(ctx context.Context, status models.DraftStatus) ([]models.Draft, error)
}

// Store holds the fetched draft collection, the user's selection, and the
// current view parameters. The cache is read-mostly: only Load replaces it,
// and always wholesale.
type Store struct {
	client Lister

	mu       sync.RWMutex
	cache    []models.Draft
	selected map[string]bool
	spec     FilterSpec
}

// NewStore creates an empty store backed by the given client.
func NewStore(client Lister) *Store {
	return &Store{
		client:   client,
		selected: make(map[string]bool),
	}
}

// Load fetches the full collection and replaces the cache wholesale.
// On failure the previous cache is left in place (possibly stale) and the
// error is returned without retry. A successful load starts a fresh
// selection, pruned implicitly: ids no longer present are gone with it.
func (s *Store) Load(ctx context.Context, status models.DraftStatus) error {
	fetched, err := s.client.ListDrafts(ctx, status)
	if err != nil {
		return fmt.Errorf("failed to load drafts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = fetched
	// Drop selected ids that did not survive the reload. Anything selected
	// before the fetch that still exists stays selected.
	present := make(map[string]bool, len(fetched))
	for _, d := range fetched {
		present[d.ID] = true
	}
	for id := range s.selected {
		if !present[id] {
			delete(s.selected, id)
		}
	}

	slog.Info("Draft collection loaded", "count", len(fetched))
	return nil
}

// Drafts returns a copy of the cached collection in server order.
func (s *Store) Drafts() []models.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Draft, len(s.cache))
	copy(out, s.cache)
	return out
}

// SetFilter replaces the current view parameters.
func (s *Store) SetFilter(spec FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec
}

// Filter returns the current view parameters.
func (s *Store) Filter() FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec
}

// View derives the filtered, sorted projection of the cache using the
// current FilterSpec. Pure with respect to the cache: calling it twice
// without intervening mutation yields identical output.
func (s *Store) View() []models.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Derive(s.cache, s.spec)
}

// ToggleSelect flips the selection state of one draft. Ids not present in
// the loaded collection are ignored.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.contains(id) {
		return
	}
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
}

// SelectAll toggles selection of the *filtered* view: if the selection
// already equals the visible id set it clears, otherwise it becomes exactly
// the visible ids. Drafts hidden by the current filter are never selected.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := Derive(s.cache, s.spec)
	allSelected := len(view) > 0 && len(s.selected) == len(view)
	if allSelected {
		for _, d := range view {
			if !s.selected[d.ID] {
				allSelected = false
				break
			}
		}
	}

	s.selected = make(map[string]bool)
	if !allSelected {
		for _, d := range view {
			s.selected[d.ID] = true
		}
	}
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
}

// Selected returns a snapshot of the selected ids in collection order.
// Mutating the selection afterward does not affect the snapshot.
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.selected))
	for _, d := range s.cache {
		if s.selected[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// IsSelected reports whether the given draft is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// contains must be called with the lock held.
func (s *Store) contains(id string) bool {
	for _, d := range s.cache {
		if d.ID == id {
			return true
		}
	}
	return false
}
