package drafts

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/relist-app/relist/internal/models"
)

// fakeLister serves a swappable collection and can be told to fail.
type fakeLister struct {
	drafts []models.Draft
	err    error
	loads  int
}

func (f *fakeLister) ListDrafts(ctx context.Context, status models.DraftStatus) ([]models.Draft, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Draft, len(f.drafts))
	copy(out, f.drafts)
	return out, nil
}

func loadedStore(t *testing.T, lister *fakeLister) *Store {
	t.Helper()
	store := NewStore(lister)
	if err := store.Load(context.Background(), ""); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func selectedSorted(store *Store) []string {
	ids := store.Selected()
	sort.Strings(ids)
	return ids
}

func TestStoreLoadReplacesWholesale(t *testing.T) {
	lister := &fakeLister{drafts: testCollection()}
	store := loadedStore(t, lister)

	if len(store.Drafts()) != 5 {
		t.Fatalf("Expected 5 drafts, got %d", len(store.Drafts()))
	}

	lister.drafts = testCollection()[:2]
	if err := store.Load(context.Background(), ""); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(store.Drafts()) != 2 {
		t.Errorf("Reload must replace the cache wholesale, got %d drafts", len(store.Drafts()))
	}
}

func TestStoreLoadFailureKeepsCache(t *testing.T) {
	lister := &fakeLister{drafts: testCollection()}
	store := loadedStore(t, lister)

	lister.err = errors.New("service unavailable")
	if err := store.Load(context.Background(), ""); err == nil {
		t.Fatal("Expected load error")
	}

	// Prior cache stays visible (possibly stale).
	if len(store.Drafts()) != 5 {
		t.Errorf("Failed reload must leave the previous cache in place, got %d drafts", len(store.Drafts()))
	}
}

func TestStoreToggleSelect(t *testing.T) {
	store := loadedStore(t, &fakeLister{drafts: testCollection()})

	store.ToggleSelect("d1")
	store.ToggleSelect("d3")
	if got := selectedSorted(store); !reflect.DeepEqual(got, []string{"d1", "d3"}) {
		t.Fatalf("Expected [d1 d3], got %v", got)
	}

	store.ToggleSelect("d1")
	if got := selectedSorted(store); !reflect.DeepEqual(got, []string{"d3"}) {
		t.Fatalf("Toggle must deselect, got %v", got)
	}

	// Ids outside the loaded collection are ignored.
	store.ToggleSelect("ghost")
	if store.IsSelected("ghost") {
		t.Error("Selection must only hold ids present in the collection")
	}
}

func TestStoreSelectAllScopedToFilteredView(t *testing.T) {
	store := loadedStore(t, &fakeLister{drafts: testCollection()})
	store.SetFilter(FilterSpec{Category: "shoes"})

	// Selects exactly the visible drafts, not the whole collection.
	store.SelectAll()
	if got := selectedSorted(store); !reflect.DeepEqual(got, []string{"d1", "d4"}) {
		t.Fatalf("Expected the 2 filtered ids, got %v", got)
	}

	// Calling it again clears exactly those.
	store.SelectAll()
	if got := store.Selected(); len(got) != 0 {
		t.Fatalf("Second SelectAll must clear the selection, got %v", got)
	}
}

func TestStoreSelectAllReplacesPartialSelection(t *testing.T) {
	store := loadedStore(t, &fakeLister{drafts: testCollection()})
	store.SetFilter(FilterSpec{Category: "shoes"})

	// A selection that doesn't match the view is replaced, not cleared.
	store.ToggleSelect("d2")
	store.SelectAll()
	if got := selectedSorted(store); !reflect.DeepEqual(got, []string{"d1", "d4"}) {
		t.Fatalf("SelectAll must become exactly the visible ids, got %v", got)
	}
}

func TestStoreClearSelection(t *testing.T) {
	store := loadedStore(t, &fakeLister{drafts: testCollection()})
	store.ToggleSelect("d1")
	store.ClearSelection()
	if got := store.Selected(); len(got) != 0 {
		t.Fatalf("Expected empty selection, got %v", got)
	}
}

func TestStoreReloadPrunesVanishedSelection(t *testing.T) {
	lister := &fakeLister{drafts: testCollection()}
	store := loadedStore(t, lister)

	store.ToggleSelect("d1")
	store.ToggleSelect("d2")

	// d1 was deleted server-side by another client.
	remaining := testCollection()[1:]
	lister.drafts = remaining
	if err := store.Load(context.Background(), ""); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if store.IsSelected("d1") {
		t.Error("A selected id that vanished from the collection must leave the selection")
	}
	if !store.IsSelected("d2") {
		t.Error("Surviving selected ids must stay selected")
	}
}

func TestStoreSelectedIsSnapshot(t *testing.T) {
	store := loadedStore(t, &fakeLister{drafts: testCollection()})
	store.ToggleSelect("d1")

	snapshot := store.Selected()
	store.ToggleSelect("d2")

	if !reflect.DeepEqual(snapshot, []string{"d1"}) {
		t.Errorf("Later selection changes must not reach an earlier snapshot, got %v", snapshot)
	}
}
