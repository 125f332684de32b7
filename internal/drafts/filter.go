package drafts

import (
	"sort"
	"strings"

	"github.com/relist-app/relist/internal/models"
)

// SortKey selects the ordering of the derived view.
type SortKey string

const (
	SortByDate       SortKey = "date"
	SortByPrice      SortKey = "price"
	SortByConfidence SortKey = "confidence"
)

// FilterSpec is the non-persisted view parameters over the loaded
// collection. Zero values mean "no constraint". Never sent to the server.
type FilterSpec struct {
	Status   models.DraftStatus
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     SortKey
}

// Derive applies a FilterSpec to a collection as a pure function: predicates
// are ANDed in a fixed order, then a stable sort is applied. The input slice
// is never modified.
func Derive(collection []models.Draft, spec FilterSpec) []models.Draft {
	out := make([]models.Draft, 0, len(collection))
	query := strings.ToLower(strings.TrimSpace(spec.Query))

	for _, d := range collection {
		if spec.Status != "" && d.Status != spec.Status {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		if spec.Category != "" && d.Category != spec.Category {
			continue
		}
		if spec.MinPrice != nil && d.Price < *spec.MinPrice {
			continue
		}
		if spec.MaxPrice != nil && d.Price > *spec.MaxPrice {
			continue
		}
		out = append(out, d)
	}

	// Stable sort keeps ties in input order for determinism.
	switch spec.Sort {
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price > out[j].Price
		})
	case SortByConfidence:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Confidence > out[j].Confidence
		})
	default:
		// Newest first is the default ordering.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

// matchesQuery reports whether any searchable field contains the query,
// case-insensitively.
func matchesQuery(d models.Draft, query string) bool {
	for _, field := range []string{d.Title, d.Description, d.Brand, d.Category} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
