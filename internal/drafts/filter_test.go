package drafts

import (
	"reflect"
	"testing"
	"time"

	"github.com/relist-app/relist/internal/models"
)

func float(v float64) *float64 { return &v }

func testCollection() []models.Draft {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Draft{
		{ID: "d1", Status: models.DraftStatusDraft, Title: "Nike Air Max 90", Brand: "Nike", Category: "shoes", Price: 80, Confidence: 0.9, CreatedAt: base},
		{ID: "d2", Status: models.DraftStatusReady, Title: "Leather jacket", Description: "Vintage brown leather", Category: "jackets", Price: 120, Confidence: 0.7, CreatedAt: base.Add(time.Hour)},
		{ID: "d3", Status: models.DraftStatusDraft, Title: "Running shorts", Brand: "Adidas", Category: "shorts", Price: 15, Confidence: 0.5, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d4", Status: models.DraftStatusPublished, Title: "Air Jordan 1", Brand: "Nike", Category: "shoes", Price: 200, Confidence: 0.95, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "d5", Status: models.DraftStatusReady, Title: "Wool scarf", Description: "Warm nike-style scarf", Category: "accessories", Price: 15, Confidence: 0.6, CreatedAt: base.Add(4 * time.Hour)},
	}
}

func ids(drafts []models.Draft) []string {
	out := make([]string, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.ID)
	}
	return out
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{
			name: "default spec returns everything newest first",
			spec: FilterSpec{},
			want: []string{"d5", "d4", "d3", "d2", "d1"},
		},
		{
			name: "status filter",
			spec: FilterSpec{Status: models.DraftStatusReady},
			want: []string{"d5", "d2"},
		},
		{
			name: "query matches title case-insensitively",
			spec: FilterSpec{Query: "air"},
			want: []string{"d4", "d1"},
		},
		{
			name: "query matches any of title, description, brand, category",
			spec: FilterSpec{Query: "nike"},
			want: []string{"d5", "d4", "d1"},
		},
		{
			name: "query matches description",
			spec: FilterSpec{Query: "vintage"},
			want: []string{"d2"},
		},
		{
			name: "category filter",
			spec: FilterSpec{Category: "shoes"},
			want: []string{"d4", "d1"},
		},
		{
			name: "price range",
			spec: FilterSpec{MinPrice: float(50), MaxPrice: float(150)},
			want: []string{"d2", "d1"},
		},
		{
			name: "min only",
			spec: FilterSpec{MinPrice: float(100)},
			want: []string{"d4", "d2"},
		},
		{
			name: "predicates are ANDed",
			spec: FilterSpec{Status: models.DraftStatusDraft, Query: "nike", Category: "shoes"},
			want: []string{"d1"},
		},
		{
			name: "sort by price descending",
			spec: FilterSpec{Sort: SortByPrice},
			want: []string{"d4", "d2", "d1", "d3", "d5"},
		},
		{
			name: "sort by confidence descending",
			spec: FilterSpec{Sort: SortByConfidence},
			want: []string{"d4", "d1", "d2", "d5", "d3"},
		},
		{
			name: "no matches",
			spec: FilterSpec{Query: "does not exist"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Derive(testCollection(), tt.spec))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDeriveIsPure(t *testing.T) {
	collection := testCollection()
	spec := FilterSpec{Query: "nike", Sort: SortByPrice}

	first := Derive(collection, spec)
	second := Derive(collection, spec)

	if !reflect.DeepEqual(first, second) {
		t.Error("Derive applied twice to the same input must yield identical output")
	}

	// The input collection must be untouched, including its order.
	if !reflect.DeepEqual(ids(collection), []string{"d1", "d2", "d3", "d4", "d5"}) {
		t.Error("Derive must not mutate the input collection")
	}
}

func TestDeriveSortIsStable(t *testing.T) {
	// d3 and d5 share a price; input order must be preserved between them.
	got := ids(Derive(testCollection(), FilterSpec{Sort: SortByPrice}))
	d3Pos, d5Pos := -1, -1
	for i, id := range got {
		switch id {
		case "d3":
			d3Pos = i
		case "d5":
			d5Pos = i
		}
	}
	if d3Pos == -1 || d5Pos == -1 || d3Pos > d5Pos {
		t.Errorf("Equal-price drafts must keep input order, got %v", got)
	}
}
