// Package availability filters and orders item snapshots for browsing.
// Every function is a pure transform: inputs are never mutated.
package availability

import (
	"sort"
	"strings"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Listing is an item paired with its distance from the viewer.
type Listing struct {
	domain.Item
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// Search returns the items whose title, description or category contains
// query case-insensitively and whose category matches. An empty query
// matches everything; an empty or "all" category is a pass-through.
func Search(items []domain.Item, query, category string) []domain.Item {
	needle := strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if !matchesCategory(item, category) || !matchesText(item, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesCategory(item domain.Item, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	return string(item.Category) == category
}

func matchesText(item domain.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) ||
		strings.Contains(strings.ToLower(string(item.Category)), needle)
}

// SortByDistance returns a copy of items ordered nearest first. Ties keep
// their input order. A nil origin returns the copy unsorted.
func SortByDistance(items []domain.Item, origin *geo.Point) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	if origin == nil {
		return out
	}
	dist := make([]float64, len(out))
	idx := make([]int, len(out))
	for i := range out {
		idx[i] = i
		dist[i] = origin.DistanceTo(out[i].Location)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dist[idx[a]] < dist[idx[b]]
	})
	sorted := make([]domain.Item, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// WithDistances pairs each item with its distance from origin, keeping
// order. Distances are left nil when origin is nil.
func WithDistances(items []domain.Item, origin *geo.Point) []Listing {
	out := make([]Listing, len(items))
	for i, item := range items {
		out[i] = Listing{Item: item}
		if origin != nil {
			d := origin.DistanceTo(item.Location)
			out[i].DistanceMiles = &d
		}
	}
	return out
}

// Browse runs Search then SortByDistance and annotates distances.
func Browse(items []domain.Item, query, category string, origin *geo.Point) []Listing {
	return WithDistances(SortByDistance(Search(items, query, category), origin), origin)
}
