package availability

import (
	"testing"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureItems() []domain.Item {
	return []domain.Item{
		{ID: "far", Title: "Cordless Drill", Description: "18V with two batteries", Category: domain.ItemCategoryTools, Location: geo.Point{Lat: 37.8044, Lng: -122.2712}},
		{ID: "near", Title: "Camping Tent", Description: "Sleeps four", Category: domain.ItemCategorySports, Location: geo.Point{Lat: 37.7750, Lng: -122.4195}},
		{ID: "mid", Title: "Hammer", Description: "Works well with a DRILL press", Category: domain.ItemCategoryTools, Location: geo.Point{Lat: 37.7849, Lng: -122.4094}},
		{ID: "book", Title: "Go Programming", Description: "Paperback", Category: domain.ItemCategoryBooks, Location: geo.Point{Lat: 37.7750, Lng: -122.4195}},
	}
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	items := fixtureItems()

	t.Run("Drill in all categories", func(t *testing.T) {
		got := Search(items, "drill", AllCategories)
		assert.Equal(t, []string{"far", "mid"}, ids(got))
	})

	t.Run("Empty query matches all", func(t *testing.T) {
		assert.Equal(t, ids(items), ids(Search(items, "", "")))
	})

	t.Run("Query matches category text", func(t *testing.T) {
		assert.Equal(t, []string{"book"}, ids(Search(items, "BOOKS", "all")))
	})

	t.Run("Category filter is conjunctive", func(t *testing.T) {
		assert.Empty(t, Search(items, "drill", string(domain.ItemCategorySports)))
		assert.Equal(t, []string{"far", "mid"}, ids(Search(items, "", string(domain.ItemCategoryTools))))
	})

	t.Run("Whitespace around query is ignored", func(t *testing.T) {
		assert.Equal(t, []string{"near"}, ids(Search(items, "  tent ", "all")))
	})

	t.Run("Input is not mutated", func(t *testing.T) {
		before := ids(items)
		_ = Search(items, "tent", "all")
		assert.Equal(t, before, ids(items))
	})
}

func TestSortByDistance(t *testing.T) {
	items := fixtureItems()
	origin := &geo.Point{Lat: 37.7749, Lng: -122.4194}

	t.Run("Nearest first with stable ties", func(t *testing.T) {
		got := SortByDistance(items, origin)
		assert.Equal(t, []string{"near", "book", "mid", "far"}, ids(got))
		assert.Equal(t, []string{"far", "near", "mid", "book"}, ids(items))
	})

	t.Run("Nil origin keeps order", func(t *testing.T) {
		got := SortByDistance(items, nil)
		assert.Equal(t, ids(items), ids(got))
		got[0].Title = "changed"
		assert.Equal(t, "Cordless Drill", items[0].Title)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, SortByDistance(nil, origin))
	})
}

func TestWithDistances(t *testing.T) {
	items := fixtureItems()[:2]

	t.Run("With origin", func(t *testing.T) {
		got := WithDistances(items, &geo.Point{Lat: 37.7749, Lng: -122.4194})
		require.Len(t, got, 2)
		require.NotNil(t, got[0].DistanceMiles)
		assert.InDelta(t, 8.4, *got[0].DistanceMiles, 0.3)
		assert.Less(t, *got[1].DistanceMiles, 0.1)
	})

	t.Run("Without origin", func(t *testing.T) {
		got := WithDistances(items, nil)
		assert.Nil(t, got[0].DistanceMiles)
		assert.Nil(t, got[1].DistanceMiles)
	})
}

func TestBrowse(t *testing.T) {
	got := Browse(fixtureItems(), "drill", "tools", &geo.Point{Lat: 37.7749, Lng: -122.4194})
	require.Len(t, got, 2)
	assert.Equal(t, "mid", got[0].ID)
	assert.Equal(t, "far", got[1].ID)
}
