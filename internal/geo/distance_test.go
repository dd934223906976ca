package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles(t *testing.T) {
	sanFrancisco := Point{Lat: 37.7749, Lng: -122.4194}
	oakland := Point{Lat: 37.8044, Lng: -122.2712}
	newYork := Point{Lat: 40.7128, Lng: -74.0060}

	t.Run("Same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, sanFrancisco.DistanceTo(sanFrancisco))
		assert.Equal(t, 0.0, DistanceMiles(10, 20, 10, 20))
	})

	t.Run("Symmetric", func(t *testing.T) {
		pairs := [][2]Point{
			{sanFrancisco, oakland},
			{sanFrancisco, newYork},
			{oakland, newYork},
			{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
		}
		for _, p := range pairs {
			assert.Equal(t, p[0].DistanceTo(p[1]), p[1].DistanceTo(p[0]))
		}
	})

	t.Run("Known distances", func(t *testing.T) {
		// San Francisco to Oakland is roughly 8.4 miles
		assert.InDelta(t, 8.4, sanFrancisco.DistanceTo(oakland), 0.2)
		// San Francisco to New York is roughly 2565 miles
		assert.InDelta(t, 2565, sanFrancisco.DistanceTo(newYork), 15)
	})

	t.Run("Antipodal points", func(t *testing.T) {
		d := DistanceMiles(0, 0, 0, 180)
		assert.InDelta(t, math.Pi*EarthRadiusMiles, d, 1e-6)
	})

	t.Run("NaN propagates", func(t *testing.T) {
		assert.True(t, math.IsNaN(DistanceMiles(math.NaN(), 0, 1, 1)))
	})
}
