package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	t.Run("ZeroDistanceToSelf", func(t *testing.T) {
		points := [][2]float64{
			{0, 0},
			{60.17, 24.94},
			{-33.87, 151.21},
			{89.9, -179.9},
		}
		for _, p := range points {
			assert.InDelta(t, 0.0, HaversineKm(p[0], p[1], p[0], p[1]), 1e-9)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		d1 := HaversineKm(60.17, 24.94, 59.33, 18.07)
		d2 := HaversineKm(59.33, 18.07, 60.17, 24.94)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("KnownDistance", func(t *testing.T) {
		// Helsinki to Stockholm, roughly 396 km
		d := HaversineKm(60.1699, 24.9384, 59.3293, 18.0686)
		assert.InDelta(t, 396.0, d, 5.0)
	})

	t.Run("OneDegreeLatitude", func(t *testing.T) {
		// One degree of latitude is about 111.2 km everywhere
		d := HaversineKm(0, 0, 1, 0)
		assert.InDelta(t, 111.2, d, 0.5)
	})
}

func TestRectAround(t *testing.T) {
	t.Run("ContainsCenter", func(t *testing.T) {
		r := RectAround(60.17, 24.94, 2.0)
		assert.LessOrEqual(t, r.MinLat, 60.17)
		assert.GreaterOrEqual(t, r.MaxLat, 60.17)
		assert.LessOrEqual(t, r.MinLon, 24.94)
		assert.GreaterOrEqual(t, r.MaxLon, 24.94)
	})

	t.Run("CoversRadius", func(t *testing.T) {
		// Points exactly radius away due north/south must fall inside the rect
		r := RectAround(45.0, 10.0, 2.0)
		north := 45.0 + 2.0/111.0
		south := 45.0 - 2.0/111.0
		assert.GreaterOrEqual(t, r.MaxLat, north)
		assert.LessOrEqual(t, r.MinLat, south)
	})

	t.Run("LongitudeWiderAtHighLatitude", func(t *testing.T) {
		low := RectAround(0.0, 0.0, 2.0)
		high := RectAround(70.0, 0.0, 2.0)
		assert.Greater(t, high.MaxLon-high.MinLon, low.MaxLon-low.MinLon)
	})

	t.Run("WrapsAcrossAntimeridian", func(t *testing.T) {
		r := RectAround(0.0, 179.99, 5.0)
		assert.True(t, r.WrapsAntimeridian())
		assert.Greater(t, r.MinLon, r.MaxLon)
		assert.Greater(t, r.MinLon, 179.0)
		assert.Less(t, r.MaxLon, -179.0)
	})

	t.Run("NoWrapAwayFromAntimeridian", func(t *testing.T) {
		r := RectAround(60.17, 24.94, 5.0)
		assert.False(t, r.WrapsAntimeridian())
	})
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(0, 0))
	assert.True(t, ValidLatLng(-90, 180))
	assert.True(t, ValidLatLng(90, -180))
	assert.False(t, ValidLatLng(90.1, 0))
	assert.False(t, ValidLatLng(0, -180.1))
	assert.False(t, ValidLatLng(-91, 181))
}
