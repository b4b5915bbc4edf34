// Package geo provides great-circle distance and bounding rect helpers for
// spatio-temporal report queries.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance calculations.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dphi := (lat2 - lat1) * math.Pi / 180
	dl := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dl/2)*math.Sin(dl/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BoundingRect is a latitude/longitude rectangle in degrees, used as a cheap
// database prefilter before exact haversine filtering.
type BoundingRect struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// RectAround returns the bounding rect of a spherical cap of the given radius
// centered on the point. The rect over-covers the cap, so callers must still
// apply an exact distance filter to the rows it selects.
func RectAround(lat, lon, radiusKm float64) BoundingRect {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	cap := s2.CapFromCenterAngle(center, s1.Angle(radiusKm/EarthRadiusKm))
	rect := cap.RectBound()

	return BoundingRect{
		MinLat: rect.Lo().Lat.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
		MinLon: rect.Lo().Lng.Degrees(),
		MaxLon: rect.Hi().Lng.Degrees(),
	}
}

// WrapsAntimeridian reports whether the rect crosses the ±180° meridian.
// s2 rect bounds express such a rect with MinLon > MaxLon, so a single
// longitude range comparison would select nothing; callers must query the
// two ranges [MinLon, 180] and [-180, MaxLon] instead.
func (r BoundingRect) WrapsAntimeridian() bool {
	return r.MinLon > r.MaxLon
}

// ValidLatLng reports whether the coordinates are inside the valid
// latitude/longitude ranges.
func ValidLatLng(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
