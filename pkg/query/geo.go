package query

import (
	"errors"
	"math"

	"github.com/mmcloughlin/geohash"
)

const (
	earthRadiusM = 6371000.0

	// MaxRadiusKm caps the radius derived from a bounding box; wider
	// boxes still send the box itself, the radius is only a fallback
	// for services that do radius search.
	MaxRadiusKm = 10.0
	MinRadiusKm = 0.1

	// maxBoundsAreaKm2 rejects viewports that would sweep a region far
	// larger than any sensible map interaction.
	maxBoundsAreaKm2 = 1500.0
)

var ErrInvalidBounds = errors.New("invalid map bounds")

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a geographic bounding box in degrees.
type Bounds struct {
	South float64 `json:"south" schema:"south"`
	West  float64 `json:"west" schema:"west"`
	North float64 `json:"north" schema:"north"`
	East  float64 `json:"east" schema:"east"`
}

// Validate checks coordinate domains, ordering and the area cap, using
// the flat 111 km/degree approximation for the area estimate.
func (b Bounds) Validate() error {
	if b.South < -90 || b.North > 90 || b.West < -180 || b.East > 180 {
		return ErrInvalidBounds
	}
	if b.North <= b.South || b.East <= b.West {
		return ErrInvalidBounds
	}
	latMid := (b.South + b.North) / 2
	heightKm := (b.North - b.South) * 111.0
	widthKm := (b.East - b.West) * 111.0 * math.Cos(latMid*math.Pi/180)
	area := math.Abs(widthKm * heightKm)
	if !math.IsInf(area, 0) && !math.IsNaN(area) && area > maxBoundsAreaKm2 {
		return ErrInvalidBounds
	}
	return nil
}

// Center returns the box midpoint.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// RadiusKm returns half the great-circle diagonal of the box, clamped
// to [MinRadiusKm, MaxRadiusKm]. Services that only support radius
// search use this as an approximation of the viewport.
func (b Bounds) RadiusKm() float64 {
	d := HaversineM(LatLng{Lat: b.South, Lng: b.West}, LatLng{Lat: b.North, Lng: b.East})
	r := d / 2 / 1000
	if r < MinRadiusKm {
		return MinRadiusKm
	}
	if r > MaxRadiusKm {
		return MaxRadiusKm
	}
	return r
}

// CellKey is a geohash of the box center, coarse enough that small pans
// inside the same cell share a cache entry.
func (b Bounds) CellKey() string {
	c := b.Center()
	return geohash.EncodeWithPrecision(c.Lat, c.Lng, 6)
}

// HaversineM returns the great-circle distance between two points in
// meters.
func HaversineM(a, b LatLng) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether point lies within radiusM of center.
func WithinRadius(center, point LatLng, radiusM float64) bool {
	if radiusM < 0 || math.IsNaN(radiusM) {
		return false
	}
	return HaversineM(center, point) <= radiusM
}
