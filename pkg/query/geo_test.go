package query

import (
	"math"
	"testing"

	"github.com/minchang/zipscout/pkg/types"
)

func mapSnapshot() types.Snapshot {
	s := types.DefaultSnapshot()
	s.Province = "서울특별시"
	s.CityDistrict = "강남구"
	return s
}

func TestBoundsValidate(t *testing.T) {
	good := Bounds{South: 37.49, West: 127.02, North: 37.53, East: 127.07}
	if err := good.Validate(); err != nil {
		t.Errorf("valid bounds rejected: %v", err)
	}

	cases := []Bounds{
		{South: 37.5, West: 127.0, North: 37.4, East: 127.1}, // inverted lat
		{South: 37.4, West: 127.1, North: 37.5, East: 127.0}, // inverted lng
		{South: -91, West: 0, North: 0, East: 1},             // out of domain
		{South: 30, West: 120, North: 40, East: 135},         // area over cap
	}
	for i, b := range cases {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d: expected rejection for %+v", i, b)
		}
	}
}

func TestBoundsRadiusClamped(t *testing.T) {
	// tiny box clamps up to the minimum
	tiny := Bounds{South: 37.5000, West: 127.0000, North: 37.5001, East: 127.0001}
	if r := tiny.RadiusKm(); r != MinRadiusKm {
		t.Errorf("tiny box radius = %f, want %f", r, MinRadiusKm)
	}
	// seoul-sized box clamps down to the maximum
	big := Bounds{South: 37.3, West: 126.8, North: 37.7, East: 127.2}
	if r := big.RadiusKm(); r != MaxRadiusKm {
		t.Errorf("big box radius = %f, want %f", r, MaxRadiusKm)
	}
}

func TestHaversine(t *testing.T) {
	// Seoul city hall to Gangnam station is roughly 8.1 km
	a := LatLng{Lat: 37.5663, Lng: 126.9779}
	b := LatLng{Lat: 37.4979, Lng: 127.0276}
	d := HaversineM(a, b)
	if math.Abs(d-8600) > 800 {
		t.Errorf("distance = %f m, expected about 8.6 km", d)
	}
	if HaversineM(a, a) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestMapParamsIncludeBoxAndRadius(t *testing.T) {
	b := Bounds{South: 37.49, West: 127.02, North: 37.53, East: 127.07}
	s := mapSnapshot()
	params := MapParams("sale", s, b)
	for _, key := range []string{"south", "west", "north", "east", "lat", "lng", "radius_km"} {
		if !params.Has(key) {
			t.Errorf("map params missing %s", key)
		}
	}
}

func TestMapCacheKeyStableWithinCell(t *testing.T) {
	s := mapSnapshot()
	b1 := Bounds{South: 37.4900, West: 127.0200, North: 37.5300, East: 127.0700}
	b2 := Bounds{South: 37.4901, West: 127.0201, North: 37.5301, East: 127.0701}
	if MapCacheKey("sale", s, b1) != MapCacheKey("sale", s, b2) {
		t.Error("sub-cell pan should not change the map cache key")
	}
}
