package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/minchang/zipscout/pkg/types"
)

// CacheKey derives a deterministic key from everything that affects a
// listing query. Two identical snapshots always produce the same key,
// which is what makes in-flight coalescing and the stale-while-
// revalidate cache work.
func CacheKey(dataset types.DatasetId, s types.Snapshot) string {
	return "list:" + string(dataset) + ":" + canonical(BuildListParams(dataset, s))
}

// MapCacheKey adds the viewport to the key. The geohash cell keeps
// keys stable across sub-cell pans; the radius is rounded for the same
// reason.
func MapCacheKey(dataset types.DatasetId, s types.Snapshot, b Bounds) string {
	return fmt.Sprintf("map:%s:%s:r%.1f:%s",
		dataset, b.CellKey(), b.RadiusKm(), canonical(BuildListParams(dataset, s)))
}

func canonical(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(params[k], ","))
	}
	return sb.String()
}

// MapParams extends the listing params with viewport parameters. The
// box and the derived center+radius are both sent; the box wins server
// side when supported.
func MapParams(dataset types.DatasetId, s types.Snapshot, b Bounds) url.Values {
	params := BuildListParams(dataset, s)
	c := b.Center()
	params.Set("south", formatNum(b.South))
	params.Set("west", formatNum(b.West))
	params.Set("north", formatNum(b.North))
	params.Set("east", formatNum(b.East))
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', 4, 64))
	params.Set("lng", strconv.FormatFloat(c.Lng, 'f', 4, 64))
	params.Set("radius_km", strconv.FormatFloat(b.RadiusKm(), 'f', 1, 64))
	return params
}
