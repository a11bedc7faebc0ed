package refine

import (
	"sort"
	"strings"
	"time"

	"github.com/minchang/zipscout/pkg/schema"
)

// ratioSentinel pushes rows where the bid/public-price ratio cannot be
// computed behind every real value.
const ratioSentinel = 999999

var numericSortColumns = map[string]bool{
	"appraised_value":      true,
	"minimum_bid_price":    true,
	"building_area_pyeong": true,
	"land_area_pyeong":     true,
	"construction_year":    true,
	"public_price":         true,
	"price":                true,
	"deposit":              true,
	"monthly_rent":         true,
}

// sortKey extracts a comparable key for one column. Numeric and date
// columns compare as numbers, everything else as lowercased text; the
// numeric flag keeps the two spaces from being mixed.
func sortKey(r schema.Record, column string) (num float64, str string, numeric bool) {
	if column == "calculated_ratio" {
		minBid, okBid := schema.Num(r["minimum_bid_price"])
		public, okPub := schema.Num(r["public_price"])
		if !okBid || !okPub || public == 0 {
			return ratioSentinel, "", true
		}
		return minBid / public, "", true
	}
	if numericSortColumns[column] {
		n, ok := schema.Num(r[column])
		if !ok {
			n = 0
		}
		return n, "", true
	}
	if column == "sale_date" {
		return float64(dateMillis(schema.Stringify(r[column]))), "", true
	}
	return 0, strings.ToLower(schema.Stringify(r[column])), false
}

func dateMillis(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func keyLess(r1, r2 schema.Record, column string) bool {
	n1, s1, numeric := sortKey(r1, column)
	n2, s2, _ := sortKey(r2, column)
	if numeric {
		return n1 < n2
	}
	return s1 < s2
}

// Sort orders rows globally by one column. The input is left alone.
func Sort(rows []schema.Record, column, order string) []schema.Record {
	out := make([]schema.Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if order == "desc" {
			return keyLess(out[j], out[i], column)
		}
		return keyLess(out[i], out[j], column)
	})
	return out
}

// IsSorted verifies server-side ordering before trusting it.
func IsSorted(rows []schema.Record, column, order string) bool {
	for i := 0; i+1 < len(rows); i++ {
		var a, b schema.Record
		if order == "desc" {
			a, b = rows[i+1], rows[i]
		} else {
			a, b = rows[i], rows[i+1]
		}
		if keyLess(b, a, column) {
			return false
		}
	}
	return true
}
