// Package refine post-processes listing rows that the upstream API
// cannot filter or sort itself. Whenever any of these refinements is
// active, the fetch layer loads the full result set and this package
// re-filters, re-sorts and re-paginates it.
package refine

import (
	"log/slog"
	"strings"

	"github.com/minchang/zipscout/pkg/schema"
	"github.com/minchang/zipscout/pkg/types"
)

// MaxMapItems caps how many rows the map layer receives.
const MaxMapItems = 2000

// specialFlagTokens maps backend boolean flag columns to the Korean
// token used when only the free-text special_rights field is present.
var specialFlagTokens = map[string]string{
	"tenant_with_opposing_power":       "대항력있는임차인",
	"hug_acquisition_condition_change": "hug인수조건변경",
	"senior_lease_right":               "선순위임차권",
	"resale":                           "재매각",
	"partial_sale":                     "지분매각",
	"joint_collateral":                 "공동담보",
	"separate_registration":            "별도등기",
	"lien":                             "유치권",
	"illegal_building":                 "위반건축물",
	"lease_right_sale":                 "전세권매각",
	"land_right_unregistered":          "대지권미등기",
}

// Result is the refined view of one fetch: the page slice, the
// pre-slice rows for the map, the recomputed total and the distinct
// values used to build dynamic filter options.
type Result struct {
	Items       []schema.Record
	MapItems    []schema.Record
	Total       int
	UsageValues []string
	FloorValues []string
}

// NeedsProcessing reports whether any active filter or sort requires
// the full result set on this side.
func NeedsProcessing(s types.Snapshot) bool {
	switch {
	case len(s.FloorConfirmation) > 0,
		s.HasElevator != "" && s.HasElevator != "all",
		s.SortBy != "" && s.SortOrder != "",
		landAreaFiltered(s),
		s.AuctionDateFrom != "" || s.AuctionDateTo != "",
		statusFiltered(s),
		len(s.SpecialFlags) > 0,
		len(s.SpecialConditions) > 0,
		s.ShowSelectedOnly:
		return true
	}
	return false
}

func landAreaFiltered(s types.Snapshot) bool {
	return s.LandAreaRange.Min() > 0 || s.LandAreaRange.Max() < types.DefaultLandAreaRange.Max()
}

func statusFiltered(s types.Snapshot) bool {
	for _, v := range s.CurrentStatus {
		if strings.ToLower(v) != "all" {
			return true
		}
	}
	return false
}

// Process runs the whole refinement pipeline over raw rows. baseTotal
// is the total the server reported; it survives as Result.Total when
// no refinement is active.
func Process(rows []schema.Record, s types.Snapshot, baseTotal int) Result {
	items := rows

	if s.ShowSelectedOnly {
		items = bySelected(items, s.SelectedIds)
	}
	if q := strings.TrimSpace(s.SearchQuery); q != "" {
		items = bySearch(items, s.SearchField, q)
	}
	if len(s.FloorConfirmation) > 0 {
		items = byFloorConfirmation(items, s.FloorConfirmation)
	}
	if s.HasElevator != "" && s.HasElevator != "all" {
		items = byElevator(items, s.HasElevator)
	}

	if s.SortBy != "" && s.SortOrder != "" && len(items) > 1 {
		if !IsSorted(items, s.SortBy, string(s.SortOrder)) {
			slog.Debug("server ordering not trusted, sorting locally",
				"column", s.SortBy, "order", s.SortOrder, "rows", len(items))
		}
		items = Sort(items, s.SortBy, string(s.SortOrder))
	}

	usageValues := distinct(items, "usage")
	floorValues := distinct(items, "floor_confirmation")

	if landAreaFiltered(s) {
		items = byLandArea(items, s.LandAreaRange)
	}
	if s.AuctionDateFrom != "" || s.AuctionDateTo != "" {
		items = byAuctionDate(items, s.AuctionDateFrom, s.AuctionDateTo)
	}
	if statusFiltered(s) {
		items = byCurrentStatus(items, s.CurrentStatus)
	}
	if len(s.SpecialFlags) > 0 {
		items = bySpecialFlags(items, s.SpecialFlags)
	}
	if len(s.SpecialConditions) > 0 {
		items = bySpecialConditions(items, s.SpecialConditions)
	}

	res := Result{
		Total:       baseTotal,
		UsageValues: usageValues,
		FloorValues: floorValues,
	}
	if NeedsProcessing(s) {
		res.Total = len(items)
		res.MapItems = items
		if len(res.MapItems) > MaxMapItems {
			res.MapItems = res.MapItems[:MaxMapItems]
		}
		items = page(items, s.Page, s.Size)
	}
	res.Items = items
	if res.MapItems == nil {
		res.MapItems = items
	}
	return res
}

func page(items []schema.Record, pageNo, size int) []schema.Record {
	if size <= 0 {
		size = 20
	}
	if pageNo < 1 {
		pageNo = 1
	}
	start := (pageNo - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func bySelected(items []schema.Record, ids []string) []schema.Record {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return keep(items, func(r schema.Record) bool {
		_, ok := want[schema.Stringify(r["id"])]
		return ok
	})
}

// bySearch is a contains refinement over case number and road address;
// the server already did the heavy matching.
func bySearch(items []schema.Record, field, query string) []schema.Record {
	q := strings.ToLower(query)
	return keep(items, func(r schema.Record) bool {
		inCase := strings.Contains(strings.ToLower(schema.Stringify(r["case_number"])), q)
		inAddr := strings.Contains(strings.ToLower(schema.Stringify(r["road_address"])), q)
		switch field {
		case types.SearchCaseNumber:
			return inCase
		case types.SearchRoadAddress:
			return inAddr
		}
		return inCase || inAddr
	})
}

// byFloorConfirmation keeps rows whose value is among the wanted set.
// Rows with the value missing always pass.
func byFloorConfirmation(items []schema.Record, wanted []string) []schema.Record {
	want := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		want[w] = struct{}{}
	}
	return keep(items, func(r schema.Record) bool {
		v := strings.TrimSpace(schema.Stringify(r["floor_confirmation"]))
		if v == "" {
			return true
		}
		_, ok := want[v]
		return ok
	})
}

// byElevator keeps rows matching the preference. Rows without a known
// elevator marker always pass so incomplete data is never hidden.
func byElevator(items []schema.Record, pref string) []schema.Record {
	wantYes := pref == "있음" || pref == "Y"
	wantNo := pref == "없음" || pref == "N"
	return keep(items, func(r schema.Record) bool {
		v := schema.Stringify(r["elevator_available"])
		has := v == "O" || v == "Y"
		no := v == "X" || v == "N"
		if !has && !no {
			return true
		}
		if wantYes {
			return has
		}
		if wantNo {
			return no
		}
		return true
	})
}

func byLandArea(items []schema.Record, rng types.Range) []schema.Record {
	return keep(items, func(r schema.Record) bool {
		v, _ := schema.Num(r["land_area_pyeong"])
		if rng.Min() > 0 && v < rng.Min() {
			return false
		}
		if rng.Max() > 0 && v > rng.Max() {
			return false
		}
		return true
	})
}

// byAuctionDate filters on sale_date, falling back to the first day of
// sale_month. Rows with neither are excluded.
func byAuctionDate(items []schema.Record, from, to string) []schema.Record {
	fromTs := dateMillis(from)
	toTs := dateMillis(to)
	return keep(items, func(r schema.Record) bool {
		var ts int64
		if d := schema.Stringify(r["sale_date"]); d != "" {
			ts = dateMillis(d)
		} else if m := schema.Stringify(r["sale_month"]); m != "" {
			ts = dateMillis(m + "-01")
		}
		if ts == 0 {
			return false
		}
		if from != "" && ts < fromTs {
			return false
		}
		if to != "" && ts > toTs {
			return false
		}
		return true
	})
}

// byCurrentStatus matches any selected status by substring. The 유찰
// selection matches by prefix so round markers like 유찰(2회) count.
func byCurrentStatus(items []schema.Record, selected []string) []schema.Record {
	var wanted []string
	for _, s := range selected {
		if strings.ToLower(s) != "all" {
			wanted = append(wanted, strings.ToLower(s))
		}
	}
	if len(wanted) == 0 {
		return items
	}
	return keep(items, func(r schema.Record) bool {
		v := strings.ToLower(schema.Stringify(r["current_status"]))
		for _, sel := range wanted {
			if sel == "유찰" {
				if strings.HasPrefix(v, "유찰") {
					return true
				}
			} else if strings.Contains(v, sel) {
				return true
			}
		}
		return false
	})
}

// bySpecialFlags requires every selected flag. A flag counts when its
// boolean column is truthy or when the special_rights text carries the
// matching Korean token.
func bySpecialFlags(items []schema.Record, flags []string) []schema.Record {
	return keep(items, func(r schema.Record) bool {
		text := strings.ToLower(schema.Stringify(r["special_rights"]))
		for _, key := range flags {
			if !flagMatches(r, key, text) {
				return false
			}
		}
		return true
	})
}

func flagMatches(r schema.Record, key, rightsText string) bool {
	if v, ok := r[key]; ok && v != nil {
		switch b := v.(type) {
		case bool:
			if b {
				return true
			}
		default:
			switch strings.ToUpper(schema.Stringify(v)) {
			case "Y", "O", "TRUE", "1":
				return true
			}
		}
	}
	token := specialFlagTokens[key]
	return token != "" && strings.Contains(rightsText, strings.ToLower(token))
}

// bySpecialConditions keeps rows whose special_rights text contains
// any of the selected condition strings.
func bySpecialConditions(items []schema.Record, conds []string) []schema.Record {
	tokens := make([]string, len(conds))
	for i, c := range conds {
		tokens[i] = strings.ToLower(c)
	}
	return keep(items, func(r schema.Record) bool {
		text := strings.ToLower(schema.Stringify(r["special_rights"]))
		for _, t := range tokens {
			if strings.Contains(text, t) {
				return true
			}
		}
		return false
	})
}

func keep(items []schema.Record, pred func(schema.Record) bool) []schema.Record {
	out := items[:0:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func distinct(items []schema.Record, key string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, it := range items {
		v := schema.Stringify(it[key])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
