package types

// Patch is a partial filter state: the fields one namespace has
// overridden. Values are stored exactly as written; Resolve applies
// them on top of the global snapshot at read time.
type Patch map[Field]any

func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Resolve shallow-merges a namespace patch over the base snapshot and
// returns the effective state. The base is never mutated: later global
// changes stay visible to a namespace unless that specific field has
// been overridden.
func Resolve(base Snapshot, overrides map[string]Patch, namespace string) Snapshot {
	if namespace == "" || overrides == nil {
		return base
	}
	patch, ok := overrides[namespace]
	if !ok {
		return base
	}
	for field, value := range patch {
		applyField(&base, field, value)
	}
	return base
}

func applyField(s *Snapshot, field Field, value any) {
	switch field {
	case FieldProvince:
		s.Province = asString(value)
	case FieldCityDistrict:
		s.CityDistrict = asString(value)
	case FieldTown:
		s.Town = asString(value)
	case FieldPriceRange:
		s.PriceRange = asRange(value, s.PriceRange)
	case FieldSalePriceRange:
		s.SalePriceRange = asRange(value, s.SalePriceRange)
	case FieldAreaRange:
		s.AreaRange = asRange(value, s.AreaRange)
	case FieldLandAreaRange:
		s.LandAreaRange = asRange(value, s.LandAreaRange)
	case FieldBuildYearRange:
		s.BuildYearRange = asRange(value, s.BuildYearRange)
	case FieldDepositRange:
		s.DepositRange = asRange(value, s.DepositRange)
	case FieldMonthlyRentRange:
		s.MonthlyRentRange = asRange(value, s.MonthlyRentRange)
	case FieldBidCountRange:
		s.BidCountRange = asRange(value, s.BidCountRange)
	case FieldSearchField:
		s.SearchField = asString(value)
	case FieldSearchQuery:
		s.SearchQuery = asString(value)
	case FieldBuildingType:
		s.BuildingType = asString(value)
	case FieldFloor:
		s.Floor = asString(value)
	case FieldFloorConfirmation:
		s.FloorConfirmation = asStrings(value)
	case FieldHasElevator:
		s.HasElevator = asString(value)
	case FieldCurrentStatus:
		s.CurrentStatus = asStrings(value)
	case FieldSpecialFlags:
		s.SpecialFlags = asStrings(value)
	case FieldSpecialConditions:
		s.SpecialConditions = asStrings(value)
	case FieldAuctionDateFrom:
		s.AuctionDateFrom = asString(value)
	case FieldAuctionDateTo:
		s.AuctionDateTo = asString(value)
	case FieldUnder100:
		s.Under100 = asBool(value)
	case FieldRentType:
		s.RentType = asString(value)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func asRange(v any, fallback Range) Range {
	switch t := v.(type) {
	case Range:
		return t
	case [2]float64:
		return Range(t)
	case []float64:
		if len(t) == 2 {
			return Range{t[0], t[1]}
		}
	case []any:
		if len(t) == 2 {
			min, okMin := asFloat(t[0])
			max, okMax := asFloat(t[1])
			if okMin && okMax {
				return Range{min, max}
			}
		}
	}
	return fallback
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
