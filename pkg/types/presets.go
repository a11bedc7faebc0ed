package types

import "strings"

// Preset is a named bundle of field assignments that can be applied in
// one step. Presets are plain data so they can be persisted and edited
// without code changes.
type Preset struct {
	Id          string         `json:"id"`
	Name        string         `json:"name"`
	Emoji       string         `json:"emoji,omitempty"`
	Description string         `json:"description,omitempty"`
	Filters     map[string]any `json:"filters"`
}

// Apply writes every bundled assignment through the store setters.
// Keys containing "Range" go through the range setter, everything else
// through the scalar setter, and the page always resets to 1
// afterwards. An empty namespace applies globally.
func (p *Preset) Apply(store *Store, namespace string) {
	for key, value := range p.Filters {
		field := Field(key)
		if strings.Contains(key, "Range") {
			r, ok := RangeValue(value)
			if !ok {
				continue
			}
			if namespace == "" {
				store.SetRangeFilter(field, r)
			} else {
				store.SetNsRangeFilter(namespace, field, r)
			}
			continue
		}
		if namespace == "" {
			store.SetFilter(field, value)
		} else {
			store.SetNsFilter(namespace, field, value)
		}
	}
	store.SetPage(1)
}

// DefaultPresets are the built-in quick filters served until an
// operator saves their own set.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Id:          "preset1",
			Name:        "강남 아파트 3억 이하",
			Emoji:       "🏢",
			Description: "강남구 아파트, 3억원 이하",
			Filters: map[string]any{
				"province":     "서울특별시",
				"cityDistrict": "강남구",
				"buildingType": "아파트",
				"priceRange":   []float64{0, 30000},
			},
		},
		{
			Id:          "preset2",
			Name:        "경기도 신축 빌라",
			Emoji:       "🏘️",
			Description: "경기도 신축 빌라, 엘리베이터 있음",
			Filters: map[string]any{
				"province":       "경기도",
				"buildingType":   "빌라",
				"hasElevator":    "있음",
				"buildYearRange": []float64{2020, 2024},
			},
		},
		{
			Id:          "preset3",
			Name:        "1억대 소형 매물",
			Emoji:       "💰",
			Description: "1-2억원, 소형 평수",
			Filters: map[string]any{
				"priceRange": []float64{10000, 20000},
				"areaRange":  []float64{20, 60},
			},
		},
	}
}

// RangeValue coerces the loosely typed values that arrive from JSON
// bodies and preset files into a Range.
func RangeValue(v any) (Range, bool) {
	switch t := v.(type) {
	case Range:
		return t, true
	case [2]float64:
		return Range(t), true
	case []float64:
		if len(t) == 2 {
			return Range{t[0], t[1]}, true
		}
	case []any:
		if len(t) == 2 {
			min, okMin := asFloat(t[0])
			max, okMax := asFloat(t[1])
			if okMin && okMax {
				return Range{min, max}, true
			}
		}
	case []int:
		if len(t) == 2 {
			return Range{float64(t[0]), float64(t[1])}, true
		}
	}
	return Range{}, false
}
