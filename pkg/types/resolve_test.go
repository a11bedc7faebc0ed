package types

import "testing"

func TestResolveNoNamespace(t *testing.T) {
	base := DefaultSnapshot()
	base.Province = "서울특별시"
	got := Resolve(base, map[string]Patch{"sale": {FieldProvince: "경기도"}}, "")
	if got.Province != "서울특별시" {
		t.Errorf("empty namespace must return base, got %q", got.Province)
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	base := DefaultSnapshot()
	base.Province = "서울특별시"
	base.Page = 3

	overrides := map[string]Patch{
		"sale": {
			FieldProvince:   "인천광역시",
			FieldPriceRange: Range{100, 200},
		},
	}

	got := Resolve(base, overrides, "sale")
	if got.Province != "인천광역시" {
		t.Errorf("province = %q", got.Province)
	}
	if got.PriceRange != (Range{100, 200}) {
		t.Errorf("priceRange = %v", got.PriceRange)
	}
	// fields without an override fall through to base
	if got.Page != 3 {
		t.Errorf("page = %d, want base value 3", got.Page)
	}
}

func TestResolveUnknownNamespace(t *testing.T) {
	base := DefaultSnapshot()
	base.Province = "대구광역시"
	got := Resolve(base, map[string]Patch{}, "rent")
	if got.Province != "대구광역시" || got.Size != base.Size {
		t.Error("unknown namespace should resolve to base")
	}
}

func TestResolveCoercesJSONValues(t *testing.T) {
	// patches decoded from JSON carry []any and float64
	base := DefaultSnapshot()
	overrides := map[string]Patch{
		"rent": {
			FieldDepositRange: []any{float64(0), float64(30000)},
			FieldCurrentStatus: []any{"유찰", "진행"},
		},
	}
	got := Resolve(base, overrides, "rent")
	if got.DepositRange != (Range{0, 30000}) {
		t.Errorf("depositRange = %v", got.DepositRange)
	}
	if len(got.CurrentStatus) != 2 || got.CurrentStatus[0] != "유찰" {
		t.Errorf("currentStatus = %v", got.CurrentStatus)
	}
}
