package query

import (
	"testing"

	"github.com/minchang/zipscout/pkg/types"
)

func TestBuildListParamsDefaults(t *testing.T) {
	s := types.DefaultSnapshot()
	s.Province = "서울특별시"
	s.CityDistrict = "강남구"

	params := BuildListParams(types.DatasetAuctionEd, s)

	if params.Get("province") != "서울특별시" || params.Get("cityDistrict") != "강남구" {
		t.Errorf("location params = %v", params)
	}
	// untouched ranges add no constraints
	for _, key := range []string{"minPrice", "maxPrice", "minArea", "maxArea", "minYearBuilt"} {
		if params.Has(key) {
			t.Errorf("default range should not emit %s", key)
		}
	}
	if params.Get("page") != "1" || params.Get("size") != "20" {
		t.Errorf("pagination = %s/%s", params.Get("page"), params.Get("size"))
	}
}

func TestBuildListParamsRanges(t *testing.T) {
	s := types.DefaultSnapshot()
	s.PriceRange = types.Range{1000, 30000}
	s.BuildYearRange = types.Range{2000, 2024}

	params := BuildListParams(types.DatasetAuctionEd, s)

	if params.Get("minPrice") != "1000" || params.Get("maxPrice") != "30000" {
		t.Errorf("price params = %s..%s", params.Get("minPrice"), params.Get("maxPrice"))
	}
	// build year sends both alias families, max untouched
	if params.Get("minYearBuilt") != "2000" || params.Get("minBuildYear") != "2000" {
		t.Errorf("year aliases = %s/%s", params.Get("minYearBuilt"), params.Get("minBuildYear"))
	}
	if params.Has("maxYearBuilt") {
		t.Error("max at domain bound should be omitted")
	}
}

func TestBuildListParamsSearchRouting(t *testing.T) {
	s := types.DefaultSnapshot()
	s.SearchQuery = " 2023타경1234 "
	s.SearchField = types.SearchCaseNumber

	params := BuildListParams(types.DatasetAuctionEd, s)
	if params.Get("search_case_number") != "2023타경1234" {
		t.Errorf("case number search = %q", params.Get("search_case_number"))
	}
	if params.Has("search") {
		t.Error("generic search param must not be sent for a field search")
	}

	s.SearchField = types.SearchAll
	params = BuildListParams(types.DatasetAuctionEd, s)
	if params.Get("search") != "2023타경1234" {
		t.Errorf("all-field search = %q", params.Get("search"))
	}
}

func TestBuildListParamsUnder100(t *testing.T) {
	s := types.DefaultSnapshot()
	s.Under100 = true
	params := BuildListParams(types.DatasetAuctionEd, s)
	if params.Get("maxPrice") != "10000" {
		t.Errorf("under100 should cap maxPrice at 10000, got %q", params.Get("maxPrice"))
	}
}

func TestBuildListParamsRentDataset(t *testing.T) {
	s := types.DefaultSnapshot()
	s.DepositRange = types.Range{1000, 20000}
	s.RentType = "전세"

	params := BuildListParams(types.DatasetRent, s)
	if params.Get("minDeposit") != "1000" || params.Get("maxDeposit") != "20000" {
		t.Errorf("deposit = %s..%s", params.Get("minDeposit"), params.Get("maxDeposit"))
	}
	if params.Get("rentType") != "전세" {
		t.Errorf("rentType = %q", params.Get("rentType"))
	}
	// rent-only params never leak into other datasets
	if BuildListParams(types.DatasetSale, s).Has("minDeposit") {
		t.Error("deposit range must not apply to the sale dataset")
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	s := types.DefaultSnapshot()
	s.Province = "서울특별시"
	s.PriceRange = types.Range{0, 30000}

	k1 := CacheKey(types.DatasetSale, s)
	k2 := CacheKey(types.DatasetSale, s)
	if k1 != k2 {
		t.Errorf("identical snapshots must share a key: %q vs %q", k1, k2)
	}

	s.Page = 2
	if CacheKey(types.DatasetSale, s) == k1 {
		t.Error("page change must change the key")
	}
}

func TestSortAllowList(t *testing.T) {
	al := NewSortAllowList()
	al.Update(types.DatasetSale, []string{"price", "area"})

	s := types.DefaultSnapshot()
	s.SortBy = "price"
	s.SortOrder = types.SortAsc
	if got := al.Sanitize(types.DatasetSale, s); got.SortBy != "price" {
		t.Errorf("allow-listed sort dropped: %q", got.SortBy)
	}

	s.SortBy = "secret_column"
	if got := al.Sanitize(types.DatasetSale, s); got.SortBy != "" || got.SortOrder != "" {
		t.Errorf("non-allow-listed sort should be cleared, got %q %q", got.SortBy, got.SortOrder)
	}

	// unknown dataset list rejects nothing
	s.SortBy = "anything"
	if got := al.Sanitize(types.DatasetRent, s); got.SortBy != "anything" {
		t.Error("empty allow-list must not reject")
	}
}
