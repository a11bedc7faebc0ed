package types

import (
	"testing"
)

func TestNamespaceIsolation(t *testing.T) {
	s := NewStore()
	s.SetNsFilter("sale", FieldBuildingType, "아파트")

	if got := s.Effective("sale").BuildingType; got != "아파트" {
		t.Errorf("sale namespace should see override, got %q", got)
	}
	if got := s.Effective("rent").BuildingType; got != "all" {
		t.Errorf("rent namespace must not see sale override, got %q", got)
	}
	if got := s.State().BuildingType; got != "all" {
		t.Errorf("global value must stay untouched, got %q", got)
	}
}

func TestNamespaceReadTimeMerge(t *testing.T) {
	s := NewStore()
	s.SetNsFilter("rent", FieldFloor, "2")
	s.SetFilter(FieldBuildingType, "빌라")

	eff := s.Effective("rent")
	if eff.Floor != "2" {
		t.Errorf("override lost, got floor=%q", eff.Floor)
	}
	// global change after the override is still visible for
	// non-overridden fields
	if eff.BuildingType != "빌라" {
		t.Errorf("later global change not visible, got %q", eff.BuildingType)
	}
}

func TestCascadeClearing(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldProvince, "서울특별시")
	s.SetFilter(FieldCityDistrict, "강남구")
	s.SetFilter(FieldTown, "역삼동")

	s.SetFilter(FieldProvince, "경기도")

	snap := s.State()
	if snap.Province != "경기도" {
		t.Errorf("province = %q", snap.Province)
	}
	if snap.CityDistrict != "" || snap.Town != "" {
		t.Errorf("city/town should be cleared, got %q/%q", snap.CityDistrict, snap.Town)
	}
}

func TestCityChangeClearsOnlyTown(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldProvince, "서울특별시")
	s.SetFilter(FieldCityDistrict, "강남구")
	s.SetFilter(FieldTown, "역삼동")

	s.SetFilter(FieldCityDistrict, "서초구")

	snap := s.State()
	if snap.Province != "서울특별시" {
		t.Errorf("province must survive a city change, got %q", snap.Province)
	}
	if snap.Town != "" {
		t.Errorf("town should be cleared, got %q", snap.Town)
	}
}

func TestLocationChangeClearsSelection(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldProvince, "서울특별시")
	s.SetFilter(FieldCityDistrict, "강남구")
	s.SetSelectedIds([]string{"a", "b"})
	s.SetShowSelectedOnly(true)

	s.SetFilter(FieldProvince, "경기도")

	snap := s.State()
	if len(snap.SelectedIds) != 0 {
		t.Errorf("selection should be cleared, got %v", snap.SelectedIds)
	}
	if snap.ShowSelectedOnly {
		t.Error("showSelectedOnly should be disabled after location change")
	}
}

func TestRangeStoredVerbatim(t *testing.T) {
	s := NewStore()
	// out-of-order pair is a caller bug, the store must not reorder it
	s.SetRangeFilter(FieldPriceRange, Range{100, 50})
	if got := s.State().PriceRange; got != (Range{100, 50}) {
		t.Errorf("range should be stored verbatim, got %v", got)
	}
}

func TestResetScope(t *testing.T) {
	s := NewStore()
	s.SetNsFilter("auction_ed", FieldProvince, "부산광역시")
	s.SetFilter(FieldProvince, "서울특별시")

	s.ResetFilters()

	if got := s.State().Province; got != "" {
		t.Errorf("global province should be default after reset, got %q", got)
	}
	if got := s.Effective("auction_ed").Province; got != "부산광역시" {
		t.Errorf("namespace override must survive reset, got %q", got)
	}
}

func TestResetKeepsFavorites(t *testing.T) {
	s := NewStore()
	s.AddFavorites("x", "y")
	s.ResetFilters()
	if got := s.Favorites(); len(got) != 2 {
		t.Errorf("favorites should survive reset, got %v", got)
	}
}

func TestFavoritesIdempotent(t *testing.T) {
	s := NewStore()
	s.AddFavorites("a")
	s.AddFavorites("a", "b")
	if got := s.Favorites(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("favorites = %v", got)
	}
	s.RemoveFavorite("missing")
	s.RemoveFavorite("a")
	s.RemoveFavorite("a")
	if got := s.Favorites(); len(got) != 1 || got[0] != "b" {
		t.Errorf("favorites after remove = %v", got)
	}
}

func TestSetSizeResetsPage(t *testing.T) {
	s := NewStore()
	s.SetPage(7)
	s.SetSize(50)
	snap := s.State()
	if snap.Size != 50 || snap.Page != 1 {
		t.Errorf("size/page = %d/%d, want 50/1", snap.Size, snap.Page)
	}
}

func TestInvalidPageSizeFallsBack(t *testing.T) {
	s := NewStore()
	s.SetSize(33)
	if got := s.State().Size; got != 20 {
		t.Errorf("size = %d, want fallback 20", got)
	}
}

func TestSortConfigClear(t *testing.T) {
	s := NewStore()
	s.SetSortConfig("appraised_value", SortDesc)
	if snap := s.State(); snap.SortBy != "appraised_value" || snap.SortOrder != SortDesc {
		t.Errorf("sort = %q %q", snap.SortBy, snap.SortOrder)
	}
	s.SetSortConfig("", SortAsc)
	if snap := s.State(); snap.SortBy != "" || snap.SortOrder != "" {
		t.Errorf("sort should be cleared, got %q %q", snap.SortBy, snap.SortOrder)
	}
}

func TestSubscribeNotify(t *testing.T) {
	s := NewStore()
	var seen []string
	unsub := s.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap.Province)
	})
	s.SetFilter(FieldProvince, "서울특별시")
	unsub()
	s.SetFilter(FieldProvince, "경기도")

	if len(seen) != 1 || seen[0] != "서울특별시" {
		t.Errorf("seen = %v", seen)
	}
}

func TestNsRangeDoesNotTouchGlobal(t *testing.T) {
	s := NewStore()
	s.SetNsRangeFilter("rent", FieldDepositRange, Range{1000, 5000})
	if got := s.State().DepositRange; got != DefaultDepositRange {
		t.Errorf("global deposit range must stay default, got %v", got)
	}
	if got := s.Effective("rent").DepositRange; got != (Range{1000, 5000}) {
		t.Errorf("effective deposit range = %v", got)
	}
}

func TestLocationChangeResetsPage(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldProvince, "서울특별시")
	s.SetFilter(FieldCityDistrict, "강남구")
	s.SetPage(7)

	s.SetFilter(FieldProvince, "경기도")
	if got := s.State().Page; got != 1 {
		t.Errorf("page after province change = %d, want 1", got)
	}

	s.SetFilter(FieldCityDistrict, "성남시")
	s.SetPage(4)
	s.SetFilter(FieldCityDistrict, "수원시")
	if got := s.State().Page; got != 1 {
		t.Errorf("page after city change = %d, want 1", got)
	}

	s.SetPage(3)
	s.SetFilter(FieldTown, "정자동")
	if got := s.State().Page; got != 1 {
		t.Errorf("page after town change = %d, want 1", got)
	}
}

func TestNamespaceLocationChangeResetsGlobalPage(t *testing.T) {
	s := NewStore()
	s.SetPage(5)
	s.SetNsFilter("map", FieldProvince, "부산광역시")
	if got := s.State().Page; got != 1 {
		t.Errorf("page after namespaced province change = %d, want 1", got)
	}
}

func TestClearingSearchResetsFieldAndPage(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldSearchField, SearchCaseNumber)
	s.SetFilter(FieldSearchQuery, "2024타경1234")
	s.SetPage(3)

	s.SetFilter(FieldSearchQuery, "")
	snap := s.State()
	if snap.SearchField != SearchAll {
		t.Errorf("searchField after clear = %q, want %q", snap.SearchField, SearchAll)
	}
	if snap.SearchQuery != "" {
		t.Errorf("searchQuery after clear = %q", snap.SearchQuery)
	}
	if snap.Page != 1 {
		t.Errorf("page after clear = %d, want 1", snap.Page)
	}
}

func TestBlankSearchQueryTreatedAsClear(t *testing.T) {
	s := NewStore()
	s.SetFilter(FieldSearchField, SearchRoadAddress)
	s.SetFilter(FieldSearchQuery, "테헤란로")
	s.SetFilter(FieldSearchQuery, "   ")
	snap := s.State()
	if snap.SearchQuery != "" || snap.SearchField != SearchAll {
		t.Errorf("blank query kept field=%q query=%q", snap.SearchField, snap.SearchQuery)
	}
}
