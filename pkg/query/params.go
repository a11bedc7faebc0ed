// Package query turns an effective filter snapshot into the wire query
// for the listing backend: parameter mapping per dataset, sort
// allow-listing, deterministic cache keys and the map bounding-box
// fallback geometry.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/minchang/zipscout/pkg/types"
)

// BuildListParams serializes the query-relevant fields of a snapshot
// for one dataset. Range bounds equal to the domain default are
// omitted, so an untouched slider adds no constraint. The mapping and
// the compat aliases (minBuildYear next to minYearBuilt, saleDateFrom
// next to auctionDateFrom) follow what the backend accepts.
func BuildListParams(dataset types.DatasetId, s types.Snapshot) url.Values {
	params := url.Values{}

	if s.Province != "" {
		params.Set("province", s.Province)
	}
	if s.CityDistrict != "" {
		params.Set("cityDistrict", s.CityDistrict)
	}
	if s.Town != "" {
		params.Set("town", s.Town)
	}

	if s.BuildingType != "" && s.BuildingType != "all" {
		params.Set("usage", s.BuildingType)
	}
	if s.Floor != "" && s.Floor != "all" {
		params.Set("floor", s.Floor)
	}

	setSearch(params, s)

	price := s.PriceRange
	if s.Under100 {
		// convenience toggle: cap at 1억 regardless of the slider
		if price[1] > 10000 || price.IsDefault(types.DefaultPriceRange) {
			price[1] = 10000
		}
	}
	setRange(params, price, types.DefaultPriceRange, "minPrice", "maxPrice")
	setRange(params, s.AreaRange, types.DefaultAreaRange, "minArea", "maxArea")

	switch dataset {
	case types.DatasetAuctionEd:
		setRange(params, s.SalePriceRange, types.DefaultSalePriceRange, "minSalePrice", "maxSalePrice")
		setRange(params, s.BidCountRange, types.DefaultBidCountRange, "minBidderCount", "maxBidderCount")
	case types.DatasetRent:
		setRange(params, s.DepositRange, types.DefaultDepositRange, "minDeposit", "maxDeposit")
		setRange(params, s.MonthlyRentRange, types.DefaultMonthlyRentRange, "minMonthlyRent", "maxMonthlyRent")
		if s.RentType != "" && s.RentType != "all" {
			params.Set("rentType", s.RentType)
		}
	}

	if !s.BuildYearRange.IsDefault(types.DefaultBuildYearRange) {
		if min := s.BuildYearRange.Min(); min > 0 {
			params.Set("minYearBuilt", formatNum(min))
			params.Set("minBuildYear", formatNum(min))
		}
		if max := s.BuildYearRange.Max(); max > 0 {
			params.Set("maxYearBuilt", formatNum(max))
			params.Set("maxBuildYear", formatNum(max))
		}
	}

	if s.AuctionDateFrom != "" {
		params.Set("auctionDateFrom", s.AuctionDateFrom)
		params.Set("saleDateFrom", s.AuctionDateFrom)
	}
	if s.AuctionDateTo != "" {
		params.Set("auctionDateTo", s.AuctionDateTo)
		params.Set("saleDateTo", s.AuctionDateTo)
	}

	if s.SortBy != "" && s.SortOrder != "" {
		params.Set("sortBy", s.SortBy)
		params.Set("sortOrder", string(s.SortOrder))
	}

	params.Set("page", strconv.Itoa(s.Page))
	params.Set("size", strconv.Itoa(s.Size))

	return params
}

func setSearch(params url.Values, s types.Snapshot) {
	q := strings.TrimSpace(s.SearchQuery)
	if q == "" {
		return
	}
	switch s.SearchField {
	case types.SearchCaseNumber:
		params.Set("search_case_number", q)
	case types.SearchRoadAddress:
		params.Set("search_road_address", q)
	default:
		params.Set("search", q)
	}
}

func setRange(params url.Values, r, def types.Range, minKey, maxKey string) {
	if r.IsDefault(def) {
		return
	}
	if r.Min() > def.Min() {
		params.Set(minKey, formatNum(r.Min()))
	}
	if r.Max() < def.Max() {
		params.Set(maxKey, formatNum(r.Max()))
	}
}

func formatNum(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ListPath returns the listing endpoint path for a dataset.
func ListPath(dataset types.DatasetId) string {
	switch dataset {
	case types.DatasetAuctionEd:
		return "/api/v1/auction-completed/"
	case types.DatasetSale:
		return "/api/v1/real-transactions/"
	case types.DatasetRent:
		return "/api/v1/real-rents/"
	}
	return fmt.Sprintf("/api/v1/%s/", dataset)
}

// ColumnsPath returns the sortable-columns endpoint for a dataset.
func ColumnsPath(dataset types.DatasetId) string {
	return ListPath(dataset) + "columns"
}
