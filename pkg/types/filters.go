package types

// Range is an ordered [min, max] pair. The store keeps whatever it is
// given; callers swap or clamp before writing.
type Range [2]float64

func (r Range) Min() float64 { return r[0] }
func (r Range) Max() float64 { return r[1] }

// IsDefault reports whether the range still covers the full domain and
// therefore should not be sent as a query constraint.
func (r Range) IsDefault(def Range) bool {
	return r[0] == def[0] && r[1] == def[1]
}

type SortOrder string

const (
	SortAsc  = SortOrder("asc")
	SortDesc = SortOrder("desc")
)

// Field names a single filter field. Setter actions address fields by
// name so that presets and namespaced patches stay plain data.
type Field string

const (
	FieldProvince     Field = "province"
	FieldCityDistrict Field = "cityDistrict"
	FieldTown         Field = "town"

	FieldPriceRange       Field = "priceRange"
	FieldSalePriceRange   Field = "salePriceRange"
	FieldAreaRange        Field = "areaRange"
	FieldLandAreaRange    Field = "landAreaRange"
	FieldBuildYearRange   Field = "buildYearRange"
	FieldDepositRange     Field = "depositRange"
	FieldMonthlyRentRange Field = "monthlyRentRange"
	FieldBidCountRange    Field = "bidCountRange"

	FieldSearchField Field = "searchField"
	FieldSearchQuery Field = "searchQuery"

	FieldBuildingType      Field = "buildingType"
	FieldFloor             Field = "floor"
	FieldFloorConfirmation Field = "floorConfirmation"
	FieldHasElevator       Field = "hasElevator"
	FieldCurrentStatus     Field = "currentStatus"
	FieldSpecialFlags      Field = "specialBooleanFlags"
	FieldSpecialConditions Field = "specialConditions"
	FieldAuctionDateFrom   Field = "auctionDateFrom"
	FieldAuctionDateTo     Field = "auctionDateTo"
	FieldUnder100          Field = "under100"
	FieldRentType          Field = "rentType"
)

// IsRange reports whether a field holds a [min, max] pair. Presets use
// this to route bundled values to the range setter.
func (f Field) IsRange() bool {
	switch f {
	case FieldPriceRange, FieldSalePriceRange, FieldAreaRange, FieldLandAreaRange,
		FieldBuildYearRange, FieldDepositRange, FieldMonthlyRentRange, FieldBidCountRange:
		return true
	}
	return false
}

// Search field selector values. "all" matches every searchable field.
const (
	SearchAll          = "all"
	SearchCaseNumber   = "case_number"
	SearchRoadAddress  = "road_address"
	SearchAddress      = "address"
	SearchJibunAddress = "jibun_address"
)

// Domain bounds. A range equal to its domain default is treated as
// "not filtered" when building queries.
var (
	DefaultPriceRange       = Range{0, 500000}
	DefaultSalePriceRange   = Range{0, 500000}
	DefaultAreaRange        = Range{0, 200}
	DefaultLandAreaRange    = Range{0, 200}
	DefaultBuildYearRange   = Range{1980, 2024}
	DefaultDepositRange     = Range{0, 100000}
	DefaultMonthlyRentRange = Range{0, 1000}
	DefaultBidCountRange    = Range{0, 50}
)

// PageSizes is the fixed set of accepted page sizes.
var PageSizes = []int{20, 50, 100}

func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Snapshot is one complete view of the filter state. Panels and fetch
// hooks always work from an effective Snapshot, never from the store
// internals.
type Snapshot struct {
	Province     string `json:"province"`
	CityDistrict string `json:"cityDistrict"`
	Town         string `json:"town"`

	PriceRange       Range `json:"priceRange"`
	SalePriceRange   Range `json:"salePriceRange"`
	AreaRange        Range `json:"areaRange"`
	LandAreaRange    Range `json:"landAreaRange"`
	BuildYearRange   Range `json:"buildYearRange"`
	DepositRange     Range `json:"depositRange"`
	MonthlyRentRange Range `json:"monthlyRentRange"`
	BidCountRange    Range `json:"bidCountRange"`

	SearchField string `json:"searchField"`
	SearchQuery string `json:"searchQuery"`

	BuildingType      string   `json:"buildingType"`
	Floor             string   `json:"floor"`
	FloorConfirmation []string `json:"floorConfirmation,omitempty"`
	HasElevator       string   `json:"hasElevator"`
	CurrentStatus     []string `json:"currentStatus,omitempty"`
	SpecialFlags      []string `json:"specialBooleanFlags,omitempty"`
	SpecialConditions []string `json:"specialConditions,omitempty"`
	AuctionDateFrom   string   `json:"auctionDateFrom,omitempty"`
	AuctionDateTo     string   `json:"auctionDateTo,omitempty"`
	Under100          bool     `json:"under100"`
	RentType          string   `json:"rentType,omitempty"`

	SortBy    string    `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`

	Page int `json:"page"`
	Size int `json:"size"`

	SelectedIds      []string `json:"selectedIds,omitempty"`
	ShowSelectedOnly bool     `json:"showSelectedOnly"`
}

// HasLocation reports whether enough of the location cascade is set to
// issue listing queries at all.
func (s *Snapshot) HasLocation() bool {
	return s.Province != "" && s.CityDistrict != ""
}

func DefaultSnapshot() Snapshot {
	return Snapshot{
		BuildingType:     "all",
		Floor:            "all",
		HasElevator:      "all",
		SearchField:      SearchAll,
		PriceRange:       DefaultPriceRange,
		SalePriceRange:   DefaultSalePriceRange,
		AreaRange:        DefaultAreaRange,
		LandAreaRange:    DefaultLandAreaRange,
		BuildYearRange:   DefaultBuildYearRange,
		DepositRange:     DefaultDepositRange,
		MonthlyRentRange: DefaultMonthlyRentRange,
		BidCountRange:    DefaultBidCountRange,
		Page:             1,
		Size:             20,
	}
}
