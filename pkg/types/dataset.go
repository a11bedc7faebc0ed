package types

// DatasetId names one of the independent listing panels. Each dataset
// has its own namespace in the filter store and its own backend routes.
type DatasetId string

const (
	DatasetAuctionEd = DatasetId("auction_ed")
	DatasetSale      = DatasetId("sale")
	DatasetRent      = DatasetId("rent")
)

func (d DatasetId) Valid() bool {
	switch d {
	case DatasetAuctionEd, DatasetSale, DatasetRent:
		return true
	}
	return false
}

// Namespace is the filter-store override namespace for the dataset.
func (d DatasetId) Namespace() string { return string(d) }
