package server

import (
	"net/http"

	"github.com/gorilla/schema"

	"github.com/minchang/zipscout/pkg/query"
	zschema "github.com/minchang/zipscout/pkg/schema"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// ListRequest selects the dataset and the panel namespace a listing
// request reads its filters through.
type ListRequest struct {
	Dataset   string `schema:"dataset"`
	Namespace string `schema:"ns"`
}

// MapRequest is a ListRequest plus the viewport bounds.
type MapRequest struct {
	Dataset   string `schema:"dataset"`
	Namespace string `schema:"ns"`
	Popups    bool   `schema:"popups"`
	query.Bounds
}

func decodeQuery(r *http.Request, out any) error {
	return queryDecoder.Decode(out, r.URL.Query())
}

// ListingsResponse is the panel payload: one page of rows plus the
// counters and distinct values the filter UI derives options from.
type ListingsResponse struct {
	Dataset          string           `json:"dataset"`
	Items            []zschema.Record `json:"items"`
	Total            int              `json:"total"`
	BaseTotal        int              `json:"baseTotal"`
	Page             int              `json:"page"`
	PageSize         int              `json:"pageSize"`
	Refreshing       bool             `json:"refreshing"`
	UsageValues      []string         `json:"usageValues,omitempty"`
	FloorValues      []string         `json:"floorValues,omitempty"`
	LocationRequired bool             `json:"locationRequired,omitempty"`
}

type MapItem struct {
	Id    string         `json:"id"`
	Lat   float64        `json:"lat"`
	Lng   float64        `json:"lng"`
	Popup *zschema.Popup `json:"popup,omitempty"`
}

type MapResponse struct {
	Dataset  string       `json:"dataset"`
	Items    []MapItem    `json:"items"`
	Center   query.LatLng `json:"center"`
	RadiusKm float64      `json:"radiusKm"`
	Total    int          `json:"total"`
}

// FilterUpdate is one setter action against a session store.
type FilterUpdate struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type FavoritesUpdate struct {
	Ids []string `json:"ids"`
}
