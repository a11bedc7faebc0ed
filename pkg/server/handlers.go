package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/minchang/zipscout/pkg/client"
	"github.com/minchang/zipscout/pkg/common"
	"github.com/minchang/zipscout/pkg/locations"
	"github.com/minchang/zipscout/pkg/query"
	"github.com/minchang/zipscout/pkg/refine"
	zschema "github.com/minchang/zipscout/pkg/schema"
	"github.com/minchang/zipscout/pkg/types"
)

func logError(msg string, err error) {
	slog.Error(msg, "error", err)
}

// fullLoadSize is the upstream page size used when refinement needs
// the whole result set on this side.
const fullLoadSize = 1000

func datasetFrom(raw string) (types.DatasetId, bool) {
	if raw == "" {
		return types.DatasetAuctionEd, true
	}
	d := types.DatasetId(raw)
	return d, d.Valid()
}

func (ws *WebServer) GetListings(w http.ResponseWriter, r *http.Request) {
	noListings.Inc()
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var req ListRequest
	if err := decodeQuery(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dataset, ok := datasetFrom(req.Dataset)
	if !ok {
		http.Error(w, "unknown dataset", http.StatusBadRequest)
		return
	}
	store := ws.Sessions.Get(sessionId)
	if favs := ws.readFavoritesCookie(r); len(favs) > 0 {
		store.AddFavorites(favs...)
	}
	snap := ws.AllowList.Sanitize(dataset, store.Effective(req.Namespace))
	defaultHeaders(w, r, true, "2")
	if !snap.HasLocation() {
		writeJson(w, http.StatusOK, ListingsResponse{
			Dataset:          string(dataset),
			Items:            []zschema.Record{},
			Page:             snap.Page,
			PageSize:         snap.Size,
			LocationRequired: true,
		})
		return
	}

	resp, refreshing, err := ws.loadRows(r.Context(), dataset, snap)
	if err != nil {
		logError("load listings", err)
		// stale data with a failed refresh behind it is still served
		if resp == nil {
			writeJson(w, http.StatusBadGateway, map[string]any{
				"error":             "upstream unavailable",
				"retryAfterSeconds": 2,
			})
			return
		}
	}
	res := refine.Process(resp.Items, snap, resp.Total)
	if ws.Tracking != nil {
		go ws.Tracking.TrackSearch(sessionId, dataset, snap, res.Total, r)
	}
	writeJson(w, http.StatusOK, ListingsResponse{
		Dataset:     string(dataset),
		Items:       res.Items,
		Total:       res.Total,
		BaseTotal:   resp.Total,
		Page:        snap.Page,
		PageSize:    snap.Size,
		Refreshing:  refreshing,
		UsageValues: res.UsageValues,
		FloorValues: res.FloorValues,
	})
}

// loadRows fetches through the stale-while-revalidate loader. When
// refinement is active the upstream window widens to the full set and
// the cache key drops the page, so page changes reuse one load.
func (ws *WebServer) loadRows(ctx context.Context, dataset types.DatasetId, snap types.Snapshot) (*client.ListResponse, bool, error) {
	fetchSnap := snap
	if refine.NeedsProcessing(snap) {
		fetchSnap.Page = 1
		fetchSnap.Size = fullLoadSize
	}
	params := query.BuildListParams(dataset, fetchSnap)
	key := query.CacheKey(dataset, fetchSnap)
	path := query.ListPath(dataset)
	return ws.Loader.Get(ctx, key, func(ctx context.Context) (*client.ListResponse, error) {
		return ws.Fetcher.FetchList(ctx, path, params)
	})
}

func (ws *WebServer) GetMap(w http.ResponseWriter, r *http.Request) {
	noMapRequests.Inc()
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var req MapRequest
	if err := decodeQuery(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dataset, ok := datasetFrom(req.Dataset)
	if !ok {
		http.Error(w, "unknown dataset", http.StatusBadRequest)
		return
	}
	if err := req.Bounds.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store := ws.Sessions.Get(sessionId)
	snap := ws.AllowList.Sanitize(dataset, store.Effective(req.Namespace))
	defaultHeaders(w, r, true, "10")
	if !snap.HasLocation() {
		writeJson(w, http.StatusOK, MapResponse{
			Dataset:  string(dataset),
			Items:    []MapItem{},
			Center:   req.Bounds.Center(),
			RadiusKm: req.Bounds.RadiusKm(),
		})
		return
	}
	// the map always works on the full window, never a page slice
	fetchSnap := snap
	fetchSnap.Page = 1
	fetchSnap.Size = refine.MaxMapItems
	params := query.MapParams(dataset, fetchSnap, req.Bounds)
	key := query.MapCacheKey(dataset, fetchSnap, req.Bounds)
	resp, _, err := ws.Loader.Get(r.Context(), key, func(ctx context.Context) (*client.ListResponse, error) {
		return ws.Fetcher.FetchList(ctx, query.ListPath(dataset), params)
	})
	if err != nil {
		logError("load map items", err)
		if resp == nil {
			writeJson(w, http.StatusBadGateway, map[string]any{
				"error":             "upstream unavailable",
				"retryAfterSeconds": 2,
			})
			return
		}
	}
	res := refine.Process(resp.Items, fetchSnap, resp.Total)
	center := req.Bounds.Center()
	radiusM := req.Bounds.RadiusKm() * 1000
	writeJson(w, http.StatusOK, MapResponse{
		Dataset:  string(dataset),
		Items:    mapItems(dataset, res.MapItems, req.Popups, center, radiusM),
		Center:   center,
		RadiusKm: req.Bounds.RadiusKm(),
		Total:    res.Total,
	})
}

// mapItems turns refined rows into markers. Auction rows plot one per
// case; transaction rows collapse to one marker per building address
// so the popup can carry the building's transaction table. Rows the
// upstream returned outside the requested radius are dropped.
func mapItems(dataset types.DatasetId, rows []zschema.Record, withPopups bool, center query.LatLng, radiusM float64) []MapItem {
	if dataset == types.DatasetAuctionEd {
		out := make([]MapItem, 0, len(rows))
		for _, row := range rows {
			item, ok := markerFor(row, center, radiusM)
			if !ok {
				continue
			}
			if withPopups {
				p := zschema.PopupFor(string(dataset), row, nil)
				item.Popup = &p
			}
			out = append(out, item)
		}
		return out
	}
	groups := map[string][]zschema.Record{}
	var order []string
	for _, row := range rows {
		key := row.ProbeString("address", "road_address", "jibun_address")
		if key == "" {
			key = row.Id()
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	out := make([]MapItem, 0, len(order))
	for _, key := range order {
		txs := groups[key]
		item, ok := markerFor(txs[0], center, radiusM)
		if !ok {
			continue
		}
		if withPopups {
			p := zschema.PopupFor(string(dataset), txs[0], txs)
			item.Popup = &p
		}
		out = append(out, item)
	}
	return out
}

func markerFor(row zschema.Record, center query.LatLng, radiusM float64) (MapItem, bool) {
	lat, okLat := zschema.Num(row["latitude"])
	lng, okLng := zschema.Num(row["longitude"])
	if !okLat || !okLng {
		return MapItem{}, false
	}
	if !query.WithinRadius(center, query.LatLng{Lat: lat, Lng: lng}, radiusM) {
		return MapItem{}, false
	}
	return MapItem{Id: row.Id(), Lat: lat, Lng: lng}, true
}

func (ws *WebServer) GetLocationTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	publicHeaders(w, r, true, "600")
	if q.Get("full") == "true" {
		tree, err := ws.Locations.Tree(r.Context(), q.Get("includeCounts") == "true")
		if err != nil {
			logError("location tree", err)
			http.Error(w, "location service unavailable", http.StatusBadGateway)
			return
		}
		writeJson(w, http.StatusOK, tree)
		return
	}
	tree, usingFallback := ws.Locations.Simple(r.Context())
	writeJson(w, http.StatusOK, struct {
		*locations.SimpleTree
		UsingFallback bool `json:"usingFallback"`
	}{tree, usingFallback})
}

func (ws *WebServer) GetColumns(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if err := decodeQuery(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dataset, ok := datasetFrom(req.Dataset)
	if !ok {
		http.Error(w, "unknown dataset", http.StatusBadRequest)
		return
	}
	publicHeaders(w, r, true, "300")
	cacheKey := "columns:" + string(dataset)
	if ws.Cache != nil {
		var cached []string
		if err := ws.Cache.Get(cacheKey, &cached); err == nil && len(cached) > 0 {
			ws.AllowList.Update(dataset, cached)
			writeJson(w, http.StatusOK, map[string]any{
				"dataset": dataset,
				"columns": cached,
			})
			return
		}
	}
	cols, err := ws.Fetcher.FetchColumns(r.Context(), query.ColumnsPath(dataset))
	if err != nil {
		cols = ws.AllowList.Columns(dataset)
		if len(cols) == 0 {
			logError("fetch columns", err)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
	} else {
		ws.AllowList.Update(dataset, cols)
		if ws.Cache != nil {
			if err := ws.Cache.Set(cacheKey, cols, 5*time.Minute); err != nil {
				logError("cache columns", err)
			}
		}
	}
	writeJson(w, http.StatusOK, map[string]any{
		"dataset": dataset,
		"columns": cols,
	})
}
