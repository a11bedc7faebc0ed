// Package server is the HTTP surface of the listing browser: session
// filter state, listing and map queries, the location tree, presets
// and favorites.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/minchang/zipscout/pkg/client"
	"github.com/minchang/zipscout/pkg/common"
	"github.com/minchang/zipscout/pkg/locations"
	"github.com/minchang/zipscout/pkg/query"
	"github.com/minchang/zipscout/pkg/storage"
	"github.com/minchang/zipscout/pkg/tracking"
	"github.com/minchang/zipscout/pkg/types"
)

var (
	noListings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_listing_requests_total",
		Help: "The total number of listing page requests",
	})
	noMapRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_map_requests_total",
		Help: "The total number of map viewport requests",
	})
	noPresetApplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_preset_applies_total",
		Help: "The total number of preset applications",
	})
	noFilterUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_filter_updates_total",
		Help: "The total number of filter mutations",
	})
)

type WebServer struct {
	Fetcher   *client.Fetcher
	Loader    *client.Loader
	Locations *locations.Provider
	Cache     locations.Cache
	Storage   *storage.DiskStorage
	Tracking  tracking.Tracking
	AllowList *query.SortAllowList
	Sessions  *SessionStores
	TokenKey  []byte

	// OnPresetsChanged, when set, broadcasts saved presets to the
	// other instances.
	OnPresetsChanged func([]types.Preset)

	presetMu sync.RWMutex
	presets  []types.Preset

	saveQueue *common.QueueHandler[string]
}

func NewWebServer(fetcher *client.Fetcher, loc *locations.Provider, store *storage.DiskStorage, tokenKey []byte) *WebServer {
	ws := &WebServer{
		Fetcher:   fetcher,
		Loader:    client.NewLoader(),
		Locations: loc,
		Storage:   store,
		AllowList: query.NewSortAllowList(),
		Sessions:  NewSessionStores(),
		TokenKey:  tokenKey,
	}
	ws.saveQueue = common.NewQueueHandler(ws.persist, 16)
	ws.loadPersisted()
	return ws
}

// loadPersisted restores presets and default presets on startup.
func (ws *WebServer) loadPersisted() {
	if ws.Storage == nil {
		ws.presets = types.DefaultPresets()
		return
	}
	var presets []types.Preset
	if err := ws.Storage.LoadPresets(&presets); err != nil || len(presets) == 0 {
		presets = types.DefaultPresets()
	}
	ws.presets = presets
}

// SaveNow writes the current presets synchronously, bypassing the
// debounce queue. Shutdown hooks use this.
func (ws *WebServer) SaveNow(ctx context.Context) error {
	if ws.Storage == nil {
		return nil
	}
	ws.presetMu.RLock()
	presets := ws.presets
	ws.presetMu.RUnlock()
	return ws.Storage.SavePresets(presets)
}

// ReloadPresets replaces the in-memory presets. The change listener
// calls this when another instance saves.
func (ws *WebServer) ReloadPresets(presets []types.Preset) {
	if len(presets) == 0 {
		return
	}
	ws.presetMu.Lock()
	ws.presets = presets
	ws.presetMu.Unlock()
}

// persist handles queued save markers; duplicates in one batch
// collapse to a single write.
func (ws *WebServer) persist(markers []string) {
	if ws.Storage == nil {
		return
	}
	seen := map[string]bool{}
	for _, m := range markers {
		if seen[m] {
			continue
		}
		seen[m] = true
		switch m {
		case "presets":
			ws.presetMu.RLock()
			presets := ws.presets
			ws.presetMu.RUnlock()
			if err := ws.Storage.SavePresets(presets); err != nil {
				logError("persist presets", err)
			}
		}
	}
}

// Handle wires every route. Method and path patterns follow the
// net/http mux syntax.
func (ws *WebServer) Handle() *http.ServeMux {
	srv := http.NewServeMux()

	srv.HandleFunc("OPTIONS /", common.RespondToOptions)

	srv.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		defaultHeaders(w, r, false, "0")
		w.Write([]byte("ok"))
	})

	srv.HandleFunc("GET /api/listings", ws.GetListings)
	srv.HandleFunc("GET /api/map", ws.GetMap)
	srv.HandleFunc("GET /api/locations/tree", ws.GetLocationTree)
	srv.HandleFunc("GET /api/columns", ws.GetColumns)

	srv.HandleFunc("GET /api/filters", ws.GetFilters)
	srv.HandleFunc("GET /api/filters/{ns}", ws.GetFilters)
	srv.HandleFunc("POST /api/filters", ws.UpdateFilters)
	srv.HandleFunc("POST /api/filters/{ns}", ws.UpdateFilters)
	srv.HandleFunc("DELETE /api/filters", ws.ResetFilters)
	srv.HandleFunc("DELETE /api/filters/{ns}", ws.ResetFilters)

	srv.HandleFunc("GET /api/presets", ws.GetPresets)
	srv.HandleFunc("GET /api/presets/export", ws.ExportPresets)
	srv.HandleFunc("PUT /api/presets", ws.SavePresets)
	srv.HandleFunc("POST /api/presets/{id}/apply", ws.ApplyPreset)
	srv.HandleFunc("POST /api/presets/{id}/apply/{ns}", ws.ApplyPreset)

	srv.HandleFunc("POST /api/track/click", ws.TrackListingClick)

	srv.HandleFunc("GET /api/favorites", ws.GetFavorites)
	srv.HandleFunc("POST /api/favorites", ws.AddFavorites)
	srv.HandleFunc("DELETE /api/favorites/{id}", ws.RemoveFavorite)

	return srv
}

func defaultHeaders(w http.ResponseWriter, r *http.Request, isJson bool, cacheTime string) {
	w.Header().Set("Cache-Control", "private, stale-while-revalidate="+cacheTime)
	genericHeaders(w, r, isJson)
}

func genericHeaders(w http.ResponseWriter, r *http.Request, isJson bool) {
	if isJson {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	}
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
}

func publicHeaders(w http.ResponseWriter, r *http.Request, isJson bool, cacheTime string) {
	w.Header().Set("Cache-Control", "public, max-age="+cacheTime)
	genericHeaders(w, r, isJson)
}

func writeJson(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logError("encode response", err)
	}
}
