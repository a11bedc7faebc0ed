package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/minchang/zipscout/pkg/common"
	"github.com/minchang/zipscout/pkg/types"
)

func (ws *WebServer) GetFilters(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	store := ws.Sessions.Get(sessionId)
	ns := r.PathValue("ns")
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, map[string]any{
		"state":     store.Effective(ns),
		"overrides": store.Overrides(ns),
		"favorites": store.Favorites(),
	})
}

// UpdateFilters applies one setter action or a batch of them against
// the session store and responds with the resulting snapshot.
func (ws *WebServer) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	store := ws.Sessions.Get(sessionId)
	ns := r.PathValue("ns")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updates, err := parseUpdates(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, u := range updates {
		if err := applyUpdate(store, ns, u); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	noFilterUpdates.Add(float64(len(updates)))
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, store.Effective(ns))
}

func parseUpdates(body []byte) ([]FilterUpdate, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var updates []FilterUpdate
		err := json.Unmarshal(trimmed, &updates)
		return updates, err
	}
	var u FilterUpdate
	if err := json.Unmarshal(trimmed, &u); err != nil {
		return nil, err
	}
	return []FilterUpdate{u}, nil
}

// applyUpdate routes one action to the matching store setter. Paging,
// sorting and selection are store-wide; everything else respects the
// namespace.
func applyUpdate(store *types.Store, ns string, u FilterUpdate) error {
	switch u.Field {
	case "page":
		n, ok := intValue(u.Value)
		if !ok {
			return fmt.Errorf("page needs a number, got %v", u.Value)
		}
		store.SetPage(n)
		return nil
	case "size":
		n, ok := intValue(u.Value)
		if !ok {
			return fmt.Errorf("size needs a number, got %v", u.Value)
		}
		store.SetSize(n)
		return nil
	case "sort":
		m, ok := u.Value.(map[string]any)
		if !ok {
			return fmt.Errorf("sort needs {column, order}")
		}
		column, _ := m["column"].(string)
		order, _ := m["order"].(string)
		store.SetSortConfig(column, types.SortOrder(order))
		return nil
	case "selectedIds":
		store.SetSelectedIds(toIds(u.Value))
		return nil
	case "showSelectedOnly":
		v, _ := u.Value.(bool)
		store.SetShowSelectedOnly(v)
		return nil
	}
	field := types.Field(u.Field)
	if field.IsRange() {
		rng, ok := types.RangeValue(u.Value)
		if !ok {
			return fmt.Errorf("field %s needs a [min, max] pair", u.Field)
		}
		if ns == "" {
			store.SetRangeFilter(field, rng)
		} else {
			store.SetNsRangeFilter(ns, field, rng)
		}
		return nil
	}
	if ns == "" {
		store.SetFilter(field, u.Value)
	} else {
		store.SetNsFilter(ns, field, u.Value)
	}
	return nil
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	}
	return 0, false
}

func toIds(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (ws *WebServer) ResetFilters(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	store := ws.Sessions.Get(sessionId)
	ns := r.PathValue("ns")
	if ns == "" {
		store.ResetFilters()
	} else {
		store.ResetNamespace(ns)
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, store.Effective(ns))
}

func (ws *WebServer) GetPresets(w http.ResponseWriter, r *http.Request) {
	ws.presetMu.RLock()
	presets := ws.presets
	ws.presetMu.RUnlock()
	publicHeaders(w, r, true, "60")
	writeJson(w, http.StatusOK, presets)
}

func (ws *WebServer) SavePresets(w http.ResponseWriter, r *http.Request) {
	var presets []types.Preset
	if err := json.NewDecoder(r.Body).Decode(&presets); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, p := range presets {
		if p.Id == "" || p.Name == "" {
			http.Error(w, "presets need id and name", http.StatusBadRequest)
			return
		}
	}
	ws.presetMu.Lock()
	ws.presets = presets
	ws.presetMu.Unlock()
	ws.saveQueue.Add("presets")
	if ws.OnPresetsChanged != nil {
		ws.OnPresetsChanged(presets)
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, map[string]any{"saved": len(presets)})
}

// ExportPresets streams the persisted presets file as a download.
func (ws *WebServer) ExportPresets(w http.ResponseWriter, r *http.Request) {
	if ws.Storage == nil {
		http.Error(w, "no storage configured", http.StatusNotFound)
		return
	}
	genericHeaders(w, r, true)
	w.Header().Set("Content-Disposition", "attachment; filename=presets.json")
	if _, err := ws.Storage.StreamContent(w, "presets.json"); err != nil {
		logError("export presets", err)
		http.Error(w, "no saved presets", http.StatusNotFound)
	}
}

func (ws *WebServer) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	id := r.PathValue("id")
	ns := r.PathValue("ns")
	ws.presetMu.RLock()
	var preset *types.Preset
	for i := range ws.presets {
		if ws.presets[i].Id == id {
			preset = &ws.presets[i]
			break
		}
	}
	ws.presetMu.RUnlock()
	if preset == nil {
		http.Error(w, "unknown preset", http.StatusNotFound)
		return
	}
	store := ws.Sessions.Get(sessionId)
	preset.Apply(store, ns)
	noPresetApplies.Inc()
	if ws.Tracking != nil {
		go ws.Tracking.TrackPresetApplied(sessionId, id)
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, store.Effective(ns))
}

// ClickUpdate reports one listing click with its position in the page.
type ClickUpdate struct {
	Id       string  `json:"id"`
	Position float32 `json:"position"`
}

func (ws *WebServer) TrackListingClick(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var upd ClickUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil || upd.Id == "" {
		http.Error(w, "click needs an item id", http.StatusBadRequest)
		return
	}
	if ws.Tracking != nil {
		go ws.Tracking.TrackClick(sessionId, upd.Id, upd.Position)
	}
	defaultHeaders(w, r, true, "0")
	w.WriteHeader(http.StatusNoContent)
}

func (ws *WebServer) GetFavorites(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	store := ws.Sessions.Get(sessionId)
	if favs := ws.readFavoritesCookie(r); len(favs) > 0 {
		store.AddFavorites(favs...)
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, FavoritesUpdate{Ids: store.Favorites()})
}

func (ws *WebServer) AddFavorites(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var upd FavoritesUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store := ws.Sessions.Get(sessionId)
	if favs := ws.readFavoritesCookie(r); len(favs) > 0 {
		store.AddFavorites(favs...)
	}
	// only genuinely new ids produce a tracking event
	added := make([]string, 0, len(upd.Ids))
	for _, id := range upd.Ids {
		if id != "" && !store.IsFavorite(id) {
			added = append(added, id)
		}
	}
	store.AddFavorites(upd.Ids...)
	ws.setFavoritesCookie(w, store.Favorites())
	if ws.Tracking != nil {
		for _, id := range added {
			go ws.Tracking.TrackFavorite(sessionId, id, true)
		}
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, FavoritesUpdate{Ids: store.Favorites()})
}

func (ws *WebServer) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	id := r.PathValue("id")
	store := ws.Sessions.Get(sessionId)
	if favs := ws.readFavoritesCookie(r); len(favs) > 0 {
		store.AddFavorites(favs...)
	}
	store.RemoveFavorite(id)
	ws.setFavoritesCookie(w, store.Favorites())
	if ws.Tracking != nil {
		go ws.Tracking.TrackFavorite(sessionId, id, false)
	}
	defaultHeaders(w, r, true, "0")
	writeJson(w, http.StatusOK, FavoritesUpdate{Ids: store.Favorites()})
}
