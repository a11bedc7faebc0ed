package query

import (
	"log/slog"
	"sync"

	"github.com/minchang/zipscout/pkg/types"
)

// SortAllowList gates sort requests against the server-provided list of
// sortable columns. Sorts on unknown columns never reach the network;
// they are dropped with a warning.
type SortAllowList struct {
	mu      sync.RWMutex
	columns map[types.DatasetId]map[string]struct{}
}

func NewSortAllowList() *SortAllowList {
	return &SortAllowList{columns: make(map[types.DatasetId]map[string]struct{})}
}

// Update replaces the allow-list for one dataset.
func (a *SortAllowList) Update(dataset types.DatasetId, columns []string) {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	a.mu.Lock()
	a.columns[dataset] = set
	a.mu.Unlock()
}

// Columns returns the known sortable columns for a dataset.
func (a *SortAllowList) Columns(dataset types.DatasetId) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.columns[dataset]))
	for c := range a.columns[dataset] {
		out = append(out, c)
	}
	return out
}

// Sanitize clears the snapshot's sort when the column is not in the
// dataset's allow-list. An empty allow-list (never fetched) rejects
// nothing, so sorting degrades gracefully when the columns endpoint is
// down.
func (a *SortAllowList) Sanitize(dataset types.DatasetId, s types.Snapshot) types.Snapshot {
	if s.SortBy == "" {
		return s
	}
	a.mu.RLock()
	set, ok := a.columns[dataset]
	a.mu.RUnlock()
	if !ok || len(set) == 0 {
		return s
	}
	if _, allowed := set[s.SortBy]; !allowed {
		slog.Warn("sort column not allow-listed, dropping sort",
			"dataset", string(dataset), "column", s.SortBy)
		s.SortBy = ""
		s.SortOrder = ""
	}
	return s
}
