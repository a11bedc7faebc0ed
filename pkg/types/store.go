package types

import (
	"slices"
	"strings"
	"sync"
)

// Store is the single source of truth for filter, sort, pagination,
// selection and favorite state. It is created once per session and
// mutated only through the named setters below; every mutation is
// atomic and observable by all subscribers before the setter returns.
//
// Namespaced panels write through SetNsFilter/SetNsRangeFilter into an
// override patch and read through Effective, which shallow-merges the
// patch over the global state at read time.
type Store struct {
	mu        sync.RWMutex
	state     Snapshot
	overrides map[string]Patch
	favorites []string

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore() *Store {
	return &Store{
		state:     DefaultSnapshot(),
		overrides: make(map[string]Patch),
		subs:      make(map[int]func(Snapshot)),
	}
}

// State returns a copy of the global snapshot.
func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.state)
}

// Effective returns the merged view for a namespace. An empty
// namespace, or one without overrides, yields the global state.
func (s *Store) Effective(namespace string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Resolve(cloneSnapshot(s.state), s.overrides, namespace)
}

// Overrides returns a copy of the namespace patch, or nil.
func (s *Store) Overrides(namespace string) Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides[namespace].Clone()
}

// Subscribe registers a callback invoked synchronously after every
// mutation with the new global snapshot. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.State()
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// SetFilter sets one global scalar field. Location fields cascade:
// a new province clears city and town, a new city clears town, and any
// location change drops the row selection, since a selection is only
// meaningful within the geographic scope that produced it.
func (s *Store) SetFilter(field Field, value any) {
	s.mu.Lock()
	s.applyScalar(&s.state, field, value, func(f Field, v any) {
		applyField(&s.state, f, v)
	})
	s.mu.Unlock()
	s.notify()
}

// SetRangeFilter sets a global range field. The pair is stored
// verbatim; ordering is the caller's responsibility.
func (s *Store) SetRangeFilter(field Field, value Range) {
	if !field.IsRange() {
		return
	}
	s.mu.Lock()
	applyField(&s.state, field, value)
	s.mu.Unlock()
	s.notify()
}

// SetNsFilter sets a field only inside the namespace override patch.
// The global value is never touched. Location cascades apply within
// the patch so a namespaced panel keeps a coherent cascade.
func (s *Store) SetNsFilter(namespace string, field Field, value any) {
	if namespace == "" {
		s.SetFilter(field, value)
		return
	}
	s.mu.Lock()
	patch := s.overrides[namespace]
	if patch == nil {
		patch = make(Patch)
		s.overrides[namespace] = patch
	}
	s.applyScalar(&s.state, field, value, func(f Field, v any) {
		patch[f] = v
	})
	s.mu.Unlock()
	s.notify()
}

// SetNsRangeFilter sets a range field inside the namespace patch only.
func (s *Store) SetNsRangeFilter(namespace string, field Field, value Range) {
	if !field.IsRange() {
		return
	}
	if namespace == "" {
		s.SetRangeFilter(field, value)
		return
	}
	s.mu.Lock()
	patch := s.overrides[namespace]
	if patch == nil {
		patch = make(Patch)
		s.overrides[namespace] = patch
	}
	patch[field] = value
	s.mu.Unlock()
	s.notify()
}

// applyScalar writes a scalar through set and performs the location
// cascade, selection invalidation and page reset. Caller holds the
// write lock. Page is store-wide, so a namespaced location write still
// resets the global page, same as the selection it invalidates.
func (s *Store) applyScalar(state *Snapshot, field Field, value any, set func(Field, any)) {
	switch field {
	case FieldProvince:
		set(FieldCityDistrict, "")
		set(FieldTown, "")
		s.clearSelectionLocked(state)
		state.Page = 1
	case FieldCityDistrict:
		set(FieldTown, "")
		s.clearSelectionLocked(state)
		state.Page = 1
	case FieldTown:
		s.clearSelectionLocked(state)
		state.Page = 1
	case FieldSearchQuery:
		// clearing the text also drops the field selector and
		// returns to the first page
		if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
			set(FieldSearchField, SearchAll)
			value = ""
			state.Page = 1
		}
	}
	set(field, value)
}

func (s *Store) clearSelectionLocked(state *Snapshot) {
	state.SelectedIds = nil
	state.ShowSelectedOnly = false
}

// SetPage sets the 1-based page number.
func (s *Store) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.state.Page = page
	s.mu.Unlock()
	s.notify()
}

// SetSize sets the page size and resets the page to 1. The original
// call sites were split on whether a size change implies a page reset;
// here it always does.
func (s *Store) SetSize(size int) {
	if !ValidPageSize(size) {
		size = PageSizes[0]
	}
	s.mu.Lock()
	s.state.Size = size
	s.state.Page = 1
	s.mu.Unlock()
	s.notify()
}

// SetSortConfig sets the sort column and direction. An empty column
// clears the sort entirely.
func (s *Store) SetSortConfig(column string, order SortOrder) {
	s.mu.Lock()
	if column == "" {
		s.state.SortBy = ""
		s.state.SortOrder = ""
	} else {
		s.state.SortBy = column
		s.state.SortOrder = order
	}
	s.mu.Unlock()
	s.notify()
}

// ResetFilters restores every global field to its default. Namespace
// overrides and favorites survive a reset.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	s.state = DefaultSnapshot()
	s.mu.Unlock()
	s.notify()
}

// ResetNamespace drops every override for the namespace.
func (s *Store) ResetNamespace(namespace string) {
	s.mu.Lock()
	delete(s.overrides, namespace)
	s.mu.Unlock()
	s.notify()
}

// AddFavorites marks ids as favorite, keeping insertion order and
// ignoring ids already present.
func (s *Store) AddFavorites(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		if id == "" || slices.Contains(s.favorites, id) {
			continue
		}
		s.favorites = append(s.favorites, id)
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveFavorite unmarks one id; removing an absent id is a no-op.
func (s *Store) RemoveFavorite(id string) {
	s.mu.Lock()
	if i := slices.Index(s.favorites, id); i >= 0 {
		s.favorites = slices.Delete(s.favorites, i, i+1)
	}
	s.mu.Unlock()
	s.notify()
}

// Favorites returns the favorite ids in insertion order.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites)
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.favorites, id)
}

// SetSelectedIds replaces the row selection, de-duplicating while
// preserving order.
func (s *Store) SetSelectedIds(ids []string) {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	s.state.SelectedIds = out
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetShowSelectedOnly(v bool) {
	s.mu.Lock()
	s.state.ShowSelectedOnly = v
	s.mu.Unlock()
	s.notify()
}

func cloneSnapshot(in Snapshot) Snapshot {
	in.FloorConfirmation = slices.Clone(in.FloorConfirmation)
	in.CurrentStatus = slices.Clone(in.CurrentStatus)
	in.SpecialFlags = slices.Clone(in.SpecialFlags)
	in.SpecialConditions = slices.Clone(in.SpecialConditions)
	in.SelectedIds = slices.Clone(in.SelectedIds)
	return in
}
