// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// Loading resource names used by StartLoadingMsg and StopLoadingMsg.
const (
	ResourceInitial = "initial"
	ResourceTop     = "top"
	ResourceReport  = "report"
	ResourceStats   = "stats"
)

// State is shared by the root model and every tab. All methods are safe
// for concurrent use.
type State struct {
	mu sync.RWMutex

	currentDrug string
	watchlist   []string
	lastFetch   *models.FetchCall
	pending     map[string]bool

	toasts toastQueue
}

// NewState returns a state whose initial load is pending.
func NewState() *State {
	return &State{
		pending: map[string]bool{ResourceInitial: true},
	}
}

// SetLoading marks resource as pending or settled.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.pending[resource] = true
	} else {
		delete(s.pending, resource)
	}
}

// IsLoading reports whether resource is pending.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[resource]
}

// AnyLoading reports whether anything is pending.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending) > 0
}

// Pending returns the pending resources in sorted order.
func (s *State) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pending))
	for r := range s.pending {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// CurrentDrug returns the drug shown by the search, roles and trend tabs.
func (s *State) CurrentDrug() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDrug
}

// SetCurrentDrug changes the drug shared by the drug tabs.
func (s *State) SetCurrentDrug(drug string) {
	s.mu.Lock()
	s.currentDrug = drug
	s.mu.Unlock()
}

// SetWatchlist replaces the cached watchlist.
func (s *State) SetWatchlist(drugs []string) {
	s.mu.Lock()
	s.watchlist = slices.Clone(drugs)
	s.mu.Unlock()
}

// GetWatchlist returns a copy of the cached watchlist.
func (s *State) GetWatchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.watchlist)
}

// IsWatched reports whether drug is on the watchlist, ignoring case.
func (s *State) IsWatched(drug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.watchlist, func(d string) bool {
		return models.SameDrug(d, drug)
	})
}

// SetLastFetch records the most recent feed request.
func (s *State) SetLastFetch(call models.FetchCall) {
	s.mu.Lock()
	s.lastFetch = &call
	s.mu.Unlock()
}

// GetLastFetch returns the most recent feed request, or nil.
func (s *State) GetLastFetch() *models.FetchCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

// FeedDown reports whether the most recent feed request failed.
func (s *State) FeedDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch != nil && s.lastFetch.Failed()
}
