package models

import "fmt"

// QueryMode selects how the feed is queried.
type QueryMode int

const (
	// QueryRecent fetches the most recent events without a filter.
	QueryRecent QueryMode = iota
	// QuerySearch fetches events matching a drug name.
	QuerySearch
)

// String returns the mode name used in logs and metrics labels.
func (m QueryMode) String() string {
	switch m {
	case QueryRecent:
		return "recent"
	case QuerySearch:
		return "search"
	default:
		return "unknown"
	}
}

// QueryKey identifies one fetch+normalize request. It is comparable and is
// used directly as the cache key.
type QueryKey struct {
	Drug  string
	Mode  QueryMode
	Limit int
}

// RecentKey returns the key for the unfiltered most-recent query.
func RecentKey(limit int) QueryKey {
	return QueryKey{Mode: QueryRecent, Limit: limit}
}

// SearchKey returns the key for a drug search.
func SearchKey(drug string, limit int) QueryKey {
	return QueryKey{Mode: QuerySearch, Drug: drug, Limit: limit}
}

// String renders the key for display.
func (k QueryKey) String() string {
	if k.Mode == QuerySearch {
		return fmt.Sprintf("search(%q, %d)", k.Drug, k.Limit)
	}
	return fmt.Sprintf("%s(%d)", k.Mode, k.Limit)
}
