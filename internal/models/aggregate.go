package models

import "time"

// DrugCount is one row of the top-drugs ranking.
type DrugCount struct {
	Drug  string
	Count int
}

// RoleCount is one row of a role distribution.
type RoleCount struct {
	Role  Role
	Count int
}

// DayCount is one point of a daily trend.
type DayCount struct {
	Date  time.Time
	Count int
}

// Summary describes a fact set as a whole.
type Summary struct {
	First time.Time
	Last  time.Time
	Total int
	Dated int
}

// HasDateRange reports whether the summary has at least one dated fact.
func (s Summary) HasDateRange() bool {
	return s.Dated > 0
}

// DaySpan returns the number of calendar days covered, inclusive.
func (s Summary) DaySpan() int {
	if !s.HasDateRange() {
		return 0
	}
	return int(s.Last.Sub(s.First).Hours()/24) + 1
}
