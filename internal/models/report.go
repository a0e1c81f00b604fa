package models

// DrugReport bundles the views derived from one drug search.
type DrugReport struct {
	Drug    string
	Summary Summary
	Roles   []RoleCount
	Recent  FactSet
	Trend   []DayCount
	Window  TrendWindow
}

// Empty reports whether the search returned no facts.
func (r *DrugReport) Empty() bool {
	return r == nil || r.Summary.Total == 0
}
