// Package analytics derives the dashboard views from a fact set. Every
// function is pure and leaves its input untouched.
package analytics

import (
	"sort"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

const (
	// DefaultTopN is the ranking size when none is given.
	DefaultTopN = 10
	// DefaultTrendDays is the trend window when none is given.
	DefaultTrendDays = 180
	// DefaultRecentReports caps recent-report listings.
	DefaultRecentReports = 20
)

// TopDrugs ranks drugs by number of facts. Grouping uses the stored drug
// string as-is, so differently cased spellings are counted separately.
// Ties keep the order in which drugs were first seen.
func TopDrugs(facts models.FactSet, n int) []models.DrugCount {
	if n <= 0 {
		n = DefaultTopN
	}

	index := make(map[string]int)
	var counts []models.DrugCount
	for _, f := range facts {
		i, ok := index[f.Drug]
		if !ok {
			i = len(counts)
			index[f.Drug] = i
			counts = append(counts, models.DrugCount{Drug: f.Drug})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// RoleDistribution counts facts per role. Roles with no facts are omitted.
// Rows are ordered by count, then by canonical role order.
func RoleDistribution(facts models.FactSet) []models.RoleCount {
	counts := make(map[models.Role]int, len(models.Roles))
	for _, f := range facts {
		counts[f.Role]++
	}

	out := make([]models.RoleCount, 0, len(counts))
	for _, r := range models.Roles {
		if c := counts[r]; c > 0 {
			out = append(out, models.RoleCount{Role: r, Count: c})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// DailyTrend counts facts for drug per calendar day over the trailing window
// [now-days, now], both ends inclusive. Undated facts are skipped. Rows are
// ascending by date.
func DailyTrend(facts models.FactSet, drug string, days int, now time.Time) []models.DayCount {
	if days <= 0 {
		days = DefaultTrendDays
	}

	end := truncateDay(now)
	start := end.AddDate(0, 0, -days)

	counts := make(map[time.Time]int)
	for _, f := range facts {
		if !f.HasDate() || !models.SameDrug(f.Drug, drug) {
			continue
		}
		day := truncateDay(f.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		counts[day]++
	}

	out := make([]models.DayCount, 0, len(counts))
	for day, c := range counts {
		out = append(out, models.DayCount{Date: day, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// RecentReports returns dated facts, newest first, capped at limit.
// Facts sharing a date keep their input order.
func RecentReports(facts models.FactSet, limit int) models.FactSet {
	if limit <= 0 {
		limit = DefaultRecentReports
	}

	dated := facts.Dated()
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.After(dated[j].Date)
	})

	if len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}

// Summarize reports the size and date range of facts.
func Summarize(facts models.FactSet) models.Summary {
	s := models.Summary{Total: len(facts)}
	for _, f := range facts {
		if !f.HasDate() {
			continue
		}
		if s.Dated == 0 || f.Date.Before(s.First) {
			s.First = f.Date
		}
		if s.Dated == 0 || f.Date.After(s.Last) {
			s.Last = f.Date
		}
		s.Dated++
	}
	return s
}

// FillDays expands a trend into one row per day between its first and last
// date, inserting zero counts for missing days.
func FillDays(trend []models.DayCount) []models.DayCount {
	if len(trend) < 2 {
		return trend
	}

	byDay := make(map[time.Time]int, len(trend))
	for _, d := range trend {
		byDay[d.Date] = d.Count
	}

	first, last := trend[0].Date, trend[len(trend)-1].Date
	var out []models.DayCount
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		out = append(out, models.DayCount{Date: day, Count: byDay[day]})
	}
	return out
}

// truncateDay returns the calendar date of t, in t's location, as midnight UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
