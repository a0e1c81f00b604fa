package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTopDrugs_IbuprofenRanksFirst(t *testing.T) {
	var facts models.FactSet
	for i := 0; i < 100; i++ {
		if i%10 == 0 {
			facts = append(facts, models.Fact{Drug: "IBUPROFEN", Role: models.RolePrimarySuspect})
			continue
		}
		facts = append(facts, models.Fact{Drug: fmt.Sprintf("DRUG-%02d", i)})
	}

	top := TopDrugs(facts, 10)
	if len(top) != 10 {
		t.Fatalf("len(top) = %d, want 10", len(top))
	}
	if top[0].Drug != "IBUPROFEN" || top[0].Count != 10 {
		t.Errorf("top[0] = %+v, want IBUPROFEN x10", top[0])
	}
	// Remaining slots are the first nine singletons in encounter order.
	if top[1].Drug != "DRUG-01" || top[9].Drug != "DRUG-09" {
		t.Errorf("ties not in first-seen order: %v", top)
	}
}

func TestTopDrugs(t *testing.T) {
	facts := models.FactSet{
		{Drug: "B"}, {Drug: "A"}, {Drug: "B"}, {Drug: "C"}, {Drug: "A"}, {Drug: "a"},
	}

	tests := []struct {
		name string
		n    int
		want []models.DrugCount
	}{
		{"All", 10, []models.DrugCount{{Drug: "B", Count: 2}, {Drug: "A", Count: 2}, {Drug: "C", Count: 1}, {Drug: "a", Count: 1}}},
		{"Bounded", 2, []models.DrugCount{{Drug: "B", Count: 2}, {Drug: "A", Count: 2}}},
		{"DefaultN", 0, []models.DrugCount{{Drug: "B", Count: 2}, {Drug: "A", Count: 2}, {Drug: "C", Count: 1}, {Drug: "a", Count: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopDrugs(facts, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("TopDrugs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTopDrugs_CaseSensitiveGrouping(t *testing.T) {
	facts := models.FactSet{{Drug: "Aspirin"}, {Drug: "ASPIRIN"}, {Drug: "ASPIRIN"}}
	got := TopDrugs(facts, 10)
	if len(got) != 2 {
		t.Fatalf("spellings should be counted separately, got %v", got)
	}
	if got[0] != (models.DrugCount{Drug: "ASPIRIN", Count: 2}) {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestTopDrugs_CountsAreExact(t *testing.T) {
	facts := models.FactSet{{Drug: "X"}, {Drug: "Y"}, {Drug: "X"}, {Drug: "Z"}, {Drug: "X"}, {Drug: "Y"}}
	truth := map[string]int{}
	for _, f := range facts {
		truth[f.Drug]++
	}
	for _, n := range []int{1, 2, 3, 5} {
		got := TopDrugs(facts, n)
		if len(got) > n {
			t.Errorf("TopDrugs(n=%d) returned %d rows", n, len(got))
		}
		for _, row := range got {
			if row.Count != truth[row.Drug] {
				t.Errorf("count for %s = %d, want %d", row.Drug, row.Count, truth[row.Drug])
			}
		}
	}
}

func TestTopDrugs_Empty(t *testing.T) {
	if got := TopDrugs(nil, 10); len(got) != 0 {
		t.Errorf("TopDrugs(nil) = %v", got)
	}
}

func TestRoleDistribution_OmitsZeroRows(t *testing.T) {
	facts := models.FactSet{
		{Drug: "A", Role: models.RoleFromCode("1")},
		{Drug: "B", Role: models.RoleFromCode("3")},
		{Drug: "C", Role: models.RoleFromCode("3")},
	}

	got := RoleDistribution(facts)
	want := []models.RoleCount{
		{Role: models.RoleConcomitant, Count: 2},
		{Role: models.RolePrimarySuspect, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("RoleDistribution() = %v, want exactly two categories", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRoleDistribution_TiesUseCanonicalOrder(t *testing.T) {
	facts := models.FactSet{
		{Role: models.RoleUnknown},
		{Role: models.RoleConcomitant},
		{Role: models.RoleSecondarySuspect},
		{Role: models.RolePrimarySuspect},
	}
	got := RoleDistribution(facts)
	for i, r := range models.Roles {
		if got[i].Role != r || got[i].Count != 1 {
			t.Errorf("row %d = %+v, want %v x1", i, got[i], r)
		}
	}
}

func TestRoleDistribution_IncludesUndatedFacts(t *testing.T) {
	facts := models.FactSet{
		{Drug: "IBUPROFEN", Role: models.RolePrimarySuspect},
		{Drug: "IBUPROFEN", Role: models.RolePrimarySuspect, Date: day(2024, 1, 1)},
	}
	got := RoleDistribution(facts)
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("RoleDistribution() = %v, want PRIMARY_SUSPECT x2", got)
	}
}

func TestDailyTrend(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 30, 0, 0, time.UTC)
	facts := models.FactSet{
		{Drug: "IBUPROFEN", Date: day(2024, 6, 30)},
		{Drug: "ibuprofen", Date: day(2024, 6, 1)},
		{Drug: "IBUPROFEN", Date: day(2024, 6, 1)},
		{Drug: "IBUPROFEN", Date: day(2024, 5, 31)},
		{Drug: "IBUPROFEN", Date: day(2024, 5, 30)},
		{Drug: "IBUPROFEN", Date: day(2024, 7, 1)},
		{Drug: "IBUPROFEN"},
		{Drug: "ASPIRIN", Date: day(2024, 6, 15)},
	}

	got := DailyTrend(facts, "Ibuprofen", 30, now)
	want := []models.DayCount{
		{Date: day(2024, 5, 31), Count: 1},
		{Date: day(2024, 6, 1), Count: 2},
		{Date: day(2024, 6, 30), Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("DailyTrend() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Date.Equal(want[i].Date) || got[i].Count != want[i].Count {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailyTrend_NonDecreasingDates(t *testing.T) {
	now := day(2024, 12, 31)
	var facts models.FactSet
	for i := 0; i < 50; i++ {
		facts = append(facts, models.Fact{Drug: "X", Date: now.AddDate(0, 0, -(i*7)%120)})
	}
	got := DailyTrend(facts, "x", 0, now)
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Fatalf("dates decrease at %d: %v then %v", i, got[i-1].Date, got[i].Date)
		}
	}
}

func TestDailyTrend_InvalidDateExcluded(t *testing.T) {
	// 20230145 parses to a null date upstream.
	facts := models.FactSet{{Drug: "IBUPROFEN", Role: models.RolePrimarySuspect}}

	if got := DailyTrend(facts, "IBUPROFEN", 180, time.Now()); len(got) != 0 {
		t.Errorf("DailyTrend() = %v, want empty", got)
	}
	if got := RoleDistribution(facts); len(got) != 1 || got[0].Count != 1 {
		t.Errorf("RoleDistribution() = %v, want the undated fact counted", got)
	}
}

func TestDailyTrend_Empty(t *testing.T) {
	got := DailyTrend(nil, "X", 30, time.Now())
	if got == nil || len(got) != 0 {
		t.Errorf("DailyTrend(nil) = %#v, want empty slice", got)
	}
}

func TestRecentReports(t *testing.T) {
	facts := models.FactSet{
		{Drug: "A", Date: day(2024, 1, 1)},
		{Drug: "B"},
		{Drug: "C", Date: day(2024, 3, 1)},
		{Drug: "D", Date: day(2024, 2, 1)},
		{Drug: "E", Date: day(2024, 3, 1)},
	}

	got := RecentReports(facts, 3)
	wantDrugs := []string{"C", "E", "D"}
	if len(got) != len(wantDrugs) {
		t.Fatalf("RecentReports() = %v", got)
	}
	for i, d := range wantDrugs {
		if got[i].Drug != d {
			t.Errorf("row %d = %s, want %s", i, got[i].Drug, d)
		}
	}
	if facts[0].Drug != "A" || facts[2].Drug != "C" {
		t.Error("input must not be reordered")
	}
}

func TestRecentReports_DefaultCap(t *testing.T) {
	var facts models.FactSet
	for i := 0; i < 30; i++ {
		facts = append(facts, models.Fact{Drug: "X", Date: day(2024, 1, 1).AddDate(0, 0, i)})
	}
	got := RecentReports(facts, 0)
	if len(got) != DefaultRecentReports {
		t.Fatalf("len = %d, want %d", len(got), DefaultRecentReports)
	}
	if !got[0].Date.Equal(day(2024, 1, 30)) {
		t.Errorf("newest first expected, got %v", got[0].Date)
	}
}

func TestSummarize(t *testing.T) {
	facts := models.FactSet{
		{Drug: "A", Date: day(2024, 2, 1)},
		{Drug: "A"},
		{Drug: "A", Date: day(2024, 1, 15)},
		{Drug: "A", Date: day(2024, 3, 2)},
	}
	s := Summarize(facts)
	if s.Total != 4 || s.Dated != 3 {
		t.Errorf("Total/Dated = %d/%d, want 4/3", s.Total, s.Dated)
	}
	if !s.First.Equal(day(2024, 1, 15)) || !s.Last.Equal(day(2024, 3, 2)) {
		t.Errorf("range = %v..%v", s.First, s.Last)
	}
	if Summarize(nil).HasDateRange() {
		t.Error("empty summary should have no date range")
	}
}

func TestFillDays(t *testing.T) {
	trend := []models.DayCount{
		{Date: day(2024, 1, 1), Count: 2},
		{Date: day(2024, 1, 4), Count: 1},
	}
	got := FillDays(trend)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	wantCounts := []int{2, 0, 0, 1}
	for i, c := range wantCounts {
		if got[i].Count != c {
			t.Errorf("day %d count = %d, want %d", i, got[i].Count, c)
		}
	}
	if single := FillDays(trend[:1]); len(single) != 1 {
		t.Errorf("single point should be unchanged, got %v", single)
	}
}
