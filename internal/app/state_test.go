package app

import (
	"slices"
	"testing"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

func TestState_Pending(t *testing.T) {
	s := NewState()
	if got := s.Pending(); !slices.Equal(got, []string{ResourceInitial}) {
		t.Fatalf("new state Pending() = %v, want only the initial load", got)
	}

	steps := []struct {
		resource string
		loading  bool
		want     []string
	}{
		{ResourceTop, true, []string{ResourceInitial, ResourceTop}},
		{ResourceInitial, false, []string{ResourceTop}},
		{ResourceStats, true, []string{ResourceStats, ResourceTop}},
		{ResourceTop, false, []string{ResourceStats}},
		{ResourceTop, false, []string{ResourceStats}},
		{ResourceStats, false, []string{}},
	}
	for i, st := range steps {
		s.SetLoading(st.resource, st.loading)
		if got := s.Pending(); !slices.Equal(got, st.want) {
			t.Errorf("step %d: Pending() = %v, want %v", i, got, st.want)
		}
		if s.AnyLoading() != (len(st.want) > 0) {
			t.Errorf("step %d: AnyLoading() disagrees with Pending()", i)
		}
		if s.IsLoading(st.resource) != st.loading {
			t.Errorf("step %d: IsLoading(%q) = %v", i, st.resource, !st.loading)
		}
	}
}

func TestState_DrugAndWatchlist(t *testing.T) {
	s := NewState()
	s.SetCurrentDrug("ASPIRIN")
	if s.CurrentDrug() != "ASPIRIN" {
		t.Errorf("CurrentDrug() = %q", s.CurrentDrug())
	}

	in := []string{"Aspirin", "IBUPROFEN"}
	s.SetWatchlist(in)
	in[0] = "mutated"
	out := s.GetWatchlist()
	out[1] = "mutated"
	if got := s.GetWatchlist(); !slices.Equal(got, []string{"Aspirin", "IBUPROFEN"}) {
		t.Errorf("watchlist leaked caller mutations: %v", got)
	}

	for drug, want := range map[string]bool{
		"ASPIRIN":    true,
		" ibuprofen": true,
		"WARFARIN":   false,
		"":           false,
	} {
		if got := s.IsWatched(drug); got != want {
			t.Errorf("IsWatched(%q) = %v, want %v", drug, got, want)
		}
	}
}

func TestState_FeedDown(t *testing.T) {
	s := NewState()
	if s.FeedDown() || s.GetLastFetch() != nil {
		t.Fatal("no request yet, feed should count as up")
	}

	calls := []struct {
		call models.FetchCall
		down bool
	}{
		{models.FetchCall{Drug: "ASPIRIN", Error: "timeout"}, true},
		{models.FetchCall{Drug: "ASPIRIN", StatusCode: 404}, false},
		{models.FetchCall{StatusCode: 200}, false},
	}
	for _, c := range calls {
		s.SetLastFetch(c.call)
		if s.FeedDown() != c.down {
			t.Errorf("after %+v FeedDown() = %v, want %v", c.call, !c.down, c.down)
		}
		if got := s.GetLastFetch(); got == nil || *got != c.call {
			t.Errorf("GetLastFetch() = %+v, want %+v", got, c.call)
		}
	}
}

func TestState_Toasts(t *testing.T) {
	s := NewState()

	a := s.AddNotification(NotificationInfo, "first", time.Minute)
	b := s.AddNotification(NotificationSuccess, "second", 0)
	if a == "" || a == b {
		t.Fatalf("IDs should be unique and non-empty: %q %q", a, b)
	}

	s.RemoveNotification(a)
	s.RemoveNotification("missing")
	got := s.GetNotifications()
	if len(got) != 1 || got[0].Message != "second" {
		t.Fatalf("GetNotifications() = %+v", got)
	}
	if got[0].IsExpired() {
		t.Error("a zero duration never expires")
	}
}

func TestState_ToastsCapped(t *testing.T) {
	s := NewState()
	var last string
	for range maxNotifications + 3 {
		last = s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	got := s.GetNotifications()
	if len(got) != maxNotifications {
		t.Fatalf("len = %d, want %d", len(got), maxNotifications)
	}
	if got[len(got)-1].ID != last {
		t.Error("the newest toast should survive the cap")
	}
}

func TestState_ClearExpired(t *testing.T) {
	s := NewState()
	now := time.Now()
	s.toasts = toastQueue{
		{ID: "old", CreatedAt: now.Add(-2 * time.Minute), Duration: time.Minute},
		{ID: "fresh", CreatedAt: now, Duration: time.Minute},
		{ID: "sticky", CreatedAt: now.Add(-time.Hour)},
	}

	s.ClearExpiredNotifications()
	var ids []string
	for _, n := range s.toasts {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"fresh", "sticky"}) {
		t.Errorf("remaining = %v", ids)
	}
}

func TestState_LoadingToast(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Fetching ASPIRIN...")
	got := s.GetNotifications()
	if len(got) != 1 {
		t.Fatalf("loading toast should be updated in place, got %d toasts", len(got))
	}
	if got[0].ID != LoadingNotificationID || got[0].Type != NotificationLoading || got[0].Message != "Fetching ASPIRIN..." {
		t.Errorf("loading toast = %+v", got[0])
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading toast should be gone")
	}
}

func TestNotificationType_String(t *testing.T) {
	want := map[NotificationType]string{
		NotificationSuccess:   "success",
		NotificationError:     "error",
		NotificationWarning:   "warning",
		NotificationInfo:      "info",
		NotificationLoading:   "loading",
		NotificationType(-1):  "unknown",
		NotificationType(999): "unknown",
	}
	for typ, s := range want {
		if got := typ.String(); got != s {
			t.Errorf("NotificationType(%d).String() = %q, want %q", int(typ), got, s)
		}
	}
}
