package watchlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T, seed ...string) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	svc, err := New(path, seed...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc, path
}

func waitForEvent(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event %d", want)
			return Event{}
		}
	}
}

func TestNew_CreatesSeededFile(t *testing.T) {
	svc, path := newTestService(t, "IBUPROFEN", " aspirin ", "ibuprofen", "")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("watchlist file was not created: %v", err)
	}
	if !strings.Contains(string(data), "IBUPROFEN") {
		t.Errorf("file content = %q", data)
	}

	drugs := svc.Drugs()
	if len(drugs) != 2 || drugs[0] != "IBUPROFEN" || drugs[1] != "aspirin" {
		t.Errorf("Drugs() = %v, want [IBUPROFEN aspirin]", drugs)
	}
	if ev := waitForEvent(t, svc, EventLoaded); ev.Error != nil {
		t.Errorf("unexpected error %v", ev.Error)
	}
}

func TestNew_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	content := "version: 1\ndrugs:\n  - METFORMIN\n  - WARFARIN\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	svc, err := New(path, "IGNORED")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	drugs := svc.Drugs()
	if len(drugs) != 2 || drugs[0] != "METFORMIN" {
		t.Errorf("Drugs() = %v", drugs)
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	if err := os.WriteFile(path, []byte("drugs: {not: [a list"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Error("New() should fail on malformed YAML")
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestAddRemove(t *testing.T) {
	svc, path := newTestService(t, "IBUPROFEN")

	if err := svc.Add("Aspirin"); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := svc.Add("ASPIRIN"); err != nil {
		t.Fatalf("duplicate Add() should be a no-op, got %v", err)
	}
	if err := svc.Add("  "); err == nil {
		t.Error("Add() of an empty name should fail")
	}
	if !svc.Contains("aspirin") {
		t.Error("Contains() should ignore case")
	}

	reloaded, err := parseFile(mustRead(t, path))
	if err != nil {
		t.Fatalf("parseFile failed: %v", err)
	}
	if len(reloaded) != 2 {
		t.Errorf("saved drugs = %v, want 2 entries", reloaded)
	}

	if err := svc.Remove("ibuprofen"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := svc.Remove("ibuprofen"); err == nil {
		t.Error("second Remove() should fail")
	}
	if drugs := svc.Drugs(); len(drugs) != 1 || drugs[0] != "Aspirin" {
		t.Errorf("Drugs() = %v", drugs)
	}
}

func TestNextPrev(t *testing.T) {
	svc, _ := newTestService(t, "A", "B", "C")

	tests := []struct {
		name    string
		current string
		next    string
		prev    string
	}{
		{"First", "A", "B", "C"},
		{"Last", "C", "A", "B"},
		{"CaseInsensitive", "b", "C", "A"},
		{"Unknown", "Z", "A", "A"},
		{"Empty", "", "A", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := svc.Next(tt.current); got != tt.next {
				t.Errorf("Next(%q) = %q, want %q", tt.current, got, tt.next)
			}
			if got, _ := svc.Prev(tt.current); got != tt.prev {
				t.Errorf("Prev(%q) = %q, want %q", tt.current, got, tt.prev)
			}
		})
	}
}

func TestNext_EmptyList(t *testing.T) {
	svc, _ := newTestService(t)
	if _, ok := svc.Next("X"); ok {
		t.Error("Next() on an empty list should report !ok")
	}
}

func TestReloadOnExternalChange(t *testing.T) {
	svc, path := newTestService(t, "IBUPROFEN")
	waitForEvent(t, svc, EventLoaded)

	if err := os.WriteFile(path, []byte("drugs:\n  - ASPIRIN\n  - WARFARIN\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	waitForEvent(t, svc, EventChanged)
	drugs := svc.Drugs()
	if len(drugs) != 2 || drugs[0] != "ASPIRIN" {
		t.Errorf("Drugs() after reload = %v", drugs)
	}
}

func TestReloadKeepsListOnBadEdit(t *testing.T) {
	svc, path := newTestService(t, "IBUPROFEN")
	waitForEvent(t, svc, EventLoaded)

	if err := os.WriteFile(path, []byte("drugs: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ev := waitForEvent(t, svc, EventError)
	if ev.Error == nil {
		t.Error("error event should carry the parse error")
	}
	if drugs := svc.Drugs(); len(drugs) != 1 || drugs[0] != "IBUPROFEN" {
		t.Errorf("Drugs() = %v, want previous list kept", drugs)
	}
}

func TestClose_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return data
}
