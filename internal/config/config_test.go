package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnvGetters(t *testing.T) {
	const key = "DSD_TEST_VALUE"

	tests := []struct {
		name    string
		raw     string
		str     string
		num     int
		dur     time.Duration
		isUnset bool
	}{
		{name: "Unset", isUnset: true, str: "fallback", num: 5, dur: time.Second},
		{name: "Empty", raw: "", str: "fallback", num: 5, dur: time.Second},
		{name: "Integer", raw: "42", str: "42", num: 42, dur: 42 * time.Second},
		{name: "Padded", raw: " 7 ", str: " 7 ", num: 7, dur: time.Second},
		{name: "Negative", raw: "-3", str: "-3", num: -3, dur: -3 * time.Second},
		{name: "Duration", raw: "1m30s", str: "1m30s", num: 5, dur: 90 * time.Second},
		{name: "Garbage", raw: "many", str: "many", num: 5, dur: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.raw)
			if tt.isUnset {
				os.Unsetenv(key)
			}

			if got := getEnvString(key, "fallback"); got != tt.str {
				t.Errorf("getEnvString = %q, want %q", got, tt.str)
			}
			if got := getEnvInt(key, 5); got != tt.num {
				t.Errorf("getEnvInt = %d, want %d", got, tt.num)
			}
			if got := getEnvDuration(key, time.Second); got != tt.dur {
				t.Errorf("getEnvDuration = %v, want %v", got, tt.dur)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	for range 2 {
		if err := ensureDir(path); err != nil {
			t.Fatalf("ensureDir(%q) = %v", path, err)
		}
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("%s should be a directory (err %v)", path, err)
	}
	if err := ensureDir(""); err != nil {
		t.Errorf("ensureDir(\"\") = %v, want nil", err)
	}
}

func TestPathsFollowHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd := t.TempDir()
	t.Chdir(cwd)

	if got, want := getDefaultWatchlistPath(), filepath.Join(home, ".config", "drugsafety-tui", "watchlist.yaml"); got != want {
		t.Errorf("getDefaultWatchlistPath() = %q, want %q", got, want)
	}

	paths := getEnvPaths()
	if len(paths) == 0 || filepath.Dir(paths[0]) != cwd {
		t.Errorf("getEnvPaths() = %v, want the working directory first", paths)
	}
	for _, p := range paths[1:] {
		if !strings.HasPrefix(p, home) {
			t.Errorf("fallback %q should live under HOME", p)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.FDABaseURL != DefaultFDABaseURL {
		t.Errorf("FDABaseURL = %q, want %q", cfg.FDABaseURL, DefaultFDABaseURL)
	}
	if cfg.TopDrugsLimit != 100 || cfg.SearchLimit != 200 {
		t.Errorf("limits = %d/%d, want 100/200", cfg.TopDrugsLimit, cfg.SearchLimit)
	}
	if cfg.TopN != 10 || cfg.TrendDays != 180 {
		t.Errorf("TopN/TrendDays = %d/%d, want 10/180", cfg.TopN, cfg.TrendDays)
	}
	if cfg.DatabasePath != MemoryDatabase {
		t.Errorf("DatabasePath = %q, want in-memory", cfg.DatabasePath)
	}
	if cfg.DefaultDrug != "IBUPROFEN" {
		t.Errorf("DefaultDrug = %q, want IBUPROFEN", cfg.DefaultDrug)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SEARCH_LIMIT", "50")
	t.Setenv("TREND_DAYS", "30")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "sub", "fetch.db"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SearchLimit != 50 {
		t.Errorf("SearchLimit = %d, want 50", cfg.SearchLimit)
	}
	if cfg.TrendDays != 30 {
		t.Errorf("TrendDays = %d, want 30", cfg.TrendDays)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "sub")); os.IsNotExist(err) {
		t.Error("database directory was not created")
	}
}

func TestLoad_InvalidLimit(t *testing.T) {
	t.Setenv("TOP_DRUGS_LIMIT", "5000")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for an out-of-range limit")
	}
	if !strings.Contains(err.Error(), "TOP_DRUGS_LIMIT") {
		t.Errorf("error should name the variable, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"EmptyURL", func(c *Config) { c.FDABaseURL = " " }, true},
		{"ZeroSearchLimit", func(c *Config) { c.SearchLimit = 0 }, true},
		{"ZeroTopN", func(c *Config) { c.TopN = 0 }, true},
		{"NegativeDays", func(c *Config) { c.TrendDays = -1 }, true},
		{"NoRetries", func(c *Config) { c.FetchRetries = 0 }, true},
		{"ZeroTimeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"MaxLimit", func(c *Config) { c.SearchLimit = MaxFetchLimit }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_DRUG= aspirin\nTOP_N=5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	// godotenv never overrides variables that are already set.
	t.Setenv("TOP_N", "7")
	t.Setenv("DEFAULT_DRUG", "")
	os.Unsetenv("DEFAULT_DRUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.DefaultDrug != "aspirin" {
		t.Errorf("DefaultDrug = %q, want aspirin from .env", cfg.DefaultDrug)
	}
	if cfg.TopN != 7 {
		t.Errorf("TopN = %d, want 7 from the environment", cfg.TopN)
	}
}
