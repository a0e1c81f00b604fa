package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

type countingMetrics struct {
	hits, misses atomic.Int64
	entries      atomic.Int64
}

func (m *countingMetrics) CacheHit()             { m.hits.Add(1) }
func (m *countingMetrics) CacheMiss()            { m.misses.Add(1) }
func (m *countingMetrics) SetCacheEntries(n int) { m.entries.Store(int64(n)) }

func sampleFacts() models.FactSet {
	return models.FactSet{
		{Drug: "IBUPROFEN", Role: models.RolePrimarySuspect, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Drug: "ASPIRIN", Role: models.RoleConcomitant},
	}
}

func TestGetOrCompute_Idempotent(t *testing.T) {
	c := New(nil)
	key := models.SearchKey("IBUPROFEN", 200)

	calls := 0
	compute := func(context.Context) (models.FactSet, error) {
		calls++
		return sampleFacts(), nil
	}

	first, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() failed: %v", err)
	}
	second, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if len(first) != len(second) {
		t.Fatalf("len mismatch %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("element %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGetOrCompute_KeysAreIndependent(t *testing.T) {
	c := New(nil)
	calls := 0
	compute := func(context.Context) (models.FactSet, error) {
		calls++
		return sampleFacts(), nil
	}

	keys := []models.QueryKey{
		models.RecentKey(100),
		models.RecentKey(50),
		models.SearchKey("IBUPROFEN", 100),
		models.SearchKey("ibuprofen", 100),
	}
	for _, k := range keys {
		if _, err := c.GetOrCompute(context.Background(), k, compute); err != nil {
			t.Fatalf("GetOrCompute(%v) failed: %v", k, err)
		}
	}
	if calls != len(keys) {
		t.Errorf("compute called %d times, want %d", calls, len(keys))
	}
	if c.Stats().Entries != len(keys) {
		t.Errorf("Entries = %d, want %d", c.Stats().Entries, len(keys))
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New(nil)
	key := models.RecentKey(100)
	boom := errors.New("feed down")

	_, err := c.GetOrCompute(context.Background(), key, func(context.Context) (models.FactSet, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("failed compute must not be stored")
	}

	facts, err := c.GetOrCompute(context.Background(), key, func(context.Context) (models.FactSet, error) {
		return sampleFacts(), nil
	})
	if err != nil || len(facts) != 2 {
		t.Errorf("retry after error: facts=%v err=%v", facts, err)
	}
}

func TestGetOrCompute_EmptyResultCached(t *testing.T) {
	c := New(nil)
	key := models.SearchKey("NONEXISTENTDRUG", 200)
	calls := 0
	compute := func(context.Context) (models.FactSet, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 2; i++ {
		facts, err := c.GetOrCompute(context.Background(), key, compute)
		if err != nil {
			t.Fatalf("GetOrCompute() failed: %v", err)
		}
		if facts == nil || len(facts) != 0 {
			t.Errorf("facts = %#v, want empty non-nil set", facts)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrCompute_ConcurrentMissComputesOnce(t *testing.T) {
	c := New(nil)
	key := models.RecentKey(100)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (models.FactSet, error) {
		calls.Add(1)
		<-release
		return sampleFacts(), nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]models.FactSet, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			facts, err := c.GetOrCompute(context.Background(), key, compute)
			if err != nil {
				t.Errorf("GetOrCompute() failed: %v", err)
			}
			results[i] = facts
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("compute called %d times, want 1", n)
	}
	for i, r := range results {
		if len(r) != 2 {
			t.Errorf("worker %d got %d facts", i, len(r))
		}
	}
}

func TestGetOrCompute_CanceledCallerDoesNotFailOthers(t *testing.T) {
	c := New(nil)
	key := models.SearchKey("ASPIRIN", 200)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	compute := func(ctx context.Context) (models.FactSet, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return sampleFacts(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(first, key, compute)
		firstErr <- err
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		facts, err := c.GetOrCompute(context.Background(), key, compute)
		if err == nil && len(facts) != 2 {
			err = errors.New("unexpected facts")
		}
		second <- err
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-second; err != nil {
		t.Errorf("waiting caller err = %v, want the shared result", err)
	}
	if _, ok := c.Get(key); !ok {
		t.Error("result should be stored despite the first caller leaving")
	}
}

func TestStatsAndMetrics(t *testing.T) {
	m := &countingMetrics{}
	c := New(m)
	key := models.RecentKey(10)
	compute := func(context.Context) (models.FactSet, error) { return sampleFacts(), nil }

	_, _ = c.GetOrCompute(context.Background(), key, compute)
	_, _ = c.GetOrCompute(context.Background(), key, compute)
	_, _ = c.GetOrCompute(context.Background(), key, compute)

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, 1 entry", s)
	}
	if m.hits.Load() != 2 || m.misses.Load() != 1 || m.entries.Load() != 1 {
		t.Errorf("metrics = %d/%d/%d", m.hits.Load(), m.misses.Load(), m.entries.Load())
	}
}

func TestEntries(t *testing.T) {
	c := New(nil)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	compute := func(context.Context) (models.FactSet, error) { return sampleFacts(), nil }

	_, _ = c.GetOrCompute(context.Background(), models.SearchKey("B", 1), compute)
	_, _ = c.GetOrCompute(context.Background(), models.RecentKey(100), compute)

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Key != models.SearchKey("B", 1) || entries[1].Key != models.RecentKey(100) {
		t.Errorf("entries not ordered by creation: %v, %v", entries[0].Key, entries[1].Key)
	}
	if !entries[0].CreatedAt.Before(entries[1].CreatedAt) {
		t.Error("CreatedAt should increase")
	}
}
