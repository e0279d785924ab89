package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/mathcatch/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "mathcatch.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestKVRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := st.Get(ctx, "k")
	if err != nil || !ok || string(v) != "two" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}
	if err := st.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "k"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestKVPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathcatch.db")
	ctx := context.Background()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st.Close() }()
	v, ok, err := st.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("value not persisted: %q ok=%v err=%v", v, ok, err)
	}
}

func TestListResultsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		levelID := 1
		if i%2 == 1 {
			levelID = 2
		}
		start := base.Add(time.Duration(i) * time.Minute)
		_, err := st.InsertResult(ctx, model.SessionResult{
			RunID:     "run",
			LevelID:   levelID,
			Score:     i * 5,
			Target:    10,
			Passed:    i*5 >= 10,
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListResults(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].Score != 0 || all[3].Score != 15 {
		t.Fatalf("unexpected results: %+v", all)
	}
	if !all[2].Passed || all[1].Passed {
		t.Fatalf("passed flag not round-tripped: %+v", all)
	}

	lvl2, err := st.ListResults(ctx, model.StatsConfig{LevelID: 2})
	if err != nil {
		t.Fatalf("list level 2: %v", err)
	}
	if len(lvl2) != 2 {
		t.Fatalf("expected 2 level-2 results, got %d", len(lvl2))
	}

	since := base.Add(2 * time.Minute)
	recent, err := st.ListResults(ctx, model.StatsConfig{Since: &since, Last: 1})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].Score != 15 {
		t.Fatalf("unexpected recent results: %+v", recent)
	}
}

func TestMemoryKV(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	if err := m.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x'
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || string(got) != "abc" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected key removed")
	}
}
