package progress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/verte-zerg/mathcatch/internal/store"
)

type failingKV struct {
	*store.Memory
	getErr error
	setErr error
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoadEmpty(t *testing.T) {
	tr := New(store.NewMemory(), nil)
	if got := tr.Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty progress, got %+v", got)
	}
}

func TestRecordMergesHighScore(t *testing.T) {
	ctx := context.Background()
	tr := New(store.NewMemory(), nil)
	if err := tr.Record(ctx, 1, 12); err != nil {
		t.Fatalf("record 12: %v", err)
	}
	if err := tr.Record(ctx, 1, 8); err != nil {
		t.Fatalf("record 8: %v", err)
	}
	rec, ok := tr.Get(ctx, 1)
	if !ok || !rec.Passed || rec.HighScore != 12 {
		t.Fatalf("expected passed with high score 12, got %+v ok=%v", rec, ok)
	}
	if err := tr.Record(ctx, 1, 15); err != nil {
		t.Fatalf("record 15: %v", err)
	}
	if rec, _ := tr.Get(ctx, 1); rec.HighScore != 15 {
		t.Fatalf("expected high score 15, got %d", rec.HighScore)
	}
}

func TestRecordKeepsOtherLevels(t *testing.T) {
	ctx := context.Background()
	tr := New(store.NewMemory(), nil)
	_ = tr.Record(ctx, 1, 10)
	_ = tr.Record(ctx, 2, 16)
	all := tr.Load(ctx)
	if len(all) != 2 || all[1].HighScore != 10 || all[2].HighScore != 16 {
		t.Fatalf("unexpected progress: %+v", all)
	}
}

func TestStoredFormat(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	tr := New(kv, nil)
	if err := tr.Record(ctx, 3, 20); err != nil {
		t.Fatalf("record: %v", err)
	}
	blob, ok, _ := kv.Get(ctx, Key)
	if !ok {
		t.Fatalf("expected value under %s", Key)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	entry := decoded["level3"]
	if entry["passed"] != true || entry["highScore"] != float64(20) {
		t.Fatalf("unexpected stored entry: %v", entry)
	}
}

func TestCorruptDataTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, blob := range []string{"not json", "[1,2,3]", "null", ""} {
		kv := store.NewMemory()
		_ = kv.Set(ctx, Key, []byte(blob))
		tr := New(kv, nil)
		if got := tr.Load(ctx); len(got) != 0 {
			t.Fatalf("%q: expected empty progress, got %+v", blob, got)
		}
		if err := tr.Record(ctx, 1, 10); err != nil {
			t.Fatalf("%q: record over corrupt data: %v", blob, err)
		}
		if rec, ok := tr.Get(ctx, 1); !ok || rec.HighScore != 10 {
			t.Fatalf("%q: expected fresh record, got %+v", blob, rec)
		}
	}
}

func TestMalformedEntrySkipped(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Set(ctx, Key, []byte(`{"level1": 5, "level2": {"passed": true, "highScore": 17}, "levelX": {}}`))
	tr := New(kv, nil)
	all := tr.Load(ctx)
	if len(all) != 1 || all[2].HighScore != 17 {
		t.Fatalf("unexpected progress: %+v", all)
	}
	if err := tr.Record(ctx, 1, 11); err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec, _ := tr.Get(ctx, 1); rec.HighScore != 11 {
		t.Fatalf("expected malformed entry replaced, got %+v", rec)
	}
}

func TestReadFailureTreatedAsEmpty(t *testing.T) {
	kv := &failingKV{Memory: store.NewMemory(), getErr: errors.New("disk gone")}
	tr := New(kv, nil)
	if got := tr.Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty progress on read failure")
	}
}

func TestRecordAfterReadFailureKeepsOtherLevels(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Memory: store.NewMemory()}
	tr := New(kv, nil)
	if err := tr.Record(ctx, 1, 12); err != nil {
		t.Fatalf("record level 1: %v", err)
	}
	if err := tr.Record(ctx, 2, 15); err != nil {
		t.Fatalf("record level 2: %v", err)
	}

	transient := errors.New("transient")
	kv.getErr = transient
	err := tr.Record(ctx, 3, 20)
	if !errors.Is(err, transient) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}

	kv.getErr = nil
	all := tr.Load(ctx)
	if len(all) != 2 || all[1].HighScore != 12 || all[2].HighScore != 15 {
		t.Fatalf("expected levels 1 and 2 intact, got %+v", all)
	}
	if _, ok := all[3]; ok {
		t.Fatalf("level 3 must not be written after a failed read")
	}
}

func TestWriteFailureSurfaced(t *testing.T) {
	boom := errors.New("read-only")
	kv := &failingKV{Memory: store.NewMemory(), setErr: boom}
	tr := New(kv, nil)
	err := tr.Record(context.Background(), 1, 10)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	tr := New(store.NewMemory(), nil)
	_ = tr.Record(ctx, 1, 10)
	if err := tr.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(tr.Load(ctx)) != 0 {
		t.Fatalf("expected no progress after reset")
	}
}

func TestPassedListsRecordedLevels(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Set(ctx, Key, []byte(`{"level1": {"passed": true, "highScore": 12}, "level4": {"passed": false, "highScore": 3}}`))
	tr := New(kv, nil)
	if err := tr.Record(ctx, 2, 15); err != nil {
		t.Fatalf("record: %v", err)
	}
	passed := tr.Passed(ctx)
	if len(passed) != 2 || !passed[1] || !passed[2] || passed[4] {
		t.Fatalf("unexpected passed set: %v", passed)
	}
}
