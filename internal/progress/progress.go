// Package progress keeps per-level pass state and high scores in a key-value store.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/verte-zerg/mathcatch/internal/model"
)

// Key is the single namespaced key holding every level record.
const Key = "mathCatcher_v1"

const entryPrefix = "level"

// KV is the minimal persistence contract.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Tracker reads and merges progress records.
type Tracker struct {
	kv  KV
	log *slog.Logger
}

// New returns a Tracker over kv. A nil logger discards.
func New(kv KV, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{kv: kv, log: logger}
}

// Load returns every readable level record. Missing or malformed data yields
// an empty set rather than an error.
func (t *Tracker) Load(ctx context.Context) map[int]model.ProgressRecord {
	records := map[int]model.ProgressRecord{}
	data, err := t.loadRaw(ctx)
	if err != nil {
		t.log.Warn("failed to read progress", "err", err)
		return records
	}
	for name, raw := range data {
		id, ok := parseEntryKey(name)
		if !ok {
			continue
		}
		var rec model.ProgressRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			t.log.Warn("ignoring malformed progress entry", "entry", name, "err", err)
			continue
		}
		records[id] = rec
	}
	return records
}

// Get returns the record for one level.
func (t *Tracker) Get(ctx context.Context, levelID int) (model.ProgressRecord, bool) {
	rec, ok := t.Load(ctx)[levelID]
	return rec, ok
}

// Passed returns the ids of every passed level.
func (t *Tracker) Passed(ctx context.Context) map[int]bool {
	passed := map[int]bool{}
	for id, rec := range t.Load(ctx) {
		if rec.Passed {
			passed[id] = true
		}
	}
	return passed
}

// Record marks levelID passed and raises its high score to score if higher.
// A failed read aborts the write so other levels are never dropped.
func (t *Tracker) Record(ctx context.Context, levelID, score int) error {
	data, err := t.loadRaw(ctx)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}
	name := entryKey(levelID)
	rec := model.ProgressRecord{Passed: true, HighScore: score}
	if raw, ok := data[name]; ok {
		var prev model.ProgressRecord
		if err := json.Unmarshal(raw, &prev); err == nil && prev.HighScore > rec.HighScore {
			rec.HighScore = prev.HighScore
		}
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	data[name] = encoded
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := t.kv.Set(ctx, Key, blob); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Reset removes all stored progress.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

// loadRaw returns the stored entries. Only a failed read is an error;
// missing or malformed data reads as empty.
func (t *Tracker) loadRaw(ctx context.Context) (map[string]json.RawMessage, error) {
	data := map[string]json.RawMessage{}
	blob, ok, err := t.kv.Get(ctx, Key)
	if err != nil {
		return nil, err
	}
	if !ok || len(blob) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(blob, &data); err != nil {
		t.log.Warn("ignoring malformed progress", "err", err)
		return map[string]json.RawMessage{}, nil
	}
	if data == nil {
		return map[string]json.RawMessage{}, nil
	}
	return data, nil
}

func entryKey(levelID int) string {
	return entryPrefix + strconv.Itoa(levelID)
}

func parseEntryKey(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, entryPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
