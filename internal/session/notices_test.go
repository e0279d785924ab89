package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/mathcatch/internal/catalog"
)

func TestNoticesAcrossAutoAdvance(t *testing.T) {
	notices := &Notices{}
	ctrl := NewController(Options{
		Catalog:  catalog.Default(),
		Spawner:  &countedSpawner{n: 10, x: areaW / 2},
		Listener: notices,
		Clock:    NewManualClock(time.Unix(0, 0)),
	})
	if err := ctrl.Start(1, areaW, areaH); err != nil {
		t.Fatalf("start: %v", err)
	}
	if notices.Banner != "Level 1" {
		t.Fatalf("unexpected start banner: %q", notices.Banner)
	}
	notices.Clear()
	for i := 0; i < 300; i++ {
		ctrl.Frame(nullSurface{})
	}
	for i := 0; i < 30; i++ {
		ctrl.Second(context.Background())
	}
	if notices.Banner != "Level 1 passed with 10 points! Level 2" {
		t.Fatalf("unexpected advance banner: %q", notices.Banner)
	}
}

func TestNoticesFailureAndProgressError(t *testing.T) {
	n := &Notices{}
	n.LevelFailed(3, 7)
	if n.Banner != "Level 3 failed with 7 points." {
		t.Fatalf("unexpected banner: %q", n.Banner)
	}
	n.ProgressFailed(3, errors.New("disk full"))
	if n.Err == "" {
		t.Fatalf("expected progress error text")
	}
	n.AllLevelsCompleted()
	if n.Banner != "All levels completed!" {
		t.Fatalf("unexpected banner: %q", n.Banner)
	}
}
