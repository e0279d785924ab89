package tui

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mathcatch/internal/catalog"
	"github.com/verte-zerg/mathcatch/internal/progress"
	"github.com/verte-zerg/mathcatch/internal/session"
	"github.com/verte-zerg/mathcatch/internal/spawner"
	"github.com/verte-zerg/mathcatch/internal/store"
)

type testUI struct {
	m       *Model
	clock   *session.ManualClock
	tracker *progress.Tracker
}

func newTestUI(t *testing.T, startLevel int, seed func(*progress.Tracker)) *testUI {
	t.Helper()
	tracker := progress.New(store.NewMemory(), nil)
	if seed != nil {
		seed(tracker)
	}
	clock := session.NewManualClock(time.Unix(0, 0))
	m := NewModel(Options{
		Session: session.Options{
			Catalog:  catalog.Default(),
			Spawner:  spawner.New(rand.New(rand.NewSource(1)), spawner.DefaultOptions()),
			Progress: tracker,
			Clock:    clock,
		},
		Tracker:    tracker,
		FPS:        60,
		StartLevel: startLevel,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testUI{m: m, clock: clock, tracker: tracker}
}

func (u *testUI) key(t tea.KeyType) tea.Cmd {
	_, cmd := u.m.Update(tea.KeyMsg{Type: t})
	return cmd
}

func (u *testUI) second() {
	u.clock.Advance(time.Second)
	u.m.Update(frameMsg{id: u.m.tickID})
}

func TestMenuListsProgress(t *testing.T) {
	u := newTestUI(t, 0, func(tr *progress.Tracker) {
		if err := tr.Record(context.Background(), 2, 17); err != nil {
			t.Fatalf("record: %v", err)
		}
	})
	rows := u.m.menu.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 levels, got %d", len(rows))
	}
	if rows[1][3] != "17" || rows[1][4] != "✓" {
		t.Fatalf("expected level 2 best and mark, got %v", rows[1])
	}
	if rows[0][3] != "-" || rows[0][4] != "" {
		t.Fatalf("expected level 1 unplayed, got %v", rows[0])
	}
	if !strings.Contains(u.m.View(), "Math Catcher") {
		t.Fatalf("menu view missing title")
	}
}

func TestMenuStartsSelectedLevel(t *testing.T) {
	u := newTestUI(t, 0, nil)
	u.key(tea.KeyDown)
	if cmd := u.key(tea.KeyEnter); cmd == nil {
		t.Fatalf("expected frame tick after start")
	}
	if u.m.screen != screenGame {
		t.Fatalf("expected game screen")
	}
	s := u.m.ctrl.Session()
	if s.LevelID != 2 || !s.Running {
		t.Fatalf("unexpected session: %+v", s)
	}
	width, height := u.m.ctrl.World().Size()
	if width != 100*CellWidth || height != 38*CellHeight {
		t.Fatalf("unexpected play area %vx%v", width, height)
	}
}

func TestStartLevelOption(t *testing.T) {
	u := newTestUI(t, 3, nil)
	if u.m.screen != screenGame || u.m.ctrl.Level().ID != 3 {
		t.Fatalf("expected level 3 to start on first resize")
	}
}

func TestFrameAdvancesCountdown(t *testing.T) {
	u := newTestUI(t, 1, nil)
	u.second()
	if got := u.m.ctrl.Session().TimeLeft; got != 29 {
		t.Fatalf("expected 29s left, got %d", got)
	}
	hud := u.m.renderHUD()
	for _, want := range []string{"Level 1", "Score 0/10", "Time 29s"} {
		if !strings.Contains(hud, want) {
			t.Fatalf("hud missing %q: %s", want, hud)
		}
	}
}

func TestStaleFrameIgnored(t *testing.T) {
	u := newTestUI(t, 1, nil)
	u.clock.Advance(time.Second)
	if _, cmd := u.m.Update(frameMsg{id: u.m.tickID - 1}); cmd != nil {
		t.Fatalf("stale frame must not reschedule")
	}
	if got := u.m.ctrl.Session().TimeLeft; got != 30 {
		t.Fatalf("stale frame advanced the clock: %d", got)
	}
}

func TestFailedLevelShowsResult(t *testing.T) {
	u := newTestUI(t, 1, nil)
	for i := 0; i < 30; i++ {
		u.second()
	}
	if u.m.screen != screenResult {
		t.Fatalf("expected result screen")
	}
	if u.m.ctrl.Outcome() != session.OutcomeFailed {
		t.Fatalf("expected failure, got %v", u.m.ctrl.Outcome())
	}
	if !strings.Contains(u.m.View(), "Level 1 failed") {
		t.Fatalf("result view missing banner: %s", u.m.View())
	}
	if _, ok := u.tracker.Get(context.Background(), 1); ok {
		t.Fatalf("failed level must not be recorded")
	}

	u.key(tea.KeyEnter)
	if u.m.screen != screenGame || u.m.ctrl.Level().ID != 1 {
		t.Fatalf("expected retry of level 1")
	}
}

func TestPointerAndArrowsMovePaddle(t *testing.T) {
	u := newTestUI(t, 1, nil)
	u.m.Update(tea.MouseMsg{X: 10, Action: tea.MouseActionMotion})
	p := u.m.ctrl.World().Paddle()
	if p.X+p.Width/2 != 84 {
		t.Fatalf("expected paddle centred at 84, got %v", p.X+p.Width/2)
	}
	u.key(tea.KeyLeft)
	p = u.m.ctrl.World().Paddle()
	if p.X+p.Width/2 != 60 {
		t.Fatalf("expected paddle centred at 60, got %v", p.X+p.Width/2)
	}
}

func TestEscAbortsToMenu(t *testing.T) {
	u := newTestUI(t, 1, nil)
	u.key(tea.KeyEsc)
	if u.m.screen != screenMenu {
		t.Fatalf("expected menu screen")
	}
	if u.m.ctrl.Running() || u.m.ctrl.State() != session.StateIdle {
		t.Fatalf("expected aborted session, state %s", u.m.ctrl.State())
	}
}

func TestQuitAbortsSession(t *testing.T) {
	u := newTestUI(t, 1, nil)
	cmd := u.key(tea.KeyCtrlC)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if u.m.ctrl.Running() {
		t.Fatalf("expected session stopped on quit")
	}
}

func TestResizeDuringSessionAppliesNextLevel(t *testing.T) {
	u := newTestUI(t, 1, nil)
	u.m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	if cols, rows := u.m.canvas.Size(); cols != 100 || rows != 38 {
		t.Fatalf("canvas resized mid-session to %dx%d", cols, rows)
	}
	width, height := u.m.ctrl.World().Size()
	canvasW, canvasH := u.m.canvas.WorldSize()
	if width != canvasW || height != canvasH {
		t.Fatalf("world %vx%v does not match canvas %vx%v", width, height, canvasW, canvasH)
	}

	u.key(tea.KeyEsc)
	if cols, rows := u.m.canvas.Size(); cols != 100 || rows != 38 {
		t.Fatalf("canvas changed before the next start: %dx%d", cols, rows)
	}
	u.key(tea.KeyEnter)
	if cols, rows := u.m.canvas.Size(); cols != 60 || rows != 18 {
		t.Fatalf("expected 60x18 canvas for the next level, got %dx%d", cols, rows)
	}
	width, height = u.m.ctrl.World().Size()
	if width != 60*CellWidth || height != 18*CellHeight {
		t.Fatalf("unexpected world size %vx%v", width, height)
	}
}
