// Package session runs timed level sessions: start, countdown, judgment and advancement.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mathcatch/internal/catalog"
	"github.com/verte-zerg/mathcatch/internal/logging"
	"github.com/verte-zerg/mathcatch/internal/model"
	"github.com/verte-zerg/mathcatch/internal/sim"
)

// State is the controller's position in the Idle → Running → Ended machine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Outcome is the judgment of the most recently ended session.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePassed
	OutcomeFailed
	OutcomeCompleted
)

// ProgressRecorder persists a passing result.
type ProgressRecorder interface {
	Record(ctx context.Context, levelID, score int) error
}

// HistoryRecorder appends ended sessions to a history log.
type HistoryRecorder interface {
	InsertResult(ctx context.Context, result model.SessionResult) (int64, error)
}

// Options configures a Controller. Catalog and Spawner are required.
type Options struct {
	Catalog     *catalog.Catalog
	Spawner     sim.Spawner
	Progress    ProgressRecorder
	History     HistoryRecorder
	Listener    Listener
	Logger      *slog.Logger
	Clock       Clock
	PaddleWidth float64
}

// Controller owns the SessionState and the World of the active session.
type Controller struct {
	catalog     *catalog.Catalog
	spawner     sim.Spawner
	progress    ProgressRecorder
	history     HistoryRecorder
	listener    Listener
	log         *slog.Logger
	clock       Clock
	paddleWidth float64

	state      State
	outcome    Outcome
	level      model.Level
	session    model.SessionState
	world      *sim.World
	width      float64
	height     float64
	runID      string
	startedAt  time.Time
	generation int
}

// NewController returns an idle controller.
func NewController(opts Options) *Controller {
	c := &Controller{
		catalog:     opts.Catalog,
		spawner:     opts.Spawner,
		progress:    opts.Progress,
		history:     opts.History,
		listener:    opts.Listener,
		log:         opts.Logger,
		clock:       opts.Clock,
		paddleWidth: opts.PaddleWidth,
	}
	if c.listener == nil {
		c.listener = NopListener{}
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	return c
}

// Start begins a new run at levelID with the given play-area size.
func (c *Controller) Start(levelID int, width, height float64) error {
	level, err := c.catalog.Get(levelID)
	if err != nil {
		return err
	}
	c.width = width
	c.height = height
	c.runID = uuid.NewString()
	c.outcome = OutcomeNone
	c.begin(level)
	return nil
}

// SetArea changes the play-area size used by the next level start.
func (c *Controller) SetArea(width, height float64) {
	c.width = width
	c.height = height
}

func (c *Controller) begin(level model.Level) {
	c.level = level
	c.session = model.SessionState{
		LevelID:  level.ID,
		Score:    0,
		TimeLeft: level.Time,
		Running:  true,
	}
	c.world = sim.NewWorld(c.width, c.height, c.paddleWidth)
	c.state = StateRunning
	c.startedAt = c.clock.Now()
	c.generation++
	c.log.Info("level started", "level", level.ID, "time", level.Time, "target", level.Target, "run", c.runID)
	c.listener.LevelStarted(level.ID)
	c.listener.ScoreChanged(0)
	c.listener.TimeChanged(level.Time)
}

// Frame runs one simulation frame. It does nothing unless a session is running.
func (c *Controller) Frame(surface sim.Surface) {
	if !c.session.Running {
		return
	}
	stats := c.world.Step(&c.session, c.level, c.spawner, surface)
	if stats.Spawned {
		c.log.Log(context.Background(), logging.LevelTrace, "item spawned", "level", c.level.ID)
	}
	if stats.Caught+stats.Penalized > 0 {
		c.listener.ScoreChanged(c.session.Score)
	}
}

// Second runs one countdown tick and ends the session when time runs out.
func (c *Controller) Second(ctx context.Context) {
	if !c.session.Running {
		return
	}
	c.session.TimeLeft--
	c.listener.TimeChanged(c.session.TimeLeft)
	if c.session.TimeLeft <= 0 {
		c.end(ctx)
	}
}

// MovePaddle centres the paddle on pointerX.
func (c *Controller) MovePaddle(pointerX float64) {
	if c.world == nil {
		return
	}
	c.world.MovePaddle(pointerX)
}

// Abort stops the running session without judgment.
func (c *Controller) Abort() {
	if !c.session.Running {
		return
	}
	c.session.Running = false
	c.state = StateIdle
	c.log.Info("level aborted", "level", c.level.ID, "score", c.session.Score)
}

func (c *Controller) end(ctx context.Context) {
	c.session.Running = false
	c.state = StateEnded
	score := c.session.Score
	levelID := c.level.ID
	passed := score >= c.level.Target
	c.log.Info("level ended", "level", levelID, "score", score, "target", c.level.Target, "passed", passed)
	c.recordHistory(ctx, passed)

	if !passed {
		c.outcome = OutcomeFailed
		c.listener.LevelFailed(levelID, score)
		return
	}

	if c.progress != nil {
		if err := c.progress.Record(ctx, levelID, score); err != nil {
			c.log.Error("failed to save progress", "level", levelID, "err", err)
			c.listener.ProgressFailed(levelID, err)
		}
	}
	c.outcome = OutcomePassed
	c.listener.LevelPassed(levelID, score)

	next, ok := c.catalog.Next(levelID)
	if !ok {
		c.outcome = OutcomeCompleted
		c.listener.AllLevelsCompleted()
		return
	}
	c.begin(next)
}

func (c *Controller) recordHistory(ctx context.Context, passed bool) {
	if c.history == nil {
		return
	}
	result := model.SessionResult{
		RunID:     c.runID,
		LevelID:   c.level.ID,
		Score:     c.session.Score,
		Target:    c.level.Target,
		Passed:    passed,
		StartedAt: c.startedAt,
		EndedAt:   c.clock.Now(),
	}
	if _, err := c.history.InsertResult(ctx, result); err != nil {
		c.log.Warn("failed to save session history", "level", c.level.ID, "err", err)
	}
}

// Running reports whether a session is active.
func (c *Controller) Running() bool {
	return c.session.Running
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Outcome returns the judgment of the last ended session.
func (c *Controller) Outcome() Outcome {
	return c.outcome
}

// Session returns a copy of the session state.
func (c *Controller) Session() model.SessionState {
	return c.session
}

// Level returns the level being played.
func (c *Controller) Level() model.Level {
	return c.level
}

// World returns the world of the current session, or nil before the first start.
func (c *Controller) World() *sim.World {
	return c.world
}

// StartedAt returns when the current session began.
func (c *Controller) StartedAt() time.Time {
	return c.startedAt
}

// Generation increments on every session start, including auto-advance.
func (c *Controller) Generation() int {
	return c.generation
}

// RunID identifies the chain of levels started by the last Start call.
func (c *Controller) RunID() string {
	return c.runID
}
