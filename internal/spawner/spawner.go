// Package spawner generates falling equation items.
package spawner

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/mathcatch/internal/model"
)

const (
	// ReferenceFPS is the frame rate the speed range is expressed in.
	ReferenceFPS = 60

	DefaultSpawnsPerSecond = 1.8
	DefaultCorrectPct      = 0.6

	// EdgeInset keeps item text off the play-area edges.
	EdgeInset = 40.0
	// SpawnY is the vertical start position, above the visible area.
	SpawnY = -20.0

	minSpeed = 1.0
	maxSpeed = 2.5
)

// Rand is the random source used for every draw. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Options tunes the spawner to a frame rate.
type Options struct {
	FPS             int
	SpawnsPerSecond float64
	CorrectPct      float64
}

// DefaultOptions returns the options for 60 frames per second.
func DefaultOptions() Options {
	return Options{FPS: ReferenceFPS, SpawnsPerSecond: DefaultSpawnsPerSecond, CorrectPct: DefaultCorrectPct}
}

// Spawner decides per frame whether a new item appears.
type Spawner struct {
	rnd        Rand
	spawnPct   float64
	correctPct float64
	speedMin   float64
	speedMax   float64
}

// New returns a Spawner drawing from rnd.
func New(rnd Rand, opts Options) *Spawner {
	fps := opts.FPS
	if fps <= 0 {
		fps = ReferenceFPS
	}
	scale := float64(ReferenceFPS) / float64(fps)
	return &Spawner{
		rnd:        rnd,
		spawnPct:   opts.SpawnsPerSecond / float64(fps),
		correctPct: opts.CorrectPct,
		speedMin:   minSpeed * scale,
		speedMax:   maxSpeed * scale,
	}
}

// NewSeeded returns a Spawner seeded with the current time.
func NewSeeded(opts Options) *Spawner {
	return New(rand.New(rand.NewSource(time.Now().UnixNano())), opts)
}

// SpawnPct returns the per-frame spawn probability.
func (s *Spawner) SpawnPct() float64 {
	return s.spawnPct
}

// MaybeSpawn returns a new item for this frame, or false when none spawns.
func (s *Spawner) MaybeSpawn(level model.Level, areaWidth float64) (model.FallingItem, bool) {
	if s.rnd.Float64() >= s.spawnPct {
		return model.FallingItem{}, false
	}
	correct := s.rnd.Float64() < s.correctPct
	pool := level.Wrong
	if correct {
		pool = level.Equations
	}
	if len(pool) == 0 {
		return model.FallingItem{}, false
	}
	text := pool[s.rnd.Intn(len(pool))]
	span := areaWidth - 2*EdgeInset
	if span < 0 {
		span = 0
	}
	return model.FallingItem{
		Text:    text,
		Correct: correct,
		X:       EdgeInset + s.rnd.Float64()*span,
		Y:       SpawnY,
		Speed:   s.speedMin + s.rnd.Float64()*(s.speedMax-s.speedMin),
	}, true
}
