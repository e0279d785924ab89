// Package model defines shared data structures.
package model

import "time"

// Config defines gameplay settings.
type Config struct {
	FPS             int
	SpawnsPerSecond float64
	CorrectPct      float64
	PaddleWidth     float64
	LevelsFile      string
	StartLevel      int
	Frontend        string
	LogLevel        string
}

// Level is one immutable catalog entry.
type Level struct {
	ID        int      `toml:"id" yaml:"id"`
	Time      int      `toml:"time" yaml:"time"`
	Equations []string `toml:"equations" yaml:"equations"`
	Wrong     []string `toml:"wrong" yaml:"wrong"`
	Target    int      `toml:"target" yaml:"target"`
}

// FallingItem is an equation falling through the play area.
type FallingItem struct {
	Text    string
	Correct bool
	X       float64
	Y       float64
	Speed   float64
}

// Paddle is the player controlled bar. X is the left edge, Y the top edge.
type Paddle struct {
	Width  float64
	Height float64
	X      float64
	Y      float64
}

// Left returns the x-coordinate of the left edge.
func (p Paddle) Left() float64 { return p.X }

// Right returns the x-coordinate of the right edge.
func (p Paddle) Right() float64 { return p.X + p.Width }

// Top returns the y-coordinate of the top edge.
func (p Paddle) Top() float64 { return p.Y }

// SessionState is the mutable state of one timed playthrough.
type SessionState struct {
	LevelID  int
	Score    int
	TimeLeft int
	Running  bool
}

// ProgressRecord is the persisted result for one level.
type ProgressRecord struct {
	Passed    bool `json:"passed"`
	HighScore int  `json:"highScore"`
}

// SessionResult captures an ended session for the history table.
type SessionResult struct {
	RunID     string
	LevelID   int
	Score     int
	Target    int
	Passed    bool
	StartedAt time.Time
	EndedAt   time.Time
}

// LevelAggregate summarizes the history of one level.
type LevelAggregate struct {
	LevelID   int
	Plays     int
	Passes    int
	BestScore int
	LastScore int
	Scores    []int
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	LevelID int
	Since   *time.Time
	Last    int
}
