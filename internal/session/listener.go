package session

// Listener receives the caller-facing signals of a controller.
// Calls happen on the goroutine driving the controller.
type Listener interface {
	LevelStarted(levelID int)
	ScoreChanged(score int)
	TimeChanged(timeLeft int)
	LevelPassed(levelID, score int)
	LevelFailed(levelID, score int)
	AllLevelsCompleted()
	ProgressFailed(levelID int, err error)
}

// NopListener ignores every signal. Embed it to implement a subset.
type NopListener struct{}

func (NopListener) LevelStarted(int)          {}
func (NopListener) ScoreChanged(int)          {}
func (NopListener) TimeChanged(int)           {}
func (NopListener) LevelPassed(int, int)      {}
func (NopListener) LevelFailed(int, int)      {}
func (NopListener) AllLevelsCompleted()       {}
func (NopListener) ProgressFailed(int, error) {}
