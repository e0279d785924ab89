package session

import "fmt"

// Notices is a Listener that keeps the latest banner for display.
// Score and time are read from the controller directly.
type Notices struct {
	NopListener

	Banner string
	Err    string
}

func (n *Notices) LevelStarted(levelID int) {
	if n.Banner == "" {
		n.Banner = fmt.Sprintf("Level %d", levelID)
		return
	}
	n.Banner += fmt.Sprintf(" Level %d", levelID)
}

func (n *Notices) LevelPassed(levelID, score int) {
	n.Banner = fmt.Sprintf("Level %d passed with %d points!", levelID, score)
}

func (n *Notices) LevelFailed(levelID, score int) {
	n.Banner = fmt.Sprintf("Level %d failed with %d points.", levelID, score)
}

func (n *Notices) AllLevelsCompleted() {
	n.Banner = "All levels completed!"
}

func (n *Notices) ProgressFailed(levelID int, err error) {
	n.Err = fmt.Sprintf("progress for level %d not saved: %v", levelID, err)
}

// Clear drops the banner and the error.
func (n *Notices) Clear() {
	n.Banner = ""
	n.Err = ""
}
