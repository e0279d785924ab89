package session

import (
	"context"
	"time"

	"github.com/verte-zerg/mathcatch/internal/sim"
)

// maxCatchUpFrames bounds how many frames one Advance may simulate.
const maxCatchUpFrames = 5

// Loop turns clock time into frame and countdown ticks for a Controller.
// Frontends call Advance on every display refresh.
type Loop struct {
	ctrl          *Controller
	clock         Clock
	frameInterval time.Duration

	gen        int
	nextFrame  time.Time
	nextSecond time.Time
}

// NewLoop returns a loop ticking ctrl at fps frames per second.
func NewLoop(ctrl *Controller, clock Clock, fps int) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		ctrl:          ctrl,
		clock:         clock,
		frameInterval: time.Second / time.Duration(fps),
	}
}

// FrameInterval returns the time between frames.
func (l *Loop) FrameInterval() time.Duration {
	return l.frameInterval
}

// Advance runs every frame and second due by now, in time order. Frames due
// at the same instant as a second run first. It returns the frames run.
func (l *Loop) Advance(ctx context.Context, surface sim.Surface) int {
	now := l.clock.Now()
	frames := 0
	for l.ctrl.Running() {
		l.rebase()
		frameDue := !l.nextFrame.After(now)
		secondDue := !l.nextSecond.After(now)
		switch {
		case frameDue && !l.nextFrame.After(l.nextSecond):
			l.nextFrame = l.nextFrame.Add(l.frameInterval)
			if frames >= maxCatchUpFrames {
				continue
			}
			l.ctrl.Frame(surface)
			frames++
		case secondDue:
			l.nextSecond = l.nextSecond.Add(time.Second)
			l.ctrl.Second(ctx)
		default:
			return frames
		}
	}
	return frames
}

func (l *Loop) rebase() {
	gen := l.ctrl.Generation()
	if gen == l.gen {
		return
	}
	l.gen = gen
	base := l.ctrl.StartedAt()
	l.nextFrame = base.Add(l.frameInterval)
	l.nextSecond = base.Add(time.Second)
}
