// Package sim advances falling items, resolves paddle collisions and draws each frame.
package sim

import (
	"github.com/verte-zerg/mathcatch/internal/model"
)

const (
	// ItemHalfHeight is added to an item's y when testing against the paddle top.
	ItemHalfHeight = 20.0
	// MissMargin is how far below the visible area an item may fall before removal.
	MissMargin = 30.0

	DefaultPaddleWidth  = 100.0
	DefaultPaddleHeight = 20.0
	paddleBottomOffset  = 40.0
)

// Surface is the drawing target for one frame.
type Surface interface {
	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64)
	DrawText(text string, x, y float64)
}

// Spawner produces at most one new item per frame.
type Spawner interface {
	MaybeSpawn(level model.Level, areaWidth float64) (model.FallingItem, bool)
}

// FrameStats reports what happened during one frame.
type FrameStats struct {
	Spawned   bool
	Caught    int
	Penalized int
	Missed    int
}

// ScoreDelta returns the net score change of the frame.
func (f FrameStats) ScoreDelta() int {
	return f.Caught - f.Penalized
}

// World owns the active items and the paddle of one session.
type World struct {
	width  float64
	height float64
	paddle model.Paddle
	items  []model.FallingItem
}

// NewWorld returns an empty world with the paddle centred near the bottom.
func NewWorld(width, height, paddleWidth float64) *World {
	if paddleWidth <= 0 {
		paddleWidth = DefaultPaddleWidth
	}
	return &World{
		width:  width,
		height: height,
		paddle: model.Paddle{
			Width:  paddleWidth,
			Height: DefaultPaddleHeight,
			X:      width/2 - paddleWidth/2,
			Y:      height - paddleBottomOffset,
		},
	}
}

// Size returns the play-area dimensions captured at session start.
func (w *World) Size() (width, height float64) {
	return w.width, w.height
}

// Paddle returns the current paddle.
func (w *World) Paddle() model.Paddle {
	return w.paddle
}

// MovePaddle centres the paddle on pointerX. No clamping is applied.
func (w *World) MovePaddle(pointerX float64) {
	w.paddle.X = pointerX - w.paddle.Width/2
}

// Items returns a copy of the active items.
func (w *World) Items() []model.FallingItem {
	return append([]model.FallingItem(nil), w.items...)
}

// Add inserts an item into the active collection.
func (w *World) Add(item model.FallingItem) {
	w.items = append(w.items, item)
}

// Step runs one frame: spawn, redraw, then advance and resolve every item.
// The score in state is updated in place.
func (w *World) Step(state *model.SessionState, level model.Level, spawner Spawner, surface Surface) FrameStats {
	var stats FrameStats
	if spawner != nil {
		if item, ok := spawner.MaybeSpawn(level, w.width); ok {
			w.Add(item)
			stats.Spawned = true
		}
	}

	surface.ClearRect(0, 0, w.width, w.height)
	surface.FillRect(w.paddle.X, w.paddle.Y, w.paddle.Width, w.paddle.Height)

	kept := w.items[:0]
	for _, item := range w.items {
		item.Y += item.Speed
		surface.DrawText(item.Text, item.X, item.Y)

		if w.collides(item) {
			if item.Correct {
				state.Score++
				stats.Caught++
			} else {
				state.Score--
				stats.Penalized++
			}
			continue
		}
		if item.Y > w.height+MissMargin {
			stats.Missed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(w.items); i++ {
		w.items[i] = model.FallingItem{}
	}
	w.items = kept
	return stats
}

func (w *World) collides(item model.FallingItem) bool {
	return item.Y+ItemHalfHeight >= w.paddle.Top() &&
		item.X >= w.paddle.Left() &&
		item.X <= w.paddle.Right()
}
