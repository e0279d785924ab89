// Package gui provides the windowed Ebitengine frontend.
package gui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/verte-zerg/mathcatch/internal/catalog"
	"github.com/verte-zerg/mathcatch/internal/progress"
	"github.com/verte-zerg/mathcatch/internal/session"
	"github.com/verte-zerg/mathcatch/internal/sim"
)

const (
	ScreenW = 800
	ScreenH = 600

	hudHeight   = 30
	lineHeight  = 20
	keyNudgePx  = 6
	windowTitle = "Math Catcher"
)

var (
	background = color.RGBA{0x1E, 0x1E, 0x1E, 0xFF}
	paddleCol  = color.RGBA{0x2B, 0x6C, 0xB0, 0xFF}
	itemCol    = color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}
	hudCol     = color.RGBA{0xC8, 0x9A, 0x3A, 0xFF}
	mutedCol   = color.RGBA{0x8C, 0x8C, 0x8C, 0xFF}
	errorCol   = color.RGBA{0xFF, 0x4D, 0x4F, 0xFF}
)

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenResult
)

// Options configures the window.
type Options struct {
	// Session configures the controller. Its Listener is replaced.
	Session    session.Options
	Tracker    *progress.Tracker
	FPS        int
	StartLevel int
}

// Game implements ebiten.Game.
type Game struct {
	ctrl    *session.Controller
	loop    *session.Loop
	notices *session.Notices
	catalog *catalog.Catalog
	tracker *progress.Tracker
	log     *slog.Logger

	frame *sim.DrawList

	screen   screen
	selected int
	lastX    int
	errMsg   string
	progress string
	passed   map[int]bool
}

// NewGame returns a game showing the level menu, or already playing StartLevel.
func NewGame(opts Options) *Game {
	notices := &session.Notices{}
	sessOpts := opts.Session
	sessOpts.Listener = notices
	if sessOpts.Clock == nil {
		sessOpts.Clock = session.SystemClock{}
	}
	logger := sessOpts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctrl := session.NewController(sessOpts)
	g := &Game{
		ctrl:    ctrl,
		loop:    session.NewLoop(ctrl, sessOpts.Clock, opts.FPS),
		notices: notices,
		catalog: sessOpts.Catalog,
		tracker: opts.Tracker,
		log:     logger,
		frame:   sim.NewDrawList(ScreenW, ScreenH-hudHeight),
		lastX:   -1,
	}
	g.refreshProgress()
	if opts.StartLevel > 0 {
		g.start(opts.StartLevel)
	}
	return g
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	ebiten.SetWindowSize(ScreenW, ScreenH)
	ebiten.SetWindowTitle(windowTitle)
	if opts.FPS > 0 {
		ebiten.SetTPS(opts.FPS)
	}
	g := NewGame(opts)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("failed to run window: %w", err)
	}
	g.ctrl.Abort()
	return nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.ctrl.Abort()
		return ebiten.Termination
	}
	switch g.screen {
	case screenGame:
		g.updateGame()
	case screenResult:
		g.updateResult()
	default:
		g.updateMenu()
	}
	return nil
}

func (g *Game) updateMenu() {
	levels := g.catalog.Levels()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && g.selected > 0:
		g.selected--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.selected < len(levels)-1:
		g.selected++
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.start(levels[g.selected].ID)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		_, y := ebiten.CursorPosition()
		if idx := (y - menuTop) / lineHeight; y >= menuTop && idx < len(levels) {
			g.selected = idx
			g.start(levels[idx].ID)
		}
	}
}

func (g *Game) updateGame() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.ctrl.Abort()
		g.toMenu()
		return
	}
	if x, _ := ebiten.CursorPosition(); x != g.lastX {
		g.lastX = x
		g.ctrl.MovePaddle(float64(x))
	}
	if world := g.ctrl.World(); world != nil {
		p := world.Paddle()
		center := p.X + p.Width/2
		if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			g.ctrl.MovePaddle(center - keyNudgePx)
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			g.ctrl.MovePaddle(center + keyNudgePx)
		}
	}
	g.loop.Advance(context.Background(), g.frame)
	if !g.ctrl.Running() {
		g.screen = screenResult
		g.refreshProgress()
	}
}

func (g *Game) updateResult() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if g.ctrl.Outcome() == session.OutcomeCompleted {
			g.start(g.catalog.First().ID)
			return
		}
		g.start(g.ctrl.Level().ID)
	case inpututil.IsKeyJustPressed(ebiten.KeyM) || inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.toMenu()
	}
}

func (g *Game) start(levelID int) {
	g.notices.Clear()
	g.errMsg = ""
	g.frame.Reset()
	if err := g.ctrl.Start(levelID, ScreenW, ScreenH-hudHeight); err != nil {
		g.log.Warn("failed to start level", "level", levelID, "err", err)
		g.errMsg = err.Error()
		g.toMenu()
		return
	}
	g.screen = screenGame
}

func (g *Game) toMenu() {
	g.screen = screenMenu
	g.refreshProgress()
}

func (g *Game) refreshProgress() {
	if g.tracker == nil {
		return
	}
	g.passed = g.tracker.Passed(context.Background())
	g.progress = fmt.Sprintf("%d/%d levels passed", len(g.passed), g.catalog.Len())
}

// Draw implements ebiten.Game.
func (g *Game) Draw(dst *ebiten.Image) {
	dst.Fill(background)
	switch g.screen {
	case screenGame:
		g.drawGame(dst)
	case screenResult:
		g.drawResult(dst)
	default:
		g.drawMenu(dst)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return ScreenW, ScreenH
}

const menuTop = 80

func (g *Game) drawMenu(dst *ebiten.Image) {
	text.Draw(dst, windowTitle, basicfont.Face7x13, 40, 40, hudCol)
	text.Draw(dst, g.progress, basicfont.Face7x13, 40, 60, mutedCol)
	for i, lvl := range g.catalog.Levels() {
		line := fmt.Sprintf("Level %d   %ds   target %d", lvl.ID, lvl.Time, lvl.Target)
		if g.passed[lvl.ID] {
			line += "   passed"
		}
		col := mutedCol
		if i == g.selected {
			line = "> " + line
			col = itemCol
		} else {
			line = "  " + line
		}
		text.Draw(dst, line, basicfont.Face7x13, 40, menuTop+lineHeight*i+lineHeight-6, col)
	}
	footerY := menuTop + lineHeight*(g.catalog.Len()+1)
	if g.errMsg != "" {
		text.Draw(dst, g.errMsg, basicfont.Face7x13, 40, footerY, errorCol)
		footerY += lineHeight
	}
	text.Draw(dst, "up/down select  enter play  q quit", basicfont.Face7x13, 40, footerY, mutedCol)
}

func (g *Game) drawGame(dst *ebiten.Image) {
	s := g.ctrl.Session()
	hud := fmt.Sprintf("Level %d   Score %d/%d   Time %ds", s.LevelID, s.Score, g.ctrl.Level().Target, s.TimeLeft)
	text.Draw(dst, hud, basicfont.Face7x13, 10, 20, hudCol)
	if g.notices.Banner != "" {
		text.Draw(dst, g.notices.Banner, basicfont.Face7x13, 360, 20, itemCol)
	}
	if g.notices.Err != "" {
		text.Draw(dst, g.notices.Err, basicfont.Face7x13, 10, ScreenH-8, errorCol)
	}
	replay(dst, g.frame.Ops(), hudHeight)
}

func (g *Game) drawResult(dst *ebiten.Image) {
	text.Draw(dst, g.notices.Banner, basicfont.Face7x13, 260, 260, hudCol)
	y := 290
	if g.notices.Err != "" {
		text.Draw(dst, g.notices.Err, basicfont.Face7x13, 260, y, errorCol)
		y += lineHeight
	}
	action := "retry"
	if g.ctrl.Outcome() == session.OutcomeCompleted {
		action = "play again"
	}
	text.Draw(dst, fmt.Sprintf("enter %s  m menu  q quit", action), basicfont.Face7x13, 260, y, mutedCol)
}

// replay draws recorded ops shifted down by offsetY.
func replay(dst *ebiten.Image, ops []sim.DrawOp, offsetY float64) {
	for _, op := range ops {
		switch op.Kind {
		case sim.OpClear:
			vector.DrawFilledRect(dst, float32(op.X), float32(op.Y+offsetY), float32(op.W), float32(op.H), background, false)
		case sim.OpFill:
			vector.DrawFilledRect(dst, float32(op.X), float32(op.Y+offsetY), float32(op.W), float32(op.H), paddleCol, false)
		case sim.OpText:
			text.Draw(dst, op.Text, basicfont.Face7x13, int(op.X), int(op.Y+offsetY), itemCol)
		}
	}
}
