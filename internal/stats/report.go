package stats

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/mathcatch/internal/model"
)

const recentScores = 20

var passedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))

// ResultLister reads session history.
type ResultLister interface {
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.SessionResult, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results []model.SessionResult
	Levels  []model.LevelAggregate
}

// BuildReport loads history and summarizes it per level.
func BuildReport(ctx context.Context, st ResultLister, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	return Report{Results: results, Levels: Summarize(results)}, nil
}

// RenderReport prints the per-level history table.
func RenderReport(w io.Writer, report Report, useColor bool) error {
	if len(report.Results) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"Level", "Plays", "Passes", "Pass%", "Best", "Last", "Recent"}
	rows := make([][]string, 0, len(report.Levels))
	passed := make([]bool, 0, len(report.Levels))
	for _, agg := range report.Levels {
		rows = append(rows, []string{
			strconv.Itoa(agg.LevelID),
			strconv.Itoa(agg.Plays),
			strconv.Itoa(agg.Passes),
			fmt.Sprintf("%.0f%%", PassRate(agg)*100),
			strconv.Itoa(agg.BestScore),
			strconv.Itoa(agg.LastScore),
			Sparkline(lastN(agg.Scores, recentScores)),
		})
		passed = append(passed, agg.Passes > 0)
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n\n", len(report.Results)); err != nil {
		return err
	}
	return writeTable(w, headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}, passed, useColor)
}

// RenderLevels prints the level list with time, target, best score and pass mark.
func RenderLevels(w io.Writer, levels []model.Level, progress map[int]model.ProgressRecord, useColor bool) error {
	headers := []string{"Level", "Time", "Target", "Best", "Passed"}
	rows := make([][]string, 0, len(levels))
	passed := make([]bool, 0, len(levels))
	for _, lvl := range levels {
		rec, ok := progress[lvl.ID]
		best := "-"
		mark := ""
		if ok {
			best = strconv.Itoa(rec.HighScore)
			if rec.Passed {
				mark = "yes"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(lvl.ID),
			fmt.Sprintf("%ds", lvl.Time),
			strconv.Itoa(lvl.Target),
			best,
			mark,
		})
		passed = append(passed, ok && rec.Passed)
	}
	return writeTable(w, headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}, passed, useColor)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool, highlight []bool, useColor bool) error {
	lines := formatTable(headers, rows, rightAlign)
	for i, line := range lines {
		if useColor && i > 0 && highlight[i-1] {
			line = passedStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShouldUseColor reports whether w is a terminal that accepts color.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
