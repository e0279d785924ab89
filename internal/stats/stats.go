// Package stats contains session history summaries and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/mathcatch/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summarize groups results by level, in level order. Scores keep play order.
func Summarize(results []model.SessionResult) []model.LevelAggregate {
	byLevel := map[int]*model.LevelAggregate{}
	for _, r := range results {
		agg, ok := byLevel[r.LevelID]
		if !ok {
			agg = &model.LevelAggregate{LevelID: r.LevelID, BestScore: r.Score}
			byLevel[r.LevelID] = agg
		}
		agg.Plays++
		if r.Passed {
			agg.Passes++
		}
		if r.Score > agg.BestScore {
			agg.BestScore = r.Score
		}
		agg.LastScore = r.Score
		agg.Scores = append(agg.Scores, r.Score)
	}
	out := make([]model.LevelAggregate, 0, len(byLevel))
	for _, agg := range byLevel {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LevelID < out[j].LevelID })
	return out
}

// PassRate returns passes over plays, or 0 without plays.
func PassRate(agg model.LevelAggregate) float64 {
	if agg.Plays == 0 {
		return 0
	}
	return float64(agg.Passes) / float64(agg.Plays)
}

// Sparkline renders a single-line ASCII sparkline of scores.
func Sparkline(scores []int) string {
	if len(scores) == 0 {
		return ""
	}
	minVal := scores[0]
	maxVal := scores[0]
	for _, v := range scores[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == maxVal {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(scores))
	}
	var b strings.Builder
	for _, v := range scores {
		pos := float64(v-minVal) / float64(maxVal-minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// lastN returns at most the final n values.
func lastN(values []int, n int) []int {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
