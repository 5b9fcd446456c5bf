// Package regress compares a fresh audit against the stored baseline for
// the same URL and flags score regressions.
package regress

import (
	"math"

	"github.com/contextlint/contextlint/internal/types"
)

// DefaultThreshold is the score drop that counts as a regression when the
// caller does not configure one.
const DefaultThreshold = 5.0

// Detect diffs the current report against a previous one. The overall
// delta is rounded to one decimal; a regression is a drop strictly greater
// than the threshold — an exact-threshold drop does not regress.
func Detect(current, previous *types.AuditReport, threshold float64) types.RegressionReport {
	delta := round1(current.OverallScore - previous.OverallScore)

	pillars := []types.PillarRegression{
		pillarDelta("robots", previous.Robots.Score, current.Robots.Score),
		pillarDelta("llms_txt", previous.LlmsTxt.Score, current.LlmsTxt.Score),
		pillarDelta("schema_org", previous.SchemaOrg.Score, current.SchemaOrg.Score),
		pillarDelta("content", previous.Content.Score, current.Content.Score),
	}

	return types.RegressionReport{
		URL:           current.URL,
		PreviousScore: previous.OverallScore,
		CurrentScore:  current.OverallScore,
		Delta:         delta,
		HasRegression: delta < -threshold,
		Threshold:     threshold,
		Pillars:       pillars,
	}
}

func pillarDelta(name string, previous, current float64) types.PillarRegression {
	return types.PillarRegression{
		Pillar:   name,
		Previous: previous,
		Current:  current,
		Delta:    round1(current - previous),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
