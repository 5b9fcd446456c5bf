// Package audit drives the pipeline: the scoring engine, the single-page
// and site orchestrators, depth-weighted aggregation, lint checks, and the
// exit-code policy the CLI applies to finished reports.
package audit

import (
	"math"

	"github.com/contextlint/contextlint/internal/types"
)

// Scoring constants. Exported so verbose output and the recommender can
// show the actual thresholds in use.
//
// Weights: content dominates because it is what AI engines actually
// extract and cite; schema and robots follow; llms.txt is a
// forward-looking signal with minimal weight today.
const (
	RobotsMax  = 25.0
	LlmsTxtMax = 10.0
	SchemaMax  = 25.0
	ContentMax = 40.0

	SchemaBaseScore      = 8.0
	SchemaHighValueBonus = 5.0
	SchemaStandardBonus  = 3.0
	ContentHeadingBonus  = 7.0
	ContentListBonus     = 5.0
	ContentCodeBonus     = 3.0
)

// WordTier is one entry of the content base-score ladder.
type WordTier struct {
	MinWords int
	Score    float64
}

// ContentWordTiers is evaluated top-down; the first tier the word count
// reaches sets the base content score.
var ContentWordTiers = []WordTier{
	{1500, 25},
	{800, 20},
	{400, 15},
	{150, 8},
}

// HighValueTypes are the Schema.org types AI engines lean on most; they
// earn the larger per-type bonus.
var HighValueTypes = map[string]bool{
	"FAQPage": true,
	"HowTo":   true,
	"Article": true,
	"Product": true,
	"Recipe":  true,
}

// ComputeScores fills in the Score field of each pillar report and returns
// the overall score. It is a pure projection over the four reports: same
// inputs, same outputs, no state outside them.
func ComputeScores(robots *types.RobotsReport, llmsTxt *types.LlmsTxtReport, schemaOrg *types.SchemaReport, content *types.ContentReport) float64 {
	scoreRobots(robots)
	scoreLlmsTxt(llmsTxt)
	scoreSchema(schemaOrg)
	scoreContent(content)
	return robots.Score + llmsTxt.Score + schemaOrg.Score + content.Score
}

// scoreRobots: proportional to the fraction of AI bots allowed.
func scoreRobots(r *types.RobotsReport) {
	if !r.Found || len(r.Bots) == 0 {
		r.Score = 0
		return
	}
	allowed := 0
	for _, b := range r.Bots {
		if b.Allowed {
			allowed++
		}
	}
	r.Score = round1(RobotsMax * float64(allowed) / float64(len(r.Bots)))
}

// scoreLlmsTxt: either llms.txt or llms-full.txt earns full marks.
func scoreLlmsTxt(l *types.LlmsTxtReport) {
	if l.Found || l.LlmsFullFound {
		l.Score = LlmsTxtMax
	} else {
		l.Score = 0
	}
}

// scoreSchema: base score for having any JSON-LD at all, plus per-unique-
// type bonuses, high-value types counting more, capped at the pillar max.
func scoreSchema(s *types.SchemaReport) {
	if s.BlocksFound == 0 {
		s.Score = 0
		return
	}
	unique := make(map[string]bool, len(s.Schemas))
	for _, schema := range s.Schemas {
		unique[schema.SchemaType] = true
	}
	high := 0
	for t := range unique {
		if HighValueTypes[t] {
			high++
		}
	}
	std := len(unique) - high
	s.Score = math.Min(SchemaMax, SchemaBaseScore+SchemaHighValueBonus*float64(high)+SchemaStandardBonus*float64(std))
}

// scoreContent: word-count tier plus structure bonuses, capped.
func scoreContent(c *types.ContentReport) {
	score := 0.0
	for _, tier := range ContentWordTiers {
		if c.WordCount >= tier.MinWords {
			score = tier.Score
			break
		}
	}
	if c.HasHeadings {
		score += ContentHeadingBonus
	}
	if c.HasLists {
		score += ContentListBonus
	}
	if c.HasCodeBlocks {
		score += ContentCodeBonus
	}
	c.Score = math.Min(ContentMax, score)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
