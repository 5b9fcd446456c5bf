// Package recommend turns an audit report into a prioritized action list:
// what to fix, how many points it is worth, and how urgent it is relative
// to the pillar's ceiling.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/contextlint/contextlint/internal/audit"
	"github.com/contextlint/contextlint/internal/types"
)

// Generate analyzes a report and produces recommendations sorted by
// estimated impact, largest first.
func Generate(report *types.AuditReport) []types.Recommendation {
	var recs []types.Recommendation
	recs = append(recs, robotsRecs(report)...)
	recs = append(recs, llmsTxtRecs(report)...)
	recs = append(recs, schemaRecs(report)...)
	recs = append(recs, contentRecs(report)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].EstimatedImpact > recs[j].EstimatedImpact
	})
	return recs
}

// priorityForGap ranks urgency by how much of the pillar's ceiling is
// missing: half or more is high, a quarter is medium, the rest low.
func priorityForGap(gap, max float64) string {
	if max <= 0 {
		return "low"
	}
	ratio := gap / max
	switch {
	case ratio >= 0.5:
		return "high"
	case ratio >= 0.25:
		return "medium"
	default:
		return "low"
	}
}

func robotsRecs(report *types.AuditReport) []types.Recommendation {
	robots := report.Robots
	gap := audit.RobotsMax - robots.Score
	if gap <= 0 {
		return nil
	}

	if !robots.Found {
		return []types.Recommendation{{
			Pillar:          "robots",
			Action:          "Create a robots.txt file",
			EstimatedImpact: round1(gap),
			Priority:        priorityForGap(gap, audit.RobotsMax),
			Detail: "No robots.txt was found. Create one that allows AI bots " +
				"(GPTBot, ClaudeBot, PerplexityBot, etc.) to crawl your site.",
		}}
	}

	var blocked []string
	for _, b := range robots.Bots {
		if !b.Allowed {
			blocked = append(blocked, b.Bot)
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	perBot := round1(gap / float64(len(blocked)))
	return []types.Recommendation{{
		Pillar:          "robots",
		Action:          fmt.Sprintf("Unblock %d AI bot(s) in robots.txt", len(blocked)),
		EstimatedImpact: round1(gap),
		Priority:        priorityForGap(gap, audit.RobotsMax),
		Detail: fmt.Sprintf("The following AI bots are blocked: %s. "+
			"Each bot unblocked adds ~%g points to the Robots score.",
			strings.Join(blocked, ", "), perBot),
	}}
}

func llmsTxtRecs(report *types.AuditReport) []types.Recommendation {
	llms := report.LlmsTxt

	if !llms.Found && !llms.LlmsFullFound {
		return []types.Recommendation{{
			Pillar:          "llms_txt",
			Action:          "Create an llms.txt file",
			EstimatedImpact: audit.LlmsTxtMax,
			Priority:        priorityForGap(audit.LlmsTxtMax, audit.LlmsTxtMax),
			Detail: "No llms.txt was found. Create one at /llms.txt to help " +
				"AI models understand your site's structure and content.",
		}}
	}
	if llms.Found && !llms.LlmsFullFound {
		return []types.Recommendation{{
			Pillar:          "llms_txt",
			Action:          "Add an llms-full.txt file",
			EstimatedImpact: 0,
			Priority:        "low",
			Detail: "You have llms.txt but no llms-full.txt. Adding a detailed " +
				"llms-full.txt gives AI models richer context about your content.",
		}}
	}
	return nil
}

func schemaRecs(report *types.AuditReport) []types.Recommendation {
	schema := report.SchemaOrg
	gap := audit.SchemaMax - schema.Score
	if gap <= 0 {
		return nil
	}

	existing := make(map[string]bool, len(schema.Schemas))
	for _, s := range schema.Schemas {
		existing[s.SchemaType] = true
	}
	var missingHigh []string
	for t := range audit.HighValueTypes {
		if !existing[t] {
			missingHigh = append(missingHigh, t)
		}
	}
	sort.Strings(missingHigh)

	suggested := missingHigh
	if len(suggested) > 3 {
		suggested = suggested[:3]
	}

	if schema.BlocksFound == 0 {
		return []types.Recommendation{{
			Pillar:          "schema",
			Action:          "Add Schema.org JSON-LD structured data",
			EstimatedImpact: round1(gap),
			Priority:        priorityForGap(gap, audit.SchemaMax),
			Detail: fmt.Sprintf("No JSON-LD blocks found. Add high-value types like %s "+
				"to help AI engines understand your page structure.",
				strings.Join(suggested, ", ")),
		}}
	}

	if len(missingHigh) > 0 {
		impact := math.Min(gap, audit.SchemaHighValueBonus*float64(len(missingHigh)))
		return []types.Recommendation{{
			Pillar:          "schema",
			Action:          "Add high-value Schema.org types",
			EstimatedImpact: round1(impact),
			Priority:        priorityForGap(gap, audit.SchemaMax),
			Detail: fmt.Sprintf("Consider adding these high-value types: %s. "+
				"High-value types (FAQPage, HowTo, Article, Product, Recipe) "+
				"receive a larger scoring bonus.", strings.Join(suggested, ", ")),
		}}
	}
	return nil
}

func contentRecs(report *types.AuditReport) []types.Recommendation {
	content := report.Content
	gap := audit.ContentMax - content.Score
	if gap <= 0 {
		return nil
	}

	var recs []types.Recommendation

	if content.WordCount < 400 {
		impact := math.Min(gap, 15)
		recs = append(recs, types.Recommendation{
			Pillar:          "content",
			Action:          "Add more content to the page",
			EstimatedImpact: round1(impact),
			Priority:        priorityForGap(gap, audit.ContentMax),
			Detail: fmt.Sprintf("Page has only %d words. "+
				"Aim for at least 400-800 words of substantive content "+
				"for better AI engine citation.", content.WordCount),
		})
	}

	if !content.HasHeadings {
		impact := math.Min(gap, audit.ContentHeadingBonus)
		recs = append(recs, types.Recommendation{
			Pillar:          "content",
			Action:          "Add heading structure (H2/H3)",
			EstimatedImpact: round1(impact),
			Priority:        priorityForGap(impact, audit.ContentMax),
			Detail: "No headings found. Add H2/H3 headings to structure your content " +
				"into clear sections. This helps AI engines parse and cite specific sections.",
		})
	}

	if !content.HasLists {
		impact := math.Min(gap, audit.ContentListBonus)
		recs = append(recs, types.Recommendation{
			Pillar:          "content",
			Action:          "Add structured lists (ul/ol)",
			EstimatedImpact: round1(impact),
			Priority:        priorityForGap(impact, audit.ContentMax),
			Detail: "No lists found. Bullet or numbered lists make content more " +
				"scannable and extractable by AI engines.",
		})
	}

	if content.ReadabilityGrade != nil && *content.ReadabilityGrade > 12 {
		impact := math.Min(gap, 3)
		recs = append(recs, types.Recommendation{
			Pillar:          "content",
			Action:          "Simplify readability",
			EstimatedImpact: round1(impact),
			Priority:        "medium",
			Detail: fmt.Sprintf("Readability grade is %.1f "+
				"(target: 8-12). Simplify sentences and use common vocabulary "+
				"for better AI extraction.", *content.ReadabilityGrade),
		})
	}

	if content.AnswerFirstRatio < 0.3 && content.HasHeadings {
		impact := math.Min(gap, 3)
		recs = append(recs, types.Recommendation{
			Pillar:          "content",
			Action:          "Restructure for answer-first pattern",
			EstimatedImpact: round1(impact),
			Priority:        "medium",
			Detail: fmt.Sprintf("Only %.0f%% of sections lead with a direct answer. "+
				"Start each section with a concise answer before elaborating.",
				content.AnswerFirstRatio*100),
		})
	}

	return recs
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
