package audit

import (
	"fmt"
	"strings"

	"github.com/contextlint/contextlint/internal/types"
)

// ComputeLintResult derives pass/fail checks and diagnostics from the four
// pillar reports. It reads scores and findings only; it never refetches.
func ComputeLintResult(robots *types.RobotsReport, llmsTxt *types.LlmsTxtReport, schemaOrg *types.SchemaReport, content *types.ContentReport) types.LintResult {
	var checks []types.LintCheck

	// AI Primitives: any llms.txt variant present.
	aiPrimPass := llmsTxt.Found || llmsTxt.LlmsFullFound
	aiPrimDetail := "No llms.txt found"
	if aiPrimPass {
		aiPrimDetail = "llms.txt found"
		if llmsTxt.URL != "" {
			aiPrimDetail = "llms.txt found at " + llmsTxt.URL
		}
	}
	checks = append(checks, types.LintCheck{
		Name:     "AI Primitives",
		Passed:   aiPrimPass,
		Severity: passFail(aiPrimPass),
		Detail:   aiPrimDetail,
	})

	// Bot Access: every checked AI bot can crawl.
	botPass := true
	botSeverity := "pass"
	botDetail := "No robots.txt found"
	if robots.Found && len(robots.Bots) > 0 {
		var blocked []string
		for _, b := range robots.Bots {
			if !b.Allowed {
				blocked = append(blocked, b.Bot)
			}
		}
		botPass = len(blocked) == 0
		botDetail = fmt.Sprintf("%d/%d AI bots allowed", len(robots.Bots)-len(blocked), len(robots.Bots))
		if len(blocked) > 0 {
			shown := blocked
			if len(shown) > 3 {
				shown = shown[:3]
			}
			botDetail += " (" + strings.Join(shown, ", ") + " blocked)"
			botSeverity = "fail"
		}
	}
	checks = append(checks, types.LintCheck{
		Name:     "Bot Access",
		Passed:   botPass,
		Severity: botSeverity,
		Detail:   botDetail,
	})

	// Data Structuring: at least one JSON-LD block.
	schemaPass := schemaOrg.BlocksFound > 0
	schemaDetail := fmt.Sprintf("%d JSON-LD blocks", schemaOrg.BlocksFound)
	if len(schemaOrg.Schemas) > 0 {
		names := make([]string, 0, 3)
		for _, s := range schemaOrg.Schemas {
			names = append(names, s.SchemaType)
			if len(names) == 3 {
				break
			}
		}
		schemaDetail += " (" + strings.Join(names, ", ") + ")"
	}
	checks = append(checks, types.LintCheck{
		Name:     "Data Structuring",
		Passed:   schemaPass,
		Severity: passFail(schemaPass),
		Detail:   schemaDetail,
	})

	passed := true
	for _, c := range checks {
		if !c.Passed {
			passed = false
			break
		}
	}

	return types.LintResult{
		Checks:      checks,
		Passed:      passed,
		Diagnostics: generateDiagnostics(robots, content, schemaOrg),
	}
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

// generateDiagnostics emits linter-style messages for individual findings.
func generateDiagnostics(robots *types.RobotsReport, content *types.ContentReport, schemaOrg *types.SchemaReport) []types.Diagnostic {
	var diags []types.Diagnostic

	if !content.HasCodeBlocks {
		diags = append(diags, types.Diagnostic{
			Code:     "WARN-002",
			Severity: "warn",
			Message:  "No code blocks detected. Technical docs should include examples.",
		})
	}

	if !content.HasHeadings {
		diags = append(diags, types.Diagnostic{
			Code:     "WARN-003",
			Severity: "warn",
			Message:  "No heading structure. Content lacks navigability for LLM extraction.",
		})
	}

	if robots.Found && len(robots.Bots) > 0 {
		blocked := 0
		for _, b := range robots.Bots {
			if !b.Allowed {
				blocked++
			}
		}
		if blocked > 0 {
			diags = append(diags, types.Diagnostic{
				Code:     "WARN-004",
				Severity: "warn",
				Message:  fmt.Sprintf("%d AI bots blocked in robots.txt.", blocked),
			})
		}
	}

	if content.ReadabilityGrade != nil {
		grade := *content.ReadabilityGrade
		level := "college level"
		switch {
		case grade < 6:
			level = "elementary"
		case grade < 9:
			level = "middle school"
		case grade < 13:
			level = "high school"
		}
		diags = append(diags, types.Diagnostic{
			Code:     "INFO-001",
			Severity: "info",
			Message:  fmt.Sprintf("Readability grade: %.1f (%s)", grade, level),
		})
	}

	if schemaOrg.BlocksFound > 0 && len(schemaOrg.Schemas) > 0 {
		names := make([]string, 0, 5)
		for _, s := range schemaOrg.Schemas {
			names = append(names, s.SchemaType)
			if len(names) == 5 {
				break
			}
		}
		diags = append(diags, types.Diagnostic{
			Code:     "INFO-002",
			Severity: "info",
			Message:  fmt.Sprintf("%d JSON-LD blocks detected: %s", schemaOrg.BlocksFound, strings.Join(names, ", ")),
		})
	}

	return diags
}
