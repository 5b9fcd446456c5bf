package audit

import (
	"strings"
	"testing"

	"github.com/contextlint/contextlint/internal/types"
)

func TestComputeLintResultAllPassing(t *testing.T) {
	robots := types.RobotsReport{Found: true, Bots: []types.BotAccess{{Bot: "GPTBot", Allowed: true}}}
	llmsTxt := types.LlmsTxtReport{Found: true, URL: "https://example.com/llms.txt"}
	schemaOrg := types.SchemaReport{BlocksFound: 1, Schemas: []types.SchemaOrgResult{{SchemaType: "Article"}}}
	content := types.ContentReport{WordCount: 900, HasHeadings: true, HasCodeBlocks: true}

	result := ComputeLintResult(&robots, &llmsTxt, &schemaOrg, &content)

	if !result.Passed {
		t.Errorf("all checks should pass: %+v", result.Checks)
	}
	if len(result.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(result.Checks))
	}
	for _, c := range result.Checks {
		if c.Severity != "pass" {
			t.Errorf("check %s severity %q", c.Name, c.Severity)
		}
	}
}

func TestComputeLintResultBlockedBots(t *testing.T) {
	robots := types.RobotsReport{
		Found: true,
		Bots: []types.BotAccess{
			{Bot: "GPTBot", Allowed: false},
			{Bot: "ClaudeBot", Allowed: true},
		},
	}
	llmsTxt := types.LlmsTxtReport{}
	schemaOrg := types.SchemaReport{}
	content := types.ContentReport{}

	result := ComputeLintResult(&robots, &llmsTxt, &schemaOrg, &content)

	if result.Passed {
		t.Error("blocked bots and missing llms.txt must fail the lint")
	}

	var botCheck *types.LintCheck
	for i := range result.Checks {
		if result.Checks[i].Name == "Bot Access" {
			botCheck = &result.Checks[i]
		}
	}
	if botCheck == nil {
		t.Fatal("missing Bot Access check")
	}
	if botCheck.Passed || botCheck.Severity != "fail" {
		t.Errorf("Bot Access should fail: %+v", botCheck)
	}
	if !strings.Contains(botCheck.Detail, "1/2 AI bots allowed") {
		t.Errorf("wrong detail %q", botCheck.Detail)
	}
	if !strings.Contains(botCheck.Detail, "GPTBot") {
		t.Errorf("blocked bot name missing from detail %q", botCheck.Detail)
	}

	var sawBlockedDiag bool
	for _, d := range result.Diagnostics {
		if d.Code == "WARN-004" {
			sawBlockedDiag = true
		}
	}
	if !sawBlockedDiag {
		t.Error("expected the blocked-bots diagnostic")
	}
}

func TestComputeLintResultDiagnostics(t *testing.T) {
	grade := 10.3
	robots := types.RobotsReport{}
	llmsTxt := types.LlmsTxtReport{}
	schemaOrg := types.SchemaReport{BlocksFound: 2, Schemas: []types.SchemaOrgResult{{SchemaType: "Article"}, {SchemaType: "WebSite"}}}
	content := types.ContentReport{WordCount: 500, ReadabilityGrade: &grade}

	result := ComputeLintResult(&robots, &llmsTxt, &schemaOrg, &content)

	codes := map[string]bool{}
	for _, d := range result.Diagnostics {
		codes[d.Code] = true
	}
	for _, want := range []string{"WARN-002", "WARN-003", "INFO-001", "INFO-002"} {
		if !codes[want] {
			t.Errorf("missing diagnostic %s (have %v)", want, codes)
		}
	}
}
