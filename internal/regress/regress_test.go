package regress

import (
	"testing"

	"github.com/contextlint/contextlint/internal/types"
)

func reportWithScores(overall, robots, llms, schema, content float64) *types.AuditReport {
	return &types.AuditReport{
		URL:          "https://example.com/",
		OverallScore: overall,
		Robots:       types.RobotsReport{Score: robots},
		LlmsTxt:      types.LlmsTxtReport{Score: llms},
		SchemaOrg:    types.SchemaReport{Score: schema},
		Content:      types.ContentReport{Score: content},
	}
}

func TestDetectRegression(t *testing.T) {
	previous := reportWithScores(70, 25, 10, 15, 20)
	current := reportWithScores(50, 15, 0, 15, 20)

	result := Detect(current, previous, 5)

	if !result.HasRegression {
		t.Error("a 20-point drop past threshold 5 is a regression")
	}
	if result.Delta != -20 {
		t.Errorf("expected delta -20, got %g", result.Delta)
	}
	if result.PreviousScore != 70 || result.CurrentScore != 50 {
		t.Errorf("wrong endpoint scores: %g -> %g", result.PreviousScore, result.CurrentScore)
	}
}

func TestDetectNoRegressionWithHighThreshold(t *testing.T) {
	previous := reportWithScores(70, 25, 10, 15, 20)
	current := reportWithScores(50, 15, 0, 15, 20)

	result := Detect(current, previous, 25)

	if result.HasRegression {
		t.Error("a 20-point drop under threshold 25 is not a regression")
	}
	if result.Delta != -20 {
		t.Errorf("expected delta -20, got %g", result.Delta)
	}
}

func TestDetectExactThresholdDoesNotRegress(t *testing.T) {
	previous := reportWithScores(70, 25, 10, 15, 20)
	current := reportWithScores(65, 20, 10, 15, 20)

	result := Detect(current, previous, 5)

	if result.HasRegression {
		t.Error("a drop exactly equal to the threshold must not regress (strict)")
	}
}

func TestDetectImprovement(t *testing.T) {
	previous := reportWithScores(50, 15, 0, 15, 20)
	current := reportWithScores(70, 25, 10, 15, 20)

	result := Detect(current, previous, 5)

	if result.HasRegression {
		t.Error("an improvement is never a regression")
	}
	if result.Delta != 20 {
		t.Errorf("expected delta 20, got %g", result.Delta)
	}
}

func TestDetectPillarDeltas(t *testing.T) {
	previous := reportWithScores(70, 25, 10, 15, 20)
	current := reportWithScores(50, 15, 0, 15, 20)

	result := Detect(current, previous, 5)

	if len(result.Pillars) != 4 {
		t.Fatalf("expected 4 pillar deltas, got %d", len(result.Pillars))
	}
	want := map[string]float64{
		"robots":     -10,
		"llms_txt":   -10,
		"schema_org": 0,
		"content":    0,
	}
	for _, p := range result.Pillars {
		if p.Delta != want[p.Pillar] {
			t.Errorf("pillar %s: expected delta %g, got %g", p.Pillar, want[p.Pillar], p.Delta)
		}
	}
}

func TestDetectRoundsDelta(t *testing.T) {
	previous := reportWithScores(70.25, 25, 10, 15, 20.25)
	current := reportWithScores(70.1, 25, 10, 15, 20.1)

	result := Detect(current, previous, 5)
	if result.Delta != -0.2 && result.Delta != -0.1 {
		t.Errorf("delta should round to one decimal, got %g", result.Delta)
	}
}
