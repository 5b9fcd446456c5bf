package audit

import (
	"testing"

	"github.com/contextlint/contextlint/internal/types"
)

func robotsWithBlocked() types.RobotsReport {
	return types.RobotsReport{
		Found: true,
		Bots: []types.BotAccess{
			{Bot: "GPTBot", Allowed: false},
			{Bot: "ClaudeBot", Allowed: true},
		},
	}
}

func robotsAllOpen() types.RobotsReport {
	return types.RobotsReport{
		Found: true,
		Bots:  []types.BotAccess{{Bot: "GPTBot", Allowed: true}},
	}
}

func TestExitCodeOK(t *testing.T) {
	if code := ExitCode(80, robotsAllOpen(), 70, false); code != ExitOK {
		t.Errorf("expected 0, got %d", code)
	}
}

func TestExitCodeFailUnder(t *testing.T) {
	if code := ExitCode(50, robotsAllOpen(), 70, false); code != ExitFailed {
		t.Errorf("expected 1, got %d", code)
	}
}

func TestExitCodeFailUnderDisabled(t *testing.T) {
	if code := ExitCode(0, robotsAllOpen(), -1, false); code != ExitOK {
		t.Errorf("negative fail-under disables the gate, got %d", code)
	}
}

func TestExitCodeBlockedBots(t *testing.T) {
	if code := ExitCode(90, robotsWithBlocked(), -1, true); code != ExitBlockedBots {
		t.Errorf("expected 2, got %d", code)
	}
}

func TestExitCodeBlockedBotsWinsOverFailUnder(t *testing.T) {
	if code := ExitCode(50, robotsWithBlocked(), 70, true); code != ExitBlockedBots {
		t.Errorf("when both gates trip, 2 wins; got %d", code)
	}
}

func TestExitCodeBlockedBotsFlagOff(t *testing.T) {
	if code := ExitCode(90, robotsWithBlocked(), -1, false); code != ExitOK {
		t.Errorf("blocked bots without the flag is fine, got %d", code)
	}
}

func TestExitCodeNoRobotsIsNotBlocked(t *testing.T) {
	if code := ExitCode(90, types.RobotsReport{}, -1, true); code != ExitOK {
		t.Errorf("missing robots.txt blocks nothing, got %d", code)
	}
}
