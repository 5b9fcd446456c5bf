package audit

import "github.com/contextlint/contextlint/internal/types"

// Exit codes the CLI maps finished audits onto.
const (
	ExitOK          = 0
	ExitFailed      = 1 // score below fail-under, or fatal audit error
	ExitBlockedBots = 2 // --fail-on-blocked-bots set and at least one bot blocked
)

// ExitCode decides the process exit code for a finished audit.
// failUnder < 0 disables the score gate. When both the score gate and the
// blocked-bots gate trip, the blocked-bots code wins.
func ExitCode(overall float64, robots types.RobotsReport, failUnder float64, failOnBlockedBots bool) int {
	if failOnBlockedBots && anyBlocked(robots) {
		return ExitBlockedBots
	}
	if failUnder >= 0 && overall < failUnder {
		return ExitFailed
	}
	return ExitOK
}

func anyBlocked(robots types.RobotsReport) bool {
	if !robots.Found {
		return false
	}
	for _, b := range robots.Bots {
		if !b.Allowed {
			return true
		}
	}
	return false
}
