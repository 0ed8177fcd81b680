package domain

// InterceptionThreshold is the score at or above which a download is paused
// pending an explicit user decision.
const InterceptionThreshold = 50

// RiskAssessment is the outcome of evaluating one download against the rule
// set. Score is a signed sum of rule contributions with no floor or ceiling;
// mitigations can drive it below the sum of penalties. Reasons holds one
// human-readable string per triggered rule, in evaluation order.
type RiskAssessment struct {
	Score   int
	Reasons []string
}

// Intercept reports whether the score crosses the interception threshold.
func (a RiskAssessment) Intercept() bool {
	return a.Score >= InterceptionThreshold
}
