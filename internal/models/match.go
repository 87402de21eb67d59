package models

// MatchMethod identifies which step of the matching fallback chain produced
// a result. Absence of a suitable agent is expressed through these values,
// never through an error.
type MatchMethod string

const (
	MatchExactRole         MatchMethod = "exact_role_match"
	MatchSeniorityFallback MatchMethod = "seniority_fallback"
	MatchFuzzyRole         MatchMethod = "fuzzy_role_match"
	MatchBestAvailable     MatchMethod = "best_available"
	MatchNoSuitableAgent   MatchMethod = "no_suitable_agent"
	MatchNoAgentsAvailable MatchMethod = "no_agents_available"
	MatchError             MatchMethod = "error"
)

// MatchResult is the ephemeral outcome of a single agent match. It is
// returned to callers and never persisted.
type MatchResult struct {
	Agent        *Agent      `json:"agent,omitempty"`
	Confidence   float64     `json:"confidence"`
	Method       MatchMethod `json:"method"`
	FallbackUsed bool        `json:"fallback_used"`
	Reason       string      `json:"reason"`
}
