package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
)

// Preference score terms. Higher total is preferred within any candidate set.
const (
	scoreBase              = 50
	scoreBonusExpert       = 30
	scoreBonusSenior       = 20
	scoreBonusIntermediate = 10
	scoreBonusRecentHour   = 10
	scoreBonusRecentDay    = 5
)

// AgentSource provides resolved agents for a workspace, normally the
// AgentCache.
type AgentSource interface {
	Get(ctx context.Context, workspaceID uuid.UUID, forceRefresh bool) ([]*models.Agent, error)
}

// Matcher selects the best available agent for a required role using a
// strict fallback chain: exact role, expert seniority, fuzzy role, best
// available. It never reserves the chosen agent; callers needing exclusivity
// must compare-and-swap on the agent's status themselves.
type Matcher struct {
	agents AgentSource
	log    *slog.Logger
	now    func() time.Time
}

// NewMatcher returns a Matcher reading from the given agent source.
func NewMatcher(agents AgentSource, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{agents: agents, log: log, now: time.Now}
}

// normalizeRole lowercases a role label and collapses internal whitespace so
// "Backend  Developer" and "backend developer" compare equal.
func normalizeRole(role string) string {
	return strings.Join(strings.Fields(strings.ToLower(role)), " ")
}

// preferenceScore ranks an agent by seniority and recency of activity.
func (m *Matcher) preferenceScore(ag *models.Agent) int {
	score := scoreBase
	switch ag.Seniority {
	case models.SeniorityExpert:
		score += scoreBonusExpert
	case models.SenioritySenior:
		score += scoreBonusSenior
	case models.SeniorityIntermediate:
		score += scoreBonusIntermediate
	}
	if ag.LastActivity != nil {
		since := m.now().Sub(*ag.LastActivity)
		switch {
		case since <= time.Hour:
			score += scoreBonusRecentHour
		case since <= 24*time.Hour:
			score += scoreBonusRecentDay
		}
	}
	return score
}

// pickHighest returns the highest-scoring agent of a non-empty candidate
// set, preserving input order on ties.
func (m *Matcher) pickHighest(candidates []*models.Agent) *models.Agent {
	best := candidates[0]
	bestScore := m.preferenceScore(best)
	for _, ag := range candidates[1:] {
		if s := m.preferenceScore(ag); s > bestScore {
			best, bestScore = ag, s
		}
	}
	return best
}

// fuzzyRoleMatch reports whether the candidate's role is a plausible match
// for the required role: any whitespace token of the requirement appears as
// a substring of the candidate role, or both are "specialist" roles, or
// both are "manager" roles.
func fuzzyRoleMatch(requiredRole, candidateRole string) bool {
	req := strings.ToLower(requiredRole)
	cand := strings.ToLower(candidateRole)
	for _, token := range strings.Fields(req) {
		if strings.Contains(cand, token) {
			return true
		}
	}
	if strings.Contains(req, "specialist") && strings.Contains(cand, "specialist") {
		return true
	}
	if strings.Contains(req, "manager") && strings.Contains(cand, "manager") {
		return true
	}
	return false
}

// FindBestAgentForTask returns the single best agent for the required role
// in the workspace, or a MatchResult explaining why none was chosen.
// taskName and taskDescription are accepted for logging only; they do not
// influence matching. A store failure is returned as an error and must be
// treated by callers as "system unavailable", never as "no agent".
func (m *Matcher) FindBestAgentForTask(ctx context.Context, workspaceID uuid.UUID, requiredRole, taskName, taskDescription string) (*models.MatchResult, error) {
	agents, err := m.agents.Get(ctx, workspaceID, false)
	if err != nil {
		m.log.Error("agent lookup failed", "workspace_id", workspaceID, "error", err)
		return &models.MatchResult{Method: models.MatchError, Reason: "agent store unavailable"}, err
	}

	available := make([]*models.Agent, 0, len(agents))
	for _, ag := range agents {
		if ag.Available {
			available = append(available, ag)
		}
	}
	if len(available) == 0 {
		return &models.MatchResult{
			Method: models.MatchNoAgentsAvailable,
			Reason: "no agents available for task assignment in workspace",
		}, nil
	}

	wantRole := normalizeRole(requiredRole)

	var exact []*models.Agent
	for _, ag := range available {
		if normalizeRole(ag.Role) == wantRole {
			exact = append(exact, ag)
		}
	}
	if len(exact) > 0 {
		chosen := m.pickHighest(exact)
		m.log.Info("agent matched", "workspace_id", workspaceID, "agent_id", chosen.ID,
			"method", models.MatchExactRole, "required_role", requiredRole, "task_name", taskName)
		return &models.MatchResult{
			Agent:      chosen,
			Confidence: 1.0,
			Method:     models.MatchExactRole,
			Reason:     fmt.Sprintf("exact role match for %q", requiredRole),
		}, nil
	}

	// Seniority fallback only fires when the requested role is literally
	// "expert". Kept as observed in production pending clarification of
	// whether it was meant to key off a seniority filter instead.
	if wantRole == "expert" {
		for _, ag := range available {
			if ag.Seniority == models.SeniorityExpert {
				return &models.MatchResult{
					Agent:        ag,
					Confidence:   0.8,
					Method:       models.MatchSeniorityFallback,
					FallbackUsed: true,
					Reason:       "expert requested, assigned expert-seniority agent",
				}, nil
			}
		}
	}

	var fuzzy []*models.Agent
	for _, ag := range available {
		if fuzzyRoleMatch(requiredRole, ag.Role) {
			fuzzy = append(fuzzy, ag)
		}
	}
	if len(fuzzy) > 0 {
		chosen := m.pickHighest(fuzzy)
		m.log.Info("agent matched", "workspace_id", workspaceID, "agent_id", chosen.ID,
			"method", models.MatchFuzzyRole, "required_role", requiredRole, "task_name", taskName)
		return &models.MatchResult{
			Agent:        chosen,
			Confidence:   0.6,
			Method:       models.MatchFuzzyRole,
			FallbackUsed: true,
			Reason:       fmt.Sprintf("fuzzy role match: %q ~ %q", requiredRole, chosen.Role),
		}, nil
	}

	chosen := m.pickHighest(available)
	m.log.Info("agent matched", "workspace_id", workspaceID, "agent_id", chosen.ID,
		"method", models.MatchBestAvailable, "required_role", requiredRole, "task_name", taskName)
	return &models.MatchResult{
		Agent:        chosen,
		Confidence:   0.4,
		Method:       models.MatchBestAvailable,
		FallbackUsed: true,
		Reason:       fmt.Sprintf("no role match for %q, assigned best available agent", requiredRole),
	}, nil
}

// GetAvailableAgents lists available agents of a workspace for diagnostics
// and listing. roleFilter applies exact-then-fuzzy role matching; if the
// exact pass yields nothing, the fuzzy pass is used. seniorityFilter is an
// exact match with no fallback. The result is sorted by descending
// preference score.
func (m *Matcher) GetAvailableAgents(ctx context.Context, workspaceID uuid.UUID, roleFilter string, seniorityFilter *models.Seniority, refresh bool) ([]*models.Agent, error) {
	agents, err := m.agents.Get(ctx, workspaceID, refresh)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Agent, 0, len(agents))
	for _, ag := range agents {
		if ag.Available {
			out = append(out, ag)
		}
	}

	if roleFilter != "" {
		wantRole := normalizeRole(roleFilter)
		var exact []*models.Agent
		for _, ag := range out {
			if normalizeRole(ag.Role) == wantRole {
				exact = append(exact, ag)
			}
		}
		if len(exact) > 0 {
			out = exact
		} else {
			var fuzzy []*models.Agent
			for _, ag := range out {
				if fuzzyRoleMatch(roleFilter, ag.Role) {
					fuzzy = append(fuzzy, ag)
				}
			}
			out = fuzzy
		}
	}

	if seniorityFilter != nil {
		var filtered []*models.Agent
		for _, ag := range out {
			if ag.Seniority == *seniorityFilter {
				filtered = append(filtered, ag)
			}
		}
		out = filtered
	}

	sort.SliceStable(out, func(i, j int) bool {
		return m.preferenceScore(out[i]) > m.preferenceScore(out[j])
	})
	return out, nil
}
