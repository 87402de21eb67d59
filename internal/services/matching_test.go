package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
)

func newTestMatcher(store *mockAgentStore) *Matcher {
	cache := NewAgentCache(store, testStatusResolver(), time.Minute)
	return NewMatcher(cache, discardLogger())
}

// ---------------------------------------------------------------------------
// 1. Exact role match wins with confidence 1.0
// ---------------------------------------------------------------------------

func TestMatchExactRole(t *testing.T) {
	ws := uuid.New()
	backend := makeAgent(ws, "Backend Developer", models.SenioritySenior, "available", nil)
	frontend := makeAgent(ws, "Frontend Developer", models.SeniorityJunior, "busy", nil)
	store := &mockAgentStore{agents: []*models.Agent{backend, frontend}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Backend Developer", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchExactRole {
		t.Fatalf("expected exact_role_match, got %q (%s)", res.Method, res.Reason)
	}
	if res.Agent == nil || res.Agent.ID != backend.ID {
		t.Fatal("expected the backend developer")
	}
	if res.Confidence != 1.0 || res.FallbackUsed {
		t.Errorf("exact match must have confidence 1.0 and no fallback, got %v/%v", res.Confidence, res.FallbackUsed)
	}
}

// ---------------------------------------------------------------------------
// 2. Fuzzy token match: "Backend Specialist" finds "Backend Developer"
// ---------------------------------------------------------------------------

func TestMatchFuzzyToken(t *testing.T) {
	ws := uuid.New()
	backend := makeAgent(ws, "Backend Developer", models.SenioritySenior, "available", nil)
	store := &mockAgentStore{agents: []*models.Agent{backend}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Backend Specialist", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchFuzzyRole {
		t.Fatalf("expected fuzzy_role_match, got %q", res.Method)
	}
	if res.Agent == nil || res.Agent.ID != backend.ID {
		t.Fatal("expected the backend developer via the token rule")
	}
	if res.Confidence != 0.6 || !res.FallbackUsed {
		t.Errorf("fuzzy match must have confidence 0.6 with fallback, got %v/%v", res.Confidence, res.FallbackUsed)
	}
}

// ---------------------------------------------------------------------------
// 3. Fuzzy keyword rules: specialist/specialist and manager/manager pairs
// ---------------------------------------------------------------------------

func TestMatchFuzzyKeywords(t *testing.T) {
	ws := uuid.New()
	seo := makeAgent(ws, "SEO Specialist", models.SeniorityIntermediate, "available", nil)
	store := &mockAgentStore{agents: []*models.Agent{seo}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Growth Specialist", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchFuzzyRole || res.Agent == nil || res.Agent.ID != seo.ID {
		t.Fatalf("specialist/specialist pair must fuzzy-match, got %q", res.Method)
	}

	pm := makeAgent(ws, "ProjectManager", models.SenioritySenior, "available", nil)
	store2 := &mockAgentStore{agents: []*models.Agent{pm}}
	matcher2 := newTestMatcher(store2)

	res2, err := matcher2.FindBestAgentForTask(context.Background(), ws, "Account Manager", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res2.Method != models.MatchFuzzyRole || res2.Agent == nil || res2.Agent.ID != pm.ID {
		t.Fatalf("manager/manager pair must fuzzy-match, got %q", res2.Method)
	}
}

// ---------------------------------------------------------------------------
// 4. Empty workspace and fully-busy workspace -> no_agents_available
// ---------------------------------------------------------------------------

func TestMatchNoAgentsAvailable(t *testing.T) {
	ws := uuid.New()
	store := &mockAgentStore{}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Anything", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchNoAgentsAvailable || res.Agent != nil || res.Confidence != 0.0 {
		t.Fatalf("empty workspace must yield no_agents_available, got %q", res.Method)
	}

	busyWs := uuid.New()
	busyStore := &mockAgentStore{agents: []*models.Agent{
		makeAgent(busyWs, "Backend Developer", models.SenioritySenior, "busy", nil),
		makeAgent(busyWs, "Frontend Developer", models.SeniorityJunior, "terminated", nil),
	}}
	busyMatcher := newTestMatcher(busyStore)

	res2, err := busyMatcher.FindBestAgentForTask(context.Background(), busyWs, "Backend Developer", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res2.Method != models.MatchNoAgentsAvailable {
		t.Fatalf("all-busy workspace must yield no_agents_available, got %q", res2.Method)
	}
}

// ---------------------------------------------------------------------------
// 5. Fallback ordering: fuzzy must fire before best_available
// ---------------------------------------------------------------------------

func TestMatchFallbackOrdering(t *testing.T) {
	ws := uuid.New()
	// The copywriter would win best_available on seniority, but the fuzzy
	// rule must pick the backend developer first.
	backend := makeAgent(ws, "Backend Developer", models.SeniorityJunior, "available", nil)
	copywriter := makeAgent(ws, "Copywriter", models.SeniorityExpert, "available", nil)
	store := &mockAgentStore{agents: []*models.Agent{backend, copywriter}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Backend Engineer", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchFuzzyRole {
		t.Fatalf("fuzzy must take precedence over best_available, got %q", res.Method)
	}
	if res.Agent == nil || res.Agent.ID != backend.ID {
		t.Fatal("expected the fuzzy-matched backend developer")
	}
}

// ---------------------------------------------------------------------------
// 6. Best available: nothing matches the role at all
// ---------------------------------------------------------------------------

func TestMatchBestAvailable(t *testing.T) {
	ws := uuid.New()
	junior := makeAgent(ws, "Copywriter", models.SeniorityJunior, "available", nil)
	senior := makeAgent(ws, "Designer", models.SenioritySenior, "available", nil)
	store := &mockAgentStore{agents: []*models.Agent{junior, senior}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Astrophysicist", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchBestAvailable {
		t.Fatalf("expected best_available, got %q", res.Method)
	}
	if res.Agent == nil || res.Agent.ID != senior.ID {
		t.Fatal("best_available must pick the highest preference score (the senior)")
	}
	if res.Confidence != 0.4 || !res.FallbackUsed {
		t.Errorf("best_available must have confidence 0.4 with fallback, got %v/%v", res.Confidence, res.FallbackUsed)
	}
}

// ---------------------------------------------------------------------------
// 7. Seniority fallback fires only for the literal role "expert"
// ---------------------------------------------------------------------------

func TestMatchExpertLiteralFallback(t *testing.T) {
	ws := uuid.New()
	expert := makeAgent(ws, "Data Scientist", models.SeniorityExpert, "available", nil)
	junior := makeAgent(ws, "Copywriter", models.SeniorityJunior, "available", nil)
	store := &mockAgentStore{agents: []*models.Agent{junior, expert}}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Expert", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res.Method != models.MatchSeniorityFallback {
		t.Fatalf("role \"expert\" must trigger the seniority fallback, got %q", res.Method)
	}
	if res.Agent == nil || res.Agent.ID != expert.ID {
		t.Fatal("expected the expert-seniority agent")
	}
	if res.Confidence != 0.8 || !res.FallbackUsed {
		t.Errorf("seniority fallback must have confidence 0.8 with fallback, got %v/%v", res.Confidence, res.FallbackUsed)
	}

	// Any other role containing no expert agents falls through normally.
	res2, err := matcher.FindBestAgentForTask(context.Background(), ws, "Senior Copywriter", "", "")
	if err != nil {
		t.Fatalf("FindBestAgentForTask: %v", err)
	}
	if res2.Method == models.MatchSeniorityFallback {
		t.Error("seniority fallback must not fire for roles other than the literal \"expert\"")
	}
}

// ---------------------------------------------------------------------------
// 8. Preference score monotonicity: seniority and recency
// ---------------------------------------------------------------------------

func TestPreferenceScoreMonotonicity(t *testing.T) {
	ws := uuid.New()
	matcher := newTestMatcher(&mockAgentStore{})
	now := time.Now()
	matcher.now = func() time.Time { return now }

	order := []models.Seniority{
		models.SeniorityJunior, models.SeniorityIntermediate, models.SenioritySenior, models.SeniorityExpert,
	}
	prev := -1
	for _, s := range order {
		ag := makeAgent(ws, "Backend Developer", s, "available", nil)
		score := matcher.preferenceScore(ag)
		if score <= prev {
			t.Errorf("seniority %q score %d not strictly greater than previous %d", s, score, prev)
		}
		prev = score
	}

	stale := makeAgent(ws, "Backend Developer", models.SeniorityJunior, "available", timePtr(now.Add(-48*time.Hour)))
	daily := makeAgent(ws, "Backend Developer", models.SeniorityJunior, "available", timePtr(now.Add(-2*time.Hour)))
	fresh := makeAgent(ws, "Backend Developer", models.SeniorityJunior, "available", timePtr(now.Add(-5*time.Minute)))
	if !(matcher.preferenceScore(fresh) > matcher.preferenceScore(daily) &&
		matcher.preferenceScore(daily) > matcher.preferenceScore(stale)) {
		t.Error("recency bonus must be strictly increasing with fresher activity")
	}
}

// ---------------------------------------------------------------------------
// 9. Store failure surfaces as an error, not as "no agents"
// ---------------------------------------------------------------------------

func TestMatchStoreError(t *testing.T) {
	ws := uuid.New()
	store := &mockAgentStore{listErr: errors.New("connection refused")}
	matcher := newTestMatcher(store)

	res, err := matcher.FindBestAgentForTask(context.Background(), ws, "Backend Developer", "", "")
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
	if res == nil || res.Method != models.MatchError {
		t.Fatal("error result must carry the error method, never no_agents_available")
	}
}

// ---------------------------------------------------------------------------
// 10. GetAvailableAgents: filtering and ordering
// ---------------------------------------------------------------------------

func TestGetAvailableAgents(t *testing.T) {
	ws := uuid.New()
	juniorBackend := makeAgent(ws, "Backend Developer", models.SeniorityJunior, "available", nil)
	seniorBackend := makeAgent(ws, "Backend Developer", models.SenioritySenior, "active", nil)
	designer := makeAgent(ws, "Designer", models.SeniorityExpert, "available", nil)
	offline := makeAgent(ws, "Backend Developer", models.SeniorityExpert, "offline", nil)
	store := &mockAgentStore{agents: []*models.Agent{juniorBackend, seniorBackend, designer, offline}}
	matcher := newTestMatcher(store)

	// No filters: all available agents, sorted by preference score.
	all, err := matcher.GetAvailableAgents(context.Background(), ws, "", nil, false)
	if err != nil {
		t.Fatalf("GetAvailableAgents: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 available agents, got %d", len(all))
	}
	if all[0].ID != designer.ID {
		t.Error("expert designer must sort first")
	}
	for _, ag := range all {
		if ag.ID == offline.ID {
			t.Fatal("offline agent must not be listed")
		}
	}

	// Exact role filter.
	backends, err := matcher.GetAvailableAgents(context.Background(), ws, "backend developer", nil, false)
	if err != nil {
		t.Fatalf("GetAvailableAgents: %v", err)
	}
	if len(backends) != 2 || backends[0].ID != seniorBackend.ID {
		t.Fatalf("expected both backends with the senior first, got %d", len(backends))
	}

	// Role filter falls back to fuzzy when no exact match exists.
	fuzzy, err := matcher.GetAvailableAgents(context.Background(), ws, "Backend Engineer", nil, false)
	if err != nil {
		t.Fatalf("GetAvailableAgents: %v", err)
	}
	if len(fuzzy) != 2 {
		t.Fatalf("expected fuzzy backends, got %d", len(fuzzy))
	}

	// Seniority filter is exact, no fallback.
	snr := models.SenioritySenior
	seniors, err := matcher.GetAvailableAgents(context.Background(), ws, "", &snr, false)
	if err != nil {
		t.Fatalf("GetAvailableAgents: %v", err)
	}
	if len(seniors) != 1 || seniors[0].ID != seniorBackend.ID {
		t.Fatalf("expected only the senior backend, got %d", len(seniors))
	}
}
