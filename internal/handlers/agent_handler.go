package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/services"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

// storeTimeout bounds every store-touching request so a hung database
// surfaces as an error rather than a stalled handler.
const storeTimeout = 5 * time.Second

// syncTimeout is longer: a repair pass may rewrite many rows.
const syncTimeout = 30 * time.Second

// MatcherForHandler is the read side of the availability core.
type MatcherForHandler interface {
	FindBestAgentForTask(ctx context.Context, workspaceID uuid.UUID, requiredRole, taskName, taskDescription string) (*models.MatchResult, error)
	GetAvailableAgents(ctx context.Context, workspaceID uuid.UUID, roleFilter string, seniorityFilter *models.Seniority, refresh bool) ([]*models.Agent, error)
}

// RosterForHandler is the write side: single-agent and bulk status updates.
type RosterForHandler interface {
	UpdateAgentStatus(ctx context.Context, agentID uuid.UUID, newStatus status.Unified, reason *string) error
	Heartbeat(ctx context.Context, agentID uuid.UUID, newStatus *status.Unified) error
	PauseWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	ResumeWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

// SynchronizerForHandler runs a status repair pass on demand.
type SynchronizerForHandler interface {
	Synchronize(ctx context.Context, workspaceID *uuid.UUID) (*models.SyncResult, error)
}

// AgentHandler serves the /v1 availability API.
type AgentHandler struct {
	Matcher      MatcherForHandler
	Roster       RosterForHandler
	Synchronizer SynchronizerForHandler
	Validator    *services.Validator // nil disables payload validation
	Logger       *slog.Logger
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// storeErr distinguishes "not found" from "store unavailable" in responses.
func (h *AgentHandler) storeErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}
	h.Logger.Error(op, "error", err)
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "agent store unavailable"})
}

// validate checks body against the named schema when a validator is wired.
// Returns false after writing the response if the payload is rejected.
func (h *AgentHandler) validate(w http.ResponseWriter, name string, body json.RawMessage) bool {
	if h.Validator == nil {
		return true
	}
	if err := h.Validator.Validate(name, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

// --- GET /v1/workspaces/{id}/agents ---

// ListAvailableAgents returns the workspace's available agents, optionally
// filtered by role (exact then fuzzy) and seniority (exact), sorted by
// preference score. `refresh=true` bypasses the cache.
func (h *AgentHandler) ListAvailableAgents(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workspace id"})
		return
	}

	q := r.URL.Query()
	var seniorityFilter *models.Seniority
	if raw := q.Get("seniority"); raw != "" {
		s := models.ParseSeniority(raw)
		seniorityFilter = &s
	}
	refresh := q.Get("refresh") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	agents, err := h.Matcher.GetAvailableAgents(ctx, workspaceID, q.Get("role"), seniorityFilter, refresh)
	if err != nil {
		h.storeErr(w, "list available agents", err)
		return
	}
	if agents == nil {
		agents = []*models.Agent{}
	}
	writeJSON(w, http.StatusOK, agents)
}

// --- POST /v1/workspaces/{id}/match ---

type matchRequest struct {
	RequiredRole    string `json:"required_role"`
	TaskName        string `json:"task_name"`
	TaskDescription string `json:"task_description"`
}

// MatchAgent runs the matching fallback chain for the workspace. A result
// with no agent is still a 200; only store failures are errors.
func (h *AgentHandler) MatchAgent(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workspace id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !h.validate(w, services.SchemaMatchRequest, body) {
		return
	}
	var req matchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.RequiredRole == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "required_role is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	result, err := h.Matcher.FindBestAgentForTask(ctx, workspaceID, req.RequiredRole, req.TaskName, req.TaskDescription)
	if err != nil {
		h.storeErr(w, "match agent", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- POST /v1/agents/{id}/status ---

type statusUpdateRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason"`
}

// UpdateAgentStatus writes a canonical status for one agent. Synonyms are
// rejected; the API speaks unified statuses only.
func (h *AgentHandler) UpdateAgentStatus(w http.ResponseWriter, r *http.Request) {
	agentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agent id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !h.validate(w, services.SchemaStatusUpdate, body) {
		return
	}
	var req statusUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	unified, ok := status.Parse(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be a unified status value"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.Roster.UpdateAgentStatus(ctx, agentID, unified, req.Reason); err != nil {
		h.storeErr(w, "update agent status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- POST /v1/agents/{id}/heartbeat ---

type heartbeatRequest struct {
	Status *string `json:"status"`
}

// Heartbeat refreshes an agent's last_activity, optionally with a status.
func (h *AgentHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	agentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid agent id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !h.validate(w, services.SchemaHeartbeat, body) {
		return
	}
	var req heartbeatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	var unified *status.Unified
	if req.Status != nil {
		u, ok := status.Parse(*req.Status)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be a unified status value"})
			return
		}
		unified = &u
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.Roster.Heartbeat(ctx, agentID, unified); err != nil {
		h.storeErr(w, "agent heartbeat", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- POST /v1/workspaces/{id}/pause and /resume ---

func (h *AgentHandler) PauseWorkspace(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, h.Roster.PauseWorkspace)
}

func (h *AgentHandler) ResumeWorkspace(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, h.Roster.ResumeWorkspace)
}

func (h *AgentHandler) bulkStatus(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (int64, error)) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workspace id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	n, err := op(ctx, workspaceID)
	if err != nil {
		h.storeErr(w, "bulk status update", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"agents_updated": n})
}

// --- POST /v1/sync ---

// Synchronize runs a status repair pass, scoped to one workspace when the
// workspace_id query parameter is present.
func (h *AgentHandler) Synchronize(w http.ResponseWriter, r *http.Request) {
	var workspaceID *uuid.UUID
	if raw := r.URL.Query().Get("workspace_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workspace_id"})
			return
		}
		workspaceID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()

	result, err := h.Synchronizer.Synchronize(ctx, workspaceID)
	if err != nil {
		h.storeErr(w, "synchronize", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
