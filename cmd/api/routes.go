package main

import (
	"log/slog"
	"net/http"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/handlers"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/middleware"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/services"
)

// RegisterV1Routes adds the /v1/ availability API endpoints to the mux.
// Middleware chain: TokenAuth -> handler.
func RegisterV1Routes(
	mux *http.ServeMux,
	matcher *services.Matcher,
	roster *services.Roster,
	synchronizer *services.Synchronizer,
	validator *services.Validator,
	authSvc middleware.TokenValidator,
	logger *slog.Logger,
) {
	h := &handlers.AgentHandler{
		Matcher:      matcher,
		Roster:       roster,
		Synchronizer: synchronizer,
		Validator:    validator,
		Logger:       logger,
	}

	auth := middleware.TokenAuth(authSvc)

	mux.Handle("GET /v1/workspaces/{id}/agents", auth(http.HandlerFunc(h.ListAvailableAgents)))
	mux.Handle("POST /v1/workspaces/{id}/match", auth(http.HandlerFunc(h.MatchAgent)))
	mux.Handle("POST /v1/workspaces/{id}/pause", auth(http.HandlerFunc(h.PauseWorkspace)))
	mux.Handle("POST /v1/workspaces/{id}/resume", auth(http.HandlerFunc(h.ResumeWorkspace)))
	mux.Handle("POST /v1/agents/{id}/status", auth(http.HandlerFunc(h.UpdateAgentStatus)))
	mux.Handle("POST /v1/agents/{id}/heartbeat", auth(http.HandlerFunc(h.Heartbeat)))
	mux.Handle("POST /v1/sync", auth(http.HandlerFunc(h.Synchronize)))
}
