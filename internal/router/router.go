package router

import (
	"net/http"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/auth"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/registry"
)

// New returns an http.Handler that serves the operator/admin API under
// /api/v1: auth and agent provisioning.
func New(authHandler *auth.Handler, registryHandler *registry.Handler) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"
	mux.HandleFunc(base+"/auth/register", authHandler.Register)
	mux.HandleFunc(base+"/auth/login", authHandler.Login)
	mux.HandleFunc(base+"/agents", agentsHandler(registryHandler))
	return mux
}

func agentsHandler(h *registry.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateAgent(w, r)
		case http.MethodGet:
			h.ListAgents(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
