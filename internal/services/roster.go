package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

// AgentWriter is the minimal store interface for status mutations. Each
// write is atomic per-row and returns the agent's workspace so the right
// cache entry can be invalidated.
type AgentWriter interface {
	UpdateStatus(ctx context.Context, agentID uuid.UUID, newStatus string, reason *string) (uuid.UUID, error)
	Heartbeat(ctx context.Context, agentID uuid.UUID, newStatus *string) (uuid.UUID, error)
	UpdateStatusByWorkspace(ctx context.Context, workspaceID uuid.UUID, newStatus string, reason *string) (int64, error)
}

// Invalidator drops cached agent state for a workspace.
type Invalidator interface {
	Invalidate(workspaceID uuid.UUID)
}

// Roster is the write side of the availability core: status updates,
// heartbeats, and bulk pause/resume. Every successful write invalidates the
// affected workspace cache before returning, so a subsequent match reflects
// the change.
type Roster struct {
	store AgentWriter
	cache Invalidator
	log   *slog.Logger
}

func NewRoster(store AgentWriter, cache Invalidator, log *slog.Logger) *Roster {
	if log == nil {
		log = slog.Default()
	}
	return &Roster{store: store, cache: cache, log: log}
}

// UpdateAgentStatus writes a canonical status for one agent. Only unified
// statuses are accepted here; legacy synonyms are repaired by the
// synchronizer, not introduced through this path.
func (r *Roster) UpdateAgentStatus(ctx context.Context, agentID uuid.UUID, newStatus status.Unified, reason *string) error {
	workspaceID, err := r.store.UpdateStatus(ctx, agentID, newStatus.String(), reason)
	if err != nil {
		r.log.Error("agent status update failed", "agent_id", agentID, "status", newStatus, "error", err)
		return fmt.Errorf("update agent %s status: %w", agentID, err)
	}
	r.cache.Invalidate(workspaceID)
	r.log.Info("agent status updated", "agent_id", agentID, "workspace_id", workspaceID, "status", newStatus)
	return nil
}

// Heartbeat refreshes an agent's last_activity, optionally writing a new
// canonical status in the same update.
func (r *Roster) Heartbeat(ctx context.Context, agentID uuid.UUID, newStatus *status.Unified) error {
	var raw *string
	if newStatus != nil {
		s := newStatus.String()
		raw = &s
	}
	workspaceID, err := r.store.Heartbeat(ctx, agentID, raw)
	if err != nil {
		r.log.Error("agent heartbeat failed", "agent_id", agentID, "error", err)
		return fmt.Errorf("heartbeat agent %s: %w", agentID, err)
	}
	r.cache.Invalidate(workspaceID)
	return nil
}

// PauseWorkspace marks every agent in the workspace inactive. Returns the
// number of agents affected.
func (r *Roster) PauseWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	reason := "Workspace paused by operator"
	n, err := r.store.UpdateStatusByWorkspace(ctx, workspaceID, status.Inactive.String(), &reason)
	if err != nil {
		return 0, fmt.Errorf("pause workspace %s: %w", workspaceID, err)
	}
	r.cache.Invalidate(workspaceID)
	r.log.Info("workspace paused", "workspace_id", workspaceID, "agents", n)
	return n, nil
}

// ResumeWorkspace marks every agent in the workspace available again.
func (r *Roster) ResumeWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	reason := "Workspace resumed by operator"
	n, err := r.store.UpdateStatusByWorkspace(ctx, workspaceID, status.Available.String(), &reason)
	if err != nil {
		return 0, fmt.Errorf("resume workspace %s: %w", workspaceID, err)
	}
	r.cache.Invalidate(workspaceID)
	r.log.Info("workspace resumed", "workspace_id", workspaceID, "agents", n)
	return n, nil
}
