package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

const (
	reasonNormalizationSync = "Status normalization sync"
	reasonStaleRecovery     = "Stale activity auto-recovery"
)

// SyncStore is the store interface the synchronizer needs.
type SyncStore interface {
	ListAll(ctx context.Context) ([]*models.Agent, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error)
	UpdateStatus(ctx context.Context, agentID uuid.UUID, newStatus string, reason *string) (uuid.UUID, error)
}

// Synchronizer batch-repairs agent status inconsistencies at the store:
// non-canonical status strings are rewritten to their unified value, and
// stale active/busy agents are demoted to available. A single agent's write
// failure is recorded and the batch continues; the pass is idempotent.
type Synchronizer struct {
	store    SyncStore
	cache    Invalidator
	resolver *status.Resolver
	log      *slog.Logger
	now      func() time.Time
}

func NewSynchronizer(store SyncStore, cache Invalidator, resolver *status.Resolver, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{store: store, cache: cache, resolver: resolver, log: log, now: time.Now}
}

// Synchronize repairs all agents, or only one workspace's agents when
// workspaceID is non-nil. Only a total inability to list agents aborts the
// call; per-agent write failures land in SyncResult.Errors.
func (s *Synchronizer) Synchronize(ctx context.Context, workspaceID *uuid.UUID) (*models.SyncResult, error) {
	var agents []*models.Agent
	var err error
	if workspaceID != nil {
		agents, err = s.store.ListByWorkspace(ctx, *workspaceID)
	} else {
		agents, err = s.store.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list agents for sync: %w", err)
	}

	result := &models.SyncResult{}
	now := s.now()

	for _, ag := range agents {
		current := s.resolver.Normalize(ag.Status)

		if current.String() != ag.Status {
			result.InconsistenciesFound++
			reason := reasonNormalizationSync
			ws, err := s.store.UpdateStatus(ctx, ag.ID, current.String(), &reason)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("agent %s: normalize %q: %v", ag.ID, ag.Status, err))
			} else {
				result.AgentsUpdated++
				result.InconsistenciesFixed++
				s.cache.Invalidate(ws)
			}
		}

		// Staleness uses last_activity, falling back to updated_at for
		// rows that never recorded activity.
		ref := ag.LastActivity
		if ref == nil && !ag.UpdatedAt.IsZero() {
			ref = &ag.UpdatedAt
		}
		stale := s.resolver.Stale(ref, now)
		if demoted := status.DemoteIfStale(current, stale); demoted != current {
			reason := reasonStaleRecovery
			ws, err := s.store.UpdateStatus(ctx, ag.ID, demoted.String(), &reason)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("agent %s: demote stale %s: %v", ag.ID, current, err))
			} else {
				result.AgentsUpdated++
				s.cache.Invalidate(ws)
				s.log.Info("stale agent demoted", "agent_id", ag.ID, "from", current, "to", demoted)
			}
		}
	}

	if result.InconsistenciesFound > 0 || len(result.Errors) > 0 {
		s.log.Info("status synchronization finished",
			"agents_scanned", len(agents),
			"agents_updated", result.AgentsUpdated,
			"inconsistencies_found", result.InconsistenciesFound,
			"inconsistencies_fixed", result.InconsistenciesFixed,
			"errors", len(result.Errors))
	}
	return result, nil
}
