package execution

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
)

// StatusSyncJobArgs requests one status synchronization pass. A nil
// WorkspaceID means all workspaces; the periodic job always runs the full
// scan.
type StatusSyncJobArgs struct {
	WorkspaceID *uuid.UUID `json:"workspace_id,omitempty"`
}

func (StatusSyncJobArgs) Kind() string { return "status_sync" }

// Synchronizer is the contract the worker needs from the services layer.
type Synchronizer interface {
	Synchronize(ctx context.Context, workspaceID *uuid.UUID) (*models.SyncResult, error)
}

// StatusSyncWorker runs the synchronizer as a River job, so status repair
// happens on a schedule without blocking the serving path.
type StatusSyncWorker struct {
	river.WorkerDefaults[StatusSyncJobArgs]
	sync Synchronizer
	log  *slog.Logger
}

func NewStatusSyncWorker(sync Synchronizer, log *slog.Logger) *StatusSyncWorker {
	if log == nil {
		log = slog.Default()
	}
	return &StatusSyncWorker{sync: sync, log: log}
}

func (w *StatusSyncWorker) Work(ctx context.Context, job *river.Job[StatusSyncJobArgs]) error {
	result, err := w.sync.Synchronize(ctx, job.Args.WorkspaceID)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		w.log.Warn("status sync finished with per-agent failures",
			"agents_updated", result.AgentsUpdated,
			"inconsistencies_fixed", result.InconsistenciesFixed,
			"errors", result.Errors)
		return nil
	}
	w.log.Info("status sync completed",
		"agents_updated", result.AgentsUpdated,
		"inconsistencies_found", result.InconsistenciesFound,
		"inconsistencies_fixed", result.InconsistenciesFixed)
	return nil
}
