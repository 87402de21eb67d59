package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
)

// AgentRepo is the persistent agent store. All row-to-struct conversion
// happens here; nothing outside this package handles raw rows.
type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

const agentColumns = `id, workspace_id, name, role, seniority, status, status_reason, last_activity, created_at, updated_at`

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var ag models.Agent
	var seniority string
	if err := row.Scan(&ag.ID, &ag.WorkspaceID, &ag.Name, &ag.Role, &seniority, &ag.Status, &ag.StatusReason, &ag.LastActivity, &ag.CreatedAt, &ag.UpdatedAt); err != nil {
		return nil, err
	}
	ag.Seniority = models.ParseSeniority(seniority)
	return &ag, nil
}

// Create inserts a new agent row. Used by provisioning only; the
// availability core never creates agents.
func (r *AgentRepo) Create(ctx context.Context, ag *models.Agent) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO agents (id, workspace_id, name, role, seniority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, ag.ID, ag.WorkspaceID, ag.Name, ag.Role, string(ag.Seniority), ag.Status).Scan(&ag.CreatedAt, &ag.UpdatedAt)
}

func (r *AgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM agents WHERE id = $1
	`, id))
}

// ListByWorkspace returns all agents belonging to the given workspace,
// regardless of status. Availability filtering happens above the store.
func (r *AgentRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+agentColumns+` FROM agents
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

// ListAll returns every agent across all workspaces, for batch
// synchronization.
func (r *AgentRepo) ListAll(ctx context.Context) ([]*models.Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+agentColumns+` FROM agents
		ORDER BY workspace_id, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

func collectAgents(rows pgx.Rows) ([]*models.Agent, error) {
	var list []*models.Agent
	for rows.Next() {
		ag, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ag)
	}
	return list, rows.Err()
}

// UpdateStatus atomically writes a new raw status (and optional reason) for
// one agent and refreshes last_activity. It returns the agent's workspace so
// the caller can invalidate the right cache entry.
func (r *AgentRepo) UpdateStatus(ctx context.Context, agentID uuid.UUID, newStatus string, reason *string) (uuid.UUID, error) {
	var workspaceID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		UPDATE agents
		SET status = $2, status_reason = $3, last_activity = now(), updated_at = now()
		WHERE id = $1
		RETURNING workspace_id
	`, agentID, newStatus, reason).Scan(&workspaceID)
	if err != nil {
		return uuid.Nil, err
	}
	return workspaceID, nil
}

// Heartbeat refreshes last_activity and optionally the status for one agent,
// returning its workspace for cache invalidation.
func (r *AgentRepo) Heartbeat(ctx context.Context, agentID uuid.UUID, newStatus *string) (uuid.UUID, error) {
	var workspaceID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		UPDATE agents
		SET status = COALESCE($2, status), last_activity = now(), updated_at = now()
		WHERE id = $1
		RETURNING workspace_id
	`, agentID, newStatus).Scan(&workspaceID)
	if err != nil {
		return uuid.Nil, err
	}
	return workspaceID, nil
}

// UpdateStatusByWorkspace writes the same status to every agent in a
// workspace and returns the number of rows changed. Used by the pause and
// resume bulk operations.
func (r *AgentRepo) UpdateStatusByWorkspace(ctx context.Context, workspaceID uuid.UUID, newStatus string, reason *string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE agents
		SET status = $2, status_reason = $3, updated_at = now()
		WHERE workspace_id = $1
	`, workspaceID, newStatus, reason)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
