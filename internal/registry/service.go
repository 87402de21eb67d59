// Package registry provisions agents into workspaces. It sits beside the
// availability core, which only reads agents and repairs their statuses but
// never creates or deletes them.
package registry

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

// AgentStore is the store subset that provisioning needs.
type AgentStore interface {
	Create(ctx context.Context, ag *models.Agent) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error)
}

type Service interface {
	CreateAgent(ctx context.Context, workspaceID uuid.UUID, name, role, seniority string) (*models.Agent, error)
	ListAgents(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error)
}

type service struct {
	store AgentStore
}

func NewService(store AgentStore) *service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) CreateAgent(ctx context.Context, workspaceID uuid.UUID, name, role, seniority string) (*models.Agent, error) {
	ag := &models.Agent{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        strings.TrimSpace(name),
		Role:        strings.TrimSpace(role),
		Seniority:   models.ParseSeniority(seniority),
		Status:      status.Available.String(),
	}
	if err := s.store.Create(ctx, ag); err != nil {
		return nil, err
	}
	return ag, nil
}

func (s *service) ListAgents(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error) {
	return s.store.ListByWorkspace(ctx, workspaceID)
}
