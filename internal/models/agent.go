package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

// Seniority is the ordered agent seniority scale.
type Seniority string

const (
	SeniorityJunior       Seniority = "junior"
	SeniorityIntermediate Seniority = "intermediate"
	SenioritySenior       Seniority = "senior"
	SeniorityExpert       Seniority = "expert"
)

// ParseSeniority maps a raw seniority string to the scale, case-insensitive.
// Absent or unrecognized values default to junior.
func ParseSeniority(raw string) Seniority {
	switch Seniority(strings.ToLower(strings.TrimSpace(raw))) {
	case SeniorityIntermediate:
		return SeniorityIntermediate
	case SenioritySenior:
		return SenioritySenior
	case SeniorityExpert:
		return SeniorityExpert
	default:
		return SeniorityJunior
	}
}

// Rank orders seniorities for scoring: junior 0 through expert 3.
func (s Seniority) Rank() int {
	switch s {
	case SeniorityExpert:
		return 3
	case SenioritySenior:
		return 2
	case SeniorityIntermediate:
		return 1
	default:
		return 0
	}
}

// Agent is one assignable worker unit, scoped to exactly one workspace.
// Status holds the raw string as stored; UnifiedStatus and Available are
// derived at the store boundary and never persisted.
type Agent struct {
	ID           uuid.UUID  `json:"id"`
	WorkspaceID  uuid.UUID  `json:"workspace_id"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Seniority    Seniority  `json:"seniority"`
	Status       string     `json:"status"`
	StatusReason *string    `json:"status_reason,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	UnifiedStatus status.Unified `json:"unified_status"`
	Available     bool           `json:"is_available_for_tasks"`
}
