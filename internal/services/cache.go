package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/models"
	"github.com/potentialgenie/ai-team-orchestrator-sub007/internal/status"
)

// AgentLister is the minimal store interface required by the cache.
type AgentLister interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Agent, error)
}

type cacheEntry struct {
	agents    []*models.Agent
	fetchedAt time.Time
}

// AgentCache is a per-workspace, TTL-bounded cache of resolved agent
// records. It is best-effort: concurrent cold gets for the same workspace
// may each fetch from the store, which is acceptable; no correctness
// invariant depends on avoiding duplicate fetches.
type AgentCache struct {
	store    AgentLister
	resolver *status.Resolver
	ttl      time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]cacheEntry

	now func() time.Time
}

// NewAgentCache returns a cache with the given entry TTL.
func NewAgentCache(store AgentLister, resolver *status.Resolver, ttl time.Duration) *AgentCache {
	return &AgentCache{
		store:    store,
		resolver: resolver,
		ttl:      ttl,
		entries:  make(map[uuid.UUID]cacheEntry),
		now:      time.Now,
	}
}

// Get returns the resolved agents of a workspace, serving a non-expired
// cache entry unless forceRefresh is set. On a miss it fetches raw rows,
// resolves each through the status resolver, and repopulates the entry.
// Store failures propagate; they are never masked as an empty agent list.
func (c *AgentCache) Get(ctx context.Context, workspaceID uuid.UUID, forceRefresh bool) ([]*models.Agent, error) {
	if !forceRefresh {
		c.mu.Lock()
		entry, ok := c.entries[workspaceID]
		valid := ok && c.now().Sub(entry.fetchedAt) < c.ttl
		if valid {
			out := copyAgents(entry.agents)
			c.mu.Unlock()
			return out, nil
		}
		c.mu.Unlock()
	}

	// Fetch outside the lock so a slow store does not serialize all
	// workspaces behind one refresh.
	raw, err := c.store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	resolved := make([]*models.Agent, 0, len(raw))
	for _, ag := range raw {
		r := *ag
		r.UnifiedStatus = c.resolver.Normalize(r.Status)
		r.Available = status.IsTaskAvailable(r.UnifiedStatus)
		resolved = append(resolved, &r)
	}

	c.mu.Lock()
	c.entries[workspaceID] = cacheEntry{agents: resolved, fetchedAt: c.now()}
	c.mu.Unlock()

	return copyAgents(resolved), nil
}

// Invalidate drops any cached entry for the workspace. Every mutation path
// must call this before the mutation is considered complete.
func (c *AgentCache) Invalidate(workspaceID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, workspaceID)
	c.mu.Unlock()
}

// copyAgents returns fresh Agent values so callers cannot mutate cached
// state through the returned slice.
func copyAgents(in []*models.Agent) []*models.Agent {
	out := make([]*models.Agent, len(in))
	for i, ag := range in {
		cp := *ag
		out[i] = &cp
	}
	return out
}
