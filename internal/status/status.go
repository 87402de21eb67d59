// Package status defines the unified agent status vocabulary and the
// resolver that normalizes raw stored status strings into it.
package status

import (
	"log/slog"
	"strings"
	"time"
)

// Unified is the closed set of canonical agent statuses. Every raw status
// string stored in the agents table maps to exactly one Unified value.
type Unified string

const (
	Available  Unified = "available"
	Active     Unified = "active"
	Busy       Unified = "busy"
	Inactive   Unified = "inactive"
	Failed     Unified = "failed"
	Terminated Unified = "terminated"
)

func (u Unified) String() string { return string(u) }

// All lists the canonical values, for validation and round-trip checks.
var All = []Unified{Available, Active, Busy, Inactive, Failed, Terminated}

// legacyStatuses maps historically observed status synonyms to their
// canonical value. Canonical values map to themselves so they are fixed
// points of normalization. Kept as a flat table rather than conditionals so
// new synonyms are one-line additions.
var legacyStatuses = map[string]Unified{
	"available": Available,
	"ready":     Available,
	"idle":      Available,
	"online":    Available,

	"active":      Active,
	"working":     Active,
	"running":     Active,
	"in_progress": Active,
	"processing":  Active,

	"busy":     Busy,
	"assigned": Busy,
	"occupied": Busy,

	"inactive":     Inactive,
	"offline":      Inactive,
	"paused":       Inactive,
	"disabled":     Inactive,
	"created":      Inactive,
	"initializing": Inactive,

	"failed":  Failed,
	"error":   Failed,
	"errored": Failed,
	"crashed": Failed,

	"terminated": Terminated,
	"killed":     Terminated,
	"deleted":    Terminated,
	"retired":    Terminated,
}

// Parse returns the Unified value for raw only if raw is already one of the
// canonical values (after lowercasing and trimming). Callers that accept
// status input over the API use this to reject synonyms and junk.
func Parse(raw string) (Unified, bool) {
	u := Unified(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range All {
		if u == v {
			return v, true
		}
	}
	return "", false
}

// IsTaskAvailable reports whether an agent with this status can take task
// assignments. This predicate is the single source of truth for the
// availability set; no other code may re-derive it.
func IsTaskAvailable(u Unified) bool {
	return u == Available || u == Active
}

// IsStale reports whether lastActivity is nil or older than timeout as of now.
func IsStale(lastActivity *time.Time, now time.Time, timeout time.Duration) bool {
	if lastActivity == nil {
		return true
	}
	return now.Sub(*lastActivity) > timeout
}

// DemoteIfStale downgrades a stale active or busy agent to available. Agents
// that silently stopped heartbeating must not permanently block matching as
// "busy". All other statuses pass through unchanged.
func DemoteIfStale(u Unified, stale bool) Unified {
	if stale && (u == Active || u == Busy) {
		return Available
	}
	return u
}

// Resolver normalizes raw status strings and carries the configured stale
// timeout. It performs no I/O.
type Resolver struct {
	staleTimeout time.Duration
	log          *slog.Logger
}

// NewResolver returns a Resolver with the given stale timeout. A nil logger
// falls back to slog.Default.
func NewResolver(staleTimeout time.Duration, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{staleTimeout: staleTimeout, log: log}
}

// StaleTimeout returns the configured staleness timeout.
func (r *Resolver) StaleTimeout() time.Duration { return r.staleTimeout }

// Normalize maps an arbitrary raw status string to its Unified value. It is
// total: unmatched strings resolve to Inactive and are logged at warning
// level, since silent miscategorization is the main operational risk here.
func (r *Resolver) Normalize(raw string) Unified {
	key := strings.ToLower(strings.TrimSpace(raw))
	if u, ok := legacyStatuses[key]; ok {
		return u
	}
	r.log.Warn("unknown agent status, resolving to inactive", "raw_status", raw)
	return Inactive
}

// Stale reports whether lastActivity is stale under the configured timeout.
func (r *Resolver) Stale(lastActivity *time.Time, now time.Time) bool {
	return IsStale(lastActivity, now, r.staleTimeout)
}
