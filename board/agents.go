// ABOUTME: Agent liveness derived from heartbeats
// ABOUTME: Classifies agents healthy, stale or offline and summarizes a scope

package board

import (
	"context"
	"sort"
	"time"

	"github.com/markalston/agent-dashboard/models"
)

// Heartbeat age thresholds.
const (
	HealthyWithin = 2 * time.Minute
	StaleWithin   = 10 * time.Minute
)

// Agent health states
const (
	HealthHealthy = "healthy"
	HealthStale   = "stale"
	HealthOffline = "offline"
)

// GetAgentHealth summarizes agent liveness. Scope active_defaults limits the
// summary to default agents that are active.
func (b *Board) GetAgentHealth(_ context.Context, scope string) (models.AgentHealth, error) {
	if scope == "" {
		scope = models.ScopeAll
	}
	if scope != models.ScopeAll && scope != models.ScopeActiveDefaults {
		return models.AgentHealth{}, invalid("unknown scope %q", scope)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	health := models.AgentHealth{Scope: scope, Agents: []models.AgentStatus{}, CheckedAt: now}
	for _, a := range b.agents {
		if scope == models.ScopeActiveDefaults && !(a.IsDefault && a.Active) {
			continue
		}
		status := models.AgentStatus{Agent: *a, Health: classify(now.Sub(a.LastHeartbeat))}
		switch status.Health {
		case HealthHealthy:
			health.Healthy++
		case HealthStale:
			health.Stale++
		default:
			health.Offline++
		}
		health.Agents = append(health.Agents, status)
	}
	sort.Slice(health.Agents, func(i, j int) bool {
		return health.Agents[i].Name < health.Agents[j].Name
	})
	return health, nil
}

func classify(age time.Duration) string {
	switch {
	case age <= HealthyWithin:
		return HealthHealthy
	case age <= StaleWithin:
		return HealthStale
	default:
		return HealthOffline
	}
}
