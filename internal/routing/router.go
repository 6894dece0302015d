package routing

import (
	"context"
	"sort"

	"advisor-routing/internal/models"
)

// Reason records which rule produced a routing decision.
type Reason string

const (
	ReasonTerritoryMatch Reason = "territory-match"
	ReasonDefaultAdvisor Reason = "default-advisor"
	ReasonLowestID       Reason = "lowest-id"
	ReasonUnassigned     Reason = "unassigned"
)

type Decision struct {
	Advisor     *models.Advisor
	Reason      Reason
	Method      models.AssignmentMethod
	Matched     int
	CursorIndex int // position picked by round-robin, else -1
}

// AdvisorID returns the chosen advisor id or nil.
func (d Decision) AdvisorID() *int64 {
	if d.Advisor == nil {
		return nil
	}
	id := d.Advisor.ID
	return &id
}

// Route runs matcher, policy and fallback for one location. An empty roster
// is not an error: the decision is simply unassigned.
func Route(ctx context.Context, state, zip string, advisors []models.Advisor, cfg models.PolicyConfig, cursor Cursor) (Decision, error) {
	roster := make([]models.Advisor, len(advisors))
	copy(roster, advisors)
	sort.SliceStable(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	decision := Decision{Method: cfg.Method, CursorIndex: -1}

	matched := Match(roster, state, zip)
	decision.Matched = len(matched)

	chosen, idx, err := Assign(ctx, matched, cfg.Method, cursor)
	if err != nil {
		return decision, err
	}
	if chosen != nil {
		decision.Advisor = chosen
		decision.Reason = ReasonTerritoryMatch
		if cfg.Method != models.MethodFirstMatch {
			decision.CursorIndex = idx
		}
		return decision, nil
	}

	fallback := ResolveFallback(roster, cfg.DefaultAdvisorID)
	switch {
	case fallback == nil:
		decision.Reason = ReasonUnassigned
	case fallback.ID == cfg.DefaultAdvisorID:
		decision.Reason = ReasonDefaultAdvisor
	default:
		decision.Reason = ReasonLowestID
	}
	decision.Advisor = fallback
	return decision, nil
}
