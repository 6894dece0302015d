// Package routing decides which advisor receives a submission: territory
// matching, the round-robin or first-match policy, and the fallback chain.
package routing

import (
	"advisor-routing/internal/models"
)

// Match returns the advisors whose territory covers state/zip, in the order
// they appear in the roster. Advisors without usable territories never match.
func Match(advisors []models.Advisor, state, zip string) []models.Advisor {
	matched := make([]models.Advisor, 0, len(advisors))
	for _, a := range advisors {
		if len(a.Territories) == 0 {
			continue
		}
		if a.Territories.Covers(state, zip) {
			matched = append(matched, a)
		}
	}
	return matched
}
