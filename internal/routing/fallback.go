package routing

import "advisor-routing/internal/models"

// ResolveFallback returns the configured default advisor when it exists in
// the roster, else the lowest-id advisor, else nil.
func ResolveFallback(advisors []models.Advisor, defaultAdvisorID int64) *models.Advisor {
	if defaultAdvisorID > 0 {
		for i := range advisors {
			if advisors[i].ID == defaultAdvisorID {
				return &advisors[i]
			}
		}
	}

	var lowest *models.Advisor
	for i := range advisors {
		if lowest == nil || advisors[i].ID < lowest.ID {
			lowest = &advisors[i]
		}
	}
	return lowest
}
