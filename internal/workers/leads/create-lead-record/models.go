package createleadrecord

import "advisor-routing/internal/models"

type Input struct {
	Lead models.LeadPayload `json:"lead"`
}

type Output struct {
	SubmissionID  int64  `json:"submissionId"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	StateResolved bool   `json:"stateResolved"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}
