package synccrmlead

type Input struct {
	SubmissionID int64  `json:"submissionId"`
	AdvisorID    *int64 `json:"advisorId"`
}

type Output struct {
	Status    string `json:"crmStatus"` // "synced", "skipped"
	CRMLeadID string `json:"crmLeadId,omitempty"`
}

const (
	StatusSynced  = "synced"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)
