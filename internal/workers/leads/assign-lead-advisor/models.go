package assignleadadvisor

type Input struct {
	SubmissionID int64  `json:"submissionId"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

type Output struct {
	AdvisorID    *int64 `json:"advisorId"`
	AdvisorName  string `json:"advisorName,omitempty"`
	AdvisorEmail string `json:"advisorEmail,omitempty"`
	Reason       string `json:"reason"`
	Method       string `json:"method"`
	MatchedCount int    `json:"matchedCount"`
	CursorIndex  int    `json:"cursorIndex"` // -1 unless round-robin picked from matched advisors
}
