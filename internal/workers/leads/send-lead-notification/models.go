package sendleadnotification

type Input struct {
	SubmissionID int64  `json:"submissionId"`
	AdvisorID    *int64 `json:"advisorId"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	AdvisorEmail   string `json:"advisorEmail"`
	AdvisorSMS     string `json:"advisorSms"`
	SubmitterEmail string `json:"submitterEmail"`
	SentAt         string `json:"sentAt"` // ISO 8601
}
