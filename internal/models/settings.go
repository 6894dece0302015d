// internal/models/settings.go
package models

type AssignmentMethod string

const (
	MethodRoundRobin AssignmentMethod = "round-robin"
	MethodFirstMatch AssignmentMethod = "first-match"
)

func (m AssignmentMethod) Valid() bool {
	return m == MethodRoundRobin || m == MethodFirstMatch
}

// PolicyConfig is the routing configuration read once per submission.
type PolicyConfig struct {
	Method           AssignmentMethod `json:"assignmentMethod"`
	DefaultAdvisorID int64            `json:"defaultAdvisorId"`
}

// RoutingSettings is the persisted settings row including the cursor.
type RoutingSettings struct {
	PolicyConfig
	LastAssignedIndex int `json:"lastAssignedIndex"`
}

type TemplateKind string

const (
	TemplateAdvisor   TemplateKind = "advisor"
	TemplateSubmitter TemplateKind = "submitter"
)

func (k TemplateKind) Valid() bool {
	return k == TemplateAdvisor || k == TemplateSubmitter
}

// NotificationTemplate overrides a configured subject or body. Empty fields
// fall back to the configured defaults.
type NotificationTemplate struct {
	Kind    TemplateKind `json:"kind"`
	Subject string       `json:"subject"`
	Body    string       `json:"body"`
}

type DashboardStats struct {
	TotalSubmissions  int          `json:"totalSubmissions"`
	NewSubmissions    int          `json:"newSubmissions"`
	TotalAdvisors     int          `json:"totalAdvisors"`
	RecentSubmissions []Submission `json:"recentSubmissions"`
}
