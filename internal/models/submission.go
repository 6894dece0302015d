// internal/models/submission.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type SubmissionStatus string

const (
	StatusNew       SubmissionStatus = "new"
	StatusContacted SubmissionStatus = "contacted"
	StatusConverted SubmissionStatus = "converted"
	StatusClosed    SubmissionStatus = "closed"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted, StatusClosed:
		return true
	}
	return false
}

type Submission struct {
	ID                 int64            `json:"id"`
	FirstName          string           `json:"firstName"`
	LastName           string           `json:"lastName"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	Age                int              `json:"age"`
	Gender             string           `json:"gender"`
	ZipCode            string           `json:"zipCode"`
	State              string           `json:"state"`
	County             string           `json:"county"`
	CalculationResults json.RawMessage  `json:"calculationResults,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
	Status             SubmissionStatus `json:"status"`
	AdvisorID          *int64           `json:"advisorId"`
	AdvisorName        string           `json:"advisorName,omitempty"`
}

// FullName joins first and last name.
func (s *Submission) FullName() string {
	return s.FirstName + " " + s.LastName
}

// SubmissionUpdate carries the admin-editable fields. Nil means unchanged;
// ClearAdvisor unassigns.
type SubmissionUpdate struct {
	Status       *SubmissionStatus
	AdvisorID    *int64
	ClearAdvisor bool
}

func (u SubmissionUpdate) Empty() bool {
	return u.Status == nil && u.AdvisorID == nil && !u.ClearAdvisor
}

type SubmissionFilter struct {
	Status SubmissionStatus
	Search string
	Limit  int
	Offset int
}

// LeadPayload is the calculator form body.
type LeadPayload struct {
	Personal PersonalInfo    `json:"personal"`
	Location LocationInfo    `json:"location"`
	Results  json.RawMessage `json:"results,omitempty"`
}

type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Age       Age    `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// Age is the form's age field. The calculator posts it as a number, a numeric
// string or "", so decoding never fails: anything without a leading integer
// reads as 0 and fractions are truncated.
type Age int

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(leadingInt(s))
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		*a = Age(int(f))
		return nil
	}
	*a = 0
	return nil
}

// leadingInt parses an optional sign and the digits that follow it.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

type LocationInfo struct {
	ZipCode string `json:"zipCode"`
	State   string `json:"state,omitempty"`
	County  string `json:"county,omitempty"`
}

// CalculationResults is the subset of the calculator output the notifier reads.
type CalculationResults struct {
	RecommendedCoverage      float64            `json:"recommendedCoverage"`
	CurrentCoverage          float64            `json:"currentCoverage,omitempty"`
	AdditionalCoverageNeeded float64            `json:"additionalCoverageNeeded,omitempty"`
	Breakdown                map[string]float64 `json:"breakdown,omitempty"`
}

// DecodeResults reads calculator output; unknown or malformed data yields zero values.
func DecodeResults(raw json.RawMessage) CalculationResults {
	var r CalculationResults
	if len(raw) == 0 {
		return r
	}
	_ = json.Unmarshal(raw, &r)
	return r
}
