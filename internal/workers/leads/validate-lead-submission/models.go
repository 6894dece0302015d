package validateleadsubmission

import (
	"advisor-routing/internal/common/validation"
	"advisor-routing/internal/models"
)

// Input is the raw calculator payload as posted by the form.
type Input struct {
	models.LeadPayload
}

type Output struct {
	Lead   models.LeadPayload           `json:"lead"`
	Valid  bool                         `json:"valid"`
	Errors []validation.ValidationError `json:"errors,omitempty"`
}
