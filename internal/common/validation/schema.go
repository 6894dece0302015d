// Package validation checks calculator payloads and advisor territory
// documents against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line for logs and error details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// leadSchema only blocks on the fields the form requires. Optional fields are
// normalized by the caller instead of rejected.
const leadSchema = `{
	"type": "object",
	"required": ["personal", "location"],
	"properties": {
		"personal": {
			"type": "object",
			"required": ["firstName", "lastName", "email", "phone"],
			"properties": {
				"firstName": {"type": "string", "minLength": 1},
				"lastName":  {"type": "string", "minLength": 1},
				"email":     {"type": "string", "minLength": 1},
				"phone":     {"type": "string", "minLength": 1}
			}
		},
		"location": {
			"type": "object",
			"required": ["zipCode"],
			"properties": {
				"zipCode": {"type": "string", "minLength": 1}
			}
		}
	}
}`

const territoriesSchema = `{
	"type": "object",
	"patternProperties": {
		"^[A-Za-z]{2}$": {
			"oneOf": [
				{"type": "string", "enum": ["*"]},
				{"type": "array", "items": {"type": "string", "minLength": 1}}
			]
		}
	},
	"additionalProperties": false
}`

var (
	leadSchemaLoader        = gojsonschema.NewStringLoader(leadSchema)
	territoriesSchemaLoader = gojsonschema.NewStringLoader(territoriesSchema)
)

// ValidateLead checks a raw submission body. Whitespace-only values pass the
// schema; callers follow up with RequireNonBlank.
func ValidateLead(raw []byte) (*ValidationResult, error) {
	return validate(leadSchemaLoader, raw)
}

// ValidateTerritories checks an advisor territory document: two-letter
// state keys mapping to "*" or a list of ZIP codes.
func ValidateTerritories(raw []byte) (*ValidationResult, error) {
	return validate(territoriesSchemaLoader, raw)
}

// RequireNonBlank adds a REQUIRED_FIELD_MISSING error for each blank value.
func RequireNonBlank(result *ValidationResult, fields map[string]string) {
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}
}

func validate(schema gojsonschema.JSONLoader, raw []byte) (*ValidationResult, error) {
	res, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
