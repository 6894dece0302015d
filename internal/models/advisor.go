// internal/models/advisor.go
package models

import "time"

type Advisor struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	CalendlyURL string      `json:"calendlyUrl,omitempty"`
	Territories Territories `json:"territories"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
