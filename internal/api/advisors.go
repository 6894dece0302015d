package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/validation"
	"advisor-routing/internal/models"

	"github.com/gin-gonic/gin"
)

type advisorRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Email       string          `json:"email" validate:"required,email,max=255"`
	Phone       string          `json:"phone" validate:"omitempty,max=40"`
	CalendlyURL string          `json:"calendlyUrl" validate:"omitempty,url,max=255"`
	Territories json.RawMessage `json:"territories"`
}

// GET /api/v1/admin/advisors
func (s *Server) listAdvisors(c *gin.Context) {
	advisors, err := s.deps.Advisors.List(c.Request.Context())
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"advisors": advisors})
}

// GET /api/v1/admin/advisors/:id
func (s *Server) getAdvisor(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid advisor ID")
	if !ok {
		return
	}
	advisor, err := s.deps.Advisors.Get(c.Request.Context(), id)
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, advisor)
}

// POST /api/v1/admin/advisors
func (s *Server) createAdvisor(c *gin.Context) {
	advisor, ok := s.bindAdvisor(c)
	if !ok {
		return
	}
	if err := s.deps.Advisors.Save(c.Request.Context(), advisor); s.handleError(c, err) {
		return
	}
	s.logger.Info("advisor created", map[string]interface{}{
		"advisorId": advisor.ID,
		"states":    advisor.Territories.States(),
	})
	c.JSON(http.StatusCreated, advisor)
}

// PUT /api/v1/admin/advisors/:id
func (s *Server) updateAdvisor(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid advisor ID")
	if !ok {
		return
	}
	advisor, ok := s.bindAdvisor(c)
	if !ok {
		return
	}
	advisor.ID = id
	if err := s.deps.Advisors.Save(c.Request.Context(), advisor); s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, advisor)
}

// DELETE /api/v1/admin/advisors/:id
func (s *Server) deleteAdvisor(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid advisor ID")
	if !ok {
		return
	}
	if err := s.deps.Advisors.Delete(c.Request.Context(), id); s.handleError(c, err) {
		return
	}
	s.logger.Info("advisor deleted", map[string]interface{}{"advisorId": id})
	c.Status(http.StatusNoContent)
}

func (s *Server) bindAdvisor(c *gin.Context) (*models.Advisor, bool) {
	var req advisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return nil, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CalendlyURL = strings.TrimSpace(req.CalendlyURL)

	if req.Name == "" || req.Email == "" {
		s.handleError(c, apperrors.NewInvalidRequestError("Name and email are required", ""))
		return nil, false
	}
	if details, valid := s.validator.Struct(req); !valid {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid advisor details", details))
		return nil, false
	}

	territories, err := decodeTerritories(req.Territories)
	if err != nil {
		s.handleError(c, err)
		return nil, false
	}

	return &models.Advisor{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CalendlyURL: req.CalendlyURL,
		Territories: territories,
	}, true
}

// decodeTerritories accepts a territories object, or the same object encoded
// as a JSON string as sent by form posts.
func decodeTerritories(raw json.RawMessage) (models.Territories, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Territories{}, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, apperrors.NewInvalidTerritoriesError(err.Error())
		}
		raw = []byte(encoded)
		if len(bytes.TrimSpace(raw)) == 0 {
			return models.Territories{}, nil
		}
	}

	result, err := validation.ValidateTerritories(raw)
	if err != nil {
		return nil, apperrors.NewInvalidTerritoriesError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidTerritoriesError(result.Summary())
	}

	territories, err := models.DecodeTerritories(raw)
	if err != nil {
		return nil, apperrors.NewInvalidTerritoriesError(err.Error())
	}
	return territories, nil
}
