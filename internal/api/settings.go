package api

import (
	"net/http"
	"strings"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"

	"github.com/gin-gonic/gin"
)

type settingsResponse struct {
	AssignmentMethod  models.AssignmentMethod       `json:"assignmentMethod"`
	DefaultAdvisorID  int64                         `json:"defaultAdvisorId"`
	LastAssignedIndex int                           `json:"lastAssignedIndex"`
	Templates         []models.NotificationTemplate `json:"templates"`
}

type assignmentMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=round-robin first-match"`
}

type defaultAdvisorRequest struct {
	AdvisorID *int64 `json:"advisorId" validate:"required,gte=0"`
}

type templateRequest struct {
	Subject string `json:"subject" validate:"max=255"`
	Body    string `json:"body"`
}

// GET /api/v1/admin/settings
func (s *Server) getSettings(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := s.deps.Settings.Get(ctx)
	if s.handleError(c, err) {
		return
	}

	resp := settingsResponse{
		AssignmentMethod:  settings.Method,
		DefaultAdvisorID:  settings.DefaultAdvisorID,
		LastAssignedIndex: settings.LastAssignedIndex,
	}
	if s.deps.Cursor != nil {
		if v, err := s.deps.Cursor.Value(ctx); err == nil {
			resp.LastAssignedIndex = v
		}
	}

	templates, err := s.deps.Settings.ListTemplates(ctx)
	if s.handleError(c, err) {
		return
	}
	resp.Templates = templates

	c.JSON(http.StatusOK, resp)
}

// PUT /api/v1/admin/settings/assignment-method
func (s *Server) setAssignmentMethod(c *gin.Context) {
	var req assignmentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}
	req.Method = strings.TrimSpace(req.Method)
	if _, valid := s.validator.Struct(req); !valid {
		s.handleError(c, apperrors.NewInvalidAssignmentMethodError(req.Method))
		return
	}

	method := models.AssignmentMethod(req.Method)
	if err := s.deps.Settings.SetAssignmentMethod(c.Request.Context(), method); s.handleError(c, err) {
		return
	}
	s.logger.Info("assignment method changed", map[string]interface{}{"method": req.Method})
	c.JSON(http.StatusOK, gin.H{"assignmentMethod": method})
}

// PUT /api/v1/admin/settings/default-advisor
// advisorId 0 clears the default.
func (s *Server) setDefaultAdvisor(c *gin.Context) {
	var req defaultAdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}
	if details, valid := s.validator.Struct(req); !valid {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid advisor ID", details))
		return
	}

	ctx := c.Request.Context()
	id := *req.AdvisorID
	if id > 0 {
		if _, err := s.deps.Advisors.Get(ctx, id); s.handleError(c, err) {
			return
		}
	}
	if err := s.deps.Settings.SetDefaultAdvisor(ctx, id); s.handleError(c, err) {
		return
	}
	s.logger.Info("default advisor changed", map[string]interface{}{"advisorId": id})
	c.JSON(http.StatusOK, gin.H{"defaultAdvisorId": id})
}

// POST /api/v1/admin/settings/cursor/reset
func (s *Server) resetCursor(c *gin.Context) {
	if s.deps.Cursor == nil {
		respondError(c, http.StatusServiceUnavailable, "No assignment cursor configured", nil)
		return
	}
	if err := s.deps.Cursor.Reset(c.Request.Context()); err != nil {
		if _, typed := apperrors.As(err); !typed {
			err = apperrors.NewCursorUpdateFailedError(err)
		}
		s.handleError(c, err)
		return
	}
	s.logger.Info("assignment cursor reset", nil)
	c.JSON(http.StatusOK, gin.H{"lastAssignedIndex": 0})
}

// PUT /api/v1/admin/settings/templates/:kind
func (s *Server) saveTemplate(c *gin.Context) {
	kind := models.TemplateKind(c.Param("kind"))
	if !kind.Valid() {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid template kind", string(kind)))
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}
	if details, valid := s.validator.Struct(req); !valid {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid template", details))
		return
	}

	tpl := models.NotificationTemplate{Kind: kind, Subject: req.Subject, Body: req.Body}
	if err := s.deps.Settings.SaveTemplate(c.Request.Context(), tpl); s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, tpl)
}
