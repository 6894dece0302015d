package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"
	"advisor-routing/internal/search"

	"github.com/gin-gonic/gin"
)

type submissionCreatedResponse struct {
	SubmissionID int64  `json:"submissionId"`
	AdvisorID    *int64 `json:"advisorId"`
	AdvisorName  string `json:"advisorName,omitempty"`
	Status       string `json:"status"`
}

// submissionUpdateRequest: advisorId absent leaves the advisor alone, null
// unassigns, a positive id reassigns.
type submissionUpdateRequest struct {
	Status    *string         `json:"status" validate:"omitempty,oneof=new contacted converted closed"`
	AdvisorID json.RawMessage `json:"advisorId"`
}

// createSubmission accepts a calculator form.
// POST /api/v1/submissions
func (s *Server) createSubmission(c *gin.Context) {
	var lead models.LeadPayload
	if err := c.ShouldBindJSON(&lead); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid submission payload", err.Error()))
		return
	}

	result, err := s.deps.Submitter.Submit(c.Request.Context(), lead)
	if err != nil {
		if result != nil && result.Submission != nil {
			s.logger.Error("submission stored without advisor assignment", map[string]interface{}{
				"submissionId": result.Submission.ID,
				"error":        err,
			})
		}
		s.handleError(c, err)
		return
	}

	sub := result.Submission
	c.JSON(http.StatusCreated, submissionCreatedResponse{
		SubmissionID: sub.ID,
		AdvisorID:    sub.AdvisorID,
		AdvisorName:  sub.AdvisorName,
		Status:       string(sub.Status),
	})
}

// GET /api/v1/admin/submissions
func (s *Server) listSubmissions(c *gin.Context) {
	filter := models.SubmissionFilter{
		Status: models.SubmissionStatus(c.Query("status")),
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid status", string(filter.Status)))
		return
	}

	subs, err := s.deps.Submissions.List(c.Request.Context(), filter)
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// GET /api/v1/admin/submissions/search
func (s *Server) searchSubmissions(c *gin.Context) {
	if s.deps.Search == nil {
		respondError(c, http.StatusServiceUnavailable, "Search is not enabled", nil)
		return
	}
	q := search.Query{
		Text:   c.Query("q"),
		Status: models.SubmissionStatus(c.Query("status")),
		From:   queryInt(c, "from", 0),
		Size:   queryInt(c, "size", 0),
	}
	result, err := s.deps.Search.Search(c.Request.Context(), q)
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/admin/submissions/:id
func (s *Server) getSubmission(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid submission ID")
	if !ok {
		return
	}
	sub, err := s.deps.Submissions.Get(c.Request.Context(), id)
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, sub)
}

// PATCH /api/v1/admin/submissions/:id
func (s *Server) updateSubmission(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid submission ID")
	if !ok {
		return
	}

	var req submissionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}
	if details, valid := s.validator.Struct(req); !valid {
		s.handleError(c, apperrors.NewInvalidRequestError("Invalid status", details))
		return
	}

	upd, err := s.buildUpdate(c, req)
	if s.handleError(c, err) {
		return
	}
	if err := s.deps.Submissions.Update(c.Request.Context(), id, upd); s.handleError(c, err) {
		return
	}

	sub, err := s.deps.Submissions.Get(c.Request.Context(), id)
	if s.handleError(c, err) {
		return
	}
	s.reindex(c, sub)
	c.JSON(http.StatusOK, sub)
}

func (s *Server) buildUpdate(c *gin.Context, req submissionUpdateRequest) (models.SubmissionUpdate, error) {
	var upd models.SubmissionUpdate
	if req.Status != nil {
		status := models.SubmissionStatus(*req.Status)
		upd.Status = &status
	}

	if len(req.AdvisorID) == 0 {
		return upd, nil
	}
	if string(req.AdvisorID) == "null" {
		upd.ClearAdvisor = true
		return upd, nil
	}

	var advisorID int64
	if err := json.Unmarshal(req.AdvisorID, &advisorID); err != nil || advisorID <= 0 {
		return upd, apperrors.NewInvalidRequestError("Invalid advisor ID", string(req.AdvisorID))
	}
	if _, err := s.deps.Advisors.Get(c.Request.Context(), advisorID); err != nil {
		return upd, err
	}
	upd.AdvisorID = &advisorID
	return upd, nil
}

// DELETE /api/v1/admin/submissions/:id
func (s *Server) deleteSubmission(c *gin.Context) {
	id, ok := s.pathID(c, "Invalid submission ID")
	if !ok {
		return
	}
	if err := s.deps.Submissions.Delete(c.Request.Context(), id); s.handleError(c, err) {
		return
	}
	if s.deps.Search != nil {
		if err := s.deps.Search.Delete(c.Request.Context(), id); err != nil {
			s.logger.Warn("search delete failed", map[string]interface{}{
				"submissionId": id,
				"error":        err,
			})
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) reindex(c *gin.Context, sub *models.Submission) {
	if s.deps.Search == nil {
		return
	}
	if err := s.deps.Search.Index(c.Request.Context(), sub); err != nil {
		s.logger.Warn("search reindex failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err,
		})
	}
}

func (s *Server) pathID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.handleError(c, apperrors.NewInvalidRequestError(message, c.Param("id")))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
