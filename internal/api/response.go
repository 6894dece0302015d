package api

import (
	"net/http"

	apperrors "advisor-routing/internal/common/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// handleError maps a StandardError onto its HTTP status. Untyped errors are
// reported as 500 without leaking their text. Returns true if err was non-nil.
func (s *Server) handleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	stdErr, ok := apperrors.As(err)
	if !ok {
		s.logger.Error("unhandled error", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err,
		})
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Unexpected error",
			Code:  string(apperrors.ErrCodeInternal),
		})
		return true
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	resp := ErrorResponse{Error: stdErr.Message, Code: string(stdErr.Code)}
	if status < http.StatusInternalServerError && stdErr.Details != "" {
		resp.Details = stdErr.Details
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  string(stdErr.Code),
			"error": err,
		})
	}
	c.JSON(status, resp)
	return true
}
