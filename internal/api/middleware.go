package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"advisor-routing/internal/common/auth"
	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextPrincipalKey = "principal"
	contextRequestIDKey = "requestID"
	headerRequestID     = "X-Request-ID"
)

// TokenIntrospector verifies a bearer token.
type TokenIntrospector interface {
	Introspect(ctx context.Context, token string) (*auth.Principal, error)
}

// RequestLogger tags each request with an id and logs it with timing.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(contextRequestIDKey, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		log.Info("http request", map[string]interface{}{
			"requestId": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"clientIp":  c.ClientIP(),
		})
	}
}

// RequireAdmin admits requests whose bearer token introspects as active and
// carries role. A nil introspector rejects everything.
func RequireAdmin(introspector TokenIntrospector, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, apperrors.NewAuthenticationError("missing bearer token"))
			return
		}
		if introspector == nil {
			abortWith(c, apperrors.NewAuthenticationError("token verification unavailable"))
			return
		}

		principal, err := introspector.Introspect(c.Request.Context(), token)
		if err != nil {
			if _, typed := apperrors.As(err); !typed {
				err = apperrors.NewAuthenticationError(err.Error())
			}
			abortWith(c, err)
			return
		}
		if role != "" && !principal.HasRole(role) {
			abortWith(c, apperrors.NewForbiddenError("missing role "+role))
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abortWith(c *gin.Context, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication failed"})
		return
	}
	c.AbortWithStatusJSON(apperrors.HTTPStatus(stdErr.Code), ErrorResponse{
		Error: stdErr.Message,
		Code:  string(stdErr.Code),
	})
}
