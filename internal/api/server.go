// Package api is the HTTP surface: the public calculator submission endpoint
// and the admin control surface for advisors, submissions and routing settings.
package api

import (
	"context"
	"net/http"
	"time"

	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/models"
	"advisor-routing/internal/pipeline"
	"advisor-routing/internal/routing"
	"advisor-routing/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LeadSubmitter interface {
	Submit(ctx context.Context, lead models.LeadPayload) (*pipeline.Result, error)
}

type AdvisorRepository interface {
	List(ctx context.Context) ([]models.Advisor, error)
	Get(ctx context.Context, id int64) (*models.Advisor, error)
	Save(ctx context.Context, a *models.Advisor) error
	Delete(ctx context.Context, id int64) error
}

type SubmissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	Get(ctx context.Context, id int64) (*models.Submission, error)
	Update(ctx context.Context, id int64, upd models.SubmissionUpdate) error
	Delete(ctx context.Context, id int64) error
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*models.RoutingSettings, error)
	SetAssignmentMethod(ctx context.Context, method models.AssignmentMethod) error
	SetDefaultAdvisor(ctx context.Context, advisorID int64) error
	ListTemplates(ctx context.Context) ([]models.NotificationTemplate, error)
	SaveTemplate(ctx context.Context, t models.NotificationTemplate) error
}

// SubmissionSearch is the optional Elasticsearch view of submissions.
type SubmissionSearch interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
	Index(ctx context.Context, sub *models.Submission) error
	Delete(ctx context.Context, id int64) error
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Submitter   LeadSubmitter
	Advisors    AdvisorRepository
	Submissions SubmissionRepository
	Settings    SettingsRepository
	Cursor      routing.ResettableCursor
	Search      SubmissionSearch // nil when search is disabled

	Introspector TokenIntrospector
	AdminRole    string
	AuthDisabled bool

	CORSOrigins []string
	Readiness   map[string]ReadinessCheck
	Logger      logger.Logger
}

type Server struct {
	deps      Deps
	validator *requestValidator
	logger    logger.Logger
}

func NewServer(deps Deps) *Server {
	return &Server{
		deps:      deps,
		validator: newRequestValidator(),
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(s.logger))

	if len(s.deps.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     s.deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
			ExposeHeaders:    []string{headerRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	engine.GET("/health", s.health)
	engine.GET("/ready", s.ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	v1.POST("/submissions", s.createSubmission)

	admin := v1.Group("/admin")
	if s.deps.AuthDisabled {
		s.logger.Warn("admin authentication disabled", nil)
	} else {
		admin.Use(RequireAdmin(s.deps.Introspector, s.deps.AdminRole))
	}

	admin.GET("/dashboard", s.dashboard)

	admin.GET("/advisors", s.listAdvisors)
	admin.POST("/advisors", s.createAdvisor)
	admin.GET("/advisors/:id", s.getAdvisor)
	admin.PUT("/advisors/:id", s.updateAdvisor)
	admin.DELETE("/advisors/:id", s.deleteAdvisor)

	admin.GET("/submissions", s.listSubmissions)
	admin.GET("/submissions/search", s.searchSubmissions)
	admin.GET("/submissions/:id", s.getSubmission)
	admin.PATCH("/submissions/:id", s.updateSubmission)
	admin.DELETE("/submissions/:id", s.deleteSubmission)

	admin.GET("/settings", s.getSettings)
	admin.PUT("/settings/assignment-method", s.setAssignmentMethod)
	admin.PUT("/settings/default-advisor", s.setDefaultAdvisor)
	admin.POST("/settings/cursor/reset", s.resetCursor)
	admin.PUT("/settings/templates/:kind", s.saveTemplate)

	return engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failures := make(map[string]string)
	for name, check := range s.deps.Readiness {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": failures,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) dashboard(c *gin.Context) {
	stats, err := s.deps.Submissions.Dashboard(c.Request.Context())
	if s.handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, stats)
}
