package synccrmlead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/metrics"
	"advisor-routing/internal/common/zoho"
	"advisor-routing/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-crm-lead"
)

var (
	ErrSubmissionNotFound = errors.New("SUBMISSION_NOT_FOUND")
	ErrCRMSyncFailed      = errors.New("CRM_SYNC_FAILED")
)

type LeadCreator interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
}

type SubmissionGetter interface {
	Get(ctx context.Context, id int64) (*models.Submission, error)
}

type AdvisorGetter interface {
	Get(ctx context.Context, id int64) (*models.Advisor, error)
}

type Handler struct {
	config       *Config
	crm          LeadCreator
	submissions  SubmissionGetter
	advisors     AdvisorGetter
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, crm LeadCreator, submissions SubmissionGetter, advisors AdvisorGetter, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		crm:          crm,
		submissions:  submissions,
		advisors:     advisors,
		logger:       scoped,
		errorHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job,
			apperrors.NewInvalidRequestError("Invalid job variables", err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.enabled() {
		return &Output{Status: StatusSkipped}, nil
	}

	sub, err := h.submissions.Get(ctx, input.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionNotFound, err)
	}

	var advisor *models.Advisor
	if input.AdvisorID != nil {
		if advisor, err = h.advisors.Get(ctx, *input.AdvisorID); err != nil {
			advisor = nil
		}
	}

	return h.Sync(ctx, sub, advisor)
}

func (h *Handler) enabled() bool {
	return h.config.Enabled && h.crm != nil
}

// Sync creates a CRM lead for the submission. It reports "skipped" when the
// integration is off.
func (h *Handler) Sync(ctx context.Context, sub *models.Submission, advisor *models.Advisor) (*Output, error) {
	if !h.enabled() {
		metrics.CRMSyncs.WithLabelValues(StatusSkipped).Inc()
		return &Output{Status: StatusSkipped}, nil
	}

	id, err := h.crm.CreateLead(ctx, h.buildLead(sub, advisor))
	if err != nil {
		metrics.CRMSyncs.WithLabelValues(StatusFailed).Inc()
		h.logger.Error("CRM lead sync failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err,
		})
		return nil, fmt.Errorf("%w: %w", ErrCRMSyncFailed, apperrors.NewCRMSyncFailedError(err))
	}

	metrics.CRMSyncs.WithLabelValues(StatusSynced).Inc()
	h.logger.Info("CRM lead created", map[string]interface{}{
		"submissionId": sub.ID,
		"crmLeadId":    id,
	})
	return &Output{Status: StatusSynced, CRMLeadID: id}, nil
}

func (h *Handler) buildLead(sub *models.Submission, advisor *models.Advisor) *zoho.Lead {
	lead := &zoho.Lead{
		FirstName:   sub.FirstName,
		LastName:    sub.LastName,
		Email:       sub.Email,
		Phone:       sub.Phone,
		ZipCode:     sub.ZipCode,
		State:       sub.State,
		Source:      h.config.LeadSource,
		Description: describe(sub),
	}
	if advisor != nil {
		lead.Owner = advisor.Name
	}
	return lead
}

func describe(sub *models.Submission) string {
	results := models.DecodeResults(sub.CalculationResults)
	parts := []string{fmt.Sprintf("Calculator submission #%d", sub.ID)}
	if results.RecommendedCoverage > 0 {
		parts = append(parts, fmt.Sprintf("recommended coverage %.0f", results.RecommendedCoverage))
	}
	if sub.County != "" {
		parts = append(parts, "county "+sub.County)
	}
	return strings.Join(parts, "; ")
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute runs the handler logic without a job context.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
