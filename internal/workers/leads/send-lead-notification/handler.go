package sendleadnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/models"
	"advisor-routing/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-lead-notification"
)

var (
	ErrSubmissionNotFound = errors.New("SUBMISSION_NOT_FOUND")
)

type SubmissionGetter interface {
	Get(ctx context.Context, id int64) (*models.Submission, error)
}

type AdvisorGetter interface {
	Get(ctx context.Context, id int64) (*models.Advisor, error)
}

type LeadNotifier interface {
	NotifyLead(ctx context.Context, sub *models.Submission, advisor *models.Advisor) notify.Result
}

type Handler struct {
	config       *Config
	submissions  SubmissionGetter
	advisors     AdvisorGetter
	notifier     LeadNotifier
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, submissions SubmissionGetter, advisors AdvisorGetter, notifier LeadNotifier, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submissions:  submissions,
		advisors:     advisors,
		notifier:     notifier,
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
	sub, err := h.submissions.Get(ctx, input.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionNotFound, err)
	}

	var advisor *models.Advisor
	if input.AdvisorID != nil {
		advisor, err = h.advisors.Get(ctx, *input.AdvisorID)
		if err != nil {
			// The advisor may have been deleted after routing; the
			// submitter still gets the no-advisor confirmation.
			h.logger.Warn("assigned advisor not loaded", map[string]interface{}{
				"submissionId": sub.ID,
				"advisorId":    *input.AdvisorID,
				"error":        err,
			})
			advisor = nil
		}
	}

	return h.Deliver(ctx, sub, advisor), nil
}

// Deliver sends the lead notifications and summarizes them. It never fails:
// per-channel outcomes are reported in the output.
func (h *Handler) Deliver(ctx context.Context, sub *models.Submission, advisor *models.Advisor) *Output {
	result := h.notifier.NotifyLead(ctx, sub, advisor)

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         overallStatus(result),
		AdvisorEmail:   result.AdvisorEmail,
		AdvisorSMS:     result.AdvisorSMS,
		SubmitterEmail: result.SubmitterEmail,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Info("lead notifications processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"submissionId":   sub.ID,
		"status":         output.Status,
		"advisorEmail":   result.AdvisorEmail,
		"advisorSms":     result.AdvisorSMS,
		"submitterEmail": result.SubmitterEmail,
	})

	return output
}

// overallStatus is "sent" when anything went out, "failed" when something
// was attempted and nothing went out, and "disabled" otherwise.
func overallStatus(r notify.Result) string {
	channels := []string{r.AdvisorEmail, r.AdvisorSMS, r.SubmitterEmail}
	failed := false
	for _, s := range channels {
		if s == notify.StatusSent {
			return notify.StatusSent
		}
		if s == notify.StatusFailed {
			failed = true
		}
	}
	if failed {
		return notify.StatusFailed
	}
	return notify.StatusDisabled
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
