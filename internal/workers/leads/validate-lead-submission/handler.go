package validateleadsubmission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/validation"
	"advisor-routing/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-lead-submission"
)

var (
	ErrSubmissionValidationFailed = errors.New("SUBMISSION_VALIDATION_FAILED")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
			apperrors.NewSubmissionValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	lead := normalize(input.LeadPayload)

	raw, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionValidationFailed,
			apperrors.NewSubmissionValidationError(err.Error()))
	}

	result, err := validation.ValidateLead(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionValidationFailed,
			apperrors.NewSubmissionValidationError(err.Error()))
	}
	validation.RequireNonBlank(result, map[string]string{
		"personal.firstName": lead.Personal.FirstName,
		"personal.lastName":  lead.Personal.LastName,
		"personal.email":     lead.Personal.Email,
		"personal.phone":     lead.Personal.Phone,
		"location.zipCode":   lead.Location.ZipCode,
	})

	if !result.Valid {
		h.logger.Warn("lead rejected", map[string]interface{}{
			"errors": result.Summary(),
		})
		return nil, fmt.Errorf("%w: %w", ErrSubmissionValidationFailed,
			apperrors.NewSubmissionValidationError(result.Summary()))
	}

	return &Output{Lead: lead, Valid: true}, nil
}

// normalize trims every text field, upper-cases the state code and floors the
// age at zero. Optional fields are never grounds for rejection.
func normalize(in models.LeadPayload) models.LeadPayload {
	out := in
	out.Personal.FirstName = strings.TrimSpace(in.Personal.FirstName)
	out.Personal.LastName = strings.TrimSpace(in.Personal.LastName)
	out.Personal.Email = strings.TrimSpace(in.Personal.Email)
	out.Personal.Phone = strings.TrimSpace(in.Personal.Phone)
	out.Personal.Gender = strings.TrimSpace(in.Personal.Gender)
	if out.Personal.Age < 0 {
		out.Personal.Age = 0
	}
	out.Location.ZipCode = strings.TrimSpace(in.Location.ZipCode)
	out.Location.State = strings.ToUpper(strings.TrimSpace(in.Location.State))
	out.Location.County = strings.TrimSpace(in.Location.County)
	if len(in.Results) == 0 || string(in.Results) == "null" {
		out.Results = nil
	}
	return out
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

// Execute validates and normalizes a lead without a job context.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
