package createleadrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/geo"
	"advisor-routing/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-lead-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// SubmissionCreator persists a new submission and fills in its id and timestamp.
type SubmissionCreator interface {
	Create(ctx context.Context, sub *models.Submission) error
}

type Handler struct {
	config       *Config
	submissions  SubmissionCreator
	states       geo.StateResolver
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. states may be nil, in which case a missing
// state stays empty and the submission routes on ZIP-only coverage.
func NewHandler(config *Config, submissions SubmissionCreator, states geo.StateResolver, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submissions:  submissions,
		states:       states,
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
	sub, resolved, err := h.Create(ctx, input.Lead)
	if err != nil {
		return nil, err
	}

	return &Output{
		SubmissionID:  sub.ID,
		State:         sub.State,
		ZipCode:       sub.ZipCode,
		StateResolved: resolved,
		Status:        string(sub.Status),
		CreatedAt:     sub.Timestamp.UTC().Format(time.RFC3339),
	}, nil
}

// Create stores the lead as a new, unassigned submission. The returned flag
// reports whether the state was filled in from the ZIP code.
func (h *Handler) Create(ctx context.Context, lead models.LeadPayload) (*models.Submission, bool, error) {
	sub := &models.Submission{
		FirstName:          lead.Personal.FirstName,
		LastName:           lead.Personal.LastName,
		Email:              lead.Personal.Email,
		Phone:              lead.Personal.Phone,
		Age:                int(lead.Personal.Age),
		Gender:             lead.Personal.Gender,
		ZipCode:            lead.Location.ZipCode,
		State:              strings.ToUpper(strings.TrimSpace(lead.Location.State)),
		County:             lead.Location.County,
		CalculationResults: lead.Results,
	}

	resolved := false
	if sub.State == "" && h.states != nil && sub.ZipCode != "" {
		state, err := h.states.StateForZip(ctx, sub.ZipCode)
		if err != nil {
			h.logger.Warn("state lookup failed, storing without state", map[string]interface{}{
				"zipCode": sub.ZipCode,
				"error":   err,
			})
		} else {
			sub.State = state
			resolved = true
		}
	}

	if err := h.submissions.Create(ctx, sub); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, err)
	}

	h.logger.Info("submission stored", map[string]interface{}{
		"submissionId":  sub.ID,
		"state":         sub.State,
		"stateResolved": resolved,
	})

	return sub, resolved, nil
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
