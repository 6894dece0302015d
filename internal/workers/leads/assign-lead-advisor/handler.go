package assignleadadvisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/metrics"
	"advisor-routing/internal/models"
	"advisor-routing/internal/routing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assign-lead-advisor"
)

var (
	ErrAdvisorLookupFailed     = errors.New("QUERY_EXECUTION_FAILED")
	ErrCursorUpdateFailed      = errors.New("CURSOR_UPDATE_FAILED")
	ErrInvalidAssignmentMethod = errors.New("INVALID_ASSIGNMENT_METHOD")
	ErrAssignmentPersistFailed = errors.New("ASSIGNMENT_PERSIST_FAILED")
)

type AdvisorLister interface {
	List(ctx context.Context) ([]models.Advisor, error)
}

type PolicySource interface {
	Policy(ctx context.Context) (models.PolicyConfig, error)
}

type AssignmentWriter interface {
	SetAdvisor(ctx context.Context, submissionID int64, advisorID *int64) error
}

type Handler struct {
	config       *Config
	advisors     AdvisorLister
	policy       PolicySource
	cursor       routing.Cursor
	assignments  AssignmentWriter
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, advisors AdvisorLister, policy PolicySource, cursor routing.Cursor, assignments AssignmentWriter, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		advisors:     advisors,
		policy:       policy,
		cursor:       cursor,
		assignments:  assignments,
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
	sub := &models.Submission{
		ID:      input.SubmissionID,
		State:   input.State,
		ZipCode: input.ZipCode,
	}

	decision, err := h.Assign(ctx, sub)
	if err != nil {
		return nil, err
	}

	output := &Output{
		AdvisorID:    decision.AdvisorID(),
		Reason:       string(decision.Reason),
		Method:       string(decision.Method),
		MatchedCount: decision.Matched,
		CursorIndex:  decision.CursorIndex,
	}
	if decision.Advisor != nil {
		output.AdvisorName = decision.Advisor.Name
		output.AdvisorEmail = decision.Advisor.Email
	}
	return output, nil
}

// Assign routes a stored submission and records the chosen advisor (or NULL)
// on it. On success sub.AdvisorID and sub.AdvisorName reflect the decision.
func (h *Handler) Assign(ctx context.Context, sub *models.Submission) (routing.Decision, error) {
	start := time.Now()

	advisors, err := h.advisors.List(ctx)
	if err != nil {
		return routing.Decision{}, fmt.Errorf("%w: %w", ErrAdvisorLookupFailed, err)
	}

	policy, err := h.policy.Policy(ctx)
	if err != nil {
		return routing.Decision{}, fmt.Errorf("%w: %w", ErrAdvisorLookupFailed, err)
	}

	decision, err := routing.Route(ctx, sub.State, sub.ZipCode, advisors, policy, h.cursor)
	if err != nil {
		h.logger.Error("routing failed", map[string]interface{}{
			"submissionId": sub.ID,
			"method":       string(policy.Method),
			"matched":      decision.Matched,
			"error":        err,
		})
		switch {
		case errors.Is(err, routing.ErrUnknownMethod):
			return decision, fmt.Errorf("%w: %w", ErrInvalidAssignmentMethod,
				apperrors.NewInvalidAssignmentMethodError(string(policy.Method)))
		default:
			return decision, fmt.Errorf("%w: %w", ErrCursorUpdateFailed,
				apperrors.NewCursorUpdateFailedError(err))
		}
	}

	advisorID := decision.AdvisorID()
	if err := h.assignments.SetAdvisor(ctx, sub.ID, advisorID); err != nil {
		return decision, fmt.Errorf("%w: %w", ErrAssignmentPersistFailed, err)
	}

	sub.AdvisorID = advisorID
	sub.AdvisorName = ""
	if decision.Advisor != nil {
		sub.AdvisorName = decision.Advisor.Name
	}

	metrics.AdvisorAssignments.WithLabelValues(string(decision.Method), string(decision.Reason)).Inc()
	metrics.RoutingDuration.Observe(time.Since(start).Seconds())

	h.logger.Info("advisor assigned", map[string]interface{}{
		"submissionId": sub.ID,
		"method":       string(decision.Method),
		"reason":       string(decision.Reason),
		"matched":      decision.Matched,
		"advisorId":    advisorID,
		"cursor":       decision.CursorIndex,
	})

	return decision, nil
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
