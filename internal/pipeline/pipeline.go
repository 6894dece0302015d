// Package pipeline runs a calculator submission through every lead step in
// one request: validate, store, route, notify, CRM sync and search indexing.
// The same steps are exposed individually as Zeebe job workers.
package pipeline

import (
	"context"
	"time"

	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/metrics"
	"advisor-routing/internal/common/observability"
	"advisor-routing/internal/models"
	"advisor-routing/internal/routing"
	sendleadnotification "advisor-routing/internal/workers/leads/send-lead-notification"
	synccrmlead "advisor-routing/internal/workers/leads/sync-crm-lead"
	validateleadsubmission "advisor-routing/internal/workers/leads/validate-lead-submission"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	OutcomeStored   = "stored"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeUnrouted = "unrouted"
)

type LeadValidator interface {
	Execute(ctx context.Context, input *validateleadsubmission.Input) (*validateleadsubmission.Output, error)
}

type LeadCreator interface {
	Create(ctx context.Context, lead models.LeadPayload) (*models.Submission, bool, error)
}

type LeadAssigner interface {
	Assign(ctx context.Context, sub *models.Submission) (routing.Decision, error)
}

type LeadNotifier interface {
	Deliver(ctx context.Context, sub *models.Submission, advisor *models.Advisor) *sendleadnotification.Output
}

type CRMSyncer interface {
	Sync(ctx context.Context, sub *models.Submission, advisor *models.Advisor) (*synccrmlead.Output, error)
}

type Indexer interface {
	Index(ctx context.Context, sub *models.Submission) error
}

// Steps are the collaborators of one pipeline run. CRM and Index are optional.
type Steps struct {
	Validate LeadValidator
	Create   LeadCreator
	Assign   LeadAssigner
	Notify   LeadNotifier
	CRM      CRMSyncer
	Index    Indexer
}

type Result struct {
	Submission    *models.Submission
	StateResolved bool
	Decision      routing.Decision
	Notification  *sendleadnotification.Output
	CRMStatus     string
}

type Pipeline struct {
	steps  Steps
	obs    *observability.Observability
	logger logger.Logger
}

// New builds a pipeline. obs may be nil.
func New(steps Steps, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		steps:  steps,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Submit processes one lead. Validation and storage failures return no
// submission. A routing or assignment-persist failure returns the stored
// submission together with the error; notifications are then not sent.
// Notification, CRM and indexing problems never fail the call.
func (p *Pipeline) Submit(ctx context.Context, lead models.LeadPayload) (*Result, error) {
	ctx, span := p.obs.StartSpan(ctx, "pipeline.submit")
	defer span.End()

	var validated *validateleadsubmission.Output
	err := p.step(ctx, "validate", func(ctx context.Context) error {
		var err error
		validated, err = p.steps.Validate.Execute(ctx, &validateleadsubmission.Input{LeadPayload: lead})
		return err
	})
	if err != nil {
		metrics.SubmissionsReceived.WithLabelValues(OutcomeInvalid).Inc()
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	result := &Result{}
	err = p.step(ctx, "create", func(ctx context.Context) error {
		sub, resolved, err := p.steps.Create.Create(ctx, validated.Lead)
		result.Submission, result.StateResolved = sub, resolved
		return err
	})
	if err != nil {
		metrics.SubmissionsReceived.WithLabelValues(OutcomeFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission not stored")
		return nil, err
	}
	sub := result.Submission
	span.SetAttributes(attribute.Int64("submission.id", sub.ID))

	err = p.step(ctx, "assign", func(ctx context.Context) error {
		var err error
		result.Decision, err = p.steps.Assign.Assign(ctx, sub)
		return err
	})
	if err != nil {
		metrics.SubmissionsReceived.WithLabelValues(OutcomeUnrouted).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "routing failed")
		p.logger.Error("submission stored but not routed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err,
		})
		return result, err
	}
	advisor := result.Decision.Advisor

	_ = p.step(ctx, "notify", func(ctx context.Context) error {
		result.Notification = p.steps.Notify.Deliver(ctx, sub, advisor)
		return nil
	})

	result.CRMStatus = synccrmlead.StatusSkipped
	if p.steps.CRM != nil {
		err := p.step(ctx, "crm", func(ctx context.Context) error {
			out, err := p.steps.CRM.Sync(ctx, sub, advisor)
			if err != nil {
				return err
			}
			result.CRMStatus = out.Status
			return nil
		})
		if err != nil {
			result.CRMStatus = synccrmlead.StatusFailed
			p.logger.Warn("CRM sync failed", map[string]interface{}{
				"submissionId": sub.ID,
				"error":        err,
			})
		}
	}

	if p.steps.Index != nil {
		if err := p.step(ctx, "index", func(ctx context.Context) error {
			return p.steps.Index.Index(ctx, sub)
		}); err != nil {
			p.logger.Warn("search indexing failed", map[string]interface{}{
				"submissionId": sub.ID,
				"error":        err,
			})
		}
	}

	metrics.SubmissionsReceived.WithLabelValues(OutcomeStored).Inc()
	return result, nil
}

func (p *Pipeline) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.obs.StartSpan(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	p.obs.RecordStep(ctx, name, time.Since(start), status)
	return err
}
