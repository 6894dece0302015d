// Package notify renders and delivers the advisor and submitter emails plus
// the optional advisor SMS alert. Delivery is best-effort: failures are
// logged and reported in Result, never returned.
package notify

import (
	"context"

	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/metrics"
	"advisor-routing/internal/models"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// TemplateSource supplies admin-edited template overrides.
type TemplateSource interface {
	GetTemplate(ctx context.Context, kind models.TemplateKind) (*models.NotificationTemplate, error)
}

type Result struct {
	AdvisorEmail   string `json:"advisorEmail"`
	AdvisorSMS     string `json:"advisorSms"`
	SubmitterEmail string `json:"submitterEmail"`
}

type Notifier struct {
	mailer    Mailer
	sms       SMSSender
	templates TemplateSource
	renderer  *Renderer
	logger    logger.Logger
}

// NewNotifier wires the senders. A nil mailer or sms disables that channel;
// a nil templates source uses configured defaults only.
func NewNotifier(mailer Mailer, sms SMSSender, templates TemplateSource, renderer *Renderer, log logger.Logger) *Notifier {
	return &Notifier{
		mailer:    mailer,
		sms:       sms,
		templates: templates,
		renderer:  renderer,
		logger:    log,
	}
}

// NotifyLead informs the assigned advisor (if any) and the submitter.
func (n *Notifier) NotifyLead(ctx context.Context, sub *models.Submission, advisor *models.Advisor) Result {
	res := Result{
		AdvisorEmail:   StatusSkipped,
		AdvisorSMS:     StatusSkipped,
		SubmitterEmail: StatusSkipped,
	}

	if advisor != nil {
		msg := n.renderer.AdvisorMessage(advisor, sub, n.override(ctx, models.TemplateAdvisor))
		res.AdvisorEmail = n.sendEmail(ctx, "advisor", sub.ID, msg)
		res.AdvisorSMS = n.sendSMS(ctx, sub, advisor)
	}

	if sub.Email != "" {
		msg := n.renderer.SubmitterMessage(sub, advisor, n.override(ctx, models.TemplateSubmitter))
		res.SubmitterEmail = n.sendEmail(ctx, "submitter", sub.ID, msg)
	}

	return res
}

func (n *Notifier) override(ctx context.Context, kind models.TemplateKind) *models.NotificationTemplate {
	if n.templates == nil {
		return nil
	}
	tpl, err := n.templates.GetTemplate(ctx, kind)
	if err != nil {
		n.logger.Warn("template lookup failed, using defaults", map[string]interface{}{
			"kind":  string(kind),
			"error": err,
		})
		return nil
	}
	return tpl
}

func (n *Notifier) sendEmail(ctx context.Context, recipient string, submissionID int64, msg Message) string {
	if n.mailer == nil || msg.To == "" {
		metrics.NotificationsSent.WithLabelValues(recipient, "email", StatusDisabled).Inc()
		return StatusDisabled
	}
	if err := n.mailer.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		n.logger.Error("email send failed", map[string]interface{}{
			"recipient":    recipient,
			"submissionId": submissionID,
			"error":        err,
		})
		metrics.NotificationsSent.WithLabelValues(recipient, "email", StatusFailed).Inc()
		return StatusFailed
	}
	metrics.NotificationsSent.WithLabelValues(recipient, "email", StatusSent).Inc()
	return StatusSent
}

func (n *Notifier) sendSMS(ctx context.Context, sub *models.Submission, advisor *models.Advisor) string {
	if advisor.Phone == "" {
		return StatusSkipped
	}
	if n.sms == nil {
		return StatusDisabled
	}
	if err := n.sms.SendSMS(ctx, advisor.Phone, n.renderer.AdvisorSMS(sub)); err != nil {
		n.logger.Error("SMS send failed", map[string]interface{}{
			"advisorId":    advisor.ID,
			"submissionId": sub.ID,
			"error":        err,
		})
		metrics.NotificationsSent.WithLabelValues("advisor", "sms", StatusFailed).Inc()
		return StatusFailed
	}
	metrics.NotificationsSent.WithLabelValues("advisor", "sms", StatusSent).Inc()
	return StatusSent
}
