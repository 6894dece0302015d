package notify

import (
	"fmt"
	"strconv"
	"strings"

	"advisor-routing/internal/models"
)

const (
	DefaultAdvisorSubject   = "New Insurance Calculator Submission"
	DefaultSubmitterSubject = "Your Insurance Calculator Results"
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Templates are the configured subject/body defaults. A non-empty body is a
// placeholder template; an empty body selects the built-in text.
type Templates struct {
	AdvisorSubject   string
	AdvisorBody      string
	SubmitterSubject string
	SubmitterBody    string
}

// Renderer builds advisor and submitter emails.
type Renderer struct {
	templates     Templates
	siteName      string
	submissionURL string
}

func NewRenderer(templates Templates, siteName, submissionURL string) *Renderer {
	if templates.AdvisorSubject == "" {
		templates.AdvisorSubject = DefaultAdvisorSubject
	}
	if templates.SubmitterSubject == "" {
		templates.SubmitterSubject = DefaultSubmitterSubject
	}
	return &Renderer{templates: templates, siteName: siteName, submissionURL: submissionURL}
}

// SubmissionLink returns the admin URL for a submission.
func (r *Renderer) SubmissionLink(id int64) string {
	if r.submissionURL == "" {
		return ""
	}
	if strings.Contains(r.submissionURL, "%d") {
		return fmt.Sprintf(r.submissionURL, id)
	}
	return strings.TrimRight(r.submissionURL, "/") + "/" + strconv.FormatInt(id, 10)
}

// AdvisorMessage renders the new-lead email. override may be nil.
func (r *Renderer) AdvisorMessage(advisor *models.Advisor, sub *models.Submission, override *models.NotificationTemplate) Message {
	subject, body := pick(r.templates.AdvisorSubject, r.templates.AdvisorBody, override)
	results := models.DecodeResults(sub.CalculationResults)
	link := r.SubmissionLink(sub.ID)

	if body == "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Hello %s,\n\n", advisor.Name)
		b.WriteString("A new insurance calculator submission has been received:\n\n")
		fmt.Fprintf(&b, "Name: %s %s\n", sub.FirstName, sub.LastName)
		fmt.Fprintf(&b, "Email: %s\n", sub.Email)
		fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
		fmt.Fprintf(&b, "Age: %s\n", ageText(sub.Age))
		fmt.Fprintf(&b, "Location: %s\n\n", location(sub))
		fmt.Fprintf(&b, "Recommended Coverage: %s\n\n", formatMoney(results.RecommendedCoverage))
		fmt.Fprintf(&b, "View this submission in the admin panel: %s", link)
		body = b.String()
	} else {
		body = strings.NewReplacer(
			"{advisor_name}", advisor.Name,
			"{client_name}", sub.FullName(),
			"{client_email}", sub.Email,
			"{client_phone}", sub.Phone,
			"{client_location}", location(sub),
			"{recommended_coverage}", formatMoney(results.RecommendedCoverage),
			"{submission_link}", link,
		).Replace(body)
	}

	return Message{To: advisor.Email, Subject: subject, Body: body}
}

// SubmitterMessage renders the results email. advisor and override may be nil.
func (r *Renderer) SubmitterMessage(sub *models.Submission, advisor *models.Advisor, override *models.NotificationTemplate) Message {
	subject, body := pick(r.templates.SubmitterSubject, r.templates.SubmitterBody, override)
	results := models.DecodeResults(sub.CalculationResults)

	advisorName := ""
	if advisor != nil {
		advisorName = advisor.Name
	}

	if body == "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Hello %s,\n\n", sub.FirstName)
		b.WriteString("Thank you for using our Insurance Needs Calculator. Here are your results:\n\n")
		fmt.Fprintf(&b, "Recommended Coverage: %s\n\n", formatMoney(results.RecommendedCoverage))

		if lines := orderedBreakdown(sub.CalculationResults); lines != nil {
			b.WriteString("Breakdown:\n")
			for _, l := range lines {
				fmt.Fprintf(&b, "%s: %s\n", humanizeLabel(l.Label), formatMoney(l.Amount))
			}
			b.WriteString("\n")
		}

		if advisor != nil {
			fmt.Fprintf(&b, "Your submission has been assigned to %s, who will contact you soon to help you understand your results and explore your options.\n\n", advisorName)
		}

		b.WriteString("Thank you for choosing us for your insurance needs.\n\n")
		b.WriteString("Best regards,\n")
		b.WriteString(r.siteName)
		body = b.String()
	} else {
		body = strings.NewReplacer(
			"{client_name}", sub.FirstName,
			"{full_name}", sub.FullName(),
			"{recommended_coverage}", formatMoney(results.RecommendedCoverage),
			"{advisor_name}", advisorName,
			"{site_name}", r.siteName,
		).Replace(body)
	}

	return Message{To: sub.Email, Subject: subject, Body: body}
}

// AdvisorSMS is the short alert sent to an advisor's phone.
func (r *Renderer) AdvisorSMS(sub *models.Submission) string {
	results := models.DecodeResults(sub.CalculationResults)
	return fmt.Sprintf("New lead: %s, %s, %s. Recommended coverage %s. %s",
		sub.FullName(), sub.Phone, sub.ZipCode, formatMoney(results.RecommendedCoverage), r.SubmissionLink(sub.ID))
}

func pick(subject, body string, override *models.NotificationTemplate) (string, string) {
	if override != nil {
		if override.Subject != "" {
			subject = override.Subject
		}
		if override.Body != "" {
			body = override.Body
		}
	}
	return subject, body
}

func location(sub *models.Submission) string {
	return sub.County + ", " + sub.State + " " + sub.ZipCode
}

func ageText(age int) string {
	if age <= 0 {
		return ""
	}
	return strconv.Itoa(age)
}
