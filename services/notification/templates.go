package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"studiobook/models"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(kind models.TemplateKind, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(string(kind) + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(string(kind) + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[models.TemplateKind]messageTemplate{
	models.TemplateBookingReceived: mustTemplate(models.TemplateBookingReceived,
		`We received your booking for {{.date}}`,
		`Hi {{.customerName}},

Thanks for booking with us. Your request for {{.date}} at {{.time}} is in and
waiting for the studio to confirm.

Services: {{.services}}
Total: {{.total}}
Deposit due: {{.deposit}}

Booking reference: {{.bookingId}}
`),
	models.TemplateBookingSubmitted: mustTemplate(models.TemplateBookingSubmitted,
		`New booking request: {{.customerName}} on {{.date}}`,
		`A new booking is waiting for review.

Customer: {{.customerName}} <{{.customerEmail}}>, {{.customerPhone}}
When: {{.date}} at {{.time}}
Services: {{.services}}
Total: {{.total}} (deposit {{.deposit}})
{{if .notes}}Notes: {{.notes}}
{{end}}
Booking reference: {{.bookingId}}
`),
	models.TemplateBookingConfirmed: mustTemplate(models.TemplateBookingConfirmed,
		`Your session on {{.date}} is confirmed`,
		`Hi {{.customerName}},

Good news: your session on {{.date}} at {{.time}} is confirmed.

Services: {{.services}}
Total: {{.total}}

See you at the studio.
Booking reference: {{.bookingId}}
`),
	models.TemplateBookingConfirmedAlert: mustTemplate(models.TemplateBookingConfirmedAlert,
		`Confirmed: {{.customerName}} on {{.date}} at {{.time}}`,
		`Booking {{.bookingId}} for {{.customerName}} is now confirmed for {{.date}} at {{.time}}.
Services: {{.services}}
`),
	models.TemplateSessionCompleted: mustTemplate(models.TemplateSessionCompleted,
		`Thanks for recording with us`,
		`Hi {{.customerName}},

Thanks for your session on {{.date}}. We hope you enjoyed it and we would love
to have you back.

Booking reference: {{.bookingId}}
`),
	models.TemplateBookingCancelled: mustTemplate(models.TemplateBookingCancelled,
		`Your booking for {{.date}} has been cancelled`,
		`Hi {{.customerName}},

Your booking for {{.date}} at {{.time}} has been cancelled. Reply to this email
if you would like to arrange another date.

Booking reference: {{.bookingId}}
`),
	models.TemplateDepositReceived: mustTemplate(models.TemplateDepositReceived,
		`Deposit received for {{.date}}`,
		`Hi {{.customerName}},

We have received your deposit of {{.deposit}} for the session on {{.date}} at {{.time}}.

Booking reference: {{.bookingId}}
`),
}

// Render turns an intent payload into a message addressed to payload["to"].
func Render(p models.NotificationPayload) (models.Message, error) {
	tmpl, ok := templates[p.TemplateKind]
	if !ok {
		return models.Message{}, fmt.Errorf("unknown template %q", p.TemplateKind)
	}
	to := p.Data["to"]
	if to == "" {
		return models.Message{}, fmt.Errorf("no recipient for %s intent %s", p.RecipientRole, p.IntentID)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, p.Data); err != nil {
		return models.Message{}, fmt.Errorf("render %s subject: %w", p.TemplateKind, err)
	}
	if err := tmpl.body.Execute(&body, p.Data); err != nil {
		return models.Message{}, fmt.Errorf("render %s body: %w", p.TemplateKind, err)
	}
	return models.Message{To: to, Subject: subject.String(), Body: body.String()}, nil
}
