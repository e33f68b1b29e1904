package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Body    string
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var emailTemplates = map[model.EventType]emailTemplate{
	model.EventOrderCreated: mustTemplate(
		"New order #{{.order_id}}",
		"Your transport order #{{.order_id}} for a {{.vehicle_type}} from {{.pickup_location}} to {{.delivery_location}} has been created.\n"+
			"Estimated total: EUR {{.total_price}}. Drivers can now send offers.",
	),
	model.EventOfferSubmitted: mustTemplate(
		"New offer for order #{{.order_id}}",
		"A driver offered EUR {{.quoted_price}} for order #{{.order_id}}. Compare offers in your dashboard.",
	),
	model.EventOfferAccepted: mustTemplate(
		"Offer accepted for order #{{.order_id}}",
		"The offer for order #{{.order_id}} was accepted.\nTotal price: EUR {{.total_price}}\nDriver payout: EUR {{.driver_payout}}",
	),
	model.EventOfferRejected: mustTemplate(
		"Offer for order #{{.order_id}} not selected",
		"Your offer for order #{{.order_id}} was not selected{{with .reason}}: {{.}}{{end}}.",
	),
	model.EventOrderStatus: mustTemplate(
		"Order #{{.order_id}} is now {{.status}}",
		"Order #{{.order_id}} moved from {{.from}} to {{.status}}.",
	),
	model.EventPayoutCreated: mustTemplate(
		"Payout for order #{{.order_id}}",
		"Order #{{.order_id}} is completed. A payout of EUR {{.amount}} has been scheduled.",
	),
	model.EventPaymentConfirmed: mustTemplate(
		"Payment received for order #{{.order_id}}",
		"We received your payment of {{.amount}} {{.currency}} for order #{{.order_id}}. Thank you.",
	),
	model.EventProviderReviewed: mustTemplate(
		"Provider verification: {{.status}}",
		"The verification of {{.company_name}} is now {{.status}}.{{with .reason}}\nReason: {{.}}{{end}}",
	),
}

func mustTemplate(subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// Render builds the email for an event. The boolean is false for event types
// without a template.
func Render(event model.Event) (Message, bool, error) {
	tpl, ok := emailTemplates[event.Type]
	if !ok {
		return Message{}, false, nil
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, event.Payload); err != nil {
		return Message{}, true, fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&body, event.Payload); err != nil {
		return Message{}, true, fmt.Errorf("render body: %w", err)
	}
	return Message{Subject: subject.String(), Body: body.String()}, true, nil
}
