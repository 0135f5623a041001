package payment

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// WebhookEvent is the subset of a provider webhook the order workflow
// acts on.
type WebhookEvent struct {
	Type      string
	SessionID string
}

// Completed reports whether the event marks a checkout session as paid.
func (e *WebhookEvent) Completed() bool {
	return e.Type == "checkout.session.completed"
}

// Expired reports whether the hosted session expired unpaid.
func (e *WebhookEvent) Expired() bool {
	return e.Type == "checkout.session.expired"
}

// ParseWebhook verifies the signature header against the webhook secret
// and extracts the checkout session id.
func ParseWebhook(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	return &WebhookEvent{Type: string(event.Type), SessionID: sess.ID}, nil
}
