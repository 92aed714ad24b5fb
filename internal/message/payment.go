package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPaymentNotConfigured means the booking webhook answered without a
// client secret, so the payment widget cannot start.
var ErrPaymentNotConfigured = errors.New("message: payment provider not configured")

// PaymentIntents asks the booking automation to open a payment intent for a
// deposit and returns the provider's opaque client secret.
type PaymentIntents struct {
	Webhook *Webhook
}

type intentRequest struct {
	Action      string `json:"action"`
	Amount      int64  `json:"amount"`
	PackageName string `json:"packageName"`
}

type intentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// Create requests an intent for amountCents.  The deadline comes from ctx.
func (p *PaymentIntents) Create(ctx context.Context, amountCents int64, packageName string) (string, error) {
	if p == nil || p.Webhook == nil {
		return "", ErrPaymentNotConfigured
	}
	if amountCents <= 0 {
		return "", fmt.Errorf("payment intent: amount must be positive, got %d", amountCents)
	}
	body, err := p.Webhook.post(ctx, intentRequest{
		Action:      "create_payment_intent",
		Amount:      amountCents,
		PackageName: packageName,
	})
	if err != nil {
		return "", err
	}
	var out intentResponse
	if err := json.Unmarshal(body, &out); err != nil || out.ClientSecret == "" {
		return "", ErrPaymentNotConfigured
	}
	return out.ClientSecret, nil
}
