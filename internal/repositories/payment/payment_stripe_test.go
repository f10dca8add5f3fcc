package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestParseWebhookEvent_CheckoutCompleted(t *testing.T) {
	p := NewPaymentStripe(StripeConfig{WebhookSecret: testWebhookSecret})
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"object": "checkout.session",
			"amount_total": 49900,
			"metadata": {"courseId": "7", "userId": "3"}
		}}
	}`)

	event, err := p.ParseWebhookEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentEventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_123", event.SessionID)
	assert.Equal(t, int64(49900), event.AmountTotal)
	assert.Equal(t, "7", event.Metadata["courseId"])
}

func TestParseWebhookEvent_OtherType(t *testing.T) {
	p := NewPaymentStripe(StripeConfig{WebhookSecret: testWebhookSecret})
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`)

	event, err := p.ParseWebhookEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", event.Type)
	assert.Empty(t, event.SessionID)
}

func TestParseWebhookEvent_BadSignature(t *testing.T) {
	p := NewPaymentStripe(StripeConfig{WebhookSecret: testWebhookSecret})
	payload := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	_, err := p.ParseWebhookEvent(payload, sign(payload, "whsec_other"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrInvalidSignature))

	_, err = p.ParseWebhookEvent(payload, "")
	assert.True(t, errors.Is(err, repositories.ErrInvalidSignature))
}
