package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// StripeConfig holds the configuration for the payment processor
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type PaymentStripe struct {
	config StripeConfig
}

func NewPaymentStripe(config StripeConfig) *PaymentStripe {
	stripe.Key = config.SecretKey
	if config.Currency == "" {
		config.Currency = string(stripe.CurrencyINR)
	}
	return &PaymentStripe{config: config}
}

var _ repositories.PaymentGateway = (*PaymentStripe)(nil)

// CreateCheckoutSession opens a one-off card payment for a single course
func (p *PaymentStripe) CreateCheckoutSession(ctx context.Context, item models.CheckoutItem) (*models.CheckoutSession, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(item.Title),
	}
	if item.Thumbnail != nil && *item.Thumbnail != "" {
		productData.Images = []*string{item.Thumbnail}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(p.config.Currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(item.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf(p.config.SuccessURL, item.CourseID)),
		CancelURL:  stripe.String(fmt.Sprintf(p.config.CancelURL, item.CourseID)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"IN"}),
		},
	}
	params.Context = ctx
	params.AddMetadata("courseId", strconv.FormatUint(uint64(item.CourseID), 10))
	params.AddMetadata("userId", strconv.FormatUint(uint64(item.UserID), 10))

	session, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrPaymentProvider, err)
	}

	return &models.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// ParseWebhookEvent verifies the signature header and decodes checkout
// session events. Other event types are returned without a session.
func (p *PaymentStripe) ParseWebhookEvent(payload []byte, signature string) (*models.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidSignature, err)
	}

	result := &models.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		result.SessionID = session.ID
		result.AmountTotal = session.AmountTotal
		result.Metadata = session.Metadata
	}

	return result, nil
}
