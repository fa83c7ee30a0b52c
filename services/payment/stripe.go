package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studiobook/models"
	"studiobook/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const metadataBookingID = "booking_id"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// StripeConfig carries the keys and redirect URLs for hosted checkout.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// StripeGateway creates Checkout Sessions for deposits and verifies webhooks.
type StripeGateway struct {
	api    *client.API
	cfg    StripeConfig
	logger *zap.Logger
}

// NewStripeGateway builds a gateway; backends may be nil to use Stripe's API.
func NewStripeGateway(cfg StripeConfig, backends *stripe.Backends, logger *zap.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &StripeGateway{api: api, cfg: cfg, logger: logger}
}

// CreateCheckoutSession charges the deposit as a single line item. The booking
// id travels as client_reference_id and metadata so the webhook can find it.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	amount, err := utils.ToMinorUnits(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("checkout amount: %w", err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("checkout amount must be positive, got %s", req.Amount)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{metadataBookingID: req.BookingID},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(metadataBookingID, req.BookingID)
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	g.logger.Debug("Stripe checkout session created",
		zap.String("bookingID", req.BookingID),
		zap.String("sessionID", sess.ID),
		zap.Int64("amount", amount),
	)
	return &models.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts a completed
// checkout. It returns nil, nil for event types that need no action.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*models.CheckoutCompleted, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
	default:
		g.logger.Debug("Ignoring Stripe event", zap.String("eventID", event.ID), zap.String("type", string(event.Type)))
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	bookingID := sess.ClientReferenceID
	if bookingID == "" {
		bookingID = sess.Metadata[metadataBookingID]
	}
	return &models.CheckoutCompleted{
		EventID:           event.ID,
		CheckoutSessionID: sess.ID,
		BookingID:         bookingID,
		PaymentStatus:     string(sess.PaymentStatus),
	}, nil
}
