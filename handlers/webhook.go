package handlers

import (
	"errors"
	"io"
	"net/http"

	"studiobook/models"
	"studiobook/services/booking"
	"studiobook/services/payment"
	"studiobook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = 64 << 10

// WebhookParser verifies and decodes a provider callback.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*models.CheckoutCompleted, error)
}

// WebhookHandler is the payment bridge.
type WebhookHandler struct {
	Parser   WebhookParser
	Bookings booking.BookingService
}

// StripeWebhook handles POST /api/payments/stripe/webhook. Anything other
// than a 2xx makes Stripe redeliver, so only transient failures return 500.
func (h *WebhookHandler) StripeWebhook(c *gin.Context) {
	logger := getLogger(c)
	if h.Parser == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "payments_disabled", "payments are not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, models.CodeValidation, "unreadable body")
		return
	}

	evt, err := h.Parser.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrInvalidSignature) {
		logger.Warn("Rejected webhook with bad signature", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, models.CodeValidation, err.Error())
		return
	}
	if evt == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	b, err := h.Bookings.HandleCheckoutCompleted(c.Request.Context(), *evt)
	switch {
	case errors.Is(err, models.ErrNotFound):
		logger.Warn("Checkout completed for unknown booking",
			zap.String("eventID", evt.EventID),
			zap.String("bookingID", evt.BookingID),
			zap.String("sessionID", evt.CheckoutSessionID),
		)
	case errors.Is(err, models.ErrValidation):
		logger.Warn("Ignoring malformed checkout event", zap.String("eventID", evt.EventID), zap.Error(err))
	case err != nil:
		respondError(c, err)
		return
	case b != nil:
		logger.Info("Checkout applied", zap.String("eventID", evt.EventID), zap.String("bookingID", b.ID))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
