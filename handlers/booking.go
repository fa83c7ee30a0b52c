package handlers

import (
	"net/http"

	"studiobook/models"
	"studiobook/services/booking"
	"studiobook/services/quote"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingHandler is the public intake surface.
type BookingHandler struct {
	Bookings booking.BookingService
	Quotes   *quote.Service
	Currency string
}

// CreateBookingRequest carries either a stored quote id or inline selections.
type CreateBookingRequest struct {
	QuoteID  string            `json:"quoteId"`
	Services []quote.Selection `json:"services" binding:"dive"`
	Customer models.Customer   `json:"customer"`
	Schedule models.Schedule   `json:"schedule"`
	Notes    string            `json:"notes"`
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	logger := getLogger(c)
	ctx := c.Request.Context()

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var (
		q   models.Quote
		err error
	)
	switch {
	case req.QuoteID != "":
		q, err = h.Quotes.Quote(ctx, req.QuoteID)
	case len(req.Services) > 0:
		q, err = h.Quotes.Build(uuid.NewString(), req.Services)
	default:
		err = models.NewValidationError("select at least one service")
	}
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.Bookings.Create(ctx, booking.CreateInput{
		Quote:    q,
		Customer: req.Customer,
		Schedule: req.Schedule,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.QuoteID != "" {
		if err := h.Quotes.Discard(ctx, req.QuoteID); err != nil {
			logger.Warn("Failed to discard quote after booking", zap.String("quoteID", req.QuoteID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, models.BookingReceipt{
		BookingID:     b.ID,
		Status:        b.Status,
		TotalAmount:   b.TotalAmount,
		DepositAmount: b.DepositAmount,
		Currency:      h.Currency,
	})
}

// StartCheckout handles POST /api/bookings/:id/checkout.
func (h *BookingHandler) StartCheckout(c *gin.Context) {
	session, err := h.Bookings.StartCheckout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
