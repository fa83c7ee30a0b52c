package handlers

import (
	"net/http"
	"strconv"

	"studiobook/middleware"
	"studiobook/models"
	"studiobook/services/admin"
	"studiobook/services/booking"
	"studiobook/services/storage"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator-only endpoints.
type AdminHandler struct {
	Auth       *admin.AuthService
	Controller *admin.Controller
	Media      *storage.MediaService
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBookings handles GET /api/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := models.BookingFilter{
		Status:        models.BookingStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		From:          c.Query("from"),
		To:            c.Query("to"),
		Limit:         limit,
		Offset:        offset,
	}
	bookings, total, err := h.Controller.ListBookings(c.Request.Context(), middleware.OperatorFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total})
}

// bookingDetail is a booking plus the statuses the dashboard may offer.
type bookingDetail struct {
	*models.Booking
	AllowedTransitions []models.BookingStatus `json:"allowedTransitions"`
}

// GetBooking handles GET /api/admin/bookings/:id.
func (h *AdminHandler) GetBooking(c *gin.Context) {
	b, err := h.Controller.GetBooking(c.Request.Context(), middleware.OperatorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingDetail{Booking: b, AllowedTransitions: booking.AllowedTargets(b.Status)})
}

// Notifications handles GET /api/admin/bookings/:id/notifications.
func (h *AdminHandler) Notifications(c *gin.Context) {
	intents, err := h.Controller.Notifications(c.Request.Context(), middleware.OperatorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if intents == nil {
		intents = []models.NotificationIntent{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": intents})
}

// Transition handles POST /api/admin/bookings/:id/transition.
func (h *AdminHandler) Transition(c *gin.Context) {
	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Controller.Transition(c.Request.Context(), middleware.OperatorFrom(c), c.Param("id"), models.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UploadMedia handles POST /api/admin/media (multipart: file, kind, title).
func (h *AdminHandler) UploadMedia(c *gin.Context) {
	if !middleware.OperatorFrom(c).IsOperator() {
		respondError(c, models.NewUnauthorizedError("operator credentials required"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	item, err := h.Media.Upload(c.Request.Context(), models.MediaKind(c.PostForm("kind")), c.PostForm("title"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteMedia handles DELETE /api/admin/media/:id.
func (h *AdminHandler) DeleteMedia(c *gin.Context) {
	if !middleware.OperatorFrom(c).IsOperator() {
		respondError(c, models.NewUnauthorizedError("operator credentials required"))
		return
	}
	if err := h.Media.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
