package handlers

import (
	"net/http"

	"studiobook/services/quote"

	"github.com/gin-gonic/gin"
)

// QuoteHandler exposes the pricing calculator.
type QuoteHandler struct {
	Service *quote.Service
}

type selectionsRequest struct {
	Services []quote.Selection `json:"services" binding:"dive"`
}

// StartQuote handles POST /api/quotes.
func (h *QuoteHandler) StartQuote(c *gin.Context) {
	var req selectionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	priced, err := h.Service.Start(c.Request.Context(), req.Services)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, priced)
}

// GetQuote handles GET /api/quotes/:id.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	priced, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, priced)
}

// ToggleService handles POST /api/quotes/:id/toggle.
func (h *QuoteHandler) ToggleService(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	priced, err := h.Service.Toggle(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, priced)
}

// SetMultiplier handles PUT /api/quotes/:id/multiplier.
func (h *QuoteHandler) SetMultiplier(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value int    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	priced, err := h.Service.SetMultiplier(c.Request.Context(), c.Param("id"), req.Key, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, priced)
}

// DiscardQuote handles DELETE /api/quotes/:id.
func (h *QuoteHandler) DiscardQuote(c *gin.Context) {
	if err := h.Service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Calculate handles POST /api/quotes/calculate.
func (h *QuoteHandler) Calculate(c *gin.Context) {
	var req selectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	priced, err := h.Service.Calculate(req.Services)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, priced)
}
