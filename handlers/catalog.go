package handlers

import (
	"net/http"

	"studiobook/services/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog  catalog.Catalog
	Currency string
}

// ListServices handles GET /api/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currency":   h.Currency,
		"categories": h.Catalog.Categories(),
	})
}
