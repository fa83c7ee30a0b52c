package handlers

import (
	"net/http"

	"studiobook/models"
	"studiobook/services/storage"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	Media *storage.MediaService
}

// ListMedia handles GET /api/media?kind=image|video|audio.
func (h *MediaHandler) ListMedia(c *gin.Context) {
	items, err := h.Media.List(c.Request.Context(), c.Query("kind"))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	c.JSON(http.StatusOK, gin.H{"media": items})
}
