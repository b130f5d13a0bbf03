package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the settled account snapshot.
func (h *Handler) Me(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	view, err := h.Economy.State(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type coinImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// SelectCoinImage switches the cosmetic coin skin.
func (h *Handler) SelectCoinImage(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	var req coinImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "image is required")
		return
	}

	if err := h.Economy.SelectCoinImage(c.Request.Context(), id, req.Image); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected_coin_image": req.Image})
}
