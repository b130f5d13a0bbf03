package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Shop lists regular and premium items with their next-level prices.
func (h *Handler) Shop(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	out, err := h.Economy.Shop(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Buy purchases one level of an item; ?premium=true selects the premium
// catalog.
func (h *Handler) Buy(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	premium := c.Query("premium") == "true"

	out, err := h.Economy.Purchase(c.Request.Context(), id, itemID, premium)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
