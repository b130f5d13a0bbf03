package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type tapRequest struct {
	Count int `json:"count"`
}

// Tap applies a batch of taps. An empty body counts as one tap.
func (h *Handler) Tap(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	var req tapRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid tap request")
		return
	}
	if req.Count < 0 {
		badRequest(c, "count must be positive")
		return
	}

	out, err := h.Economy.Tap(c.Request.Context(), id, req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Boost starts the tap multiplier.
func (h *Handler) Boost(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	view, err := h.Economy.ActivateBooster(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ClaimProfit moves accumulated passive income into the balance.
func (h *Handler) ClaimProfit(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	out, err := h.Economy.ClaimProfit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ClaimDaily pays today's reward of the 30-day cycle.
func (h *Handler) ClaimDaily(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	out, err := h.Economy.ClaimDailyReward(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Daily returns the reward table with the player's position in it.
func (h *Handler) Daily(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	out, err := h.Economy.Daily(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
