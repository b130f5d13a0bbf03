package handlers

import (
	"net/http"

	"tapcoin/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top accounts by coins.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", service.DefaultLeaderboardSize, service.MaxLeaderboardSize)

	top, err := h.Economy.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// GetMyRank returns the current player's leaderboard position.
func (h *Handler) GetMyRank(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	rank, err := h.Economy.Rank(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank})
}

// GetHistory returns the player's ledger, newest first. ?type= filters by
// transaction type.
func (h *Handler) GetHistory(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", service.DefaultHistorySize, service.MaxHistorySize)

	rows, err := h.Economy.History(c.Request.Context(), id, c.Query("type"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}
