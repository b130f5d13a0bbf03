package handlers

import (
	"net/http"

	"tapcoin/internal/telegram"

	"github.com/gin-gonic/gin"
)

// Referral returns the player's invite link and the accounts it brought.
func (h *Handler) Referral(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	stats, err := h.Economy.ReferralStats(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"link":  telegram.ReferralLink(h.cfg.BotUsername, stats.Code),
		"bonus": h.Economy.ReferralBonus,
	})
}
