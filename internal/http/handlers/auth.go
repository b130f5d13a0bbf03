package handlers

import (
	"net/http"
	"net/url"

	"tapcoin/internal/logger"
	"tapcoin/internal/service"
	"tapcoin/internal/telegram"

	"github.com/gin-gonic/gin"
)

const maxInitDataLen = 4096

type AuthRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// Auth exchanges Mini App init data for a session token. The first call
// creates the account; start_param=ref_<code> credits the inviter.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "init_data is required")
		return
	}
	if len(req.InitData) > maxInitDataLen {
		badRequest(c, "init_data too long")
		return
	}

	values, err := h.verify(req.InitData)
	if err != nil {
		fail(c, err)
		return
	}

	data, err := telegram.ParseWebAppData(values)
	if err != nil {
		fail(c, service.ErrInvalidProfile)
		return
	}

	ctx := c.Request.Context()
	acc, created, err := h.Economy.Register(ctx, data.Profile(), data.ReferralCode())
	if err != nil {
		fail(c, err)
		return
	}

	token, err := h.Tokens.Issue(acc.TelegramID)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := h.Economy.State(ctx, acc.TelegramID)
	if err != nil {
		fail(c, err)
		return
	}

	if created {
		logger.WithContext(ctx).Info("new player", "tg_id", acc.TelegramID, "start_param", data.StartParam)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"created":       created,
		"account":       view,
		"referral_link": telegram.ReferralLink(h.cfg.BotUsername, acc.ReferralCode),
	})
}

func (h *Handler) verify(initData string) (url.Values, error) {
	values, err := service.ValidateInitData(initData, h.cfg.BotToken, h.cfg.InitDataMaxAge, h.Now())
	if err == nil || !h.cfg.UnsignedInitData {
		return values, err
	}
	// local browser without Telegram
	values, perr := url.ParseQuery(initData)
	if perr != nil {
		return nil, service.ErrInvalidInitData
	}
	logger.Warn("accepting unsigned init data")
	return values, nil
}
