package handlers

import (
	"strconv"
	"time"

	"tapcoin/internal/http/middleware"
	"tapcoin/internal/service"

	"github.com/gin-gonic/gin"
)

// HandlerConfig holds the request-facing knobs of the API.
type HandlerConfig struct {
	BotToken       string
	BotUsername    string
	InitDataMaxAge time.Duration

	// UnsignedInitData accepts init data without a valid hash.
	UnsignedInitData bool
}

type Handler struct {
	Economy *service.EconomyService
	Tokens  *service.TokenIssuer
	cfg     HandlerConfig
	Now     func() time.Time
}

func NewHandler(economy *service.EconomyService, tokens *service.TokenIssuer, cfg HandlerConfig) *Handler {
	if cfg.InitDataMaxAge <= 0 {
		cfg.InitDataMaxAge = service.DefaultInitDataMaxAge
	}
	return &Handler{
		Economy: economy,
		Tokens:  tokens,
		cfg:     cfg,
		Now:     time.Now,
	}
}

// playerID reads the authenticated Telegram id; it aborts with 401 when
// the JWT middleware did not run.
func playerID(c *gin.Context) (int64, bool) {
	id, ok := middleware.TelegramID(c)
	if !ok {
		fail(c, errUnauthorized)
		return 0, false
	}
	return id, true
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def, maxVal int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return def
	}
	if n > maxVal {
		return maxVal
	}
	return n
}
