package http

import (
	"time"

	"tapcoin/internal/config"
	"tapcoin/internal/http/handlers"
	"tapcoin/internal/http/middleware"
	"tapcoin/internal/service"
	"tapcoin/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Economy *service.EconomyService
	Tokens  *service.TokenIssuer
	Limiter *middleware.RateLimiter
	Hub     *ws.Hub
	Config  *config.Config
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())
	r.Use(corsMiddleware(d.Config.AllowedOrigin))
	RegisterRoutes(r, d)
	return r
}

func corsMiddleware(origin string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if origin == "" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
	}
	return cors.New(cfg)
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Economy, d.Tokens, handlers.HandlerConfig{
		BotToken:         cfg.BotToken,
		BotUsername:      cfg.BotUsername,
		InitDataMaxAge:   cfg.InitDataMaxAge,
		UnsignedInitData: cfg.UnsignedInitData,
	})
	probes := handlers.NewProbes(d.Economy, cfg.Version).
		Optional("redis", handlers.PingFunc(d.Limiter.Ping))
	if d.Hub != nil {
		probes.Sockets(d.Hub.Connections)
	}

	// Health checks (no rate limiting)
	r.GET("/health", probes.Health)
	r.GET("/healthz", probes.Liveness)
	r.GET("/readyz", probes.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limits := routeLimits{
		api:  d.Limiter.Limit("api", cfg.APIRateLimit, cfg.APIRateWindow, middleware.KeyByIP),
		auth: d.Limiter.Limit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow, middleware.KeyByIP),
		tap:  d.Limiter.Limit("tap", cfg.TapRateLimit, cfg.TapRateWindow, middleware.KeyByAccount),
		jwt:  middleware.JWT(d.Tokens),
	}

	v1 := r.Group("/api/v1")
	v1.Use(gzip.Gzip(gzip.DefaultCompression), limits.api)
	registerAPIRoutes(v1, h, limits)

	// Legacy /api routes kept for older clients
	api := r.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression), limits.api)
	api.GET("/health", probes.Health)
	registerAPIRoutes(api, h, limits)

	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.Tokens, cfg.AllowedOrigin))
	}
}

type routeLimits struct {
	api, auth, tap, jwt gin.HandlerFunc
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, l routeLimits) {
	api.POST("/auth", l.auth, h.Auth)
	api.GET("/leaderboard", h.GetLeaderboard)

	me := api.Group("")
	me.Use(l.jwt)
	{
		me.GET("/me", h.Me)
		me.POST("/coin-image", h.SelectCoinImage)

		me.POST("/tap", l.tap, h.Tap)
		me.POST("/boost", h.Boost)
		me.POST("/profit/claim", h.ClaimProfit)

		me.GET("/daily", h.Daily)
		me.POST("/daily/claim", h.ClaimDaily)

		me.GET("/shop", h.Shop)
		me.POST("/shop/:id/buy", h.Buy)

		me.GET("/tasks", h.Tasks)
		me.POST("/tasks/:id/progress", h.TaskProgress)
		me.POST("/tasks/:id/claim", h.ClaimTask)

		me.GET("/trophies", h.Trophies)
		me.POST("/trophies/:id/claim", h.ClaimTrophy)

		me.GET("/referral", h.Referral)
		me.GET("/leaderboard/rank", h.GetMyRank)
		me.GET("/history", h.GetHistory)
	}
}
