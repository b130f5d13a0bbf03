package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapcoin/internal/bot"
	"tapcoin/internal/config"
	"tapcoin/internal/db"
	"tapcoin/internal/economy"
	httpServer "tapcoin/internal/http"
	"tapcoin/internal/http/middleware"
	"tapcoin/internal/logger"
	"tapcoin/internal/repository"
	"tapcoin/internal/repository/memstore"
	"tapcoin/internal/service"
	"tapcoin/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg)
	defer store.Close()

	rules := economy.DefaultRules()
	rules.Location = cfg.DailyLocation
	rules.MaxTapsPerRequest = cfg.TapMaxPerRequest

	economySvc := service.NewEconomyService(store, rules, nil)
	economySvc.ReferralBonus = cfg.ReferralBonus
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	hub := ws.NewHub(economySvc)
	notifiers := service.Notifiers{hub}

	var gameBot *bot.Bot
	if cfg.BotEnabled {
		b, err := bot.New(cfg.BotToken, economySvc, service.NewAdminService(economySvc), bot.Config{
			BotUsername: cfg.BotUsername,
			WebAppURL:   cfg.WebAppURL,
			AdminIDs:    cfg.AdminTelegramIDs,
		})
		if err != nil {
			logger.Error("telegram bot disabled", "error", err)
		} else {
			gameBot = b
			notifiers = append(notifiers, b)
			go gameBot.Start()
		}
	}
	economySvc.SetNotifier(notifiers)

	redisClient, err := middleware.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := httpServer.NewRouter(httpServer.Deps{
		Economy: economySvc,
		Tokens:  tokens,
		Limiter: middleware.NewRateLimiter(redisClient),
		Hub:     hub,
		Config:  cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if gameBot != nil {
		gameBot.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// openStore picks Postgres, or the in-memory store in DEV_MODE without a
// database.
func openStore(ctx context.Context, cfg *config.Config) service.Store {
	if cfg.DatabaseURL == "" {
		logger.Warn("DEV_MODE without DATABASE_URL: using in-memory store, data is lost on restart")
		return memstore.New()
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	return repository.New(pool)
}
