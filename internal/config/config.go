package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tapcoin/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	Version     string
	DatabaseURL string
	DevMode     bool

	// UnsignedInitData (DEV_UNSIGNED_INIT_DATA) accepts init data without a
	// valid hash. Only allowed with DEV_MODE and no DATABASE_URL.
	UnsignedInitData bool

	BotToken         string
	BotUsername      string
	WebAppURL        string
	BotEnabled       bool
	AdminTelegramIDs []int64 // ADMIN_TELEGRAM_IDS, comma separated

	JWTSecret      string
	TokenTTL       time.Duration
	InitDataMaxAge time.Duration
	AllowedOrigin  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
	TapRateLimit   int
	TapRateWindow  time.Duration

	DailyLocation    *time.Location
	ReferralBonus    float64
	TapMaxPerRequest int

	LogLevel string
	LogJSON  bool
}

// Load reads .env (if present) and the environment. Missing required
// settings are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:          orDefault(getenv("APP_PORT"), "8080"),
		Version:          orDefault(getenv("APP_VERSION"), "dev"),
		DatabaseURL:      getenv("DATABASE_URL"),
		DevMode:          getenv("DEV_MODE") == "true",
		UnsignedInitData: getenv("DEV_UNSIGNED_INIT_DATA") == "true",
		BotToken:         getenv("BOT_TOKEN"),
		BotUsername:      orDefault(getenv("BOT_USERNAME"), "TapCoinBot"),
		WebAppURL:        getenv("WEBAPP_URL"),
		BotEnabled:       getenv("BOT_ENABLED") == "true",
		JWTSecret:        getenv("JWT_SECRET"),
		AllowedOrigin:    getenv("ALLOWED_ORIGIN"),
		RedisAddr:        getenv("REDIS_ADDR"),
		RedisPassword:    getenv("REDIS_PASSWORD"),
		LogLevel:         orDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:          getenv("LOG_JSON") == "true",
		RedisDB:          intOr(getenv("REDIS_DB"), 0),
		TokenTTL:         secondsOr(getenv("TOKEN_TTL_SECONDS"), 24*time.Hour),
		InitDataMaxAge:   secondsOr(getenv("INIT_DATA_MAX_AGE_SECONDS"), time.Hour),
		APIRateLimit:     intOr(getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:    secondsOr(getenv("API_RATE_WINDOW_SECONDS"), time.Minute),
		AuthRateLimit:    intOr(getenv("AUTH_RATE_LIMIT"), 10),
		AuthRateWindow:   secondsOr(getenv("AUTH_RATE_WINDOW_SECONDS"), time.Minute),
		TapRateLimit:     intOr(getenv("TAP_RATE_LIMIT"), 300),
		TapRateWindow:    secondsOr(getenv("TAP_RATE_WINDOW_SECONDS"), time.Minute),
		TapMaxPerRequest: intOr(getenv("TAP_MAX_PER_REQUEST"), 100),
		ReferralBonus:    floatOr(getenv("REFERRAL_BONUS"), 5000),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}
	if cfg.DatabaseURL == "" && !cfg.DevMode {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.UnsignedInitData && (!cfg.DevMode || cfg.DatabaseURL != "") {
		return nil, errors.New("DEV_UNSIGNED_INIT_DATA requires DEV_MODE and no DATABASE_URL")
	}

	cfg.DailyLocation = time.UTC
	if tz := getenv("DAILY_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("DAILY_TIMEZONE: %w", err)
		}
		cfg.DailyLocation = loc
	}

	if ids := getenv("ADMIN_TELEGRAM_IDS"); ids != "" {
		for _, idStr := range strings.Split(ids, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				cfg.AdminTelegramIDs = append(cfg.AdminTelegramIDs, id)
			}
		}
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	return def
}

func floatOr(v string, def float64) float64 {
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
		return f
	}
	return def
}

func secondsOr(v string, def time.Duration) time.Duration {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
