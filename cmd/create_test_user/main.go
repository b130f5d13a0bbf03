package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"tapcoin/internal/db"
	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
	"tapcoin/internal/logger"
	"tapcoin/internal/repository"
	"tapcoin/internal/service"

	"github.com/joho/godotenv"
)

// create_test_user registers a player directly in Postgres and prints a
// session token plus signed init data for manual API testing.
func main() {
	tgID := flag.Int64("tg", 1234567890, "telegram id")
	username := flag.String("username", "testuser", "telegram username")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("connect failed", "error", err)
	}
	store := repository.New(pool)
	defer store.Close()

	svc := service.NewEconomyService(store, economy.DefaultRules(), nil)
	acc, created, err := svc.Register(ctx, domain.Profile{TelegramID: *tgID, Username: *username, FirstName: "Tester"}, "")
	if err != nil {
		logger.Fatal("register failed", "error", err)
	}
	logger.Info("player ready", "id", acc.ID, "tg_id", acc.TelegramID, "created", created, "referral_code", acc.ReferralCode)

	token, err := service.NewTokenIssuer(secret, service.DefaultTokenTTL).Issue(acc.TelegramID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Printf("token=%s\n", token)

	if botToken := os.Getenv("BOT_TOKEN"); botToken != "" {
		v := url.Values{}
		v.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
		v.Set("user", fmt.Sprintf(`{"id":%d,"username":%q,"first_name":"Tester"}`, acc.TelegramID, acc.Username))
		v.Set("hash", service.SignInitData(v, botToken))
		fmt.Printf("init_data=%s\n", v.Encode())
	}
}
