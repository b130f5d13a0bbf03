package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"tapcoin/internal/logger"
	"tapcoin/internal/service"

	"github.com/gorilla/websocket"
)

// ws_smoke logs in against a running server with signed init data, opens
// the game socket and taps a few times.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	tgID := flag.Int64("tg", 3001, "telegram id")
	taps := flag.Int("taps", 5, "taps to send")
	flag.Parse()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN not set")
	}

	v := url.Values{}
	v.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	v.Set("user", fmt.Sprintf(`{"id":%d,"username":"smoke%d","first_name":"Smoke"}`, *tgID, *tgID))
	v.Set("hash", service.SignInitData(v, botToken))

	body, _ := json.Marshal(map[string]string{"init_data": v.Encode()})
	resp, err := http.Post("http://"+*addr+"/api/v1/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Fatal("auth request failed", "error", err)
	}
	defer resp.Body.Close()

	var auth struct {
		Token   string `json:"token"`
		Created bool   `json:"created"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil || auth.Token == "" {
		logger.Fatal("auth failed", "status", resp.StatusCode, "error", auth.Error)
	}
	logger.Info("authenticated", "tg_id", *tgID, "created", auth.Created)

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/ws?token="+url.QueryEscape(auth.Token), nil)
	if err != nil {
		logger.Fatal("dial failed", "error", err)
	}
	defer conn.Close()

	read := func() map[string]any {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Fatal("read failed", "error", err)
		}
		return msg
	}

	// ready, then the initial state
	logger.Info("got", "type", read()["type"])
	logger.Info("got", "type", read()["type"])

	for i := 0; i < *taps; i++ {
		if err := conn.WriteJSON(map[string]any{"type": "tap", "count": 1}); err != nil {
			logger.Fatal("write failed", "error", err)
		}
		msg := read()
		logger.Info("tap", "type", msg["type"], "data", msg["data"], "code", msg["code"])
	}

	logger.Info("smoke test finished")
}
