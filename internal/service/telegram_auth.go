package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrStaleInitData   = errors.New("telegram init data expired")
)

// DefaultInitDataMaxAge bounds how old auth_date may be.
const DefaultInitDataMaxAge = time.Hour

// allowed clock skew for auth_date in the future
const initDataSkew = 5 * time.Minute

// webAppSecret derives the signing key: HMAC_SHA256(key="WebAppData", botToken).
func webAppSecret(botToken string) []byte {
	h := hmac.New(sha256.New, []byte("WebAppData"))
	h.Write([]byte(botToken))
	return h.Sum(nil)
}

// dataCheckString joins every field except hash as sorted key=value lines.
func dataCheckString(values url.Values) string {
	var lines []string
	for k, v := range values {
		if k == "hash" {
			continue
		}
		lines = append(lines, k+"="+strings.Join(v, ""))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// SignInitData returns the hex hash Telegram would attach to values. Used
// by tests and cmd/create_test_user.
func SignInitData(values url.Values, botToken string) string {
	h := hmac.New(sha256.New, webAppSecret(botToken))
	h.Write([]byte(dataCheckString(values)))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateInitData verifies the Mini App init data signature and that
// auth_date is within maxAge of now.
func ValidateInitData(initData, botToken string, maxAge time.Duration, now time.Time) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	provided, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(provided) == 0 {
		return nil, ErrInvalidInitData
	}

	h := hmac.New(sha256.New, webAppSecret(botToken))
	h.Write([]byte(dataCheckString(values)))
	if !hmac.Equal(h.Sum(nil), provided) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	if maxAge <= 0 {
		maxAge = DefaultInitDataMaxAge
	}
	issued := time.Unix(authDate, 0)
	if now.Sub(issued) > maxAge || issued.Sub(now) > initDataSkew {
		return nil, ErrStaleInitData
	}

	values.Del("hash")
	return values, nil
}
