// Package telegram decodes the Telegram payloads the game receives: Mini
// App init data and /start deep-link parameters.
package telegram

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tapcoin/internal/domain"
)

var ErrNoUser = errors.New("init data has no user")

// WebAppUser is the user object embedded in init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	IsPremium bool   `json:"is_premium"`
}

// WebAppData is the decoded, already verified init data.
type WebAppData struct {
	User       WebAppUser
	StartParam string
	AuthDate   time.Time
}

// Profile converts the Telegram user to the account identity.
func (d *WebAppData) Profile() domain.Profile {
	return domain.Profile{
		TelegramID: d.User.ID,
		Username:   d.User.Username,
		FirstName:  d.User.FirstName,
	}
}

// ReferralCode extracts the invite code from start_param, if any.
func (d *WebAppData) ReferralCode() string {
	return ReferralCode(d.StartParam)
}

// ParseWebAppData decodes verified init data fields.
func ParseWebAppData(values url.Values) (*WebAppData, error) {
	raw := values.Get("user")
	if raw == "" {
		return nil, ErrNoUser
	}

	var d WebAppData
	if err := json.Unmarshal([]byte(raw), &d.User); err != nil {
		return nil, err
	}
	if d.User.ID == 0 {
		return nil, ErrNoUser
	}
	d.StartParam = values.Get("start_param")
	if ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		d.AuthDate = time.Unix(ts, 0)
	}
	return &d, nil
}

// referral deep links look like t.me/<bot>?start=ref_<code>
const referralPrefix = "ref_"

// ReferralCode returns the code in a ref_<code> parameter or "".
func ReferralCode(param string) string {
	param = strings.TrimSpace(param)
	if !strings.HasPrefix(param, referralPrefix) {
		return ""
	}
	return strings.TrimPrefix(param, referralPrefix)
}

// ReferralParam builds the start parameter for a code.
func ReferralParam(code string) string {
	return referralPrefix + code
}

// ReferralLink is the shareable bot link for a code.
func ReferralLink(botUsername, code string) string {
	return "https://t.me/" + strings.TrimPrefix(botUsername, "@") + "?start=" + ReferralParam(code)
}
