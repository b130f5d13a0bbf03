package domain

// Stats is a global snapshot for operators.
type Stats struct {
	Accounts      int64   `json:"accounts"`
	ActiveToday   int64   `json:"active_today"`
	TotalCoins    float64 `json:"total_coins"`
	TotalReferred int64   `json:"total_referred"`
}
