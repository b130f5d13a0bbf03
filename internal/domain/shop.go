package domain

// ShopItem is a regular upgrade that raises profit per hour.
type ShopItem struct {
	ID         int64   `db:"id" json:"id"`
	AccountID  int64   `db:"account_id" json:"-"`
	Key        string  `db:"item_key" json:"key"`
	Name       string  `db:"name" json:"name"`
	Image      string  `db:"image" json:"image,omitempty"`
	BasePrice  float64 `db:"base_price" json:"base_price"`
	BaseProfit float64 `db:"base_profit" json:"base_profit"`
	Level      int     `db:"level" json:"level"`
}

// PremiumShopItem is an upgrade that raises click power.
type PremiumShopItem struct {
	ID        int64   `db:"id" json:"id"`
	AccountID int64   `db:"account_id" json:"-"`
	Key       string  `db:"item_key" json:"key"`
	Name      string  `db:"name" json:"name"`
	Image     string  `db:"image" json:"image,omitempty"`
	BasePrice float64 `db:"base_price" json:"base_price"`
	Effect    string  `db:"effect" json:"effect"`
	Level     int     `db:"level" json:"level"`
}
