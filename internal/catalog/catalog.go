// Package catalog holds the starting set of shop items, tasks and trophies
// copied into every new account.
package catalog

import "tapcoin/internal/domain"

// Seed is the set of sub-entities created with an account.
type Seed struct {
	ShopItems    []domain.ShopItem
	PremiumItems []domain.PremiumShopItem
	Tasks        []domain.Task
	Trophies     []domain.Trophy
}

// Default returns the standard catalog. Every call returns fresh slices.
func Default() Seed {
	return Seed{
		ShopItems: []domain.ShopItem{
			{Key: "mining_rig", Name: "Mining Rig", Image: "rig.png", BasePrice: 500, BaseProfit: 50, Level: 1},
			{Key: "staking_node", Name: "Staking Node", Image: "node.png", BasePrice: 1000, BaseProfit: 90, Level: 1},
			{Key: "trading_bot", Name: "Trading Bot", Image: "bot.png", BasePrice: 2500, BaseProfit: 200, Level: 1},
			{Key: "nft_gallery", Name: "NFT Gallery", Image: "gallery.png", BasePrice: 5000, BaseProfit: 380, Level: 1},
			{Key: "dex_listing", Name: "DEX Listing", Image: "dex.png", BasePrice: 10000, BaseProfit: 700, Level: 1},
			{Key: "data_center", Name: "Data Center", Image: "dc.png", BasePrice: 25000, BaseProfit: 1600, Level: 1},
		},
		PremiumItems: []domain.PremiumShopItem{
			{Key: "golden_finger", Name: "Golden Finger", Image: "finger.png", BasePrice: 2000, Effect: "click_power", Level: 1},
			{Key: "quantum_tap", Name: "Quantum Tap", Image: "quantum.png", BasePrice: 10000, Effect: "click_power", Level: 1},
		},
		Tasks: []domain.Task{
			{Key: "join_channel", Title: "Join our channel", Description: "Subscribe to the announcements channel", Link: "https://t.me/tapcoin_news", Reward: 5000, MaxProgress: 1},
			{Key: "invite_friends", Title: "Invite 3 friends", Description: "Friends must open the game from your link", Reward: 25000, MaxProgress: 3},
			{Key: "tap_1000", Title: "Tap 1000 times", Description: "Tap the coin 1000 times", Reward: 10000, MaxProgress: 1000},
			{Key: "daily_week", Title: "7 day streak", Description: "Claim the daily reward 7 days in a row", Reward: 20000, MaxProgress: 7},
		},
		Trophies: []domain.Trophy{
			{Key: "bronze", Name: "Bronze", Requirement: 10000, Reward: 1000},
			{Key: "silver", Name: "Silver", Requirement: 100000, Reward: 10000},
			{Key: "gold", Name: "Gold", Requirement: 1000000, Reward: 100000},
			{Key: "platinum", Name: "Platinum", Requirement: 10000000, Reward: 1000000},
			{Key: "diamond", Name: "Diamond", Requirement: 100000000, Reward: 10000000},
		},
	}
}

// Task keys advanced by the server itself rather than by the client.
const (
	TaskInviteFriends = "invite_friends"
	TaskTap1000       = "tap_1000"
	TaskDailyWeek     = "daily_week"
)

// CoinImages lists the selectable coin skins.
var CoinImages = []string{domain.DefaultCoinImage, "gold", "silver", "ton", "diamond"}

// ValidCoinImage reports whether name is a known coin skin.
func ValidCoinImage(name string) bool {
	for _, img := range CoinImages {
		if img == name {
			return true
		}
	}
	return false
}
