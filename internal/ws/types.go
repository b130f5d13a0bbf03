package ws

const (
	// client -> server
	MsgTap   = "tap"
	MsgBoost = "boost"
	MsgPing  = "ping"

	// both directions; a client may request a fresh snapshot
	MsgState = "state"

	// server -> client
	MsgReady      = "ready"
	MsgTapResult  = "tap_result"
	MsgPong       = "pong"
	MsgReferral   = "referral_joined"
	MsgDailyCycle = "daily_cycle_completed"
	MsgError      = "error"
)
