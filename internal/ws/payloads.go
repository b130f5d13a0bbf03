package ws

import "encoding/json"

// client -> server
type Inbound struct {
	Type  string `json:"type"`
	Count int    `json:"count,omitempty"`
}

// server -> client
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

type ReferralPayload struct {
	Newcomer string  `json:"newcomer"`
	Bonus    float64 `json:"bonus"`
}

func encode(msg Outbound) []byte {
	b, err := json.Marshal(msg)
	if err != nil {
		b, _ = json.Marshal(Outbound{Type: MsgError, Error: "encode failed", Code: "internal_error"})
	}
	return b
}
