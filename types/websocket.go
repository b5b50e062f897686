package types

import "encoding/json"

const (
	TypeWebsocketPing = "ping"
	TypeWebsocketPong = "pong"
	TypeWebsocketChat = "chat"
)

type WebsocketRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
