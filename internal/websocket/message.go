package websocket

import "encoding/json"

type OutgoingMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// IncomingMessage is a client envelope. From is stamped by the server from the
// authenticated connection and never trusted from the payload.
type IncomingMessage struct {
	From  string          `json:"-"`
	Name  string          `json:"-"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
