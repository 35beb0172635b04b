package manager

import (
	"encoding/json"

	"SamLoc/internal/game/engine"
	"SamLoc/internal/utils"
	"SamLoc/internal/websocket"
)

type namePayload struct {
	Name string `json:"name"`
}

type joinPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

type declarePayload struct {
	Flag bool `json:"flag"`
}

type playPayload struct {
	CardIDs []string `json:"cardIds"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// Result is sent to the acting player after every command.
type Result struct {
	Command        string   `json:"command"`
	OK             bool     `json:"ok"`
	Reason         string   `json:"reason,omitempty"`
	RoomID         string   `json:"roomId,omitempty"`
	SystemMessages []string `json:"systemMessages,omitempty"`
	Win            bool     `json:"win,omitempty"`
	WinnerID       string   `json:"winnerId,omitempty"`
	WhiteWin       bool     `json:"whiteWin,omitempty"`
	SamCaught      bool     `json:"samCaught,omitempty"`
	LoserID        string   `json:"loserId,omitempty"`
	CatcherID      string   `json:"catcherId,omitempty"`
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrBadPayload
	}
	return nil
}

// nameOr prefers the name in the payload and falls back to the connection's.
func nameOr(payload, conn string) string {
	if cleanName(payload) != "" {
		return payload
	}
	return conn
}

// HandlePlayerMessage 统一入口（来自 Hub.OnIncoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	res := Result{Command: msg.Event}
	var err error

	switch msg.Event {
	case "create_room":
		var p namePayload
		if err = decode(msg.Data, &p); err == nil {
			res.RoomID, err = m.CreateRoom(msg.From, nameOr(p.Name, msg.Name))
		}

	case "join_room":
		var p joinPayload
		if err = decode(msg.Data, &p); err == nil {
			err = m.JoinRoom(msg.From, p.RoomID, nameOr(p.Name, msg.Name))
			res.RoomID = p.RoomID
		}

	case "leave_room":
		m.LeaveRoom(msg.From)

	case "start_game":
		var sr engine.StartResult
		if sr, err = m.StartGame(msg.From); err == nil {
			res.WhiteWin = sr.WhiteWin
			res.WinnerID = sr.WinnerID
			res.SystemMessages = sr.Messages
		}

	case "declare_sam":
		var p declarePayload
		if err = decode(msg.Data, &p); err == nil {
			err = m.DeclareSam(msg.From, p.Flag)
		}

	case "pass":
		err = m.Pass(msg.From)

	case "play_cards":
		var p playPayload
		if err = decode(msg.Data, &p); err == nil {
			var pr engine.PlayResult
			if pr, err = m.Play(msg.From, p.CardIDs); err == nil {
				res.SystemMessages = pr.Messages
				res.Win = pr.Win
				res.WinnerID = pr.WinnerID
				res.SamCaught = pr.SamCaught
				res.LoserID = pr.LoserID
				res.CatcherID = pr.CatcherID
			}
		}

	case "new_round":
		err = m.NewRound(msg.From)

	case "chat":
		var p chatPayload
		if err = decode(msg.Data, &p); err == nil {
			err = m.Chat(msg.From, p.Text)
		}

	default:
		err = ErrUnknownEvent
	}

	res.OK = err == nil
	if err != nil {
		res.Reason = Reason(err)
		if res.Reason == "INTERNAL" {
			utils.Log.Error("command failed", "event", msg.Event, "player", msg.From, "err", err)
		} else {
			utils.Log.Debug("command rejected", "event", msg.Event, "player", msg.From, "reason", res.Reason)
		}
	}
	m.hub.SendToPlayer(msg.From, websocket.OutgoingMessage{Event: "result", Data: res})
}

// Chat 桌内聊天广播
func (m *GameManager) Chat(playerID, text string) error {
	text = cleanName(text)
	if text == "" {
		return ErrBadPayload
	}
	return m.withRoom(playerID, func(s *session) error {
		m.hub.BroadcastToPlayers(s.room.IDs(), websocket.OutgoingMessage{
			Event: "chat",
			Data: map[string]any{
				"from": s.room.Name(playerID),
				"text": text,
			},
		})
		return nil
	})
}

// HandleDisconnect treats a dropped connection as leaving the room.
func (m *GameManager) HandleDisconnect(playerID string) {
	if code, ok := m.RoomOf(playerID); ok {
		utils.Log.Info("player disconnected", "room", code, "player", playerID)
		m.LeaveRoom(playerID)
	}
}
