package engine

import (
	"SamLoc/internal/game/rules"
	"SamLoc/internal/game/table"
)

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"cardCount"`
	InRound   bool   `json:"inRound"`
}

type TableView struct {
	Cards      []string     `json:"cards"`
	Combo      *rules.Combo `json:"combo"`
	HolderID   string       `json:"holderId,omitempty"`
	HolderName string       `json:"holderName,omitempty"`
}

type DeclareView struct {
	DeadlineMs int64           `json:"deadline"`
	Choices    map[string]bool `json:"choices"`
}

type SamView struct {
	DeclaredBy string `json:"declaredBy,omitempty"`
	Active     bool   `json:"active"`
	Failed     bool   `json:"failed"`
}

type Bao1View struct {
	Active   bool   `json:"active"`
	PlayerID string `json:"playerId,omitempty"`
}

// Snapshot is the shared view of a room. It never carries hand contents.
type Snapshot struct {
	ID       string         `json:"id"`
	HostID   string         `json:"hostId"`
	HostName string         `json:"hostName"`
	Started  bool           `json:"started"`
	Phase    Phase          `json:"phase"`
	TurnID   string         `json:"turnId"`
	TurnName string         `json:"turnName"`
	Players  []PlayerView   `json:"players"`
	Points   map[string]int `json:"points"`
	Table    TableView      `json:"table"`
	Declare  *DeclareView   `json:"declare,omitempty"`
	Sam      SamView        `json:"sam"`
	Bao1     Bao1View       `json:"bao1"`
}

func (r *Room) Snapshot() Snapshot {
	s := Snapshot{
		ID:      r.ID,
		HostID:  r.hostID,
		Started: r.InRound(),
		Phase:   r.phase,
		TurnID:  r.TurnID(),
		Points:  r.Points(),
		Table: TableView{
			Cards: table.IDs(r.trick.Cards),
			Combo: r.trick.Combo,
		},
		Sam: SamView{
			DeclaredBy: r.sam.DeclaredBy,
			Active:     r.sam.Active,
			Failed:     r.sam.Failed,
		},
		Bao1: Bao1View{Active: r.bao1.Active, PlayerID: r.bao1.PlayerID},
	}
	if s.HostID != "" {
		s.HostName = r.Name(s.HostID)
	}
	if s.TurnID != "" {
		s.TurnName = r.Name(s.TurnID)
	}
	if h := r.trick.HolderID; h != "" {
		s.Table.HolderID = h
		s.Table.HolderName = r.Name(h)
	}
	for _, p := range r.players {
		s.Players = append(s.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(r.hands[p.ID]),
			InRound:   r.inRound[p.ID],
		})
	}
	if r.phase == PhaseDeclareSam {
		s.Declare = &DeclareView{
			DeadlineMs: r.declare.Deadline.UnixMilli(),
			Choices:    r.Choices(),
		}
	}
	return s
}

// AdminView is the operator dump of a room, hands included.
type AdminView struct {
	ID      string              `json:"id"`
	Phase   Phase               `json:"phase"`
	HostID  string              `json:"hostId"`
	TurnID  string              `json:"turnId"`
	Players []Player            `json:"players"`
	Hands   map[string][]string `json:"hands"`
	Points  map[string]int      `json:"points"`
}

func (r *Room) AdminView() AdminView {
	v := AdminView{
		ID:      r.ID,
		Phase:   r.phase,
		HostID:  r.hostID,
		TurnID:  r.TurnID(),
		Players: r.Players(),
		Hands:   make(map[string][]string, len(r.players)),
		Points:  r.Points(),
	}
	for _, p := range r.players {
		v.Hands[p.ID] = table.IDs(r.hands[p.ID])
	}
	return v
}
