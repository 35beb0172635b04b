package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"SamLoc/internal/game/dealer"
	"SamLoc/internal/game/rules"
	"SamLoc/internal/game/table"
)

// Phase is the room's position in the round state machine.
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"
	PhaseDeclareSam Phase = "DECLARE_SAM"
	PhasePlaying    Phase = "PLAYING"
	PhaseRoundEnd   Phase = "ROUND_END"
)

const (
	DefaultMaxPlayers    = 5
	MinPlayers           = 2
	HandSize             = 10
	DefaultDeclareWindow = 15 * time.Second
	MaxNameRunes         = 16
)

// Player is a seated participant. Seating order is join order and drives turns.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trick is the combination currently on the table and who put it there.
type Trick struct {
	Cards    []table.Card
	Combo    *rules.Combo
	HolderID string
}

type declareState struct {
	Deadline time.Time
	Choices  map[string]bool
}

type samState struct {
	DeclaredBy     string
	Active         bool
	Failed         bool
	PenaltyApplied bool
	RewardApplied  bool
}

// bao1State tracks the single Báo-1 window of a round. A later trigger replaces it.
type bao1State struct {
	Active     bool
	PlayerID   string // the player down to one card
	WatchedID  string // the player who played right before them, until their next single
	Violated   bool
	OffenderID string
}

// Room is the authoritative state of one game table. It is not safe for
// concurrent use; callers serialise commands per room.
type Room struct {
	ID string

	maxPlayers    int
	declareWindow time.Duration
	now           func() time.Time
	dealer        *dealer.Dealer

	players      []Player
	hostID       string
	phase        Phase
	turn         int
	lastWinnerID string

	points    map[string]int
	hands     map[string][]table.Card
	playedAny map[string]bool
	inRound   map[string]bool
	discard   []table.Card
	stock     []table.Card
	settled   bool

	trick  Trick
	passed map[string]bool

	declare      declareState
	sam          samState
	bao1         bao1State
	lastPlayerID string
}

type Option func(*Room)

func WithMaxPlayers(n int) Option {
	return func(r *Room) {
		if n >= MinPlayers && n <= DefaultMaxPlayers {
			r.maxPlayers = n
		}
	}
}

func WithDeclareWindow(d time.Duration) Option {
	return func(r *Room) {
		if d >= 0 {
			r.declareWindow = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Room) { r.now = now }
}

func WithDealer(d *dealer.Dealer) Option {
	return func(r *Room) { r.dealer = d }
}

func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		ID:            id,
		maxPlayers:    DefaultMaxPlayers,
		declareWindow: DefaultDeclareWindow,
		now:           time.Now,
		phase:         PhaseLobby,
		points:        make(map[string]int),
		hands:         make(map[string][]table.Card),
		playedAny:     make(map[string]bool),
		inRound:       make(map[string]bool),
		passed:        make(map[string]bool),
		declare:       declareState{Choices: make(map[string]bool)},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dealer == nil {
		r.dealer = dealer.NewDealer(time.Now().UnixNano())
	}
	return r
}

// NormalizeName trims and collapses whitespace and caps the length. An empty
// result falls back to the first characters of the player id.
func NormalizeName(name, id string) string {
	clean := strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(clean) > MaxNameRunes {
		clean = strings.TrimSpace(string([]rune(clean)[:MaxNameRunes]))
	}
	if clean == "" {
		clean = shortID(id)
	}
	return clean
}

func shortID(id string) string {
	if utf8.RuneCountInString(id) > 5 {
		return string([]rune(id)[:5])
	}
	return id
}

func (r *Room) index(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddPlayer seats a player. Re-adding a seated player is a no-op. A player who
// returns keeps the points they had before leaving.
func (r *Room) AddPlayer(id, name string) error {
	if r.index(id) >= 0 {
		return nil
	}
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, Player{ID: id, Name: NormalizeName(name, id)})
	if r.hostID == "" {
		r.hostID = id
	}
	if _, ok := r.points[id]; !ok {
		r.points[id] = 0
	}
	if _, ok := r.hands[id]; !ok {
		r.hands[id] = []table.Card{}
	}
	if _, ok := r.playedAny[id]; !ok {
		r.playedAny[id] = false
	}
	return nil
}

// RemovePlayer unseats a player and reports whether they were seated.
func (r *Room) RemovePlayer(id string) bool {
	idx := r.index(id)
	if idx < 0 {
		return false
	}
	r.players = append(r.players[:idx:idx], r.players[idx+1:]...)
	delete(r.hands, id)
	delete(r.playedAny, id)
	delete(r.passed, id)
	delete(r.inRound, id)
	delete(r.declare.Choices, id)

	if r.hostID == id {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
		}
	}

	if idx < r.turn {
		r.turn--
	}
	if r.turn >= len(r.players) {
		r.turn = 0
	}

	if len(r.players) < MinPlayers || (r.InRound() && len(r.roundPlayers()) < MinPlayers) {
		r.NewRound(true)
		return true
	}

	if r.phase == PhasePlaying {
		r.settleTrick()
	}
	if r.InRound() && !r.canAct(r.players[r.turn].ID) {
		r.advanceTurn()
	}
	return true
}

// NewRound resets round state back to the lobby. force also clears every hand.
func (r *Room) NewRound(force bool) {
	r.phase = PhaseLobby
	r.turn = 0
	r.resetTrick()
	r.declare = declareState{Choices: make(map[string]bool)}
	r.sam = samState{}
	r.bao1 = bao1State{}
	r.lastPlayerID = ""
	r.inRound = make(map[string]bool)
	r.settled = false

	if force {
		for _, p := range r.players {
			r.hands[p.ID] = []table.Card{}
		}
		r.discard = nil
		r.stock = nil
	}
}

func (r *Room) resetTrick() {
	r.trick = Trick{}
	r.passed = make(map[string]bool)
}

// InRound reports whether a round is underway (declaring or playing).
func (r *Room) InRound() bool {
	return r.phase == PhaseDeclareSam || r.phase == PhasePlaying
}

// roundPlayers returns the players dealt into the current round, in seat order.
func (r *Room) roundPlayers() []string {
	out := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if r.inRound[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func (r *Room) canAct(id string) bool {
	return r.inRound[id] && !r.passed[id]
}

// advanceTurn moves to the next round player who has not passed this trick.
func (r *Room) advanceTurn() {
	n := len(r.players)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		r.turn = (r.turn + 1) % n
		if r.canAct(r.players[r.turn].ID) {
			return
		}
	}
}

// settleTrick clears the trick once nobody is left to answer it, or as soon as
// its holder has left. The turn goes back to the holder, or stays with the next
// eligible player if they left.
func (r *Room) settleTrick() {
	if r.trick.Combo == nil {
		return
	}
	holder := r.trick.HolderID
	idx := r.index(holder)
	seated := idx >= 0 && r.inRound[holder]
	if seated {
		for _, id := range r.roundPlayers() {
			if id != holder && !r.passed[id] {
				return
			}
		}
	}
	r.resetTrick()
	if seated {
		r.turn = idx
		return
	}
	if r.turn < len(r.players) && !r.canAct(r.players[r.turn].ID) {
		r.advanceTurn()
	}
}

// Name returns the display name of a player, or a short form of the id.
func (r *Room) Name(id string) string {
	if idx := r.index(id); idx >= 0 {
		return r.players[idx].Name
	}
	return shortID(id)
}

func (r *Room) Phase() Phase { return r.phase }
func (r *Room) HostID() string { return r.hostID }
func (r *Room) LastWinnerID() string { return r.lastWinnerID }
func (r *Room) Len() int { return len(r.players) }

// TurnID is the player whose turn it is, or "" outside a round.
func (r *Room) TurnID() string {
	if !r.InRound() || r.turn >= len(r.players) {
		return ""
	}
	return r.players[r.turn].ID
}

// Players returns the roster in seat order.
func (r *Room) Players() []Player {
	return append([]Player(nil), r.players...)
}

// IDs returns the seated player ids in seat order.
func (r *Room) IDs() []string {
	out := make([]string, len(r.players))
	for i, p := range r.players {
		out[i] = p.ID
	}
	return out
}

func (r *Room) Points() map[string]int {
	out := make(map[string]int, len(r.points))
	for id, v := range r.points {
		out[id] = v
	}
	return out
}

// Hand returns a copy of a player's cards. Only ever send it to that player.
func (r *Room) Hand(id string) []table.Card {
	return append([]table.Card{}, r.hands[id]...)
}

// DeclareDeadline is when the Sâm declaration window closes; zero outside it.
func (r *Room) DeclareDeadline() time.Time {
	if r.phase != PhaseDeclareSam {
		return time.Time{}
	}
	return r.declare.Deadline
}
