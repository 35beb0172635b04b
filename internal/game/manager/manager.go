package manager

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"SamLoc/internal/game/engine"
	"SamLoc/internal/utils"
	"SamLoc/internal/websocket"
)

var (
	ErrRoomNotFound = errors.New("ROOM_NOT_FOUND")
	ErrMissingName  = errors.New("MISSING_NAME")
	ErrBadPayload   = errors.New("BAD_PAYLOAD")
	ErrUnknownEvent = errors.New("UNKNOWN_EVENT")
)

// Reason maps a manager or engine error to its client-facing code.
func Reason(err error) string {
	for _, e := range []error{ErrRoomNotFound, ErrMissingName, ErrBadPayload, ErrUnknownEvent} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return engine.Reason(err)
}

// Directory allocates room codes and records player bindings. It is advisory:
// the manager's own maps are authoritative for gameplay.
type Directory interface {
	Allocate(ctx context.Context, hostID string) (string, error)
	Release(ctx context.Context, code string) error
	Bind(ctx context.Context, playerID, code string) error
	Unbind(ctx context.Context, playerID, code string) error
}

// deadlineSlack delays the declare timer slightly past the deadline.
const deadlineSlack = 10 * time.Millisecond

const (
	directoryTimeout = 2 * time.Second
	allocateAttempts = 8
)

type Settings struct {
	MaxPlayers    int
	DeclareWindow time.Duration
}

// session owns one room. Every command on the room holds mu for its whole run.
type session struct {
	mu       sync.Mutex
	code     string
	room     *engine.Room
	timer    *time.Timer
	timerGen int
	closed   bool
}

// GameManager 管理所有对局
type GameManager struct {
	mu           sync.RWMutex
	sessions     map[string]*session // room code → session
	playerToRoom map[string]string   // player id → room code
	hub          websocket.HubInterface
	dir          Directory
	settings     Settings
	now          func() time.Time
	roomOpts     []engine.Option // extra options for every new room
}

func NewGameManager(hub websocket.HubInterface, dir Directory, settings Settings) *GameManager {
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = engine.DefaultMaxPlayers
	}
	return &GameManager{
		sessions:     make(map[string]*session),
		playerToRoom: make(map[string]string),
		hub:          hub,
		dir:          dir,
		settings:     settings,
		now:          time.Now,
	}
}

func (m *GameManager) dirCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), directoryTimeout)
}

func (m *GameManager) newRoom(code string) *engine.Room {
	opts := []engine.Option{
		engine.WithMaxPlayers(m.settings.MaxPlayers),
		engine.WithDeclareWindow(m.settings.DeclareWindow),
		engine.WithClock(m.now),
	}
	return engine.NewRoom(code, append(opts, m.roomOpts...)...)
}

func cleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// RoomOf returns the code of the room a player sits in.
func (m *GameManager) RoomOf(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.playerToRoom[playerID]
	return code, ok
}

func (m *GameManager) sessionOf(playerID string) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.playerToRoom[playerID]
	if !ok {
		return nil
	}
	return m.sessions[code]
}

// withRoom runs fn under the room lock of the player's current room.
func (m *GameManager) withRoom(playerID string, fn func(s *session) error) error {
	s := m.sessionOf(playerID)
	if s == nil {
		return engine.ErrNotInRoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return engine.ErrNotInRoom
	}
	return fn(s)
}

// CreateRoom opens a room under a fresh code with the caller as host.
func (m *GameManager) CreateRoom(playerID, name string) (string, error) {
	if cleanName(name) == "" {
		return "", ErrMissingName
	}
	m.LeaveRoom(playerID)

	ctx, cancel := m.dirCtx()
	defer cancel()
	var code string
	for i := 0; i < allocateAttempts && code == ""; i++ {
		c, err := m.dir.Allocate(ctx, playerID)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		_, taken := m.sessions[c]
		if !taken {
			m.sessions[c] = &session{code: c, room: m.newRoom(c)}
			code = c
		}
		m.mu.Unlock()
		if taken {
			utils.Log.Warn("directory handed out a live code", "room", c)
			if err := m.dir.Release(ctx, c); err != nil {
				utils.Log.Warn("directory release failed", "room", c, "err", err)
			}
		}
	}
	if code == "" {
		return "", errors.New("no free room code")
	}
	utils.Log.Info("room created", "room", code, "host", playerID)

	if err := m.JoinRoom(playerID, code, name); err != nil {
		m.mu.Lock()
		delete(m.sessions, code)
		m.mu.Unlock()
		_ = m.dir.Release(ctx, code)
		return "", err
	}
	return code, nil
}

// JoinRoom seats a player in an existing room, leaving any other room first.
func (m *GameManager) JoinRoom(playerID, code, name string) error {
	name = cleanName(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return ErrMissingName
	}
	if current, ok := m.RoomOf(playerID); ok && current != code {
		m.LeaveRoom(playerID)
	}

	m.mu.RLock()
	s := m.sessions[code]
	m.mu.RUnlock()
	if s == nil {
		return ErrRoomNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrRoomNotFound
	}
	if err := s.room.AddPlayer(playerID, name); err != nil {
		return err
	}
	m.mu.Lock()
	m.playerToRoom[playerID] = code
	m.mu.Unlock()

	ctx, cancel := m.dirCtx()
	defer cancel()
	if err := m.dir.Bind(ctx, playerID, code); err != nil {
		utils.Log.Warn("directory bind failed", "room", code, "player", playerID, "err", err)
	}

	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{Event: "joined", Data: map[string]any{"roomId": code}})
	m.broadcast(s, "👋 "+s.room.Name(playerID)+" joined.")
	return nil
}

// LeaveRoom unseats a player. The last player out destroys the room.
func (m *GameManager) LeaveRoom(playerID string) {
	m.mu.Lock()
	code, ok := m.playerToRoom[playerID]
	delete(m.playerToRoom, playerID)
	s := m.sessions[code]
	m.mu.Unlock()
	if !ok || s == nil {
		return
	}

	s.mu.Lock()
	name := s.room.Name(playerID)
	removed := s.room.RemovePlayer(playerID)
	empty := s.room.Len() == 0
	if empty {
		s.closed = true
		m.stopTimer(s)
	} else if removed {
		if s.room.Phase() != engine.PhaseDeclareSam {
			m.stopTimer(s)
		}
		m.broadcast(s, "❌ "+name+" left.")
	}
	s.mu.Unlock()

	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{Event: "left", Data: map[string]any{"roomId": code}})

	ctx, cancel := m.dirCtx()
	defer cancel()
	if err := m.dir.Unbind(ctx, playerID, code); err != nil {
		utils.Log.Warn("directory unbind failed", "room", code, "player", playerID, "err", err)
	}
	if !empty {
		return
	}

	m.mu.Lock()
	if m.sessions[code] == s {
		delete(m.sessions, code)
	}
	m.mu.Unlock()
	if err := m.dir.Release(ctx, code); err != nil {
		utils.Log.Warn("directory release failed", "room", code, "err", err)
	}
	utils.Log.Info("room closed", "room", code)
}

// StartGame deals a round. Host only.
func (m *GameManager) StartGame(playerID string) (engine.StartResult, error) {
	var res engine.StartResult
	err := m.withRoom(playerID, func(s *session) error {
		if s.room.HostID() != playerID {
			return engine.ErrNotHost
		}
		var err error
		res, err = s.room.StartGame()
		if err != nil {
			return err
		}
		msgs := res.Messages
		if res.WhiteWin {
			msgs = append(msgs, m.score(s)...)
		} else {
			m.scheduleTimer(s)
		}
		utils.Log.Info("round started", "room", s.code, "players", s.room.Len(), "whiteWin", res.WhiteWin)
		m.broadcast(s, msgs...)
		return nil
	})
	return res, err
}

func (m *GameManager) DeclareSam(playerID string, flag bool) error {
	return m.withRoom(playerID, func(s *session) error {
		if err := s.room.DeclareSam(playerID, flag); err != nil {
			return err
		}
		if flag {
			m.broadcast(s, "🔔 "+s.room.Name(playerID)+" wants to declare Sâm.")
		} else {
			m.broadcast(s)
		}
		return nil
	})
}

func (m *GameManager) Pass(playerID string) error {
	return m.withRoom(playerID, func(s *session) error {
		if err := s.room.Pass(playerID); err != nil {
			return err
		}
		m.broadcast(s, "⏭️ "+s.room.Name(playerID)+" passes.")
		return nil
	})
}

func (m *GameManager) Play(playerID string, cardIDs []string) (engine.PlayResult, error) {
	var res engine.PlayResult
	err := m.withRoom(playerID, func(s *session) error {
		var err error
		res, err = s.room.Play(playerID, cardIDs)
		if err != nil {
			return err
		}
		msgs := res.Messages
		switch {
		case res.SamCaught:
			utils.Log.Info("sam caught", "room", s.code, "declarer", res.LoserID, "catcher", res.CatcherID)
		case res.Win:
			msgs = append(msgs, m.score(s)...)
		}
		m.broadcast(s, msgs...)
		return nil
	})
	return res, err
}

// NewRound sends the room back to the lobby. Host only.
func (m *GameManager) NewRound(playerID string) error {
	return m.withRoom(playerID, func(s *session) error {
		if s.room.HostID() != playerID {
			return engine.ErrNotHost
		}
		s.room.NewRound(false)
		m.stopTimer(s)
		m.broadcast(s, "🔁 Back to the lobby.")
		return nil
	})
}

// score settles a finished round. Caller holds s.mu.
func (m *GameManager) score(s *session) []string {
	res, err := s.room.FinishAndScore()
	if err != nil {
		utils.Log.Warn("scoring skipped", "room", s.code, "err", err)
		return nil
	}
	utils.Log.Info("round won", "room", s.code, "winner", res.WinnerID, "pot", res.Pot, "bao1", res.Bao1Override)
	msg := "🏆 " + s.room.Name(res.WinnerID) + " wins the round."
	if res.Bao1Override {
		msg += " The Báo 1 offender pays the whole pot."
	}
	return []string{msg}
}

// scheduleTimer arms the declare deadline timer, replacing any earlier one.
// Caller holds s.mu.
func (m *GameManager) scheduleTimer(s *session) {
	m.stopTimer(s)
	deadline := s.room.DeclareDeadline()
	if deadline.IsZero() {
		return
	}
	delay := deadline.Sub(m.now()) + deadlineSlack
	if delay < 0 {
		delay = 0
	}
	gen := s.timerGen
	s.timer = time.AfterFunc(delay, func() { m.onDeadline(s, gen) })
}

// stopTimer is safe to call any number of times. Caller holds s.mu.
func (m *GameManager) stopTimer(s *session) {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (m *GameManager) onDeadline(s *session, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.timerGen {
		return
	}
	s.timer = nil
	m.tick(s)
}

// tick advances the declare phase if due. Caller holds s.mu.
func (m *GameManager) tick(s *session) bool {
	if !s.room.TickDeclarePhase() {
		return false
	}
	m.stopTimer(s)
	msg := "⏱️ Declaration closed. Play begins."
	if id, ok := s.room.SamDeclarer(); ok {
		msg = "🔥 " + s.room.Name(id) + " declares Sâm and leads."
	}
	m.broadcast(s, msg)
	return true
}

// TickAll is the periodic backstop for the declare timers. It returns how many
// rooms changed.
func (m *GameManager) TickAll() int {
	m.mu.RLock()
	list := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	changed := 0
	for _, s := range list {
		s.mu.Lock()
		if !s.closed && m.tick(s) {
			changed++
		}
		s.mu.Unlock()
	}
	return changed
}

// RunTicker calls TickAll every interval until ctx is done.
func (m *GameManager) RunTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.TickAll()
		}
	}
}

// AdminView dumps every room, ordered by code.
func (m *GameManager) AdminView() []engine.AdminView {
	m.mu.RLock()
	list := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	out := make([]engine.AdminView, 0, len(list))
	for _, s := range list {
		s.mu.Lock()
		if !s.closed {
			out = append(out, s.room.AdminView())
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns the shared view of a room.
func (m *GameManager) Snapshot(code string) (engine.Snapshot, error) {
	m.mu.RLock()
	s := m.sessions[code]
	m.mu.RUnlock()
	if s == nil {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	return s.room.Snapshot(), nil
}

// broadcast pushes the snapshot to the room, each player's hand to that player,
// and one log event per message. Caller holds s.mu.
func (m *GameManager) broadcast(s *session, msgs ...string) {
	ids := s.room.IDs()
	for _, msg := range msgs {
		m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: "log", Data: msg})
	}
	m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: "room_update", Data: s.room.Snapshot()})
	for _, id := range ids {
		m.hub.SendToPlayer(id, websocket.OutgoingMessage{Event: "hand", Data: s.room.Hand(id)})
	}
}
