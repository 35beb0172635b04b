package engine

import (
	"errors"

	"SamLoc/internal/game/rules"
)

// Rejections are reported as sentinel errors whose text is the reason code sent
// to clients. A rejected command leaves the room unchanged.
var (
	ErrNotPlaying         = errors.New("NOT_PLAYING")
	ErrNotYourTurn        = errors.New("NOT_YOUR_TURN")
	ErrYouPassedThisTrick = errors.New("YOU_PASSED_THIS_TRICK")
	ErrCardNotInHand      = errors.New("CARD_NOT_IN_HAND")
	ErrInvalidCombo       = rules.ErrInvalidCombo
	ErrCannotBeatTable    = errors.New("CANNOT_BEAT_TABLE")
	ErrNotDeclarePhase    = errors.New("NOT_DECLARE_PHASE")
	ErrNotInRoom          = errors.New("NOT_IN_ROOM")
	ErrCannotPassOnEmpty  = errors.New("CANNOT_PASS_ON_EMPTY")
	ErrAlreadyStarted     = errors.New("ALREADY_STARTED")
	ErrNeedTwoPlayers     = errors.New("NEED_2_PLAYERS")
	ErrRoomFull           = errors.New("ROOM_FULL")
	ErrNotHost            = errors.New("NOT_HOST")
	ErrRoundNotOver       = errors.New("ROUND_NOT_OVER")
	ErrAlreadyScored      = errors.New("ALREADY_SCORED")
)

var reasons = []error{
	ErrNotPlaying,
	ErrNotYourTurn,
	ErrYouPassedThisTrick,
	ErrCardNotInHand,
	ErrInvalidCombo,
	ErrCannotBeatTable,
	ErrNotDeclarePhase,
	ErrNotInRoom,
	ErrCannotPassOnEmpty,
	ErrAlreadyStarted,
	ErrNeedTwoPlayers,
	ErrRoomFull,
	ErrNotHost,
	ErrRoundNotOver,
	ErrAlreadyScored,
}

// Reason returns the client-facing reason code for an error returned by a Room.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return "INTERNAL"
}
