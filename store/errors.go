package store

import "errors"

// Stable domain outcomes. Callers recover from these as normal control flow;
// anything else coming out of the store is an infrastructure failure.
var (
	ErrRoomExists          = errors.New("room already exists")
	ErrRoomNotFound        = errors.New("room not found")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrRoomFull            = errors.New("room is full")
	ErrPlayerAlreadyInRoom = errors.New("player already in room")
	ErrPlayerNotInRoom     = errors.New("player not in room")
	ErrNotEnoughPlayers    = errors.New("not enough players")
	ErrInvalidState        = errors.New("invalid room state for operation")
	ErrNoMoreRounds        = errors.New("no more rounds")
	ErrRoundNotActive      = errors.New("round not active")
	ErrRoundExpired        = errors.New("round expired")
	ErrAlreadyAnswered     = errors.New("answer already submitted")
	ErrNoQuestion          = errors.New("no question for current round")
	ErrMalformedRecord     = errors.New("malformed room record")
)

// scriptErrors maps the status codes returned by the Lua scripts to typed
// errors.
var scriptErrors = map[string]error{
	"room_exists":            ErrRoomExists,
	"room_not_found":         ErrRoomNotFound,
	"game_already_started":   ErrGameAlreadyStarted,
	"room_full":              ErrRoomFull,
	"player_already_in_room": ErrPlayerAlreadyInRoom,
	"player_not_in_room":     ErrPlayerNotInRoom,
	"not_enough_players":     ErrNotEnoughPlayers,
	"invalid_state":          ErrInvalidState,
	"no_more_rounds":         ErrNoMoreRounds,
	"round_not_active":       ErrRoundNotActive,
	"round_expired":          ErrRoundExpired,
	"already_answered":       ErrAlreadyAnswered,
	"no_question":            ErrNoQuestion,
	"malformed_record":       ErrMalformedRecord,
}

// IsDomainError reports whether err is one of the typed outcomes above, as
// opposed to an infrastructure failure that should not be retried here.
func IsDomainError(err error) bool {
	for _, domain := range scriptErrors {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
