package models

// GameType is a closed tag; matchmaking and player-count behavior switch on it
// where they actually differ.
type GameType string

const (
	GameTypeRandomDuel   GameType = "random_duel"
	GameTypeRandomBattle GameType = "random_battle"
	GameTypeFriendDuel   GameType = "friend_duel"
	GameTypeFriendBattle GameType = "friend_battle"
)

// RequiredPlayers returns the player count needed to form a match: 2 for
// duels, 3 for battles.
func (t GameType) RequiredPlayers() int {
	switch t {
	case GameTypeRandomBattle, GameTypeFriendBattle:
		return 3
	default:
		return 2
	}
}

func (t GameType) Valid() bool {
	switch t {
	case GameTypeRandomDuel, GameTypeRandomBattle, GameTypeFriendDuel, GameTypeFriendBattle:
		return true
	}
	return false
}

// Random reports whether rooms of this type are filled through the
// matchmaking queue rather than by invited friends.
func (t GameType) Random() bool {
	return t == GameTypeRandomDuel || t == GameTypeRandomBattle
}

type RoomStatus string

const (
	StatusWaitingForPlayers RoomStatus = "waiting_for_players"
	StatusStarting          RoomStatus = "starting"
	StatusRoundInProgress   RoomStatus = "round_in_progress"
	StatusRoundEnded        RoomStatus = "round_ended"
	StatusGameEnded         RoomStatus = "game_ended"
	StatusCancelled         RoomStatus = "cancelled"
)

const (
	MinPlayers = 2
	MaxPlayers = 5
)

// PlayerColor is one of the five fixed color/name pairs assigned by join
// order.
type PlayerColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette is the fixed color list. Room capacity equals its length, so the
// cyclic assignment never actually wraps; if capacity were ever raised the
// palette must grow with it.
var Palette = []PlayerColor{
	{Name: "red", Hex: "#e74c3c"},
	{Name: "blue", Hex: "#3498db"},
	{Name: "green", Hex: "#2ecc71"},
	{Name: "yellow", Hex: "#f1c40f"},
	{Name: "purple", Hex: "#9b59b6"},
}

// GameRoom is the root aggregate. It is marshaled whole as a single keyed
// record; every mutation goes through an atomic store script, never through a
// cached in-process copy. All timestamps are unix milliseconds.
type GameRoom struct {
	ID             string         `json:"id"`
	GameType       GameType       `json:"game_type"`
	Status         RoomStatus     `json:"status"`
	Language       string         `json:"language"`
	TotalRounds    int            `json:"total_rounds"`
	CurrentRound   int            `json:"current_round"`
	CreatedAt      int64          `json:"created_at"`
	StartedAt      int64          `json:"started_at,omitempty"`
	RoundStartedAt int64          `json:"round_started_at,omitempty"`
	RoundEndsAt    int64          `json:"round_ends_at,omitempty"`
	HostPlayerID   string         `json:"host_player_id,omitempty"`
	Players        []GamePlayer   `json:"players"`
	Questions      []GameQuestion `json:"questions,omitempty"`
}

// Player returns the player with the given user id, or nil.
func (r *GameRoom) Player(userID string) *GamePlayer {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

type GamePlayer struct {
	UserID            string        `json:"user_id"`
	DisplayName       string        `json:"display_name"`
	PhotoURL          string        `json:"photo_url,omitempty"`
	Color             PlayerColor   `json:"color"`
	TotalScore        int           `json:"total_score"`
	CurrentRoundScore int           `json:"current_round_score"`
	IsReady           bool          `json:"is_ready"`
	IsConnected       bool          `json:"is_connected"`
	CurrentAnswer     *PlayerAnswer `json:"current_answer,omitempty"`
}

// PlayerAnswer exists only during an active or just-ended round and is
// cleared when the next round starts.
type PlayerAnswer struct {
	Answer         string `json:"answer"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	AnsweredAt     int64  `json:"answered_at"`
}
