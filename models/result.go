package models

// Scoring constants for EndRound: the fastest correct answer earns
// ScoreMax, each subsequent correct answer loses ScoreDecrement, floored at
// ScoreMin. Wrong or missing answers score 0.
const (
	ScoreMax       = 1000
	ScoreDecrement = 150
	ScoreMin       = 100
)

// PlayerRoundResult is one player's outcome for a single round.
type PlayerRoundResult struct {
	UserID         string `json:"user_id"`
	Answer         string `json:"answer,omitempty"`
	Correct        bool   `json:"correct"`
	PointsAwarded  int    `json:"points_awarded"`
	ResponseTimeMs int64  `json:"response_time_ms,omitempty"`
	TotalScore     int    `json:"total_score"`
}

// LeaderboardEntry is a player's rank and cumulative score at a point in the
// game. Ties are broken by join order.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

// RoundResult is what EndRound reports: per-player correctness and points,
// the revealed correct option, and the updated leaderboard.
type RoundResult struct {
	Round         int                 `json:"round"`
	CorrectOption string              `json:"correct_option"`
	Results       []PlayerRoundResult `json:"results"`
	Leaderboard   []LeaderboardEntry  `json:"leaderboard"`
	LastRound     bool                `json:"last_round"`
}

// GameResult is the final standing produced by EndGame; the room record is
// gone once this exists.
type GameResult struct {
	RoomID    string             `json:"room_id"`
	GameType  GameType           `json:"game_type"`
	Cancelled bool               `json:"cancelled"`
	Standings []LeaderboardEntry `json:"standings"`
}

// Winner returns the top standing, or nil for an empty result.
func (r *GameResult) Winner() *LeaderboardEntry {
	if len(r.Standings) == 0 {
		return nil
	}
	return &r.Standings[0]
}
