package models

// MatchmakingEntry is a queued player's profile, held in a per
// (game type, language) ordered queue keyed by join time.
type MatchmakingEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	JoinedAt    int64  `json:"joined_at"`
}

// MatchmakingResult is the outcome of an atomic queue join: either a formed
// match (the popped players, oldest first) or the caller's queue position.
type MatchmakingResult struct {
	Matched  bool               `json:"matched"`
	Position int                `json:"position,omitempty"`
	Players  []MatchmakingEntry `json:"players,omitempty"`
	RoomID   string             `json:"room_id,omitempty"`
}
