package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameTypeRequiredPlayers(t *testing.T) {
	assert.Equal(t, 2, GameTypeRandomDuel.RequiredPlayers())
	assert.Equal(t, 2, GameTypeFriendDuel.RequiredPlayers())
	assert.Equal(t, 3, GameTypeRandomBattle.RequiredPlayers())
	assert.Equal(t, 3, GameTypeFriendBattle.RequiredPlayers())
}

func TestGameTypeValid(t *testing.T) {
	for _, gt := range []GameType{GameTypeRandomDuel, GameTypeRandomBattle, GameTypeFriendDuel, GameTypeFriendBattle} {
		assert.True(t, gt.Valid(), string(gt))
	}
	assert.False(t, GameType("chess").Valid())
	assert.False(t, GameType("").Valid())
}

func TestGameTypeRandom(t *testing.T) {
	assert.True(t, GameTypeRandomDuel.Random())
	assert.True(t, GameTypeRandomBattle.Random())
	assert.False(t, GameTypeFriendDuel.Random())
	assert.False(t, GameTypeFriendBattle.Random())
}

func TestRoomPlayerLookup(t *testing.T) {
	room := &GameRoom{Players: []GamePlayer{{UserID: "alice"}, {UserID: "bob"}}}

	player := room.Player("bob")
	assert.NotNil(t, player)
	assert.Equal(t, "bob", player.UserID)
	assert.Nil(t, room.Player("ghost"))

	// the lookup aliases the slice so flag updates stick
	player.IsReady = true
	assert.True(t, room.Players[1].IsReady)
}

func TestPaletteMatchesCapacity(t *testing.T) {
	assert.Len(t, Palette, MaxPlayers)
}

func TestGameResultWinner(t *testing.T) {
	empty := &GameResult{}
	assert.Nil(t, empty.Winner())

	result := &GameResult{Standings: []LeaderboardEntry{
		{UserID: "bob", Score: 1800, Rank: 1},
		{UserID: "alice", Score: 900, Rank: 2},
	}}
	assert.Equal(t, "bob", result.Winner().UserID)
}
