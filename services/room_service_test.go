package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizclash/models"
	"quizclash/store"
)

func TestCreateRoom(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	room, err := svc.roomSvc.CreateRoom(ctx, models.GameTypeFriendBattle, "de", 7)
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, models.GameTypeFriendBattle, room.GameType)
	assert.Equal(t, "de", room.Language)
	assert.Equal(t, 7, room.TotalRounds)
	assert.Equal(t, models.StatusWaitingForPlayers, room.Status)
	assert.Equal(t, 1, svc.notifier.count("room_created"))
}

func TestCreateRoom_DefaultRounds(t *testing.T) {
	svc := newTestServices(t)

	room, err := svc.roomSvc.CreateRoom(context.Background(), models.GameTypeFriendDuel, "en", 0)
	require.NoError(t, err)
	assert.Equal(t, testTiming.TotalRounds, room.TotalRounds)
}

func TestCreateRoom_Validation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.roomSvc.CreateRoom(ctx, "tic_tac_toe", "en", 0)
	assert.ErrorIs(t, err, ErrInvalidGameType)

	_, err = svc.roomSvc.CreateRoom(ctx, models.GameTypeFriendDuel, "", 0)
	assert.ErrorIs(t, err, ErrInvalidGameType)
}

func TestJoinRoom_ResolvesProfile(t *testing.T) {
	svc := newTestServices(t, "alice")
	room := setupJoinedRoom(t, svc)

	got, player, err := svc.roomSvc.JoinRoom(context.Background(), room.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "player alice", player.DisplayName)
	assert.Equal(t, "alice", got.HostPlayerID)
	assert.Equal(t, 1, svc.notifier.count("player_joined"))
}

func TestJoinRoom_UnknownUser(t *testing.T) {
	svc := newTestServices(t, "alice")
	room := setupJoinedRoom(t, svc, "alice")

	_, _, err := svc.roomSvc.JoinRoom(context.Background(), room.ID, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 1, svc.notifier.count("player_joined"), "no join event for a failed join")
}

func TestLeaveRoom(t *testing.T) {
	svc := newTestServices(t, "alice", "bob")
	room := setupJoinedRoom(t, svc, "alice", "bob")

	require.NoError(t, svc.roomSvc.LeaveRoom(context.Background(), room.ID, "bob"))
	assert.Equal(t, 1, svc.notifier.count("player_left"))
	assert.Zero(t, svc.notifier.count("game_ended"), "leaving a waiting room ends nothing")
}

// A player leaving mid-game below the minimum cancels the game; the remaining
// player still receives final standings and the reward sink still runs.
func TestLeaveRoom_MidGameCancelsAndFinishes(t *testing.T) {
	svc := newTestServices(t, "alice", "bob")
	room := setupJoinedRoom(t, svc, "alice", "bob")
	ctx := context.Background()

	_, err := svc.roundSvc.StartGame(ctx, room.ID, "alice")
	require.NoError(t, err)
	svc.notifier.waitFor(t, "round_started")

	require.NoError(t, svc.roomSvc.LeaveRoom(ctx, room.ID, "bob"))

	svc.notifier.waitFor(t, "game_ended")
	result := svc.notifier.gameResult()
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	require.Len(t, result.Standings, 1)
	assert.Equal(t, "alice", result.Standings[0].UserID)

	finished := svc.rewards.finished()
	require.Len(t, finished, 1)
	assert.True(t, finished[0].Cancelled)

	_, err = svc.rooms.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}

func TestSetReady(t *testing.T) {
	svc := newTestServices(t, "alice")
	room := setupJoinedRoom(t, svc, "alice")
	ctx := context.Background()

	require.NoError(t, svc.roomSvc.SetReady(ctx, room.ID, "alice", true))
	assert.Equal(t, 1, svc.notifier.count("player_ready_changed"))

	got, err := svc.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.Player("alice").IsReady)

	err = svc.roomSvc.SetReady(ctx, room.ID, "ghost", true)
	assert.ErrorIs(t, err, store.ErrPlayerNotInRoom)
}

func TestReconnect(t *testing.T) {
	svc := newTestServices(t, "alice")
	room := setupJoinedRoom(t, svc, "alice")

	got, err := svc.roomSvc.Reconnect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)

	_, err = svc.roomSvc.Reconnect(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}

func TestPresenceHandling(t *testing.T) {
	svc := newTestServices(t, "alice")
	room := setupJoinedRoom(t, svc, "alice")
	ctx := context.Background()

	svc.roomSvc.HandleDisconnect(room.ID, "alice")
	got, err := svc.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.Player("alice").IsConnected)
	assert.Equal(t, 1, svc.notifier.count("player_disconnected"))

	svc.roomSvc.HandleConnect(room.ID, "alice")
	got, err = svc.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.Player("alice").IsConnected)
	assert.Equal(t, 1, svc.notifier.count("player_reconnected"))

	// presence updates for rooms that no longer exist are dropped quietly
	svc.roomSvc.HandleDisconnect("gone", "alice")
	assert.Equal(t, 1, svc.notifier.count("player_disconnected"))
}
