package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/models"
	"quizclash/store"
)

// testTiming keeps every delay tiny so scheduler-driven flows finish within
// the test's patience.
var testTiming = config.Timing{
	FirstRoundDelay: 10 * time.Millisecond,
	RoundDuration:   time.Second,
	InterRoundDelay: 10 * time.Millisecond,
	GameEndDelay:    10 * time.Millisecond,
	RoomTTL:         2 * time.Hour,
	QueueTTL:        2 * time.Hour,
	TotalRounds:     2,
}

func newTestStores(t *testing.T) (*store.RoomStore, *store.MatchmakingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewRoomStore(client, testTiming.RoomTTL), store.NewMatchmakingStore(client, testTiming.QueueTTL)
}

// fakeNotifier records every notification by name so tests can assert on the
// event sequence without a transport.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string

	lastRound *models.RoundResult
	lastGame  *models.GameResult
	matchRoom string
	positions map[string]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{positions: make(map[string]int)}
}

func (n *fakeNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *fakeNotifier) count(event string) int {
	total := 0
	for _, e := range n.recorded() {
		if e == event {
			total++
		}
	}
	return total
}

// waitFor polls until the event has been recorded or the deadline passes.
func (n *fakeNotifier) waitFor(t *testing.T, event string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if n.count(event) > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("event %q never recorded; got %v", event, n.recorded())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (n *fakeNotifier) RoomCreated(*models.GameRoom) { n.record("room_created") }
func (n *fakeNotifier) PlayerJoined(string, *models.GamePlayer) {
	n.record("player_joined")
}
func (n *fakeNotifier) PlayerLeft(string, string) { n.record("player_left") }
func (n *fakeNotifier) PlayerReadyChanged(string, string, bool) {
	n.record("player_ready_changed")
}
func (n *fakeNotifier) PlayerDisconnected(string, string) { n.record("player_disconnected") }
func (n *fakeNotifier) PlayerReconnected(string, string)  { n.record("player_reconnected") }
func (n *fakeNotifier) GameStarting(*models.GameRoom)     { n.record("game_starting") }
func (n *fakeNotifier) RoundStarted(string, int, *models.GameQuestion, time.Time) {
	n.record("round_started")
}
func (n *fakeNotifier) PlayerAnswered(string, string) { n.record("player_answered") }

func (n *fakeNotifier) RoundEnded(roomID string, result *models.RoundResult) {
	n.mu.Lock()
	n.lastRound = result
	n.mu.Unlock()
	n.record("round_ended")
}

func (n *fakeNotifier) GameEnded(roomID string, result *models.GameResult) {
	n.mu.Lock()
	n.lastGame = result
	n.mu.Unlock()
	n.record("game_ended")
}

func (n *fakeNotifier) MatchFound(roomID string, players []models.MatchmakingEntry) {
	n.mu.Lock()
	n.matchRoom = roomID
	n.mu.Unlock()
	n.record("match_found")
}

func (n *fakeNotifier) MatchmakingUpdate(userID string, position int) {
	n.mu.Lock()
	n.positions[userID] = position
	n.mu.Unlock()
	n.record("matchmaking_update")
}

func (n *fakeNotifier) Error(string, string, string, string) { n.record("error") }

func (n *fakeNotifier) gameResult() *models.GameResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastGame
}

func (n *fakeNotifier) roundResult() *models.RoundResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastRound
}

// stubQuestions generates bank rows on demand; err short-circuits.
type stubQuestions struct {
	err error
}

func (s *stubQuestions) GetRandomQuestions(_ context.Context, language string, count int) ([]models.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	questions := make([]models.Question, count)
	for i := range questions {
		questions[i] = models.Question{
			ID:           uint(i + 1),
			Language:     language,
			Text:         fmt.Sprintf("question %d", i+1),
			Answer:       "right",
			WrongAnswer1: "wrong one",
			WrongAnswer2: "wrong two",
		}
	}
	return questions, nil
}

// stubProfiles resolves user ids from a fixed map.
type stubProfiles struct {
	users map[string]*models.User
}

func newStubProfiles(userIDs ...string) *stubProfiles {
	users := make(map[string]*models.User, len(userIDs))
	for _, id := range userIDs {
		users[id] = &models.User{ID: id, DisplayName: "player " + id}
	}
	return &stubProfiles{users: users}
}

func (s *stubProfiles) GetProfile(_ context.Context, userID string) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// stubRewards records final standings handed to the sink.
type stubRewards struct {
	mu      sync.Mutex
	results []*models.GameResult
	err     error
}

func (s *stubRewards) GameFinished(_ context.Context, result *models.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return s.err
}

func (s *stubRewards) finished() []*models.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.GameResult(nil), s.results...)
}

type testServices struct {
	rooms    *store.RoomStore
	queue    *store.MatchmakingStore
	notifier *fakeNotifier
	rewards  *stubRewards
	roundSvc *RoundService
	roomSvc  *RoomService
	matchSvc *MatchmakingService
}

func newTestServices(t *testing.T, userIDs ...string) *testServices {
	t.Helper()
	rooms, queue := newTestStores(t)
	notifier := newFakeNotifier()
	rewards := &stubRewards{}
	profiles := newStubProfiles(userIDs...)
	log := zerolog.Nop()

	roundSvc := NewRoundService(rooms, &stubQuestions{}, notifier, rewards, testTiming, log)
	roomSvc := NewRoomService(rooms, profiles, notifier, roundSvc, testTiming, log)
	matchSvc := NewMatchmakingService(queue, rooms, profiles, notifier, roomSvc, roundSvc, testTiming, log)

	return &testServices{
		rooms:    rooms,
		queue:    queue,
		notifier: notifier,
		rewards:  rewards,
		roundSvc: roundSvc,
		roomSvc:  roomSvc,
		matchSvc: matchSvc,
	}
}
