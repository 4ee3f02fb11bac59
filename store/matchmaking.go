package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizclash/models"
)

const (
	queueKeyPrefix   = "matchmaking:"
	profileKeyPrefix = "mmprofile:"
)

func queueKey(gameType models.GameType, language string) string {
	return fmt.Sprintf("%s%s:%s", queueKeyPrefix, gameType, language)
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// KEYS[1] queue key
// ARGV[1] entry JSON, ARGV[2] user id, ARGV[3] join-time score ms,
// ARGV[4] required player count, ARGV[5] profile key prefix, ARGV[6] ttl ms
// Append and conditional pop are one atomic unit: two racing joiners can
// never both perceive the same match. Replies with the matched entries
// (oldest first) or '' plus the caller's 1-based queue position.
var scriptJoinQueue = redis.NewScript(`
redis.call('SET', ARGV[5] .. ARGV[2], ARGV[1], 'PX', ARGV[6])
redis.call('ZADD', KEYS[1], tonumber(ARGV[3]), ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
local required = tonumber(ARGV[4])
if redis.call('ZCARD', KEYS[1]) >= required then
  local ids = redis.call('ZRANGE', KEYS[1], 0, required - 1)
  local entries = {}
  for _, id in ipairs(ids) do
    local raw = redis.call('GET', ARGV[5] .. id)
    if raw then
      table.insert(entries, cjson.decode(raw))
    end
    redis.call('DEL', ARGV[5] .. id)
    redis.call('ZREM', KEYS[1], id)
  end
  return {'ok', cjson.encode(entries), 0}
end
local rank = redis.call('ZRANK', KEYS[1], ARGV[2])
return {'ok', '', rank + 1}
`)

// KEYS[1] queue key
// ARGV[1] user id, ARGV[2] profile key prefix
var scriptLeaveQueue = redis.NewScript(`
redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('DEL', ARGV[2] .. ARGV[1])
return {'ok'}
`)

// MatchmakingStore is the per-(game type, language) FIFO queue with atomic
// add-and-check-for-match semantics. Queue entries and profiles share a TTL
// backstop so an abandoned queue drains on its own.
type MatchmakingStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMatchmakingStore(rdb *redis.Client, ttl time.Duration) *MatchmakingStore {
	return &MatchmakingStore{rdb: rdb, ttl: ttl}
}

// JoinQueue stores the player's profile, appends them to the queue keyed by
// join time and, if the queue now reaches the required count for the game
// type, pops the oldest entries as the formed match.
func (s *MatchmakingStore) JoinQueue(ctx context.Context, entry models.MatchmakingEntry, gameType models.GameType, language string) (*models.MatchmakingResult, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}

	payload, err := runScript(ctx, s.rdb, scriptJoinQueue,
		[]string{queueKey(gameType, language)},
		entryJSON, entry.UserID, entry.JoinedAt, gameType.RequiredPlayers(),
		profileKeyPrefix, s.ttl.Milliseconds())
	if err != nil {
		return nil, err
	}

	matchedJSON := payloadString(payload, 0)
	if matchedJSON == "" {
		return &models.MatchmakingResult{Position: int(payloadInt(payload, 1))}, nil
	}

	var players []models.MatchmakingEntry
	if err := json.Unmarshal([]byte(matchedJSON), &players); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &models.MatchmakingResult{Matched: true, Players: players}, nil
}

// LeaveQueue removes the queue entry and profile record; idempotent.
func (s *MatchmakingStore) LeaveQueue(ctx context.Context, userID string, gameType models.GameType, language string) error {
	_, err := runScript(ctx, s.rdb, scriptLeaveQueue,
		[]string{queueKey(gameType, language)},
		userID, profileKeyPrefix)
	return err
}

// IsInQueue reports whether the player currently has a queued profile in any
// queue.
func (s *MatchmakingStore) IsInQueue(ctx context.Context, userID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, profileKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("queue check: %w", err)
	}
	return n > 0, nil
}
