package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Every mutating operation runs as a single server-side script so that two
// concurrent callers against the same room never interleave partial reads and
// writes. go-redis loads each script once and invokes it by SHA, re-sending
// the source when the server reports a cache miss.
//
// Scripts reply with a flat array whose first element is a status code:
// "ok" followed by operation-specific payloads, or one of the codes in
// scriptErrors with no payload.

// luaPrelude is shared by every room script: load and persist the room
// aggregate as one JSON record with the crash-recovery TTL.
const luaPrelude = `
local function load_room(key)
  local raw = redis.call('GET', key)
  if not raw then
    return nil, nil
  end
  local ok, room = pcall(cjson.decode, raw)
  if not ok or type(room) ~= 'table' then
    return nil, 'malformed_record'
  end
  return room, nil
end

local function save_room(key, room, ttl_ms)
  redis.call('SET', key, cjson.encode(room), 'PX', ttl_ms)
end

local function find_player(room, user_id)
  for i, p in ipairs(room.players) do
    if p.user_id == user_id then
      return i, p
    end
  end
  return nil, nil
end
`

// runScript executes a registered script and decodes the uniform reply shape,
// mapping failure codes to typed errors. The returned slice holds the
// payload elements after the status code.
func runScript(ctx context.Context, rdb *redis.Client, script *redis.Script, keys []string, args ...interface{}) ([]interface{}, error) {
	res, err := script.Run(ctx, rdb, keys, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("store script: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) == 0 {
		return nil, fmt.Errorf("store script: unexpected reply %T", res)
	}

	code, ok := reply[0].(string)
	if !ok {
		return nil, fmt.Errorf("store script: unexpected status %v", reply[0])
	}
	if code != "ok" {
		if domainErr, known := scriptErrors[code]; known {
			return nil, domainErr
		}
		return nil, fmt.Errorf("store script: unknown status %q", code)
	}

	return reply[1:], nil
}

// payloadString extracts the idx-th payload element as a string; absent or
// empty payloads return "".
func payloadString(payload []interface{}, idx int) string {
	if idx >= len(payload) {
		return ""
	}
	s, _ := payload[idx].(string)
	return s
}

// payloadInt extracts the idx-th payload element as an integer.
func payloadInt(payload []interface{}, idx int) int64 {
	if idx >= len(payload) {
		return 0
	}
	n, _ := payload[idx].(int64)
	return n
}
