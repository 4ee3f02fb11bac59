package store

import "github.com/redis/go-redis/v9"

// KEYS[1] room key
// ARGV[1] room JSON, ARGV[2] ttl ms
var scriptCreateRoom = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return {'room_exists'}
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return {'ok'}
`)

// KEYS[1] room key, KEYS[2] player reverse-index key
// ARGV[1] player JSON, ARGV[2] palette JSON, ARGV[3] max players, ARGV[4] ttl ms
var scriptJoinRoom = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'waiting_for_players' then
  return {'game_already_started'}
end
if #room.players >= tonumber(ARGV[3]) then
  return {'room_full'}
end
local player = cjson.decode(ARGV[1])
local idx, _ = find_player(room, player.user_id)
if idx then
  return {'player_already_in_room'}
end
local palette = cjson.decode(ARGV[2])
player.color = palette[(#room.players % #palette) + 1]
table.insert(room.players, player)
if #room.players == 1 then
  room.host_player_id = player.user_id
end
save_room(KEYS[1], room, ARGV[4])
redis.call('SET', KEYS[2], room.id, 'PX', ARGV[4])
return {'ok', cjson.encode(room), cjson.encode(player)}
`)

// KEYS[1] room key, KEYS[2] player reverse-index key
// ARGV[1] user id, ARGV[2] ttl ms
// Third reply element flags what happened to the room: 'deleted',
// 'cancelled' or ''.
var scriptLeaveRoom = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
local idx, _ = find_player(room, ARGV[1])
if not idx then
  return {'player_not_in_room'}
end
table.remove(room.players, idx)
redis.call('DEL', KEYS[2])
if #room.players == 0 then
  redis.call('DEL', KEYS[1])
  return {'ok', '', 'deleted'}
end
if room.host_player_id == ARGV[1] then
  room.host_player_id = room.players[1].user_id
end
local outcome = ''
if #room.players < 2 and room.status ~= 'waiting_for_players' and room.status ~= 'cancelled' then
  room.status = 'cancelled'
  outcome = 'cancelled'
end
save_room(KEYS[1], room, ARGV[2])
return {'ok', cjson.encode(room), outcome}
`)

// KEYS[1] room key
// ARGV[1] user id, ARGV[2] field name ('is_ready' or 'is_connected'),
// ARGV[3] '1'/'0', ARGV[4] ttl ms
var scriptSetPlayerFlag = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
local idx, player = find_player(room, ARGV[1])
if not idx then
  return {'player_not_in_room'}
end
player[ARGV[2]] = ARGV[3] == '1'
save_room(KEYS[1], room, ARGV[4])
return {'ok', cjson.encode(room)}
`)

// KEYS[1] room key
// ARGV[1] questions JSON, ARGV[2] now ms, ARGV[3] ttl ms
var scriptStartGame = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'waiting_for_players' then
  return {'game_already_started'}
end
if #room.players < 2 then
  return {'not_enough_players'}
end
room.status = 'starting'
room.started_at = tonumber(ARGV[2])
room.questions = cjson.decode(ARGV[1])
save_room(KEYS[1], room, ARGV[3])
return {'ok', cjson.encode(room)}
`)

// KEYS[1] room key
// ARGV[1] now ms, ARGV[2] round duration ms, ARGV[3] ttl ms
// Replies with the updated room and the round's question stripped of its
// correct-option field.
var scriptStartNextRound = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'starting' and room.status ~= 'round_ended' then
  return {'invalid_state'}
end
if room.current_round >= room.total_rounds then
  return {'no_more_rounds'}
end
local question = room.questions and room.questions[room.current_round + 1]
if not question then
  return {'no_question'}
end
room.current_round = room.current_round + 1
room.status = 'round_in_progress'
room.round_started_at = tonumber(ARGV[1])
room.round_ends_at = room.round_started_at + tonumber(ARGV[2])
for _, p in ipairs(room.players) do
  p.current_answer = nil
  p.current_round_score = 0
end
save_room(KEYS[1], room, ARGV[3])
local public = {
  question_id = question.question_id,
  round = question.round,
  text = question.text,
  option_a = question.option_a,
  option_b = question.option_b,
  option_c = question.option_c,
}
return {'ok', cjson.encode(room), cjson.encode(public)}
`)

// KEYS[1] room key
// ARGV[1] user id, ARGV[2] answer, ARGV[3] now ms, ARGV[4] ttl ms
// Third reply element is 1 when every connected player has now answered.
var scriptSubmitAnswer = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'round_in_progress' then
  return {'round_not_active'}
end
local now = tonumber(ARGV[3])
if now > room.round_ends_at then
  return {'round_expired'}
end
local idx, player = find_player(room, ARGV[1])
if not idx then
  return {'player_not_in_room'}
end
if player.current_answer then
  return {'already_answered'}
end
player.current_answer = {
  answer = ARGV[2],
  response_time_ms = now - room.round_started_at,
  answered_at = now,
}
local all_answered = 1
for _, p in ipairs(room.players) do
  if p.is_connected and not p.current_answer then
    all_answered = 0
  end
end
save_room(KEYS[1], room, ARGV[4])
return {'ok', cjson.encode(room), all_answered}
`)

// KEYS[1] room key
// ARGV[1] ttl ms, ARGV[2] max points, ARGV[3] decrement, ARGV[4] min points
// Partitions players by correctness, awards points by answer speed and
// persists the totals in the same atomic step that flips the status.
var scriptEndRound = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'round_in_progress' then
  return {'round_not_active'}
end
local question = room.questions and room.questions[room.current_round]
if not question then
  return {'no_question'}
end
local correct_option = string.upper(question.correct_option)
local correct = {}
for i, p in ipairs(room.players) do
  p.current_round_score = 0
  if p.current_answer and string.upper(p.current_answer.answer) == correct_option then
    table.insert(correct, {player = p, order = i})
  end
end
table.sort(correct, function(a, b)
  if a.player.current_answer.response_time_ms == b.player.current_answer.response_time_ms then
    return a.order < b.order
  end
  return a.player.current_answer.response_time_ms < b.player.current_answer.response_time_ms
end)
local max_pts = tonumber(ARGV[2])
local dec = tonumber(ARGV[3])
local min_pts = tonumber(ARGV[4])
for rank, entry in ipairs(correct) do
  local pts = max_pts - (rank - 1) * dec
  if pts < min_pts then
    pts = min_pts
  end
  entry.player.current_round_score = pts
  entry.player.total_score = entry.player.total_score + pts
end
room.status = 'round_ended'
save_room(KEYS[1], room, ARGV[1])
local results = {}
for _, p in ipairs(room.players) do
  local r = {
    user_id = p.user_id,
    correct = p.current_round_score > 0,
    points_awarded = p.current_round_score,
    total_score = p.total_score,
  }
  if p.current_answer then
    r.answer = p.current_answer.answer
    r.response_time_ms = p.current_answer.response_time_ms
  end
  table.insert(results, r)
end
local board = {}
for i, p in ipairs(room.players) do
  table.insert(board, {user_id = p.user_id, display_name = p.display_name, score = p.total_score, order = i})
end
table.sort(board, function(a, b)
  if a.score == b.score then
    return a.order < b.order
  end
  return a.score > b.score
end)
for rank, e in ipairs(board) do
  e.rank = rank
  e.order = nil
end
local result = {
  round = room.current_round,
  correct_option = question.correct_option,
  results = results,
  leaderboard = board,
  last_round = room.current_round >= room.total_rounds,
}
return {'ok', cjson.encode(room), cjson.encode(result)}
`)

// KEYS[1] room key
// ARGV[1] reverse-index key prefix
// Deletes the room and every player's reverse-index entry after computing the
// final standings.
var scriptEndGame = redis.NewScript(luaPrelude + `
local room, err = load_room(KEYS[1])
if err then return {err} end
if not room then return {'room_not_found'} end
if room.status ~= 'round_ended' and room.status ~= 'cancelled' then
  return {'invalid_state'}
end
local board = {}
for i, p in ipairs(room.players) do
  table.insert(board, {user_id = p.user_id, display_name = p.display_name, score = p.total_score, order = i})
end
table.sort(board, function(a, b)
  if a.score == b.score then
    return a.order < b.order
  end
  return a.score > b.score
end)
for rank, e in ipairs(board) do
  e.rank = rank
  e.order = nil
end
for _, p in ipairs(room.players) do
  redis.call('DEL', ARGV[1] .. p.user_id)
end
redis.call('DEL', KEYS[1])
local result = {
  room_id = room.id,
  game_type = room.game_type,
  cancelled = room.status == 'cancelled',
  standings = board,
}
return {'ok', cjson.encode(result)}
`)
