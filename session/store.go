package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps transport-level Redis failures. Callers must
// treat it as retryable and never conflate it with a revoked or expired
// session.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Absence of a session key is the sole signal for "expired by TTL" and
// "explicitly revoked"; the two are indistinguishable on purpose.

const replaceSlotScript = `
local prev = redis.call("GET", KEYS[1])
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
if prev then
  return prev
end
return false
`

var replaceSlotLua = redis.NewScript(replaceSlotScript)

const compareAndDeleteScript = `
local existed = redis.call("EXISTS", KEYS[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var compareAndDeleteLua = redis.NewScript(compareAndDeleteScript)

// Record is the value stored for an active refresh session.
type Record struct {
	UID string `json:"uid"`
}

// Store is the Redis-backed revocation store for refresh sessions, the
// per-bot single-slot session, and the access-token blacklist. All
// operations are key-scoped; the only multi-step operations are executed
// as server-side Lua scripts in a single round trip.
type Store struct {
	redis redis.UniversalClient
}

// NewStore wraps the given Redis client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{redis: client}
}

// SessionKey builds the refresh-session key for a principal. Keys are
// partitioned by (client, user, jti) so distinct principals never contend.
func SessionKey(client, userID, jti string) string {
	return "SESSION:" + client + ":" + userID + ":" + jti
}

// BotSlotKey builds the single-slot session key for a bot.
func BotSlotKey(botID string) string {
	return "SESSION:bot:" + botID + ":current"
}

// BlacklistKey builds the revoked-access-token key for a jti.
func BlacklistKey(jti string) string {
	return "BL:access:" + jti
}

// Put stores value at key with the given TTL.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the value at key, or ("", false, nil) when the key does not
// exist or has expired.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetIfAbsent stores value at key only when the key does not exist (SET NX)
// and reports whether the write happened. Used for access-token
// blacklisting and short-lived locks.
func (s *Store) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	set, err := s.redis.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return set, nil
}

// ReplaceSingleSlot atomically reads the previous slot value and installs
// the new one with the given TTL, in one server-side script. Two concurrent
// replacements serialize inside Redis, so exactly one caller observes any
// given previous value. Returns the previous value, or "" when the slot was
// empty.
func (s *Store) ReplaceSingleSlot(ctx context.Context, slotKey, value string, ttl time.Duration) (string, error) {
	result, err := replaceSlotLua.Run(ctx, s.redis, []string{slotKey}, value, int(ttl.Seconds())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// script returned false: slot was empty
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	prev, ok := result.(string)
	if !ok {
		return "", nil
	}
	return prev, nil
}

// CompareAndDelete removes key and reports whether it existed, in one
// server-side script. Under concurrent rotation of the same refresh token
// only one caller sees existed == true; the loser must treat the session
// as revoked.
func (s *Store) CompareAndDelete(ctx context.Context, key string) (bool, error) {
	existed, err := compareAndDeleteLua.Run(ctx, s.redis, []string{key}).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return existed == 1, nil
}

// SaveSession records an active refresh session under the (client, user,
// jti) key. The TTL must be the refresh token lifetime so key expiry and
// token expiry coincide.
func (s *Store) SaveSession(ctx context.Context, client, userID, jti string, ttl time.Duration) error {
	data, err := json.Marshal(Record{UID: userID})
	if err != nil {
		return err
	}
	return s.Put(ctx, SessionKey(client, userID, jti), string(data), ttl)
}

// SessionAlive reports whether the refresh session for (client, user, jti)
// is still usable. Key existence is the sole source of truth.
func (s *Store) SessionAlive(ctx context.Context, client, userID, jti string) (bool, error) {
	_, ok, err := s.Get(ctx, SessionKey(client, userID, jti))
	return ok, err
}

// Ping returns a point-in-time availability check and its latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
