package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/veterinary-salons/backend/config"
)

func sessionKey(sid string) string { return fmt.Sprintf("session:%s", sid) }
func userSessionsKey(userID uint) string { return fmt.Sprintf("user_sessions:%d", userID) }

// removeSessionScript drops the sid from the per-user set and deletes the
// set once it is empty.
const removeSessionScript = `
	local removed = redis.call('SREM', KEYS[1], ARGV[1])
	if removed > 0 then
		if redis.call('SCARD', KEYS[1]) == 0 then
			redis.call('DEL', KEYS[1])
		end
	end
	return removed
`

// CacheSession stores session:<sid> -> user id for ttl and records the sid
// in the per-user set. No-op without Redis.
func CacheSession(ctx context.Context, userID uint, sid string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Set(ctx, sessionKey(sid), strconv.FormatUint(uint64(userID), 10), ttl).Err(); err != nil {
		return err
	}
	setKey := userSessionsKey(userID)
	if err := rdb.SAdd(ctx, setKey, sid).Err(); err != nil {
		return err
	}
	// the set lives until logout or InvalidateUserSessions cleans it
	return rdb.Persist(ctx, setKey).Err()
}

// LookupCachedSession returns the user id of a cached session. found is
// false when Redis is disabled or the key is missing.
func LookupCachedSession(ctx context.Context, sid string) (userID uint, found bool, err error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, false, nil
	}
	val, err := rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session entry for %s: %w", sid, err)
	}
	return uint(id), true, nil
}

// RemoveSession deletes a single cached session.
func RemoveSession(ctx context.Context, userID uint, sid string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return err
	}
	return rdb.Eval(ctx, removeSessionScript, []string{userSessionsKey(userID)}, sid).Err()
}

// InvalidateUserSessions deletes every cached session of the user and the
// per-user set. Individual key deletions are best-effort.
func InvalidateUserSessions(ctx context.Context, userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	setKey := userSessionsKey(userID)
	members, err := rdb.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, sid := range members {
		_ = rdb.Del(ctx, sessionKey(sid)).Err()
	}
	return rdb.Del(ctx, setKey).Err()
}
