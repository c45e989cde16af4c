package config

import "sync"

// ResetRedisClientForTest clears the Redis singleton so ConnectRedis runs again.
// Only meant for tests.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
