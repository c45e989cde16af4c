package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// ConnectRedis initializes a singleton Redis client based on environment variables.
// Redis is opt-in through REDIS_ENABLED=true and never used under APPENV=test.
// Returns the client (or nil) and an error if the ping failed.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		if isTestEnv() || os.Getenv("REDIS_ENABLED") != "true" {
			return
		}

		addr := getEnv("REDIS_ADDR", "localhost:6379")
		dbNum := 0
		if v, e := strconv.Atoi(os.Getenv("REDIS_DB")); e == nil {
			dbNum = v
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       dbNum,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping failed: %w", err)
			return
		}

		redisClient = rdb
		slog.Info("connected to redis", "addr", addr, "db", dbNum)
	})
	return redisClient, err
}

// GetRedisClient returns the initialized Redis client (nil when Redis is disabled or unreachable).
func GetRedisClient() *redis.Client {
	return redisClient
}

// SetRedisClientForTesting allows tests to inject a mock Redis client.
func SetRedisClientForTesting(client *redis.Client) {
	redisClient = client
}
