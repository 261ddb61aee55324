package cache

import (
	"context"
	"time"

	"cf_buddy/internal/platform/config"
	"cf_buddy/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// ConnectRedis connects the shared snapshot store. Redis is optional: when it
// is unreachable RDB stays nil and snapshots live in process memory only.
func ConnectRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("Redis unavailable, snapshot cache is memory-only",
			zap.String("addr", config.AppConfig.RedisAddr), zap.Error(err))
		client.Close()
		return
	}
	RDB = client
	logger.Log.Info("Successfully connected to Redis", zap.String("addr", config.AppConfig.RedisAddr))
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		logger.Log.Info("Redis connection closed")
	}
}
