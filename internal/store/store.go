package store

import (
	"context"
	"errors"
	"fmt"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"

	"go.uber.org/zap"
)

// ErrNotFound 请求的位置为空
var ErrNotFound = errors.New("not found")

// Location names inside the realtime store.
const (
	LiveLocation = "realtime_data"
	LogsLocation = "logs"
)

// LiveHandler 实时位置的值变化回调；r 为 nil 表示该位置为空
type LiveHandler func(r *models.Reading)

// ErrorHandler 订阅错误回调
type ErrorHandler func(err error)

// Subscription 长连接订阅句柄
type Subscription interface {
	Unsubscribe() error
}

// Store 远端实时库（dashboard 读、ingest 写）
type Store interface {
	// SubscribeLive 订阅实时位置：先回调一次当前值，之后每次更新回调
	SubscribeLive(ctx context.Context, onValue LiveHandler, onError ErrorHandler) (Subscription, error)
	// LatestLog 按 key 排序的最新一条日志，集合为空时返回 ErrNotFound
	LatestLog(ctx context.Context) (models.KeyedLog, error)
	// RecentLogs 按 key 排序的最近 limit 条日志（key 升序）
	RecentLogs(ctx context.Context, limit int) ([]models.KeyedLog, error)
	SetLive(ctx context.Context, r models.Reading) error
	AppendLog(ctx context.Context, key string, r models.Reading) error
	Close() error
}

// Open 按配置创建 Store
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := NewRedisClient(&cfg.Redis)
		if err := Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix, logger), nil
	case config.BackendFirebase:
		return NewFirebaseStore(&cfg.Firebase, logger), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// latestOf 取 RecentLogs(1) 的结果
func latestOf(logs []models.KeyedLog) (models.KeyedLog, error) {
	if len(logs) == 0 {
		return models.KeyedLog{}, ErrNotFound
	}
	return logs[len(logs)-1], nil
}
