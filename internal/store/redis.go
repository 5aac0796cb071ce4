package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewRedisClient 创建Redis客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 测试Redis连接
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// RedisStore 基于 Redis 的实时库
//
// 布局（prefix 默认 "vitalwatch:"）：
//   - <prefix>realtime_data          当前值（JSON）
//   - <prefix>realtime_data:updates  更新通知频道（payload 为 JSON）
//   - <prefix>logs                   hash: key -> JSON
//   - <prefix>logs:keys              zset: score 全为 0，成员按字典序即按 key 排序
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) liveKey() string     { return s.prefix + LiveLocation }
func (s *RedisStore) liveChannel() string { return s.prefix + LiveLocation + ":updates" }
func (s *RedisStore) logsKey() string     { return s.prefix + LogsLocation }
func (s *RedisStore) logsIndexKey() string {
	return s.prefix + LogsLocation + ":keys"
}

// SetLive 写入当前值并发布通知
func (s *RedisStore) SetLive(ctx context.Context, r models.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.liveKey(), payload, 0)
		pipe.Publish(ctx, s.liveChannel(), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set live value: %w", err)
	}
	return nil
}

// AppendLog 写入一条日志
func (s *RedisStore) AppendLog(ctx context.Context, key string, r models.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.logsKey(), key, payload)
		pipe.ZAdd(ctx, s.logsIndexKey(), &redis.Z{Score: 0, Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append log %s: %w", key, err)
	}
	return nil
}

// RecentLogs 最近 limit 条日志（key 升序）
func (s *RedisStore) RecentLogs(ctx context.Context, limit int) ([]models.KeyedLog, error) {
	if limit <= 0 {
		return []models.KeyedLog{}, nil
	}

	keys, err := s.client.ZRange(ctx, s.logsIndexKey(), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log index: %w", err)
	}
	if len(keys) == 0 {
		return []models.KeyedLog{}, nil
	}

	values, err := s.client.HMGet(ctx, s.logsKey(), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}

	logs := make([]models.KeyedLog, 0, len(keys))
	for i, key := range keys {
		raw, ok := values[i].(string)
		if !ok {
			continue
		}
		r, err := vitals.DecodeReading([]byte(raw))
		if err != nil || r == nil {
			s.logger.Warn("Skipping unreadable log entry", zap.String("key", key), zap.Error(err))
			continue
		}
		logs = append(logs, models.KeyedLog{Key: key, Reading: *r})
	}
	return logs, nil
}

// LatestLog 最新一条日志
func (s *RedisStore) LatestLog(ctx context.Context) (models.KeyedLog, error) {
	logs, err := s.RecentLogs(ctx, 1)
	if err != nil {
		return models.KeyedLog{}, err
	}
	return latestOf(logs)
}

// SubscribeLive 先订阅频道再读取当前值，避免错过两者之间的更新
func (s *RedisStore) SubscribeLive(ctx context.Context, onValue LiveHandler, onError ErrorHandler) (Subscription, error) {
	pubsub := s.client.Subscribe(ctx, s.liveChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.liveChannel(), err)
	}

	sub := &redisSubscription{pubsub: pubsub, done: make(chan struct{})}

	raw, err := s.client.Get(ctx, s.liveKey()).Result()
	switch {
	case err == redis.Nil:
		onValue(nil)
	case err != nil:
		onError(fmt.Errorf("failed to read live value: %w", err))
	default:
		s.deliver([]byte(raw), onValue, onError)
	}

	go func() {
		defer close(sub.done)
		for msg := range pubsub.Channel() {
			s.deliver([]byte(msg.Payload), onValue, onError)
		}
	}()

	return sub, nil
}

func (s *RedisStore) deliver(raw []byte, onValue LiveHandler, onError ErrorHandler) {
	r, err := vitals.DecodeReading(raw)
	if err != nil {
		onError(err)
		return
	}
	onValue(r)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
	err    error
}

func (s *redisSubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
		<-s.done
	})
	return s.err
}
