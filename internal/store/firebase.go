package store

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FirebaseStore Firebase Realtime Database REST 客户端
// 参考：https://firebase.google.com/docs/reference/rest/database
type FirebaseStore struct {
	httpClient   *resty.Client
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewFirebaseStore 创建 Firebase 客户端
func NewFirebaseStore(cfg *config.FirebaseConfig, logger *zap.Logger) *FirebaseStore {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Auth != "" {
		client.SetQueryParam("auth", cfg.Auth)
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &FirebaseStore{
		httpClient:   client,
		pollInterval: interval,
		logger:       logger,
	}
}

func (s *FirebaseStore) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("firebase GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("firebase GET %s: status %s", path, resp.Status())
	}
	return resp.Body(), nil
}

func (s *FirebaseStore) put(ctx context.Context, path string, body any) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Put(path)
	if err != nil {
		return fmt.Errorf("firebase PUT %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("firebase PUT %s: status %s", path, resp.Status())
	}
	return nil
}

func (s *FirebaseStore) SetLive(ctx context.Context, r models.Reading) error {
	return s.put(ctx, "/"+LiveLocation+".json", r)
}

func (s *FirebaseStore) AppendLog(ctx context.Context, key string, r models.Reading) error {
	return s.put(ctx, "/"+LogsLocation+"/"+url.PathEscape(key)+".json", r)
}

// RecentLogs orderBy="$key" + limitToLast；REST 返回对象，需按 key 重新排序
func (s *FirebaseStore) RecentLogs(ctx context.Context, limit int) ([]models.KeyedLog, error) {
	if limit <= 0 {
		return []models.KeyedLog{}, nil
	}

	body, err := s.get(ctx, "/"+LogsLocation+".json", map[string]string{
		"orderBy":     `"$key"`,
		"limitToLast": fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, err
	}

	entries, skipped, err := vitals.DecodeLogs(body)
	if err != nil {
		return nil, err
	}
	for _, key := range skipped {
		s.logger.Warn("Skipping unreadable log entry", zap.String("key", key))
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logs := make([]models.KeyedLog, 0, len(keys))
	for _, k := range keys {
		logs = append(logs, models.KeyedLog{Key: k, Reading: *entries[k]})
	}
	return logs, nil
}

func (s *FirebaseStore) LatestLog(ctx context.Context) (models.KeyedLog, error) {
	logs, err := s.RecentLogs(ctx, 1)
	if err != nil {
		return models.KeyedLog{}, err
	}
	return latestOf(logs)
}

// SubscribeLive 轮询实时位置，值变化时回调；首次结果及错误恢复后的结果总会回调
func (s *FirebaseStore) SubscribeLive(ctx context.Context, onValue LiveHandler, onError ErrorHandler) (Subscription, error) {
	pollCtx, cancel := context.WithCancel(ctx)
	sub := &pollSubscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var last []byte
		first := true
		erroring := false
		for {
			body, err := s.get(pollCtx, "/"+LiveLocation+".json", nil)
			switch {
			case pollCtx.Err() != nil:
				return
			case err != nil:
				// 持续失败只回调一次；恢复后重新下发当前值
				if !erroring {
					erroring = true
					onError(err)
				}
				first = true
				last = nil
			case first || !bytes.Equal(body, last):
				erroring = false
				first = false
				last = body
				r, err := vitals.DecodeReading(body)
				if err != nil {
					onError(err)
				} else {
					onValue(r)
				}
			}

			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return sub, nil
}

func (s *FirebaseStore) Close() error {
	return nil
}

type pollSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *pollSubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}
