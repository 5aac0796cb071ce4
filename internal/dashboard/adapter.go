package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vitalwatch/internal/models"
	"vitalwatch/internal/store"
	"vitalwatch/internal/vitals"

	"go.uber.org/zap"
)

// DefaultHistoryLimit 历史记录默认拉取条数
const DefaultHistoryLimit = 50

// AdapterOptions Adapter 可选参数
type AdapterOptions struct {
	HistoryLimit int
	Location     *time.Location // 解析 logs key 使用的时区，默认 time.Local
	Now          func() time.Time
}

// Adapter 数据接入：订阅实时位置，实时位置为空或出错时回退到最新一条日志
type Adapter struct {
	store        store.Store
	state        *State
	logger       *zap.Logger
	historyLimit int
	loc          *time.Location
	now          func() time.Time

	mu  sync.Mutex
	ctx context.Context
	sub store.Subscription
}

// NewAdapter 创建数据接入适配器
func NewAdapter(st store.Store, state *State, opts AdapterOptions, logger *zap.Logger) *Adapter {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Adapter{
		store:        st,
		state:        state,
		logger:       logger,
		historyLimit: opts.HistoryLimit,
		loc:          opts.Location,
		now:          opts.Now,
	}
}

// Start 订阅实时数据并拉取一次历史记录
// 订阅失败时会尝试一次日志回退，并返回错误
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.sub != nil {
		a.mu.Unlock()
		return errors.New("adapter already started")
	}
	a.ctx = ctx
	a.mu.Unlock()

	sub, err := a.store.SubscribeLive(ctx, a.handleLive, a.handleLiveError)
	if err != nil {
		a.logger.Error("Failed to subscribe to realtime data", zap.Error(err))
		a.applyLatestLog(ctx)
		if _, herr := a.RefreshHistory(ctx); herr != nil {
			a.logger.Warn("Initial history fetch failed", zap.Error(herr))
		}
		return fmt.Errorf("failed to subscribe to live feed: %w", err)
	}

	a.mu.Lock()
	a.sub = sub
	a.mu.Unlock()

	a.logger.Info("Subscribed to realtime data", zap.Int("history_limit", a.historyLimit))

	if _, err := a.RefreshHistory(ctx); err != nil {
		a.logger.Warn("Initial history fetch failed", zap.Error(err))
	}
	return nil
}

// Stop 取消实时订阅
func (a *Adapter) Stop() error {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	a.logger.Info("Unsubscribed from realtime data")
	return nil
}

// RefreshHistory 拉取最近的日志并整体替换历史记录；失败时保留原记录
func (a *Adapter) RefreshHistory(ctx context.Context) ([]models.HistoricalRecord, error) {
	logs, err := a.store.RecentLogs(ctx, a.historyLimit)
	if err != nil {
		a.logger.Error("Error fetching logs", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}

	now := a.now()
	records := make([]models.HistoricalRecord, 0, len(logs))
	for i := range logs {
		records = append(records, vitals.ToHistorical(logs[i].Key, &logs[i].Reading, now, a.loc))
	}
	vitals.SortNewestFirst(records)

	a.state.ReplaceHistory(records, now)
	a.logger.Debug("History refreshed", zap.Int("count", len(records)))
	return records, nil
}

func (a *Adapter) handleLive(r *models.Reading) {
	if !r.HasVitals() {
		a.logger.Debug("Realtime data empty, using latest log entry")
		a.applyLatestLog(a.context())
		return
	}

	now := a.now()
	snap := vitals.Normalize(r, now)
	a.state.ApplySnapshot(snap, now)
	a.logger.Debug("Applied realtime snapshot",
		zap.Int("heart_rate", snap.HeartRate),
		zap.Int("spo2", snap.SpO2),
		zap.Bool("fall_detected", snap.FallDetected),
	)
}

func (a *Adapter) handleLiveError(err error) {
	a.logger.Error("Error subscribing to realtime data", zap.Error(err))
	a.applyLatestLog(a.context())
}

// applyLatestLog 读取最新一条日志作为当前读数
func (a *Adapter) applyLatestLog(ctx context.Context) {
	entry, err := a.store.LatestLog(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.logger.Debug("No log entries available for fallback")
			return
		}
		a.logger.Error("Error fetching latest log", zap.Error(err))
		return
	}

	now := a.now()
	snap := vitals.NormalizeLog(entry.Key, &entry.Reading, now, a.loc)
	a.state.ApplySnapshot(snap, now)
	a.logger.Debug("Applied latest log entry", zap.String("key", entry.Key))
}

func (a *Adapter) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}
