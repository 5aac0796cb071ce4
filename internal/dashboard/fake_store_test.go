package dashboard

import (
	"context"
	"sync"

	"vitalwatch/internal/models"
	"vitalwatch/internal/store"
)

// fakeStore 内存实现，仅用于单元测试
type fakeStore struct {
	mu           sync.Mutex
	initial      *models.Reading
	subscribeErr error
	initialErr   error
	logs         []models.KeyedLog // key 升序
	logsErr      error
	latestCalls  int
	onValue      store.LiveHandler
	onError      store.ErrorHandler
	unsubscribed bool
}

func (f *fakeStore) SubscribeLive(ctx context.Context, onValue store.LiveHandler, onError store.ErrorHandler) (store.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.mu.Lock()
	f.onValue, f.onError = onValue, onError
	f.mu.Unlock()

	if f.initialErr != nil {
		onError(f.initialErr)
	} else {
		onValue(f.initial)
	}
	return f, nil
}

func (f *fakeStore) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = true
	return nil
}

// push 模拟实时推送
func (f *fakeStore) push(r *models.Reading) {
	f.mu.Lock()
	h := f.onValue
	f.mu.Unlock()
	h(r)
}

func (f *fakeStore) pushError(err error) {
	f.mu.Lock()
	h := f.onError
	f.mu.Unlock()
	h(err)
}

func (f *fakeStore) LatestLog(ctx context.Context) (models.KeyedLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if f.logsErr != nil {
		return models.KeyedLog{}, f.logsErr
	}
	if len(f.logs) == 0 {
		return models.KeyedLog{}, store.ErrNotFound
	}
	return f.logs[len(f.logs)-1], nil
}

func (f *fakeStore) RecentLogs(ctx context.Context, limit int) ([]models.KeyedLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	start := len(f.logs) - limit
	if start < 0 {
		start = 0
	}
	return append([]models.KeyedLog(nil), f.logs[start:]...), nil
}

func (f *fakeStore) SetLive(ctx context.Context, r models.Reading) error { return nil }

func (f *fakeStore) AppendLog(ctx context.Context, key string, r models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, models.KeyedLog{Key: key, Reading: r})
	return nil
}

func (f *fakeStore) Close() error { return nil }
