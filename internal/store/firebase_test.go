package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFirebase 最小化的 RTDB REST 模拟
type fakeFirebase struct {
	mu       sync.Mutex
	live     string
	logs     string
	puts     map[string]string
	queries  []string
	failLive bool
}

func (f *fakeFirebase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, r.URL.RawQuery)
	switch {
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.puts[r.URL.Path] = string(body)
		w.Write(body)
	case r.URL.Path == "/realtime_data.json":
		if f.failLive {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Permission denied"}`))
			return
		}
		w.Write([]byte(f.live))
	case r.URL.Path == "/logs.json":
		w.Write([]byte(f.logs))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeFirebase) setFailLive(fail bool) {
	f.mu.Lock()
	f.failLive = fail
	f.mu.Unlock()
}

func (f *fakeFirebase) setLive(v string) {
	f.mu.Lock()
	f.live = v
	f.mu.Unlock()
}

func setupFirebase(t *testing.T) (*fakeFirebase, *FirebaseStore) {
	fake := &fakeFirebase{live: "null", logs: "null", puts: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s := NewFirebaseStore(&config.FirebaseConfig{
		URL:          srv.URL,
		Auth:         "secret-token",
		Timeout:      time.Second,
		PollInterval: 20 * time.Millisecond,
	}, zap.NewNop())
	return fake, s
}

func TestFirebaseStore_RecentLogs_SortedByKey(t *testing.T) {
	fake, s := setupFirebase(t)
	fake.logs = `{
		"2025-05-10T01_39_13_000000": {"HeartRate": 63},
		"2025-05-10T01_39_11_000000": {"HeartRate": 61, "AccelX": 0.5},
		"2025-05-10T01_39_12_000000": {"HeartRate": 62}
	}`

	logs, err := s.RecentLogs(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "2025-05-10T01_39_11_000000", logs[0].Key)
	assert.Equal(t, "2025-05-10T01_39_13_000000", logs[2].Key)
	assert.Equal(t, 0.5, *logs[0].Reading.AccelX)

	last := fake.queries[len(fake.queries)-1]
	assert.Contains(t, last, "limitToLast=50")
	assert.Contains(t, last, "orderBy=%22%24key%22")
	assert.Contains(t, last, "auth=secret-token")
}

func TestFirebaseStore_LatestLog_Empty(t *testing.T) {
	_, s := setupFirebase(t)

	_, err := s.LatestLog(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirebaseStore_Writes(t *testing.T) {
	fake, s := setupFirebase(t)
	ctx := context.Background()

	require.NoError(t, s.SetLive(ctx, models.Reading{HeartRate: intPtr(80)}))
	require.NoError(t, s.AppendLog(ctx, "2025-05-10T01_39_11_869684", models.Reading{HeartRate: intPtr(80)}))

	var live models.Reading
	require.NoError(t, json.Unmarshal([]byte(fake.puts["/realtime_data.json"]), &live))
	assert.Equal(t, 80, *live.HeartRate)
	assert.Contains(t, fake.puts, "/logs/2025-05-10T01_39_11_869684.json")
}

func TestFirebaseStore_SubscribeLive_EmitsOnChange(t *testing.T) {
	fake, s := setupFirebase(t)
	rec := newRecorder()

	sub, err := s.SubscribeLive(context.Background(), rec.onValue, rec.onError)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	rec.wait(t) // 首次：null

	fake.setLive(`{"HeartRate":110}`)
	rec.wait(t)

	require.NoError(t, sub.Unsubscribe())

	values, errs := rec.snapshot()
	assert.Empty(t, errs)
	require.Len(t, values, 2)
	assert.Nil(t, values[0])
	assert.Equal(t, 110, *values[1].HeartRate)
}

func TestFirebaseStore_SubscribeLive_ReportsHTTPError(t *testing.T) {
	fake, s := setupFirebase(t)
	fake.failLive = true
	rec := newRecorder()

	sub, err := s.SubscribeLive(context.Background(), rec.onValue, rec.onError)
	require.NoError(t, err)

	rec.wait(t)
	require.NoError(t, sub.Unsubscribe())

	_, errs := rec.snapshot()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "401")
}

func TestFirebaseStore_SubscribeLive_PersistentErrorReportedOnce(t *testing.T) {
	fake, s := setupFirebase(t)
	fake.setLive(`{"HeartRate":70}`)
	rec := newRecorder()

	sub, err := s.SubscribeLive(context.Background(), rec.onValue, rec.onError)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	rec.wait(t) // 首次：HeartRate 70

	fake.setFailLive(true)
	rec.wait(t)
	time.Sleep(300 * time.Millisecond) // 约 15 个轮询周期持续失败

	values, errs := rec.snapshot()
	assert.Len(t, errs, 1)
	assert.Len(t, values, 1)

	// 恢复后即使值未变化也重新下发
	fake.setFailLive(false)
	rec.wait(t)
	require.NoError(t, sub.Unsubscribe())

	values, errs = rec.snapshot()
	assert.Len(t, errs, 1)
	require.Len(t, values, 2)
	assert.Equal(t, 70, *values[1].HeartRate)
}
