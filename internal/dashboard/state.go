package dashboard

import (
	"sync"
	"time"

	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"
)

const chartTimeLayout = "15:04"

// State 仪表盘视图状态：当前读数、图表窗口、历史记录
// 只能通过 ApplySnapshot / ReplaceHistory 修改；读取方拿到的都是副本
type State struct {
	mu               sync.RWMutex
	current          models.VitalsSnapshot
	chart            *ChartWindow
	history          []models.HistoricalRecord
	historyFetchedAt time.Time
}

// NewState 以默认读数初始化
func NewState(chartSize int, now time.Time) *State {
	hr := vitals.DefaultHeartRate
	return &State{
		current: models.VitalsSnapshot{
			HeartRate:    hr,
			SpO2:         vitals.DefaultSpO2,
			BPWarning:    vitals.DeriveBPWarning(&hr),
			FallDetected: false,
			FallWarning:  vitals.FallWarning(false),
			Timestamp:    now.UnixMilli(),
		},
		chart:   NewChartWindow(chartSize),
		history: []models.HistoricalRecord{},
	}
}

// ApplySnapshot 替换当前读数并追加一个图表采样点
func (s *State) ApplySnapshot(snap models.VitalsSnapshot, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap
	s.chart.Append(models.ChartSample{
		Time:      at.Format(chartTimeLayout),
		HeartRate: snap.HeartRate,
		SpO2:      snap.SpO2,
	})
}

// ReplaceHistory 整体替换历史记录（不做增量合并）
func (s *State) ReplaceHistory(records []models.HistoricalRecord, at time.Time) {
	cp := make([]models.HistoricalRecord, len(records))
	copy(cp, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = cp
	s.historyFetchedAt = at
}

func (s *State) Current() models.VitalsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) Chart() []models.ChartSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chart.Samples()
}

func (s *State) History() []models.HistoricalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]models.HistoricalRecord, len(s.history))
	copy(cp, s.history)
	return cp
}

// HistoryFetchedAt 最近一次成功拉取历史的时间，零值表示尚未拉取
func (s *State) HistoryFetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyFetchedAt
}
