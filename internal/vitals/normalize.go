package vitals

import (
	"sort"
	"time"

	"vitalwatch/internal/models"
)

const (
	DefaultHeartRate = 54
	DefaultSpO2      = 98
)

// Normalize 将实时数据规整为 VitalsSnapshot，时间戳取处理时刻
func Normalize(r *models.Reading, now time.Time) models.VitalsSnapshot {
	return normalize(r, now)
}

// NormalizeLog 将 logs 记录规整为 VitalsSnapshot，时间戳从 key 解析，失败时取 now
func NormalizeLog(key string, r *models.Reading, now time.Time, loc *time.Location) models.VitalsSnapshot {
	ts := now
	if t, err := ParseLogKey(key, loc); err == nil {
		ts = t
	}
	return normalize(r, ts)
}

// ToHistorical 将 logs 记录转换为历史记录（含运动传感器数据）
func ToHistorical(key string, r *models.Reading, now time.Time, loc *time.Location) models.HistoricalRecord {
	rec := models.HistoricalRecord{
		ID:             key,
		VitalsSnapshot: NormalizeLog(key, r, now, loc),
	}
	if r != nil {
		rec.AccelX, rec.AccelY, rec.AccelZ = r.AccelX, r.AccelY, r.AccelZ
		rec.GyroX, rec.GyroY, rec.GyroZ = r.GyroX, r.GyroY, r.GyroZ
	}
	return rec
}

// SortNewestFirst 按时间戳降序（稳定排序，时间相同保持原顺序）
func SortNewestFirst(records []models.HistoricalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
}

func normalize(r *models.Reading, ts time.Time) models.VitalsSnapshot {
	if r == nil {
		r = &models.Reading{}
	}

	fall := r.FallDetected != nil && *r.FallDetected

	snap := models.VitalsSnapshot{
		HeartRate:    intOr(r.HeartRate, DefaultHeartRate),
		SpO2:         intOr(r.SpO2, DefaultSpO2),
		FallDetected: fall,
		BPWarning:    labelOr(r.BPWarning, func() string { return DeriveBPWarning(r.HeartRate) }),
		FallWarning:  labelOr(r.FallWarning, func() string { return FallWarning(fall) }),
		Timestamp:    ts.UnixMilli(),
	}
	return snap
}

func intOr(v *int, def int) int {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

// labelOr 设备端无提示时会写入 "None"，与空串一样视为缺失
func labelOr(v *string, derive func() string) string {
	if v == nil || *v == "" || *v == "None" {
		return derive()
	}
	return *v
}
