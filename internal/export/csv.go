package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"vitalwatch/internal/models"
)

// Header 导出表头（CSV 与 XLSX 共用）
var Header = []string{
	"Timestamp",
	"Heart Rate",
	"SpO2",
	"AccelX",
	"AccelY",
	"AccelZ",
	"GyroX",
	"GyroY",
	"GyroZ",
	"BP Warning",
	"Fall Detected",
}

const (
	notAvailable    = "N/A"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// CSV 生成历史记录 CSV；记录为空时不生成（返回 false）
func CSV(records []models.HistoricalRecord) ([]byte, bool, error) {
	if len(records) == 0 {
		return nil, false, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, false, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(Row(rec)); err != nil {
			return nil, false, fmt.Errorf("failed to write csv row %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, false, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), true, nil
}

// Row 单条记录按 Header 顺序转为文本
func Row(rec models.HistoricalRecord) []string {
	return []string{
		FormatTimestamp(rec.Timestamp),
		strconv.Itoa(rec.HeartRate),
		strconv.Itoa(rec.SpO2),
		axis(rec.AccelX),
		axis(rec.AccelY),
		axis(rec.AccelZ),
		axis(rec.GyroX),
		axis(rec.GyroY),
		axis(rec.GyroZ),
		rec.BPWarning,
		yesNo(rec.FallDetected),
	}
}

// FormatTimestamp epoch 毫秒 -> UTC RFC 3339（毫秒精度）
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}

// Filename health_logs_<YYYY-MM-DD>.<ext>
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("health_logs_%s.%s", now.Format("2006-01-02"), ext)
}

func axis(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
