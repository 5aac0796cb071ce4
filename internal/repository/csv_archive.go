package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"vitalwatch/internal/models"
)

// CSVArchiveHeader 与设备端 server 的 sensor_data.csv 表头一致
var CSVArchiveHeader = []string{
	"Timestamp", "HeartRate", "SpO2",
	"AccelX", "AccelY", "AccelZ",
	"GyroX", "GyroY", "GyroZ",
	"FallDetected", "BPWarning", "FallWarning",
}

const (
	csvTimestampLayout = "2006-01-02T15:04:05.000000"
	csvNoLabel         = "None"
)

// CSVArchive 追加写入本地 CSV 文件；文件为空时先写表头
type CSVArchive struct {
	mu   sync.Mutex
	path string
}

func NewCSVArchive(path string) *CSVArchive {
	return &CSVArchive{path: path}
}

func (a *CSVArchive) Path() string { return a.path }

// Archive 追加一行（每次打开/关闭文件，外部轮转不受影响）
func (a *CSVArchive) Archive(_ context.Context, _ string, at time.Time, r models.Reading) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv archive %s: %w", a.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat csv archive %s: %w", a.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(CSVArchiveHeader); err != nil {
			return fmt.Errorf("failed to write csv archive header: %w", err)
		}
	}
	if err := w.Write(archiveRow(at, r)); err != nil {
		return fmt.Errorf("failed to write csv archive row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func archiveRow(at time.Time, r models.Reading) []string {
	return []string{
		at.Format(csvTimestampLayout),
		intText(r.HeartRate),
		intText(r.SpO2),
		floatText(r.AccelX),
		floatText(r.AccelY),
		floatText(r.AccelZ),
		floatText(r.GyroX),
		floatText(r.GyroY),
		floatText(r.GyroZ),
		boolText(r.FallDetected),
		labelText(r.BPWarning),
		labelText(r.FallWarning),
	}
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// boolText 与设备端一致：True / False
func boolText(v *bool) string {
	if v != nil && *v {
		return "True"
	}
	return "False"
}

func labelText(v *string) string {
	if v == nil || *v == "" {
		return csvNoLabel
	}
	return *v
}
