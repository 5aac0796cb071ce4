package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"
)

// ErrInvalidFrame 帧不是 JSON 对象或不含任何生命体征字段
var ErrInvalidFrame = errors.New("invalid sensor frame")

// Frame 设备端上报的一帧传感器数据
//
//	{"Timestamp":"2025-05-10T01:39:11.869684","HeartRate":45,"SpO2":97,
//	 "AccelX":0.1,...,"FallDetected":false,"BPWarning":"None","FallWarning":"None"}
type Frame struct {
	Timestamp string
	Reading   models.Reading
}

const frameLocalLayout = "2006-01-02T15:04:05.999999999"

// DecodeFrame 解析一帧；"None" 提示按缺失处理
func DecodeFrame(raw []byte) (Frame, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Frame{}, fmt.Errorf("%w: not a JSON object", ErrInvalidFrame)
	}

	r, err := vitals.DecodeReading(raw)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	var meta struct {
		Timestamp any `json:"Timestamp"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	f := Frame{Reading: *r}
	if s, ok := meta.Timestamp.(string); ok {
		f.Timestamp = s
	}
	f.Reading.BPWarning = dropNone(f.Reading.BPWarning)
	f.Reading.FallWarning = dropNone(f.Reading.FallWarning)

	if !f.Reading.HasVitals() {
		return Frame{}, fmt.Errorf("%w: no vital fields", ErrInvalidFrame)
	}
	return f, nil
}

// Time 解析帧时间戳（RFC 3339 或无时区的本地 ISO 时间）
func (f Frame) Time(loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(f.Timestamp)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation(frameLocalLayout, s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// LiveReading 写入 realtime_data 的字段（不含运动轴）
func (f Frame) LiveReading() models.Reading {
	return models.Reading{
		HeartRate:    f.Reading.HeartRate,
		SpO2:         f.Reading.SpO2,
		FallDetected: f.Reading.FallDetected,
		BPWarning:    f.Reading.BPWarning,
		FallWarning:  f.Reading.FallWarning,
	}
}

func dropNone(v *string) *string {
	if v == nil || *v == "" || *v == "None" {
		return nil
	}
	return v
}
