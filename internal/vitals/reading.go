package vitals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"vitalwatch/internal/models"
)

// DecodeReading 宽松解析实时库中的 JSON：
// 数值字段接受整数、浮点或数字字符串，类型不符的字段按缺失处理。
// 返回 nil 表示该位置为空（null）。
func DecodeReading(raw []byte) (*models.Reading, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode reading: %w", err)
	}

	r := &models.Reading{
		HeartRate:    intField(fields["HeartRate"]),
		SpO2:         intField(fields["SpO2"]),
		FallDetected: boolField(fields["FallDetected"]),
		BPWarning:    stringField(fields["BPWarning"]),
		FallWarning:  stringField(fields["FallWarning"]),
		AccelX:       floatField(fields["AccelX"]),
		AccelY:       floatField(fields["AccelY"]),
		AccelZ:       floatField(fields["AccelZ"]),
		GyroX:        floatField(fields["GyroX"]),
		GyroY:        floatField(fields["GyroY"]),
		GyroZ:        floatField(fields["GyroZ"]),
	}
	return r, nil
}

// DecodeLogs 解析 logs 集合（key -> 记录）；单条记录损坏时跳过
func DecodeLogs(raw []byte) (map[string]*models.Reading, []string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]*models.Reading{}, nil, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to decode logs: %w", err)
	}

	out := make(map[string]*models.Reading, len(entries))
	var skipped []string
	for key, entry := range entries {
		r, err := DecodeReading(entry)
		if err != nil || r == nil {
			skipped = append(skipped, key)
			continue
		}
		out[key] = r
	}
	return out, skipped, nil
}

func floatField(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		n = json.Number(s)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return nil
	}
	return &f
}

func intField(raw json.RawMessage) *int {
	f := floatField(raw)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func boolField(raw json.RawMessage) *bool {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	return &b
}

func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
