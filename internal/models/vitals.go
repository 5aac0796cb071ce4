package models

// Reading 远端实时库中的原始读数（realtime_data 或 logs/<key>）
// 指针字段区分“缺失”和“零值”
type Reading struct {
	HeartRate    *int     `json:"HeartRate,omitempty"`
	SpO2         *int     `json:"SpO2,omitempty"`
	FallDetected *bool    `json:"FallDetected,omitempty"`
	BPWarning    *string  `json:"BPWarning,omitempty"`
	FallWarning  *string  `json:"FallWarning,omitempty"`
	AccelX       *float64 `json:"AccelX,omitempty"`
	AccelY       *float64 `json:"AccelY,omitempty"`
	AccelZ       *float64 `json:"AccelZ,omitempty"`
	GyroX        *float64 `json:"GyroX,omitempty"`
	GyroY        *float64 `json:"GyroY,omitempty"`
	GyroZ        *float64 `json:"GyroZ,omitempty"`
}

// HasVitals 至少包含一个可识别的生命体征字段
func (r *Reading) HasVitals() bool {
	if r == nil {
		return false
	}
	return r.HeartRate != nil || r.SpO2 != nil || r.FallDetected != nil ||
		r.BPWarning != nil || r.FallWarning != nil
}

// KeyedLog logs 集合中的一条记录（key 为时间编码字符串）
type KeyedLog struct {
	Key     string
	Reading Reading
}

// VitalsSnapshot 当前读数（仪表盘展示）
type VitalsSnapshot struct {
	HeartRate    int    `json:"heart_rate"`
	SpO2         int    `json:"spo2"`
	FallDetected bool   `json:"fall_detected"`
	BPWarning    string `json:"bp_warning"`
	FallWarning  string `json:"fall_warning"`
	Timestamp    int64  `json:"timestamp"` // epoch millis
}

// HistoricalRecord 历史日志记录
type HistoricalRecord struct {
	ID string `json:"id"` // logs key
	VitalsSnapshot
	AccelX *float64 `json:"accel_x"`
	AccelY *float64 `json:"accel_y"`
	AccelZ *float64 `json:"accel_z"`
	GyroX  *float64 `json:"gyro_x"`
	GyroY  *float64 `json:"gyro_y"`
	GyroZ  *float64 `json:"gyro_z"`
}

// ChartSample 图表窗口中的一个采样点
type ChartSample struct {
	Time      string `json:"time"`
	HeartRate int    `json:"heart_rate"`
	SpO2      int    `json:"spo2"`
}
