package vitals

const (
	BPUnknown = "Unknown"
	BPLow     = "Low Heart Rate - Potential Low Blood Pressure"
	BPHigh    = "High Heart Rate - Potential High Blood Pressure"
	BPNormal  = "Normal"

	FallDetectedLabel = "Fall Detected!"
	NoFallLabel       = "No fall detected"

	lowHeartRate  = 60
	highHeartRate = 100
)

// DeriveBPWarning 根据心率推导血压风险提示（纯阈值判断，无滞回）
func DeriveBPWarning(heartRate *int) string {
	if heartRate == nil || *heartRate == 0 {
		return BPUnknown
	}
	switch {
	case *heartRate < lowHeartRate:
		return BPLow
	case *heartRate > highHeartRate:
		return BPHigh
	default:
		return BPNormal
	}
}

// FallWarning 跌倒状态提示
func FallWarning(detected bool) string {
	if detected {
		return FallDetectedLabel
	}
	return NoFallLabel
}
