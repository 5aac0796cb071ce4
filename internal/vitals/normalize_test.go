package vitals

import (
	"testing"
	"time"

	"vitalwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

var fixedNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func TestNormalize_LowHeartRateOnly(t *testing.T) {
	snap := Normalize(&models.Reading{HeartRate: intPtr(45)}, fixedNow)

	assert.Equal(t, 45, snap.HeartRate)
	assert.Equal(t, 98, snap.SpO2)
	assert.Equal(t, BPLow, snap.BPWarning)
	assert.False(t, snap.FallDetected)
	assert.Equal(t, NoFallLabel, snap.FallWarning)
	assert.Equal(t, fixedNow.UnixMilli(), snap.Timestamp)
}

func TestNormalize_Defaults(t *testing.T) {
	snap := Normalize(&models.Reading{HeartRate: intPtr(0), SpO2: intPtr(0)}, fixedNow)

	assert.Equal(t, DefaultHeartRate, snap.HeartRate)
	assert.Equal(t, DefaultSpO2, snap.SpO2)
	// 推导使用原始心率（缺失/0），而不是默认值
	assert.Equal(t, BPUnknown, snap.BPWarning)
}

func TestNormalize_NilReading(t *testing.T) {
	snap := Normalize(nil, fixedNow)
	assert.Equal(t, DefaultHeartRate, snap.HeartRate)
	assert.Equal(t, BPUnknown, snap.BPWarning)
	assert.Equal(t, NoFallLabel, snap.FallWarning)
}

func TestNormalize_PayloadLabelsWin(t *testing.T) {
	snap := Normalize(&models.Reading{
		HeartRate:    intPtr(120),
		FallDetected: boolPtr(true),
		BPWarning:    strPtr("BP too high"),
		FallWarning:  strPtr("Fall detected - check surroundings"),
	}, fixedNow)

	assert.Equal(t, "BP too high", snap.BPWarning)
	assert.True(t, snap.FallDetected)
	assert.Equal(t, "Fall detected - check surroundings", snap.FallWarning)
}

func TestNormalize_EmptyAndNoneLabelsAreDerived(t *testing.T) {
	snap := Normalize(&models.Reading{
		HeartRate:    intPtr(120),
		FallDetected: boolPtr(true),
		BPWarning:    strPtr("None"),
		FallWarning:  strPtr(""),
	}, fixedNow)

	assert.Equal(t, BPHigh, snap.BPWarning)
	assert.Equal(t, FallDetectedLabel, snap.FallWarning)
}

func TestNormalizeLog_TimestampFromKey(t *testing.T) {
	snap := NormalizeLog("2025-05-10T01_39_11_869684", &models.Reading{HeartRate: intPtr(70)}, fixedNow, time.UTC)

	want := time.Date(2025, 5, 10, 1, 39, 11, 869684000, time.UTC).UnixMilli()
	assert.Equal(t, want, snap.Timestamp)
	assert.Equal(t, BPNormal, snap.BPWarning)
}

func TestNormalizeLog_BadKeyFallsBackToNow(t *testing.T) {
	snap := NormalizeLog("-Nx1234", &models.Reading{HeartRate: intPtr(70)}, fixedNow, time.UTC)
	assert.Equal(t, fixedNow.UnixMilli(), snap.Timestamp)
}

func TestToHistorical_KeepsMotionAxes(t *testing.T) {
	rec := ToHistorical("2025-05-10T01_39_11", &models.Reading{
		HeartRate: intPtr(101),
		SpO2:      intPtr(96),
		AccelX:    floatPtr(0.12),
		GyroZ:     floatPtr(-3.5),
	}, fixedNow, time.UTC)

	assert.Equal(t, "2025-05-10T01_39_11", rec.ID)
	assert.Equal(t, 101, rec.HeartRate)
	assert.Equal(t, BPHigh, rec.BPWarning)
	require.NotNil(t, rec.AccelX)
	assert.Equal(t, 0.12, *rec.AccelX)
	assert.Nil(t, rec.AccelY)
	require.NotNil(t, rec.GyroZ)
	assert.Equal(t, -3.5, *rec.GyroZ)
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	records := []models.HistoricalRecord{
		{ID: "a", VitalsSnapshot: models.VitalsSnapshot{Timestamp: 100}},
		{ID: "b", VitalsSnapshot: models.VitalsSnapshot{Timestamp: 300}},
		{ID: "c", VitalsSnapshot: models.VitalsSnapshot{Timestamp: 200}},
		{ID: "d", VitalsSnapshot: models.VitalsSnapshot{Timestamp: 300}},
	}

	SortNewestFirst(records)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
}
