package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReading_Null(t *testing.T) {
	for _, raw := range []string{"", "null", "  null \n"} {
		r, err := DecodeReading([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, r)
	}
}

func TestDecodeReading_TolerantNumbers(t *testing.T) {
	r, err := DecodeReading([]byte(`{"HeartRate": 72.0, "SpO2": "97", "AccelX": 0.25, "GyroY": "oops", "FallDetected": null}`))
	require.NoError(t, err)
	require.NotNil(t, r)

	require.NotNil(t, r.HeartRate)
	assert.Equal(t, 72, *r.HeartRate)
	require.NotNil(t, r.SpO2)
	assert.Equal(t, 97, *r.SpO2)
	require.NotNil(t, r.AccelX)
	assert.Equal(t, 0.25, *r.AccelX)
	assert.Nil(t, r.GyroY)
	assert.Nil(t, r.FallDetected)
	assert.True(t, r.HasVitals())
}

func TestDecodeReading_UnrecognizedFields(t *testing.T) {
	r, err := DecodeReading([]byte(`{"Temperature": 36.7}`))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.HasVitals())
}

func TestDecodeReading_NotAnObject(t *testing.T) {
	_, err := DecodeReading([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestDecodeLogs_SkipsBrokenEntries(t *testing.T) {
	logs, skipped, err := DecodeLogs([]byte(`{
		"2025-05-10T01_39_11_869684": {"HeartRate": 58, "SpO2": 97},
		"2025-05-10T01_39_12_000000": "garbage",
		"2025-05-10T01_39_13_000000": null
	}`))
	require.NoError(t, err)

	assert.Len(t, logs, 1)
	assert.Equal(t, 58, *logs["2025-05-10T01_39_11_869684"].HeartRate)
	assert.ElementsMatch(t, []string{"2025-05-10T01_39_12_000000", "2025-05-10T01_39_13_000000"}, skipped)
}
