package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"vitalwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func f64(v float64) *float64 { return &v }

func sampleRecords() []models.HistoricalRecord {
	ts := time.Date(2025, 5, 10, 1, 39, 11, 869_000_000, time.UTC).UnixMilli()
	return []models.HistoricalRecord{
		{
			ID: "2025-05-10T01_39_11_869684",
			VitalsSnapshot: models.VitalsSnapshot{
				HeartRate:    45,
				SpO2:         97,
				FallDetected: true,
				BPWarning:    "Low Heart Rate - Potential Low Blood Pressure",
				FallWarning:  "Fall Detected!",
				Timestamp:    ts,
			},
			AccelX: f64(0.12), AccelY: f64(-9.8), AccelZ: f64(1),
			GyroX: f64(0), GyroY: f64(2.5), GyroZ: f64(-0.75),
		},
		{
			ID: "2025-05-10T01_38_00_000000",
			VitalsSnapshot: models.VitalsSnapshot{
				HeartRate:   80,
				SpO2:        98,
				BPWarning:   "Normal",
				FallWarning: "No fall detected",
				Timestamp:   ts - 71_869,
			},
		},
	}
}

func TestCSV_Empty(t *testing.T) {
	data, ok, err := CSV(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestCSV_Rows(t *testing.T) {
	data, ok, err := CSV(sampleRecords())
	require.NoError(t, err)
	require.True(t, ok)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Timestamp,Heart Rate,SpO2,AccelX,AccelY,AccelZ,GyroX,GyroY,GyroZ,BP Warning,Fall Detected", lines[0])
	assert.Equal(t, "2025-05-10T01:39:11.869Z,45,97,0.12,-9.8,1,0,2.5,-0.75,Low Heart Rate - Potential Low Blood Pressure,Yes", lines[1])
	assert.Equal(t, "2025-05-10T01:38:00.000Z,80,98,N/A,N/A,N/A,N/A,N/A,N/A,Normal,No", lines[2])
}

func TestCSV_LineCountMatchesRecords(t *testing.T) {
	base := sampleRecords()[1]
	records := make([]models.HistoricalRecord, 50)
	for i := range records {
		records[i] = base
	}
	data, ok, err := CSV(records)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 51, strings.Count(string(data), "\n"))
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 5, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "health_logs_2025-05-10.csv", Filename(now, "csv"))
	assert.Equal(t, "health_logs_2025-05-10.xlsx", Filename(now, "xlsx"))
}

func TestXLSX_Empty(t *testing.T) {
	data, ok, err := XLSX([]models.HistoricalRecord{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestXLSX_Rows(t *testing.T) {
	data, ok, err := XLSX(sampleRecords())
	require.NoError(t, err)
	require.True(t, ok)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "2025-05-10T01:39:11.869Z", rows[1][0])
	assert.Equal(t, "45", rows[1][1])
	assert.Equal(t, "Yes", rows[1][10])
	assert.Equal(t, "N/A", rows[2][3])
	assert.Equal(t, "No", rows[2][10])
}
