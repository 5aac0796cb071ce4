package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vitalwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVArchive_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	a := NewCSVArchive(path)
	ctx := context.Background()
	at := time.Date(2025, 5, 10, 1, 39, 11, 869684000, time.Local)

	require.NoError(t, a.Archive(ctx, "k1", at, models.Reading{
		HeartRate:    intP(45),
		SpO2:         intP(97),
		AccelX:       floatP(0.12),
		AccelY:       floatP(-9.8),
		AccelZ:       floatP(1),
		GyroX:        floatP(0),
		GyroY:        floatP(0),
		GyroZ:        floatP(0.5),
		FallDetected: boolP(true),
		FallWarning:  strP("Fall Detected!"),
	}))
	require.NoError(t, a.Archive(ctx, "k2", at.Add(time.Second), models.Reading{HeartRate: intP(80)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Timestamp,HeartRate,SpO2,AccelX,AccelY,AccelZ,GyroX,GyroY,GyroZ,FallDetected,BPWarning,FallWarning", lines[0])
	assert.Equal(t, "2025-05-10T01:39:11.869684,45,97,0.12,-9.8,1,0,0,0.5,True,None,Fall Detected!", lines[1])
	assert.Equal(t, "2025-05-10T01:39:12.869684,80,,,,,,,,False,None,None", lines[2])
}

func TestCSVArchive_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(CSVArchiveHeader, ",")+"\n"), 0o644))

	a := NewCSVArchive(path)
	require.NoError(t, a.Archive(context.Background(), "k", time.Now(), models.Reading{SpO2: intP(99)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Timestamp,"))
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestCSVArchive_BadPath(t *testing.T) {
	a := NewCSVArchive(filepath.Join(t.TempDir(), "missing", "dir", "x.csv"))
	assert.Error(t, a.Archive(context.Background(), "k", time.Now(), models.Reading{}))
}
