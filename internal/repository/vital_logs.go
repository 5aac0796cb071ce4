package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitalwatch/internal/models"

	"go.uber.org/zap"
)

// VitalLog vital_logs 表中的一行
type VitalLog struct {
	Key        string
	RecordedAt time.Time
	Reading    models.Reading
}

// VitalLogRepository 传感器帧归档（PostgreSQL）
type VitalLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVitalLogRepository 创建归档仓库
func NewVitalLogRepository(db *sql.DB, logger *zap.Logger) *VitalLogRepository {
	return &VitalLogRepository{
		db:     db,
		logger: logger,
	}
}

const createVitalLogsTable = `
CREATE TABLE IF NOT EXISTS vital_logs (
	log_key       TEXT PRIMARY KEY,
	recorded_at   TIMESTAMPTZ NOT NULL,
	heart_rate    INTEGER,
	spo2          INTEGER,
	accel_x       DOUBLE PRECISION,
	accel_y       DOUBLE PRECISION,
	accel_z       DOUBLE PRECISION,
	gyro_x        DOUBLE PRECISION,
	gyro_y        DOUBLE PRECISION,
	gyro_z        DOUBLE PRECISION,
	fall_detected BOOLEAN,
	bp_warning    TEXT,
	fall_warning  TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema 建表（幂等）
func (r *VitalLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createVitalLogsTable); err != nil {
		return fmt.Errorf("failed to create vital_logs table: %w", err)
	}
	return nil
}

// Archive 写入一帧；同一个 key 重复写入时忽略
func (r *VitalLogRepository) Archive(ctx context.Context, key string, at time.Time, reading models.Reading) error {
	if key == "" {
		return fmt.Errorf("log_key is required")
	}

	query := `
		INSERT INTO vital_logs (
			log_key, recorded_at, heart_rate, spo2,
			accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z,
			fall_detected, bp_warning, fall_warning
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (log_key) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		key, at,
		nullInt(reading.HeartRate), nullInt(reading.SpO2),
		nullFloat(reading.AccelX), nullFloat(reading.AccelY), nullFloat(reading.AccelZ),
		nullFloat(reading.GyroX), nullFloat(reading.GyroY), nullFloat(reading.GyroZ),
		nullBool(reading.FallDetected), nullString(reading.BPWarning), nullString(reading.FallWarning),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vital log %s: %w", key, err)
	}
	return nil
}

// ListRecent 按 log_key 降序返回最近 limit 条
func (r *VitalLogRepository) ListRecent(ctx context.Context, limit int) ([]VitalLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT log_key, recorded_at, heart_rate, spo2,
			accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z,
			fall_detected, bp_warning, fall_warning
		FROM vital_logs
		ORDER BY log_key DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vital logs: %w", err)
	}
	defer rows.Close()

	var out []VitalLog
	for rows.Next() {
		var (
			log                    VitalLog
			heartRate, spo2        sql.NullInt64
			ax, ay, az, gx, gy, gz sql.NullFloat64
			fallDetected           sql.NullBool
			bpWarning, fallWarning sql.NullString
		)
		if err := rows.Scan(&log.Key, &log.RecordedAt, &heartRate, &spo2,
			&ax, &ay, &az, &gx, &gy, &gz,
			&fallDetected, &bpWarning, &fallWarning); err != nil {
			return nil, fmt.Errorf("failed to scan vital log: %w", err)
		}
		log.Reading = models.Reading{
			HeartRate:    intPtr(heartRate),
			SpO2:         intPtr(spo2),
			AccelX:       floatPtr(ax),
			AccelY:       floatPtr(ay),
			AccelZ:       floatPtr(az),
			GyroX:        floatPtr(gx),
			GyroY:        floatPtr(gy),
			GyroZ:        floatPtr(gz),
			FallDetected: boolPtr(fallDetected),
			BPWarning:    stringPtr(bpWarning),
			FallWarning:  stringPtr(fallWarning),
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vital logs: %w", err)
	}
	return out, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
