package ingest

import (
	"context"
	"fmt"
	"time"

	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"

	"go.uber.org/zap"
)

// Writer 实时库写入接口（store.Store 的子集）
type Writer interface {
	SetLive(ctx context.Context, r models.Reading) error
	AppendLog(ctx context.Context, key string, r models.Reading) error
}

// Archiver 帧归档（PostgreSQL / CSV 文件）
type Archiver interface {
	Archive(ctx context.Context, key string, at time.Time, r models.Reading) error
}

// Processor 单帧处理：校验 -> 生成 key -> 写实时值 -> 追加日志 -> 归档
type Processor struct {
	writer    Writer
	archivers []Archiver
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewProcessor(writer Writer, archivers []Archiver, logger *zap.Logger) *Processor {
	return &Processor{
		writer:    writer,
		archivers: archivers,
		loc:       time.Local,
		now:       time.Now,
		logger:    logger,
	}
}

// Process 返回写入的 logs key；归档失败只记录日志
func (p *Processor) Process(ctx context.Context, f Frame) (string, error) {
	if !f.Reading.HasVitals() {
		return "", ErrInvalidFrame
	}

	at, ok := f.Time(p.loc)
	if !ok {
		at = p.now().In(p.loc)
		if f.Timestamp != "" {
			p.logger.Debug("Unparseable frame timestamp, using now", zap.String("timestamp", f.Timestamp))
		}
	}
	key := vitals.EncodeLogKey(at)

	if err := p.writer.SetLive(ctx, f.LiveReading()); err != nil {
		return "", fmt.Errorf("failed to set live reading: %w", err)
	}
	if err := p.writer.AppendLog(ctx, key, f.Reading); err != nil {
		return "", fmt.Errorf("failed to append log %s: %w", key, err)
	}

	for _, a := range p.archivers {
		if err := a.Archive(ctx, key, at, f.Reading); err != nil {
			p.logger.Error("Failed to archive frame", zap.String("key", key), zap.Error(err))
		}
	}

	p.logger.Debug("Frame processed",
		zap.String("key", key),
		zap.Bool("fall_detected", f.Reading.FallDetected != nil && *f.Reading.FallDetected),
	)
	return key, nil
}

// HandleRaw 解析并处理一帧原始 JSON
func (p *Processor) HandleRaw(ctx context.Context, raw []byte) (string, error) {
	f, err := DecodeFrame(raw)
	if err != nil {
		return "", err
	}
	return p.Process(ctx, f)
}
