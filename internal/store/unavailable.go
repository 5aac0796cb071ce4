package store

import (
	"context"
	"fmt"

	"vitalwatch/internal/models"
)

// Unavailable 启动时连接失败后的占位 Store：所有操作返回连接错误，
// 调用方按错误处理流程保留默认状态
type Unavailable struct {
	err error
}

func NewUnavailable(err error) *Unavailable {
	return &Unavailable{err: fmt.Errorf("store unavailable: %w", err)}
}

func (u *Unavailable) SubscribeLive(context.Context, LiveHandler, ErrorHandler) (Subscription, error) {
	return nil, u.err
}

func (u *Unavailable) LatestLog(context.Context) (models.KeyedLog, error) {
	return models.KeyedLog{}, u.err
}

func (u *Unavailable) RecentLogs(context.Context, int) ([]models.KeyedLog, error) {
	return nil, u.err
}

func (u *Unavailable) SetLive(context.Context, models.Reading) error { return u.err }

func (u *Unavailable) AppendLog(context.Context, string, models.Reading) error { return u.err }

func (u *Unavailable) Close() error { return nil }
