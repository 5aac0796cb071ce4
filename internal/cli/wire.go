package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitalwatch/internal/config"
	"vitalwatch/internal/database"
	"vitalwatch/internal/logger"
	"vitalwatch/internal/store"

	"go.uber.org/zap"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time

	st store.Store
	db *sql.DB
}

func (a *app) wire(verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	// console 格式输出到 stderr，不干扰命令输出
	log, err := logger.New(logger.Options{Level: level, Format: "console", ServiceName: "vitalwatch"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.cfg = cfg
	a.logger = log
	a.now = time.Now
	return nil
}

// store 按需连接实时库
func (a *app) store(ctx context.Context) (store.Store, error) {
	if a.st != nil {
		return a.st, nil
	}
	st, err := store.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.st = st
	return st, nil
}

// database 按需连接归档库
func (a *app) database(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if !a.cfg.Database.Enabled {
		return nil, fmt.Errorf("archive database is disabled (set DB_ENABLED=true)")
	}
	db, err := database.NewPostgresDB(ctx, &a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.st != nil {
		_ = a.st.Close()
		a.st = nil
	}
	if a.db != nil {
		_ = database.Close(a.db)
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
