package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitalwatch/internal/chat"
	"vitalwatch/internal/config"
	"vitalwatch/internal/dashboard"
	httpapi "vitalwatch/internal/http"
	"vitalwatch/internal/logger"
	"vitalwatch/internal/service"
	"vitalwatch/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "vitalwatch-dashboard",
		File:        cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		if cfg.Store.Required {
			log.Fatal("Failed to connect to realtime store", zap.Error(err))
		}
		// 连接失败：继续以默认状态提供服务
		log.Error("Failed to connect to realtime store, serving default state", zap.Error(err))
		st = store.NewUnavailable(err)
	}
	defer st.Close()

	state := dashboard.NewState(cfg.Dashboard.ChartSize, time.Now())
	adapter := dashboard.NewAdapter(st, state, dashboard.AdapterOptions{
		HistoryLimit: cfg.Dashboard.HistoryLimit,
	}, log)
	if err := adapter.Start(ctx); err != nil {
		log.Warn("Live feed not available", zap.Error(err))
	}

	sessions := chat.NewSessions(chat.DefaultResponder(), cfg.Chat.ReplyDelay, cfg.Chat.SessionTTL, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterVitalsRoutes(httpapi.NewVitalsHandler(state, adapter, log))
	router.RegisterChatRoutes(httpapi.NewChatHandler(sessions, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	if err := adapter.Stop(); err != nil {
		log.Warn("Failed to stop adapter", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop HTTP server", zap.Error(err))
	}
	log.Info("vitalwatch-dashboard stopped")
}
