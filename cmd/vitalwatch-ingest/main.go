package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vitalwatch/internal/config"
	"vitalwatch/internal/database"
	"vitalwatch/internal/ingest"
	"vitalwatch/internal/logger"
	"vitalwatch/internal/mqtt"
	"vitalwatch/internal/repository"
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
		ServiceName: "vitalwatch-ingest",
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
		log.Fatal("Failed to connect to realtime store", zap.Error(err))
	}
	defer st.Close()

	// 归档：PostgreSQL（可选）+ 本地 CSV（可选）
	var archivers []ingest.Archiver
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			log.Warn("DB enabled but connection failed, archiving disabled", zap.Error(err))
		} else {
			defer database.Close(db)
			repo := repository.NewVitalLogRepository(db, log)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Warn("Failed to ensure vital_logs schema", zap.Error(err))
			}
			archivers = append(archivers, repo)
			log.Info("DB archive enabled")
		}
	}
	if cfg.Ingest.CSVArchive != "" {
		archivers = append(archivers, repository.NewCSVArchive(cfg.Ingest.CSVArchive))
		log.Info("CSV archive enabled", zap.String("path", cfg.Ingest.CSVArchive))
	}

	processor := ingest.NewProcessor(st, archivers, log)

	var consumer *ingest.MQTTConsumer
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer client.Disconnect()

		consumer = ingest.NewMQTTConsumer(client, cfg.MQTT.Topic, cfg.MQTT.QoS, processor, log)
		if err := consumer.Start(ctx); err != nil {
			log.Fatal("Failed to start MQTT consumer", zap.Error(err))
		}
	}

	tcp := ingest.NewTCPServer(cfg.Ingest.Addr, processor, log)
	if err := tcp.Listen(); err != nil {
		log.Fatal("Failed to start TCP server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- tcp.Serve(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("TCP server failed", zap.Error(err))
		}
	}
	cancel()

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			log.Warn("Failed to stop MQTT consumer", zap.Error(err))
		}
	}
	if err := tcp.Stop(); err != nil {
		log.Warn("Failed to stop TCP server", zap.Error(err))
	}
	log.Info("vitalwatch-ingest stopped")
}
