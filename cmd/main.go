package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"detect-runner/config"
	telegram "detect-runner/internal/api"
	app "detect-runner/internal/application"
	"detect-runner/internal/container"
	"detect-runner/internal/domain/port"
	"detect-runner/internal/infrastructure/sqlite"
	"detect-runner/internal/infrastructure/storage"
	"detect-runner/internal/infrastructure/vision"
	"detect-runner/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid config: %v", err)
		return 1
	}

	logg := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Каталог запуска создаётся только если нужно сохранять результат
	var store port.ResultStore
	if cfg.Save {
		store = storage.NewRunStore(cfg.ProjectDir, cfg.RunName, cfg.SaveTxt)
	}

	var history port.HistoryRepository
	if cfg.HistoryDB != "" {
		db, err := sqlite.Open(cfg.HistoryDB)
		if err != nil {
			logg.WithError(err).Warn("History disabled")
		} else {
			defer db.Close()
			history = sqlite.NewHistoryRepository(db)
		}
	}

	var notifier port.Notifier
	if cfg.TelegramEnabled() {
		n, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, logg)
		if err != nil {
			logg.WithError(err).Warn("Telegram notifications disabled")
		} else {
			notifier = n
		}
	}

	// Собираем сервисы приложения
	c := container.New(vision.NewYOLOLoader(cfg.InputSize), store, history, notifier, logg, os.Stdout)

	_, err = c.DetectionService.Run(ctx, app.DetectionRequest{
		WeightsPath: cfg.ModelPath,
		NamesPath:   cfg.NamesPath,
		ImagePath:   cfg.ImagePath,
		Confidence:  cfg.Confidence,
		IoU:         cfg.IoU,
		Save:        cfg.Save,
		Show:        cfg.Show,
	})
	if err != nil {
		logg.WithError(err).Error("Detection failed")
		return 1
	}

	return 0
}
