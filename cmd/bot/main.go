package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-bot/internal/config"
	"attendance-bot/internal/database"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/metrics"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"
	"attendance-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})

	logger.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logger.SetLevel(cfg.LogLevel)
	logger.WithFields(logrus.Fields{
		"driver":            cfg.DatabaseDriver,
		"timezone":          cfg.Location.String(),
		"grace_days":        cfg.GraceDays,
		"detailed_strategy": cfg.DetailedStrategy,
		"compact_strategy":  cfg.CompactStrategy,
	}).Info("Config initialized")

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get database instance")
	}

	operatorRepo, err := repository.NewGormOperatorRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create operator repository")
	}

	companyRepo, err := repository.NewGormCompanyRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create company repository")
	}

	overrideRepo, err := repository.NewGormAttendanceOverrideRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create attendance override repository")
	}

	selector := holidays.NewSelector(holidays.SystemClock{}, cfg.Location)
	selector.GraceDays = cfg.GraceDays

	holidayService := service.NewHolidayService(selector, overrideRepo, logger)
	operatorService := service.NewOperatorService(operatorRepo, logger)
	companyService := service.NewCompanyService(companyRepo)
	detailedEditor := service.NewDetailedEditor(holidayService, companyRepo, overrideRepo, cfg.DetailedStrategy, logger)
	compactEditor := service.NewCompactEditor(holidayService, companyRepo, overrideRepo, cfg.CompactStrategy, logger)
	reportService := service.NewReportService(companyRepo, overrideRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := operatorService.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		logger.WithError(err).Warn("Failed to initialize admin")
	} else if cfg.BaseAdminChatID != 0 {
		logger.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Telegram client")
	}
	logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client.Bot,
		operatorService,
		companyService,
		holidayService,
		detailedEditor,
		compactEditor,
		reportService,
		cfg,
		logger,
	)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.WithField("addr", cfg.MetricsAddr).Info("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)
	done := make(chan struct{})
	go func() {
		defer close(done)
		botHandler.HandleUpdates(ctx, updates)
	}()

	logger.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	client.Bot.StopReceivingUpdates()
	<-done

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Error stopping metrics server")
		}
		cancel()
	}

	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("Error closing database")
	}

	logger.Info("Bot stopped gracefully")
}
