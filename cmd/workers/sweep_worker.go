package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tutor-school/crm-portal/crm-portal-backend/internal/config"
	"tutor-school/crm-portal/crm-portal-backend/internal/lessons"
	"tutor-school/crm-portal/crm-portal-backend/internal/notifications"
	"tutor-school/crm-portal/crm-portal-backend/internal/notifications/websocket"
	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
	"tutor-school/crm-portal/crm-portal-backend/internal/students"
)

// Standalone sweep worker. Runs the automatic lesson status sweep on its own
// schedule so the API process stays out of the transition loop.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))

	lessonsRepo := lessons.NewRepository(db)
	store := lessons.NewSweepStore(lessonsRepo)

	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	var emailSender *notifications.EmailSender
	if cfg.Email.Enabled {
		emailSender = notifications.NewEmailSender(cfg.Email, logger)
	}
	directory := students.NewEmailDirectory(students.NewRepository(db))
	notifier := notifications.NewService(db, wsManager, emailSender, directory, logger)

	rules := scheduling.DefaultRules(scheduling.RuleConfig{
		CancelWindow:  cfg.Sweep.CancelWindow,
		MissThreshold: cfg.Sweep.MissThreshold,
	})
	sweeper := scheduling.NewSweeper(store, notifier, scheduling.NewEvaluator(rules), logger)

	manager, err := scheduling.NewSweepManager(sweeper, cfg.Sweep.Interval, logger)
	if err != nil {
		logger.Fatal("Failed to create sweep manager", zap.Error(err))
	}

	manager.Start()
	logger.Info("Sweep worker started",
		zap.Duration("interval", cfg.Sweep.Interval),
		zap.Duration("cancel_window", cfg.Sweep.CancelWindow),
		zap.Duration("miss_threshold", cfg.Sweep.MissThreshold))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	manager.Stop()
	logger.Info("Sweep worker stopped")
}
