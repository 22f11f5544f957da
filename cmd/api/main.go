package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tutor-school/crm-portal/crm-portal-backend/internal/auth"
	"tutor-school/crm-portal/crm-portal-backend/internal/config"
	"tutor-school/crm-portal/crm-portal-backend/internal/grouplessons"
	"tutor-school/crm-portal/crm-portal-backend/internal/lessons"
	"tutor-school/crm-portal/crm-portal-backend/internal/notifications"
	"tutor-school/crm-portal/crm-portal-backend/internal/notifications/websocket"
	"tutor-school/crm-portal/crm-portal-backend/internal/packages"
	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
	"tutor-school/crm-portal/crm-portal-backend/internal/stats"
	"tutor-school/crm-portal/crm-portal-backend/internal/students"
	"tutor-school/crm-portal/crm-portal-backend/internal/teachers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	dbURL := cfg.Database.GetDatabaseURL()
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&students.Student{},
		&teachers.Teacher{},
		&lessons.Lesson{},
		&grouplessons.GroupLesson{},
		&grouplessons.Participant{},
		&packages.Package{},
		&notifications.Notification{},
		&notifications.DeliveryLog{},
	); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Aggregates go through sqlx on the same database.
	statsDB, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to open stats connection", zap.Error(err))
	}
	defer statsDB.Close()

	// ---------------- AUTH ----------------
	authService := auth.NewService(db, cfg.Security)
	authHandler := auth.NewHandler(authService)

	// ---------------- NOTIFICATIONS ----------------
	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	studentsRepo := students.NewRepository(db)
	var emailSender *notifications.EmailSender
	if cfg.Email.Enabled {
		emailSender = notifications.NewEmailSender(cfg.Email, logger)
	}
	notifService := notifications.NewService(db, wsManager, emailSender, students.NewEmailDirectory(studentsRepo), logger)
	notifHandler := notifications.NewHandler(notifService, wsManager)

	// ---------------- STUDENTS / TEACHERS ----------------
	studentsHandler := students.NewHandler(students.NewService(studentsRepo))
	teachersHandler := teachers.NewHandler(teachers.NewRepository(db))

	// ---------------- PACKAGES ----------------
	packagesService := packages.NewService(packages.NewRepository(db), logger)
	packagesHandler := packages.NewHandler(packagesService)

	// ---------------- LESSONS ----------------
	lessonsRepo := lessons.NewRepository(db)
	lessonsService := lessons.NewService(
		lessonsRepo,
		scheduling.NewLessonTransitionTable(),
		notifService,
		packagesService,
		logger,
	)
	lessonsHandler := lessons.NewHandler(lessonsService)

	// ---------------- GROUP LESSONS ----------------
	groupService := grouplessons.NewService(
		grouplessons.NewRepository(db),
		scheduling.NewGroupLessonStateMachine(),
		notifService,
		logger,
	)
	groupHandler := grouplessons.NewHandler(groupService)

	// ---------------- STATS ----------------
	statsService := stats.NewService(stats.NewPostgresRepository(statsDB), logger)
	statsHandler := stats.NewHandler(statsService)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	auth.RegisterRoutes(router, authHandler)

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		authHandler.RegisterProtectedRoutes(api)
		studentsHandler.RegisterRoutes(api)
		teachersHandler.RegisterRoutes(api)
		packagesHandler.RegisterRoutes(api)
		lessonsHandler.RegisterRoutes(api)
		groupHandler.RegisterRoutes(api)
		notifHandler.RegisterRoutes(api)
		statsHandler.RegisterRoutes(api)
	}

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Server.GetServerAddr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
