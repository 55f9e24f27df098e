package app

import (
	"context"
	"fmt"
	"time"

	"jobboard_backend/database"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/repositories"
	repoChat "jobboard_backend/internal/repositories/chat"
	"jobboard_backend/internal/routes"
	"jobboard_backend/internal/services"
	chatService "jobboard_backend/internal/services/chat"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/utils"
	"jobboard_backend/internal/validator"
	"jobboard_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         *services.AuthService
	JobService          *services.JobService
	ChatService         *chatService.ChatService
	AttachmentService   *chatService.AttachmentService
	NotificationService *services.NotificationService
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	// Фоновый воркер живет, пока живет процесс
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweepEvery := time.Duration(cfg.Chat.SweepEvery) * time.Minute
	workers.NewApplicationWorker(gormDB, sweepEvery).Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:     cfg.Storage.Type,
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, storageInstance)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage) *ServiceContainer {
	var mailer services.Mailer
	if cfg.Email.SMTPHost != "" {
		mailer = utils.NewEmailSender(cfg)
	} else {
		logger.Warn("--- Email-сервис не сконфигурирован. Используется MOCK. ---")
		mailer = &MockMailer{}
	}

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	threadRepo := repoChat.NewThreadRepository()
	messageRepo := repoChat.NewMessageRepository()

	// --- Инициализация сервисов ---
	notificationService := services.NewNotificationService(mailer)
	authService := services.NewAuthService(userRepo)
	chatSvc := chatService.NewChatService(threadRepo, messageRepo, userRepo, applicationRepo)
	chatSvc.SetNotifier(notificationService)
	attachmentService := chatService.NewAttachmentService(
		chatSvc,
		storageInstance,
		cfg.Upload.MaxSize,
		cfg.Upload.AllowedTypes,
	)
	jobService := services.NewJobService(jobRepo, applicationRepo, chatSvc)

	return &ServiceContainer{
		AuthService:         authService,
		JobService:          jobService,
		ChatService:         chatSvc,
		AttachmentService:   attachmentService,
		NotificationService: notificationService,
	}
}

func initializeHandlers(container *ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, container.AuthService),
		JobHandler:  handlers.NewJobHandler(baseHandler, container.JobService),
		ChatHandler: handlers.NewChatHandler(baseHandler, container.ChatService, container.AttachmentService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
