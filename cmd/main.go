package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/foundermafstat/mafstat-server/config"
	"github.com/foundermafstat/mafstat-server/db"
	"github.com/foundermafstat/mafstat-server/handlers"
	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/realtime"
	"github.com/foundermafstat/mafstat-server/repositories"
	api "github.com/foundermafstat/mafstat-server/routes"
	"github.com/foundermafstat/mafstat-server/services"
	"github.com/foundermafstat/mafstat-server/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	ratingNotifier := realtime.NewRatingNotifier(wsHub)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	federationRepo := repositories.NewPostgresFederationRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	ratingMemberRepo := repositories.NewPostgresRatingMemberRepository(dbConn)
	ratingResultRepo := repositories.NewPostgresRatingResultRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	userService := services.NewUserService(userRepo, cloudflareUploader)
	clubService := services.NewClubService(clubRepo, cloudflareUploader)
	federationService := services.NewFederationService(federationRepo)

	ratingService := services.NewRatingService(
		dbConn, // Для транзакции пересчёта
		ratingRepo,
		ratingMemberRepo,
		ratingResultRepo,
		gameRepo,
		participationRepo,
		userRepo,
		ratingNotifier,
		logger,
	)

	gameService := services.NewGameService(
		dbConn,
		gameRepo,
		participationRepo,
		ratingMemberRepo,
		ratingService, // Игры дёргают пересчёт затронутых рейтингов
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	gameHandler := handlers.NewGameHandler(gameService)
	clubHandler := handlers.NewClubHandler(clubService)
	federationHandler := handlers.NewFederationHandler(federationService)
	userHandler := handlers.NewUserHandler(userService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, ratingService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		ratingHandler,
		gameHandler,
		clubHandler,
		federationHandler,
		userHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
