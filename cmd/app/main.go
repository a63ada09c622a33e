package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/vibe-gaming/publisher/internal/api/http"
	"github.com/vibe-gaming/publisher/internal/cache"
	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/db"
	"github.com/vibe-gaming/publisher/internal/queue/asynqserver"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/internal/server"
	"github.com/vibe-gaming/publisher/internal/service"
	"github.com/vibe-gaming/publisher/internal/worker"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/email/smtp"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/logger"
	"github.com/vibe-gaming/publisher/pkg/otp"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting publisher api")
	logger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		err = dbMySQL.Close()
		if err != nil {
			logger.Error("error when closing", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	if cfg.Database.Migrate {
		if err := db.Migrate(context.Background(), dbMySQL); err != nil {
			logger.Error("mysql migration failed", zap.Error(err))
			return
		}
		logger.Info("mysql migrations applied")
	}

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		return
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("error when closing redis", zap.Error(err))
		}
	}()
	logger.Info("redis connection done")

	hasher := hash.NewBcryptHasher(cfg.Auth.BcryptCost)

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		logger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT, cfg.Auth.Recovery)
	if err != nil {
		logger.Error("auth manager creation err", zap.Error(err))
		return
	}

	otpGenerator := otp.NewGOTPGenerator()

	queueClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Error("error when closing queue client", zap.Error(err))
		}
	}()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL, redisClient)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hasher,
		TokenManager: tokenManager,
		OtpGenerator: otpGenerator,
		Repos:        repos,
		TaskEnqueuer: queueClient,
	})
	handlers := apiHttp.NewHandlers(services, cfg)
	router, err := handlers.Init(cfg)
	if err != nil {
		logger.Error("http router init failed", zap.Error(err))
		return
	}

	// Email worker
	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})
	queueServer, queueMux := asynqserver.New(cfg.Cache, workers)
	if err := queueServer.Start(queueMux); err != nil {
		logger.Error("queue server start failed", zap.Error(err))
		return
	}
	logger.Info("queue server started")

	// HTTP Server
	srv := server.NewServer(cfg.HttpServer, router)
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	queueServer.Shutdown()

	logger.Info("app stopped")
}
