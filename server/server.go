package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perch/config"
	"perch/core/auth"
	"perch/core/follow"
	"perch/db"
	"perch/logger"
	"perch/model"
	"perch/repository"
	"perch/session"
	"perch/storage"
	"perch/view"
)

// Start wires the application together and runs the HTTP server until a
// shutdown signal arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.User{}, &model.Follow{}, &model.Post{}, &model.Hashtag{}); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	uploader, err := storage.NewMinioUploader(cfg)
	if err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	renderer, err := view.NewTemplateRenderer(cfg.TemplateDir)
	if err != nil {
		logger.Fatal("failed to initialize view renderer", logger.ErrorField(err))
	}
	defer renderer.Close()

	userRepo := repository.NewGormUserRepository(db.GormDB)
	postRepo := repository.NewGormPostRepository(db.GormDB)
	sessions := session.NewRedisStore(db.RedisClient, cfg.SessionTTL)
	signer := session.NewSigner(cfg.CookieSecret)
	verifier := auth.NewVerifier(userRepo)
	kakao := auth.NewKakaoBridge(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.KakaoRedirectURL, cfg.CookieSecret, userRepo)
	identity := auth.NewSerializer(sessions, userRepo)
	follows := follow.NewService(userRepo)

	handler := NewWebHandler(cfg, userRepo, postRepo, verifier, kakao, identity, follows, signer, renderer, uploader)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
