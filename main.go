package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"rest-planner/api"
	"rest-planner/domain"
	"rest-planner/i18n"
	"rest-planner/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	logger.SetLevel(cfg.LogLevel)

	users, err := storage.LoadUsers(cfg.UsersFile)
	if err != nil {
		logger.Fatalf("users: %v", err)
	}

	var seed []domain.Task
	if cfg.TasksFile != "" {
		seed, err = storage.LoadTasks(cfg.TasksFile)
		if err != nil {
			logger.Fatalf("tasks: %v", err)
		}
	}
	base := storage.New(seed...)

	var store api.TaskStore = base
	if cfg.Redis != nil {
		rc := redis.NewClient(cfg.Redis)
		defer rc.Close()
		store = storage.NewCache(base, rc, cfg.CacheTTL)
	}

	messages, err := i18n.New(cfg.DefaultLocale, cfg.MessagesDir)
	if err != nil {
		logger.Fatalf("messages: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Accept-Language", echo.HeaderContentEncoding},
	}))

	api.Register(e, store, users, messages, logger)

	logger.WithFields(log.Fields{
		"addr":    cfg.ListenAddr,
		"users":   users.Len(),
		"tasks":   len(seed),
		"locales": len(messages.Locales()),
		"cache":   cfg.Redis != nil,
	}).Info("starting rest-planner")

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.ListenAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}
