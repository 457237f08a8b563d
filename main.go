package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskpad/activity"
	"taskpad/api"
	"taskpad/config"
	"taskpad/domain"
	"taskpad/session"
	"taskpad/storage"
)

type store interface {
	domain.TaskStore
	domain.UserStore
}

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	var st store
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		st = storage.NewMemory()
	default:
		st, err = storage.New(cfg.ConnectionString, cfg.TasksTable, cfg.UsersTable)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
	}

	var sessions domain.SessionStore
	switch cfg.SessionBackend {
	case config.SessionsRedis:
		opts, err := session.ParseRedisOptions(cfg.RedisConn)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		sessions = session.NewRedisStore(redis.NewClient(opts), cfg.SessionTTL)
	default:
		sessions = session.NewMemory()
	}
	if cfg.AppToken != "" {
		if err := sessions.Put(context.Background(), cfg.AppToken, cfg.AppTokenUser); err != nil {
			log.Fatalf("app token: %v", err)
		}
	}

	var publisher domain.Publisher
	var closePublisher func()
	if cfg.ActivityQueue != "" {
		q, err := activity.NewQueueClient(cfg.ConnectionString, cfg.ActivityQueue)
		if err != nil {
			log.Fatalf("activity queue: %v", err)
		}
		p := activity.New(q, logger, activity.Options{
			Workers: cfg.ActivityWorkers,
			Buffer:  cfg.ActivityBuffer,
			Timeout: cfg.ActivityTimeout,
		})
		publisher, closePublisher = p, p.Close
	}

	authOpts := []domain.AuthOption{domain.WithBcryptCost(cfg.BcryptCost)}
	taskOpts := []domain.TaskOption{domain.WithOwnershipPolicy(cfg.Ownership)}
	if publisher != nil {
		authOpts = append(authOpts, domain.WithAuthPublisher(publisher))
		taskOpts = append(taskOpts, domain.WithTaskPublisher(publisher))
	}
	auth := domain.NewAuthService(st, sessions, authOpts...)
	tasks := domain.NewTaskService(st, taskOpts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, api.HeaderAuthToken},
	}))
	api.Register(e, auth, tasks, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{"addr": cfg.Addr(), "store": cfg.Store, "sessions": cfg.SessionBackend, "ownership": cfg.Ownership.String()}).Info("server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if closePublisher != nil {
		closePublisher()
	}
	log.Info("server stopped")
}
