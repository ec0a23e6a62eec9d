package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hotel-pms/config"
	"hotel-pms/repository"
	"hotel-pms/routes"
	"hotel-pms/services"
)

func main() {
	// Load .env (optional)
	envErr := godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Info(".env not found; continuing with environment variables")
	}
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var store repository.Store
	if cfg.DBDriver == "memory" {
		store = repository.NewMemoryStore()
		log.Warn("using in-memory store; data is lost on restart")
	} else {
		db, err := config.ConnectDatabase(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("database connect failed")
		}
		store = repository.NewGormStore(db)
		log.WithField("driver", db.Dialector.Name()).Info("database connection established")
	}

	if cfg.DBSeed || cfg.DBDriver == "memory" {
		if err := config.SeedDatabase(ctx, store, cfg, log); err != nil {
			log.WithError(err).Fatal("seed failed")
		}
	}

	var (
		locker      services.RoomLocker
		redisClient *redis.Client
	)
	switch cfg.LockBackend {
	case "redis":
		client, err := config.NewRedisClient(ctx)
		if err != nil {
			log.WithError(err).Fatal("redis connect failed")
		}
		redisClient = client
		locker = services.NewRedisRoomLocker(client, cfg.RoomLockTTL, log)
		log.Info("room locks held in redis")
	default:
		locker = services.NewLocalRoomLocker()
	}

	var (
		events services.EventPublisher = services.LogPublisher{Log: log}
		rabbit *services.RabbitPublisher
	)
	if cfg.RabbitMQURL != "" {
		p, err := services.NewRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.WithError(err).Fatal("rabbitmq connect failed")
		}
		rabbit = p
		events = p
		log.WithField("exchange", services.EventExchange).Info("publishing events to rabbitmq")
	}

	svcs := services.New(services.Deps{
		Store:  store,
		Locker: locker,
		Events: events,
		Log:    log,
		Policy: services.Policy{
			ReleaseNoShows:           cfg.ReleaseNoShowRooms,
			ForbidCancelAfterCheckIn: !cfg.AllowCancelAfterCheckIn,
		},
		DefaultCurrency: cfg.DefaultCurrency,
		DefaultTaxRate:  cfg.DefaultTaxRate,
	})

	router := routes.SetupRouter(svcs, cfg.CORSOrigins, log)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if rabbit != nil {
		rabbit.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("server stopped")
}
