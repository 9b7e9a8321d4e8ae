package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"
	"catalog/pkg/cache"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := newLogger(cfg)

	// --- Store ---
	repo, db, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open product store")
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				log.WithError(err).Warn("error closing database")
			}
		}()
	}

	var opts []services.Option

	// --- RabbitMQ (optional) ---
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.WithError(err).Warn("error closing RabbitMQ client")
			}
		}()
		opts = append(opts, services.WithEventPublisher(mqClient))

		if cfg.EventsAuditLog {
			audit := log.WithField("component", "audit")
			if err := mqClient.ConsumeProductEvents(consumerCtx, rabbitmq.AuditLogHandler(audit)); err != nil {
				log.WithError(err).Fatal("failed to start product event consumer")
			}
			log.WithField("queue", cfg.RabbitMQQueue).Info("product event audit consumer started")
		}
	}

	// --- Redis (optional) ---
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
		redisClient, err := cache.NewClient(ctx, cache.Config{Addr: cfg.RedisAddr})
		cancel()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		defer redisClient.Close()
		opts = append(opts, services.WithCache(cache.NewProductCache(redisClient, cfg.CacheTTL)))
	}

	// --- Services and HTTP ---
	productService := services.NewProductService(repo, validation.NewProductValidator(), log, opts...)
	server := app.New(app.Deps{
		Products:      productService,
		Store:         productService,
		Log:           log,
		APIPrefix:     cfg.APIPrefix,
		HealthTimeout: cfg.DBConnectTimeout,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":   cfg.AppPort,
			"driver": cfg.DBDriver,
			"prefix": cfg.APIPrefix,
		}).Info("starting server")
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case <-quit:
		log.Info("shutting down server")
	case err := <-listenErr:
		if err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}

	stopConsumer()
	if err := server.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.WithError(err).Warn("error during server shutdown")
	}
	log.Info("server gracefully stopped")
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// openStore returns the repository for DB_DRIVER. db is nil for the memory driver.
func openStore(cfg *config.Config, log logrus.FieldLogger) (repositories.ProductRepository, *gorm.DB, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory product store; data is lost on restart")
		return repositories.NewMemoryProductRepository(), nil, nil
	}
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.DBConnectTimeout, log)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMProductRepository(db), db, nil
}
