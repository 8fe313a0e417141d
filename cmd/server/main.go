package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/drive-in-checkout/internal/config"
	"github.com/iliyamo/drive-in-checkout/internal/database"
	"github.com/iliyamo/drive-in-checkout/internal/handler"
	"github.com/iliyamo/drive-in-checkout/internal/logging"
	"github.com/iliyamo/drive-in-checkout/internal/metrics"
	"github.com/iliyamo/drive-in-checkout/internal/payment"
	"github.com/iliyamo/drive-in-checkout/internal/queue"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
	"github.com/iliyamo/drive-in-checkout/internal/router"
	"github.com/iliyamo/drive-in-checkout/internal/service"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User:         cfg.DBUser,
		Pass:         cfg.DBPass,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("db migrate")
		}
		log.Info("schema is up to date")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var rdb *redis.Client
	if rc, err := config.NewRedisClient(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable; checkout rate limiting and product caching are disabled")
	} else {
		rdb = rc
		defer rdb.Close()
	}

	store := repository.NewMySQLStore(db)
	opts := []service.Option{service.WithLogger(log), service.WithObserver(m)}
	if cfg.RabbitMQURL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQURL, log)
		defer pub.Close()
		opts = append(opts, service.WithPublisher(pub))
	} else {
		log.Info("RABBITMQ_URL not set; notifications are stored but not relayed")
	}

	checkout := service.NewCheckoutService(store, payment.NewAuthorizer(), opts...)
	e := router.New(router.Deps{
		JWTSecret: cfg.JWTSecret,
		Log:       log,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Metrics:   m.Handler(),
		Requests:  m,
		DB:        db,
		Checkout:  handler.NewCheckoutHandler(checkout),
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(store)),
		Accounts:  handler.NewAccountHandler(service.NewAccountService(store)),
		Operator:  handler.NewOperatorHandler(service.NewReservationService(store, log)),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	if cfg.RabbitMQURL != "" {
		relay := &queue.Relay{URL: cfg.RabbitMQURL, Dir: cfg.NotifyLogDir, Log: log, Observer: m}
		g.Go(func() error { return relay.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
