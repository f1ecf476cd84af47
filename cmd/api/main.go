package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/catalog"
	"valentine-storefront/internal/config"
	"valentine-storefront/internal/db"
	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/httpserver"
	"valentine-storefront/internal/logger"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/notify"
	accountrepo "valentine-storefront/internal/repository/account"
	"valentine-storefront/internal/repository/cartstore"
	messagerepo "valentine-storefront/internal/repository/message"
	orderrepo "valentine-storefront/internal/repository/order"
	productrepo "valentine-storefront/internal/repository/product"
	profilerepo "valentine-storefront/internal/repository/profile"
	reviewrepo "valentine-storefront/internal/repository/review"
	tokenrepo "valentine-storefront/internal/repository/token"
	"valentine-storefront/internal/service/favorites"
	"valentine-storefront/internal/service/identity"
	"valentine-storefront/internal/service/inbox"
	"valentine-storefront/internal/service/order"
	"valentine-storefront/internal/service/profile"
	"valentine-storefront/internal/service/review"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithLevel(logger.New("api", cfg.Development), cfg.LogLevel)
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	// Subscriptions live until shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	store, err := docstore.Open(ctx, cfg.DocstoreBackend, dbpool, cfg.FirebaseProjectID, cfg.FirebaseCredentials, logger.Component(log, "docstore"))
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	var publisher notify.Publisher = notify.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := notify.NewKafka(cfg.KafkaBrokers, notify.DefaultTopic, logger.Component(log, "notify"))
		if err != nil {
			return fmt.Errorf("connect to kafka: %w", err)
		}
		publisher = k
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	profileRepo := profilerepo.NewDocstore(store, log)
	messageRepo := messagerepo.NewDocstore(store, log)
	reviewRepo := reviewrepo.NewDocstore(store, log)

	identityOpts := []identity.Option{identity.WithPublisher(publisher)}
	if cfg.FirebaseProjectID != "" {
		verifier, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			return err
		}
		identityOpts = append(identityOpts, identity.WithFederated(verifier))
	}
	identityService := identity.New(
		accountrepo.NewPostgres(dbpool, log),
		tokenrepo.NewPostgres(dbpool),
		profileRepo,
		logger.Component(log, "identity"),
		identityOpts...,
	)

	catalogService := catalog.NewService(productrepo.NewDocstore(store, log), catalog.NewShuffler(nil), m, logger.Component(log, "catalog"))
	if err := catalogService.Start(ctx); err != nil {
		return fmt.Errorf("start catalog feed: %w", err)
	}
	defer catalogService.Close()

	reviewFeed := review.NewTracker(reviewRepo, logger.Component(log, "reviews"))
	if err := reviewFeed.Start(ctx); err != nil {
		return fmt.Errorf("start review feed: %w", err)
	}
	defer reviewFeed.Close()

	srv := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		Auth:        identityService,
		Catalog:     catalogService,
		Carts:       cartstore.NewRedis(redisClient, "storefront:", logger.Component(log, "cart")),
		Orders:      order.New(orderrepo.NewDocstore(store, log), publisher, m, logger.Component(log, "order")),
		Profiles:    profile.New(profileRepo, log),
		Favorites:   favorites.New(profileRepo, logger.Component(log, "favorites")),
		Reviews:     review.New(reviewRepo, log),
		ReviewFeed:  reviewFeed,
		Inbox:       inbox.New(messageRepo, publisher, logger.Component(log, "inbox")),
		ProfileRepo: profileRepo,
		MessageRepo: messageRepo,
		Metrics:     m,
		Gatherer:    reg,
		Ready: func(ctx context.Context) error {
			if err := dbpool.Ping(ctx); err != nil {
				return errors.New("db not reachable")
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return errors.New("redis not reachable")
			}
			return nil
		},
		CORSOrigins: cfg.CORSOrigins,
		AdminKey:    cfg.AdminKey,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	// Stop the feeds; Shutdown ends open event streams itself.
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return nil
	}
	log.Info().Msg("server stopped")
	return nil
}
