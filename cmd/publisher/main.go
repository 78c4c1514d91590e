// @title Video Publisher API
// @version 1.0
// @description Publishing jobs that fan a video out to social accounts through a RabbitMQ task queue.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"video-publisher/internal/auth"
	"video-publisher/internal/config"
	"video-publisher/internal/logging"
	"video-publisher/internal/queue"
	"video-publisher/internal/repository/postgresql"
	"video-publisher/internal/repository/redisstore"
	"video-publisher/internal/service"
	httptransport "video-publisher/internal/transport/http"
	"video-publisher/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("starting publisher",
		zap.Int("workers", cfg.Workers),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("postgres_dsn", config.RedactURL(cfg.Postgres.DSN)),
		zap.String("rabbitmq_url", config.RedactURL(cfg.RabbitMQ.URL)),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Postgres.Migrate {
		if err := postgresql.Migrate(ctx, pool); err != nil {
			logger.Fatal("postgres migrate", zap.Error(err))
		}
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis", zap.Error(err))
	}

	// RabbitMQ
	broker := queue.NewBroker(cfg.RabbitMQ.URL, logger)
	if err := broker.Start(ctx); err != nil {
		logger.Fatal("rabbitmq", zap.Error(err))
	}
	defer broker.Close()

	// DI
	jobs := postgresql.NewJobRepository(pool)
	tasks := postgresql.NewTaskRepository(pool)
	videos := postgresql.NewVideoRepository(pool)
	accounts := postgresql.NewAccountRepository(pool)

	svc := service.NewPublishingService(service.Deps{
		Jobs:      jobs,
		Tasks:     tasks,
		Videos:    videos,
		Accounts:  accounts,
		Publisher: broker,
		Inspector: broker,
		Logger:    logger,
	})

	opts := []worker.ProcessorOption{
		worker.WithMaxAttempts(cfg.Publish.MaxAttempts),
		worker.WithRateLimiter(redisstore.NewRateLimiter(rdb, nil)),
	}
	if cfg.Publish.DedupEnabled {
		opts = append(opts, worker.WithDeliveryGuard(redisstore.NewDeliveryGuard(rdb, cfg.Publish.DedupTTL)))
	}

	// Platform uploaders are registered by deployments that ship them;
	// tasks for unregistered platforms fail as unsupported.
	registry := worker.NewRegistry()
	logger.Info("uploaders registered", zap.Int("count", len(registry.Platforms())), zap.Any("platforms", registry.Platforms()))
	processor := worker.NewProcessor(svc, accounts, broker, registry, logger, opts...)
	workers := worker.NewPool(broker, processor, cfg.Workers, logger)

	authn, err := newAuthenticator(ctx, cfg.Auth)
	if err != nil {
		logger.Fatal("auth", zap.Error(err))
	}

	h := httptransport.NewHandler(svc, broker, logger)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httptransport.Routes(h, authn, logger),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return workers.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("publisher stopped with error", zap.Error(err))
		return
	}
	logger.Info("publisher stopped")
}

func newAuthenticator(ctx context.Context, cfg config.AuthConfig) (auth.Authenticator, error) {
	var chain auth.Chain

	if cfg.OIDCIssuer != "" {
		a, err := auth.NewOIDCAuthenticator(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, nil)
		if err != nil {
			return nil, err
		}
		chain = append(chain, a)
	}

	if len(cfg.StaticTokens) > 0 {
		a, err := auth.NewStaticAuthenticator(cfg.StaticTokens)
		if err != nil {
			return nil, err
		}
		zap.L().Warn("static bearer tokens enabled", zap.Int("tokens", a.Len()))
		chain = append(chain, a)
	}

	if len(chain) == 0 {
		return nil, errors.New("no authenticator configured: set OIDC_ISSUER or AUTH_STATIC_TOKENS")
	}
	return chain, nil
}
