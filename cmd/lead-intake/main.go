package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/lead-intake/internal/auth"
	"github.com/iwvelando/lead-intake/internal/config"
	"github.com/iwvelando/lead-intake/internal/logging"
	"github.com/iwvelando/lead-intake/internal/metrics"
	"github.com/iwvelando/lead-intake/internal/server"
	"github.com/iwvelando/lead-intake/internal/submission"
	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to HTTP server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for an admin password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main"),
			zap.String("path", *serverConfigLocation),
			zap.Error(err),
		)
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if conf.Store.Redis.Enabled() {
		redisClient = submission.NewRedisClient(conf.Store.Redis)
		defer func() {
			_ = redisClient.Close()
		}()
	}

	store, closeStore, err := buildStore(ctx, logger, conf, redisClient)
	if err != nil {
		logger.Fatal("failed to initialize submission store",
			zap.String("op", "main"),
			zap.String("backend", conf.Store.Backend),
			zap.Error(err),
		)
	}
	defer closeStore()

	var sessions auth.SessionStore
	switch conf.Auth.Session.Backend {
	case constants.SessionRedis:
		sessions = auth.NewRedisSessionStore(redisClient)
	default:
		memorySessions := auth.NewMemorySessionStore()
		defer memorySessions.Stop()
		sessions = memorySessions
	}

	calculator := affordability.NewCalculator(conf.Policy.Apply(affordability.DefaultPolicy()))
	service := submission.NewService(store, calculator, logger)

	limiter := server.NewRateLimiter(serverConf.RateLimit.Requests, serverConf.RateLimitWindow())
	defer limiter.Stop()

	formatter, err := conf.Output.Formatter()
	if err != nil {
		logger.Fatal("invalid output locale",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	handler := server.NewHandler(logger, serverConf, server.Dependencies{
		Submissions: service,
		Auth:        auth.NewAuthenticator(conf.Auth.Admins, sessions, conf.Auth.Session.TTL, logger),
		Metrics:     metrics.New(),
		Health:      server.ProbeFunc(service.Ping),
		Limiter:     limiter,
		Formatter:   formatter,
		Version:     version,
	})

	srv := server.New(logger, serverConf, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// buildStore opens the configured backend and, when Redis is configured,
// fronts it with the read-through cache.
func buildStore(ctx context.Context, logger *zap.Logger, conf *config.Configuration, redisClient *redis.Client) (submission.Store, func(), error) {
	var (
		store     submission.Store
		closeFunc = func() {}
	)

	switch conf.Store.Backend {
	case constants.StorePostgres:
		db, err := submission.NewPostgres(conf.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := submission.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres submission store",
			zap.String("op", "main.buildStore"),
			zap.String("host", conf.Store.Postgres.Host),
			zap.String("database", conf.Store.Postgres.Database),
		)
		store = pg
		closeFunc = func() { _ = db.Close() }
	default:
		logger.Info("using in-memory submission store", zap.String("op", "main.buildStore"))
		store = submission.NewMemoryStore()
	}

	if redisClient != nil {
		store = submission.NewCachedStore(store, redisClient, conf.Store.CacheTTL, logger)
	}
	return store, closeFunc, nil
}
