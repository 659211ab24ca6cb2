package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/config"
	"github.com/umorjyoti/simplifly/internal/handlers"
	"github.com/umorjyoti/simplifly/internal/metrics"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/repository"
	"github.com/umorjyoti/simplifly/internal/scheduler"
	"github.com/umorjyoti/simplifly/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting simplifly",
		zap.String("server_address", cfg.Server.GetAddress()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("database connection established")

	repo := repository.New(dbPool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	reg := metrics.New()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	svc := service.New(repo, tokens, logger,
		service.WithMetrics(reg),
		service.WithSuperadmins(cfg.Auth.SuperadminEmails),
		service.WithDefaultSettings(models.WorkspaceSettings{
			PeriodType: models.PeriodType(cfg.Billing.DefaultPeriodType),
			Currency:   models.Currency(cfg.Billing.DefaultCurrency),
		}),
	)
	handler := handlers.New(svc, tokens, logger)

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			logger.Fatal("invalid scheduler timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
		}
		jobs, err = scheduler.New(svc,
			scheduler.WithLogger(logger),
			scheduler.WithLocation(loc),
			scheduler.WithInviteExpirySpec(cfg.Scheduler.InviteExpirySpec),
		)
		if err != nil {
			logger.Fatal("failed to configure scheduler", zap.Error(err))
		}
		jobs.Start()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				logger.Info("request",
					zap.String("method", c.Request().Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
				)
			} else {
				logger.Error("request error",
					zap.String("method", c.Request().Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Error(v.Error),
				)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	handler.RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		if err := repo.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	go func() {
		addr := cfg.Server.GetAddress()
		logger.Info("server listening", zap.String("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			logger.Error("scheduler shutdown error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// initLogger builds a zap logger from the logger config
func initLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// initDatabase opens the PostgreSQL connection pool
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
