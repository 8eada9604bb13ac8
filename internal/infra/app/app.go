package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/core/port"
	"github.com/thegrihome/realty-platform-iam/internal/infra/config"
	"github.com/thegrihome/realty-platform-iam/internal/infra/database"
	kafkainfra "github.com/thegrihome/realty-platform-iam/internal/infra/kafka"
	"github.com/thegrihome/realty-platform-iam/internal/infra/logger"
	redisinfra "github.com/thegrihome/realty-platform-iam/internal/infra/redis"
	"github.com/thegrihome/realty-platform-iam/internal/infra/security"
	"github.com/thegrihome/realty-platform-iam/internal/infra/telemetry"
	postgresrepo "github.com/thegrihome/realty-platform-iam/internal/repository/postgres"
	redisrepo "github.com/thegrihome/realty-platform-iam/internal/repository/redis"
	"github.com/thegrihome/realty-platform-iam/internal/transport/http/routes"
	"github.com/thegrihome/realty-platform-iam/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.TracingEnabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	accounts := postgresrepo.NewAccountRepository(pool)
	hasher := security.NewHasher(cfg.Auth.BcryptCost)

	var (
		otpVerifier port.OTPVerifier
		staticOTP   *security.StaticOTPVerifier
	)
	switch cfg.Auth.OTPProvider {
	case "redis":
		store := redisrepo.NewOTPStore(redisClient.Client(), cfg.Redis.OTPKeyPrefix).
			WithDefaultTTL(cfg.Auth.OTPTTL)
		otpVerifier = redisrepo.NewVerifier(store)
		log.Info("redis OTP verifier initialized", zap.String("key_prefix", cfg.Redis.OTPKeyPrefix))
	default:
		staticOTP = security.NewStaticOTPVerifier(cfg.Auth.StaticOTPCode)
		otpVerifier = staticOTP
		log.Info("static OTP verifier initialized")
	}

	// Initialize Kafka event publisher
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	signupService := usecase.NewSignupService(accounts, hasher, eventPublisher, log)
	loginService := usecase.NewLoginService(accounts, hasher, otpVerifier, eventPublisher, log)
	lookupService := usecase.NewLookupService(accounts, log)

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Telemetry: metrics,
		Database:  pool,
		Cache:     redisClient,
		StaticOTP: staticOTP,
		Services: routes.ServiceSet{
			Signup: signupService,
			Login:  loginService,
			Lookup: lookupService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			if err := a.tracer.Shutdown(context.Background()); err != nil {
				a.logger.Warn("shutdown tracer provider", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting IAM API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
