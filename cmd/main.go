package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/authflow/config"
	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/handler"
	"github.com/Payphone-Digital/authflow/internal/middleware"
	"github.com/Payphone-Digital/authflow/internal/repository"
	"github.com/Payphone-Digital/authflow/internal/router"
	"github.com/Payphone-Digital/authflow/internal/service"
	"github.com/Payphone-Digital/authflow/internal/worker"
	"github.com/Payphone-Digital/authflow/pkg/cache"
	"github.com/Payphone-Digital/authflow/pkg/circuit"
	"github.com/Payphone-Digital/authflow/pkg/database"
	"github.com/Payphone-Digital/authflow/pkg/health"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/mail"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"github.com/Payphone-Digital/authflow/pkg/queue"
	"github.com/Payphone-Digital/authflow/pkg/ratelimit"
	"github.com/Payphone-Digital/authflow/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.GetLogger()

	log.Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(config.Database, config.App.Environment)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrated successfully")

	redisClient := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolTimeout:  config.Redis.PoolTimeout,
	}, log)
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	// Revocation fallback used while Redis is off or unreachable
	localCache := cache.NewCache()
	localCache.StartGC(time.Minute)
	defer localCache.Close()

	issuer := service.NewTokenIssuer(config.JWT.Secret, config.JWT.AccessTTL, config.JWT.Issuer)
	revocations := service.NewRevocationList(redisClient, localCache)

	// Outgoing mail and events
	var broker *queue.Client
	if config.RabbitMQ.URL != "" {
		broker, err = queue.New(config.RabbitMQ.URL, config.RabbitMQ.MailQueue, config.RabbitMQ.EventsExchange, log)
		if err != nil {
			if config.Mail.Driver == "queue" {
				log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
			}
			log.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			defer broker.Close()
		}
	}

	renderer, err := mail.NewRenderer(config.App.Name)
	if err != nil {
		log.Fatal("Failed to parse mail templates", zap.Error(err))
	}

	var sender mail.Sender
	switch config.Mail.Driver {
	case "smtp":
		sender = mail.NewSMTPSender(config.Mail.Host, config.Mail.Port, config.Mail.Username, config.Mail.Password, config.Mail.From)
	case "queue":
		sender = mail.NewQueueSender(broker)
	default:
		sender = mail.NewLogSender(log)
	}
	log.Info("Mail delivery configured", zap.String("driver", config.Mail.Driver))

	var events service.EventPublisher
	if broker != nil {
		events = broker
	}

	breakers := circuit.NewRegistry(circuit.DefaultConfig(), log)
	notifier := service.NewDispatchNotifier(renderer, sender, events, breakers)

	// Services
	authService := service.NewAuthService(userRepo, refreshRepo, issuer, revocations, config.JWT.RefreshTTL)
	verificationService := service.NewVerificationService(userRepo, notifier, service.VerificationConfig{
		AppURL:           config.App.URL,
		Secret:           config.Verification.Secret,
		TTL:              config.Verification.TTL,
		RequireSignature: config.Verification.RequireSignature,
	})
	userService := service.NewUserService(userRepo, verificationService, notifier)
	resetService := service.NewPasswordResetService(userRepo, resetRepo, refreshRepo, notifier, service.PasswordResetConfig{
		FrontendURL:        config.App.FrontendURL,
		TTL:                config.Reset.TTL,
		RevealUnknownEmail: config.Reset.RevealUnknownEmail,
	})

	// Health
	monitor := health.NewMonitor(15*time.Second, log)
	monitor.Register("database", true, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	monitor.Register("redis", false, func(ctx context.Context) error {
		if !redisClient.IsEnabled() {
			return health.ErrDisabled
		}
		return redisClient.Ping(ctx)
	})
	monitor.Register("rabbitmq", config.Mail.Driver == "queue", func(ctx context.Context) error {
		if broker == nil {
			return health.ErrDisabled
		}
		return broker.Ping(ctx)
	})
	monitor.Register("mail", false, func(context.Context) error {
		if breakers.Get(service.BreakerMail).State() == circuit.StateOpen {
			return circuit.ErrCircuitOpen
		}
		return nil
	})

	if config.GRPC.HealthPort != "" {
		grpcHealth := health.NewServer(config.App.Name, log)
		monitor.OnChange(grpcHealth.Listener())
		go func() {
			if err := grpcHealth.ListenAndServe(config.GRPC.HealthPort); err != nil {
				log.Error("gRPC health server stopped", zap.Error(err))
			}
		}()
		defer grpcHealth.Stop()
	}
	go monitor.Run(ctx)

	if config.Sweeper.Enabled {
		sweeper := worker.NewSweeper(refreshRepo, resetRepo, revocations, config.Sweeper.Interval, config.Reset.TTL)
		go sweeper.Run(ctx)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	var limiter ratelimit.Limiter
	if redisClient.IsEnabled() {
		limiter = ratelimit.NewRedis(redisClient.Raw(), config.RateLimit.Request, config.RateLimitWindow(), constants.CacheKeyRateLimit)
	} else {
		limiter = ratelimit.NewMemory(config.RateLimit.Request, config.RateLimitWindow())
	}

	// Handlers
	cookies := handler.NewCookieWriter(config.Cookie)
	r := router.NewRouter(
		handler.NewAuthHandler(authService, userService, cookies),
		handler.NewVerificationHandler(verificationService, config.App.FrontendURL),
		handler.NewPasswordHandler(resetService),
		handler.NewUserHandler(userService),
		handler.NewHealthHandler(monitor, breakers),

		middleware.NewJWTMiddleware(authService),
		limiter,
		metrics.Handler(registry),
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
