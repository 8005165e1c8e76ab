package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/logger"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/router"
	"github.com/iliyamo/salon-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()
	lg, err := logger.New(cfg.IsProd())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	flowCfg, err := config.LoadFlowConfig()
	if err != nil {
		lg.Fatal("flow config", zap.Error(err))
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(mctx, db)
		cancel()
		if err != nil {
			lg.Fatal("migrate", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: nil disables caching and verification and switches
	// the limiter to its in-process bucket.
	rdb := config.NewRedisClient(lg)
	if rdb != nil {
		defer rdb.Close()
	}

	broker := config.LoadBrokerConfig()
	var pub queue.Publisher = queue.NopPublisher{}
	if broker.URL != "" {
		p, err := queue.DialPublisher(broker.URL, broker.Exchange, lg)
		if err != nil {
			lg.Warn("event publishing disabled", zap.Error(err))
		} else {
			pub = p
			consumer := &queue.BookingLogConsumer{
				URL:       broker.URL,
				Exchange:  broker.Exchange,
				Queue:     broker.LogQueue,
				File:      broker.LogFile,
				Log:       lg.Named("booking-log"),
				RetryWait: broker.RetryWait,
			}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					lg.Error("booking log consumer stopped", zap.Error(err))
				}
			}()
		}
	}
	defer pub.Close()

	// ---- repositories and services ----
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	services := repository.NewServiceRepo(db)
	bookings := repository.NewBookingRepo(db)

	cacheCfg := config.LoadCacheConfig()
	catalog := service.NewCatalogService(services, func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix)
	}, lg.Named("catalog"))
	bookingSvc := service.NewBookingService(bookings, services, pub, lg.Named("booking"))

	var verify service.VerificationStore
	if rdb != nil {
		verify = service.NewRedisVerificationStore(rdb)
	} else if cfg.EmailVerification {
		lg.Warn("email verification requested but Redis is unavailable; accounts are activated immediately")
	}
	auth := service.NewAuthService(cfg, users, tokens, verify, pub, lg.Named("auth"))

	flows := booking.NewRegistry(flowCfg.IdleTTL, lg.Named("flows"))
	go flows.Run(ctx, flowCfg.SweepInterval)

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(lg.Named("http")))
	e.Use(middleware.OptionalAuth(cfg.JWTSecret)) // identity for per-user rate limit keys
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg.Named("ratelimit")))

	health := &handler.HealthHandler{DB: db}
	if rdb != nil {
		health.Redis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	router.RegisterRoutes(e, health)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewCatalogHandler(catalog),
		handler.NewAvailabilityHandler(flowCfg.Location, flowCfg.WindowDays),
		middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterBookingFlow(e, handler.NewFlowHandler(flows, catalog, bookingSvc,
		booking.WithLocation(flowCfg.Location),
		booking.WithWindowDays(flowCfg.WindowDays),
		booking.WithLogger(lg.Named("flow")),
	), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewAuthHandler(auth), handler.NewBookingsHandler(bookingSvc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, bookingSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
}
