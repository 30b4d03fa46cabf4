package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/midas/config"
	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	"github.com/Payphone-Digital/midas/internal/handler"
	"github.com/Payphone-Digital/midas/internal/middleware"
	"github.com/Payphone-Digital/midas/internal/repository"
	"github.com/Payphone-Digital/midas/internal/router"
	"github.com/Payphone-Digital/midas/internal/service"
	"github.com/Payphone-Digital/midas/pkg/cache"
	"github.com/Payphone-Digital/midas/pkg/circuit"
	"github.com/Payphone-Digital/midas/pkg/health"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/mailer"
	"github.com/Payphone-Digital/midas/pkg/payment"
	"github.com/Payphone-Digital/midas/pkg/pool"
	"github.com/Payphone-Digital/midas/pkg/store"
	"github.com/Payphone-Digital/midas/pkg/unsplash"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config.App); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.GetLogger()
	log.Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.App.Environment == constants.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, config, logger.Named("store"))
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	if err := menuRepo.Seed(ctx); err != nil {
		log.Fatal("Failed to seed menu", zap.Error(err))
	}

	// Providers, each behind its own breaker
	breakerConfig := circuit.DefaultConfig()
	breakerConfig.Threshold = config.Circuit.Threshold
	breakerConfig.Timeout = config.Circuit.Timeout
	breakerConfig.CallTimeout = config.App.ProviderTimeout
	breakers := circuit.NewRegistry(breakerConfig, logger.Named("circuit"))
	httpClients := pool.New(pool.DefaultConfig(), logger.Named("pool"))
	defer httpClients.CloseIdleConnections()

	payments := payment.NewStripeProcessor(
		config.Stripe.SecretKey,
		config.Order.Currency,
		httpClients.Client(constants.BreakerStripe),
		breakers.GetOrCreate(constants.BreakerStripe),
		logger.Named("stripe"),
	)

	var sender service.Mailer
	switch config.Email.Provider {
	case "sendgrid":
		sender = mailer.NewSendGridSender(config.Email.SendGridAPIKey, breakers.GetOrCreate(constants.BreakerEmail), logger.Named("sendgrid"))
	default:
		sender = mailer.NewPostmarkSender(config.Email.PostmarkServerToken, httpClients.Client(constants.BreakerEmail), breakers.GetOrCreate(constants.BreakerEmail), logger.Named("postmark"))
	}

	photos := unsplash.NewClient(
		config.Unsplash.BaseURL,
		config.Unsplash.AccessKey,
		httpClients.Client(constants.BreakerUnsplash),
		breakers.GetOrCreate(constants.BreakerUnsplash),
		logger.Named("unsplash"),
	)
	imageCache := cache.New[[]dto.ImageResponse](time.Minute)
	defer imageCache.Stop()

	monitor := health.NewMonitor(time.Minute, logger.Named("health"))
	monitor.Register("store", health.PingChecker{Target: db}, true)
	monitor.RegisterBreakers(breakers, constants.BreakerStripe, constants.BreakerEmail, constants.BreakerUnsplash)
	monitor.Start(context.Background())
	defer monitor.Stop()

	// Services
	hasher := service.NewPasswordHasher(config.Auth.HashingSecret)
	authenticator := service.NewAuthenticator(userRepo, tokenRepo, config.Auth.AccessTokenTTL)
	tokenService := service.NewTokenService(userRepo, tokenRepo, hasher,
		config.Auth.AccessTokenTTL, config.Auth.RefreshTokenTTL, config.Auth.MaxExtensionHours)
	userService := service.NewUserService(userRepo, tokenRepo, tokenService, hasher)
	imageService := service.NewImageService(photos, imageCache, config.Unsplash.CacheTTL)
	orderService := service.NewOrderService(userRepo, menuRepo, service.NewCartReconciler(config.Order.Limit), payments, imageService)
	checkoutService := service.NewCheckoutService(userRepo, payments, sender, config.Email.Sender, config.Order.Currency)

	// Handlers
	handlers := router.Handlers{
		User:     handler.NewUserHandler(userService),
		Token:    handler.NewTokenHandler(tokenService),
		Order:    handler.NewOrderHandler(orderService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Image:    handler.NewImageHandler(imageService),
		Health:   handler.NewHealthHandler(monitor, constants.AppVersion),
	}

	engine, err := router.NewRouter(handlers, middleware.NewAuthMiddleware(authenticator), config).SetupRoutes()
	if err != nil {
		log.Fatal("Failed to set up routes", zap.Error(err))
	}

	servers := []*http.Server{{
		Addr:              ":" + config.App.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if config.App.TLSEnabled() {
		servers = append(servers, &http.Server{
			Addr:              ":" + config.App.HTTPSPort,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	for i, srv := range servers {
		tls := i > 0
		go func() {
			log.Info("Server starting", zap.String("addr", srv.Addr), zap.Bool("tls", tls))

			var err error
			if tls {
				err = srv.ListenAndServeTLS(config.App.TLSCertFile, config.App.TLSKeyFile)
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("Failed to start server", zap.Error(err), zap.String("addr", srv.Addr))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shut down", zap.Error(err), zap.String("addr", srv.Addr))
		}
	}
	log.Info("Server exited")
}
