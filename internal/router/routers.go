package router

import (
	"fmt"
	"time"

	"github.com/Payphone-Digital/midas/config"
	"github.com/Payphone-Digital/midas/internal/handler"
	"github.com/Payphone-Digital/midas/internal/middleware"
	"github.com/Payphone-Digital/midas/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups the route families served by the router.
type Handlers struct {
	User     *handler.UserHandler
	Token    *handler.TokenHandler
	Order    *handler.OrderHandler
	Checkout *handler.CheckoutHandler
	Image    *handler.ImageHandler
	Health   *handler.HealthHandler
}

type Router struct {
	handlers Handlers
	authMw   *middleware.AuthMiddleware
	config   *config.Config
}

func NewRouter(handlers Handlers, authMw *middleware.AuthMiddleware, config *config.Config) *Router {
	return &Router{
		handlers: handlers,
		authMw:   authMw,
		config:   config,
	}
}

func (r *Router) SetupRoutes() (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("register validation rules: %w", err)
		}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestContext())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestTimeout(r.config.App.Timeout))

	router.NoRoute(handler.NotFound)
	router.NoMethod(handler.MethodNotAllowed)

	router.GET("/ping", handler.Ping)
	if r.handlers.Health != nil {
		router.GET("/health", r.handlers.Health.HealthCheck)
	}

	r.userRoutes(router)
	r.tokenRoutes(router)
	r.orderRoutes(router)
	r.checkoutRoutes(router)
	r.imageRoutes(router)

	return router, nil
}

func (r *Router) rateLimit() gin.HandlerFunc {
	return middleware.RateLimit(r.config.RateLimit.Request, time.Duration(r.config.RateLimit.Duration)*time.Second)
}
