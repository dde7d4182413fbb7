package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikibeerdia/backend/internal/app"
	iauth "github.com/wikibeerdia/backend/internal/auth"
	"github.com/wikibeerdia/backend/internal/handlers"
	"github.com/wikibeerdia/backend/internal/middleware"
	"github.com/wikibeerdia/backend/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
// The identity gate runs on every request; only routes that need an
// authenticated caller add RequireAuth on top.
func NewRouter(cfg *app.Config, jwt *iauth.JWTService, accounts *services.AccountService) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity(jwt))

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(accounts)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
	}

	uploadHandler, err := handlers.NewUploadHandler(cfg.Uploads.Dir)
	if err != nil {
		return nil, fmt.Errorf("initialise upload handler: %w", err)
	}

	r.PUT("/post-image", middleware.RequireAuth(), uploadHandler.PostImage)
	r.Static("/images", cfg.Uploads.Dir)

	return r, nil
}
