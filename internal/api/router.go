package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/handlers"
	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Config   *config.Config
	Services *service.Services
	Hub      *socket.Hub
	Database Pinger
	Cache    Pinger // optional
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	r.GET("/health", healthHandler(deps))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Route not found"})
	})

	h := handlers.NewHandlers(deps.Services)
	wsHandler := socket.NewHandler(deps.Hub, func(token string) (string, error) {
		claims, err := deps.Services.Auth.ValidateToken(token)
		if err != nil {
			return "", err
		}
		return claims.Subject, nil
	}, cfg.CORSOrigins)

	api := r.Group("/api")
	{
		// ============================================
		// Public routes
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// WebSocket authenticates from the query string itself
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Services.Auth))
		canDelete := middleware.RequireRole(cfg.DeleteRoles...)
		{
			protected.GET("/auth/profile", h.Auth.GetProfile)
			protected.PUT("/auth/profile", h.Auth.UpdateProfile)

			customers := protected.Group("/customers")
			{
				customers.GET("", h.Customer.List)
				customers.POST("", h.Customer.Create)
				customers.GET("/:id", h.Customer.Get)
				customers.PUT("/:id", h.Customer.Update)
				customers.DELETE("/:id", canDelete, h.Customer.Delete)
				customers.POST("/:id/interactions", h.Customer.AddInteraction)
			}

			leads := protected.Group("/leads")
			{
				leads.GET("", h.Lead.List)
				leads.POST("", h.Lead.Create)
				leads.GET("/:id", h.Lead.Get)
				leads.PUT("/:id", h.Lead.Update)
				leads.DELETE("/:id", canDelete, h.Lead.Delete)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", h.Task.List)
				tasks.POST("", h.Task.Create)
				tasks.GET("/:id", h.Task.Get)
				tasks.PUT("/:id", h.Task.Update)
				tasks.DELETE("/:id", canDelete, h.Task.Delete)
			}

			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", h.Dashboard.Stats)
				dashboard.GET("/lead-performance", h.Dashboard.LeadPerformance)
			}
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func healthHandler(deps RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		database := "connected"
		if err := deps.Database.Ping(ctx); err != nil {
			database = "disconnected"
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		cache := "disabled"
		if deps.Cache != nil {
			cache = "connected"
			if err := deps.Cache.Ping(ctx); err != nil {
				cache = "disconnected"
			}
		}

		c.JSON(code, gin.H{
			"status":     status,
			"timestamp":  time.Now(),
			"database":   database,
			"cache":      cache,
			"ws_clients": deps.Hub.GetConnectedClientsCount(),
		})
	}
}
