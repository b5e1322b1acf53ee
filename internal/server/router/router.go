package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecovolt-ph/ecovolt-backend/internal/config"
	"github.com/ecovolt-ph/ecovolt-backend/internal/server/handlers"
	authsvc "github.com/ecovolt-ph/ecovolt-backend/internal/service/auth"
)

// Handlers groups the HTTP handlers the engine routes to.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Inventory *handlers.InventoryHandler
	Telemetry *handlers.TelemetryHandler
	Settings  *handlers.SettingsHandler
	Stream    *handlers.StreamHandler
	Reports   *handlers.ReportsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg *config.Config, h Handlers, authSvc *authsvc.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Device-Key"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/reset-request", h.Auth.RequestReset)
		auth.POST("/reset", h.Auth.Reset)
	}

	// Rig firmware authenticates with the shared device key, not a JWT.
	api.POST("/sensors/readings", deviceKeyRequired(cfg.Sensor.DeviceKey), h.Telemetry.Ingest)

	private := api.Group("")
	private.Use(authRequired(authSvc))
	{
		private.GET("/profile", h.Auth.Profile)
		private.PUT("/profile", h.Auth.UpdateProfile)
		private.POST("/profile/password", h.Auth.ChangePassword)

		private.GET("/inventory", h.Inventory.State)
		private.GET("/inventory/suggestion", h.Inventory.Suggestion)
		private.POST("/inventory/transactions", h.Inventory.CreateTransaction)
		private.DELETE("/inventory/transactions/:id", h.Inventory.DeleteTransaction)

		private.GET("/sensors/latest", h.Telemetry.Live)
		private.GET("/sensors/history", h.Telemetry.History)
		private.DELETE("/sensors/readings/:id", h.Telemetry.DeleteReading)

		private.GET("/settings", h.Settings.Get)
		private.PUT("/settings", h.Settings.Put)

		private.GET("/reports/daily", h.Reports.ListDaily)
		private.GET("/reports/export", h.Reports.ExportHistory)

		private.GET("/stream", h.Stream.Stream)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
