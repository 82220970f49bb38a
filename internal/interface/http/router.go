package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/transferhub/transfer-hub/internal/interface/http/handlers"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// RouterConfig carries the handlers mounted by NewRouter.
type RouterConfig struct {
	Plans         *handlers.PlanHandler
	Prerequisites *handlers.PrerequisiteHandler
	Health        *handlers.HealthHandler

	// Features mounts the flag admin endpoints when set.
	Features *handlers.FeatureHandler

	Logger *logger.Logger

	// AllowedOrigins enables CORS when non-empty. "*" allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(
		handlers.RequestID(log),
		handlers.Logging(log),
		handlers.Recovery(log),
	)

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Content-Type", "Authorization", handlers.HeaderRequestID},
			ExposeHeaders: []string{handlers.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}
		if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.AllowedOrigins
		}
		router.Use(cors.New(corsConfig))
	}

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	router.GET("/health", health.Health)

	api := router.Group("/api/v1")

	// Plans
	if cfg.Plans != nil {
		api.GET("/plans/:code/progress", cfg.Plans.GetProgress)
		api.GET("/plans/:code/unmet", cfg.Plans.GetUnmet)
		api.GET("/plans/:code/suggestions", cfg.Plans.GetSuggestions)
		api.GET("/plans/:code/export.csv", cfg.Plans.ExportCSV)
		api.POST("/plans/:code/courses", cfg.Plans.AddCourse)
		api.DELETE("/plans/:code/courses/:id", cfg.Plans.RemoveCourse)
	}

	// Prerequisites
	if cfg.Prerequisites != nil {
		api.POST("/prerequisites/validate", cfg.Prerequisites.Validate)
		api.GET("/courses/:code/prerequisites", cfg.Prerequisites.Details)
	}

	// Feature flag admin
	if cfg.Features != nil {
		admin := api.Group("/admin")
		admin.GET("/features", cfg.Features.List)
		admin.PUT("/features/:name", cfg.Features.Update)
		admin.PUT("/features/:name/overrides/:subject", cfg.Features.SetOverride)
		admin.DELETE("/overrides/:subject", cfg.Features.ClearOverrides)
	}

	return router
}
