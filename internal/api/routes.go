package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/config"
	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/middleware"
	"reliefnet-backend-go/pkg/metrics"
)

// Services bundles the domain services the handlers call.
type Services struct {
	Users         core.UserService
	Disasters     core.DisasterService
	Contributions core.ContributionService
	RescueTeams   core.RescueTeamService
	Reconcile     core.ReconcileService
}

// Options carries everything SetupRoutes wires together.
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Tokens   middleware.TokenParser
	Metrics  *metrics.Metrics
	Services Services
}

// accessRules is the single source of route authorization. Every route
// registered in SetupRoutes must appear here or startup fails.
func accessRules(localUploads bool) []middleware.Rule {
	rules := []middleware.Rule{
		{Method: http.MethodGet, Path: "/health", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/metrics", Access: middleware.Public},

		{Method: http.MethodPost, Path: "/api/user/register", Access: middleware.Public},
		{Method: http.MethodPost, Path: "/api/user/login", Access: middleware.Public},
		{Method: http.MethodPost, Path: "/api/user/register-admin", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/user/profile", Access: middleware.Authenticated},

		{Method: http.MethodPost, Path: "/api/disaster", Access: middleware.Public},
		{Method: http.MethodPost, Path: "/api/disaster/addDisaster", Access: middleware.Admin},
		{Method: http.MethodGet, Path: "/api/disaster", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/disaster/types", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/disaster/:id", Access: middleware.Public},
		{Method: http.MethodPut, Path: "/api/disaster/:id", Access: middleware.Admin},
		{Method: http.MethodDelete, Path: "/api/disaster/:id", Access: middleware.Admin},
		{Method: http.MethodGet, Path: "/api/disaster/:id/files/:fileId/download", Access: middleware.Public},
		{Method: http.MethodDelete, Path: "/api/disaster/:id/files/:fileId", Access: middleware.Admin},

		{Method: http.MethodPost, Path: "/api/contribution", Access: middleware.Authenticated},
		{Method: http.MethodGet, Path: "/api/contribution", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/contribution/:id", Access: middleware.Public},
		{Method: http.MethodPut, Path: "/api/contribution/:id", Access: middleware.Authenticated},
		{Method: http.MethodDelete, Path: "/api/contribution/:id", Access: middleware.Authenticated},

		{Method: http.MethodPost, Path: "/api/rescue-team", Access: middleware.Admin},
		{Method: http.MethodGet, Path: "/api/rescue-team", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/rescue-team/available", Access: middleware.Public},
		{Method: http.MethodGet, Path: "/api/rescue-team/:id", Access: middleware.Public},
		{Method: http.MethodPost, Path: "/api/rescue-team/assign", Access: middleware.Admin},
		{Method: http.MethodPost, Path: "/api/rescue-team/unassign", Access: middleware.Admin},
		{Method: http.MethodPut, Path: "/api/rescue-team/:id", Access: middleware.Admin},
		{Method: http.MethodDelete, Path: "/api/rescue-team/:id", Access: middleware.Admin},

		{Method: http.MethodPost, Path: "/api/admin/reconcile", Access: middleware.Admin},
	}
	if localUploads {
		rules = append(rules,
			middleware.Rule{Method: http.MethodGet, Path: "/uploads/*filepath", Access: middleware.Public},
			middleware.Rule{Method: http.MethodHead, Path: "/uploads/*filepath", Access: middleware.Public},
		)
	}
	return rules
}

// SetupRoutes registers every route behind the access policy. Global
// logging, recovery and CORS middleware are applied by the caller first.
func SetupRoutes(router *gin.Engine, opts Options) error {
	cfg, logger := opts.Config, opts.Logger
	localUploads := cfg.StorageBackend == config.StorageLocal

	policy, err := middleware.NewPolicy(middleware.NewAuthenticator(opts.Tokens), accessRules(localUploads))
	if err != nil {
		return err
	}
	router.Use(middleware.RequestMetrics(opts.Metrics), policy.Enforce())

	userHandler := NewUserHandler(opts.Services.Users, logger)
	disasterHandler := NewDisasterHandler(opts.Services.Disasters, UploadLimits{
		MaxFiles:     cfg.MaxUploadFiles,
		MaxFileBytes: cfg.MaxUploadBytes(),
	}, logger)
	contributionHandler := NewContributionHandler(opts.Services.Contributions, logger)
	teamHandler := NewRescueTeamHandler(opts.Services.RescueTeams, logger)
	adminHandler := NewAdminHandler(opts.Services.Reconcile, logger)

	apiGroup := router.Group("/api")
	{
		users := apiGroup.Group("/user")
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/register-admin", userHandler.RegisterAdmin)
		users.GET("/profile", userHandler.Profile)

		disasters := apiGroup.Group("/disaster")
		disasters.POST("", disasterHandler.Report)
		disasters.POST("/addDisaster", disasterHandler.AddDisaster)
		disasters.GET("", disasterHandler.ListDisasters)
		disasters.GET("/types", disasterHandler.DisasterTypes)
		disasters.GET("/:id", disasterHandler.GetDisaster)
		disasters.PUT("/:id", disasterHandler.UpdateDisaster)
		disasters.DELETE("/:id", disasterHandler.DeleteDisaster)
		disasters.GET("/:id/files/:fileId/download", disasterHandler.DownloadFile)
		disasters.DELETE("/:id/files/:fileId", disasterHandler.DeleteFile)

		contributions := apiGroup.Group("/contribution")
		contributions.POST("", contributionHandler.CreateContribution)
		contributions.GET("", contributionHandler.ListContributions)
		contributions.GET("/:id", contributionHandler.GetContribution)
		contributions.PUT("/:id", contributionHandler.UpdateContribution)
		contributions.DELETE("/:id", contributionHandler.DeleteContribution)

		teams := apiGroup.Group("/rescue-team")
		teams.POST("", teamHandler.CreateTeam)
		teams.GET("", teamHandler.ListTeams)
		teams.GET("/available", teamHandler.AvailableTeams)
		teams.GET("/:id", teamHandler.GetTeam)
		teams.POST("/assign", teamHandler.Assign)
		teams.POST("/unassign", teamHandler.Unassign)
		teams.PUT("/:id", teamHandler.UpdateTeam)
		teams.DELETE("/:id", teamHandler.DeleteTeam)

		apiGroup.POST("/admin/reconcile", adminHandler.Reconcile)
	}

	if localUploads {
		router.Static("/uploads", cfg.UploadDir)
	}
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "ReliefNet backend is healthy", gin.H{"status": "UP"})
	})

	if err := policy.Verify(router.Routes()); err != nil {
		return fmt.Errorf("route policy: %w", err)
	}
	logger.Info("API routes configured", zap.Int("routes", len(router.Routes())))
	return nil
}
