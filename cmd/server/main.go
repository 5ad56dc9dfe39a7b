package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/api"
	"reliefnet-backend-go/internal/auth"
	"reliefnet-backend-go/internal/config"
	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/firebase"
	"reliefnet-backend-go/internal/middleware"
	"reliefnet-backend-go/pkg/cache"
	"reliefnet-backend-go/pkg/filestore"
	"reliefnet-backend-go/pkg/messagequeue"
	"reliefnet-backend-go/pkg/metrics"
)

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Logger ---
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Firebase and Firestore ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := firebase.NewClients(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK and Firestore initialized.", zap.String("projectID", appConfig.FirebaseProjectID))

	repos := db.NewFirestoreRepositories(clients.Firestore)

	// --- 4. Optional infrastructure ---
	var typesCache cache.Cache = cache.Noop{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			typesCache = redisCache
			defer redisCache.Close()
		}
	}

	var events core.EventPublisher = messagequeue.NoopPublisher{}
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.RabbitMQConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		} else {
			events = messagequeue.NewEventPublisher(mq, appConfig.EventsQueue)
			defer mq.Close()
		}
	}

	files, err := newFileStore(initCtx, appConfig, clients)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize file storage", zap.Error(err))
	}
	zapLogger.Info("File storage ready", zap.String("backend", appConfig.StorageBackend))

	issuer, err := auth.NewIssuer(appConfig.JWTSecret, appConfig.JWTIssuer, appConfig.JWTTTL)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize token issuer", zap.Error(err))
	}
	m := metrics.New()

	// --- 5. Services ---
	auditService := core.NewAuditService(repos.Audit)
	services := api.Services{
		Users:         core.NewUserService(repos.Users, issuer, appConfig.AdminBootstrapKey, zapLogger),
		Disasters:     core.NewDisasterService(repos, files, typesCache, appConfig.CacheTTL, auditService, events, zapLogger),
		Contributions: core.NewContributionService(repos, m, auditService, events, zapLogger),
		RescueTeams:   core.NewRescueTeamService(repos, m, auditService, events, zapLogger),
		Reconcile:     core.NewReconcileService(repos, auditService, zapLogger),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Gin engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	if err := api.SetupRoutes(router, api.Options{
		Config:   appConfig,
		Logger:   zapLogger,
		Tokens:   issuer,
		Metrics:  m,
		Services: services,
	}); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to set up routes", zap.Error(err))
	}

	// --- 7. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully.")
}

// newFileStore picks the upload backend. GCS buckets come from the Firebase
// app so they share its credentials.
func newFileStore(ctx context.Context, cfg *config.Config, clients *firebase.Clients) (filestore.Store, error) {
	if cfg.StorageBackend != config.StorageGCS {
		local, err := filestore.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	storageClient, err := clients.App.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}
	bucket, err := storageClient.Bucket(cfg.GCSBucket)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", cfg.GCSBucket, err)
	}
	return filestore.NewGCSStore(bucket, cfg.GCSBucket, "uploads"), nil
}
