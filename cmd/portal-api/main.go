package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/auth"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/config"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/documents"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	ws "consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications/websocket"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/onboarding"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/onboarding/export"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

func main() {
	// Environment files are optional outside local development.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to Postgres (directory + delivery log via GORM, catalog via sqlx)
	dbURL := cfg.Database.GetDatabaseURL()
	gormDB, err := gorm.Open(gormpostgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlxDB, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to catalog database", zap.Error(err))
	}
	defer sqlxDB.Close()

	// Connect to Mongo (onboarding records)
	mongoClient, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("Failed to connect to mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(cfg.Mongo.Database)

	// AWS clients for documents, email and SMS
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}
	s3Client := s3.NewFromConfig(awsCfg)
	sesClient := sesv2.NewFromConfig(awsCfg)
	snsClient := sns.NewFromConfig(awsCfg)

	// Users directory
	usersRepo, err := users.NewGormRepository(gormDB)
	if err != nil {
		logger.Fatal("Failed to initialize users repository", zap.Error(err))
	}
	usersService := users.NewService(usersRepo, logger)

	// Notifications
	hub := ws.NewHub(logger)
	wsManager := ws.NewManager(hub, logger)
	emailChannel := notifications.NewEmailChannel(sesClient, cfg.AWS.SenderEmail)
	smsChannel := notifications.NewSMSChannel(snsClient)
	notifier, err := notifications.NewService(gormDB, emailChannel, smsChannel, hub, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	// Documents
	store := documents.NewS3Store(s3Client, cfg.AWS.DocumentBucket, cfg.AWS.Region)
	documentsService := documents.NewService(store, logger)
	documentsHandler := documents.NewHandler(documentsService)

	// Onboarding
	onboardingRepo, err := onboarding.NewMongoRepository(ctx, mongoDB)
	if err != nil {
		logger.Fatal("Failed to initialize onboarding repository", zap.Error(err))
	}
	catalogRepo := catalog.NewPostgresRepository(sqlxDB)
	engine := onboarding.NewRecommendationEngine(catalogRepo, logger)
	onboardingService := onboarding.NewService(onboardingRepo, usersService, notifier,
		engine, cfg.Onboarding.StalledThreshold(), logger)
	onboardingHandler := onboarding.NewHandler(onboardingService)

	exportService := export.NewService(onboardingRepo, onboardingService)
	exportHandler := export.NewHandler(exportService)

	// Auth
	issuer := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authHandler := auth.NewHandler(usersService, issuer)

	// Setup Router
	gin.SetMode(gin.DebugMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	authHandler.RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(auth.RequireAuth(issuer))
	{
		onboardingHandler.RegisterRoutes(api)
		documentsHandler.RegisterRoutes(api)

		admin := api.Group("")
		admin.Use(auth.RequireRole(string(users.RoleAdmin)))
		exportHandler.RegisterRoutes(admin)
	}

	router.GET("/ws/notifications", auth.RequireAuth(issuer), wsManager.Handle)

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
