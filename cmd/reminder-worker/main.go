package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/config"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	ws "consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications/websocket"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/onboarding"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// The reminder worker sweeps both onboarding tracks on a schedule and
// nudges every stalled record over email, SMS and the in-app channel.
func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	mongoClient, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("Failed to connect to mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	usersRepo, err := users.NewGormRepository(gormDB)
	if err != nil {
		logger.Fatal("Failed to initialize users repository", zap.Error(err))
	}
	usersService := users.NewService(usersRepo, logger)

	hub := ws.NewHub(logger)
	emailChannel := notifications.NewEmailChannel(sesv2.NewFromConfig(awsCfg), cfg.AWS.SenderEmail)
	smsChannel := notifications.NewSMSChannel(sns.NewFromConfig(awsCfg))
	notifier, err := notifications.NewService(gormDB, emailChannel, smsChannel, hub, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	onboardingRepo, err := onboarding.NewMongoRepository(ctx, mongoClient.Database(cfg.Mongo.Database))
	if err != nil {
		logger.Fatal("Failed to initialize onboarding repository", zap.Error(err))
	}
	engine := onboarding.NewRecommendationEngine(catalog.NewPostgresRepository(sqlxDB), logger)
	service := onboarding.NewService(onboardingRepo, usersService, notifier,
		engine, cfg.Onboarding.StalledThreshold(), logger)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Onboarding.ReminderCron, func() {
		sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer sweepCancel()

		nudged, err := service.NudgeStalled(sweepCtx)
		if err != nil {
			logger.Error("Stalled sweep failed", zap.Error(err))
			return
		}
		logger.Info("Stalled sweep finished", zap.Int("nudged", nudged))
	})
	if err != nil {
		logger.Fatal("Invalid reminder schedule", zap.String("cron", cfg.Onboarding.ReminderCron), zap.Error(err))
	}

	scheduler.Start()
	logger.Info("Reminder worker started", zap.String("cron", cfg.Onboarding.ReminderCron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down reminder worker...")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("Reminder worker exiting")
}
