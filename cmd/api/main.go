package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/config"
	"github.com/alfaruq-id/barakah-api/internal/database"
	"github.com/alfaruq-id/barakah-api/internal/handler"
	"github.com/alfaruq-id/barakah-api/internal/middleware"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
	"github.com/alfaruq-id/barakah-api/internal/repository"
	"github.com/alfaruq-id/barakah-api/internal/router"
	"github.com/alfaruq-id/barakah-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Repost{},
		&models.PostHashtag{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
		&models.Report{},
		&models.AuditLog{},
		&models.Stream{},
		&models.PushSubscription{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	streamRepo := repository.NewStreamRepository(db)
	pushRepo := repository.NewPushSubscriptionRepository(db)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	hub := realtime.NewHub(redisClient, cfg.RealtimeChannelBase, natsConn, logger)
	hub.SetJoinAuthorizer(realtime.MembershipAuthorizer(conversationRepo, streamRepo))
	hub.Start(hubCtx)

	pushService := service.NewPushService(pushRepo, nil, cfg.VAPIDPublicKey, cfg.PushTimeout, logger)
	notificationService := service.NewNotificationService(notificationRepo, hub, pushService, logger)
	postService := service.NewPostService(postRepo, userRepo, notificationService, logger)
	engagementService := service.NewEngagementService(postRepo, notificationService, logger)
	feedService := service.NewFeedService(postRepo, followRepo, redisClient, cfg.TrendingCacheTTL, cfg.TrendingWindow, logger)
	followService := service.NewFollowService(followRepo, userRepo, notificationService, logger)
	chatService := service.NewChatService(conversationRepo, userRepo, notificationService, hub, logger)
	moderationService := service.NewModerationService(reportRepo, userRepo, postRepo, auditRepo, notificationService, logger)
	streamService := service.NewStreamService(streamRepo, followRepo, notificationService, hub, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PostHandler:         handler.NewPostHandler(postService, engagementService, feedService, validate, logger),
		FeedHandler:         handler.NewFeedHandler(feedService, logger),
		FollowHandler:       handler.NewFollowHandler(followService, logger),
		ChatHandler:         handler.NewChatHandler(chatService, validate, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		ModerationHandler:   handler.NewModerationHandler(moderationService, validate, logger),
		StreamHandler:       handler.NewStreamHandler(streamService, validate, logger),
		PushHandler:         handler.NewPushHandler(pushService, validate, logger),
		RealtimeHandler:     handler.NewRealtimeHandler(hub, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
