package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"lobby-service/internal/auth"
	"lobby-service/internal/config"
	"lobby-service/internal/db"
	"lobby-service/internal/handlers"
	"lobby-service/internal/middleware"
	"lobby-service/internal/observability"
	"lobby-service/internal/push"
	"lobby-service/internal/rabbitmq"
	"lobby-service/internal/repositories"
	"lobby-service/internal/telemetry"
	"lobby-service/internal/ws"
)

const serviceName = "lobby-service"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing := observability.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	// Event publishing. The audit stream and the ws event stream share the
	// exchange; both degrade to noop when AMQP is not configured.
	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s reason=%q", rabbitmq.PublisherMode(auditPublisher), rabbitmq.PublisherNoopReason(auditPublisher))
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.lobby", serviceName, cfg.Environment)

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("event publisher disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	userRepo := repositories.NewUserRepo(database)
	activityRepo := repositories.NewActivityRepo(database)
	participantRepo := repositories.NewParticipantRepo(database)
	swipeRepo := repositories.NewSwipeRepo(database)
	matchRepo := repositories.NewMatchRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	reviewRepo := repositories.NewReviewRepo(database)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	var pushSender push.Sender = push.NoopSender{}
	if cfg.ExpoPushURL != "" {
		pushSender = push.NewExpoSender(cfg.ExpoPushURL, cfg.ExpoAccessToken, userRepo)
	}

	hub := ws.NewHub()
	var fanout ws.Fanout = ws.NewLocalFanout(hub)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		redisFanout := ws.NewRedisFanout(redisClient, hub)
		go redisFanout.Run(ctx)
		fanout = redisFanout
		log.Printf("chat fanout via redis addr=%s", cfg.RedisAddr)
	}

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	activityHandler := handlers.NewActivityHandler(activityRepo, participantRepo, matchRepo, conversationRepo, userRepo, pushSender, fanout, audit)
	swipeHandler := handlers.NewSwipeHandler(swipeRepo, activityRepo, matchRepo, userRepo, pushSender, audit)
	matchHandler := handlers.NewMatchHandler(matchRepo, conversationRepo)
	messageHandler := handlers.NewMessageHandler(conversationRepo, matchRepo, userRepo, pushSender, fanout, audit)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, activityRepo, participantRepo, audit)
	activityWS := ws.NewActivityWebSocketHandler(hub, participantRepo, tokens)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(tokens, userRepo)

	router.GET("/users/me", authMiddleware, authHandler.Me)
	router.POST("/users/push-token", authMiddleware, authHandler.RegisterPushToken)

	router.POST("/activities", authMiddleware, activityHandler.CreateActivity)
	router.GET("/activities", authMiddleware, activityHandler.ListActivities)
	router.GET("/activities/hosted", authMiddleware, activityHandler.ListHostedActivities)
	router.GET("/activities/:activity_id", authMiddleware, activityHandler.GetActivity)
	router.PUT("/activities/:activity_id", authMiddleware, activityHandler.UpdateActivity)
	router.DELETE("/activities/:activity_id", authMiddleware, activityHandler.DeleteActivity)
	router.POST("/activities/:activity_id/join", authMiddleware, activityHandler.JoinActivity)
	router.POST("/activities/:activity_id/leave", authMiddleware, activityHandler.LeaveActivity)
	router.GET("/activities/:activity_id/participants", authMiddleware, activityHandler.ListParticipants)
	router.POST("/activities/:activity_id/participants/:user_id", authMiddleware, activityHandler.SetParticipantStatus)
	router.GET("/activities/:activity_id/chat", authMiddleware, activityHandler.ActivityChat)
	router.POST("/activities/:activity_id/chat", authMiddleware, activityHandler.ActivityChat)
	router.POST("/activities/:activity_id/swipe", authMiddleware, swipeHandler.Swipe)
	router.POST("/activities/:activity_id/reviews", authMiddleware, reviewHandler.CreateReview)
	router.GET("/activities/:activity_id/reviews", authMiddleware, reviewHandler.ListActivityReviews)

	router.GET("/swipes", authMiddleware, swipeHandler.ListSwipes)

	router.GET("/matches", authMiddleware, matchHandler.ListMatches)
	router.GET("/matches/:match_id", authMiddleware, matchHandler.GetMatch)
	router.POST("/matches/:match_id/conversation", authMiddleware, matchHandler.OpenConversation)

	router.GET("/messages/conversations", authMiddleware, messageHandler.ListConversations)
	router.GET("/messages/conversations/:conversation_id/messages", authMiddleware, messageHandler.ListMessages)
	router.POST("/messages/conversations/:conversation_id/messages", authMiddleware, messageHandler.SendMessage)

	router.GET("/reviews", authMiddleware, reviewHandler.ListMyReviews)

	router.GET("/ws/activities/:activity_id", activityWS.Handle)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
