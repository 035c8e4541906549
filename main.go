package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-backend/internal/auth"
	"chat-backend/internal/config"
	"chat-backend/internal/db"
	"chat-backend/internal/handlers"
	"chat-backend/internal/middleware"
	"chat-backend/internal/observability"
	"chat-backend/internal/presence"
	"chat-backend/internal/rabbitmq"
	"chat-backend/internal/realtime"
	"chat-backend/internal/repositories"
	"chat-backend/internal/storage"
	"chat-backend/internal/telemetry"
	"chat-backend/internal/ws"
)

const serviceName = "chat-backend"

func main() {
	cfg := config.Load()

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	var tracker *presence.Tracker
	if cfg.RedisAddr != "" {
		tracker, err = presence.New(cfg.RedisAddr, cfg.PresenceTTL)
		if err != nil {
			log.Printf("presence tracking disabled: %v", err)
			tracker = nil
		}
	}
	defer tracker.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, "audit.chat", serviceName, cfg.Environment)

	hub := ws.NewHub()
	var notifier realtime.Notifier = hub
	var authorizer realtime.ChannelAuthorizer
	if cfg.PusherConfigured() {
		pn := realtime.NewPusherNotifier(cfg.PusherAppID, cfg.PusherKey, cfg.PusherSecret, cfg.PusherCluster)
		notifier = pn
		authorizer = pn
		log.Printf("realtime transport: pusher cluster=%s", cfg.PusherCluster)
	} else {
		log.Printf("realtime transport: local websocket hub")
	}

	fileStore, err := storage.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("failed to init file store: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := repositories.NewUserRepo(database)
	requestRepo := repositories.NewFriendRequestRepo(database)
	friendshipRepo := repositories.NewFriendshipRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	authHandler := handlers.NewAuthHandler(userRepo, tracker, tokens, audit)
	userHandler := handlers.NewUserHandler(userRepo)
	friendHandler := handlers.NewFriendHandler(userRepo, requestRepo, friendshipRepo, tracker)
	messageHandler := handlers.NewMessageHandler(messageRepo, friendshipRepo, fileStore, notifier, audit)
	realtimeHandler := handlers.NewRealtimeAuthHandler(authorizer, audit)
	wsHandler := ws.NewHandler(hub, tokens)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadDir)

	authMiddleware := middleware.Auth(tokens)
	api := router.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authMiddleware, authHandler.Logout)
	api.GET("/auth/profile", authMiddleware, authHandler.Profile)

	api.GET("/users/search", authMiddleware, userHandler.Search)

	api.POST("/friends/request", authMiddleware, friendHandler.SendRequest)
	api.POST("/friends/request/:id/accept", authMiddleware, friendHandler.AcceptRequest)
	api.POST("/friends/request/:id/reject", authMiddleware, friendHandler.RejectRequest)
	api.GET("/friends", authMiddleware, friendHandler.ListFriends)
	api.GET("/friends/requests/pending", authMiddleware, friendHandler.PendingRequests)

	api.GET("/messages", messageHandler.ListPublic)
	api.POST("/messages", authMiddleware, messageHandler.Send)
	api.POST("/messages/file", authMiddleware, messageHandler.SendFile)
	api.GET("/messages/private/:friend_id", authMiddleware, messageHandler.GetPrivate)
	api.GET("/messages/user/:username", messageHandler.ByUser)

	api.POST("/pusher/auth", authMiddleware, realtimeHandler.Authorize)

	router.GET("/ws/channels/:channel", wsHandler.Handle)

	handlers.RegisterDebugRoutes(router, audit, cfg.Environment == "development")

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
