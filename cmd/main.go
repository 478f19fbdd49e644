package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fidelzky-bot/projectmanagerapp/internal/api"
	"github.com/fidelzky-bot/projectmanagerapp/internal/config"
	"github.com/fidelzky-bot/projectmanagerapp/internal/events"
	"github.com/fidelzky-bot/projectmanagerapp/internal/logger"
	"github.com/fidelzky-bot/projectmanagerapp/internal/notification"
	"github.com/fidelzky-bot/projectmanagerapp/internal/presence"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
	"github.com/fidelzky-bot/projectmanagerapp/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	client, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo connect", "error", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Mongo.Database)

	roleRepo := repository.NewRoleRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	taskRepo := repository.NewTaskRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	userRepo := repository.NewUserRepo(db)
	attachmentRepo := repository.NewAttachmentRepo(db)

	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer func() { _ = publisher.Close() }()
	}

	var (
		presenceStore  ws.PresenceStore
		presenceReader api.PresenceReader
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		store := presence.NewStore(rdb, cfg.Redis.Prefix)
		presenceStore = store
		presenceReader = store
	}

	hub := ws.NewHub()
	rooms := repository.NewRoomDirectory(teamRepo, projectRepo)
	wsServer := ws.NewServer(hub, rooms, presenceStore, cfg.App.JWTSecret, ws.Config{
		PingInterval:   cfg.PingInterval,
		WriteDeadline:  cfg.WriteDeadline,
		MaxMessageSize: cfg.WS.MaxMessageSizeBytes,
		PresenceTTL:    cfg.PresenceTTL,
	}, zlog)

	resolver := notification.NewResolver(roleRepo, settingsRepo)
	var eventSink notification.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}
	dispatcher := notification.NewDispatcher(resolver, notifRepo, hub, eventSink, zlog)

	app := api.New(api.Deps{
		Log:         zlog,
		JWTSecret:   cfg.App.JWTSecret,
		Dispatcher:  dispatcher,
		Hub:         hub,
		WSHandler:   wsServer.Handler(),
		Tasks:       taskRepo,
		Comments:    commentRepo,
		Messages:    messageRepo,
		Notifs:      notifRepo,
		Roles:       roleRepo,
		Settings:    settingsRepo,
		Projects:    projectRepo,
		Teams:       teamRepo,
		Users:       userRepo,
		Attachments: attachmentRepo,
		Presence:    presenceReader,

		RateLimitRPS:   cfg.App.RateLimitRPS,
		RateLimitBurst: cfg.App.RateLimitBurst,
	})

	go func() {
		zlog.Infow("server starting", "port", cfg.App.Port)
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			zlog.Fatalw("server listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Warnw("fiber shutdown", "error", err)
	}
	zlog.Info("server stopped")
}
