package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/hilthontt/ember/internal/infrastructure/configs"
	"github.com/hilthontt/ember/internal/infrastructure/events"
	"github.com/hilthontt/ember/internal/infrastructure/logging"
	"github.com/hilthontt/ember/internal/infrastructure/messaging"
	"github.com/hilthontt/ember/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/ember/internal/infrastructure/tracing"
	"github.com/hilthontt/ember/internal/infrastructure/ws"
	"github.com/hilthontt/ember/internal/persistence/db"
	"github.com/hilthontt/ember/internal/persistence/kv"
	"github.com/hilthontt/ember/internal/persistence/repository"
	"github.com/hilthontt/ember/internal/presentation/api"
	"github.com/hilthontt/ember/internal/presentation/handler/health"
	"github.com/hilthontt/ember/internal/presentation/handler/messages"
	"github.com/hilthontt/ember/internal/presentation/handler/rooms"
	"github.com/hilthontt/ember/internal/presentation/handler/users"
	"go.uber.org/zap"
)

const (
	serviceName = "ember-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	lifecycle := zap.Must(zap.NewProduction()).Sugar()
	defer lifecycle.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	redisClient, err := db.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal(err)
	}
	defer db.CloseRedis(redisClient)

	store := kv.NewRedisStore(redisClient)

	roomRepository := repository.NewRoomRepository(store, cfg.Room.TTL, cfg.Room.LockTTL, tracing.GetTracer("repository"))
	messageRepository := repository.NewMessageRepository(store, tracing.GetTracer("repository"))

	roomManager := ws.NewRoomManager()
	hub := ws.NewHub(roomManager)
	go hub.Run()

	rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitmq.Close()

	log.Println("Starting RabbitMQ connection")

	roomPublisher := events.NewRoomPublisher(rabbitmq)

	// Single-instance fan-out: the consumer feeds broker events into the hub.
	roomConsumer := events.NewRoomConsumer(rabbitmq, hub)
	go func() {
		if err := roomConsumer.Listen(); err != nil {
			logger.Error(logging.RabbitMQ, logging.Broadcast, "consumer stopped", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}()

	roomHandler := rooms.NewHandler(roomRepository, roomManager, hub, roomPublisher, cfg.IsProduction())
	messageHandler := messages.NewHandler(roomRepository, messageRepository, roomPublisher)
	healthHandler := health.NewHandler()
	usersHandler := users.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, roomRepository, roomHandler, messageHandler, healthHandler, usersHandler, logger, lifecycle, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	lifecycle.Fatal(app.Run(mux))
}
