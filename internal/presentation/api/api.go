package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/configs"
	"github.com/hilthontt/ember/internal/infrastructure/logging"
	"github.com/hilthontt/ember/internal/infrastructure/metrics"
	"github.com/hilthontt/ember/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/ember/internal/presentation/handler/health"
	messagesHandler "github.com/hilthontt/ember/internal/presentation/handler/messages"
	roomHandler "github.com/hilthontt/ember/internal/presentation/handler/rooms"
	usersHandler "github.com/hilthontt/ember/internal/presentation/handler/users"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Application struct {
	config          configs.Config
	roomRepository  domain.RoomRepository
	roomHandler     *roomHandler.Handler
	messagesHandler *messagesHandler.Handler
	healthHandler   *healthHandler.Handler
	usersHandler    *usersHandler.Handler
	logger          logging.Logger
	lifecycle       *zap.SugaredLogger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomRepository domain.RoomRepository,
	roomHandler *roomHandler.Handler,
	messagesHandler *messagesHandler.Handler,
	healthHandler *healthHandler.Handler,
	usersHandler *usersHandler.Handler,
	logger logging.Logger,
	lifecycle *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		roomRepository:  roomRepository,
		roomHandler:     roomHandler,
		messagesHandler: messagesHandler,
		healthHandler:   healthHandler,
		usersHandler:    usersHandler,
		logger:          logger,
		lifecycle:       lifecycle,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)
	r.Use(app.loggerMiddleware)
	r.Use(metrics.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/room", func(r chi.Router) {
			r.Post("/", app.roomHandler.CreateRoomHandler)
			r.Get("/", app.roomHandler.JoinRoomHandler)
			r.Get("/ttl", app.roomHandler.GetTtlHandler)
			r.Delete("/", app.roomHandler.DestroyRoomHandler)
		})

		r.Post("/messages", app.messagesHandler.CreateMessageHandler)
		r.Get("/messages", app.messagesHandler.ListMessagesHandler)

		r.Get("/username", app.usersHandler.GenerateUsernameHandler)
		r.Get("/ws", app.roomHandler.AttachHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Route("/room/{roomId}", func(r chi.Router) {
		r.Use(app.gatekeeper)
		r.Get("/", app.roomPageHandler)
	})

	r.Handle("/metrics", metrics.Handler())

	return otelhttp.NewHandler(r, "ember.http",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		healthHandler.SetUnhealthy()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.lifecycle.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.lifecycle.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.lifecycle.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
