package router

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "coffee-with-me/docs"
	"coffee-with-me/internal/adapters/notify"
	mem "coffee-with-me/internal/adapters/storage/memory"
	pg "coffee-with-me/internal/adapters/storage/postgres"
	"coffee-with-me/internal/config"
	"coffee-with-me/internal/domain/coffeebreaks"
	"coffee-with-me/internal/domain/friendships"
	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/domain/universities"
	"coffee-with-me/internal/domain/users"
	"coffee-with-me/internal/middleware"
	"coffee-with-me/internal/platform/httpclient"
	"coffee-with-me/internal/platform/logger"
	"coffee-with-me/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil: sólo modo dev
	TokenIssuer  auth.TokenIssuer  // nil => /api/login responde 501
	AuthDevMode  bool              // acepta X-Debug-User-ID

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: agrega el sink de pub/sub.
	Redis redis.UniversalClient

	// Opcional: agrega el sink webhook.
	WebhookURL     string
	WebhookTimeout time.Duration

	Dispatch config.DispatchConfig
	Logger   logger.Logger
}

// App es el handler HTTP más lo que hay que apagar ordenadamente.
type App struct {
	http.Handler

	dispatcher *notifications.Dispatcher
	hub        *notify.Hub
}

// Close espera a que se entreguen los eventos pendientes y corta los streams.
func (a *App) Close(ctx context.Context) error {
	err := a.dispatcher.Close(ctx)
	a.hub.Close()
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("notification queue not drained before shutdown deadline")
	}
	return err
}

func NewRouter(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.AuthDevMode))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		userRepo         users.Repository
		universityRepo   universities.Repository
		friendshipRepo   friendships.Repository
		coffeeBreakRepo  coffeebreaks.Repository
		notificationRepo notifications.Repository
	)

	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		universityRepo = pg.NewUniversitiesRepo(opts.DB)
		friendshipRepo = pg.NewFriendshipsRepo(opts.DB)
		coffeeBreakRepo = pg.NewCoffeeBreaksRepo(opts.DB)
		notificationRepo = pg.NewNotificationsRepo(opts.DB)
	} else {
		userRepo = mem.NewUserRepo()
		universityRepo = mem.NewUniversityRepo()
		friendshipRepo = mem.NewFriendshipRepo()
		coffeeBreakRepo = mem.NewCoffeeBreakRepo()
		notificationRepo = mem.NewNotificationRepo()
	}

	universitiesSvc := universities.NewService(universityRepo)
	usersSvc := users.NewService(userRepo, universitiesSvc)

	// Notificaciones: resolvers por dominio -> notifier -> dispatcher.
	hub := notify.NewHub(0, log)
	sinks := []notifications.Sink{notify.NewLogSink(log), hub}
	if opts.Redis != nil {
		sinks = append(sinks, notify.NewRedisSink(opts.Redis, ""))
	}
	if opts.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(httpclient.New(opts.WebhookTimeout), opts.WebhookURL))
	}

	notifier := notifications.NewNotifier(notifications.NotifierOptions{
		Resolver: notifications.NewDomainResolver(map[notifications.Domain]notifications.Resolver{
			notifications.DomainFriendship:  friendships.NewResolver(friendshipRepo, usersSvc),
			notifications.DomainCoffeeBreak: coffeebreaks.NewResolver(coffeeBreakRepo, usersSvc),
		}),
		Repo:         notificationRepo,
		Sinks:        sinks,
		MaxAttempts:  opts.Dispatch.MaxAttempts,
		RetryInitial: opts.Dispatch.RetryInitial,
		Logger:       log,
	})

	dispatcher := notifications.NewDispatcher(notifications.DispatcherOptions{
		Shards:       opts.Dispatch.Shards,
		QueueSize:    opts.Dispatch.QueueSize,
		MaxAttempts:  opts.Dispatch.MaxAttempts,
		RetryInitial: opts.Dispatch.RetryInitial,
		Logger:       log,
	}, notifier)

	// Services por módulo
	friendshipsSvc := friendships.NewService(friendshipRepo, usersSvc, dispatcher, log)
	coffeeBreaksSvc := coffeebreaks.NewService(coffeebreaks.Deps{
		Repo:     coffeeBreakRepo,
		Friends:  friendshipsSvc,
		Campuses: universitiesSvc,
		Users:    usersSvc,
		Events:   dispatcher,
		Logger:   log,
	})
	notificationsSvc := notifications.NewService(notificationRepo)
	usersSvc.OnDelete(friendshipsSvc, coffeeBreaksSvc, notificationsSvc)

	// Rutas por módulo
	r.Route("/api", func(api chi.Router) {
		users.RegisterPublicRoutes(api, usersSvc, opts.TokenIssuer)
		users.RegisterRoutes(api, usersSvc)
		universities.RegisterRoutes(api, universitiesSvc)
		friendships.RegisterRoutes(api, friendshipsSvc)
		coffeebreaks.RegisterRoutes(api, coffeeBreaksSvc)
		notifications.RegisterRoutes(api, notificationsSvc, hub)
	})

	return &App{Handler: r, dispatcher: dispatcher, hub: hub}
}
