package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"dentalboard-backend/internal/auth"
	"dentalboard-backend/internal/cache"
	"dentalboard-backend/internal/config"
	_ "dentalboard-backend/internal/docs"
	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/handlers"
	"dentalboard-backend/internal/hub"
	"dentalboard-backend/internal/middleware"
	"dentalboard-backend/internal/natsbus"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/services"
	"dentalboard-backend/internal/storage"
	"dentalboard-backend/internal/workers"
)

// @title DentalBoard API
// @version 1.0
// @description Clinic management API: monthly figures, dashboards, market analysis, simulations, reports and print orders.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	slog.Info("starting", "config", cfg.String())

	// Database connection (with retries)
	var db *sqlx.DB
	for i := 0; i < cfg.DBConnectTries; i++ {
		db, err = sqlx.Connect("postgres", cfg.DatabaseDSN())
		if err == nil {
			break
		}
		slog.Warn("database connection failed", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)

	if cfg.MigrateOnStart {
		version, err := storage.Migrate(cfg.MigrateURL())
		if err != nil {
			fatal("migrations failed", err)
		}
		slog.Info("database migrated", "version", version)
	}
	store := storage.NewStorage(db)

	// Redis cache
	redisCache, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		fatal("failed to connect to redis", err)
	}
	defer redisCache.Close()

	// NATS connection. Development runs without it; events are dropped.
	var publisher events.Publisher = events.Discard{}
	natsClient, err := natsbus.Connect(cfg.NATSURL)
	switch {
	case err == nil:
		defer natsClient.Close()
		publisher = events.NewJetStream(natsClient.JS())
	case cfg.IsDevelopment():
		slog.Warn("NATS unavailable, events and report jobs are disabled", "error", err)
	default:
		fatal("failed to connect to NATS", err)
	}

	// Services
	loc := cfg.Location()
	slackClient := services.NewSlackClient(cfg.SlackWebhookURL)
	aiClient := services.NewOpenRouterClient(cfg.OpenRouterKey, cfg.OpenRouterModel)
	geocoder := services.NewGeocoder(cfg.GeocoderURL)
	renderer, err := services.NewPDFRenderer(cfg.ChromeURL)
	if err != nil {
		fatal("failed to load report template", err)
	}
	objects, err := newObjectStore(cfg)
	if err != nil {
		fatal("failed to set up object storage", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consumers
	var consumers []*workers.Consumer
	live := hub.New()
	if natsClient != nil {
		reportWorker := workers.NewReportWorker(store, renderer, aiClient, objects, publisher)
		notificationWorker := workers.NewNotificationWorker(slackClient, store)
		consumers = []*workers.Consumer{
			workers.NewConsumer(natsClient.JS(), "reports", natsbus.ReportJobsSubject, "report-renderer", 2*time.Minute, 4, reportWorker.Handle),
			workers.NewConsumer(natsClient.JS(), "notifications", natsbus.EventsSubjects, "notifier", 30*time.Second, 32, notificationWorker.Handle),
		}
		for _, c := range consumers {
			if err := c.Start(ctx); err != nil {
				fatal("failed to start consumer", err)
			}
		}
		relay, err := live.Relay(natsClient.JS(), natsbus.EventsSubjects)
		if err != nil {
			fatal("failed to subscribe live relay", err)
		}
		defer func() { _ = relay.Unsubscribe() }()
	}

	scheduler := workers.NewScheduler(store, publisher, loc, logger)
	if err := scheduler.Start(cfg.ReminderCron, cfg.StaleSweepCron); err != nil {
		fatal("failed to start scheduler", err)
	}

	// HTTP handlers
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal("failed to set up tokens", err)
	}
	authn := auth.NewAuthenticator(tokens, redisCache)
	authHandler := auth.NewHandler(store, tokens, redisCache)
	h := handlers.New(handlers.Deps{
		Store:     store,
		Cache:     redisCache,
		Publisher: publisher,
		Geocoder:  geocoder,
		Objects:   objects,
		Location:  loc,
		Live:      live,
		Origins:   cfg.CORSOrigins,
	})

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RateLimitIP(cfg.APIRatePerSecond, cfg.APIRateBurst))

	r.Get("/healthz", healthz(store, redisCache, natsClient))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	h.RegisterRoutes(r, authn, authHandler, middleware.RateLimitLogin(redisCache, cfg.LoginLimit, cfg.LoginLimitWindow))

	server := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		fatal("failed to listen", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("server starting", "addr", ln.Addr().String())
	err = serve(server, ln, sigCh, func() {
		cancel()
		scheduler.Stop()
		live.Close()
		for _, c := range consumers {
			if err := c.Stop(); err != nil {
				slog.Warn("consumer stop failed", "error", err)
			}
		}
	})
	if err != nil {
		fatal("server error", err)
	}
	slog.Info("server stopped")
}

// serve runs server on ln until a signal arrives on sigCh, then stops the
// background work and drains in-flight requests before returning.
func serve(server *http.Server, ln net.Listener, sigCh <-chan os.Signal, stopWorkers func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sigCh

		slog.Info("shutting down")
		stopWorkers()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown incomplete", "error", err)
		}
	}()

	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func newObjectStore(cfg *config.Config) (services.ObjectStore, error) {
	if !cfg.UseS3() {
		slog.Info("storing reports on local disk", "dir", cfg.ReportsDir)
		return services.NewLocalStore(cfg.ReportsDir)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return services.NewS3Store(ctx, services.S3Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		PublicURL:       cfg.S3PublicURL,
	})
}

func healthz(store *storage.Storage, redisCache *cache.RedisCache, natsClient *natsbus.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok", "redis": "ok", "nats": "disabled"}
		healthy := true
		if err := store.Ping(ctx); err != nil {
			status["database"], healthy = err.Error(), false
		}
		if err := redisCache.Ping(ctx); err != nil {
			status["redis"], healthy = err.Error(), false
		}
		if natsClient != nil {
			status["nats"] = "ok"
			if !natsClient.Healthy() {
				status["nats"], healthy = "disconnected", false
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(w, code, status)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
