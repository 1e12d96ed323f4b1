package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/equilibra/cmd/mainconfig"
	"github.com/wolfman30/equilibra/internal/api/router"
	"github.com/wolfman30/equilibra/internal/app/bootstrap"
	appconfig "github.com/wolfman30/equilibra/internal/config"
	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/equilibra/internal/http/middleware"
	"github.com/wolfman30/equilibra/internal/maintenance"
	"github.com/wolfman30/equilibra/internal/notify"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/responses"
	"github.com/wolfman30/equilibra/internal/scheduling"
	"github.com/wolfman30/equilibra/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting equilibra API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := buildApp(ctx, cfg, logger, reg)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if err := a.maintenance.Start(); err != nil {
		logger.Error("failed to start maintenance", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	a.maintenance.Stop()
	logger.Info("server stopped")
}

// app is everything main needs to run and tear down.
type app struct {
	handler     http.Handler
	maintenance *maintenance.Scheduler
	closers     []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("load clinic timezone %q: %w", cfg.ClinicTimezone, err)
	}
	m := metrics.NewChatMetrics(reg)

	var redisClient *redis.Client
	if bootstrap.NeedsRedis(cfg) {
		redisClient = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
		if redisClient == nil {
			return nil, fmt.Errorf("redis required by configured backends but unavailable at %s", cfg.RedisAddr)
		}
		a.closers = append(a.closers, redisClient.Close)
	}

	var awsCfg aws.Config
	if bootstrap.NeedsAWS(cfg) {
		if awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg); err != nil {
			return fail(fmt.Errorf("load aws config: %w", err))
		}
	}

	// Scheduling
	cal, err := bootstrap.BuildCalendar(ctx, cfg, loc, logger.Component("calendar"))
	if err != nil {
		return fail(err)
	}
	sender, err := bootstrap.BuildEmailSender(cfg, awsCfg, logger.Component("email"))
	if err != nil {
		return fail(err)
	}
	locker, err := bootstrap.BuildSlotLocker(cfg, redisClient, logger.Component("slot_lock"))
	if err != nil {
		return fail(err)
	}
	cache := scheduling.NewMemoryAvailabilityCache(cfg.AvailabilityTTL)
	coordinator := scheduling.NewCoordinator(cal, scheduling.Config{
		Hours:       scheduling.DefaultHours(loc),
		PhonePrefix: cfg.PhonePrefix,
		Duration:    cfg.AppointmentDuration,
		CallTimeout: cfg.CalendarTimeout,
	}, logger.Component("scheduling"),
		scheduling.WithLocker(locker),
		scheduling.WithCache(cache),
		scheduling.WithNotifier(notify.NewService(sender, cfg.PsychologistEmail, cfg.EmailTimeout, logger.Component("notify"))),
		scheduling.WithMetrics(m),
	)

	// Responses
	persister, err := bootstrap.BuildEffectivenessPersister(cfg, redisClient)
	if err != nil {
		return fail(err)
	}
	store := responses.NewEffectivenessStore(ctx, persister, responses.StoreConfig{
		Retention:      cfg.EffectivenessRetention,
		SingleUseGrace: cfg.EffectivenessSingleUseGrace,
	}, logger.Component("effectiveness"))
	chain, closeChain, err := bootstrap.BuildTextChain(ctx, cfg, awsCfg, m, logger)
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, closeChain)
	selector := responses.NewSelector(store, chain, m, logger.Component("responses"))

	// Dialogue
	var intent dialogue.IntentPolicy = dialogue.ExplicitOnly{}
	if cfg.IntentKeywordsOn {
		intent = dialogue.NewKeywordIntent()
	}
	machine := dialogue.NewMachine(selector, coordinator,
		dialogue.WithIntentPolicy(intent),
		dialogue.WithLocation(loc),
		dialogue.WithMetrics(m),
		dialogue.WithLogger(logger.Component("dialogue")),
	)

	// HTTP
	sessions, memSessions, err := bootstrap.BuildSessionStore(cfg, redisClient)
	if err != nil {
		return fail(err)
	}
	chat := handlers.NewChatHandler(machine, sessions, coordinator, handlers.CookieConfig{
		Secure: cfg.CookieSecure,
		MaxAge: cfg.SessionTTL,
	}, logger.Component("http"))
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	routerCfg := &router.Config{
		Logger:             logger,
		Chat:               chat,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	}
	if redisClient != nil {
		routerCfg.HealthCheck = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	a.handler = router.New(routerCfg)

	// Maintenance
	sched := maintenance.New(cfg.MaintenanceInterval, m, logger.Component("maintenance"))
	sched.Add("effectiveness_prune", maintenance.PruneTask(store))
	sched.Add("availability_cache_evict", maintenance.EvictTask(cache.Evict))
	sched.Add("rate_limit_sweep", maintenance.EvictTask(limiter.Sweep))
	if memSessions != nil {
		sched.Add("session_sweep", maintenance.EvictTask(memSessions.Sweep))
	}
	a.maintenance = sched

	return a, nil
}
