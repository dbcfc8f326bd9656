package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/consult-scheduler/internal/db"
	"github.com/BruksfildServices01/consult-scheduler/internal/logging"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/ratelimit"
	"github.com/BruksfildServices01/consult-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	db := dbpkg.NewDB(cfg)

	// ======================================================
	// METRICS
	// ======================================================
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	// ======================================================
	// AUDIT
	// ======================================================
	dispatcher := audit.NewDispatcher(audit.New(db), logging.Component(logger, "audit"), cfg.AuditQueueSize)

	// ======================================================
	// RATE LIMIT
	// ======================================================
	var counter ratelimit.Counter
	ledger := ratelimit.NewLedgerCounter(db)
	switch cfg.RateLimitStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		counter = ratelimit.NewRedisCounter(rdb)
	default:
		counter = ledger
	}

	limiter := ratelimit.New(counter, logging.Component(logger, "ratelimit"),
		ratelimit.OnDeny(func(_ uuid.UUID, action ratelimit.Action, _ ratelimit.Decision) {
			m.RateLimitDenied(string(action))
		}),
	)

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	var publisher notify.Publisher = notify.Nop()
	if cfg.AMQPUrl != "" {
		p, err := notify.NewAMQPPublisher(cfg.AMQPUrl, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("notifications disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// ======================================================
	// HTTP
	// ======================================================
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(logging.Component(logger, "http")))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Log:      logger,
		Audit:    dispatcher,
		Limiter:  limiter,
		Metrics:  m,
		Notify:   publisher,
		Gatherer: reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeRateLimits(ctx, ledger, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	// drain queued audit rows before the store goes away
	dispatcher.Close()
}

// purgeRateLimits drops ledger windows that can no longer affect a decision.
func purgeRateLimits(ctx context.Context, ledger *ratelimit.LedgerCounter, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ledger.Purge(ctx, time.Now().Add(-time.Hour))
			if err != nil {
				logger.Warn("rate limit purge failed", "error", err)
				continue
			}
			logger.Debug("rate limit windows purged", "rows", n)
		}
	}
}
