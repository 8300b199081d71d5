package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Saba3939/mood-harbor/internal/clock"
	"github.com/Saba3939/mood-harbor/internal/config"
	api "github.com/Saba3939/mood-harbor/internal/http"
	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/metrics"
	"github.com/Saba3939/mood-harbor/internal/queue"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"github.com/Saba3939/mood-harbor/internal/repo"
	"github.com/Saba3939/mood-harbor/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var bus realtime.Bus
	if cfg.RedisAddr != "" {
		rb := realtime.NewRedisBus(cfg.RedisAddr)
		if err := rb.Ping(ctx); err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		defer rb.Close()
		bus = rb
	} else {
		bus = realtime.NewMemoryBus()
	}

	var notifier queue.Publisher
	if cfg.RabbitURL != "" {
		notifier, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	} else {
		notifier = queue.NewNoop()
	}
	defer notifier.Close()

	clk := clock.Real{}
	shares := service.NewShareService(store, bus, clk)
	harbor := service.NewHarborService(store, store, bus, clk)
	reaper := service.NewReaper(store, store, notifier, bus, clk, cfg.RabbitExchange)

	h := api.NewHandler(shares, harbor, reaper, store, cfg.CronSecret)
	r := api.NewRouter(h, cfg.JWTSecret, cfg.RateLimitPerMin)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	logger.Info("mood-harbor listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
		shutCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutCtx)
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
