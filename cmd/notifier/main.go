package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/Saba3939/mood-harbor/internal/config"
	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/notify"
	"github.com/Saba3939/mood-harbor/internal/queue"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, cfg.RabbitBindKey)
	if err != nil {
		logger.Fatal("rabbit consumer init", zap.Error(err))
	}
	defer cons.Close()

	sender := &notify.Sender{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier up",
		zap.String("exchange", cfg.RabbitExchange),
		zap.String("queue", cfg.RabbitQueue),
		zap.String("key", cfg.RabbitBindKey),
		zap.Int("workers", cfg.Concurrency),
	)

	if err := cons.Consume(ctx, cfg.Concurrency, func(b []byte) error {
		var ev queue.ShareExpired
		if err := json.Unmarshal(b, &ev); err != nil {
			// poison message, don't requeue forever
			logger.Warn("bad expiry event", zap.Error(err))
			return nil
		}
		return sender.Send(ev.UserID, ev.Message)
	}); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
