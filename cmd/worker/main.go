package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Roja-08/Scout-Nallur/internal/config"
	"github.com/Roja-08/Scout-Nallur/internal/notify"
	"github.com/Roja-08/Scout-Nallur/internal/queue"
	"github.com/Roja-08/Scout-Nallur/internal/store"
)

// Worker drains the notification queue and delivers email. Run alongside
// the API when QUEUE_BACKEND=redis; the memory backend needs no worker.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend == "memory" {
		log.Fatal("QUEUE_BACKEND=memory has no external queue; run the API alone")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	q := queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.SMTPFromName, cfg.SMTPFromEmail, logger)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		var job notify.Job
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			logger.Error("bad notification payload",
				slog.String("type", msg.Type), slog.String("error", err.Error()))
			continue
		}

		logger.Info("processing notification",
			slog.String("kind", job.Kind), slog.String("to", job.To))
		if err := mailer.Process(job); err != nil {
			logger.Error("notification delivery failed",
				slog.String("kind", job.Kind), slog.String("to", job.To), slog.String("error", err.Error()))
		}
	}

	log.Println("worker stopped")
}
