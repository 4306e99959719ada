package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-table-pos.git/internal/config"
	kafkax "github.com/ariefcatur/go-table-pos.git/internal/kafka"
	"github.com/ariefcatur/go-table-pos.git/internal/pos"
	"github.com/ariefcatur/go-table-pos.git/internal/postgres"
	"github.com/ariefcatur/go-table-pos.git/internal/queue"
	"github.com/ariefcatur/go-table-pos.git/internal/redisx"
	"github.com/ariefcatur/go-table-pos.git/internal/store"
)

// orderfeed consumes customer-submitted orders off the event stream and
// lands them in the queue store, where the POS terminals pick them up.
func main() {
	_ = godotenv.Load()

	log := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PgMaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	feed := &queue.Feed{
		Store:       &store.QueueRepo{DB: db},
		Redis:       rdb,
		Log:         log,
		ServiceName: cfg.ServiceName + "-feed",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.FeedGroup, pos.TopicCustomerOrderSubmitted, cfg.FeedWorkers, log)

	go func() {
		log.WithFields(logrus.Fields{
			"group":   cfg.FeedGroup,
			"topic":   pos.TopicCustomerOrderSubmitted,
			"workers": cfg.FeedWorkers,
		}).Info("order feed consumer started")
		if err := cons.Start(ctx, feed.HandleSubmitted); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
