package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-table-pos.git/internal/config"
	"github.com/ariefcatur/go-table-pos.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-table-pos.git/internal/kafka"
	"github.com/ariefcatur/go-table-pos.git/internal/pos"
	"github.com/ariefcatur/go-table-pos.git/internal/postgres"
	"github.com/ariefcatur/go-table-pos.git/internal/queue"
	"github.com/ariefcatur/go-table-pos.git/internal/redisx"
	"github.com/ariefcatur/go-table-pos.git/internal/store"
)

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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PgMaxConns)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (settled sessions)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, pos.TopicSessionSettled, 1024, log)
	prod.Start(ctx)

	// Gateways
	sessions := &store.SessionRepo{DB: db}
	tables := &store.TableRepo{DB: db}
	orders := &store.QueueRepo{DB: db}

	// Registry + engine + coordinator
	known, err := tables.ListTables(ctx)
	if err != nil {
		log.Fatalf("load tables: %v", err)
	}
	registry := pos.NewRegistry(known)
	index := pos.NewIndex(sessions, rdb, log)
	engine := pos.NewEngine(sessions, orders, index, log, cfg.AutosaveDelay)
	coord := pos.NewCoordinator(registry, tables, log, engine.OpenTable)

	if err := index.Refresh(ctx); err != nil {
		log.WithError(err).Warn("initial index refresh failed")
	}

	// Queue poller
	poller := queue.NewPoller(orders, log, cfg.QueuePollInterval)
	go poller.Run(ctx)

	// HTTP
	router := httpx.NewRouter()
	sh := &httpx.SessionHandler{
		Engine:   engine,
		Queue:    poller,
		Producer: prod,
		Log:      log,
		Service:  cfg.ServiceName,
	}
	sh.Register(router)
	th := &httpx.TablesHandler{Registry: registry, Coord: coord, Gateway: tables, Log: log}
	th.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Infof("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// flush the open draft so nothing typed in the last second is lost
	if engine.OpenTable() != "" {
		if err := engine.Save(ctx2); err != nil {
			log.WithError(err).Warn("final save failed")
		}
	}

	prod.Close()
	cancel()
	prod.WaitClosed()
}
