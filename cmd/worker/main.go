package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/execution-engine/config"
	postgres_wrapper "github.com/joripage/execution-engine/pkg/infra/postgres"
	"github.com/joripage/execution-engine/pkg/logging"
	"github.com/joripage/execution-engine/pkg/oms/repo"
	"github.com/joripage/execution-engine/pkg/oms/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.OmsDB)
	w := worker.NewWorker(repo.NewRepo(db))

	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		panic(err)
	}
	defer nc.Close()
	js, err := nc.JetStream()
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancel()
	}()

	if err := w.StartConsumer(ctx, js, cfg.Nats.Subject, cfg.Nats.Durable); err != nil {
		zap.S().Infof("consumer stopped: %v", err)
	}
}
