package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/execution-engine/config"
	redis_wrapper "github.com/joripage/execution-engine/pkg/infra/redis"
	"github.com/joripage/execution-engine/pkg/logging"
	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms"
	"github.com/joripage/execution-engine/pkg/oms/risk"
	"github.com/joripage/execution-engine/pkg/oms/stream"
	"github.com/joripage/execution-engine/pkg/telemetry"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	seed := cfg.MarketSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	market := marketdata.NewSimulator(seed)

	engine := oms.NewOMS(cfg.Oms, market)

	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Warnf("redis unavailable, cluster velocity rule disabled: %v", err)
		} else {
			limit := 10
			if cfg.Oms != nil && cfg.Oms.Risk != nil && cfg.Oms.Risk.MaxOrdersPerWindow > 0 {
				limit = cfg.Oms.Risk.MaxOrdersPerWindow
			}
			engine.AddRiskRule(risk.NewRedisVelocityRule(redisClient, cfg.ServiceName, limit))
		}
	}

	if cfg.Nats != nil {
		publisher, err := stream.NewNATSPublisher(cfg.Nats)
		if err != nil {
			zap.S().Warnf("nats unavailable, order events stay in memory: %v", err)
		} else {
			defer publisher.Close()
			engine.SetPublisher(publisher)
		}
	}

	if cfg.TelemetryAddr != "" {
		tele := telemetry.New()
		engine.SetTelemetry(tele)
		go func() {
			if err := tele.Serve(cfg.TelemetryAddr); err != nil {
				zap.S().Warnf("telemetry server stopped: %v", err)
			}
		}()
	}

	engine.Start(ctx)
	fmt.Println("Execution engine started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	engine.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}
