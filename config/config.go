package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/joripage/execution-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/execution-engine/pkg/infra/redis"
	"github.com/joripage/execution-engine/pkg/oms"
	"github.com/joripage/execution-engine/pkg/oms/stream"
)

type AppConfig struct {
	ServiceName   string                           `yaml:"service_name"`
	LogLevel      string                           `yaml:"log_level"`
	TelemetryAddr string                           `yaml:"telemetry_addr"`
	MarketSeed    int64                            `yaml:"market_seed"`
	Oms           *oms.Config                      `yaml:"oms"`
	OmsDB         *postgres_wrapper.PostgresConfig `yaml:"oms_db"`
	Redis         *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats          *stream.Config                   `yaml:"nats"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
