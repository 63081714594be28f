package execution

import (
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

// Config carries every cadence and horizon the algorithms use. All of
// them are tunable so tests can run the whole lifecycle in
// milliseconds.
type Config struct {
	LimitPollIntervalMs  int64   `yaml:"limit_poll_interval_ms"`
	LimitFillProbability float64 `yaml:"limit_fill_probability"`

	DayWindowMs int64 `yaml:"day_window_ms"`
	IOCWindowMs int64 `yaml:"ioc_window_ms"`
	FOKWindowMs int64 `yaml:"fok_window_ms"`
	GTCWindowMs int64 `yaml:"gtc_window_ms"`

	IcebergMinDelayMs int64 `yaml:"iceberg_min_delay_ms"`
	IcebergMaxDelayMs int64 `yaml:"iceberg_max_delay_ms"`

	TWAPSlices    int   `yaml:"twap_slices"`
	TWAPHorizonMs int64 `yaml:"twap_horizon_ms"`

	VWAPSlices    int   `yaml:"vwap_slices"`
	VWAPHorizonMs int64 `yaml:"vwap_horizon_ms"`

	Seed int64 `yaml:"seed"`
}

func (c *Config) withDefaults() {
	if c.LimitPollIntervalMs == 0 {
		c.LimitPollIntervalMs = 500
	}
	if c.LimitFillProbability == 0 {
		c.LimitFillProbability = 0.7
	}
	if c.DayWindowMs == 0 {
		c.DayWindowMs = (6*time.Hour + 30*time.Minute).Milliseconds()
	}
	if c.IOCWindowMs == 0 {
		c.IOCWindowMs = 500
	}
	if c.FOKWindowMs == 0 {
		c.FOKWindowMs = 500
	}
	if c.GTCWindowMs == 0 {
		c.GTCWindowMs = (24 * time.Hour).Milliseconds()
	}
	if c.IcebergMinDelayMs == 0 {
		c.IcebergMinDelayMs = 1000
	}
	if c.IcebergMaxDelayMs == 0 {
		c.IcebergMaxDelayMs = 5000
	}
	if c.TWAPSlices == 0 {
		c.TWAPSlices = 20
	}
	if c.TWAPHorizonMs == 0 {
		c.TWAPHorizonMs = (30 * time.Minute).Milliseconds()
	}
	if c.VWAPSlices == 0 {
		c.VWAPSlices = 15
	}
	if c.VWAPHorizonMs == 0 {
		c.VWAPHorizonMs = (45 * time.Minute).Milliseconds()
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

func (c *Config) pollInterval() time.Duration {
	return time.Duration(c.LimitPollIntervalMs) * time.Millisecond
}

func (c *Config) tifWindow(tif model.OrderTimeInForce) time.Duration {
	switch tif {
	case model.OrderTimeInForceDAY:
		return time.Duration(c.DayWindowMs) * time.Millisecond
	case model.OrderTimeInForceIOC:
		return time.Duration(c.IOCWindowMs) * time.Millisecond
	case model.OrderTimeInForceFOK:
		return time.Duration(c.FOKWindowMs) * time.Millisecond
	default:
		return time.Duration(c.GTCWindowMs) * time.Millisecond
	}
}
