package risk

import (
	"context"
	"errors"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

// ErrRejected wraps every rule violation so callers can classify the
// failure with errors.Is.
var ErrRejected = errors.New("risk check rejected")

// Rule is one stateless pre-trade check. The reference quote is the
// market snapshot taken at submission time.
type Rule interface {
	Name() string
	Check(ctx context.Context, order *model.Order, ref marketdata.Quote) error
}

type Config struct {
	MaxPositionSize    int64   `yaml:"max_position_size"`
	MaxOrderValue      float64 `yaml:"max_order_value"`
	PriceCollar        float64 `yaml:"price_collar"`
	MaxOrdersPerWindow int     `yaml:"max_orders_per_window"`
	WindowMs           int64   `yaml:"window_ms"`
}

func (c *Config) withDefaults() {
	if c.MaxPositionSize == 0 {
		c.MaxPositionSize = 100_000
	}
	if c.MaxOrderValue == 0 {
		c.MaxOrderValue = 10_000_000
	}
	if c.PriceCollar == 0 {
		c.PriceCollar = 0.10
	}
	if c.MaxOrdersPerWindow == 0 {
		c.MaxOrdersPerWindow = 10
	}
	if c.WindowMs == 0 {
		c.WindowMs = 1000
	}
}

// Gate runs all configured rules in order and returns the first
// violation.
type Gate struct {
	rules []Rule
}

func NewGate(cfg *Config) *Gate {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.withDefaults()

	return &Gate{
		rules: []Rule{
			NewMaxQuantityRule(cfg.MaxPositionSize),
			NewMaxNotionalRule(cfg.MaxOrderValue),
			NewPriceCollarRule(cfg.PriceCollar),
			NewVelocityRule(cfg.MaxOrdersPerWindow, cfg.WindowMs),
		},
	}
}

// AddRule appends an extra rule, e.g. the redis-backed velocity rule
// for multi-instance deployments.
func (g *Gate) AddRule(r Rule) {
	g.rules = append(g.rules, r)
}

func (g *Gate) Validate(ctx context.Context, order *model.Order, ref marketdata.Quote) error {
	for _, r := range g.rules {
		if err := r.Check(ctx, order, ref); err != nil {
			return err
		}
	}
	return nil
}
