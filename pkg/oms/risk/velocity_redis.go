package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

// RedisVelocityRule counts submissions across engine instances using a
// per-second key. Redis being unreachable does not block order flow;
// the in-process VelocityRule still applies.
type RedisVelocityRule struct {
	client *redis.Client
	prefix string
	limit  int64
}

func NewRedisVelocityRule(client *redis.Client, prefix string, limit int) *RedisVelocityRule {
	return &RedisVelocityRule{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
	}
}

func (r *RedisVelocityRule) Name() string { return "velocity_redis" }

func (r *RedisVelocityRule) Check(ctx context.Context, _ *model.Order, _ marketdata.Quote) error {
	key := fmt.Sprintf("%s:orders:%d", r.prefix, time.Now().Unix())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.S().Warnf("redis velocity check unavailable: %v", err)
		return nil
	}

	if incr.Val() > r.limit {
		return fmt.Errorf("%w: cluster-wide velocity cap %d reached", ErrRejected, r.limit)
	}
	return nil
}
