package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/optica-admin/pkg/circuitbreaker"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
	"github.com/jwalitptl/optica-admin/pkg/metrics"
)

type RedisBroker struct {
	client  *redis.Client
	cb      *circuitbreaker.CircuitBreaker
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Config struct {
	URL          string        `mapstructure:"url" envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"REDIS_MAX_RETRIES" default:"3"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"REDIS_RETRY_BACKOFF" default:"100ms"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	// BreakerFailures trips the publish breaker after that many consecutive failures.
	BreakerFailures uint32        `mapstructure:"breaker_failures" envconfig:"REDIS_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" envconfig:"REDIS_BREAKER_TIMEOUT" default:"5s"`
}

type Option func(*RedisBroker)

// WithMetrics records publish counts, latency and breaker state.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *RedisBroker) { b.metrics = m }
}

func NewRedisBroker(config Config, logger zerolog.Logger, opts ...Option) (*RedisBroker, error) {
	ropts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ropts.MaxRetries = config.MaxRetries
	ropts.MinRetryBackoff = config.RetryBackoff
	if config.PoolSize > 0 {
		ropts.PoolSize = config.PoolSize
	}
	ropts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(ropts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	b := &RedisBroker{client: client, logger: logger}
	for _, opt := range opts {
		opt(b)
	}

	b.cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:                "redis-broker",
		MaxRequests:         1,
		Interval:            10 * time.Second,
		Timeout:             config.BreakerTimeout,
		ConsecutiveFailures: config.BreakerFailures,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			b.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			if b.metrics != nil {
				b.metrics.BrokerBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return b, nil
}

// Publish marshals message to JSON and publishes it on channel. Calls fail
// fast with circuitbreaker.ErrOpen while Redis is considered down.
func (b *RedisBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	start := time.Now()
	err = b.cb.Execute(func() error {
		return b.client.Publish(ctx, channel, payload).Err()
	})
	if b.metrics != nil {
		b.metrics.BrokerLatency.Observe(time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		b.metrics.BrokerPublished.WithLabelValues(channel, status).Inc()
	}
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe returns once the subscription is confirmed. The channel is
// closed when ctx is done.
func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	msgChan := make(chan []byte, 100)
	go func() {
		defer func() {
			pubsub.Close()
			close(msgChan)
		}()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case msgChan <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return msgChan, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

var _ messaging.Broker = (*RedisBroker)(nil)
