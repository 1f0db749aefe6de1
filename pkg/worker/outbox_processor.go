package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/logger"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
	"github.com/jwalitptl/optica-admin/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	RetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"5"`
	RetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"10s"`
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("BatchSize must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("PollInterval must be greater than 0")
	case c.RetryAttempts <= 0:
		return errors.New("RetryAttempts must be greater than 0")
	case c.RetryDelay <= 0:
		return errors.New("RetryDelay must be greater than 0")
	}
	return nil
}

// Publisher delivers change events. *messaging.ChangeFeed implements it.
type Publisher interface {
	Publish(ctx context.Context, ev messaging.ChangeEvent) error
}

// DecisionNotifier tells the requester how their discount request was decided.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, d model.DiscountDecision) error
}

type OutboxProcessor struct {
	store     OutboxStore
	publisher Publisher
	notifier  DecisionNotifier
	config    OutboxProcessorConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*OutboxProcessor)

func WithNotifier(n DecisionNotifier) Option {
	return func(p *OutboxProcessor) { p.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(p *OutboxProcessor) { p.now = now }
}

func NewOutboxProcessor(
	store OutboxStore,
	publisher Publisher,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	opts ...Option,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	p := &OutboxProcessor{
		store:     store,
		publisher: publisher,
		config:    config,
		logger:    logger.With("outbox"),
		metrics:   metrics,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "batch_size", p.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch claims one batch of due events, handles each and records the
// outcome. It returns the number of events claimed.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	claimed := 0
	err := p.store.Claim(ctx, p.config.BatchSize, func(events []*model.OutboxEvent) map[uuid.UUID]StatusUpdate {
		claimed = len(events)

		updates := make(map[uuid.UUID]StatusUpdate, len(events))
		for _, event := range events {
			updates[event.ID] = p.processEvent(ctx, event)
		}
		return updates
	})
	p.metrics.OutboxQueueSize.Set(float64(claimed))
	if err != nil {
		return claimed, fmt.Errorf("failed to process outbox batch: %w", err)
	}
	return claimed, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) StatusUpdate {
	err := p.handle(ctx, event)
	if err == nil {
		p.metrics.OutboxEventsProcessed.WithLabelValues(event.EventType).Inc()
		return StatusUpdate{Status: model.OutboxStatusProcessed}
	}

	msg := err.Error()
	var perm permanentError
	if errors.As(err, &perm) || event.RetryCount+1 >= p.config.RetryAttempts {
		p.metrics.OutboxEventsFailed.WithLabelValues(event.EventType).Inc()
		p.logger.Error(err, "Giving up on outbox event",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"attempts", event.RetryCount+1)
		return StatusUpdate{Status: model.OutboxStatusFailed, Error: &msg}
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := p.now().Add(p.config.RetryDelay)
	p.logger.Warn("Outbox event will be retried",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"error", msg,
		"retry_at", retryAt)
	return StatusUpdate{Status: model.OutboxStatusRetry, Error: &msg, RetryAt: &retryAt}
}

func (p *OutboxProcessor) handle(ctx context.Context, event *model.OutboxEvent) error {
	kind, action, err := messaging.ParseEventType(event.EventType)
	if err != nil {
		return permanentError{err}
	}

	var payload model.EntityPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return permanentError{fmt.Errorf("decode payload: %w", err)}
	}

	change := messaging.ChangeEvent{Kind: kind, Action: action}
	if payload.ID > 0 {
		change.ID = strconv.FormatInt(payload.ID, 10)
	}
	if err := p.publisher.Publish(ctx, change); err != nil {
		return err
	}

	if p.notifier == nil || !isDecision(kind, action) {
		return nil
	}
	var decision model.DiscountDecision
	if err := json.Unmarshal(event.Payload, &decision); err != nil {
		return permanentError{fmt.Errorf("decode decision: %w", err)}
	}
	if err := p.notifier.NotifyDecision(ctx, decision); err != nil {
		p.metrics.NotificationsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("notify requester: %w", err)
	}
	p.metrics.NotificationsSent.WithLabelValues("sent").Inc()
	return nil
}

func isDecision(kind, action string) bool {
	return kind == "discount-requests" && (action == "approve" || action == "reject")
}

// permanentError marks events that can never succeed. They fail without retry.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }

func (e permanentError) Unwrap() error { return e.err }
