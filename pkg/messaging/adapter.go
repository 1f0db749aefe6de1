package messaging

import (
	"context"

	"github.com/rs/zerolog"
)

// Handler processes one change event. Errors are logged and the
// subscription keeps running.
type Handler func(ctx context.Context, ev ChangeEvent) error

// ChangeFeed publishes and consumes ChangeEvents over a Broker.
type ChangeFeed struct {
	broker Broker
	logger zerolog.Logger
}

func NewChangeFeed(broker Broker, logger zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{broker: broker, logger: logger}
}

func (f *ChangeFeed) Publish(ctx context.Context, ev ChangeEvent) error {
	return f.broker.Publish(ctx, Channel(ev.Kind), ev)
}

// Watch calls h for every change of kind until ctx is done. It returns once
// the subscription is established.
func (f *ChangeFeed) Watch(ctx context.Context, kind string, h Handler) (<-chan struct{}, error) {
	msgs, err := f.broker.Subscribe(ctx, Channel(kind))
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			ev, err := DecodeChange(msg)
			if err != nil {
				f.logger.Warn().Err(err).Str("kind", kind).Msg("Dropping malformed change event")
				continue
			}
			if err := h(ctx, ev); err != nil {
				f.logger.Error().Err(err).Str("kind", kind).Str("action", ev.Action).Msg("Change handler failed")
			}
		}
	}()
	return done, nil
}

func (f *ChangeFeed) Close() error {
	return f.broker.Close()
}
