package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ChannelPrefix namespaces the per-kind change channels.
const ChannelPrefix = "collections."

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// ChangeEvent tells subscribers that a record of Kind changed and every
// cached page of that kind is stale.
type ChangeEvent struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// Channel returns the channel change events of kind are published on.
func Channel(kind string) string {
	return ChannelPrefix + kind
}

// KindOf is the inverse of Channel.
func KindOf(channel string) (string, bool) {
	kind, ok := strings.CutPrefix(channel, ChannelPrefix)
	return kind, ok && kind != ""
}

// ParseEventType splits an outbox event type such as DISCOUNT_REQUEST_APPROVE
// into the collection kind ("discount-requests") and the action ("approve").
func ParseEventType(eventType string) (kind, action string, err error) {
	i := strings.LastIndexByte(eventType, '_')
	if i <= 0 || i == len(eventType)-1 {
		return "", "", fmt.Errorf("malformed event type %q", eventType)
	}
	entity := strings.ToLower(strings.ReplaceAll(eventType[:i], "_", "-"))
	return Pluralize(entity), strings.ToLower(eventType[i+1:]), nil
}

// EventType builds the outbox event type for kind and action.
func EventType(kind, action string) string {
	entity := Singularize(kind)
	return strings.ToUpper(strings.ReplaceAll(entity, "-", "_")) + "_" + strings.ToUpper(action)
}

// Pluralize covers the resource names the admin exposes.
func Pluralize(s string) string {
	switch {
	case strings.HasSuffix(s, "y"):
		return strings.TrimSuffix(s, "y") + "ies"
	case strings.HasSuffix(s, "s"):
		return s
	default:
		return s + "s"
	}
}

func Singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

// DecodeChange decodes a message received from a change channel.
func DecodeChange(msg []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Kind == "" {
		return ChangeEvent{}, fmt.Errorf("decode change event: missing kind")
	}
	return ev, nil
}
