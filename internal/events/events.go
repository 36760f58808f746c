// Package events publishes domain events to the message queue. Payloads are
// the same presented shapes the API returns, so no internal id leaves the
// process.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jobboard/apiserver/internal/logging"
	"github.com/jobboard/apiserver/internal/metrics"
	"github.com/jobboard/apiserver/internal/mq"
)

type Type string

const (
	UserRegistered Type = "user.registered"
	JobCreated     Type = "job.created"
	JobUpdated     Type = "job.updated"
	JobDeleted     Type = "job.deleted"
	RatingCreated  Type = "rating.created"
)

// All lists every event type, in the order the worker subscribes to them.
var All = []Type{UserRegistered, JobCreated, JobUpdated, JobDeleted, RatingCreated}

const channelPrefix = "jobboard."

// Channel is the broker channel events of type t are sent to.
func Channel(t Type) string {
	return channelPrefix + string(t)
}

type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Decode parses a message produced by BrokerPublisher.
func Decode(msg mq.Message) (Event, error) {
	var evt Event
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return evt, nil
}

// Publisher is what handlers use to emit events. Publishing never fails the
// caller; delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, t Type, data any)
}

// Broker is the subset of mq.MQ the publisher needs.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

type BrokerPublisher struct {
	broker  Broker
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(broker Broker) *BrokerPublisher {
	return &BrokerPublisher{broker: broker, timeout: 5 * time.Second, now: time.Now}
}

func (p *BrokerPublisher) Publish(ctx context.Context, t Type, data any) {
	log := logging.Ctx(ctx)

	payload, err := json.Marshal(data)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		log.Error().Err(err).Str("event", string(t)).Msg("failed to encode event")
		return
	}
	body, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: p.now().UTC(),
		Data:       payload,
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		log.Error().Err(err).Str("event", string(t)).Msg("failed to encode event")
		return
	}

	// The request may finish before the broker acknowledges.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	id, err := p.broker.Publish(pubCtx, Channel(t), body, map[string]string{
		"type":             string(t),
		mq.AttrContentType: "application/json",
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		log.Warn().Err(err).Str("event", string(t)).Msg("failed to publish event")
		return
	}
	metrics.EventsPublished.WithLabelValues(string(t), "ok").Inc()
	log.Debug().Str("event", string(t)).Str("message_id", id).Msg("event published")
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Type, any) {}
