package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	// StreamName is the call lifecycle stream.
	StreamName = "CALLS"

	// SubjectPrefix is the prefix for all call subjects.
	SubjectPrefix = "calls"
)

// CallEvent is one lifecycle record published per call transition.
type CallEvent struct {
	CallID    string    `json:"call_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes call lifecycle events. Publish failures are logged,
// never surfaced: lifecycle events are advisory.
type Publisher struct {
	client *Client
}

// NewPublisher ensures the call stream exists and returns a publisher.
func NewPublisher(ctx context.Context, client *Client) (*Publisher, error) {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      90 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Description: "Call lifecycle events",
		})
		if err != nil {
			return nil, fmt.Errorf("creating call stream: %w", err)
		}
	}

	return &Publisher{client: client}, nil
}

func subject(callID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, callID, kind)
}

// CallStarted publishes a call_started event.
func (p *Publisher) CallStarted(ctx context.Context, callID string) {
	p.publish(ctx, callID, "started")
}

// CallEnded publishes a call_ended event.
func (p *Publisher) CallEnded(ctx context.Context, callID string) {
	p.publish(ctx, callID, "ended")
}

func (p *Publisher) publish(ctx context.Context, callID, kind string) {
	if callID == "" {
		return
	}

	event := CallEvent{CallID: callID, Kind: kind, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(event)
	if err != nil {
		p.client.logger.Error("encoding call event", zap.Error(err))
		return
	}

	if _, err := p.client.JetStream().Publish(ctx, subject(callID, kind), data); err != nil {
		p.client.logger.Warn("publishing call event failed",
			zap.String("call_id", callID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}
