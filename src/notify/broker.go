package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devmcp-agent/src/broker"
	"devmcp-agent/src/contracts"
)

// BrokerObserver publishes build events as contracts.BuildEvent JSON, keyed by build ID.
type BrokerObserver struct {
	broker broker.Broker
	topic  string
	now    func() time.Time
}

// NewBrokerObserver creates an observer publishing to topic.
func NewBrokerObserver(b broker.Broker, topic string) *BrokerObserver {
	return &BrokerObserver{broker: b, topic: topic, now: time.Now}
}

func (o *BrokerObserver) Progress(ctx context.Context, p Progress) error {
	return o.publish(ctx, contracts.BuildEvent{
		BuildID:  p.BuildID,
		Type:     contracts.EventProgress,
		Progress: p.Fraction,
		Total:    p.Total,
		Message:  p.Label,
	})
}

func (o *BrokerObserver) Log(ctx context.Context, entry LogEntry) error {
	return o.publish(ctx, contracts.BuildEvent{
		BuildID: entry.BuildID,
		Type:    contracts.EventLog,
		Message: entry.Message,
	})
}

func (o *BrokerObserver) Completed(ctx context.Context, c Completion) error {
	msg := "build failed to run"
	if c.ExitCode != nil {
		msg = fmt.Sprintf("exit code %d", *c.ExitCode)
	}
	return o.publish(ctx, contracts.BuildEvent{
		BuildID:  c.BuildID,
		Type:     contracts.EventCompleted,
		Message:  msg,
		ExitCode: c.ExitCode,
		Error:    c.Error,
		Result:   c.Result,
	})
}

func (o *BrokerObserver) publish(ctx context.Context, ev contracts.BuildEvent) error {
	ev.Timestamp = o.now().UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}
	if err := o.broker.Publish(ctx, o.topic, ev.BuildID, data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}
