// Package broker carries devmcp build events between processes.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("broker is closed")

// Broker publishes and consumes keyed messages on topics.
// Implementations: InMemoryBroker (single process) and RedpandaBroker (Kafka API).
type Broker interface {
	// Publish sends value to topic. key keeps the messages of one build in order
	// on a partitioned broker.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe streams messages from topic until ctx is done or the broker closes.
	// groupID names the consumer group where the implementation has one.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close releases connections and ends every subscription.
	Close() error
}

// Message is a consumed message.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64 // unix millis
}
