package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"devmcp-agent/src/logger"
)

const (
	clientID = "devmcp"
	// deliveryTimeout bounds how long one event may wait for the cluster.
	deliveryTimeout = 10 * time.Second
	consumerBuffer  = 100
)

// RedpandaBroker publishes and tails build events on a Kafka-compatible cluster.
//
// Publishing is synchronous per event so a build's events keep their order
// under the build ID key. Consumers start at the end of the topic: followers only
// see builds that run after they subscribe.
type RedpandaBroker struct {
	seeds    []string
	producer *kgo.Client
	logger   logger.Logger

	mu        sync.Mutex
	closed    bool
	consumers map[string]*kgo.Client // "topic:group"
}

// NewRedpandaBroker creates the producer client. No connection is made until
// the first Publish or Subscribe.
func NewRedpandaBroker(seeds []string, log logger.Logger) (*RedpandaBroker, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}

	producer, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.ClientID(clientID),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &RedpandaBroker{
		seeds:     seeds,
		producer:  producer,
		logger:    log,
		consumers: make(map[string]*kgo.Client),
	}, nil
}

func (b *RedpandaBroker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Publish produces one record and waits for the cluster to acknowledge it.
func (b *RedpandaBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	if b.isClosed() {
		return ErrClosed
	}

	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	if err := b.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins groupID on topic. One subscription per topic and group.
func (b *RedpandaBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	key := topic + ":" + groupID
	if _, ok := b.consumers[key]; ok {
		return nil, fmt.Errorf("already subscribed to %s as group %s", topic, groupID)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(b.seeds...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.consumers[key] = consumer

	out := make(chan Message, consumerBuffer)
	go b.tail(ctx, consumer, out)
	return out, nil
}

// tail polls consumer until ctx is done or the client is closed.
func (b *RedpandaBroker) tail(ctx context.Context, consumer *kgo.Client, out chan<- Message) {
	defer close(out)

	for ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			b.logger.Error("[RedpandaBroker] Fetch error on %s/%d: %v", topic, partition, err)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			msg := Message{
				Topic:     record.Topic,
				Key:       string(record.Key),
				Value:     record.Value,
				Offset:    record.Offset,
				Partition: record.Partition,
				Timestamp: record.Timestamp.UnixMilli(),
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close closes every consumer, then the producer. Pending tails end.
func (b *RedpandaBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	consumers := b.consumers
	b.consumers = nil
	b.mu.Unlock()

	for _, c := range consumers {
		c.Close()
	}
	b.producer.Close()
	return nil
}
