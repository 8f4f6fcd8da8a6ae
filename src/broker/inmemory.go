package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

// InMemoryBroker is a channel-based implementation of Broker for a single process.
// Used when no Redpanda brokers are configured and in tests.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	offsets     map[string]int64
	closed      bool
	done        chan struct{}
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]chan Message),
		offsets:     make(map[string]int64),
		done:        make(chan struct{}),
	}
}

// Publish delivers the message to every current subscriber of the topic.
// A subscriber whose buffer is full misses the message; Publish never blocks on it.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    b.offsets[topic],
		Timestamp: time.Now().UnixMilli(),
	}
	b.offsets[topic]++

	dropped := 0
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("message dropped for %d slow subscriber(s) on topic %s", dropped, topic)
	}
	return nil
}

// Subscribe registers a new subscriber for the topic. The channel is closed when
// ctx is cancelled or the broker is closed.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	ch := make(chan Message, subscriberBuffer)
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, ch)
		case <-b.done:
		}
	}()

	return ch, nil
}

func (b *InMemoryBroker) unsubscribe(topic string, target chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, ch := range subs {
		if ch == target {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel. Further Publish and Subscribe calls fail.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)

	for topic, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
	return nil
}
