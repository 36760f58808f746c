package mq

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

const memoryBuffer = 64

var errMemoryClosed = errors.New("memory broker closed")

// Memory delivers messages to subscribers in the same process. Messages
// published before anyone subscribes are dropped.
type Memory struct {
	mu          sync.RWMutex
	subscribers map[string][]*memorySubscriber
	closed      bool
}

// memorySubscriber is never closed on the send side; done is closed once
// the subscriber leaves or the broker closes, which releases publishers
// blocked on a full buffer.
type memorySubscriber struct {
	messages chan Message
	done     chan struct{}
	once     sync.Once
}

func (s *memorySubscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func NewMemory() *Memory {
	return &Memory{subscribers: map[string][]*memorySubscriber{}}
}

func (m *Memory) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if channel == "" {
		return "", errors.New("memory channel is required")
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return "", errMemoryClosed
	}
	subs := append([]*memorySubscriber(nil), m.subscribers[channel]...)
	m.mu.RUnlock()

	msg := Message{ID: uuid.NewString(), Data: data, Attributes: attrs}
	for _, sub := range subs {
		select {
		case sub.messages <- msg:
		case <-sub.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return msg.ID, nil
}

func (m *Memory) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if channel == "" {
		return errors.New("memory channel is required")
	}
	sub := &memorySubscriber{
		messages: make(chan Message, memoryBuffer),
		done:     make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errMemoryClosed
	}
	m.subscribers[channel] = append(m.subscribers[channel], sub)
	m.mu.Unlock()

	defer m.unsubscribe(channel, sub)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
			return errMemoryClosed
		case msg := <-sub.messages:
			// No redelivery: handler errors are dropped.
			_ = handler(ctx, msg)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

func (m *Memory) unsubscribe(channel string, sub *memorySubscriber) {
	sub.stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subscribers[channel]
	for i, s := range subs {
		if s == sub {
			m.subscribers[channel] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for channel, subs := range m.subscribers {
		for _, sub := range subs {
			sub.stop()
		}
		delete(m.subscribers, channel)
	}
	return nil
}
