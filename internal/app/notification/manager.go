// Package notification provides the notification manager for broadcasting
// player state changes to remote subscribers.
package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
)

const (
	// DefaultSendTimeout bounds a single subscriber send during Broadcast.
	DefaultSendTimeout = 500 * time.Millisecond

	// MaxConsecutiveFailures is the number of failed or timed out sends in a
	// row after which a subscriber is dropped.
	MaxConsecutiveFailures = 3
)

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*remotev1.Notification) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream

	// sendMu serializes writes to the stream; a send that timed out may
	// still be in flight when the next broadcast starts.
	sendMu   sync.Mutex
	failures atomic.Int32
}

func (s *subscription) send(n *remotev1.Notification) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.stream.Send(n)
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   DefaultSendTimeout,
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:     id,
		stream: stream,
	}
	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", id, len(m.subscriptions))
	return id
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
	zlog.Debug().Msgf("notification: unsubscribed: id=%s total=%d", subscriptionID, len(m.subscriptions))
}

// Broadcast stamps the notification with the next sequence number and sends
// it to all subscribers. Each send runs in its own goroutine with a timeout so
// that a slow subscriber cannot stall the others.
func (m *Manager) Broadcast(notification *remotev1.Notification) {
	notification.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.send(notification)
			}()

			select {
			case err := <-done:
				if err == nil {
					s.failures.Store(0)
					return
				}
				zlog.Debug().Msgf("notification: send failed: id=%s error=%v", s.id, err)
			case <-ctx.Done():
				zlog.Debug().Msgf("notification: send timed out: id=%s seq=%d", s.id, notification.SequenceNo)
			}
			m.recordFailure(s)
		}(sub)
	}

	// Wait for all sends to complete or timeout
	wg.Wait()
}

// recordFailure counts a failed send and drops the subscriber once it has
// failed MaxConsecutiveFailures times in a row.
func (m *Manager) recordFailure(s *subscription) {
	if s.failures.Add(1) < MaxConsecutiveFailures {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.subscriptions[s.id]; ok && cur == s {
		delete(m.subscriptions, s.id)
		zlog.Info().Msgf("notification: dropped unresponsive subscriber: id=%s total=%d", s.id, len(m.subscriptions))
	}
}

// Send sends a notification to a specific subscriber.
func (m *Manager) Send(subscriptionID string, notification *remotev1.Notification) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil
	}

	return sub.send(notification)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
