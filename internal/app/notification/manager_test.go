package notification

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
)

type recordingStream struct {
	mu       sync.Mutex
	received []*remotev1.Notification
	block    chan struct{}
	err      error
}

func (s *recordingStream) Send(n *remotev1.Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, n)
	return s.err
}

func (s *recordingStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func TestManager_SubscribeUnsubscribe(t *testing.T) {
	m := NewManager()

	a := m.Subscribe(&recordingStream{})
	b := m.Subscribe(&recordingStream{})
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Unsubscribe(a)
	assert.Equal(t, 1, m.SubscriberCount())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_BroadcastStampsSequence(t *testing.T) {
	m := NewManager()
	s1 := &recordingStream{}
	s2 := &recordingStream{err: errors.New("gone")}
	m.Subscribe(s1)
	m.Subscribe(s2)

	m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})
	m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeAlbumClosed})

	assert.Equal(t, 2, s1.count())
	assert.Equal(t, 2, s2.count())
	assert.Equal(t, uint64(1), s1.received[0].SequenceNo)
	assert.Equal(t, uint64(2), s1.received[1].SequenceNo)
	assert.Equal(t, uint64(3), m.NextSequenceNo())
}

func TestManager_BroadcastDoesNotWaitForSlowSubscriber(t *testing.T) {
	m := NewManager()
	m.sendTimeout = 20 * time.Millisecond

	slow := &recordingStream{block: make(chan struct{})}
	fast := &recordingStream{}
	m.Subscribe(slow)
	m.Subscribe(fast)
	defer close(slow.block)

	start := time.Now()
	m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, fast.count())
}

func TestManager_Send(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe(s)

	assert.NoError(t, m.Send(id, &remotev1.Notification{Type: remotev1.NotificationTypeInitialState}))
	assert.NoError(t, m.Send("unknown", &remotev1.Notification{}))
	assert.Equal(t, 1, s.count())
}

func TestManager_DropsFailingSubscriber(t *testing.T) {
	m := NewManager()
	healthy := &recordingStream{}
	failing := &recordingStream{err: errors.New("broken pipe")}
	m.Subscribe(healthy)
	failingID := m.Subscribe(failing)

	for i := 1; i < MaxConsecutiveFailures; i++ {
		m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})
	}
	assert.Equal(t, 2, m.SubscriberCount())

	// A success resets the failure count.
	failing.mu.Lock()
	failing.err = nil
	failing.mu.Unlock()
	m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})

	failing.mu.Lock()
	failing.err = errors.New("broken pipe")
	failing.mu.Unlock()
	for i := 1; i < MaxConsecutiveFailures; i++ {
		m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})
	}
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeStateChanged})
	assert.Equal(t, 1, m.SubscriberCount())
	assert.NoError(t, m.Send(failingID, &remotev1.Notification{}))
	assert.Equal(t, 2*MaxConsecutiveFailures, healthy.count())
}
