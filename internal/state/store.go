// Package state broadcasts user record changes to registered subscribers.
// Mutation services publish the records they touch; view layers subscribe
// with an explicit unsubscribe lifecycle instead of an ambient global
// refresh hook.
package state

import (
	"sync"

	"github.com/mcalhoun/shelfie/internal/record"
)

const subscriberBuffer = 16

// Update carries one changed user record.
type Update struct {
	User record.UserRecord
}

// Store fans user record updates out to subscribers. A slow subscriber whose
// buffer is full misses updates rather than blocking publishers; subscribers
// refetch from storage when they need a full view.
type Store struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan Update
}

// NewStore creates an empty broadcast store.
func NewStore() *Store {
	return &Store{subscribers: make(map[int]chan Update)}
}

// Subscribe registers a new subscriber and returns its update channel with
// an unsubscribe function. Unsubscribe closes the channel and is safe to
// call more than once.
func (s *Store) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Update, subscriberBuffer)
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers a deep copy of user to every subscriber with buffer room.
func (s *Store) Publish(user record.UserRecord) {
	if s == nil {
		return
	}
	update := Update{User: user.Clone()}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

// SubscriberCount reports the number of registered subscribers.
func (s *Store) SubscriberCount() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
