package state

import (
	"testing"

	"github.com/mcalhoun/shelfie/internal/record"
)

func TestSubscribeReceivesPublishedUpdates(t *testing.T) {
	t.Parallel()

	store := NewStore()
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	store.Publish(record.UserRecord{UID: "user-1", DisplayName: "Ada"})

	update := <-updates
	if update.User.UID != "user-1" {
		t.Fatalf("expected update for user-1, got %q", update.User.UID)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	store := NewStore()
	updates, unsubscribe := store.Subscribe()
	unsubscribe()

	if store.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", store.SubscriberCount())
	}

	store.Publish(record.UserRecord{UID: "user-1"})
	if _, open := <-updates; open {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// A second unsubscribe is a no-op.
	unsubscribe()
}

func TestPublishCopiesRecord(t *testing.T) {
	t.Parallel()

	store := NewStore()
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	user := record.UserRecord{UID: "user-1", Friends: []record.Person{{UID: "user-2"}}}
	store.Publish(user)
	user.Friends[0].UID = "mutated"

	update := <-updates
	if update.User.Friends[0].UID != "user-2" {
		t.Fatal("expected published record to be isolated from later mutation")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, unsubscribe := store.Subscribe()
	defer unsubscribe()

	// More publishes than the subscriber buffer holds; none may block.
	for i := 0; i < subscriberBuffer*2; i++ {
		store.Publish(record.UserRecord{UID: "user-1"})
	}
}
