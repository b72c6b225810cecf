package seed

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/testkit/userfakes"
)

func TestSeedStorePopulatesDemoData(t *testing.T) {
	t.Parallel()

	store := userfakes.NewUserStore()
	var out bytes.Buffer

	if err := seedStore(context.Background(), store, Config{Verbose: true}, &out); err != nil {
		t.Fatalf("seedStore: %v", err)
	}

	if len(store.Users) != len(demoUsers) {
		t.Fatalf("got %d users, want %d", len(store.Users), len(demoUsers))
	}

	ada := store.Users["demo-ada"]
	if len(ada.Books.Read)+len(ada.Books.WantToRead) != len(demoBooks) {
		t.Fatalf("ada owns %d books, want %d", len(ada.Books.Read)+len(ada.Books.WantToRead), len(demoBooks))
	}
	if len(ada.Shelves) != 1 || len(ada.Shelves[0].Books) != 1 {
		t.Fatalf("shelves = %+v, want one shelf with one book", ada.Shelves)
	}
	if len(ada.Stories) != 1 {
		t.Fatalf("stories = %+v, want one story", ada.Stories)
	}
	if !record.HasHeart(ada.Stories[0].Reactions.Hearts, "demo-mary") {
		t.Fatal("mary must have hearted ada's story")
	}
	mary := store.Users["demo-mary"]
	if !ada.HasFriend("demo-mary") || !mary.HasFriend("demo-ada") {
		t.Fatal("ada and mary must be symmetric friends")
	}

	ursula := store.Users["demo-ursula"]
	if !ursula.IsFollowing("demo-ada") {
		t.Fatal("ursula must follow ada")
	}
}

func TestSeedStoreIsRepeatable(t *testing.T) {
	t.Parallel()

	store := userfakes.NewUserStore()
	ctx := context.Background()

	if err := seedStore(ctx, store, Config{}, io.Discard); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstAda := store.Users["demo-ada"]
	first := firstAda.Clone()

	if err := seedStore(ctx, store, Config{}, io.Discard); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := store.Users["demo-ada"]

	if len(second.Stories) != len(first.Stories) {
		t.Fatalf("stories grew from %d to %d on replay", len(first.Stories), len(second.Stories))
	}
	if len(second.Shelves) != len(first.Shelves) {
		t.Fatalf("shelves grew from %d to %d on replay", len(first.Shelves), len(second.Shelves))
	}
	if len(second.Friends) != len(first.Friends) {
		t.Fatalf("friends grew from %d to %d on replay", len(first.Friends), len(second.Friends))
	}
}
