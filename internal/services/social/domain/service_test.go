package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/mcalhoun/shelfie/internal/platform/errors"
	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/state"
	"github.com/mcalhoun/shelfie/internal/testkit/userfakes"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	next := 0
	return func() (string, error) {
		if next >= len(ids) {
			return "", errors.New("id generator exhausted")
		}
		id := ids[next]
		next++
		return id, nil
	}
}

func twoUsers() (*userfakes.UserStore, record.UserRecord, record.UserRecord) {
	ada := record.UserRecord{UID: "user-ada", DisplayName: "Ada", Email: "ada@example.com"}
	brendan := record.UserRecord{UID: "user-brendan", DisplayName: "Brendan", Email: "brendan@example.com"}
	return userfakes.NewUserStore(ada, brendan), ada, brendan
}

func TestSendFriendRequestWritesBothSides(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, fixedClock(time.Now()), sequentialIDGenerator("n-1"))

	if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}

	to := store.Users[brendan.UID]
	if !to.HasFriendRequestFrom(ada.UID) {
		t.Fatal("expected inbound request on recipient")
	}
	if to.FriendRequests[0].FromName != "Ada" || to.FriendRequests[0].FromEmail != "ada@example.com" {
		t.Fatalf("expected denormalized sender details, got %+v", to.FriendRequests[0])
	}
	from := store.Users[ada.UID]
	if !from.HasSentRequestTo(brendan.UID) {
		t.Fatal("expected mirrored outbound request on sender")
	}
}

func TestSendFriendRequestIsIdempotent(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, nil)

	for i := 0; i < 3; i++ {
		if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if got := len(store.Users[brendan.UID].FriendRequests); got != 1 {
		t.Fatalf("expected one pending request, got %d", got)
	}
	if got := len(store.Users[ada.UID].SentRequests); got != 1 {
		t.Fatalf("expected one mirrored request, got %d", got)
	}
}

func TestSendFriendRequestRejectsSelfAndMissingUser(t *testing.T) {
	t.Parallel()

	store, ada, _ := twoUsers()
	svc := NewService(store, nil, nil, nil)

	if err := svc.SendFriendRequest(context.Background(), ada.UID, ada.UID); !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("expected self-request error, got %v", err)
	}
	err := svc.SendFriendRequest(context.Background(), ada.UID, "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND code, got %s", apperrors.CodeOf(err))
	}
}

func TestAcceptFriendRequestCreatesSymmetricEdge(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, nil)

	if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}
	if err := svc.AcceptFriendRequest(context.Background(), brendan.UID, ada.UID); err != nil {
		t.Fatalf("accept friend request: %v", err)
	}

	accepter := store.Users[brendan.UID]
	requester := store.Users[ada.UID]
	if !accepter.HasFriend(ada.UID) || !requester.HasFriend(brendan.UID) {
		t.Fatal("expected friendship edge in both records")
	}
	if len(accepter.FriendRequests) != 0 {
		t.Fatalf("expected pending request cleared, got %+v", accepter.FriendRequests)
	}
	if len(requester.SentRequests) != 0 {
		t.Fatalf("expected mirrored request cleared, got %+v", requester.SentRequests)
	}
}

func TestAcceptFriendRequestConflictWhenAlreadyAccepted(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, nil)

	if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}
	if err := svc.AcceptFriendRequest(context.Background(), brendan.UID, ada.UID); err != nil {
		t.Fatalf("accept friend request: %v", err)
	}

	err := svc.AcceptFriendRequest(context.Background(), brendan.UID, ada.UID)
	if !errors.Is(err, ErrRequestGone) {
		t.Fatalf("expected benign conflict, got %v", err)
	}
	if !apperrors.CodeOf(err).Benign() {
		t.Fatal("expected conflict code to be benign")
	}
	// The existing friendship is untouched.
	accepterAfter := store.Users[brendan.UID]
	if !accepterAfter.HasFriend(ada.UID) {
		t.Fatal("expected friendship to survive the replayed accept")
	}
}

func TestWithdrawFriendRequestClearsBothSides(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, nil)

	if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}
	if err := svc.WithdrawFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("withdraw friend request: %v", err)
	}
	if len(store.Users[brendan.UID].FriendRequests) != 0 {
		t.Fatal("expected inbound request removed")
	}
	if len(store.Users[ada.UID].SentRequests) != 0 {
		t.Fatal("expected outbound request removed")
	}

	err := svc.WithdrawFriendRequest(context.Background(), ada.UID, brendan.UID)
	if !errors.Is(err, ErrRequestGone) {
		t.Fatalf("expected benign conflict on replay, got %v", err)
	}
}

func TestFollowAppendsEdgeAndNotifiesTarget(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, fixedClock(now), sequentialIDGenerator("notif-1"))

	if err := svc.Follow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	actor := store.Users[ada.UID]
	if !actor.IsFollowing(brendan.UID) {
		t.Fatal("expected follow edge on actor")
	}
	target := store.Users[brendan.UID]
	if len(target.Notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(target.Notifications))
	}
	n := target.Notifications[0]
	if n.Kind != record.KindNewFollower {
		t.Fatalf("expected new_follower, got %s", n.Kind)
	}
	if n.ID != "notif-1" || n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Message != "Ada started following you." {
		t.Fatalf("unexpected message: %q", n.Message)
	}
	if !n.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %s, got %s", now, n.Timestamp)
	}
}

func TestFollowTwiceIsNoOpWithoutSecondNotification(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, sequentialIDGenerator("notif-1", "notif-2"))

	if err := svc.Follow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("first follow: %v", err)
	}
	if err := svc.Follow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("second follow: %v", err)
	}
	if got := len(store.Users[ada.UID].Following); got != 1 {
		t.Fatalf("expected one follow edge, got %d", got)
	}
	if got := len(store.Users[brendan.UID].Notifications); got != 1 {
		t.Fatalf("expected one notification, got %d", got)
	}
}

func TestUnfollowRemovesEdgeAndKeepsNotification(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	svc := NewService(store, nil, nil, nil)

	if err := svc.Follow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Unfollow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	actorAfter := store.Users[ada.UID]
	if actorAfter.IsFollowing(brendan.UID) {
		t.Fatal("expected follow edge removed")
	}
	if got := len(store.Users[brendan.UID].Notifications); got != 1 {
		t.Fatalf("expected follower notification kept, got %d", got)
	}

	// Unfollowing an absent edge is a no-op.
	if err := svc.Unfollow(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("replayed unfollow: %v", err)
	}
}

func TestMutationsPublishUpdatedRecords(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	updates := state.NewStore()
	svc := NewService(store, updates, nil, nil)

	ch, unsubscribe := updates.Subscribe()
	defer unsubscribe()

	if err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		update := <-ch
		seen[update.User.UID] = true
	}
	if !seen[ada.UID] || !seen[brendan.UID] {
		t.Fatalf("expected updates for both records, got %v", seen)
	}
}

func TestRemoteFailureIsCoded(t *testing.T) {
	t.Parallel()

	store, ada, brendan := twoUsers()
	store.FailWith = errors.New("connection reset")
	svc := NewService(store, nil, nil, nil)

	err := svc.SendFriendRequest(context.Background(), ada.UID, brendan.UID)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.CodeOf(err) != apperrors.CodeRemoteFailure {
		t.Fatalf("expected REMOTE_FAILURE code, got %s", apperrors.CodeOf(err))
	}
	if !errors.Is(err, store.FailWith) {
		t.Fatal("expected underlying cause preserved in chain")
	}
}
