// Package domain maintains the friend and follow graphs and their pending
// request queues. Two-sided writes (request, accept, withdraw, follow) are
// applied through one transactional store update so a crash can never leave
// a one-sided friendship.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/mcalhoun/shelfie/internal/platform/errors"
	"github.com/mcalhoun/shelfie/internal/platform/id"
	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/services/notifications/render"
	"github.com/mcalhoun/shelfie/internal/state"
	"github.com/mcalhoun/shelfie/internal/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("social store is not configured")
	// ErrUserIDRequired indicates a user id is required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeUserEmptyID, "user id is required")
	// ErrUserNotFound indicates a referenced user record is missing.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "user record not found")
	// ErrSelfRequest indicates a friend request addressed to its own sender.
	ErrSelfRequest = apperrors.New(apperrors.CodeFriendRequestSelf, "cannot send a friend request to yourself")
	// ErrSelfFollow indicates a follow edge addressed to its own actor.
	ErrSelfFollow = apperrors.New(apperrors.CodeFollowSelf, "cannot follow yourself")
	// ErrRequestGone indicates the pending request was already accepted or
	// withdrawn by a concurrent actor. Callers should treat it as benign.
	ErrRequestGone = apperrors.New(apperrors.CodeConflict, "friend request is no longer pending")

	// errNoChange aborts a store update whose desired state already holds.
	errNoChange = errors.New("no change")
)

// Service orchestrates friend and follow graph mutations.
type Service struct {
	store   storage.UserStore
	updates *state.Store
	clock   func() time.Time
	newID   func() (string, error)
	tracer  trace.Tracer
}

// NewService constructs social graph use-cases. updates may be nil when no
// view layer subscribes.
func NewService(store storage.UserStore, updates *state.Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:   store,
		updates: updates,
		clock:   clock,
		newID:   newID,
		tracer:  otel.Tracer("shelfie/social"),
	}
}

// SendFriendRequest records a pending request on both sides: an inbound
// entry for the recipient and a mirrored outbound entry for the sender.
// An identical pending request, or an existing friendship, makes the call
// a no-op.
func (s *Service) SendFriendRequest(ctx context.Context, fromUID string, toUID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "social.send_friend_request")
	defer span.End()

	fromUID = strings.TrimSpace(fromUID)
	toUID = strings.TrimSpace(toUID)
	if fromUID == "" || toUID == "" {
		return ErrUserIDRequired
	}
	if fromUID == toUID {
		return ErrSelfRequest
	}

	var sender, recipient record.UserRecord
	err := s.store.UpdateUsers(ctx, []string{fromUID, toUID}, func(users map[string]*record.UserRecord) error {
		from := users[fromUID]
		to := users[toUID]
		if to.HasFriendRequestFrom(fromUID) || from.HasSentRequestTo(toUID) || to.HasFriend(fromUID) {
			return errNoChange
		}
		to.FriendRequests = append(to.FriendRequests, record.FriendRequest{
			FromUID:   from.UID,
			FromName:  from.DisplayName,
			FromEmail: from.Email,
		})
		from.SentRequests = append(from.SentRequests, record.SentRequest{
			ToUID:   to.UID,
			ToName:  to.DisplayName,
			ToEmail: to.Email,
		})
		sender = *from
		recipient = *to
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "send friend request", err)
	}
	s.publish(sender, recipient)
	return nil
}

// AcceptFriendRequest turns a pending inbound request into a symmetric
// friendship: both friends sets gain the counterpart and the pending entries
// disappear from both records, all in one store transaction. When the
// request is no longer pending the call fails with a benign conflict.
func (s *Service) AcceptFriendRequest(ctx context.Context, selfUID string, fromUID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "social.accept_friend_request")
	defer span.End()

	selfUID = strings.TrimSpace(selfUID)
	fromUID = strings.TrimSpace(fromUID)
	if selfUID == "" || fromUID == "" {
		return ErrUserIDRequired
	}
	if selfUID == fromUID {
		return ErrSelfRequest
	}

	var accepter, requester record.UserRecord
	err := s.store.UpdateUsers(ctx, []string{selfUID, fromUID}, func(users map[string]*record.UserRecord) error {
		self := users[selfUID]
		from := users[fromUID]
		if !self.RemoveFriendRequestFrom(fromUID) {
			return ErrRequestGone
		}
		from.RemoveSentRequestTo(selfUID)
		if !self.HasFriend(fromUID) {
			self.Friends = append(self.Friends, from.Ref())
		}
		if !from.HasFriend(selfUID) {
			from.Friends = append(from.Friends, self.Ref())
		}
		accepter = *self
		requester = *from
		return nil
	})
	if err != nil {
		return s.mapStoreError(span, "accept friend request", err)
	}
	s.publish(accepter, requester)
	return nil
}

// WithdrawFriendRequest removes a pending outbound request from both sides.
// A request that is no longer pending fails with a benign conflict.
func (s *Service) WithdrawFriendRequest(ctx context.Context, fromUID string, toUID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "social.withdraw_friend_request")
	defer span.End()

	fromUID = strings.TrimSpace(fromUID)
	toUID = strings.TrimSpace(toUID)
	if fromUID == "" || toUID == "" {
		return ErrUserIDRequired
	}

	var sender, recipient record.UserRecord
	err := s.store.UpdateUsers(ctx, []string{fromUID, toUID}, func(users map[string]*record.UserRecord) error {
		from := users[fromUID]
		to := users[toUID]
		if !from.RemoveSentRequestTo(toUID) {
			return ErrRequestGone
		}
		to.RemoveFriendRequestFrom(fromUID)
		sender = *from
		recipient = *to
		return nil
	})
	if err != nil {
		return s.mapStoreError(span, "withdraw friend request", err)
	}
	s.publish(sender, recipient)
	return nil
}

// Follow adds a one-directional follow edge and notifies the target.
// An existing edge makes the call a no-op and sends no second notification.
func (s *Service) Follow(ctx context.Context, actorUID string, targetUID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "social.follow")
	defer span.End()

	actorUID = strings.TrimSpace(actorUID)
	targetUID = strings.TrimSpace(targetUID)
	if actorUID == "" || targetUID == "" {
		return ErrUserIDRequired
	}
	if actorUID == targetUID {
		return ErrSelfFollow
	}

	notificationID, err := s.newID()
	if err != nil {
		return err
	}

	var actor, target record.UserRecord
	err = s.store.UpdateUsers(ctx, []string{actorUID, targetUID}, func(users map[string]*record.UserRecord) error {
		follower := users[actorUID]
		followed := users[targetUID]
		if follower.IsFollowing(targetUID) {
			return errNoChange
		}
		follower.Following = append(follower.Following, followed.Ref())
		followed.PushNotification(record.Notification{
			ID:        notificationID,
			Kind:      record.KindNewFollower,
			Actor:     follower.Ref(),
			Message:   render.Default(render.Input{Kind: record.KindNewFollower, ActorName: follower.DisplayName}),
			Timestamp: s.nowUTC(),
		})
		actor = *follower
		target = *followed
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "follow", err)
	}
	s.publish(actor, target)
	return nil
}

// Unfollow removes the follow edge from the actor's record. A missing edge
// is a no-op. The target keeps any earlier new-follower notification.
func (s *Service) Unfollow(ctx context.Context, actorUID string, targetUID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "social.unfollow")
	defer span.End()

	actorUID = strings.TrimSpace(actorUID)
	targetUID = strings.TrimSpace(targetUID)
	if actorUID == "" || targetUID == "" {
		return ErrUserIDRequired
	}

	actor, err := s.store.UpdateUser(ctx, actorUID, func(user *record.UserRecord) error {
		if !user.RemoveFollowing(targetUID) {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "unfollow", err)
	}
	s.publish(actor)
	return nil
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Service) publish(users ...record.UserRecord) {
	if s.updates == nil {
		return
	}
	for _, user := range users {
		s.updates.Publish(user)
	}
}

func (s *Service) mapStoreError(span trace.Span, op string, err error) error {
	mapped := err
	var coded *apperrors.Error
	switch {
	case errors.As(err, &coded):
		// Already carries a domain code.
	case errors.Is(err, storage.ErrNotFound):
		mapped = ErrUserNotFound
	default:
		mapped = apperrors.Wrap(apperrors.CodeRemoteFailure, op, err)
	}
	span.RecordError(mapped)
	return mapped
}
