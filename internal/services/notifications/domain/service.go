// Package domain presents the unified notification inbox: pending friend
// requests synthesized at read time merged with stored event notifications,
// newest first. It also produces the request-style notifications (book,
// borrow, review, recommendation, update) other users send directly.
package domain

import (
	"context"
	"errors"
	"sort"
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
	ErrStoreNotConfigured = errors.New("notification store is not configured")
	// ErrUserIDRequired indicates a user id is required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeUserEmptyID, "user id is required")
	// ErrUserNotFound indicates the referenced user record is missing.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "user record not found")
	// ErrInvalidRequestKind indicates a kind outside the request notification set.
	ErrInvalidRequestKind = apperrors.New(apperrors.CodeNotificationBadKind, "invalid request notification kind")
	// ErrSelfRequest indicates a request notification addressed to its sender.
	ErrSelfRequest = apperrors.New(apperrors.CodeNotificationBadActor, "cannot send a request to yourself")
)

// syntheticIDPrefix marks inbox entries synthesized from pending friend
// requests. They are never stored and their read state is UI-local.
const syntheticIDPrefix = "friend-request-"

var requestKinds = map[record.NotificationKind]bool{
	record.KindBookUpdate:            true,
	record.KindReviewRequest:         true,
	record.KindBorrowRequest:         true,
	record.KindBookRequest:           true,
	record.KindRecommendationRequest: true,
}

// RequestInput describes one user-to-user request notification.
type RequestInput struct {
	FromUID   string
	FromName  string
	FromEmail string
	ToUID     string
	Kind      record.NotificationKind
	Book      *record.Book
}

// Service orchestrates inbox reads and request notification writes.
type Service struct {
	store   storage.UserStore
	updates *state.Store
	clock   func() time.Time
	newID   func() (string, error)
	tracer  trace.Tracer
}

// NewService constructs notification inbox use-cases. updates may be nil
// when no view layer subscribes.
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
		tracer:  otel.Tracer("shelfie/notifications"),
	}
}

// List returns a point-in-time snapshot of the merged inbox, newest first.
// Pending friend requests appear as unread synthetic entries timestamped at
// read time; callers re-invoke List to refresh.
func (s *Service) List(ctx context.Context, uid string) ([]record.Notification, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "notifications.list")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrUserIDRequired
	}

	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, s.mapStoreError(span, "list notifications", err)
	}

	now := s.nowUTC()
	merged := make([]record.Notification, 0, len(user.FriendRequests)+len(user.Notifications))
	for _, request := range user.FriendRequests {
		merged = append(merged, record.Notification{
			ID:   syntheticIDPrefix + request.FromUID,
			Kind: record.KindFriendRequest,
			Actor: record.Person{
				UID:   request.FromUID,
				Name:  request.FromName,
				Email: request.FromEmail,
			},
			Message:   render.Default(render.Input{Kind: record.KindFriendRequest, ActorName: request.FromName}),
			Timestamp: now,
		})
	}
	merged = append(merged, user.Notifications...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged, nil
}

// MarkAllRead marks every stored notification as read. Synthetic friend
// request entries are recomputed fresh on the next List, so their read state
// is not persisted.
func (s *Service) MarkAllRead(ctx context.Context, uid string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "notifications.mark_all_read")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrUserIDRequired
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		for i := range user.Notifications {
			user.Notifications[i].Read = true
		}
		return nil
	})
	if err != nil {
		return s.mapStoreError(span, "mark all read", err)
	}
	s.publish(user)
	return nil
}

// SendRequest appends one request notification to the recipient's bounded
// inbox and returns the stored entry.
func (s *Service) SendRequest(ctx context.Context, input RequestInput) (record.Notification, error) {
	if s == nil || s.store == nil {
		return record.Notification{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "notifications.send_request")
	defer span.End()

	fromUID := strings.TrimSpace(input.FromUID)
	toUID := strings.TrimSpace(input.ToUID)
	if fromUID == "" || toUID == "" {
		return record.Notification{}, ErrUserIDRequired
	}
	if fromUID == toUID {
		return record.Notification{}, ErrSelfRequest
	}
	if !requestKinds[input.Kind] {
		return record.Notification{}, ErrInvalidRequestKind
	}

	notificationID, err := s.newID()
	if err != nil {
		return record.Notification{}, err
	}
	bookTitle := ""
	if input.Book != nil {
		bookTitle = input.Book.Title
	}
	notification := record.Notification{
		ID:   notificationID,
		Kind: input.Kind,
		Actor: record.Person{
			UID:   fromUID,
			Name:  strings.TrimSpace(input.FromName),
			Email: strings.TrimSpace(input.FromEmail),
		},
		Message:   render.Default(render.Input{Kind: input.Kind, ActorName: strings.TrimSpace(input.FromName), BookTitle: bookTitle}),
		Timestamp: s.nowUTC(),
		Book:      input.Book,
	}

	user, err := s.store.UpdateUser(ctx, toUID, func(user *record.UserRecord) error {
		user.PushNotification(notification)
		return nil
	})
	if err != nil {
		return record.Notification{}, s.mapStoreError(span, "send request", err)
	}
	s.publish(user)
	return notification, nil
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
