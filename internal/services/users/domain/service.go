// Package domain manages user record lifecycle: registration, profile
// updates, and lookups.
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
	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/state"
	"github.com/mcalhoun/shelfie/internal/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("users store is not configured")
	// ErrUserIDRequired indicates a user id is required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeUserEmptyID, "user id is required")
	// ErrDisplayNameRequired indicates an empty display name.
	ErrDisplayNameRequired = apperrors.New(apperrors.CodeUserEmptyDisplayName, "display name is required")
	// ErrUserAlreadyExists indicates a registration replay for an existing uid.
	ErrUserAlreadyExists = apperrors.New(apperrors.CodeUserAlreadyExists, "user already registered")
	// ErrUserNotFound indicates the user record is missing.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "user record not found")
)

// RegisterInput describes a new user record.
type RegisterInput struct {
	UID         string
	DisplayName string
	Email       string
	ImageURL    string
}

// ProfileInput carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileInput struct {
	DisplayName *string
	Bio         *string
	ImageURL    *string
}

// Service orchestrates user record lifecycle use-cases.
type Service struct {
	store   storage.UserStore
	updates *state.Store
	clock   func() time.Time
	tracer  trace.Tracer
}

// NewService constructs user lifecycle use-cases. updates may be nil when no
// view layer subscribes.
func NewService(store storage.UserStore, updates *state.Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:   store,
		updates: updates,
		clock:   clock,
		tracer:  otel.Tracer("shelfie/users"),
	}
}

// Register creates the record for a newly authenticated user. All lists start
// empty so later mutations never have to distinguish nil from empty.
func (s *Service) Register(ctx context.Context, input RegisterInput) (record.UserRecord, error) {
	if s == nil || s.store == nil {
		return record.UserRecord{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "users.register")
	defer span.End()

	uid := strings.TrimSpace(input.UID)
	if uid == "" {
		return record.UserRecord{}, ErrUserIDRequired
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return record.UserRecord{}, ErrDisplayNameRequired
	}

	user := record.UserRecord{
		UID:            uid,
		DisplayName:    displayName,
		Email:          strings.TrimSpace(input.Email),
		ImageURL:       strings.TrimSpace(input.ImageURL),
		Books:          record.BookLists{Read: []record.Book{}, WantToRead: []record.Book{}},
		Shelves:        []record.Shelf{},
		Stories:        []record.Story{},
		Friends:        []record.Person{},
		Following:      []record.Person{},
		FriendRequests: []record.FriendRequest{},
		SentRequests:   []record.SentRequest{},
		Notifications:  []record.Notification{},
		CreatedAt:      s.nowUTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return record.UserRecord{}, ErrUserAlreadyExists
		}
		return record.UserRecord{}, s.mapStoreError(span, "register user", err)
	}
	s.publish(user)
	return user, nil
}

// UpdateProfile applies the set fields of input to the user's profile.
// Leaving every field nil is a no-op that still verifies the user exists.
func (s *Service) UpdateProfile(ctx context.Context, uid string, input ProfileInput) (record.UserRecord, error) {
	if s == nil || s.store == nil {
		return record.UserRecord{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "users.update_profile")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return record.UserRecord{}, ErrUserIDRequired
	}
	if input.DisplayName != nil && strings.TrimSpace(*input.DisplayName) == "" {
		return record.UserRecord{}, ErrDisplayNameRequired
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		if input.DisplayName != nil {
			user.DisplayName = strings.TrimSpace(*input.DisplayName)
		}
		if input.Bio != nil {
			user.Bio = strings.TrimSpace(*input.Bio)
		}
		if input.ImageURL != nil {
			user.ImageURL = strings.TrimSpace(*input.ImageURL)
		}
		user.EnsureCreatedAt(s.nowUTC())
		return nil
	})
	if err != nil {
		return record.UserRecord{}, s.mapStoreError(span, "update profile", err)
	}
	s.publish(user)
	return user, nil
}

// Get returns one user record.
func (s *Service) Get(ctx context.Context, uid string) (record.UserRecord, error) {
	if s == nil || s.store == nil {
		return record.UserRecord{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "users.get")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return record.UserRecord{}, ErrUserIDRequired
	}
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return record.UserRecord{}, s.mapStoreError(span, "get user", err)
	}
	return user, nil
}

// List returns every user record ordered by display name for stable
// presentation.
func (s *Service) List(ctx context.Context) ([]record.UserRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "users.list")
	defer span.End()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, s.mapStoreError(span, "list users", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].UID < users[j].UID
	})
	return users, nil
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
