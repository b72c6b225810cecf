// Package domain toggles heart reactions on stories and shelves and
// notifies the item owner when a heart is added. Removing a heart keeps any
// earlier like notification: the inbox is an activity log, not a live view
// of the reaction set.
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

// ItemKind identifies the reaction target class.
type ItemKind string

const (
	ItemStory ItemKind = "story"
	ItemShelf ItemKind = "shelf"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("reaction store is not configured")
	// ErrUserIDRequired indicates actor and owner ids are required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeUserEmptyID, "user id is required")
	// ErrOwnerNotFound indicates the item owner's record is missing.
	ErrOwnerNotFound = apperrors.New(apperrors.CodeNotFound, "owner record not found")
	// ErrItemNotFound indicates the story or shelf is missing from the owner's record.
	ErrItemNotFound = apperrors.New(apperrors.CodeReactionItemMissing, "reaction target not found")
	// ErrUnknownItemKind indicates an item kind outside story/shelf.
	ErrUnknownItemKind = apperrors.New(apperrors.CodeReactionUnknownItemKind, "unknown reaction item kind")
)

// ToggleInput identifies one heart toggle.
type ToggleInput struct {
	ActorUID   string
	ActorName  string
	ActorEmail string
	OwnerUID   string
	Kind       ItemKind
	ItemID     string
}

// Service orchestrates heart reaction toggles.
type Service struct {
	store   storage.UserStore
	updates *state.Store
	clock   func() time.Time
	newID   func() (string, error)
	tracer  trace.Tracer
}

// NewService constructs reaction use-cases. updates may be nil when no view
// layer subscribes.
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
		tracer:  otel.Tracer("shelfie/reactions"),
	}
}

// ToggleHeart flips the actor's heart on the identified item and reports
// whether the flip was an addition. An addition by anyone but the owner
// appends a like notification to the owner's bounded inbox; a removal never
// revokes one.
func (s *Service) ToggleHeart(ctx context.Context, input ToggleInput) (added bool, err error) {
	if s == nil || s.store == nil {
		return false, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "reactions.toggle_heart")
	defer span.End()

	actorUID := strings.TrimSpace(input.ActorUID)
	ownerUID := strings.TrimSpace(input.OwnerUID)
	itemID := strings.TrimSpace(input.ItemID)
	if actorUID == "" || ownerUID == "" || itemID == "" {
		return false, ErrUserIDRequired
	}
	if input.Kind != ItemStory && input.Kind != ItemShelf {
		return false, ErrUnknownItemKind
	}

	notificationID, err := s.newID()
	if err != nil {
		return false, err
	}

	owner, err := s.store.UpdateUser(ctx, ownerUID, func(user *record.UserRecord) error {
		switch input.Kind {
		case ItemStory:
			story := user.StoryByID(itemID)
			if story == nil {
				return ErrItemNotFound
			}
			story.Reactions.Hearts, added = record.ToggleHeart(story.Reactions.Hearts, actorUID)
		case ItemShelf:
			shelf := user.ShelfByID(itemID)
			if shelf == nil {
				return ErrItemNotFound
			}
			shelf.Reactions.Hearts, added = record.ToggleHeart(shelf.Reactions.Hearts, actorUID)
		}
		if added && actorUID != ownerUID {
			user.PushNotification(s.likeNotification(notificationID, input, itemID))
		}
		return nil
	})
	if err != nil {
		return false, s.mapStoreError(span, "toggle heart", err)
	}
	s.publish(owner)
	return added, nil
}

func (s *Service) likeNotification(notificationID string, input ToggleInput, itemID string) record.Notification {
	kind := record.KindStoryLike
	storyID, shelfID := itemID, ""
	if input.Kind == ItemShelf {
		kind = record.KindShelfLike
		storyID, shelfID = "", itemID
	}
	return record.Notification{
		ID:   notificationID,
		Kind: kind,
		Actor: record.Person{
			UID:   strings.TrimSpace(input.ActorUID),
			Name:  strings.TrimSpace(input.ActorName),
			Email: strings.TrimSpace(input.ActorEmail),
		},
		Message:   render.Default(render.Input{Kind: kind, ActorName: strings.TrimSpace(input.ActorName)}),
		Timestamp: s.nowUTC(),
		StoryID:   storyID,
		ShelfID:   shelfID,
	}
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
		mapped = ErrOwnerNotFound
	default:
		mapped = apperrors.Wrap(apperrors.CodeRemoteFailure, op, err)
	}
	span.RecordError(mapped)
	return mapped
}
