// Package render produces human-readable notification copy. Stored
// notifications carry the English rendering; UI layers re-render localized
// copy from the notification kind and actor.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mcalhoun/shelfie/internal/record"
)

const (
	defaultGenericBody = "You have a new notification."
	defaultBookTitle   = "a book"
)

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Input is one render request for a notification event.
type Input struct {
	Kind      record.NotificationKind
	ActorName string
	BookTitle string
}

// NewPrinter returns a message printer for the requested locale, falling
// back to English for unknown tags.
func NewPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Message returns localized copy for one notification event.
func Message(loc Localizer, input Input) string {
	actor := input.ActorName
	if actor == "" {
		actor = loc.Sprintf("notification.actor.someone")
	}
	book := input.BookTitle
	if book == "" {
		book = loc.Sprintf("notification.book.generic")
	}

	switch input.Kind {
	case record.KindFriendRequest:
		return loc.Sprintf("notification.friend_request.body", actor)
	case record.KindStoryLike:
		return loc.Sprintf("notification.story_like.body", actor)
	case record.KindShelfLike:
		return loc.Sprintf("notification.shelf_like.body", actor)
	case record.KindNewFollower:
		return loc.Sprintf("notification.new_follower.body", actor)
	case record.KindBookUpdate:
		return loc.Sprintf("notification.book_update.body", actor, book)
	case record.KindReviewRequest:
		return loc.Sprintf("notification.review_request.body", actor, book)
	case record.KindBorrowRequest:
		return loc.Sprintf("notification.borrow_request.body", actor, book)
	case record.KindBookRequest:
		return loc.Sprintf("notification.book_request.body", actor)
	case record.KindRecommendationRequest:
		return loc.Sprintf("notification.recommendation_request.body", actor)
	default:
		return loc.Sprintf("notification.generic.body")
	}
}

// Default returns the English rendering stored on the notification record.
func Default(input Input) string {
	return Message(NewPrinter("en"), input)
}
