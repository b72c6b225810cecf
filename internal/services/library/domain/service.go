// Package domain mutates one user's library: story posting, the read and
// want-to-read lists, and shelf lifecycle. A book id lives in at most one of
// the two top-level lists and on at most one shelf; every shelf change
// refreshes the shelf's updatedAt.
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
	"github.com/mcalhoun/shelfie/internal/state"
	"github.com/mcalhoun/shelfie/internal/storage"
)

// Direction indicates where a shelf moves in the user-ordered sequence.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("library store is not configured")
	// ErrUserIDRequired indicates a user id is required.
	ErrUserIDRequired = apperrors.New(apperrors.CodeUserEmptyID, "user id is required")
	// ErrUserNotFound indicates the user record is missing.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "user record not found")
	// ErrStoryTextRequired indicates an empty story body.
	ErrStoryTextRequired = apperrors.New(apperrors.CodeStoryEmptyText, "story text is required")
	// ErrBookIDRequired indicates a book without a catalog id.
	ErrBookIDRequired = apperrors.New(apperrors.CodeBookEmptyID, "book id is required")
	// ErrInvalidCategory indicates a category outside read/wantToRead.
	ErrInvalidCategory = apperrors.New(apperrors.CodeBookInvalidCategory, "invalid book category")
	// ErrShelfNameRequired indicates an empty shelf name.
	ErrShelfNameRequired = apperrors.New(apperrors.CodeShelfEmptyName, "shelf name is required")
	// ErrShelfNotFound indicates the shelf is missing from the user's record.
	ErrShelfNotFound = apperrors.New(apperrors.CodeShelfMissing, "shelf not found")
	// ErrBookAlreadyShelved indicates the book already sits on one of the
	// user's shelves; a book may be shelved once across all shelves.
	ErrBookAlreadyShelved = apperrors.New(apperrors.CodeBookAlreadyShelved, "book is already on a shelf")

	// errNoChange aborts a store update whose desired state already holds.
	errNoChange = errors.New("no change")
)

// Service orchestrates story and shelf mutations.
type Service struct {
	store   storage.UserStore
	updates *state.Store
	clock   func() time.Time
	newID   func() (string, error)
	tracer  trace.Tracer
}

// NewService constructs library use-cases. updates may be nil when no view
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
		tracer:  otel.Tracer("shelfie/library"),
	}
}

// PostStory prepends a new story to the user's feed. Each story gets a
// generated id; the timestamp is display metadata, not identity. The first
// meaningful write also backfills a missing createdAt.
func (s *Service) PostStory(ctx context.Context, uid string, storyType string, text string, book *record.Book) (record.Story, error) {
	if s == nil || s.store == nil {
		return record.Story{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.post_story")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return record.Story{}, ErrUserIDRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return record.Story{}, ErrStoryTextRequired
	}

	storyID, err := s.newID()
	if err != nil {
		return record.Story{}, err
	}
	story := record.Story{
		ID:        storyID,
		Type:      strings.TrimSpace(storyType),
		Text:      text,
		Timestamp: s.nowUTC(),
		Reactions: record.Reactions{Hearts: []string{}},
		Book:      book,
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		user.Stories = append([]record.Story{story}, user.Stories...)
		user.EnsureCreatedAt(story.Timestamp)
		return nil
	})
	if err != nil {
		return record.Story{}, s.mapStoreError(span, "post story", err)
	}
	s.publish(user)
	return story, nil
}

// AddBook appends a book to the read or want-to-read list. A book already
// present in either list makes the call a no-op.
func (s *Service) AddBook(ctx context.Context, uid string, book record.Book, category record.Category) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.add_book")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(book.ID) == "" {
		return ErrBookIDRequired
	}
	if category != record.CategoryRead && category != record.CategoryWantToRead {
		return ErrInvalidCategory
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		if user.HasBook(book.ID) {
			return errNoChange
		}
		user.AppendBook(category, book)
		user.EnsureCreatedAt(s.nowUTC())
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "add book", err)
	}
	s.publish(user)
	return nil
}

// MoveBook moves a book between the read and want-to-read lists. Both lists
// are persisted in the same update; moving a book that is not in the source
// list is a no-op.
func (s *Service) MoveBook(ctx context.Context, uid string, bookID string, from record.Category, to record.Category) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.move_book")
	defer span.End()

	uid = strings.TrimSpace(uid)
	bookID = strings.TrimSpace(bookID)
	if uid == "" {
		return ErrUserIDRequired
	}
	if bookID == "" {
		return ErrBookIDRequired
	}
	for _, category := range []record.Category{from, to} {
		if category != record.CategoryRead && category != record.CategoryWantToRead {
			return ErrInvalidCategory
		}
	}
	if from == to {
		return nil
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		var moved *record.Book
		for _, b := range user.Books.List(from) {
			if b.ID == bookID {
				book := b
				moved = &book
				break
			}
		}
		if moved == nil {
			return errNoChange
		}
		user.RemoveBook(from, bookID)
		user.AppendBook(to, *moved)
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "move book", err)
	}
	s.publish(user)
	return nil
}

// CreateShelf appends a new empty shelf and returns it.
func (s *Service) CreateShelf(ctx context.Context, uid string, name string) (record.Shelf, error) {
	if s == nil || s.store == nil {
		return record.Shelf{}, ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.create_shelf")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return record.Shelf{}, ErrUserIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return record.Shelf{}, ErrShelfNameRequired
	}

	shelfID, err := s.newID()
	if err != nil {
		return record.Shelf{}, err
	}
	now := s.nowUTC()
	shelf := record.Shelf{
		ID:        shelfID,
		Name:      name,
		Books:     []record.Book{},
		CreatedAt: now,
		UpdatedAt: now,
		Reactions: record.Reactions{Hearts: []string{}},
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		user.Shelves = append(user.Shelves, shelf)
		user.EnsureCreatedAt(now)
		return nil
	})
	if err != nil {
		return record.Shelf{}, s.mapStoreError(span, "create shelf", err)
	}
	s.publish(user)
	return shelf, nil
}

// RenameShelf replaces the shelf name in place and refreshes updatedAt.
func (s *Service) RenameShelf(ctx context.Context, uid string, shelfID string, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrShelfNameRequired
	}
	return s.updateShelf(ctx, "library.rename_shelf", uid, shelfID, func(shelf *record.Shelf) error {
		shelf.Name = name
		return nil
	})
}

// SetShelfFeatured flags or unflags the shelf as featured.
func (s *Service) SetShelfFeatured(ctx context.Context, uid string, shelfID string, featured bool) error {
	return s.updateShelf(ctx, "library.set_shelf_featured", uid, shelfID, func(shelf *record.Shelf) error {
		shelf.Featured = featured
		return nil
	})
}

// SetShelfGenre sets the shelf's genre label.
func (s *Service) SetShelfGenre(ctx context.Context, uid string, shelfID string, genre string) error {
	return s.updateShelf(ctx, "library.set_shelf_genre", uid, shelfID, func(shelf *record.Shelf) error {
		shelf.Genre = strings.TrimSpace(genre)
		return nil
	})
}

// DeleteShelf removes the shelf entirely. Its books are not migrated
// anywhere; they stay reachable only through the top-level lists.
func (s *Service) DeleteShelf(ctx context.Context, uid string, shelfID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.delete_shelf")
	defer span.End()

	uid = strings.TrimSpace(uid)
	shelfID = strings.TrimSpace(shelfID)
	if uid == "" {
		return ErrUserIDRequired
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		for i := range user.Shelves {
			if user.Shelves[i].ID == shelfID {
				user.Shelves = append(user.Shelves[:i:i], user.Shelves[i+1:]...)
				return nil
			}
		}
		return ErrShelfNotFound
	})
	if err != nil {
		return s.mapStoreError(span, "delete shelf", err)
	}
	s.publish(user)
	return nil
}

// ReorderShelf swaps the shelf at index with its neighbor in the given
// direction. Boundary moves (first shelf up, last shelf down) are no-ops.
func (s *Service) ReorderShelf(ctx context.Context, uid string, index int, direction Direction) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, "library.reorder_shelf")
	defer span.End()

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrUserIDRequired
	}
	if direction != DirectionUp && direction != DirectionDown {
		return apperrors.New(apperrors.CodeShelfMissing, "invalid reorder direction")
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		if index < 0 || index >= len(user.Shelves) {
			return ErrShelfNotFound
		}
		neighbor := index - 1
		if direction == DirectionDown {
			neighbor = index + 1
		}
		if neighbor < 0 || neighbor >= len(user.Shelves) {
			return errNoChange
		}
		user.Shelves[index], user.Shelves[neighbor] = user.Shelves[neighbor], user.Shelves[index]
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, "reorder shelf", err)
	}
	s.publish(user)
	return nil
}

// AddBookToShelf appends a book to the shelf and refreshes updatedAt. A book
// already present on any of the user's shelves is rejected.
func (s *Service) AddBookToShelf(ctx context.Context, uid string, shelfID string, book record.Book) error {
	if strings.TrimSpace(book.ID) == "" {
		return ErrBookIDRequired
	}
	return s.updateShelfWithUser(ctx, "library.add_book_to_shelf", uid, shelfID, func(user *record.UserRecord, shelf *record.Shelf) error {
		if user.HasShelvedBook(book.ID) {
			return ErrBookAlreadyShelved
		}
		shelf.Books = append(shelf.Books, book)
		return nil
	})
}

// RemoveBookFromShelf removes a book from the shelf and refreshes updatedAt.
// A book that is not on the shelf makes the call a no-op.
func (s *Service) RemoveBookFromShelf(ctx context.Context, uid string, shelfID string, bookID string) error {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return ErrBookIDRequired
	}
	return s.updateShelfWithUser(ctx, "library.remove_book_from_shelf", uid, shelfID, func(_ *record.UserRecord, shelf *record.Shelf) error {
		for i := range shelf.Books {
			if shelf.Books[i].ID == bookID {
				shelf.Books = append(shelf.Books[:i:i], shelf.Books[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

func (s *Service) updateShelf(ctx context.Context, op string, uid string, shelfID string, fn func(shelf *record.Shelf) error) error {
	return s.updateShelfWithUser(ctx, op, uid, shelfID, func(_ *record.UserRecord, shelf *record.Shelf) error {
		return fn(shelf)
	})
}

func (s *Service) updateShelfWithUser(ctx context.Context, op string, uid string, shelfID string, fn func(user *record.UserRecord, shelf *record.Shelf) error) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	uid = strings.TrimSpace(uid)
	shelfID = strings.TrimSpace(shelfID)
	if uid == "" {
		return ErrUserIDRequired
	}

	user, err := s.store.UpdateUser(ctx, uid, func(user *record.UserRecord) error {
		shelf := user.ShelfByID(shelfID)
		if shelf == nil {
			return ErrShelfNotFound
		}
		if err := fn(user, shelf); err != nil {
			return err
		}
		shelf.UpdatedAt = s.nowUTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return s.mapStoreError(span, op, err)
	}
	s.publish(user)
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
