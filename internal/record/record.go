// Package record defines the user document model and the pure mutation
// helpers that keep its invariants: symmetric friendship edges, duplicate-free
// heart sets, single-category book membership, and the bounded inbox.
package record

import "time"

// MaxNotifications bounds the per-user inbox. Entries past the cap are
// permanently discarded, not archived.
const MaxNotifications = 50

// Category identifies one of the two top-level book lists.
type Category string

const (
	CategoryRead       Category = "read"
	CategoryWantToRead Category = "wantToRead"
)

// NotificationKind identifies the event class of one inbox entry.
type NotificationKind string

const (
	KindFriendRequest         NotificationKind = "friend_request"
	KindStoryLike             NotificationKind = "story_like"
	KindShelfLike             NotificationKind = "shelf_like"
	KindNewFollower           NotificationKind = "new_follower"
	KindBookUpdate            NotificationKind = "book_update"
	KindReviewRequest         NotificationKind = "review_request"
	KindBorrowRequest         NotificationKind = "borrow_request"
	KindBookRequest           NotificationKind = "book_request"
	KindRecommendationRequest NotificationKind = "recommendation_request"
)

// Person is a denormalized reference to another user.
type Person struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Book is a catalog item attached to lists and shelves. Identity is the
// catalog id; immutable once stored except for its shelf membership.
type Book struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// Reactions holds per-actor toggleable reactions on a story or shelf.
type Reactions struct {
	Hearts []string `json:"hearts"`
}

// Shelf is a named, ordered collection of books owned by one user.
type Shelf struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Books     []Book    `json:"books"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Reactions Reactions `json:"reactions"`
	Featured  bool      `json:"featured,omitempty"`
	Genre     string    `json:"genre,omitempty"`
}

// Story is a short free-text post, optionally tagged with a feature type
// and an attached book.
type Story struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Reactions Reactions `json:"reactions"`
	Book      *Book     `json:"book,omitempty"`
}

// FriendRequest is one pending inbound friendship request.
type FriendRequest struct {
	FromUID   string `json:"fromUid"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail"`
}

// SentRequest mirrors one pending outbound friendship request.
type SentRequest struct {
	ToUID   string `json:"toUid"`
	ToName  string `json:"toName"`
	ToEmail string `json:"toEmail"`
}

// Notification is one timestamped event delivered to a user's bounded inbox.
// Synthetic friend-request entries are produced at read time and never stored.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	Actor     Person           `json:"user"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	StoryID   string           `json:"storyId,omitempty"`
	ShelfID   string           `json:"shelfId,omitempty"`
	Book      *Book            `json:"book,omitempty"`
}

// BookLists holds the two top-level book sequences. A book id appears in at
// most one of the two at a time.
type BookLists struct {
	Read       []Book `json:"read"`
	WantToRead []Book `json:"wantToRead"`
}

// UserRecord is one registered user's document: profile, library, shelves,
// social edges, and notification inbox.
type UserRecord struct {
	UID            string          `json:"uid"`
	DisplayName    string          `json:"displayName"`
	Email          string          `json:"email"`
	Bio            string          `json:"bio,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Books          BookLists       `json:"books"`
	Shelves        []Shelf         `json:"shelves"`
	Stories        []Story         `json:"stories"`
	Friends        []Person        `json:"friends"`
	Following      []Person        `json:"following"`
	FriendRequests []FriendRequest `json:"friendRequests"`
	SentRequests   []SentRequest   `json:"sentRequests"`
	Notifications  []Notification  `json:"notifications"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}

// Ref returns the denormalized reference other users store for this record.
func (u *UserRecord) Ref() Person {
	return Person{UID: u.UID, Name: u.DisplayName, Email: u.Email}
}

// List returns the book list for category. Unknown categories report nil.
func (b *BookLists) List(category Category) []Book {
	switch category {
	case CategoryRead:
		return b.Read
	case CategoryWantToRead:
		return b.WantToRead
	}
	return nil
}

func (b *BookLists) setList(category Category, books []Book) {
	switch category {
	case CategoryRead:
		b.Read = books
	case CategoryWantToRead:
		b.WantToRead = books
	}
}
