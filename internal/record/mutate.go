package record

import "time"

// ToggleHeart flips actorUID's membership in the hearts set. It returns the
// updated set and whether the flip was an addition. The set never holds
// duplicate actor ids, so a double toggle restores the original set.
func ToggleHeart(hearts []string, actorUID string) ([]string, bool) {
	for i, uid := range hearts {
		if uid == actorUID {
			return append(hearts[:i:i], hearts[i+1:]...), false
		}
	}
	return append(hearts, actorUID), true
}

// HasHeart reports whether actorUID is present in the hearts set.
func HasHeart(hearts []string, actorUID string) bool {
	for _, uid := range hearts {
		if uid == actorUID {
			return true
		}
	}
	return false
}

// PushNotification prepends n to the inbox and truncates to MaxNotifications.
// Entries beyond the cap are dropped oldest-first.
func (u *UserRecord) PushNotification(n Notification) {
	inbox := make([]Notification, 0, len(u.Notifications)+1)
	inbox = append(inbox, n)
	inbox = append(inbox, u.Notifications...)
	if len(inbox) > MaxNotifications {
		inbox = inbox[:MaxNotifications]
	}
	u.Notifications = inbox
}

// EnsureCreatedAt backfills the creation timestamp on the first meaningful
// write. It reports whether the record changed.
func (u *UserRecord) EnsureCreatedAt(now time.Time) bool {
	if !u.CreatedAt.IsZero() {
		return false
	}
	u.CreatedAt = now
	return true
}

// HasFriend reports whether uid is in the friends set.
func (u *UserRecord) HasFriend(uid string) bool {
	for _, p := range u.Friends {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// IsFollowing reports whether uid is in the following set.
func (u *UserRecord) IsFollowing(uid string) bool {
	for _, p := range u.Following {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// HasFriendRequestFrom reports whether a pending inbound request from uid exists.
func (u *UserRecord) HasFriendRequestFrom(uid string) bool {
	for _, r := range u.FriendRequests {
		if r.FromUID == uid {
			return true
		}
	}
	return false
}

// HasSentRequestTo reports whether a pending outbound request to uid exists.
func (u *UserRecord) HasSentRequestTo(uid string) bool {
	for _, r := range u.SentRequests {
		if r.ToUID == uid {
			return true
		}
	}
	return false
}

// RemoveFriendRequestFrom deletes the pending inbound request from uid.
// It reports whether a request was removed.
func (u *UserRecord) RemoveFriendRequestFrom(uid string) bool {
	for i, r := range u.FriendRequests {
		if r.FromUID == uid {
			u.FriendRequests = append(u.FriendRequests[:i:i], u.FriendRequests[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveSentRequestTo deletes the pending outbound request to uid.
// It reports whether a request was removed.
func (u *UserRecord) RemoveSentRequestTo(uid string) bool {
	for i, r := range u.SentRequests {
		if r.ToUID == uid {
			u.SentRequests = append(u.SentRequests[:i:i], u.SentRequests[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveFollowing deletes uid from the following set. It reports whether the
// edge existed.
func (u *UserRecord) RemoveFollowing(uid string) bool {
	for i, p := range u.Following {
		if p.UID == uid {
			u.Following = append(u.Following[:i:i], u.Following[i+1:]...)
			return true
		}
	}
	return false
}

// HasBook reports whether book id is present in either top-level list.
func (u *UserRecord) HasBook(bookID string) bool {
	for _, b := range u.Books.Read {
		if b.ID == bookID {
			return true
		}
	}
	for _, b := range u.Books.WantToRead {
		if b.ID == bookID {
			return true
		}
	}
	return false
}

// HasShelvedBook reports whether book id appears on any shelf.
func (u *UserRecord) HasShelvedBook(bookID string) bool {
	for _, s := range u.Shelves {
		for _, b := range s.Books {
			if b.ID == bookID {
				return true
			}
		}
	}
	return false
}

// ShelfByID returns a pointer to the shelf with the given id, or nil.
func (u *UserRecord) ShelfByID(shelfID string) *Shelf {
	for i := range u.Shelves {
		if u.Shelves[i].ID == shelfID {
			return &u.Shelves[i]
		}
	}
	return nil
}

// StoryByID returns a pointer to the story with the given id, or nil.
func (u *UserRecord) StoryByID(storyID string) *Story {
	for i := range u.Stories {
		if u.Stories[i].ID == storyID {
			return &u.Stories[i]
		}
	}
	return nil
}

// RemoveBook deletes book id from the category list. It reports whether the
// book was present.
func (u *UserRecord) RemoveBook(category Category, bookID string) bool {
	list := u.Books.List(category)
	for i, b := range list {
		if b.ID == bookID {
			u.Books.setList(category, append(list[:i:i], list[i+1:]...))
			return true
		}
	}
	return false
}

// AppendBook appends book to the category list without membership checks.
// Callers enforce the single-category invariant first.
func (u *UserRecord) AppendBook(category Category, book Book) {
	u.Books.setList(category, append(u.Books.List(category), book))
}

// Clone returns a deep copy of the record. Mutating the copy never aliases
// the original's slices.
func (u *UserRecord) Clone() UserRecord {
	out := *u
	out.Books.Read = cloneBooks(u.Books.Read)
	out.Books.WantToRead = cloneBooks(u.Books.WantToRead)
	out.Shelves = make([]Shelf, len(u.Shelves))
	for i, s := range u.Shelves {
		out.Shelves[i] = s
		out.Shelves[i].Books = cloneBooks(s.Books)
		out.Shelves[i].Reactions.Hearts = append([]string(nil), s.Reactions.Hearts...)
	}
	out.Stories = make([]Story, len(u.Stories))
	for i, s := range u.Stories {
		out.Stories[i] = s
		out.Stories[i].Reactions.Hearts = append([]string(nil), s.Reactions.Hearts...)
		if s.Book != nil {
			book := *s.Book
			out.Stories[i].Book = &book
		}
	}
	out.Friends = append([]Person(nil), u.Friends...)
	out.Following = append([]Person(nil), u.Following...)
	out.FriendRequests = append([]FriendRequest(nil), u.FriendRequests...)
	out.SentRequests = append([]SentRequest(nil), u.SentRequests...)
	out.Notifications = make([]Notification, len(u.Notifications))
	for i, n := range u.Notifications {
		out.Notifications[i] = n
		if n.Book != nil {
			book := *n.Book
			out.Notifications[i].Book = &book
		}
	}
	return out
}

func cloneBooks(books []Book) []Book {
	if books == nil {
		return nil
	}
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = b
		out[i].Authors = append([]string(nil), b.Authors...)
	}
	return out
}
