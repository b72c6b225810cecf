// Package userfakes provides lightweight in-memory user store fakes for tests.
package userfakes

import (
	"context"
	"strings"

	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/storage"
)

// UserStore is an in-memory storage.UserStore fake. Records are deep-copied
// on the way in and out so tests observe the same isolation the SQLite store
// provides. Setting FailWith makes every operation fail with that error.
type UserStore struct {
	Users    map[string]record.UserRecord
	FailWith error
}

// NewUserStore constructs a UserStore fake with an initialized record map.
func NewUserStore(users ...record.UserRecord) *UserStore {
	store := &UserStore{Users: make(map[string]record.UserRecord)}
	for _, user := range users {
		store.Users[user.UID] = user.Clone()
	}
	return store
}

func (s *UserStore) CreateUser(_ context.Context, user record.UserRecord) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, exists := s.Users[user.UID]; exists {
		return storage.ErrAlreadyExists
	}
	s.Users[user.UID] = user.Clone()
	return nil
}

func (s *UserStore) PutUser(_ context.Context, user record.UserRecord) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.Users[user.UID] = user.Clone()
	return nil
}

func (s *UserStore) GetUser(_ context.Context, uid string) (record.UserRecord, error) {
	if s.FailWith != nil {
		return record.UserRecord{}, s.FailWith
	}
	user, ok := s.Users[strings.TrimSpace(uid)]
	if !ok {
		return record.UserRecord{}, storage.ErrNotFound
	}
	return user.Clone(), nil
}

func (s *UserStore) ListUsers(_ context.Context) ([]record.UserRecord, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	users := make([]record.UserRecord, 0, len(s.Users))
	for _, user := range s.Users {
		users = append(users, user.Clone())
	}
	return users, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, uid string, fn storage.UpdateFunc) (record.UserRecord, error) {
	var updated record.UserRecord
	err := s.UpdateUsers(ctx, []string{uid}, func(users map[string]*record.UserRecord) error {
		user, ok := users[strings.TrimSpace(uid)]
		if !ok {
			return storage.ErrNotFound
		}
		if err := fn(user); err != nil {
			return err
		}
		updated = *user
		return nil
	})
	if err != nil {
		return record.UserRecord{}, err
	}
	return updated, nil
}

func (s *UserStore) UpdateUsers(_ context.Context, uids []string, fn storage.MultiUpdateFunc) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	working := make(map[string]*record.UserRecord, len(uids))
	for _, uid := range uids {
		uid = strings.TrimSpace(uid)
		stored, ok := s.Users[uid]
		if !ok {
			return storage.ErrNotFound
		}
		clone := stored.Clone()
		working[uid] = &clone
	}
	if err := fn(working); err != nil {
		return err
	}
	for uid, user := range working {
		s.Users[uid] = user.Clone()
	}
	return nil
}
