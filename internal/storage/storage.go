// Package storage defines the persistence contract for user record documents.
package storage

import (
	"context"
	"errors"

	"github.com/mcalhoun/shelfie/internal/record"
)

// ErrNotFound indicates a requested user record is missing.
var ErrNotFound = errors.New("user record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("user record already exists")

// UpdateFunc mutates one user record in place inside a store transaction.
// Returning an error aborts the update and leaves the record unchanged.
type UpdateFunc func(user *record.UserRecord) error

// MultiUpdateFunc mutates several user records, keyed by uid, inside one
// store transaction. Either every record is written back or none is.
type MultiUpdateFunc func(users map[string]*record.UserRecord) error

// UserStore persists user record documents. Get, Put, and List follow the
// document-store contract; the Update methods are the transactional
// read-modify-write path all mutation services go through.
type UserStore interface {
	CreateUser(ctx context.Context, user record.UserRecord) error
	PutUser(ctx context.Context, user record.UserRecord) error
	GetUser(ctx context.Context, uid string) (record.UserRecord, error)
	ListUsers(ctx context.Context) ([]record.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, fn UpdateFunc) (record.UserRecord, error)
	UpdateUsers(ctx context.Context, uids []string, fn MultiUpdateFunc) error
}
