// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeRemoteFailure Code = "REMOTE_FAILURE"

	// User errors
	CodeUserEmptyID          Code = "USER_EMPTY_ID"
	CodeUserEmptyDisplayName Code = "USER_EMPTY_DISPLAY_NAME"
	CodeUserAlreadyExists    Code = "USER_ALREADY_EXISTS"

	// Social graph errors
	CodeFriendRequestSelf    Code = "FRIEND_REQUEST_SELF"
	CodeFriendRequestPending Code = "FRIEND_REQUEST_PENDING"
	CodeFriendRequestMissing Code = "FRIEND_REQUEST_MISSING"
	CodeFollowSelf           Code = "FOLLOW_SELF"

	// Reaction errors
	CodeReactionUnknownItemKind Code = "REACTION_UNKNOWN_ITEM_KIND"
	CodeReactionItemMissing     Code = "REACTION_ITEM_MISSING"

	// Library errors
	CodeBookEmptyID         Code = "BOOK_EMPTY_ID"
	CodeBookAlreadyOwned    Code = "BOOK_ALREADY_OWNED"
	CodeBookAlreadyShelved  Code = "BOOK_ALREADY_SHELVED"
	CodeBookInvalidCategory Code = "BOOK_INVALID_CATEGORY"
	CodeShelfEmptyName      Code = "SHELF_EMPTY_NAME"
	CodeShelfMissing        Code = "SHELF_MISSING"
	CodeStoryEmptyText      Code = "STORY_EMPTY_TEXT"

	// Notification errors
	CodeNotificationBadKind  Code = "NOTIFICATION_BAD_KIND"
	CodeNotificationBadActor Code = "NOTIFICATION_BAD_ACTOR"
)

// Retryable reports whether the coded failure is worth retrying by the caller.
// Only transient store failures qualify; a conflict means the work is already
// done and not-found means it never can be.
func (c Code) Retryable() bool {
	return c == CodeRemoteFailure
}

// Benign reports whether the coded failure should be treated as a harmless
// no-op by callers that tolerate concurrent actors.
func (c Code) Benign() bool {
	return c == CodeConflict
}
