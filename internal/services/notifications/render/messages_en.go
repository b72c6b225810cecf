package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.actor.someone", "Someone")
	message.SetString(lang, "notification.book.generic", defaultBookTitle)
	message.SetString(lang, "notification.friend_request.body", "%s sent you a friend request.")
	message.SetString(lang, "notification.story_like.body", "%s liked your story.")
	message.SetString(lang, "notification.shelf_like.body", "%s liked your shelf.")
	message.SetString(lang, "notification.new_follower.body", "%s started following you.")
	message.SetString(lang, "notification.book_update.body", "%s posted an update about %s.")
	message.SetString(lang, "notification.review_request.body", "%s asked for your review of %s.")
	message.SetString(lang, "notification.borrow_request.body", "%s asked to borrow %s.")
	message.SetString(lang, "notification.book_request.body", "%s requested a book from you.")
	message.SetString(lang, "notification.recommendation_request.body", "%s asked you for a recommendation.")
}
