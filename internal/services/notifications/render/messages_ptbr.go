package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "notification.generic.body", "Você tem uma nova notificação.")
	message.SetString(lang, "notification.actor.someone", "Alguém")
	message.SetString(lang, "notification.book.generic", "um livro")
	message.SetString(lang, "notification.friend_request.body", "%s enviou um pedido de amizade.")
	message.SetString(lang, "notification.story_like.body", "%s curtiu sua história.")
	message.SetString(lang, "notification.shelf_like.body", "%s curtiu sua estante.")
	message.SetString(lang, "notification.new_follower.body", "%s começou a seguir você.")
	message.SetString(lang, "notification.book_update.body", "%s publicou uma atualização sobre %s.")
	message.SetString(lang, "notification.review_request.body", "%s pediu sua resenha de %s.")
	message.SetString(lang, "notification.borrow_request.body", "%s pediu emprestado %s.")
	message.SetString(lang, "notification.book_request.body", "%s pediu um livro para você.")
	message.SetString(lang, "notification.recommendation_request.body", "%s pediu uma recomendação para você.")
}
