package middleware

import "github.com/go-telegram/bot/models"

// updateChat returns the chat an update belongs to and its kind, for
// messages and callback queries. ok is false for anything else.
func updateChat(update *models.Update) (chat models.Chat, kind string, ok bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		switch {
		case len(msg.Photo) > 0:
			kind = "photo"
		case msg.Document != nil:
			kind = "document"
		case len(msg.Text) > 0 && msg.Text[0] == '/':
			kind = "command"
		default:
			kind = "message"
		}
		return msg.Chat, kind, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat, "callback_query", true
	}
	return models.Chat{}, "", false
}
