package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const startText = `Hi! Send me an English word and I'll look it up in the Merriam-Webster dictionary.
Every word you look up is saved to your vocabulary.

/quiz - practice your words
/stop - finish the quiz
/words - show your vocabulary
/settings - change quiz type`

type StartHandler struct{}

func (h StartHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Command() == "start"
}

func (h StartHandler) Passthrough(u tgbotapi.Update) bool {
	return false
}

func (h StartHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, startText))
}
