package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbhz/mw-vocabulary/app/quiz"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const (
	settingQuizType = "quiz_type"
)

var quizTypeNames = map[quiz.QueryType]string{
	quiz.QueryDefine: "Definitions",
	quiz.QueryMatch:  "Words by definition",
}

// ListSettingsHandler handles /settings command
type ListSettingsHandler struct {
	neverPassthorugh
}

// Match returns true if update is /settings command
func (h ListSettingsHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Command() == "settings"
}

// Handle sends settings list keyboard
func (h ListSettingsHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	msg := tgbotapi.NewMessage(u.Message.Chat.ID, "Choose what do you want to change:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Quiz type", fmt.Sprintf("%v|%v", callbackIDSettings, settingQuizType)),
		),
	)
	_, _ = b.Send(msg)
}

// SendQuizTypesHandler sends available quiz types
type SendQuizTypesHandler struct {
	neverPassthorugh
}

// Match returns true if update is quiz settings callback
func (h SendQuizTypesHandler) Match(u tgbotapi.Update) bool {
	return u.CallbackQuery != nil &&
		u.CallbackQuery.Data == fmt.Sprintf("%v|%v", callbackIDSettings, settingQuizType)
}

// Handle sends settings quiz type lists keyboard
func (h SendQuizTypesHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	user, ok := userFromContext(ctx)
	if !ok {
		log.Error().Msg("invalid user in context")
		return
	}
	current := userQueryType(user.Config.QuizType)
	msg := tgbotapi.NewMessage(u.CallbackQuery.From.ID, fmt.Sprintf("Current type: %v\nPick quiz type:", quizTypeNames[current]))
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(quizTypeNames))
	for _, qt := range []quiz.QueryType{quiz.QueryDefine, quiz.QueryMatch} {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				quizTypeNames[qt], fmt.Sprintf("%v|%v|%v", callbackIDSettings, settingQuizType, qt),
			),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = b.Send(msg)
}

// SetQuizTypesHandler saves quiz type to user config
type SetQuizTypesHandler struct {
	neverPassthorugh
}

// Match returns true if update is quiz settings callback with picked type
func (h SetQuizTypesHandler) Match(u tgbotapi.Update) bool {
	return u.CallbackQuery != nil &&
		strings.HasPrefix(u.CallbackQuery.Data, fmt.Sprintf("%v|%v|", callbackIDSettings, settingQuizType))
}

// Handle saves quiz type to user config
func (h SetQuizTypesHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	user, ok := userFromContext(ctx)
	if !ok {
		log.Error().Msg("invalid user in context")
		return
	}
	name := strings.Split(u.CallbackQuery.Data, "|")[2]
	quizType, err := quiz.ParseQueryType(name)
	if err != nil {
		log.Error().Err(err).Str("type", name).Msg("invalid quiz type")
		_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Unknown type"))
		return
	}
	value := string(quizType)
	user.Config.QuizType = &value
	if err := b.DB().SaveUser(user); err != nil {
		log.Error().Err(err).Int64("user", int64(user.ID)).Msg("failed to save user")
		return
	}
	_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Quiz type set"))
}

// userQueryType returns configured quiz type or the default one
func userQueryType(name *string) quiz.QueryType {
	if name == nil {
		return quiz.DefaultQueryType
	}
	qt, err := quiz.ParseQueryType(*name)
	if err != nil {
		return quiz.DefaultQueryType
	}
	return qt
}
