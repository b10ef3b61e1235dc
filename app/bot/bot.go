package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rbhz/mw-vocabulary/app/db"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const updateTimeout = 15 * time.Second

type Handler interface {
	Handle(ctx context.Context, b Bot, u tgbotapi.Update)
	Passthrough(tgbotapi.Update) bool
	Match(u tgbotapi.Update) bool
}

// TelegramBot handles Telegram API intragration and updates handling
type TelegramBot struct {
	UserName string
	api      *tgbotapi.BotAPI
	db       db.Storage
	handlers []Handler
}

func (b *TelegramBot) processUpdate(u tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.TODO(), updateTimeout)
	defer cancel()

	if from := updateSender(u); from != nil {
		user, err := loadUser(b.db, from)
		if err != nil {
			log.Error().Err(err).Int64("user", from.ID).Msg("failed to load user")
			return
		}
		ctx = context.WithValue(ctx, ctxUserKey, user)
	}
	for _, handler := range b.handlers {
		if handler.Match(u) {
			handler.Handle(ctx, b, u)
			if !handler.Passthrough(u) {
				break
			}
		}
	}
}

func (b *TelegramBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for u := range updates {
		b.processUpdate(u)
	}
}

func (b *TelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	message, err := b.api.Send(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to send")
	}
	return message, err
}

func (b *TelegramBot) SendCallback(c tgbotapi.CallbackConfig) (*tgbotapi.APIResponse, error) {
	response, err := b.api.Request(c)
	if err != nil {
		log.Error().Err(err).Str("callback", c.CallbackQueryID).Msg("failed to answer callback")
	}
	return response, err
}

func (b *TelegramBot) DB() db.Storage {
	return b.db
}

// updateSender returns author of the message or callback query
func updateSender(u tgbotapi.Update) *tgbotapi.User {
	switch {
	case u.Message != nil:
		return u.Message.From
	case u.CallbackQuery != nil:
		return u.CallbackQuery.From
	}
	return nil
}

// loadUser returns stored user, new users are saved on the first update
func loadUser(storage db.Storage, from *tgbotapi.User) (db.User, error) {
	user, err := storage.GetUser(db.UserID(from.ID))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return user, err
	}
	user = db.User{ID: db.UserID(from.ID), Username: from.UserName}
	if err := storage.SaveUser(user); err != nil {
		return user, err
	}
	log.Info().Int64("user", from.ID).Str("username", from.UserName).Msg("new user")
	return user, nil
}

func NewTelegramBot(token string, db db.Storage, handlers []Handler) (*TelegramBot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to initialize bot")
	}
	log.Info().Str("username", botAPI.Self.UserName).Msg("telegram bot initialized")
	return &TelegramBot{
		UserName: botAPI.Self.UserName,
		api:      botAPI,
		db:       db,
		handlers: handlers,
	}, nil
}
