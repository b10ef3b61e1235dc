package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// WordHandler handles word requests
type WordHandler struct {
	lookup Looker
	audio  AudioDownloader
	neverPassthorugh
}

// Match returns true if message is a text
func (h WordHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Text != "" && !u.Message.IsCommand()
}

// Handle looks the word up and sends it to user
func (h WordHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	word := lookup.Normalize(u.Message.Text)
	if strings.Contains(word, " ") {
		_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "Sorry only single words are supported"))
		return
	}
	h.sendWord(ctx, b, u.Message.Chat.ID, word)
}

func (h WordHandler) sendWord(ctx context.Context, b Bot, chatID int64, word string) {
	res, err := h.lookup.Lookup(ctx, word)
	if err != nil {
		if errors.Is(err, lookup.ErrNoResult) {
			_, _ = b.Send(tgbotapi.NewMessage(chatID, "Sorry, I don't know this word"))
			return
		}
		log.Error().Err(err).Str("word", word).Msg("failed to get word data")
		_, _ = b.Send(tgbotapi.NewMessage(chatID, "Dictionary is not available, try again later"))
		return
	}
	if res.HasSuggestions() {
		_, _ = b.Send(suggestionsMessage(chatID, res.Suggestions))
		return
	}

	if user, ok := userFromContext(ctx); ok {
		h.saveVocabularyItem(b.DB(), user.ID, res)
	}

	text, err := GetEntriesMessageText(res.Entries)
	if err != nil {
		log.Error().Err(err).Str("word", res.Word).Msg("failed to get text for message")
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "html"
	if _, err := b.Send(msg); err != nil {
		return
	}
	h.sendAudio(ctx, b, chatID, res.Entries)
}

// saveVocabularyItem adds looked up word to user vocabulary if it's not there yet
func (h WordHandler) saveVocabularyItem(storage db.Storage, user db.UserID, res lookup.Result) {
	_, err := storage.GetVocabularyItem(user, res.Word)
	if err == nil {
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		log.Error().Err(err).Str("word", res.Word).Int64("user", int64(user)).Msg("failed to get vocabulary item")
		return
	}
	item := db.NewVocabularyEntry(user, res.Word, res.Raw, time.Now())
	if err := storage.SaveVocabularyItem(item); err != nil {
		log.Error().
			Err(err).
			Str("word", res.Word).
			Int64("user", int64(user)).
			Msg("failed to save vocabulary item")
	}
}

// sendAudio sends the first pronunciation recording of the entries
func (h WordHandler) sendAudio(ctx context.Context, b Bot, chatID int64, entries merriamwebster.Entries) {
	for _, p := range entries.AllPronunciations() {
		url, ok := merriamwebster.AudioURL(p)
		if !ok {
			continue
		}
		if h.audio == nil {
			_, _ = b.Send(tgbotapi.NewAudio(chatID, tgbotapi.FileURL(url)))
			return
		}
		data, err := h.audio.DownloadAudio(ctx, url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("failed to download audio")
			return
		}
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: p.Sound.Audio + ".wav", Bytes: data})
		audio.Title = entries.Headword()
		_, _ = b.Send(audio)
		return
	}
}

func suggestionsMessage(chatID int64, suggestions []string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, "Word not found, did you mean:")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(suggestions))
	for _, s := range suggestions {
		data := fmt.Sprintf("%v|%v", callbackIDSuggestion, s)
		// telegram limits callback data to 64 bytes
		if len(data) > 64 {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(s, data)))
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return msg
}

// SuggestionHandler handles picked "did you mean" suggestion
type SuggestionHandler struct {
	word WordHandler
	neverPassthorugh
}

// Match returns true if update is suggestion callback
func (h SuggestionHandler) Match(u tgbotapi.Update) bool {
	return u.CallbackQuery != nil && strings.HasPrefix(u.CallbackQuery.Data, fmt.Sprintf("%v|", callbackIDSuggestion))
}

// Handle sends picked word
func (h SuggestionHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	word := strings.TrimPrefix(u.CallbackQuery.Data, fmt.Sprintf("%v|", callbackIDSuggestion))
	_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, word))
	h.word.sendWord(ctx, b, u.CallbackQuery.From.ID, lookup.Normalize(word))
}
