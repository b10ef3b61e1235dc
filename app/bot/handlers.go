package bot

import (
	"context"
	"math/rand"

	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackIDQuizReply  = "qr"
	callbackIDSettings   = "st"
	callbackIDSuggestion = "sg"
)

type ctxKey string

const ctxUserKey ctxKey = "user"

// Bot describes bot for handlers
type Bot interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	SendCallback(tgbotapi.CallbackConfig) (*tgbotapi.APIResponse, error)
	DB() db.Storage
}

// Looker finds dictionary entries for a word
type Looker interface {
	Lookup(ctx context.Context, word string) (lookup.Result, error)
}

// AudioDownloader downloads pronunciation audio
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, url string) ([]byte, error)
}

// Tracker selects quiz words and records answers
type Tracker interface {
	Pool(user db.UserID) ([]db.VocabularyEntry, error)
	RecordOutcome(user db.UserID, word string, correct bool) (db.VocabularyEntry, error)
}

// Deps holds services used by handlers
type Deps struct {
	Lookup   Looker
	Audio    AudioDownloader
	Tracker  Tracker
	Sessions *Sessions
	Rand     *rand.Rand
}

// NewHandlers returns all bot handlers in matching order
func NewHandlers(deps Deps) []Handler {
	word := WordHandler{lookup: deps.Lookup, audio: deps.Audio}
	return []Handler{
		StartHandler{},
		ListSettingsHandler{},
		SendQuizTypesHandler{},
		SetQuizTypesHandler{},
		VocabularyHandler{},
		QuizHandler{tracker: deps.Tracker, sessions: deps.Sessions, rand: deps.Rand},
		QuizReplyHandler{sessions: deps.Sessions},
		StopHandler{sessions: deps.Sessions},
		SuggestionHandler{word: word},
		word,
	}
}

// neverPassthorugh implements Passthrough with always false
type neverPassthorugh struct{}

// Passthrough always returns false
func (h neverPassthorugh) Passthrough(u tgbotapi.Update) bool {
	return false
}

// userFromContext returns user loaded for the update
func userFromContext(ctx context.Context) (db.User, bool) {
	user, ok := ctx.Value(ctxUserKey).(db.User)
	return user, ok
}
