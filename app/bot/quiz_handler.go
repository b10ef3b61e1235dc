package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/quiz"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Sessions keeps the active quiz session of every user
type Sessions struct {
	mx       sync.Mutex
	sessions map[db.UserID]*quiz.Session
}

// NewSessions creates empty sessions registry
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[db.UserID]*quiz.Session)}
}

// Get returns active session of the user
func (s *Sessions) Get(user db.UserID) (*quiz.Session, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	session, ok := s.sessions[user]
	return session, ok
}

// Set replaces active session of the session user
func (s *Sessions) Set(session *quiz.Session) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.sessions[session.User] = session
}

// Delete removes session if it's still the active one
func (s *Sessions) Delete(user db.UserID, id string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if session, ok := s.sessions[user]; ok && session.ID == id {
		delete(s.sessions, user)
	}
}

// QuizHandler handles quiz command
type QuizHandler struct {
	tracker  Tracker
	sessions *Sessions
	rand     *rand.Rand
	neverPassthorugh
}

// Match returns true if update is /quiz command
func (h QuizHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Command() == "quiz"
}

// Handle starts new quiz session and sends the first question
func (h QuizHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	user, ok := userFromContext(ctx)
	if !ok {
		log.Error().Msg("invalid user in context")
		return
	}
	vocabulary, err := h.tracker.Pool(user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user", int64(user.ID)).Msg("failed to get quiz pool")
		return
	}
	session := quiz.NewSession(user.ID, userQueryType(user.Config.QuizType), h.tracker, h.sessionRand())
	if err := session.Start(quiz.NewItems(vocabulary)); err != nil {
		if errors.Is(err, quiz.ErrEmptyPool) {
			_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "You don't have any words to practice today"))
			return
		}
		log.Error().Err(err).Int64("user", int64(user.ID)).Msg("failed to start quiz")
		return
	}
	if previous, ok := h.sessions.Get(user.ID); ok {
		log.Debug().Str("quiz", previous.ID).Int64("user", int64(user.ID)).Msg("quiz replaced")
	}
	h.sessions.Set(session)
	log.Info().Str("quiz", session.ID).Int64("user", int64(user.ID)).Int("words", session.Progress().Total).Msg("quiz started")
	sendNextQuestion(b, u.Message.Chat.ID, session, h.sessions)
}

// sessionRand returns a new random source for the session
func (h QuizHandler) sessionRand() *rand.Rand {
	if h.rand == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(h.rand.Int63()))
}

// sendNextQuestion sends the next question or the summary of finished session
func sendNextQuestion(b Bot, chatID int64, session *quiz.Session, sessions *Sessions) {
	q, err := session.NextQuestion()
	if err != nil {
		if errors.Is(err, quiz.ErrFinished) {
			sessions.Delete(session.User, session.ID)
			_, _ = b.Send(tgbotapi.NewMessage(chatID, GetSummaryText(session.Progress())))
			return
		}
		log.Error().Err(err).Str("quiz", session.ID).Msg("failed to get next question")
		return
	}
	text, err := GetQuizMessageText(q, session.Progress().Total, nil, -1)
	if err != nil {
		log.Error().Err(err).Str("quiz", session.ID).Msg("failed to get text for message")
		return
	}
	message := tgbotapi.NewMessage(chatID, text)
	message.ParseMode = "html"
	message.ReplyMarkup = questionKeyboard(session.ID, q)
	_, _ = b.Send(message)
}

// questionKeyboard returns keyboard with question choices
func questionKeyboard(sessionID string, q quiz.Question) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(q.Choices))
	for idx := range q.Choices {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", idx+1),
			fmt.Sprintf("%v|%v|%d|%d", callbackIDQuizReply, sessionID, q.Index, idx)),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
}

// QuizReplyHandler handles quiz reply callback
type QuizReplyHandler struct {
	sessions *Sessions
	neverPassthorugh
}

// Match returns true if update is quiz reply callback
func (h QuizReplyHandler) Match(u tgbotapi.Update) bool {
	return u.CallbackQuery != nil && strings.HasPrefix(u.CallbackQuery.Data, fmt.Sprintf("%v|", callbackIDQuizReply))
}

// Handle submits the answer, marks choices and sends the next question
func (h QuizReplyHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	sessionID, index, choice, err := h.parseQuery(u)
	if err != nil {
		log.Error().Err(err).Str("query", u.CallbackQuery.Data).Msg("failed to parse callback query")
		return
	}
	session, ok := h.sessions.Get(db.UserID(u.CallbackQuery.From.ID))
	if !ok || session.ID != sessionID {
		_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Unknown quiz"))
		return
	}
	q, ok := session.Current()
	if !ok || q.Index != index || q.Answered() {
		_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Question expired"))
		return
	}
	validation, err := session.Submit(choice)
	if err != nil {
		log.Error().Err(err).Str("quiz", session.ID).Int("choice", choice).Msg("failed to submit answer")
		if validation == nil {
			_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Error happened"))
			return
		}
	}
	if validation[choice] {
		_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Correct!"))
	} else {
		_, _ = b.SendCallback(tgbotapi.NewCallback(u.CallbackQuery.ID, "Wrong!"))
	}

	chatID := u.CallbackQuery.From.ID
	if u.CallbackQuery.Message != nil {
		chatID = u.CallbackQuery.Message.Chat.ID
		quizText, err := GetQuizMessageText(q, session.Progress().Total, validation, choice)
		if err != nil {
			log.Error().Err(err).Str("quiz", session.ID).Msg("failed to get quiz message text")
		} else {
			edit := tgbotapi.NewEditMessageText(chatID, u.CallbackQuery.Message.MessageID, quizText)
			edit.ReplyMarkup = nil
			edit.ParseMode = "html"
			_, _ = b.Send(edit)
		}
	}
	sendNextQuestion(b, chatID, session, h.sessions)
}

func (h QuizReplyHandler) parseQuery(u tgbotapi.Update) (ID string, index int, choice int, err error) {
	parts := strings.Split(u.CallbackQuery.Data, "|")
	if len(parts) != 4 {
		return "", 0, 0, errors.New("invalid callback query data")
	}
	ID = parts[1]
	index, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("parsing question: %w", err)
	}
	choice, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, 0, fmt.Errorf("parsing choice: %w", err)
	}
	return ID, index, choice, nil
}

// StopHandler finishes active quiz at the last presented question
type StopHandler struct {
	sessions *Sessions
	neverPassthorugh
}

// Match returns true if update is /stop command
func (h StopHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Command() == "stop"
}

// Handle ends active session and sends its summary
func (h StopHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	userID := db.UserID(u.Message.From.ID)
	session, ok := h.sessions.Get(userID)
	if !ok {
		_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "You don't have an active quiz"))
		return
	}
	summary := session.EndEarly(session.Presented())
	h.sessions.Delete(userID, session.ID)
	log.Info().Str("quiz", session.ID).Int64("user", int64(userID)).Msg("quiz stopped")
	_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, GetSummaryText(summary)))
}

// VocabularyHandler handles /words command
type VocabularyHandler struct {
	neverPassthorugh
}

// Match returns true if update is /words command
func (h VocabularyHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Command() == "words"
}

// Handle sends user vocabulary with familiarity of every word
func (h VocabularyHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	userID := db.UserID(u.Message.From.ID)
	vocabulary, err := b.DB().GetVocabulary(userID)
	if err != nil {
		log.Error().Err(err).Int64("user", int64(userID)).Msg("failed to get vocabulary")
		return
	}
	if len(vocabulary) == 0 {
		_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "Your vocabulary is empty"))
		return
	}
	_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, vocabularyText(vocabulary)))
}

func vocabularyText(vocabulary []db.VocabularyEntry) string {
	lines := make([]string, 0, len(vocabulary))
	for _, item := range vocabulary {
		if item.Mastered() {
			lines = append(lines, fmt.Sprintf("%v ⭐", item.Word))
			continue
		}
		lines = append(lines, fmt.Sprintf("%v %d/%d", item.Word, item.Step(), db.RecallWindow))
	}
	return strings.Join(lines, "\n")
}
