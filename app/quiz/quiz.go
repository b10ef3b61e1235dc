// Package quiz implements multiple choice quiz sessions over user vocabulary.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
)

// ChoicesCount is a number of choices of every question
const ChoicesCount = 4

var (
	// ErrNoActiveQuestion is returned when there is no question waiting for an answer
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrChoiceOutOfRange is returned for a choice index outside of the question choices
	ErrChoiceOutOfRange = errors.New("choice out of range")
	// ErrFinished is returned when every word of the pool was asked
	ErrFinished = errors.New("quiz finished")
	// ErrEmptyPool is returned when starting a quiz without words
	ErrEmptyPool = errors.New("empty quiz pool")
	// ErrStarted is returned when starting a session twice
	ErrStarted = errors.New("quiz already started")
)

// QueryType defines what is asked and what is chosen
type QueryType string

const (
	// QueryDefine asks for a definition of a headword
	QueryDefine QueryType = "define"
	// QueryMatch asks for a headword matching a definition
	QueryMatch QueryType = "match"

	// DefaultQueryType is used when user hasn't picked a quiz type
	DefaultQueryType = QueryDefine
)

// ParseQueryType returns query type by its name
func ParseQueryType(name string) (QueryType, error) {
	switch QueryType(name) {
	case QueryDefine, QueryMatch:
		return QueryType(name), nil
	default:
		return "", fmt.Errorf("unknown query type %q", name)
	}
}

// fillers are displayed when the pool has less than ChoicesCount-1 distractors
var fillers = map[QueryType][ChoicesCount - 1]string{
	QueryDefine: {
		"a small bell hung on the collar of a grazing animal",
		"to walk slowly through shallow water",
		"having the color of ripe wheat",
	},
	QueryMatch: {
		"larkspurt",
		"quillow",
		"dimbering",
	},
}

// State of a quiz session
type State int

const (
	NotStarted State = iota
	Active
	Finished
)

// Item is a vocabulary word with its decoded entries
type Item struct {
	Vocabulary db.VocabularyEntry
	Entries    merriamwebster.Entries
}

// Headword returns headword of the entries or the saved word
func (i Item) Headword() string {
	if hw := i.Entries.Headword(); hw != "" {
		return hw
	}
	return i.Vocabulary.Word
}

// NewItems decodes entries of vocabulary words, words that can't be decoded are skipped
func NewItems(vocabulary []db.VocabularyEntry) []Item {
	items := make([]Item, 0, len(vocabulary))
	for _, v := range vocabulary {
		entries, err := v.Entries()
		if err != nil {
			log.Warn().Err(err).Int64("user", int64(v.User)).Str("word", v.Word).Msg("skip quiz word")
			continue
		}
		items = append(items, Item{Vocabulary: v, Entries: entries})
	}
	return items
}

// Question is a single quiz question
type Question struct {
	Index       int
	Type        QueryType
	Topic       Item
	Distractors []Item
	Prompt      string
	Choices     []string

	answer   int
	answered bool
}

// Summary holds quiz progress
type Summary struct {
	Total    int
	Answered int
	Correct  int
}

// Recorder receives outcome of every answered question
type Recorder interface {
	RecordOutcome(user db.UserID, word string, correct bool) (db.VocabularyEntry, error)
}

// Session is a quiz over a pool of words, one question at a time
type Session struct {
	ID   string
	User db.UserID
	Type QueryType

	recorder Recorder
	rand     *rand.Rand

	mx       sync.Mutex
	state    State
	pool     []Item
	next     int
	current  *Question
	answered int
	correct  int
}

// NewSession creates not started session, unknown query type is replaced with the default one
func NewSession(user db.UserID, queryType QueryType, recorder Recorder, rnd *rand.Rand) *Session {
	if _, ok := fillers[queryType]; !ok {
		queryType = DefaultQueryType
	}
	return &Session{
		ID:       db.GenerateID(),
		User:     user,
		Type:     queryType,
		recorder: recorder,
		rand:     rnd,
	}
}

// Start activates session with ordered pool of words
func (s *Session) Start(pool []Item) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.state != NotStarted {
		return ErrStarted
	}
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	s.pool = append([]Item(nil), pool...)
	s.state = Active
	return nil
}

// State returns session state
func (s *Session) State() State {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.state
}

// NextQuestion returns unanswered current question or builds a question for the next word
func (s *Session) NextQuestion() (Question, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	switch s.state {
	case NotStarted:
		return Question{}, ErrNoActiveQuestion
	case Finished:
		return Question{}, ErrFinished
	}
	if s.current != nil && !s.current.answered {
		return *s.current, nil
	}
	if s.next >= len(s.pool) {
		s.state = Finished
		return Question{}, ErrFinished
	}
	q := s.newQuestion(s.next)
	s.next++
	s.current = &q
	return q, nil
}

// Submit answers the current question.
// Returns validation of all choices: only the correct one is true.
func (s *Session) Submit(choice int) ([]bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.state != Active || s.current == nil || s.current.answered {
		return nil, ErrNoActiveQuestion
	}
	if choice < 0 || choice >= len(s.current.Choices) {
		return nil, ErrChoiceOutOfRange
	}
	q := s.current
	q.answered = true
	correct := choice == q.answer
	s.answered++
	if correct {
		s.correct++
	}
	if s.next >= len(s.pool) {
		s.state = Finished
	}

	validation := make([]bool, len(q.Choices))
	validation[q.answer] = true
	if s.recorder != nil {
		if _, err := s.recorder.RecordOutcome(s.User, q.Topic.Vocabulary.Word, correct); err != nil {
			return validation, fmt.Errorf("record outcome: %w", err)
		}
	}
	return validation, nil
}

// Current returns the last presented question of the active session
func (s *Session) Current() (Question, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.current == nil {
		return Question{}, false
	}
	return *s.current, true
}

// Answered returns true if the question was submitted
func (q Question) Answered() bool {
	return q.answered
}

// Presented returns number of questions shown so far
func (s *Session) Presented() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.next
}

// EndEarly finishes session keeping only the first at words of the pool
func (s *Session) EndEarly(at int) Summary {
	s.mx.Lock()
	defer s.mx.Unlock()
	if at < 0 {
		at = 0
	}
	if at < len(s.pool) {
		s.pool = s.pool[:at]
	}
	if s.next > len(s.pool) {
		s.next = len(s.pool)
		if s.current != nil && s.current.Index >= len(s.pool) {
			s.current = nil
		}
	}
	s.state = Finished
	return s.summary()
}

// Progress returns current progress summary
func (s *Session) Progress() Summary {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.summary()
}

func (s *Session) summary() Summary {
	return Summary{Total: len(s.pool), Answered: s.answered, Correct: s.correct}
}

func (s *Session) newQuestion(index int) Question {
	topic := s.pool[index]
	others := make([]Item, 0, len(s.pool)-1)
	for i, item := range s.pool {
		if i != index && item.Entries.HasSense() {
			others = append(others, item)
		}
	}
	s.rand.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if len(others) > ChoicesCount-1 {
		others = others[:ChoicesCount-1]
	}

	q := Question{Index: index, Type: s.Type, Topic: topic, Distractors: others}
	texts := make([]string, 0, ChoicesCount)
	switch s.Type {
	case QueryMatch:
		q.Prompt = topic.Entries.FirstDefinition()
		texts = append(texts, topic.Headword())
		for _, d := range others {
			texts = append(texts, d.Headword())
		}
	default:
		q.Prompt = topic.Headword()
		texts = append(texts, topic.Entries.FirstDefinition())
		for _, d := range others {
			texts = append(texts, d.Entries.FirstDefinition())
		}
	}
	for _, f := range fillers[q.Type] {
		if len(texts) == ChoicesCount {
			break
		}
		texts = append(texts, f)
	}

	// texts[0] is the topic
	q.Choices = make([]string, ChoicesCount)
	for i, pos := range s.rand.Perm(ChoicesCount) {
		q.Choices[pos] = texts[i]
		if i == 0 {
			q.answer = pos
		}
	}
	return q
}
