package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"
	"github.com/rbhz/mw-vocabulary/app/vocab"
)

const (
	testTGToken   = "123123213:1231231312"
	testJWTSecret = "tokentokentokentoken"
	testUserID    = 1
)

const heartResponse = `[{"meta":{"id":"heart:1"},"hom":1,"hwi":{"hw":"heart"},"fl":"noun",` +
	`"def":[{"sseq":[[["sense",{"dt":[["text","{bc}a hollow muscular organ"]]}]]]}]}]`

// emptyHandler is a dummy handler for testing.
type emptyHandler struct{}

func (h *emptyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {}

// ErrorStorage is a dummy storage for testing storage error handling.
type ErrorStorage struct {
	*db.InMemoryStorage
}

func (d ErrorStorage) GetVocabulary(db.UserID) ([]db.VocabularyEntry, error) {
	return nil, errors.New("test")
}

func (d ErrorStorage) GetVocabularyItem(db.UserID, string) (db.VocabularyEntry, error) {
	return db.VocabularyEntry{}, errors.New("test")
}

func (d ErrorStorage) SaveVocabularyItem(db.VocabularyEntry) error {
	return errors.New("test")
}

func (d ErrorStorage) DeleteVocabularyItem(db.UserID, string) error {
	return errors.New("test")
}

func (d ErrorStorage) SaveCached(string, []byte) error {
	return errors.New("test")
}

// fetcherStub returns dictionary responses by word, unknown words are not found
type fetcherStub map[string]string

func (f fetcherStub) Fetch(_ context.Context, word string) ([]byte, error) {
	data, ok := f[word]
	if !ok {
		return nil, merriamwebster.ErrNotFound
	}
	return []byte(data), nil
}

var testFetcher = fetcherStub{
	"heart": heartResponse,
	"colr":  `["color","colour"]`,
}

// getTestServer returns a test server.
func getTestServer(storage db.Storage) (*httptest.Server, func()) {
	if storage == nil {
		storage = db.NewInMemoryStorage()
	}

	server := NewServer(storage, lookup.NewService(storage, testFetcher, nil), vocab.NewTracker(storage), testTGToken, testJWTSecret)
	srv := httptest.NewServer(server.router)
	return srv, srv.Close
}

// getTestJWT returns a test JWT signed with testJWTSecret
func getTestJWT() string {
	s := &authService{telegramToken: testTGToken, jwtSecret: []byte(testJWTSecret), now: time.Now}
	token, _ := s.createToken(testUserID)
	return "Bearer " + token
}
