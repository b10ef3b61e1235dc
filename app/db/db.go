package db

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// UserID is a type for users ID
type UserID int64

// ErrNotFound is returned when object not found
var ErrNotFound error = errors.New("not found")

// GenerateID generates new uuid and encodes it to base64
func GenerateID() string {
	id := [16]byte(uuid.New())
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Storage defines method provided by database interfaces
type Storage interface {
	// GetCached returns raw dictionary response for the word
	GetCached(word string) ([]byte, error)
	// SaveCached saves raw dictionary response for the word
	SaveCached(word string, data []byte) error

	// GetUser returns user by ID
	GetUser(UserID) (User, error)
	// SaveUser saves user to DB
	SaveUser(User) error

	// GetVocabularyItem returns item from user vocabulary
	GetVocabularyItem(UserID, string) (VocabularyEntry, error)
	// SaveVocabularyItem creates or replaces vocabulary item
	SaveVocabularyItem(VocabularyEntry) error
	// DeleteVocabularyItem removes word from user vocabulary
	DeleteVocabularyItem(UserID, string) error
	// GetVocabulary returns user vocabulary ordered by word
	GetVocabulary(UserID) ([]VocabularyEntry, error)
}

// User holds user data
type User struct {
	ID       UserID
	IsAdmin  bool
	Username string
	Config   UserConfig
}

// UserConfig holds user config params
type UserConfig struct {
	// QuizType is a quiz query type: "define" or "match"
	QuizType *string
}
