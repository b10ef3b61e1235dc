package db

import (
	"fmt"
	"sort"
	"time"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
)

// RecallWindow is a number of recent successful recalls kept for a word.
// A word with a full window is mastered.
const RecallWindow = 4

// VocabularyEntry holds a word saved by user with its dictionary entry and recall history
type VocabularyEntry struct {
	User        UserID      `json:"user"`
	Word        string      `json:"word"`
	EntryBytes  []byte      `json:"entryBytes"`
	SavedDate   time.Time   `json:"savedDate"`
	Notes       *string     `json:"notes,omitempty"`
	RecallDates []time.Time `json:"recallTimestamps,omitempty"`
}

// NewVocabularyEntry creates vocabulary entry saved at the given time
func NewVocabularyEntry(user UserID, word string, entryBytes []byte, at time.Time) VocabularyEntry {
	return VocabularyEntry{User: user, Word: word, EntryBytes: entryBytes, SavedDate: at.UTC()}
}

// Record applies a quiz outcome.
// A correct answer appends the timestamp dropping the oldest ones beyond the window,
// a wrong answer clears the history.
func (v *VocabularyEntry) Record(correct bool, at time.Time) {
	if !correct {
		v.RecallDates = nil
		return
	}
	dates := v.RecallDates
	if len(dates) >= RecallWindow {
		dates = dates[len(dates)-(RecallWindow-1):]
	}
	v.RecallDates = append(append(make([]time.Time, 0, len(dates)+1), dates...), at.UTC())
}

// Step returns familiarity step from 0 to 3
func (v VocabularyEntry) Step() int {
	return len(v.RecallDates) % RecallWindow
}

// Mastered returns true when the recall window is full
func (v VocabularyEntry) Mastered() bool {
	return len(v.RecallDates) >= RecallWindow
}

// RecallCount returns number of recalls in the window
func (v VocabularyEntry) RecallCount() int {
	return len(v.RecallDates)
}

// LastRecall returns time of the most recent recall
func (v VocabularyEntry) LastRecall() (time.Time, bool) {
	if len(v.RecallDates) == 0 {
		return time.Time{}, false
	}
	return v.RecallDates[len(v.RecallDates)-1], true
}

// Entries decodes saved dictionary entries
func (v VocabularyEntry) Entries() (merriamwebster.Entries, error) {
	response, err := merriamwebster.Decode(v.EntryBytes)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", v.Word, err)
	}
	if response.HasSuggestions() {
		return nil, fmt.Errorf("decode %q: %w", v.Word, merriamwebster.ErrDecode)
	}
	return response.Entries, nil
}

func sortVocabulary(items []VocabularyEntry) {
	sort.Slice(items, func(i, j int) bool { return items[i].Word < items[j].Word })
}
