// Package vocab tracks how well a user knows the words of their vocabulary.
package vocab

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rbhz/mw-vocabulary/app/db"
)

// Storage is the part of db.Storage used by Tracker
type Storage interface {
	GetVocabularyItem(db.UserID, string) (db.VocabularyEntry, error)
	SaveVocabularyItem(db.VocabularyEntry) error
	GetVocabulary(db.UserID) ([]db.VocabularyEntry, error)
	DeleteVocabularyItem(db.UserID, string) error
}

// Tracker records quiz outcomes and selects words for the next quiz
type Tracker struct {
	storage Storage
	now     func() time.Time
	locks   keyedMutex
}

// NewTracker creates Tracker using the current time as a clock
func NewTracker(storage Storage) *Tracker {
	return &Tracker{storage: storage, now: time.Now}
}

// RecordOutcome applies quiz answer to the word recall history and saves it.
// Updates of the same word are serialized.
func (t *Tracker) RecordOutcome(user db.UserID, word string, correct bool) (db.VocabularyEntry, error) {
	unlock := t.lock(user, word)
	defer unlock()

	item, err := t.storage.GetVocabularyItem(user, word)
	if err != nil {
		return item, fmt.Errorf("get vocabulary item: %w", err)
	}
	item.Record(correct, t.now())
	if err := t.storage.SaveVocabularyItem(item); err != nil {
		return item, fmt.Errorf("save vocabulary item: %w", err)
	}
	log.Debug().
		Int64("user", int64(user)).
		Str("word", word).
		Bool("correct", correct).
		Int("step", item.Step()).
		Bool("mastered", item.Mastered()).
		Msg("recall recorded")
	return item, nil
}

// Update applies update to the stored word and saves it, found is false for a new word.
// Runs under the same per-word lock as RecordOutcome.
func (t *Tracker) Update(user db.UserID, word string, update func(item *db.VocabularyEntry, found bool)) (db.VocabularyEntry, error) {
	unlock := t.lock(user, word)
	defer unlock()

	found := true
	item, err := t.storage.GetVocabularyItem(user, word)
	switch {
	case errors.Is(err, db.ErrNotFound):
		found = false
		item = db.VocabularyEntry{User: user, Word: word}
	case err != nil:
		return item, fmt.Errorf("get vocabulary item: %w", err)
	}
	update(&item, found)
	if err := t.storage.SaveVocabularyItem(item); err != nil {
		return item, fmt.Errorf("save vocabulary item: %w", err)
	}
	return item, nil
}

// Delete removes the word from user vocabulary
func (t *Tracker) Delete(user db.UserID, word string) error {
	unlock := t.lock(user, word)
	defer unlock()
	return t.storage.DeleteVocabularyItem(user, word)
}

func (t *Tracker) lock(user db.UserID, word string) func() {
	return t.locks.Lock(strconv.FormatInt(int64(user), 10) + ":" + word)
}

// Pool returns user words eligible for a quiz today in presentation order
func (t *Tracker) Pool(user db.UserID) ([]db.VocabularyEntry, error) {
	items, err := t.storage.GetVocabulary(user)
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}
	return Order(Eligible(items, t.now())), nil
}

// Eligible filters out words recalled on the same calendar day as now.
// Mastered words are dropped as well unless every remaining word is mastered.
func Eligible(items []db.VocabularyEntry, now time.Time) []db.VocabularyEntry {
	result := make([]db.VocabularyEntry, 0, len(items))
	mastered := 0
	for _, item := range items {
		if last, ok := item.LastRecall(); ok && sameDay(last, now) {
			continue
		}
		if item.Mastered() {
			mastered++
		}
		result = append(result, item)
	}
	if mastered == 0 || mastered == len(result) {
		return result
	}
	filtered := result[:0]
	for _, item := range result {
		if !item.Mastered() {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Order returns words sorted by recall count, then by the oldest last recall.
// Words without recalls come first, the order of equal words is kept.
func Order(items []db.VocabularyEntry) []db.VocabularyEntry {
	result := append([]db.VocabularyEntry(nil), items...)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.RecallCount() != b.RecallCount() {
			return a.RecallCount() < b.RecallCount()
		}
		lastA, okA := a.LastRecall()
		lastB, okB := b.LastRecall()
		if okA != okB {
			return !okA
		}
		return lastA.Before(lastB)
	})
	return result
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
