package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"
	"github.com/rs/zerolog/log"
)

const maxCachedSize = 1 << 20

// VocabularyItem represents user vocabulary word in API response
type VocabularyItem struct {
	Word       string     `json:"word"`
	Headword   string     `json:"headword"`
	Definition string     `json:"definition"`
	SavedDate  time.Time  `json:"savedDate"`
	Notes      *string    `json:"notes,omitempty"`
	Step       int        `json:"step"`
	Mastered   bool       `json:"mastered"`
	LastRecall *time.Time `json:"lastRecall,omitempty"`
}

func newVocabularyItem(v db.VocabularyEntry) VocabularyItem {
	item := VocabularyItem{
		Word:      v.Word,
		Headword:  v.Word,
		SavedDate: v.SavedDate,
		Notes:     v.Notes,
		Step:      v.Step(),
		Mastered:  v.Mastered(),
	}
	if last, ok := v.LastRecall(); ok {
		item.LastRecall = &last
	}
	entries, err := v.Entries()
	if err != nil {
		log.Warn().Err(err).Str("word", v.Word).Msg("failed to decode vocabulary entries")
		return item
	}
	if hw := entries.Headword(); hw != "" {
		item.Headword = hw
	}
	item.Definition = entries.FirstDefinition()
	return item
}

// WordResponse holds looked up entries or "did you mean" suggestions
type WordResponse struct {
	Word        string                 `json:"word"`
	Entries     merriamwebster.Entries `json:"entries,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Saved       *VocabularyItem        `json:"saved,omitempty"`
}

// SaveWordRequest is an optional body of save word request
type SaveWordRequest struct {
	Notes *string `json:"notes"`
}

// vocabularyService implements methods for vocabulary API
type vocabularyService struct {
	storage    db.Storage
	dictionary Dictionary
	vocabulary Vocabulary
	now        func() time.Time
}

// userID returns authorized user from request context
func userID(w http.ResponseWriter, r *http.Request) (db.UserID, bool) {
	id, ok := r.Context().Value(ctxUserIDKey).(db.UserID)
	if !ok {
		log.Error().Interface("user", r.Context().Value(ctxUserIDKey)).Msg("invalid user id in context")
		w.WriteHeader(http.StatusInternalServerError)
	}
	return id, ok
}

// GetVocabulary returns user vocabulary
func (d vocabularyService) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}
	vocabulary, err := d.storage.GetVocabulary(user)
	if err != nil {
		log.Error().Err(err).Int64("user", int64(user)).Msg("failed to get user vocabulary")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	items := make([]VocabularyItem, 0, len(vocabulary))
	for _, v := range vocabulary {
		items = append(items, newVocabularyItem(v))
	}
	writeJSON(w, items)
}

// GetWord looks the word up and returns its entries or suggestions
func (d vocabularyService) GetWord(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}
	word := chi.URLParam(r, "word")
	res, ok := d.lookup(w, r, word)
	if !ok {
		return
	}
	response := WordResponse{Word: res.Word, Entries: res.Entries, Suggestions: res.Suggestions}
	if !res.HasSuggestions() {
		saved, err := d.storage.GetVocabularyItem(user, res.Word)
		switch {
		case err == nil:
			item := newVocabularyItem(saved)
			response.Saved = &item
		case !errors.Is(err, db.ErrNotFound):
			log.Error().Err(err).Str("word", res.Word).Int64("user", int64(user)).Msg("failed to get vocabulary item")
		}
	}
	writeJSON(w, response)
}

// SaveWord adds the word to user vocabulary or updates its notes
func (d vocabularyService) SaveWord(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}
	var request SaveWordRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		writeText(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, ok := d.lookup(w, r, chi.URLParam(r, "word"))
	if !ok {
		return
	}
	if res.HasSuggestions() {
		writeText(w, http.StatusNotFound, "word not found")
		return
	}
	item, err := d.vocabulary.Update(user, res.Word, func(item *db.VocabularyEntry, found bool) {
		if found {
			item.EntryBytes = res.Raw
		} else {
			*item = db.NewVocabularyEntry(user, res.Word, res.Raw, d.now())
		}
		if request.Notes != nil {
			item.Notes = request.Notes
		}
	})
	if err != nil {
		log.Error().Err(err).Str("word", res.Word).Int64("user", int64(user)).Msg("failed to save vocabulary item")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, newVocabularyItem(item))
}

// DeleteWord removes the word from user vocabulary
func (d vocabularyService) DeleteWord(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}
	word := lookup.Normalize(chi.URLParam(r, "word"))
	if err := d.vocabulary.Delete(user, word); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeText(w, http.StatusNotFound, "word not found")
			return
		}
		log.Error().Err(err).Str("word", word).Int64("user", int64(user)).Msg("failed to delete vocabulary item")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCached replaces cached dictionary response of the word
func (d vocabularyService) UpdateCached(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := d.storage.GetUser(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeText(w, http.StatusForbidden, "forbidden")
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !user.IsAdmin {
		writeText(w, http.StatusForbidden, "forbidden")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCachedSize))
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid body")
		return
	}
	word := chi.URLParam(r, "word")
	res, err := d.dictionary.Store(word, data)
	if err != nil {
		switch {
		case errors.Is(err, merriamwebster.ErrDecode):
			writeText(w, http.StatusBadRequest, "invalid JSON")
		case errors.Is(err, lookup.ErrNoResult):
			writeText(w, http.StatusBadRequest, "response must have at least one entry")
		default:
			log.Error().Err(err).Str("word", word).Msg("failed to store cached response")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	log.Info().Str("word", res.Word).Int64("user", int64(id)).Msg("cached response replaced")
	writeJSON(w, WordResponse{Word: res.Word, Entries: res.Entries})
}

// lookup writes error response when the word can't be looked up
func (d vocabularyService) lookup(w http.ResponseWriter, r *http.Request, word string) (lookup.Result, bool) {
	res, err := d.dictionary.Lookup(r.Context(), word)
	if err != nil {
		if errors.Is(err, lookup.ErrNoResult) {
			writeText(w, http.StatusNotFound, "word not found")
			return res, false
		}
		log.Error().Err(err).Str("word", word).Msg("failed to look word up")
		w.WriteHeader(http.StatusBadGateway)
		return res, false
	}
	return res, true
}
