// Package lookup resolves words to dictionary entries using the cache and the dictionary API.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
)

// ErrNoResult is returned when dictionary has neither entries nor suggestions for the word
var ErrNoResult = errors.New("no result")

// Cache stores raw dictionary responses
type Cache interface {
	GetCached(word string) ([]byte, error)
	SaveCached(word string, data []byte) error
}

// Fetcher downloads raw dictionary response
type Fetcher interface {
	Fetch(ctx context.Context, word string) ([]byte, error)
}

// Stemmer reduces word to its base form
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer is an english Snowball stemmer
type SnowballStemmer struct{}

// Stem returns stem of the word, stop words are kept as is
func (SnowballStemmer) Stem(word string) string {
	return english.Stem(word, false)
}

// Result of a lookup: entries or "did you mean" suggestions
type Result struct {
	Word        string
	Entries     merriamwebster.Entries
	Suggestions []string
	Raw         []byte
}

// HasSuggestions returns true if dictionary answered with suggestions
func (r Result) HasSuggestions() bool {
	return len(r.Entries) == 0 && len(r.Suggestions) > 0
}

// Service looks words up in the cache and fetches missing ones.
// Concurrent lookups of the same word share one request.
type Service struct {
	cache   Cache
	fetcher Fetcher
	stemmer Stemmer
	group   singleflight.Group
}

// NewService creates Service, nil stemmer disables stemming
func NewService(cache Cache, fetcher Fetcher, stemmer Stemmer) *Service {
	return &Service{cache: cache, fetcher: fetcher, stemmer: stemmer}
}

// Normalize trims and lowercases the word
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Lookup returns entries for the word.
// With stemming enabled the stem is looked up first, the word itself is used when the stem has no entries.
func (s *Service) Lookup(ctx context.Context, word string) (Result, error) {
	word = Normalize(word)
	if word == "" {
		return Result{}, ErrNoResult
	}
	if s.stemmer != nil {
		if stem := s.stemmer.Stem(word); stem != "" && stem != word {
			res, err := s.lookup(ctx, stem)
			if err == nil && len(res.Entries) > 0 {
				return res, nil
			}
			if err != nil && !errors.Is(err, ErrNoResult) {
				log.Warn().Err(err).Str("word", word).Str("stem", stem).Msg("stem lookup failed")
			}
		}
	}
	return s.lookup(ctx, word)
}

// Store validates raw response and replaces the cached one
func (s *Service) Store(word string, data []byte) (Result, error) {
	word = Normalize(word)
	response, err := merriamwebster.Decode(data)
	if err != nil {
		return Result{}, err
	}
	if len(response.Entries) == 0 {
		return Result{}, ErrNoResult
	}
	if err := s.cache.SaveCached(word, data); err != nil {
		return Result{}, fmt.Errorf("save cached: %w", err)
	}
	return Result{Word: word, Entries: response.Entries, Raw: data}, nil
}

func (s *Service) lookup(ctx context.Context, word string) (Result, error) {
	data, err := s.cache.GetCached(word)
	switch {
	case err == nil:
		response, derr := merriamwebster.Decode(data)
		if derr == nil {
			return newResult(word, data, response)
		}
		log.Warn().Err(derr).Str("word", word).Msg("invalid cached response")
	case !errors.Is(err, db.ErrNotFound):
		log.Warn().Err(err).Str("word", word).Msg("failed to get cached response")
	}

	v, err, shared := s.group.Do(word, func() (interface{}, error) {
		return s.fetch(ctx, word)
	})
	if err != nil {
		return Result{}, err
	}
	if shared {
		log.Debug().Str("word", word).Msg("shared lookup")
	}
	f := v.(fetched)
	return newResult(word, f.data, f.response)
}

type fetched struct {
	data     []byte
	response merriamwebster.Response
}

func (s *Service) fetch(ctx context.Context, word string) (fetched, error) {
	data, err := s.fetcher.Fetch(ctx, word)
	if err != nil {
		if errors.Is(err, merriamwebster.ErrNotFound) {
			return fetched{}, fmt.Errorf("%w: %w", ErrNoResult, err)
		}
		return fetched{}, fmt.Errorf("fetch %q: %w", word, err)
	}
	response, err := merriamwebster.Decode(data)
	if err != nil {
		return fetched{}, err
	}
	if len(response.Entries) > 0 {
		if err := s.cache.SaveCached(word, data); err != nil {
			log.Error().Err(err).Str("word", word).Msg("failed to save cached response")
		}
	}
	log.Debug().Str("word", word).Int("entries", len(response.Entries)).Msg("word fetched")
	return fetched{data: data, response: response}, nil
}

func newResult(word string, data []byte, response merriamwebster.Response) (Result, error) {
	if len(response.Entries) == 0 && len(response.Suggestions) == 0 {
		return Result{}, ErrNoResult
	}
	return Result{Word: word, Entries: response.Entries, Suggestions: response.Suggestions, Raw: data}, nil
}
